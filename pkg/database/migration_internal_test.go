package database

import (
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetLatestVersion(t *testing.T) {
	t.Run("should return the highest up migration", func(t *testing.T) {
		migrations := fstest.MapFS{
			"000001_schema.up.sql":       {Data: []byte("")},
			"000001_schema.down.sql":     {Data: []byte("")},
			"000003_seed.up.sql":         {Data: []byte("")},
			"000002_procedures.up.sql":   {Data: []byte("")},
			"000002_procedures.down.sql": {Data: []byte("")},
			"README.md":                  {Data: []byte("")},
		}

		latest, err := getLatestVersion(migrations)
		require.NoError(t, err)
		assert.Equal(t, 3, latest)
	})

	t.Run("should fail when there are no migrations", func(t *testing.T) {
		_, err := getLatestVersion(fstest.MapFS{"notes.txt": {Data: []byte("")}})
		require.Error(t, err)
	})
}

func TestMigrationService_migrationFS(t *testing.T) {
	t.Run("should use the embedded migrations by default", func(t *testing.T) {
		embedded := fstest.MapFS{"000001_schema.up.sql": {Data: []byte("")}}
		ms := NewMigrationService(nil, &MigrationConfig{Migrations: embedded})

		got, err := ms.migrationFS()
		require.NoError(t, err)
		assert.Equal(t, embedded, got)
	})

	t.Run("should fail for a missing folder", func(t *testing.T) {
		ms := NewMigrationService(nil, &MigrationConfig{MigrationFolderPath: "does/not/exist"})

		_, err := ms.migrationFS()
		require.Error(t, err)
	})

	t.Run("should read a folder from disk when configured", func(t *testing.T) {
		dir := t.TempDir()
		ms := NewMigrationService(nil, &MigrationConfig{MigrationFolderPath: dir})

		got, err := ms.migrationFS()
		require.NoError(t, err)
		assert.NotNil(t, got)
	})
}
