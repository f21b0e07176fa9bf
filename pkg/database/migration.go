package database

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/Gobusters/ectologger"
	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database"
	mysqlmigrate "github.com/golang-migrate/migrate/v4/database/mysql"
	"github.com/golang-migrate/migrate/v4/source"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/pkg/errors"
)

type MigrationLogger struct {
	ectologger.Logger
}

func (l MigrationLogger) Verbose() bool {
	return true
}

func (l MigrationLogger) Printf(format string, v ...any) {
	l.Infof(strings.TrimSuffix(format, "\n"), v...)
}

type MigrationService struct {
	config *MigrationConfig
	logger ectologger.Logger
}

type MigrationConfig struct {
	// Migrations is the filesystem holding the *.up.sql and *.down.sql files.
	Migrations fs.FS
	// MigrationFolderPath, when set, is read from disk instead of Migrations.
	MigrationFolderPath string
	Version             uint
	Force               int
	AutoRollback        bool // If enabled, will attempt to rollback the database to the previous version if an error occurs
}

func NewMigrationService(logger ectologger.Logger, config *MigrationConfig) *MigrationService {
	return &MigrationService{
		config: config,
		logger: logger,
	}
}

// migrationFS returns the filesystem migrations are read from.
func (ms *MigrationService) migrationFS() (fs.FS, error) {
	if ms.config.MigrationFolderPath == "" {
		if ms.config.Migrations == nil {
			return nil, errors.New("no migrations configured")
		}
		return ms.config.Migrations, nil
	}

	if _, err := os.Stat(ms.config.MigrationFolderPath); err != nil {
		return nil, errors.Wrap(err, fmt.Sprintf("migration folder %s does not exist", ms.config.MigrationFolderPath))
	}
	return os.DirFS(ms.config.MigrationFolderPath), nil
}

func (ms *MigrationService) Migrate(databaseName string, databaseInstance database.Driver) error {
	migrations, err := ms.migrationFS()
	if err != nil {
		return err
	}

	src, err := iofs.New(migrations, ".")
	if err != nil {
		return errors.Wrap(err, "failed to open migration source")
	}

	return ms.MigrateWithSource(src, databaseName, databaseInstance)
}

// MigrateDatabase migrates the schema of db over one connection borrowed from
// its pool. Only that connection is released; the pool stays open.
func (ms *MigrationService) MigrateDatabase(ctx context.Context, db DB, databaseName string) error {
	conn, err := db.SQLDB().Conn(ctx)
	if err != nil {
		return errors.Wrap(err, "failed to acquire migration connection")
	}

	// closing a driver built on a connection closes the connection, not the pool
	driver, err := mysqlmigrate.WithConnection(ctx, conn, &mysqlmigrate.Config{DatabaseName: databaseName})
	if err != nil {
		_ = conn.Close()
		return errors.Wrap(err, "failed to create migration driver")
	}
	defer func() {
		if closeErr := driver.Close(); closeErr != nil {
			ms.logger.WithError(closeErr).Warnf("Failed to release migration connection")
		}
	}()

	return ms.Migrate(DriverName, driver)
}

// MigrateWithSource runs the configured migration against an already opened source.
func (ms *MigrationService) MigrateWithSource(src source.Driver, databaseName string, databaseInstance database.Driver) error {
	m, err := migrate.NewWithInstance("iofs", src, databaseName, databaseInstance)
	if err != nil {
		ms.logger.WithError(err).Error("Failed to create migrate instance")
		return errors.Wrap(err, "failed to create migrate instance")
	}

	m.Log = MigrationLogger{Logger: ms.logger}

	return ms.runMigration(m)
}

func (ms *MigrationService) runMigration(m *migrate.Migrate) error {
	if ms.config.Force != 0 {
		if err := m.Force(ms.config.Force); err != nil {
			ms.logger.WithError(err).Errorf("Failed to force database to version %d", ms.config.Force)
			return err
		}
	}

	version, _, versionErr := m.Version()
	if versionErr != nil && versionErr != migrate.ErrNilVersion {
		ms.logger.WithError(versionErr).Error("Failed to get current migration version")
	}

	startTime := time.Now()

	var migrationErr error
	if ms.config.Version != 0 {
		migrationErr = m.Migrate(ms.config.Version)
	} else {
		migrationErr = m.Up()
	}

	ms.logger.Infof("Database migrations completed in %v", time.Since(startTime))

	return ms.handleMigrationError(m, migrationErr, version)
}

func (ms *MigrationService) handleMigrationError(m *migrate.Migrate, err error, previousVersion uint) error {
	if err == nil {
		ms.logger.Info("Successfully applied migrations")
		return nil
	}

	if err == migrate.ErrNoChange {
		ms.logger.Info("No new migrations to apply")
		return nil
	}

	// The database is ahead of the shipped migrations, usually after a rollback.
	if strings.Contains(err.Error(), "no migration found for version") {
		migrations, fsErr := ms.migrationFS()
		if fsErr != nil {
			return fsErr
		}
		latest, latestErr := getLatestVersion(migrations)
		if latestErr != nil {
			ms.logger.WithError(latestErr).Error("Failed to get latest migration version")
			return latestErr
		}
		ms.logger.Warnf("No migration found for version %d. Forcing database to latest version %d", previousVersion, latest)
		if forceErr := m.Force(latest); forceErr != nil {
			ms.logger.WithError(forceErr).Errorf("Failed to force database to version %d", latest)
			return forceErr
		}
		return nil
	}

	ms.logger.WithError(err).Errorf("Migration failed with error: %v", err)

	version, dirty, versionErr := m.Version()
	if versionErr != nil && versionErr != migrate.ErrNilVersion {
		ms.logger.WithError(versionErr).Error("Failed to get current migration version")
		return err
	}

	if ms.config.AutoRollback && dirty {
		if previousVersion == 0 && version > 0 {
			previousVersion = version - 1
		}

		ms.logger.Warnf("Database is dirty at version %d. Reverting to version %d", version, previousVersion)
		if forceErr := m.Force(int(previousVersion)); forceErr != nil {
			ms.logger.WithError(forceErr).Errorf("Failed to force database to version %d", previousVersion)
			return forceErr
		}
		// still fail so the service does not start on a half migrated schema
		return err
	}

	ms.logger.WithError(err).Errorf("Failed to apply migrations. Database version is dirty=%t at version %d", dirty, version)
	return err
}

var upMigration = regexp.MustCompile(`^(\d+)_.*\.up\.sql$`)

func getLatestVersion(migrations fs.FS) (int, error) {
	files, err := fs.ReadDir(migrations, ".")
	if err != nil {
		return 0, err
	}

	var versions []int
	for _, file := range files {
		if file.IsDir() {
			continue
		}
		matches := upMigration.FindStringSubmatch(file.Name())
		if len(matches) > 1 {
			version, err := strconv.Atoi(matches[1])
			if err != nil {
				return 0, err
			}
			versions = append(versions, version)
		}
	}

	if len(versions) == 0 {
		return 0, fmt.Errorf("no migration files found")
	}

	sort.Ints(versions)
	return versions[len(versions)-1], nil
}
