package startup_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Gobusters/ectologger"
	"github.com/Gobusters/ectologger/zapadapter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Ramsey-B/poppy/pkg/startup"
)

func getTestLogger() ectologger.Logger {
	zapLogger, _ := zap.NewDevelopment()
	return zapadapter.NewZapEctoLogger(zapLogger, nil)
}

type recorder struct {
	events []string
}

func (r *recorder) dependency(name string, requires ...string) *startup.Dependency {
	return &startup.Dependency{
		Name:     name,
		Requires: requires,
		OnStart: func(context.Context) error {
			r.events = append(r.events, "start "+name)
			return nil
		},
		OnStop: func(context.Context) error {
			r.events = append(r.events, "stop "+name)
			return nil
		},
	}
}

func TestStartup_Start(t *testing.T) {
	t.Run("should start dependencies before their dependents", func(t *testing.T) {
		rec := &recorder{}
		s := startup.NewStartup(getTestLogger(), 1)
		s.AddDependency(rec.dependency("migrations", "database"))
		s.AddDependency(rec.dependency("tracing"))
		s.AddDependency(rec.dependency("database", "tracing"))

		require.NoError(t, s.Start(context.Background()))
		assert.Equal(t, []string{"start tracing", "start database", "start migrations"}, rec.events)
		assert.Equal(t, startup.StartupStatusStarted, s.Status("migrations"))
	})

	t.Run("should retry failed dependencies without restarting started ones", func(t *testing.T) {
		rec := &recorder{}
		attempts := 0
		s := startup.NewStartup(getTestLogger(), 3).WithBackoffUnit(time.Millisecond)
		s.AddDependency(rec.dependency("database"))
		s.AddDependency(&startup.Dependency{
			Name:     "migrations",
			Requires: []string{"database"},
			OnStart: func(context.Context) error {
				attempts++
				if attempts < 3 {
					return errors.New("database is starting up")
				}
				return nil
			},
		})

		require.NoError(t, s.Start(context.Background()))
		assert.Equal(t, 3, attempts)
		assert.Equal(t, []string{"start database"}, rec.events)
	})

	t.Run("should give up after the last attempt", func(t *testing.T) {
		s := startup.NewStartup(getTestLogger(), 2).WithBackoffUnit(time.Millisecond)
		s.AddDependency(&startup.Dependency{
			Name:    "database",
			OnStart: func(context.Context) error { return errors.New("connection refused") },
		})

		err := s.Start(context.Background())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "after 2 attempts")
		assert.Contains(t, err.Error(), "connection refused")
		assert.Equal(t, startup.StartupStatusFailed, s.Status("database"))
	})

	t.Run("should stop waiting when the context is cancelled", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		s := startup.NewStartup(getTestLogger(), 5).WithBackoffUnit(time.Hour)
		s.AddDependency(&startup.Dependency{
			Name: "database",
			OnStart: func(context.Context) error {
				cancel()
				return errors.New("connection refused")
			},
		})

		assert.ErrorIs(t, s.Start(ctx), context.Canceled)
	})

	t.Run("should reject unknown dependencies", func(t *testing.T) {
		rec := &recorder{}
		s := startup.NewStartup(getTestLogger(), 1)
		s.AddDependency(rec.dependency("migrations", "database"))

		require.Error(t, s.Start(context.Background()))
		assert.Empty(t, rec.events)
	})

	t.Run("should reject cycles", func(t *testing.T) {
		rec := &recorder{}
		s := startup.NewStartup(getTestLogger(), 1)
		s.AddDependency(rec.dependency("a", "b"))
		s.AddDependency(rec.dependency("b", "a"))

		err := s.Start(context.Background())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "cycle")
	})
}

func TestStartup_Stop(t *testing.T) {
	t.Run("should stop in reverse start order", func(t *testing.T) {
		rec := &recorder{}
		s := startup.NewStartup(getTestLogger(), 1)
		s.AddDependency(rec.dependency("events", "database"))
		s.AddDependency(rec.dependency("database"))
		s.AddDependency(rec.dependency("migrations", "database"))

		require.NoError(t, s.Start(context.Background()))
		rec.events = nil

		require.NoError(t, s.Stop(context.Background()))
		assert.Equal(t, []string{"stop migrations", "stop events", "stop database"}, rec.events)
		assert.Equal(t, startup.StartupStatusStopped, s.Status("database"))
	})

	t.Run("should keep stopping after a failure", func(t *testing.T) {
		rec := &recorder{}
		s := startup.NewStartup(getTestLogger(), 1)
		s.AddDependency(rec.dependency("database"))
		s.AddDependency(&startup.Dependency{
			Name:     "events",
			Requires: []string{"database"},
			OnStop:   func(context.Context) error { return errors.New("flush failed") },
		})

		require.NoError(t, s.Start(context.Background()))
		rec.events = nil

		err := s.Stop(context.Background())
		require.Error(t, err)
		assert.Equal(t, []string{"stop database"}, rec.events)
	})

	t.Run("should only stop what started", func(t *testing.T) {
		rec := &recorder{}
		s := startup.NewStartup(getTestLogger(), 1)
		s.AddDependency(rec.dependency("database"))
		s.AddDependency(&startup.Dependency{
			Name:     "migrations",
			Requires: []string{"database"},
			OnStart:  func(context.Context) error { return errors.New("dirty") },
			OnStop: func(context.Context) error {
				rec.events = append(rec.events, "stop migrations")
				return nil
			},
		})

		require.Error(t, s.Start(context.Background()))
		rec.events = nil

		require.NoError(t, s.Stop(context.Background()))
		assert.Equal(t, []string{"stop database"}, rec.events)
	})
}
