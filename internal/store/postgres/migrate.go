package postgres

import (
	"context"
	"embed"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	migratepgx "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/rs/zerolog/log"
)

//go:embed migrations/*.sql
var migrationFS embed.FS

// SchemaVersion describes the applied migration state.
type SchemaVersion struct {
	Version uint
	Dirty   bool
}

// Migrate applies every pending schema migration. It is the schema
// initialization hook used at startup and by the CLI.
func (s *Store) Migrate(ctx context.Context) (SchemaVersion, error) {
	m, closeFn, err := s.migrator()
	if err != nil {
		return SchemaVersion{}, fmt.Errorf("postgres.Migrate: %w", err)
	}
	defer closeFn()

	done := make(chan error, 1)
	go func() { done <- m.Up() }()

	select {
	case <-ctx.Done():
		m.GracefulStop <- true
		<-done
		return SchemaVersion{}, fmt.Errorf("postgres.Migrate: %w", ctx.Err())
	case err = <-done:
	}

	if err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return SchemaVersion{}, fmt.Errorf("postgres.Migrate: up: %w", err)
	}
	if errors.Is(err, migrate.ErrNoChange) {
		log.Info().Msg("schema up to date")
	}

	return versionOf(m)
}

// SchemaVersion reports the applied migration version without changing it.
func (s *Store) SchemaVersion(_ context.Context) (SchemaVersion, error) {
	m, closeFn, err := s.migrator()
	if err != nil {
		return SchemaVersion{}, fmt.Errorf("postgres.SchemaVersion: %w", err)
	}
	defer closeFn()

	return versionOf(m)
}

func versionOf(m *migrate.Migrate) (SchemaVersion, error) {
	version, dirty, err := m.Version()
	if errors.Is(err, migrate.ErrNilVersion) {
		return SchemaVersion{}, nil
	}
	if err != nil {
		return SchemaVersion{}, fmt.Errorf("postgres.version: %w", err)
	}

	return SchemaVersion{Version: version, Dirty: dirty}, nil
}

// migrator opens a dedicated database/sql handle so closing the migrator
// never touches the pool.
func (s *Store) migrator() (*migrate.Migrate, func(), error) {
	src, err := iofs.New(migrationFS, "migrations")
	if err != nil {
		return nil, nil, fmt.Errorf("migration source: %w", err)
	}

	db := stdlib.OpenDB(*s.pool.Config().ConnConfig)

	driver, err := migratepgx.WithInstance(db, &migratepgx.Config{})
	if err != nil {
		_ = db.Close()
		return nil, nil, fmt.Errorf("migration driver: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", src, "pgx5", driver)
	if err != nil {
		_ = db.Close()
		return nil, nil, fmt.Errorf("migrate instance: %w", err)
	}

	closeFn := func() {
		srcErr, dbErr := m.Close()
		if srcErr != nil || dbErr != nil {
			log.Warn().AnErr("source", srcErr).AnErr("database", dbErr).Msg("closing migrator")
		}
	}

	return m, closeFn, nil
}
