package database

import (
	"context"
	"embed"
	"fmt"
	"path"

	"github.com/Soypete/mathy-bot/logging"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
	"github.com/pressly/goose/v3"
)

// Supported driver names. Each has its own migrations directory.
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite3"
)

//go:embed migrations
var embedMigrations embed.FS

// Store persists daily problems and interaction logs. Queries are written
// with ? placeholders and rebound for the connected driver.
type Store struct {
	connections *sqlx.DB
	logger      *logging.Logger
}

// Open connects to the database, applies pending migrations and verifies the
// connection.
func Open(ctx context.Context, driver, url string, logger *logging.Logger) (*Store, error) {
	if logger == nil {
		logger = logging.Default()
	}
	if driver != DriverPostgres && driver != DriverSQLite {
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}

	logger.Info("connecting to database", "driver", driver)
	dbx, err := sqlx.ConnectContext(ctx, driver, url)
	if err != nil {
		logger.Error("error connecting to database", "driver", driver, "error", err.Error())
		return nil, fmt.Errorf("error connecting to %s: %w", driver, err)
	}
	if driver == DriverSQLite {
		// sqlite allows a single writer.
		dbx.SetMaxOpenConns(1)
	}

	logger.Debug("setting up migration system")
	goose.SetBaseFS(embedMigrations)

	if err := goose.SetDialect(driver); err != nil {
		dbx.Close()
		logger.Error("error setting dialect", "error", err.Error())
		return nil, fmt.Errorf("error setting dialect: %w", err)
	}

	logger.Info("running database migrations")
	if err := goose.UpContext(ctx, dbx.DB, path.Join("migrations", driver)); err != nil {
		dbx.Close()
		logger.Error("error running migrations", "error", err.Error())
		return nil, fmt.Errorf("error running migrations: %w", err)
	}

	store := newStore(dbx, logger)
	if err := store.Ping(ctx); err != nil {
		dbx.Close()
		return nil, err
	}

	logger.Info("database connection established successfully")
	return store, nil
}

func newStore(dbx *sqlx.DB, logger *logging.Logger) *Store {
	if logger == nil {
		logger = logging.Discard()
	}
	return &Store{connections: dbx, logger: logger}
}

// Ping verifies the connection is alive.
func (s *Store) Ping(ctx context.Context) error {
	if err := s.connections.PingContext(ctx); err != nil {
		s.logger.Error("error pinging database", "error", err.Error())
		return fmt.Errorf("error pinging database: %w", err)
	}
	return nil
}

func (s *Store) Close() error {
	s.logger.Info("closing database connection")
	return s.connections.Close()
}
