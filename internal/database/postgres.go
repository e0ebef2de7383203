package database

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	migratepg "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
)

type PgForumRepository struct {
	conn *sql.DB
}

func NewPgForumRepository(dsn string) (*PgForumRepository, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, err
	}

	if err := db.Ping(); err != nil {
		return nil, err
	}

	return &PgForumRepository{conn: db}, nil
}

// Migrate applies any pending schema migrations from dir.
func (db *PgForumRepository) Migrate(dir string) error {
	driver, err := migratepg.WithInstance(db.conn, &migratepg.Config{})
	if err != nil {
		return fmt.Errorf("migration driver: %w", err)
	}

	m, err := migrate.NewWithDatabaseInstance("file://"+dir, "postgres", driver)
	if err != nil {
		return fmt.Errorf("init migrations: %w", err)
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("apply migrations: %w", err)
	}

	return nil
}

func (db *PgForumRepository) Ping() error {
	return db.conn.Ping()
}

func (db *PgForumRepository) Close() error {
	if db.conn != nil {
		return db.conn.Close()
	}
	return nil
}
