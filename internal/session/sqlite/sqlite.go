// Package sqlite persists the session in a single-row local database.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/agustinEspinozaTech/gestor-de-gastos/internal/core"
	"github.com/agustinEspinozaTech/gestor-de-gastos/internal/session"
)

type Store struct {
	db *sql.DB
}

var _ session.Store = (*Store)(nil)

func New(dbPath string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

func (s *Store) Get(ctx context.Context) (*core.Session, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT user_id, user_name, household_code FROM session WHERE id = 1`)

	var sess core.Session
	err := row.Scan(&sess.UserID, &sess.UserName, &sess.HouseholdCode)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read session: %w", err)
	}
	// A partial row is treated the same as no session.
	if !sess.Valid() {
		return nil, nil
	}
	return &sess, nil
}

func (s *Store) Set(ctx context.Context, sess core.Session) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO session (id, user_id, user_name, household_code, saved_at)
		 VALUES (1, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
		   user_id = excluded.user_id,
		   user_name = excluded.user_name,
		   household_code = excluded.household_code,
		   saved_at = excluded.saved_at`,
		sess.UserID, sess.UserName, sess.HouseholdCode,
		time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

func (s *Store) Clear(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM session WHERE id = 1`); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	return nil
}
