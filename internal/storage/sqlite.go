package storage

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	_ "modernc.org/sqlite"

	"github.com/ZakisM/general-notifier/internal/alert"
	logx "github.com/ZakisM/general-notifier/pkg/logx"
)

//go:embed migrations.sql
var migrationsFS embed.FS

type sqliteStore struct {
	db  *sql.DB
	log logx.Logger
}

func openSQLite(cfg Config, log logx.Logger) (Repository, error) {
	path := strings.TrimSpace(cfg.Path)
	path = strings.TrimPrefix(path, "sqlite://")
	path = strings.TrimPrefix(path, "sqlite:")
	if path == "" {
		return nil, errors.New("sqlite path is required")
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, err
		}
	}

	// Pragmas travel in the DSN so the driver applies them to every pooled
	// connection. A one-shot Exec would configure only whichever connection
	// the pool happened to hand out.
	pragmas := []string{
		"_pragma=journal_mode(WAL)",
		"_pragma=synchronous(NORMAL)",
	}
	if cfg.BusyTimeout > 0 {
		pragmas = append(pragmas, fmt.Sprintf("_pragma=busy_timeout(%d)", cfg.BusyTimeout.Milliseconds()))
	}
	dsn := "file:" + path + "?" + strings.Join(pragmas, "&")

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	maxConns := cfg.MaxConns
	if maxConns <= 0 {
		maxConns = 15
	}
	db.SetMaxOpenConns(maxConns)
	db.SetMaxIdleConns(maxConns)

	st := &sqliteStore{db: db, log: log}

	if err := st.migrate(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return st, nil
}

func (s *sqliteStore) migrate(ctx context.Context) error {
	b, err := migrationsFS.ReadFile("migrations.sql")
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, string(b))
	return err
}

func (s *sqliteStore) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

const alertColumns = "alert_id, url, matching_text, invert, user_id, ordinal"

func scanAlerts(rows *sql.Rows) ([]alert.Alert, error) {
	var out []alert.Alert
	for rows.Next() {
		var (
			a      alert.Alert
			invert int64
		)
		if err := rows.Scan(&a.ID, &a.URL, &a.MatchingText, &invert, &a.UserID, &a.Ordinal); err != nil {
			return nil, err
		}
		a.Invert = invert != 0
		out = append(out, a)
	}
	return out, rows.Err()
}

func (s *sqliteStore) All(ctx context.Context) ([]alert.Alert, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT "+alertColumns+" FROM alert")
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanAlerts(rows)
}

func (s *sqliteStore) List(ctx context.Context, userID int64) ([]alert.Alert, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT "+alertColumns+" FROM alert WHERE user_id = ? ORDER BY ordinal ASC", userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanAlerts(rows)
}

func (s *sqliteStore) Count(ctx context.Context, userID int64) (int64, error) {
	var n int64
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM alert WHERE user_id = ?", userID).Scan(&n)
	return n, err
}

func (s *sqliteStore) Insert(ctx context.Context, a alert.Alert) error {
	invert := 0
	if a.Invert {
		invert = 1
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO alert (alert_id, url, matching_text, invert, user_id, ordinal)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		a.ID, a.URL, a.MatchingText, invert, a.UserID, a.Ordinal,
	)
	if err != nil && strings.Contains(err.Error(), "UNIQUE constraint") {
		return ErrDuplicate
	}
	return err
}

// Delete removes the row with (userID, ordinal) and decrements every higher
// ordinal of the same user, all in one transaction. If no row matches, the
// transaction aborts with ErrNotFound and nothing is decremented.
func (s *sqliteStore) Delete(ctx context.Context, userID, ordinal int64) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.ExecContext(ctx,
		"DELETE FROM alert WHERE user_id = ? AND ordinal = ?", userID, ordinal)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}

	if _, err := tx.ExecContext(ctx,
		"UPDATE alert SET ordinal = ordinal - 1 WHERE user_id = ? AND ordinal > ?",
		userID, ordinal); err != nil {
		return err
	}

	return tx.Commit()
}

// DeleteByID retires an alert by its stable id, preserving the ordinal
// contiguity invariant the same way Delete does. The polling worker uses
// this after a notification fires.
func (s *sqliteStore) DeleteByID(ctx context.Context, userID int64, alertID string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	var ordinal int64
	err = tx.QueryRowContext(ctx,
		"SELECT ordinal FROM alert WHERE user_id = ? AND alert_id = ?",
		userID, alertID).Scan(&ordinal)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	if err != nil {
		return err
	}

	if _, err := tx.ExecContext(ctx,
		"DELETE FROM alert WHERE user_id = ? AND alert_id = ?", userID, alertID); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx,
		"UPDATE alert SET ordinal = ordinal - 1 WHERE user_id = ? AND ordinal > ?",
		userID, ordinal); err != nil {
		return err
	}

	return tx.Commit()
}
