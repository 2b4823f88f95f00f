// Package storage persists alerts in sqlite behind a small Repository API.
//
// The store's transactions are the only mutual exclusion mechanism for alert
// rows: concurrent adds and deletes by the same user serialize against each
// other here, no in-process locks are required.
package storage

import (
	"context"
	"errors"
	"time"

	"github.com/ZakisM/general-notifier/internal/alert"
	logx "github.com/ZakisM/general-notifier/pkg/logx"
)

var (
	// ErrNotFound is returned when a delete references an alert that does
	// not exist for that user.
	ErrNotFound = errors.New("could not find this alert number")

	// ErrDuplicate is returned when a user registers the same
	// (url, matching text, invert) combination twice.
	ErrDuplicate = errors.New("you already have this alert")
)

// Repository is the persistence API for alerts.
//
// Delete and DeleteByID keep the per-user ordinal sequence contiguous: after
// any deletion the ordinals of user U are exactly {1..Count(U)}.
type Repository interface {
	All(ctx context.Context) ([]alert.Alert, error)
	List(ctx context.Context, userID int64) ([]alert.Alert, error)
	Count(ctx context.Context, userID int64) (int64, error)
	Insert(ctx context.Context, a alert.Alert) error
	Delete(ctx context.Context, userID, ordinal int64) error
	DeleteByID(ctx context.Context, userID int64, alertID string) error
	Close() error
}

// Config configures the sqlite store.
type Config struct {
	// Path is the database file path. "sqlite:" / "sqlite://" prefixes from
	// DATABASE_URL-style values are accepted and stripped.
	Path        string
	BusyTimeout time.Duration // 0 means default
	MaxConns    int           // 0 means default (15)
}

// Open initializes the sqlite store and runs migrations.
func Open(cfg Config, log logx.Logger) (Repository, error) {
	if log.IsZero() {
		log = logx.Nop()
	}
	return openSQLite(cfg, log)
}
