package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"paracord-hq/gateway/pkg/config"

	_ "github.com/mattn/go-sqlite3" // cgo driver, registered as "sqlite3"
	_ "modernc.org/sqlite"          // pure Go driver, registered as "sqlite"
)

// Store reads sessions, bot applications and user flags from the server's
// SQLite database. The gateway never writes rows; Open only creates the
// tables when they are missing.
type Store struct {
	db     *sql.DB
	driver string
	path   string
	logger *slog.Logger

	activeStmt *sql.Stmt
	botStmt    *sql.Stmt
	flagsStmt  *sql.Stmt
}

// Open connects to the database described by cfg.
func Open(ctx context.Context, cfg config.StoreConfig) (*Store, error) {
	switch cfg.Driver {
	case "sqlite", "sqlite3":
	default:
		return nil, fmt.Errorf("unsupported store driver %q", cfg.Driver)
	}
	if cfg.Path == "" {
		return nil, errors.New("store path cannot be empty")
	}
	if cfg.BusyTimeout == 0 {
		cfg.BusyTimeout = config.DefaultStoreBusyTimeout
	}

	if dir := filepath.Dir(cfg.Path); dir != "." {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return nil, fmt.Errorf("failed to create store directory: %w", err)
		}
	}

	db, err := sql.Open(cfg.Driver, cfg.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// One connection keeps the per-connection pragmas below in effect.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	s := &Store{
		db:     db,
		driver: cfg.Driver,
		path:   cfg.Path,
		logger: slog.Default().With("component", "store"),
	}

	if err := s.initialize(ctx, cfg.BusyTimeout); err != nil {
		db.Close()
		return nil, err
	}

	s.logger.Info("credential store opened", "driver", cfg.Driver, "path", cfg.Path)
	return s, nil
}

func (s *Store) initialize(ctx context.Context, busyTimeout time.Duration) error {
	if _, err := s.db.ExecContext(ctx, fmt.Sprintf("PRAGMA busy_timeout=%d;", busyTimeout.Milliseconds())); err != nil {
		return fmt.Errorf("failed to set busy timeout: %w", err)
	}
	if _, err := s.db.ExecContext(ctx, "PRAGMA journal_mode=WAL;"); err != nil {
		return fmt.Errorf("failed to enable WAL: %w", err)
	}
	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}

	var err error
	if s.activeStmt, err = s.db.PrepareContext(ctx, queryAccessTokenActive); err != nil {
		return fmt.Errorf("failed to prepare session query: %w", err)
	}
	if s.botStmt, err = s.db.PrepareContext(ctx, queryBotByTokenHash); err != nil {
		return fmt.Errorf("failed to prepare bot query: %w", err)
	}
	if s.flagsStmt, err = s.db.PrepareContext(ctx, queryUserFlags); err != nil {
		return fmt.Errorf("failed to prepare user query: %w", err)
	}
	return nil
}

// IsAccessTokenActive reports whether tokenID is the current access token of
// an unrevoked, unexpired session owned by userID.
func (s *Store) IsAccessTokenActive(ctx context.Context, userID int64, sessionID, tokenID string, now time.Time) (bool, error) {
	var one int
	err := s.activeStmt.QueryRowContext(ctx, sessionID, userID, tokenID, now.Unix()).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("session lookup: %w", err)
	}
	return true, nil
}

// BotUserIDByTokenHash returns the bot user owning the token hash.
func (s *Store) BotUserIDByTokenHash(ctx context.Context, tokenHash string) (int64, bool, error) {
	var userID int64
	err := s.botStmt.QueryRowContext(ctx, tokenHash).Scan(&userID)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("bot lookup: %w", err)
	}
	return userID, true, nil
}

// UserFlags returns the flag bitmask of a user.
func (s *Store) UserFlags(ctx context.Context, userID int64) (int64, bool, error) {
	var flags int64
	err := s.flagsStmt.QueryRowContext(ctx, userID).Scan(&flags)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("user lookup: %w", err)
	}
	return flags, true, nil
}

// Stats summarizes the credential tables.
type Stats struct {
	Users          int64 `json:"users"`
	ActiveSessions int64 `json:"active_sessions"`
	Bots           int64 `json:"bots"`
}

// Stats counts users, live sessions at now, and bot applications.
func (s *Store) Stats(ctx context.Context, now time.Time) (Stats, error) {
	var st Stats
	if err := s.db.QueryRowContext(ctx, queryStats, now.Unix()).Scan(&st.Users, &st.ActiveSessions, &st.Bots); err != nil {
		return Stats{}, fmt.Errorf("stats: %w", err)
	}
	return st, nil
}

// Ping checks the connection.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// DB exposes the handle for tooling and tests.
func (s *Store) DB() *sql.DB {
	return s.db
}

// Close releases statements and the connection.
func (s *Store) Close() error {
	for _, stmt := range []*sql.Stmt{s.activeStmt, s.botStmt, s.flagsStmt} {
		if stmt != nil {
			_ = stmt.Close()
		}
	}
	return s.db.Close()
}
