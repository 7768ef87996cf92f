package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/mcoot/lanova-arcade/internal/model"
	"github.com/mcoot/lanova-arcade/internal/storage"
)

// Store is a SQLite-backed settlement store. Settlements outlive sessions,
// so they get a durable home even when sessions live in memory or Redis.
type Store struct {
	db *sql.DB
}

// Open opens (creating if missing) the database at cfg.Path and applies migrations
func Open(cfg Config, logger *slog.Logger) (*Store, error) {
	dir := filepath.Dir(cfg.Path)
	if dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("mkdir %s: %w", dir, err)
		}
	}

	db, err := sql.Open("sqlite3", cfg.Path+"?_busy_timeout=5000&_journal_mode=WAL")
	if err != nil {
		return nil, err
	}
	if _, err := db.Exec(`PRAGMA journal_mode = WAL;`); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("set pragmas: %w", err)
	}

	if err := migrate(db, logger.With(slog.String("component", "sqlite"))); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &Store{db: db}, nil
}

// Close closes the database
func (s *Store) Close() error {
	return s.db.Close()
}

var _ storage.SettlementStore = (*Store)(nil)

func (s *Store) SaveSettlement(ctx context.Context, st *model.Settlement) error {
	_, err := s.db.ExecContext(ctx, `
        INSERT INTO settlements
            (key, session_id, player_id, mode, score, duration_seconds, reason,
             status, attempts, coins_awarded, new_balance, error, created_at, updated_at)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
        ON CONFLICT(key) DO UPDATE SET
            status = excluded.status,
            attempts = excluded.attempts,
            coins_awarded = excluded.coins_awarded,
            new_balance = excluded.new_balance,
            error = excluded.error,
            updated_at = excluded.updated_at`,
		st.Key, string(st.SessionID), string(st.PlayerID), string(st.Mode), st.Score, st.DurationSeconds,
		string(st.Reason), string(st.Status), st.Attempts, st.CoinsAwarded, st.NewBalance, st.Error,
		st.CreatedAt.UnixNano(), st.UpdatedAt.UnixNano(),
	)
	return err
}

const selectColumns = `key, session_id, player_id, mode, score, duration_seconds, reason,
    status, attempts, coins_awarded, new_balance, error, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSettlement(row rowScanner) (*model.Settlement, error) {
	var (
		st                   model.Settlement
		created, updated     int64
		sessionID, playerID  string
		mode, reason, status string
	)
	err := row.Scan(&st.Key, &sessionID, &playerID, &mode, &st.Score, &st.DurationSeconds, &reason,
		&status, &st.Attempts, &st.CoinsAwarded, &st.NewBalance, &st.Error, &created, &updated)
	if err != nil {
		return nil, err
	}
	st.SessionID = model.SessionID(sessionID)
	st.PlayerID = model.PlayerID(playerID)
	st.Mode = model.ModeID(mode)
	st.Reason = model.EndReason(reason)
	st.Status = model.SettlementStatus(status)
	st.CreatedAt = time.Unix(0, created)
	st.UpdatedAt = time.Unix(0, updated)
	return &st, nil
}

func (s *Store) GetSettlement(ctx context.Context, key string) (*model.Settlement, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+selectColumns+` FROM settlements WHERE key=?`, key)
	st, err := scanSettlement(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, model.ErrSettlementNotFound
	}
	return st, err
}

func (s *Store) ListSettlementsForPlayer(ctx context.Context, playerID model.PlayerID, limit int) ([]*model.Settlement, error) {
	if limit <= 0 {
		limit = -1 // SQLite: negative LIMIT means unbounded
	}
	rows, err := s.db.QueryContext(ctx, `
        SELECT `+selectColumns+`
        FROM settlements
        WHERE player_id=?
        ORDER BY created_at DESC, key ASC
        LIMIT ?`, string(playerID), limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*model.Settlement
	for rows.Next() {
		st, err := scanSettlement(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, st)
	}
	return out, rows.Err()
}
