package journal

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/genricoloni/coverpanel/internal/domain"
	"github.com/google/uuid"
	"go.uber.org/zap"
	_ "modernc.org/sqlite"
)

// Store is a SQLite history of frames sent to the panel
type Store struct {
	logger *zap.Logger
	db     *sql.DB
}

// Open creates or upgrades the journal database at path
func Open(ctx context.Context, logger *zap.Logger, path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, fmt.Errorf("create journal dir: %w", err)
	}
	dsn := fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)", path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}
	if err := os.Chmod(path, 0o600); err != nil && !errors.Is(err, os.ErrNotExist) {
		db.Close()
		return nil, fmt.Errorf("chmod journal path: %w", err)
	}
	if err := applyMigrations(ctx, db); err != nil {
		db.Close()
		return nil, err
	}

	logger.Info("Render journal opened", zap.String("path", path))
	return &Store{logger: logger, db: db}, nil
}

func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Record appends entry. A missing ID or timestamp is filled in.
func (s *Store) Record(ctx context.Context, entry domain.JournalEntry) error {
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	if entry.RenderedAt.IsZero() {
		entry.RenderedAt = time.Now().UTC()
	}

	_, err := s.db.ExecContext(ctx, `
INSERT INTO renders(id, kind, artwork_key, title, degraded, rendered_at)
VALUES (?, ?, ?, ?, ?, ?)
`, entry.ID, string(entry.Kind), entry.Key, entry.Title, boolToInt(entry.Degraded), ts(entry.RenderedAt))
	if err != nil {
		return fmt.Errorf("insert render: %w", err)
	}
	return nil
}

// Recent returns up to limit entries, newest first
func (s *Store) Recent(ctx context.Context, limit int) ([]domain.JournalEntry, error) {
	rows, err := s.db.QueryContext(ctx, `
SELECT id, kind, artwork_key, title, degraded, rendered_at
FROM renders
ORDER BY rendered_at DESC, rowid DESC
LIMIT ?
`, limit)
	if err != nil {
		return nil, fmt.Errorf("query renders: %w", err)
	}
	defer rows.Close()

	var out []domain.JournalEntry
	for rows.Next() {
		var (
			entry    domain.JournalEntry
			kind     string
			degraded int
			at       string
		)
		if err := rows.Scan(&entry.ID, &kind, &entry.Key, &entry.Title, &degraded, &at); err != nil {
			return nil, fmt.Errorf("scan render: %w", err)
		}
		entry.Kind = domain.ShownKind(kind)
		entry.Degraded = degraded != 0
		if entry.RenderedAt, err = parseTS(at); err != nil {
			return nil, fmt.Errorf("parse rendered_at %q: %w", at, err)
		}
		out = append(out, entry)
	}
	return out, rows.Err()
}

// Prune deletes entries rendered before cutoff and reports how many went
func (s *Store) Prune(ctx context.Context, before time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM renders WHERE rendered_at < ?`, ts(before))
	if err != nil {
		return 0, fmt.Errorf("prune renders: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("prune renders: %w", err)
	}
	if n > 0 {
		s.logger.Debug("Journal pruned", zap.Int64("rows", n))
	}
	return n, nil
}

func boolToInt(v bool) int {
	if v {
		return 1
	}
	return 0
}

// ts uses a fixed-width layout so lexical order matches time order
func ts(t time.Time) string {
	return t.UTC().Format("2006-01-02T15:04:05.000000000Z")
}

func parseTS(s string) (time.Time, error) {
	return time.Parse(time.RFC3339Nano, s)
}
