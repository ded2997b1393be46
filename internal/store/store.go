package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/text/unicode/norm"
	_ "modernc.org/sqlite"

	"github.com/valpere/voicetran/internal"
)

// Store keeps a local history of completed translations. It is an audit log:
// nothing here is read back to answer a translation request.
type Store struct {
	db *sql.DB
}

func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate: %w", err)
	}

	return s, nil
}

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS translation_history (
		id TEXT PRIMARY KEY,
		source_text TEXT NOT NULL,
		source_lang TEXT NOT NULL,
		target_lang TEXT NOT NULL,
		translated_text TEXT NOT NULL,
		service_name TEXT NOT NULL DEFAULT '',
		latency_ms INTEGER NOT NULL DEFAULT 0,
		primary_error TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_history_created ON translation_history(created_at);
	CREATE INDEX IF NOT EXISTS idx_history_pair ON translation_history(source_lang, target_lang);
	`

	_, err := s.db.Exec(schema)
	return err
}

// SaveTranslation appends rec to the history. An empty ID or Timestamp is
// filled in.
func (s *Store) SaveTranslation(ctx context.Context, rec internal.TranslationRecord) error {
	if rec.ID == "" {
		rec.ID = uuid.New().String()
	}
	if rec.Timestamp.IsZero() {
		rec.Timestamp = time.Now()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO translation_history (id, source_text, source_lang, target_lang, translated_text, service_name, latency_ms, primary_error, created_at) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.ID, normalizeText(rec.SourceText), rec.SourceLang, rec.TargetLang, rec.TranslatedText,
		rec.ServiceName, rec.Latency.Milliseconds(), rec.PrimaryError, rec.Timestamp.UTC())
	return err
}

// ListHistory returns the most recent entries first. limit <= 0 means all.
func (s *Store) ListHistory(ctx context.Context, limit int) ([]internal.TranslationRecord, error) {
	query := `SELECT id, source_text, source_lang, target_lang, translated_text, service_name, latency_ms, primary_error, created_at FROM translation_history ORDER BY created_at DESC, rowid DESC`
	var args []interface{}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []internal.TranslationRecord
	for rows.Next() {
		var e internal.TranslationRecord
		var latencyMs int64
		if err := rows.Scan(&e.ID, &e.SourceText, &e.SourceLang, &e.TargetLang, &e.TranslatedText, &e.ServiceName, &latencyMs, &e.PrimaryError, &e.Timestamp); err != nil {
			return nil, err
		}
		e.Latency = time.Duration(latencyMs) * time.Millisecond
		results = append(results, e)
	}

	return results, rows.Err()
}

// HistoryStats summarises the translation history.
type HistoryStats struct {
	TotalEntries  int
	FallbackCount int
	ByService     map[string]int
	AvgLatency    time.Duration
}

// Stats returns summary statistics for the history.
func (s *Store) Stats(ctx context.Context) (*HistoryStats, error) {
	stats := &HistoryStats{ByService: map[string]int{}}

	var avgMs float64
	err := s.db.QueryRowContext(ctx, `
		SELECT
			COUNT(*),
			COALESCE(SUM(CASE WHEN primary_error != '' THEN 1 ELSE 0 END), 0),
			COALESCE(AVG(latency_ms), 0)
		FROM translation_history`).Scan(
		&stats.TotalEntries,
		&stats.FallbackCount,
		&avgMs,
	)
	if err != nil {
		return nil, err
	}
	stats.AvgLatency = time.Duration(avgMs * float64(time.Millisecond))

	rows, err := s.db.QueryContext(ctx,
		`SELECT service_name, COUNT(*) FROM translation_history GROUP BY service_name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var name string
		var n int
		if err := rows.Scan(&name, &n); err != nil {
			return nil, err
		}
		stats.ByService[name] = n
	}
	return stats, rows.Err()
}

// DeleteEntry permanently removes a history entry by ID.
func (s *Store) DeleteEntry(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM translation_history WHERE id = ?`, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("history entry not found: %s", id)
	}
	return nil
}

// ClearHistory removes all entries.
func (s *Store) ClearHistory(ctx context.Context) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM translation_history`)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (s *Store) Close() error {
	return s.db.Close()
}

// normalizeText trims whitespace and applies Unicode NFC normalization so
// equal texts typed on different keyboards are stored identically.
func normalizeText(text string) string {
	return norm.NFC.String(strings.TrimSpace(text))
}
