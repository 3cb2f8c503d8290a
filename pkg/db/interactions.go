package db

import (
	"context"
	"fmt"
	"time"

	"github.com/dtnitsch/cbsl-assistant/models"
)

const (
	// DefaultRecentLimit is used when RecentInteractions is given limit <= 0.
	DefaultRecentLimit = 200
	// MaxRecentLimit caps a single read-back.
	MaxRecentLimit = 1000
)

// AppendInteraction stores entry and returns it with its assigned id. A zero
// Timestamp is set to the current time.
func (db *DB) AppendInteraction(ctx context.Context, entry models.LogEntry) (models.LogEntry, error) {
	db.writeMu.Lock()
	defer db.writeMu.Unlock()

	if entry.Timestamp.IsZero() {
		entry.Timestamp = time.Now().UTC()
	}

	result, err := db.ExecContext(ctx, `
		INSERT INTO interactions (ts, question, answer, lang)
		VALUES (?, ?, ?, ?)
	`, entry.Timestamp.UnixNano(), entry.Question, entry.Answer, string(entry.Language))
	if err != nil {
		return models.LogEntry{}, fmt.Errorf("failed to insert interaction: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return models.LogEntry{}, fmt.Errorf("failed to get interaction ID: %w", err)
	}
	entry.ID = id
	return entry, nil
}

// RecentInteractions returns up to limit entries, newest first.
func (db *DB) RecentInteractions(ctx context.Context, limit int) ([]models.LogEntry, error) {
	return db.queryInteractions(ctx, `
		SELECT id, ts, question, answer, lang
		FROM interactions
		ORDER BY ts DESC, id DESC
		LIMIT ?
	`, clampLimit(limit))
}

// RecentInteractionsByLanguage is RecentInteractions restricted to one language.
func (db *DB) RecentInteractionsByLanguage(ctx context.Context, lang models.Language, limit int) ([]models.LogEntry, error) {
	return db.queryInteractions(ctx, `
		SELECT id, ts, question, answer, lang
		FROM interactions
		WHERE lang = ?
		ORDER BY ts DESC, id DESC
		LIMIT ?
	`, string(lang), clampLimit(limit))
}

func clampLimit(limit int) int {
	if limit <= 0 {
		return DefaultRecentLimit
	}
	if limit > MaxRecentLimit {
		return MaxRecentLimit
	}
	return limit
}

func (db *DB) queryInteractions(ctx context.Context, query string, args ...any) ([]models.LogEntry, error) {
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query interactions: %w", err)
	}
	defer rows.Close()

	entries := []models.LogEntry{}
	for rows.Next() {
		var e models.LogEntry
		var ts int64
		var lang string
		if err := rows.Scan(&e.ID, &ts, &e.Question, &e.Answer, &lang); err != nil {
			return nil, fmt.Errorf("failed to scan interaction: %w", err)
		}
		e.Timestamp = time.Unix(0, ts).UTC()
		e.Language = models.Language(lang)
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read interactions: %w", err)
	}
	return entries, nil
}

// CountInteractions returns the number of stored interactions, in lang only
// when it is non-empty.
func (db *DB) CountInteractions(ctx context.Context, lang models.Language) (int, error) {
	query, args := "SELECT COUNT(*) FROM interactions", []any{}
	if lang != "" {
		query += " WHERE lang = ?"
		args = append(args, string(lang))
	}
	var n int
	if err := db.QueryRowContext(ctx, query, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count interactions: %w", err)
	}
	return n, nil
}
