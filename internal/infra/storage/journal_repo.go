package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/MRamiBalles/LogosOmega/server/internal/events"
	"github.com/MRamiBalles/LogosOmega/server/internal/platform/metrics"
)

// SQLiteJournalRepository persists audit journal entries. It backs the
// in-memory journal as its write-through Persister.
type SQLiteJournalRepository struct {
	db *sql.DB
}

func NewSQLiteJournalRepository(db *sql.DB) *SQLiteJournalRepository {
	return &SQLiteJournalRepository{db: db}
}

// Append stores one journal entry. Entries are never updated or deleted.
func (r *SQLiteJournalRepository) Append(entry events.Entry) error {
	start := time.Now()
	payloadBytes, err := json.Marshal(entry.Payload)
	if err != nil {
		return fmt.Errorf("failed to marshal journal payload: %w", err)
	}

	query := `
		INSERT INTO journal (id, timestamp, kind, level, actor, message, payload)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`
	_, err = r.db.Exec(query,
		entry.ID, entry.Timestamp, string(entry.Kind), string(entry.Level),
		entry.Actor, entry.Message, string(payloadBytes),
	)
	metrics.Get().RecordEntryWrite(time.Since(start), err)
	if err != nil {
		return fmt.Errorf("failed to append journal entry: %w", err)
	}
	return nil
}

func (r *SQLiteJournalRepository) getMany(ctx context.Context, query string, args ...interface{}) ([]events.Entry, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []events.Entry
	for rows.Next() {
		var e events.Entry
		var kind, level, payloadStr string
		err := rows.Scan(&e.ID, &e.Timestamp, &kind, &level, &e.Actor, &e.Message, &payloadStr)
		if err != nil {
			return nil, err
		}
		e.Kind = events.Kind(kind)
		e.Level = events.Level(level)
		if payloadStr != "" && payloadStr != "null" {
			if err := json.Unmarshal([]byte(payloadStr), &e.Payload); err != nil {
				return nil, err
			}
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Recent returns the newest entries, oldest first.
func (r *SQLiteJournalRepository) Recent(ctx context.Context, limit int) ([]events.Entry, error) {
	query := `SELECT id, timestamp, kind, level, actor, message, payload FROM journal ORDER BY timestamp DESC LIMIT ?`
	entries, err := r.getMany(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	for i, j := 0, len(entries)-1; i < j; i, j = i+1, j-1 {
		entries[i], entries[j] = entries[j], entries[i]
	}
	return entries, nil
}

// GetByKind returns all stored entries of one kind, oldest first.
func (r *SQLiteJournalRepository) GetByKind(ctx context.Context, kind events.Kind) ([]events.Entry, error) {
	query := `SELECT id, timestamp, kind, level, actor, message, payload FROM journal WHERE kind = ? ORDER BY timestamp ASC`
	return r.getMany(ctx, query, string(kind))
}
