package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/MRamiBalles/LogosOmega/server/internal/domain/currency"
	"github.com/MRamiBalles/LogosOmega/server/internal/state"
)

// SQLiteStateRepository implements StateRepository on top of a field-scoped
// document table. Each top-level field of the system state is one row, so a
// partial write never clobbers fields it does not name.
type SQLiteStateRepository struct {
	db           *sql.DB
	pollInterval time.Duration
}

func NewSQLiteStateRepository(db *sql.DB, pollInterval time.Duration) *SQLiteStateRepository {
	return &SQLiteStateRepository{db: db, pollInterval: pollInterval}
}

// WriteState upserts each named field and bumps the document revision in a
// single transaction, so subscribers observe every write at most once.
func (r *SQLiteStateRepository) WriteState(partial map[string]interface{}) error {
	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin state write: %w", err)
	}
	defer tx.Rollback()

	now := time.Now()
	for field, value := range partial {
		raw, err := json.Marshal(value)
		if err != nil {
			return fmt.Errorf("failed to marshal state field %q: %w", field, err)
		}
		_, err = tx.Exec(`
			INSERT INTO system_state (field, value, updated_at)
			VALUES (?, ?, ?)
			ON CONFLICT(field) DO UPDATE SET
				value=excluded.value,
				updated_at=excluded.updated_at
		`, field, string(raw), now)
		if err != nil {
			return fmt.Errorf("failed to write state field %q: %w", field, err)
		}
	}

	if _, err := tx.Exec(`UPDATE state_meta SET revision = revision + 1 WHERE id = 1`); err != nil {
		return fmt.Errorf("failed to bump state revision: %w", err)
	}
	return tx.Commit()
}

// ReadState reassembles the full state document from its field rows.
// It returns (nil, nil) when no document has ever been written.
func (r *SQLiteStateRepository) ReadState(ctx context.Context) (*state.SystemState, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT field, value FROM system_state`)
	if err != nil {
		return nil, fmt.Errorf("failed to read state: %w", err)
	}
	defer rows.Close()

	s := &state.SystemState{
		Rates:       map[currency.Code]float64{},
		TotalSupply: map[currency.Code]float64{},
	}
	found := false
	for rows.Next() {
		var field, value string
		if err := rows.Scan(&field, &value); err != nil {
			return nil, err
		}
		found = true
		raw := []byte(value)
		switch field {
		case "halted":
			err = json.Unmarshal(raw, &s.Halted)
		case "pressure":
			err = json.Unmarshal(raw, &s.Pressure)
		case "rates":
			err = json.Unmarshal(raw, &s.Rates)
		case "total_supply":
			err = json.Unmarshal(raw, &s.TotalSupply)
		case "accounts":
			s.Accounts = nil
			err = json.Unmarshal(raw, &s.Accounts)
		case "infrastructure":
			err = json.Unmarshal(raw, &s.Infrastructure)
		default:
			// Unknown fields written by a newer server version are skipped.
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("failed to decode state field %q: %w", field, err)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if !found {
		return nil, nil
	}
	for _, a := range s.Accounts {
		if a.Balances == nil {
			a.Balances = map[currency.Code]float64{}
		}
	}
	return s, nil
}

// Subscribe polls the document revision and delivers a full snapshot to
// onChange whenever it advances. It blocks until ctx is cancelled.
func (r *SQLiteStateRepository) Subscribe(ctx context.Context, onChange func(*state.SystemState)) {
	ticker := time.NewTicker(r.pollInterval)
	defer ticker.Stop()

	lastRev := r.revision(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			rev := r.revision(ctx)
			if rev == lastRev {
				continue
			}
			lastRev = rev
			s, err := r.ReadState(ctx)
			if err != nil || s == nil {
				continue
			}
			onChange(s)
		}
	}
}

func (r *SQLiteStateRepository) revision(ctx context.Context) int64 {
	var rev int64
	if err := r.db.QueryRowContext(ctx, `SELECT revision FROM state_meta WHERE id = 1`).Scan(&rev); err != nil {
		return -1
	}
	return rev
}
