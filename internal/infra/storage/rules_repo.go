package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/MRamiBalles/LogosOmega/server/internal/audit"
)

// SQLiteRuleRepository implements RuleConfigSource over a single-row table
// holding the serialized rule set and a revision counter for change polling.
type SQLiteRuleRepository struct {
	db           *sql.DB
	pollInterval time.Duration
}

func NewSQLiteRuleRepository(db *sql.DB, pollInterval time.Duration) *SQLiteRuleRepository {
	return &SQLiteRuleRepository{db: db, pollInterval: pollInterval}
}

// ReadRules returns the stored rule set, or (nil, nil) when none has been
// written yet.
func (r *SQLiteRuleRepository) ReadRules(ctx context.Context) ([]audit.Rule, error) {
	var rulesJSON string
	err := r.db.QueryRowContext(ctx, `SELECT rules_json FROM rule_config WHERE id = 1`).Scan(&rulesJSON)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read rule config: %w", err)
	}

	var rules []audit.Rule
	if err := json.Unmarshal([]byte(rulesJSON), &rules); err != nil {
		return nil, fmt.Errorf("failed to decode rule config: %w", err)
	}
	return rules, nil
}

// ReplaceRules validates and stores a complete replacement rule set, bumping
// the revision so subscribers pick it up.
func (r *SQLiteRuleRepository) ReplaceRules(ctx context.Context, rules []audit.Rule) error {
	if err := audit.Validate(rules); err != nil {
		return fmt.Errorf("rejecting rule set: %w", err)
	}
	raw, err := json.Marshal(rules)
	if err != nil {
		return fmt.Errorf("failed to marshal rule set: %w", err)
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO rule_config (id, rules_json, revision, updated_at)
		VALUES (1, ?, 1, ?)
		ON CONFLICT(id) DO UPDATE SET
			rules_json=excluded.rules_json,
			revision=rule_config.revision + 1,
			updated_at=excluded.updated_at
	`, string(raw), time.Now())
	if err != nil {
		return fmt.Errorf("failed to write rule config: %w", err)
	}
	return nil
}

// Subscribe polls the rule revision and delivers the full replacement set to
// onChange whenever it advances. It blocks until ctx is cancelled.
func (r *SQLiteRuleRepository) Subscribe(ctx context.Context, onChange func([]audit.Rule)) {
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
			rules, err := r.ReadRules(ctx)
			if err != nil || rules == nil {
				continue
			}
			onChange(rules)
		}
	}
}

func (r *SQLiteRuleRepository) revision(ctx context.Context) int64 {
	var rev int64
	if err := r.db.QueryRowContext(ctx, `SELECT revision FROM rule_config WHERE id = 1`).Scan(&rev); err != nil {
		return -1
	}
	return rev
}
