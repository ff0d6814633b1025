// internal/underwriting/rules/postgres_store.go
package rules

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"mortgage-workers/internal/models"
)

// PostgresStore loads guideline rules from the underwriting_rules table.
// Conditions and the action payload are stored as JSONB; load order is
// priority descending then insertion order, matching evaluation ordering.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore wraps an open connection pool.
func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// LoadKnowledgeBase reads the active rule set for a guideline version and
// returns a sealed knowledge base. An empty result is an error so callers
// can fall back to the built-in set.
func (s *PostgresStore) LoadKnowledgeBase(ctx context.Context, version string) (*KnowledgeBase, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, guideline_id, name, conditions, action, priority
		FROM underwriting_rules
		WHERE version = $1 AND active = true
		ORDER BY priority DESC, created_at ASC`, version)
	if err != nil {
		return nil, fmt.Errorf("query underwriting_rules: %w", err)
	}
	defer rows.Close()

	kb := NewKnowledgeBase(version)
	count := 0
	for rows.Next() {
		var (
			rule           models.Rule
			conditionsJSON []byte
			actionJSON     []byte
		)
		if err := rows.Scan(&rule.ID, &rule.GuidelineID, &rule.Name,
			&conditionsJSON, &actionJSON, &rule.Priority); err != nil {
			return nil, fmt.Errorf("scan rule row: %w", err)
		}
		if err := json.Unmarshal(conditionsJSON, &rule.Conditions); err != nil {
			return nil, fmt.Errorf("rule %s: decode conditions: %w", rule.ID, err)
		}
		if err := json.Unmarshal(actionJSON, &rule.Action); err != nil {
			return nil, fmt.Errorf("rule %s: decode action: %w", rule.ID, err)
		}
		if err := kb.AddRule(rule); err != nil {
			return nil, err
		}
		count++
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rule rows: %w", err)
	}
	if count == 0 {
		return nil, fmt.Errorf("no active rules for version %s", version)
	}

	kb.Seal()
	return kb, nil
}
