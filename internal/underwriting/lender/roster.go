// internal/underwriting/lender/roster.go
package lender

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"mortgage-workers/internal/models"
)

// RosterStore loads the configured lender roster.
type RosterStore interface {
	LoadRoster(ctx context.Context) ([]models.LenderProfile, error)
}

// PostgresRosterStore reads lender profiles from the lender_profiles table.
// Supported loan types are stored as JSONB; API credentials come back with
// the row and stay opaque to the selector.
type PostgresRosterStore struct {
	db    *sql.DB
	table string
}

// NewPostgresRosterStore wraps an open connection pool. An empty table name
// falls back to lender_profiles.
func NewPostgresRosterStore(db *sql.DB, table string) *PostgresRosterStore {
	if table == "" {
		table = "lender_profiles"
	}
	return &PostgresRosterStore{db: db, table: table}
}

// LoadRoster returns every lender profile, enabled or not; the selector
// filters on Enabled so disabled lenders still show up in operator tooling.
func (s *PostgresRosterStore) LoadRoster(ctx context.Context) ([]models.LenderProfile, error) {
	query := fmt.Sprintf(`
		SELECT id, name, api_base_url, api_key, aus_provider, credit_bureau,
		       lender_type, enabled, min_credit_score, max_ltv, max_dti, loan_types
		FROM %s
		ORDER BY name ASC`, s.table)

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", s.table, err)
	}
	defer rows.Close()

	var roster []models.LenderProfile
	for rows.Next() {
		var (
			profile       models.LenderProfile
			loanTypesJSON []byte
		)
		if err := rows.Scan(&profile.ID, &profile.Name, &profile.APIBaseURL,
			&profile.APIKey, &profile.AUSProvider, &profile.CreditBureau,
			&profile.Type, &profile.Enabled, &profile.MinCreditScore,
			&profile.MaxLoanToValue, &profile.MaxDebtToIncome, &loanTypesJSON); err != nil {
			return nil, fmt.Errorf("scan lender row: %w", err)
		}
		if err := json.Unmarshal(loanTypesJSON, &profile.SupportedLoanTypes); err != nil {
			return nil, fmt.Errorf("lender %s: decode loan types: %w", profile.ID, err)
		}
		roster = append(roster, profile)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate lender rows: %w", err)
	}
	return roster, nil
}
