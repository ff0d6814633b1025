// internal/underwriting/rules/postgres_store_test.go
package rules

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mortgage-workers/internal/models"
)

func TestPostgresStore_LoadKnowledgeBase(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	defer db.Close()

	rows := sqlmock.NewRows([]string{"id", "guideline_id", "name", "conditions", "action", "priority"}).
		AddRow("cr-floor", "credit", "Credit floor",
			[]byte(`[{"field":"borrower.creditScore","operator":"<","value":620}]`),
			[]byte(`{"type":"DENY","reason":"below floor"}`), 100).
		AddRow("dti-flag", "capacity", "High DTI",
			[]byte(`[{"field":"ratios.dti","operator":">","value":50}]`),
			[]byte(`{"type":"FLAG_RISK","risk":"dti above 50"}`), 60)

	mock.ExpectQuery("SELECT id, guideline_id, name, conditions, action, priority").
		WithArgs("2025.2").
		WillReturnRows(rows)

	store := NewPostgresStore(db)
	kb, err := store.LoadKnowledgeBase(context.Background(), "2025.2")
	require.NoError(t, err)

	loaded := kb.Rules()
	require.Len(t, loaded, 2)
	assert.Equal(t, "cr-floor", loaded[0].ID)
	assert.Equal(t, models.ActionDeny, loaded[0].Action.Type)
	assert.Equal(t, models.FactField("borrower.creditScore"), loaded[0].Conditions[0].Field)
	assert.Equal(t, models.ActionFlagRisk, loaded[1].Action.Type)

	// sealed after load
	assert.Error(t, kb.AddRule(models.Rule{ID: "late", Action: models.RuleAction{Type: models.ActionDeny}}))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_EmptyResultIsError(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery("SELECT id, guideline_id, name, conditions, action, priority").
		WithArgs("2025.2").
		WillReturnRows(sqlmock.NewRows([]string{"id", "guideline_id", "name", "conditions", "action", "priority"}))

	store := NewPostgresStore(db)
	_, err = store.LoadKnowledgeBase(context.Background(), "2025.2")
	assert.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_BadActionJSON(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	defer db.Close()

	rows := sqlmock.NewRows([]string{"id", "guideline_id", "name", "conditions", "action", "priority"}).
		AddRow("broken", "credit", "Broken", []byte(`[]`), []byte(`{not json`), 1)

	mock.ExpectQuery("SELECT id, guideline_id, name, conditions, action, priority").
		WithArgs("2025.2").
		WillReturnRows(rows)

	store := NewPostgresStore(db)
	_, err = store.LoadKnowledgeBase(context.Background(), "2025.2")
	assert.Error(t, err)
}
