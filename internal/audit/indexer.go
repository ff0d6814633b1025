// Package audit records every underwriting decision to Elasticsearch so the
// decision trail can be searched later. Indexing is best effort: a failed
// write is logged and surfaced to the caller, but callers treat it as
// non-fatal and never roll a decision back over it.
package audit

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/google/uuid"

	"mortgage-workers/internal/common/logger"
	"mortgage-workers/internal/models"
	"mortgage-workers/internal/underwriting/decision"
)

// DecisionRecord is the document shape written to the audit index.
type DecisionRecord struct {
	RecordID       string             `json:"recordId"`
	LoanID         string             `json:"loanId"`
	Decision       decision.Outcome   `json:"decision"`
	DTI            float64            `json:"dti"`
	LTV            float64            `json:"ltv"`
	Conditions     []models.Condition `json:"conditions,omitempty"`
	Notes          []string           `json:"notes,omitempty"`
	Recommendation string             `json:"ausRecommendation,omitempty"`
	WorkflowKey    int64              `json:"workflowKey,omitempty"`
	RecordedAt     time.Time          `json:"recordedAt"`
}

// Indexer writes decision records to Elasticsearch.
type Indexer struct {
	client *elasticsearch.Client
	index  string
	log    logger.Logger
}

// NewIndexer builds an indexer targeting the given index.
func NewIndexer(client *elasticsearch.Client, index string, log logger.Logger) *Indexer {
	return &Indexer{client: client, index: index, log: log}
}

// IndexDecision writes an evaluation outcome for a loan. The record ID is
// generated here so retried jobs produce distinct documents rather than
// overwriting each other.
func (i *Indexer) IndexDecision(ctx context.Context, loanID string, eval decision.Evaluation, recommendation string, workflowKey int64) error {
	record := DecisionRecord{
		RecordID:       uuid.NewString(),
		LoanID:         loanID,
		Decision:       eval.Decision,
		DTI:            eval.DTI,
		LTV:            eval.LTV,
		Conditions:     eval.Conditions,
		Notes:          eval.Notes,
		Recommendation: recommendation,
		WorkflowKey:    workflowKey,
		RecordedAt:     time.Now().UTC(),
	}
	return i.Index(ctx, record)
}

// Index writes a prepared record.
func (i *Indexer) Index(ctx context.Context, record DecisionRecord) error {
	body, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("failed to marshal decision record: %w", err)
	}

	res, err := i.client.Index(
		i.index,
		bytes.NewReader(body),
		i.client.Index.WithDocumentID(record.RecordID),
		i.client.Index.WithContext(ctx),
	)
	if err != nil {
		i.log.Error("decision audit write failed", map[string]interface{}{
			"loanId": record.LoanID,
			"index":  i.index,
			"error":  err,
		})
		return fmt.Errorf("failed to index decision record: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		i.log.Error("decision audit write rejected", map[string]interface{}{
			"loanId": record.LoanID,
			"index":  i.index,
			"status": res.Status(),
		})
		return fmt.Errorf("decision record rejected: %s", res.Status())
	}

	i.log.Debug("decision recorded", map[string]interface{}{
		"loanId":   record.LoanID,
		"recordId": record.RecordID,
		"decision": string(record.Decision),
	})
	return nil
}
