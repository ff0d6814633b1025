// internal/workers/underwriting/evaluate-underwriting/handler.go
package evaluateunderwriting

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"mortgage-workers/internal/audit"
	"mortgage-workers/internal/common/logger"
	"mortgage-workers/internal/common/metrics"
	"mortgage-workers/internal/underwriting/decision"
	"mortgage-workers/internal/underwriting/ratios"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const (
	TaskType = "evaluate-underwriting"
)

// DecisionIndexer records the outcome for audit; nil disables recording.
type DecisionIndexer interface {
	IndexDecision(ctx context.Context, loanID string, eval decision.Evaluation, recommendation string, workflowKey int64) error
}

type Handler struct {
	calculator *decision.Calculator
	indexer    DecisionIndexer
	config     *Config
	logger     logger.Logger
}

func NewHandler(config *Config, indexer *audit.Indexer, log logger.Logger) *Handler {
	h := &Handler{
		calculator: decision.NewCalculator(ratios.NewCalculator(config.AssumedAnnualRate), nil),
		config:     config,
		logger:     log.WithFields(map[string]interface{}{"taskType": TaskType}),
	}
	if indexer != nil {
		h.indexer = indexer
	}
	return h
}

// NewHandlerWithCalculator allows injecting a calculator with a fixed ID
// generator; used by tests.
func NewHandlerWithCalculator(config *Config, calc *decision.Calculator, indexer DecisionIndexer, log logger.Logger) *Handler {
	return &Handler{
		calculator: calc,
		indexer:    indexer,
		config:     config,
		logger:     log.WithFields(map[string]interface{}{"taskType": TaskType}),
	}
}

func (h *Handler) Handle(client worker.JobClient, job entities.Job) {
	startTime := time.Now()
	metrics.WorkerJobsActive.WithLabelValues(TaskType).Inc()
	defer metrics.WorkerJobsActive.WithLabelValues(TaskType).Dec()

	h.logger.Info("processing job", map[string]interface{}{
		"jobKey":      job.Key,
		"workflowKey": job.ProcessInstanceKey,
	})

	var input Input
	if err := json.Unmarshal([]byte(job.Variables), &input); err != nil {
		h.failJob(client, job, "PARSE_ERROR", fmt.Sprintf("parse input: %v", err))
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), h.config.Timeout)
	defer cancel()

	output, err := h.execute(ctx, &input, job.ProcessInstanceKey)
	if err != nil {
		h.failJob(client, job, "UNDERWRITING_EVALUATION_FAILED", err.Error())
		return
	}

	h.completeJob(client, job, output)
	metrics.WorkerJobsCompleted.WithLabelValues(TaskType).Inc()
	metrics.WorkerJobDuration.WithLabelValues(TaskType).Observe(time.Since(startTime).Seconds())
}

func (h *Handler) execute(ctx context.Context, input *Input, workflowKey int64) (*Output, error) {
	eval := h.calculator.Evaluate(input.LoanID, &input.LoanApplication)

	metrics.UnderwritingDecisions.WithLabelValues(string(eval.Decision)).Inc()

	h.logger.Info("underwriting decision", map[string]interface{}{
		"loanId":     input.LoanID,
		"decision":   string(eval.Decision),
		"dti":        eval.DTI,
		"ltv":        eval.LTV,
		"conditions": len(eval.Conditions),
	})

	// Audit is best effort: a failed write never changes the decision.
	if h.indexer != nil {
		if err := h.indexer.IndexDecision(ctx, input.LoanID, *eval, input.AUSRecommendation, workflowKey); err != nil {
			h.logger.Warn("decision audit failed", map[string]interface{}{
				"loanId": input.LoanID,
				"error":  err,
			})
		}
	}

	return &Output{
		Decision:   string(eval.Decision),
		DTI:        eval.DTI,
		LTV:        eval.LTV,
		Conditions: eval.Conditions,
		Notes:      eval.Notes,
	}, nil
}

func (h *Handler) completeJob(client worker.JobClient, job entities.Job, output *Output) {
	cmd, err := client.NewCompleteJobCommand().
		JobKey(job.Key).
		VariablesFromObject(output)
	if err != nil {
		h.logger.Error("failed to create complete job command", map[string]interface{}{
			"error": err,
		})
		return
	}
	_, err = cmd.Send(context.Background())
	if err != nil {
		h.logger.Error("failed to send complete job command", map[string]interface{}{
			"error": err,
		})
	}
}

func (h *Handler) failJob(client worker.JobClient, job entities.Job, errorCode, errorMessage string) {
	metrics.WorkerJobsFailed.WithLabelValues(TaskType, errorCode).Inc()
	h.logger.Error("job failed", map[string]interface{}{
		"jobKey":       job.Key,
		"errorCode":    errorCode,
		"errorMessage": errorMessage,
	})

	_, err := client.NewThrowErrorCommand().
		JobKey(job.Key).
		ErrorCode(errorCode).
		ErrorMessage(errorMessage).
		Send(context.Background())
	if err != nil {
		h.logger.Error("failed to throw error", map[string]interface{}{
			"error": err,
		})
	}
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input, 0)
}
