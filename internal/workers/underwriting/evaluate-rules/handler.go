// internal/workers/underwriting/evaluate-rules/handler.go
package evaluaterules

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"mortgage-workers/internal/common/logger"
	"mortgage-workers/internal/common/metrics"
	"mortgage-workers/internal/models"
	"mortgage-workers/internal/underwriting/ratios"
	"mortgage-workers/internal/underwriting/rules"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const (
	TaskType = "evaluate-rules"
)

type Handler struct {
	kb     *rules.KnowledgeBase
	ratios *ratios.Calculator
	config *Config
	logger logger.Logger
}

// NewHandler evaluates against the given knowledge base; the base is sealed
// at startup, so the handler is safe for concurrent jobs.
func NewHandler(config *Config, kb *rules.KnowledgeBase, log logger.Logger) *Handler {
	return &Handler{
		kb:     kb,
		ratios: ratios.NewCalculator(config.AssumedAnnualRate),
		config: config,
		logger: log.WithFields(map[string]interface{}{"taskType": TaskType}),
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

	output, err := h.execute(ctx, &input)
	if err != nil {
		h.failJob(client, job, "RULE_EVALUATION_FAILED", err.Error())
		return
	}

	h.completeJob(client, job, output)
	metrics.WorkerJobsCompleted.WithLabelValues(TaskType).Inc()
	metrics.WorkerJobDuration.WithLabelValues(TaskType).Observe(time.Since(startTime).Seconds())
}

func (h *Handler) execute(_ context.Context, input *Input) (*Output, error) {
	facts := rules.NewFactSet(input.LoanApplication, h.ratios)
	result := h.kb.Evaluate(facts)

	output := &Output{
		GuidelineVersion:  h.kb.Version(),
		Denied:            result.Denied,
		DenyReason:        result.DenyReason,
		FiredRules:        result.Fired,
		RequiredDocuments: []string{},
		RiskFlags:         []string{},
	}

	for _, fired := range result.Fired {
		metrics.RulesFired.WithLabelValues(string(fired.Action.Type)).Inc()

		switch fired.Action.Type {
		case models.ActionRequireDocument:
			output.RequiredDocuments = append(output.RequiredDocuments, string(fired.Action.Document))
		case models.ActionFlagRisk:
			output.RiskFlags = append(output.RiskFlags, fired.Action.Risk)
		}
	}

	if adj, ok := result.RateAdjustment(); ok {
		output.RateAdjustment = adj.RateDelta
		output.RateTier = adj.Tier
	}

	h.logger.Info("rules evaluated", map[string]interface{}{
		"loanId":           input.LoanID,
		"guidelineVersion": output.GuidelineVersion,
		"firedCount":       len(result.Fired),
		"denied":           result.Denied,
	})

	return output, nil
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
	return h.execute(ctx, input)
}
