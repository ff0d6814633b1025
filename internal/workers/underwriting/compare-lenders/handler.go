// internal/workers/underwriting/compare-lenders/handler.go
package comparelenders

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"mortgage-workers/internal/common/errors"
	"mortgage-workers/internal/common/logger"
	"mortgage-workers/internal/common/metrics"
	"mortgage-workers/internal/underwriting/lender"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const (
	TaskType = "compare-lenders"
)

type Handler struct {
	selector *lender.Selector
	roster   lender.RosterStore
	config   *Config
	logger   logger.Logger
}

// NewHandler wires a selector and an optional roster store. A nil store
// means every job must carry its own lender list.
func NewHandler(config *Config, selector *lender.Selector, roster lender.RosterStore, log logger.Logger) *Handler {
	return &Handler{
		selector: selector,
		roster:   roster,
		config:   config,
		logger:   log.WithFields(map[string]interface{}{"taskType": TaskType}),
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
		code := "LENDER_COMPARISON_FAILED"
		if stdErr, ok := err.(*errors.StandardError); ok {
			code = string(stdErr.Code)
		}
		h.failJob(client, job, code, err.Error())
		return
	}

	h.completeJob(client, job, output)
	metrics.WorkerJobsCompleted.WithLabelValues(TaskType).Inc()
	metrics.WorkerJobDuration.WithLabelValues(TaskType).Observe(time.Since(startTime).Seconds())
}

func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	lenders := input.Lenders
	if len(lenders) == 0 {
		if h.roster == nil {
			return nil, errors.NewLenderRosterEmptyError()
		}
		loaded, err := h.roster.LoadRoster(ctx)
		if err != nil {
			return nil, errors.NewLenderRosterLoadFailedError(err)
		}
		lenders = loaded
	}
	if len(lenders) == 0 {
		return nil, errors.NewLenderRosterEmptyError()
	}

	comparisons := h.selector.Compare(ctx, lenders, &input.LoanApplication)

	output := &Output{Comparisons: comparisons}
	for _, c := range comparisons {
		if c.Recommended {
			output.RecommendedLenderID = c.Lender.ID
			output.RecommendedLenderName = c.Lender.Name
			break
		}
	}

	h.logger.Info("lenders compared", map[string]interface{}{
		"loanId":            input.LoanID,
		"lenderCount":       len(lenders),
		"comparedCount":     len(comparisons),
		"recommendedLender": output.RecommendedLenderID,
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
