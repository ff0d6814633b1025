// internal/workers/underwriting/validate-loan-application/handler.go
package validateloanapplication

import (
	"context"
	"encoding/json"
	"fmt"
	"time"
	"strings"

	"mortgage-workers/internal/common/errors"
	"mortgage-workers/internal/common/logger"
	"mortgage-workers/internal/common/metrics"
	"mortgage-workers/internal/common/validation"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const (
	TaskType = "validate-loan-application"
)

type Handler struct {
	validator *validation.Validator
	config    *Config
	logger    logger.Logger
}

// NewHandler compiles the loan application schema once; the compiled schema
// is shared across concurrent jobs.
func NewHandler(config *Config, log logger.Logger) (*Handler, error) {
	validator, err := validation.NewLoanApplicationValidator()
	if err != nil {
		return nil, fmt.Errorf("compile loan application schema: %w", err)
	}
	return &Handler{
		validator: validator,
		config:    config,
		logger:    log.WithFields(map[string]interface{}{"taskType": TaskType}),
	}, nil
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
		code := "VALIDATION_ERROR"
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

// execute validates the raw application. A schema violation is a business
// error thrown back to the process, not a retryable failure; the output
// carries the field-level detail either way.
func (h *Handler) execute(_ context.Context, input *Input) (*Output, error) {
	if input.LoanApplication == nil {
		return nil, errors.NewLoanValidationFailedError("loanApplication variable is missing")
	}

	result, err := h.validator.Validate(input.LoanApplication)
	if err != nil {
		return nil, fmt.Errorf("validate application: %w", err)
	}

	if !result.Valid {
		h.logger.Warn("loan application rejected", map[string]interface{}{
			"loanId": input.LoanID,
			"errors": result.GetErrorMessages(),
		})
		return nil, errors.NewLoanValidationFailedError(
			strings.Join(result.GetErrorMessages(), "; "))
	}

	h.logger.Info("loan application validated", map[string]interface{}{
		"loanId": input.LoanID,
	})

	return &Output{Valid: true}, nil
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
