// internal/workers/underwriting/notify-decision/handler.go
package notifydecision

import (
	"context"
	"encoding/json"
	"fmt"
	"time"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	sestypes "github.com/aws/aws-sdk-go-v2/service/ses/types"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"

	"mortgage-workers/internal/common/errors"
	"mortgage-workers/internal/common/logger"
	"mortgage-workers/internal/common/metrics"
	"mortgage-workers/internal/common/validation"
	"mortgage-workers/internal/underwriting/decision"
)

const (
	TaskType = "notify-decision"
)

// EmailSender is the slice of the SES client this worker uses.
type EmailSender interface {
	SendEmail(ctx context.Context, input *ses.SendEmailInput) (*ses.SendEmailOutput, error)
}

// SMSSender is the slice of the SNS client this worker uses.
type SMSSender interface {
	Publish(ctx context.Context, input *sns.PublishInput) (*sns.PublishOutput, error)
}

type Handler struct {
	email  EmailSender
	sms    SMSSender
	config *Config
	logger logger.Logger
}

// NewHandler wires the notification channels. A nil sender disables its
// channel regardless of config.
func NewHandler(config *Config, email EmailSender, sms SMSSender, log logger.Logger) *Handler {
	return &Handler{
		email:  email,
		sms:    sms,
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
		code := "NOTIFICATION_SEND_FAILED"
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

// execute sends the decision over every enabled channel. A missing or
// malformed recipient skips that channel with a warning; a transport
// failure fails the job so the engine retries.
func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	output := &Output{}

	if h.config.EmailEnabled && h.email != nil {
		sent, messageID, err := h.sendEmail(ctx, input)
		if err != nil {
			return nil, err
		}
		output.EmailSent = sent
		output.MessageID = messageID
	}

	if h.config.SMSEnabled && h.sms != nil && h.shouldSendSMS(input) {
		sent, err := h.sendSMS(ctx, input)
		if err != nil {
			return nil, err
		}
		output.SMSSent = sent
	}

	h.logger.Info("decision notification processed", map[string]interface{}{
		"loanId":    input.LoanID,
		"decision":  input.Decision,
		"emailSent": output.EmailSent,
		"smsSent":   output.SMSSent,
	})

	return output, nil
}

func (h *Handler) sendEmail(ctx context.Context, input *Input) (bool, string, error) {
	if !validation.ValidateEmail(input.BorrowerEmail) {
		h.logger.Warn("skipping email, recipient address invalid", map[string]interface{}{
			"loanId": input.LoanID,
		})
		return false, "", nil
	}

	subject, body := h.composeEmail(input)

	res, err := h.email.SendEmail(ctx, &ses.SendEmailInput{
		Source: aws.String(h.config.FromEmail),
		Destination: &sestypes.Destination{
			ToAddresses: []string{input.BorrowerEmail},
		},
		Message: &sestypes.Message{
			Subject: &sestypes.Content{Data: aws.String(subject)},
			Body: &sestypes.Body{
				Text: &sestypes.Content{Data: aws.String(body)},
			},
		},
	})
	if err != nil {
		return false, "", errors.NewNotificationSendFailedError("email", err)
	}

	messageID := ""
	if res != nil && res.MessageId != nil {
		messageID = *res.MessageId
	}
	return true, messageID, nil
}

func (h *Handler) sendSMS(ctx context.Context, input *Input) (bool, error) {
	if !validation.ValidatePhone(input.BorrowerPhone) {
		h.logger.Warn("skipping SMS, recipient phone invalid", map[string]interface{}{
			"loanId": input.LoanID,
		})
		return false, nil
	}

	_, err := h.sms.Publish(ctx, &sns.PublishInput{
		PhoneNumber: aws.String(input.BorrowerPhone),
		Message:     aws.String(h.composeSMS(input)),
	})
	if err != nil {
		return false, errors.NewNotificationSendFailedError("sms", err)
	}
	return true, nil
}

func (h *Handler) shouldSendSMS(input *Input) bool {
	if !h.config.SMSOnApprovalOnly {
		return true
	}
	return input.Decision == string(decision.Approved)
}

func (h *Handler) composeEmail(input *Input) (subject, body string) {
	var b strings.Builder
	fmt.Fprintf(&b, "Your loan application %s has been reviewed.\n\n", input.LoanID)

	switch input.Decision {
	case string(decision.Approved):
		subject = "Your loan application has been approved"
		b.WriteString("Congratulations, your application is approved.\n")
	case string(decision.Conditional):
		subject = "Your loan application is conditionally approved"
		b.WriteString("Your application is approved subject to the conditions below.\n")
	case string(decision.Rejected):
		subject = "Update on your loan application"
		b.WriteString("We are unable to approve your application at this time.\n")
	default:
		subject = "Update on your loan application"
		fmt.Fprintf(&b, "Decision: %s\n", input.Decision)
	}

	if len(input.Conditions) > 0 {
		b.WriteString("\nConditions:\n")
		for _, c := range input.Conditions {
			fmt.Fprintf(&b, "  - %s\n", c)
		}
	}
	if input.RecommendedLenderName != "" {
		fmt.Fprintf(&b, "\nRecommended lender: %s\n", input.RecommendedLenderName)
	}
	return subject, b.String()
}

func (h *Handler) composeSMS(input *Input) string {
	if input.Decision == string(decision.Approved) {
		return fmt.Sprintf("Good news! Loan application %s is approved. Check your email for details.", input.LoanID)
	}
	return fmt.Sprintf("Loan application %s has been reviewed: %s. Check your email for details.", input.LoanID, input.Decision)
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
