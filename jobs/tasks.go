package jobs

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskTypeSendEmail is the task type for sending transactional emails.
	TaskTypeSendEmail = "mail:send"
	// TaskTypeQuotationPDF renders the commercial quotation document.
	TaskTypeQuotationPDF = "pdf:quotation"
	// TaskTypeATOPDF renders the change-order amendment document.
	TaskTypeATOPDF = "pdf:ato"
	// TaskTypeWorkflowNotify alerts the next assignee of a customization step.
	TaskTypeWorkflowNotify = "workflow:notify"
	// TaskTypeLimitsWarm refreshes the in-memory discount limit cache.
	TaskTypeLimitsWarm = "pricing:limits:warm"
	// TaskTypeExpiringQuotations scans for quotations close to their validity date.
	TaskTypeExpiringQuotations = "quotations:expiring"
)

// SendEmailPayload describes the information required to send an email.
type SendEmailPayload struct {
	To      string `json:"to"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

// DocumentPayload identifies the record a PDF task should render.
type DocumentPayload struct {
	ID uuid.UUID `json:"id"`
}

// WorkflowNotifyPayload tells the notify task who to alert and about what.
type WorkflowNotifyPayload struct {
	UserID          int64     `json:"user_id"`
	CustomizationID uuid.UUID `json:"customization_id"`
	Step            string    `json:"step"`
}

// NewSendEmailTask constructs an Asynq task.
func NewSendEmailTask(payload SendEmailPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskTypeSendEmail, data), nil
}

// NewQuotationPDFTask constructs a quotation document render task.
func NewQuotationPDFTask(quotationID uuid.UUID) (*asynq.Task, error) {
	data, err := json.Marshal(DocumentPayload{ID: quotationID})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskTypeQuotationPDF, data), nil
}

// NewATOPDFTask constructs a change-order document render task.
func NewATOPDFTask(atoID uuid.UUID) (*asynq.Task, error) {
	data, err := json.Marshal(DocumentPayload{ID: atoID})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskTypeATOPDF, data), nil
}

// NewWorkflowNotifyTask constructs a workflow notification task.
func NewWorkflowNotifyTask(payload WorkflowNotifyPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskTypeWorkflowNotify, data), nil
}

// NewLimitsWarmTask constructs a limit cache warmup task.
func NewLimitsWarmTask() *asynq.Task {
	return asynq.NewTask(TaskTypeLimitsWarm, nil)
}

// NewExpiringQuotationsTask constructs an expiration scan task.
func NewExpiringQuotationsTask() *asynq.Task {
	return asynq.NewTask(TaskTypeExpiringQuotations, nil)
}

// Mailer sends transactional mail, usually by enqueueing a mail:send task.
type Mailer interface {
	EnqueueSendEmail(ctx context.Context, payload SendEmailPayload) (*asynq.TaskInfo, error)
}

// HandleSendEmailTask processes TaskTypeSendEmail tasks.
func HandleSendEmailTask(ctx context.Context, t *asynq.Task) error {
	var payload SendEmailPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}
	// Placeholder: integrate with SMTP/Mailpit in phase 2.
	slog.Default().Info("send email",
		slog.String("to", payload.To),
		slog.String("subject", payload.Subject))
	return nil
}
