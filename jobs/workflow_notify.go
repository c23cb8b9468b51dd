package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/hibiken/asynq"
	"github.com/jackc/pgx/v5/pgxpool"

	jobmetrics "github.com/okean-yachts/okean-cpq/internal/jobs"
)

// WorkflowNotifyJob mails the assignee of a customization workflow step.
type WorkflowNotifyJob struct {
	Pool    *pgxpool.Pool
	Mailer  Mailer
	Logger  *slog.Logger
	Metrics *jobmetrics.Metrics
}

// NewWorkflowNotifyJob wires dependencies for the notify handler.
func NewWorkflowNotifyJob(pool *pgxpool.Pool, mailer Mailer, logger *slog.Logger, metrics *jobmetrics.Metrics) *WorkflowNotifyJob {
	return &WorkflowNotifyJob{Pool: pool, Mailer: mailer, Logger: logger, Metrics: metrics}
}

var stepSubjects = map[string]string{
	"pm_initial":     "Nova customização aguardando análise inicial",
	"supply_quote":   "Customização aguardando cotação de suprimentos",
	"planning_check": "Customização aguardando validação de planejamento",
	"pm_final":       "Customização aguardando aprovação final",
}

// Handle processes TaskTypeWorkflowNotify tasks.
func (j *WorkflowNotifyJob) Handle(ctx context.Context, t *asynq.Task) error {
	if j == nil || j.Pool == nil {
		return errors.New("workflow notify: handler not configured")
	}
	var payload WorkflowNotifyPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}

	tracker := j.metrics().Track(TaskTypeWorkflowNotify)
	var resultErr error
	defer func() {
		resultErr = tracker.End(resultErr)
	}()

	var email, name string
	err := j.Pool.QueryRow(ctx,
		`SELECT email, full_name FROM users WHERE id = $1 AND is_active`,
		payload.UserID).Scan(&email, &name)
	if err != nil {
		// Assignee gone or deactivated, nothing to deliver.
		j.logger().Warn("notify assignee lookup",
			slog.Int64("user_id", payload.UserID),
			slog.Any("error", err))
		return nil
	}

	subject, ok := stepSubjects[payload.Step]
	if !ok {
		subject = "Customização aguardando sua ação"
	}
	if j.Mailer != nil {
		_, resultErr = j.Mailer.EnqueueSendEmail(ctx, SendEmailPayload{
			To:      email,
			Subject: subject,
			Body: fmt.Sprintf("Olá %s, a customização %s aguarda sua ação na etapa %s.",
				name, payload.CustomizationID, payload.Step),
		})
		if resultErr != nil {
			return resultErr
		}
	}
	j.logger().Info("assignee notified",
		slog.String("customization", payload.CustomizationID.String()),
		slog.String("step", payload.Step))
	return resultErr
}

func (j *WorkflowNotifyJob) logger() *slog.Logger {
	if j.Logger != nil {
		return j.Logger.With(slog.String("job", TaskTypeWorkflowNotify))
	}
	return slog.Default().With(slog.String("job", TaskTypeWorkflowNotify))
}

func (j *WorkflowNotifyJob) metrics() *jobmetrics.Metrics {
	if j.Metrics != nil {
		return j.Metrics
	}
	return defaultJobMetrics
}
