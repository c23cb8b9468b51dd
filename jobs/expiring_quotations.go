package jobs

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"github.com/jackc/pgx/v5/pgxpool"

	jobmetrics "github.com/okean-yachts/okean-cpq/internal/jobs"
)

// ExpiringQuotationsJob reminds sellers when a sent quotation approaches its
// validity date. Each window (20, 7 and 1 days before expiry) fires exactly
// once per quotation.
type ExpiringQuotationsJob struct {
	Pool    *pgxpool.Pool
	Mailer  Mailer
	Logger  *slog.Logger
	Metrics *jobmetrics.Metrics
	clock   func() time.Time
}

// NewExpiringQuotationsJob wires dependencies for the expiration scan.
func NewExpiringQuotationsJob(pool *pgxpool.Pool, mailer Mailer, logger *slog.Logger, metrics *jobmetrics.Metrics) *ExpiringQuotationsJob {
	return &ExpiringQuotationsJob{
		Pool:    pool,
		Mailer:  mailer,
		Logger:  logger,
		Metrics: metrics,
		clock: func() time.Time {
			return time.Now().UTC()
		},
	}
}

type expiringQuotation struct {
	ID          uuid.UUID
	Number      string
	ClientName  string
	ValidUntil  time.Time
	SellerEmail string
	SellerName  string
	SentD20     bool
	SentD7      bool
	SentD1      bool
}

type reminderWindow struct {
	Label  string
	Column string
}

// Handle processes TaskTypeExpiringQuotations tasks.
func (j *ExpiringQuotationsJob) Handle(ctx context.Context, t *asynq.Task) error {
	if j == nil || j.Pool == nil {
		return errors.New("expiring quotations: handler not configured")
	}

	tracker := j.metrics().Track(TaskTypeExpiringQuotations)
	var resultErr error
	defer func() {
		resultErr = tracker.End(resultErr)
	}()

	now := j.now()
	candidates, err := j.fetch(ctx, now)
	if err != nil {
		resultErr = err
		j.logger().Error("load expiring quotations", slog.Any("error", err))
		return resultErr
	}

	sent := 0
	for _, q := range candidates {
		window, ok := windowFor(q, now)
		if !ok {
			continue
		}
		if err := j.remind(ctx, q, window, now); err != nil {
			resultErr = err
			j.logger().Error("send expiration reminder",
				slog.String("quotation", q.Number),
				slog.String("window", window.Label),
				slog.Any("error", err))
			return resultErr
		}
		j.metrics().AddReminders(window.Label, 1)
		sent++
	}

	j.logger().Info("expiration scan completed",
		slog.Int("candidates", len(candidates)),
		slog.Int("reminders", sent))
	return resultErr
}

func (j *ExpiringQuotationsJob) fetch(ctx context.Context, now time.Time) ([]expiringQuotation, error) {
	rows, err := j.Pool.Query(ctx, `
		SELECT q.id, q.number, q.client_name, q.valid_until,
			COALESCE(u.email, ''), COALESCE(u.full_name, ''),
			q.expiration_reminder_sent_d20, q.expiration_reminder_sent_d7, q.expiration_reminder_sent_d1
		FROM quotations q
		LEFT JOIN users u ON u.id = q.created_by
		WHERE q.status = 'sent'
			AND q.valid_until IS NOT NULL
			AND q.valid_until >= $1
			AND q.valid_until <= $2
		ORDER BY q.valid_until`,
		now, now.AddDate(0, 0, 20))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]expiringQuotation, 0)
	for rows.Next() {
		var q expiringQuotation
		if err := rows.Scan(&q.ID, &q.Number, &q.ClientName, &q.ValidUntil,
			&q.SellerEmail, &q.SellerName, &q.SentD20, &q.SentD7, &q.SentD1); err != nil {
			return nil, err
		}
		out = append(out, q)
	}
	return out, rows.Err()
}

// windowFor picks the most urgent unsent reminder window for a quotation.
func windowFor(q expiringQuotation, now time.Time) (reminderWindow, bool) {
	days := int(q.ValidUntil.Sub(now).Hours() / 24)
	switch {
	case days <= 1 && !q.SentD1:
		return reminderWindow{Label: "d1", Column: "expiration_reminder_sent_d1"}, true
	case days <= 7 && days > 1 && !q.SentD7:
		return reminderWindow{Label: "d7", Column: "expiration_reminder_sent_d7"}, true
	case days <= 20 && days > 7 && !q.SentD20:
		return reminderWindow{Label: "d20", Column: "expiration_reminder_sent_d20"}, true
	}
	return reminderWindow{}, false
}

func (j *ExpiringQuotationsJob) remind(ctx context.Context, q expiringQuotation, window reminderWindow, now time.Time) error {
	if j.Mailer != nil && q.SellerEmail != "" {
		days := int(q.ValidUntil.Sub(now).Hours() / 24)
		payload := SendEmailPayload{
			To:      q.SellerEmail,
			Subject: fmt.Sprintf("Orçamento %s expira em %d dia(s)", q.Number, days),
			Body: fmt.Sprintf("O orçamento %s para %s expira em %s. Entre em contato com o cliente para renovar ou concluir a negociação.",
				q.Number, q.ClientName, q.ValidUntil.Format("02/01/2006")),
		}
		if _, err := j.Mailer.EnqueueSendEmail(ctx, payload); err != nil {
			return err
		}
	}
	_, err := j.Pool.Exec(ctx,
		`UPDATE quotations SET `+window.Column+` = TRUE, updated_at = $2 WHERE id = $1`,
		q.ID, now)
	return err
}

func (j *ExpiringQuotationsJob) logger() *slog.Logger {
	if j.Logger != nil {
		return j.Logger.With(slog.String("job", TaskTypeExpiringQuotations))
	}
	return slog.Default().With(slog.String("job", TaskTypeExpiringQuotations))
}

func (j *ExpiringQuotationsJob) metrics() *jobmetrics.Metrics {
	if j.Metrics != nil {
		return j.Metrics
	}
	return defaultJobMetrics
}

func (j *ExpiringQuotationsJob) now() time.Time {
	if j.clock != nil {
		return j.clock()
	}
	return time.Now().UTC()
}
