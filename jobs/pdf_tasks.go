package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/hibiken/asynq"

	jobmetrics "github.com/okean-yachts/okean-cpq/internal/jobs"
	"github.com/okean-yachts/okean-cpq/internal/report"
)

var defaultJobMetrics = jobmetrics.NewMetrics(nil)

// DocumentJob renders quotation and change-order PDFs and stores them on disk.
type DocumentJob struct {
	Reports *report.Service
	OutDir  string
	Logger  *slog.Logger
	Metrics *jobmetrics.Metrics
}

// NewDocumentJob wires dependencies for the PDF handlers.
func NewDocumentJob(reports *report.Service, outDir string, logger *slog.Logger, metrics *jobmetrics.Metrics) *DocumentJob {
	return &DocumentJob{Reports: reports, OutDir: outDir, Logger: logger, Metrics: metrics}
}

// HandleQuotation processes TaskTypeQuotationPDF tasks.
func (j *DocumentJob) HandleQuotation(ctx context.Context, t *asynq.Task) error {
	return j.handle(ctx, t, TaskTypeQuotationPDF)
}

// HandleATO processes TaskTypeATOPDF tasks.
func (j *DocumentJob) HandleATO(ctx context.Context, t *asynq.Task) error {
	return j.handle(ctx, t, TaskTypeATOPDF)
}

func (j *DocumentJob) handle(ctx context.Context, t *asynq.Task, taskType string) error {
	if j == nil || j.Reports == nil {
		return errors.New("document job: handler not configured")
	}
	var payload DocumentPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}

	tracker := j.metrics().Track(taskType)
	var resultErr error
	defer func() {
		resultErr = tracker.End(resultErr)
	}()

	var (
		pdf      []byte
		filename string
	)
	if taskType == TaskTypeATOPDF {
		pdf, filename, resultErr = j.Reports.ATOPDF(ctx, payload.ID)
	} else {
		pdf, filename, resultErr = j.Reports.QuotationPDF(ctx, payload.ID)
	}
	logger := j.logger(taskType).With(slog.String("id", payload.ID.String()))
	if resultErr != nil {
		logger.Error("render document", slog.Any("error", resultErr))
		return resultErr
	}

	if resultErr = j.store(filename, pdf); resultErr != nil {
		logger.Error("store document", slog.Any("error", resultErr))
		return resultErr
	}
	logger.Info("document rendered", slog.String("filename", filename), slog.Int("bytes", len(pdf)))
	return resultErr
}

func (j *DocumentJob) store(filename string, pdf []byte) error {
	dir := j.OutDir
	if dir == "" {
		dir = os.TempDir()
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(dir, filename), pdf, 0o644)
}

func (j *DocumentJob) logger(taskType string) *slog.Logger {
	if j.Logger != nil {
		return j.Logger.With(slog.String("job", taskType))
	}
	return slog.Default().With(slog.String("job", taskType))
}

func (j *DocumentJob) metrics() *jobmetrics.Metrics {
	if j.Metrics != nil {
		return j.Metrics
	}
	return defaultJobMetrics
}
