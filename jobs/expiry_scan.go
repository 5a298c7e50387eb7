package jobs

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"

	"github.com/quotedesk/quotedesk/internal/observability"
	"github.com/quotedesk/quotedesk/internal/sales/quotations"
)

// ExpiredLister supplies open quotations past their validity date.
type ExpiredLister interface {
	ListExpired(ctx context.Context, asOf time.Time) ([]quotations.Quotation, error)
}

// ExpiryScanJob flags pending and approved quotations whose valid_until
// has passed. The status set is closed, so expiry is reported through
// logs and a gauge rather than a status write.
type ExpiryScanJob struct {
	Repo    ExpiredLister
	Logger  *slog.Logger
	Metrics *observability.Metrics
	clock   func() time.Time
}

func NewExpiryScanJob(repo ExpiredLister, logger *slog.Logger, metrics *observability.Metrics) *ExpiryScanJob {
	return &ExpiryScanJob{
		Repo:    repo,
		Logger:  logger,
		Metrics: metrics,
		clock: func() time.Time {
			return time.Now().UTC()
		},
	}
}

// Handle executes the scan.
func (j *ExpiryScanJob) Handle(ctx context.Context, t *asynq.Task) error {
	if j == nil || j.Repo == nil {
		return errors.New("expiry scan: handler not configured")
	}
	asOf := j.clock()
	expired, err := j.Repo.ListExpired(ctx, asOf)
	if err != nil {
		j.Logger.Error("expiry scan failed", slog.Any("error", err))
		return err
	}

	j.Metrics.SetExpiredQuotes(len(expired))
	for _, q := range expired {
		j.Logger.Warn("quotation past validity",
			slog.Int64("quotation_id", q.ID),
			slog.String("number", q.QuotationNumber),
			slog.String("status", string(q.Status)),
			slog.Time("valid_until", q.ValidUntil))
	}
	j.Logger.Info("expiry scan complete",
		slog.Int("expired", len(expired)),
		slog.Time("as_of", asOf))
	return nil
}
