package jobs

import (
	"context"
	"encoding/json"
	"log/slog"
	"testing"
	"time"

	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quotedesk/quotedesk/internal/sales/quotations"
)

type stubQuotes struct {
	quotation *quotations.Quotation
	err       error
}

func (s stubQuotes) Get(ctx context.Context, id int64) (*quotations.Quotation, error) {
	return s.quotation, s.err
}

type stubRenderer struct{}

func (stubRenderer) RenderQuote(ctx context.Context, quotation *quotations.Quotation) ([]byte, error) {
	return []byte("%PDF-1.7 stub"), nil
}

type captureMailer struct {
	to  string
	msg []byte
}

func (m *captureMailer) Send(ctx context.Context, to string, msg []byte) error {
	m.to = to
	m.msg = msg
	return nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(testWriter{}, nil))
}

type testWriter struct{}

func (testWriter) Write(p []byte) (int, error) { return len(p), nil }

func TestQuoteEmailJob(t *testing.T) {
	quotation := &quotations.Quotation{
		ID:              4,
		QuotationNumber: "QT2025110004",
		ValidUntil:      time.Date(2025, 12, 7, 0, 0, 0, 0, time.UTC),
	}
	mailer := &captureMailer{}
	job := &QuoteEmailJob{
		Quotes:   stubQuotes{quotation: quotation},
		Renderer: stubRenderer{},
		Mailer:   mailer,
		From:     "quotes@example.com",
		Logger:   testLogger(),
	}

	task, err := NewQuoteEmailTask(QuoteEmailPayload{QuotationID: 4, To: "buyer@acme.test"})
	require.NoError(t, err)
	require.NoError(t, job.Handle(context.Background(), task))

	assert.Equal(t, "buyer@acme.test", mailer.to)
	assert.Contains(t, string(mailer.msg), "Subject: Quotation QT2025110004")
	assert.Contains(t, string(mailer.msg), `filename="QT2025110004.pdf"`)
}

func TestQuoteEmailJobSkipsMissingQuotation(t *testing.T) {
	job := &QuoteEmailJob{
		Quotes:   stubQuotes{err: quotations.ErrNotFound},
		Renderer: stubRenderer{},
		Mailer:   &captureMailer{},
		From:     "quotes@example.com",
		Logger:   testLogger(),
	}

	task, err := NewQuoteEmailTask(QuoteEmailPayload{QuotationID: 99, To: "buyer@acme.test"})
	require.NoError(t, err)
	assert.ErrorIs(t, job.Handle(context.Background(), task), asynq.SkipRetry)
}

func TestQuoteEmailJobRejectsBadPayload(t *testing.T) {
	job := &QuoteEmailJob{
		Quotes:   stubQuotes{},
		Renderer: stubRenderer{},
		Mailer:   &captureMailer{},
		Logger:   testLogger(),
	}

	task := asynq.NewTask(TaskTypeQuoteEmail, []byte("not json"))
	assert.ErrorIs(t, job.Handle(context.Background(), task), asynq.SkipRetry)

	data, _ := json.Marshal(QuoteEmailPayload{QuotationID: 0, To: ""})
	task = asynq.NewTask(TaskTypeQuoteEmail, data)
	assert.ErrorIs(t, job.Handle(context.Background(), task), asynq.SkipRetry)
}

type stubExpired struct {
	expired []quotations.Quotation
}

func (s stubExpired) ListExpired(ctx context.Context, asOf time.Time) ([]quotations.Quotation, error) {
	return s.expired, nil
}

func TestExpiryScanJob(t *testing.T) {
	expired := []quotations.Quotation{
		{ID: 1, QuotationNumber: "QT2025100001", Status: quotations.StatusPending},
		{ID: 2, QuotationNumber: "QT2025100002", Status: quotations.StatusApproved},
	}
	job := NewExpiryScanJob(stubExpired{expired: expired}, testLogger(), nil)
	job.clock = func() time.Time {
		return time.Date(2025, 11, 20, 0, 0, 0, 0, time.UTC)
	}

	assert.NoError(t, job.Handle(context.Background(), NewExpiryScanTask()))
}
