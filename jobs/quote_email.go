package jobs

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"mime/multipart"
	"net/smtp"
	"net/textproto"

	"github.com/hibiken/asynq"

	"github.com/quotedesk/quotedesk/internal/sales/quotations"
)

// QuoteLoader fetches the quotation to be emailed.
type QuoteLoader interface {
	Get(ctx context.Context, id int64) (*quotations.Quotation, error)
}

// QuoteRenderer produces the PDF attachment.
type QuoteRenderer interface {
	RenderQuote(ctx context.Context, quotation *quotations.Quotation) ([]byte, error)
}

// Mailer delivers a raw MIME message.
type Mailer interface {
	Send(ctx context.Context, to string, msg []byte) error
}

// SMTPMailer sends mail through a plain SMTP endpoint.
type SMTPMailer struct {
	Addr string
	From string
	Auth smtp.Auth
}

func (m *SMTPMailer) Send(ctx context.Context, to string, msg []byte) error {
	return smtp.SendMail(m.Addr, m.Auth, m.From, []string{to}, msg)
}

// QuoteEmailJob renders a quotation PDF and mails it to the recipient.
type QuoteEmailJob struct {
	Quotes   QuoteLoader
	Renderer QuoteRenderer
	Mailer   Mailer
	From     string
	Logger   *slog.Logger
}

// Handle processes TaskTypeQuoteEmail tasks.
func (j *QuoteEmailJob) Handle(ctx context.Context, t *asynq.Task) error {
	if j == nil || j.Quotes == nil || j.Renderer == nil || j.Mailer == nil {
		return errors.New("quote email: handler not configured")
	}
	var payload QuoteEmailPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}
	if payload.QuotationID <= 0 || payload.To == "" {
		return asynq.SkipRetry
	}

	quotation, err := j.Quotes.Get(ctx, payload.QuotationID)
	if err != nil {
		if errors.Is(err, quotations.ErrNotFound) {
			// Deleted between enqueue and processing; nothing to send.
			j.Logger.Warn("quote email: quotation gone",
				slog.Int64("quotation_id", payload.QuotationID))
			return asynq.SkipRetry
		}
		return fmt.Errorf("load quotation: %w", err)
	}

	pdf, err := j.Renderer.RenderQuote(ctx, quotation)
	if err != nil {
		return fmt.Errorf("render quote: %w", err)
	}

	msg, err := buildQuoteMessage(j.From, payload.To, quotation, pdf)
	if err != nil {
		return fmt.Errorf("build message: %w", err)
	}
	if err := j.Mailer.Send(ctx, payload.To, msg); err != nil {
		return fmt.Errorf("send quote email: %w", err)
	}

	j.Logger.Info("quote emailed",
		slog.Int64("quotation_id", quotation.ID),
		slog.String("number", quotation.QuotationNumber),
		slog.String("to", payload.To))
	return nil
}

// buildQuoteMessage assembles a multipart MIME message with the quote PDF
// attached.
func buildQuoteMessage(from, to string, quotation *quotations.Quotation, pdf []byte) ([]byte, error) {
	buf := &bytes.Buffer{}
	writer := multipart.NewWriter(buf)

	fmt.Fprintf(buf, "From: %s\r\n", from)
	fmt.Fprintf(buf, "To: %s\r\n", to)
	fmt.Fprintf(buf, "Subject: Quotation %s\r\n", quotation.QuotationNumber)
	fmt.Fprintf(buf, "MIME-Version: 1.0\r\n")
	fmt.Fprintf(buf, "Content-Type: multipart/mixed; boundary=%s\r\n\r\n", writer.Boundary())

	textHeader := textproto.MIMEHeader{}
	textHeader.Set("Content-Type", "text/plain; charset=utf-8")
	part, err := writer.CreatePart(textHeader)
	if err != nil {
		return nil, err
	}
	fmt.Fprintf(part, "Please find attached quotation %s, valid until %s.\r\n",
		quotation.QuotationNumber, quotation.ValidUntil.Format("January 2, 2006"))

	attachHeader := textproto.MIMEHeader{}
	attachHeader.Set("Content-Type", "application/pdf")
	attachHeader.Set("Content-Transfer-Encoding", "base64")
	attachHeader.Set("Content-Disposition",
		fmt.Sprintf(`attachment; filename="%s.pdf"`, quotation.QuotationNumber))
	part, err = writer.CreatePart(attachHeader)
	if err != nil {
		return nil, err
	}
	encoder := base64.NewEncoder(base64.StdEncoding, part)
	if _, err := encoder.Write(pdf); err != nil {
		return nil, err
	}
	if err := encoder.Close(); err != nil {
		return nil, err
	}

	if err := writer.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
