package jobs

import (
	"encoding/json"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskTypeQuoteEmail is the task type for emailing a rendered quote.
	TaskTypeQuoteEmail = "quote:send-email"
	// TaskTypeExpiryScan is the task type for the periodic expiry scan.
	TaskTypeExpiryScan = "quote:expiry-scan"
)

// QuoteEmailPayload identifies the quotation to send and its recipient.
type QuoteEmailPayload struct {
	QuotationID int64  `json:"quotation_id"`
	To          string `json:"to"`
}

// NewQuoteEmailTask constructs the Asynq task for a quote email.
func NewQuoteEmailTask(payload QuoteEmailPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskTypeQuoteEmail, data), nil
}

// NewExpiryScanTask constructs the periodic expiry-scan task. The scan
// takes no parameters; it always runs against the current time.
func NewExpiryScanTask() *asynq.Task {
	return asynq.NewTask(TaskTypeExpiryScan, nil)
}
