package types

import (
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Event topics consumed and emitted by the pipeline
const (
	TopicJobQueryReceived         = "job.query.received"
	TopicJobQueryProcessed        = "job.query.processed"
	TopicEmailApprovalRequired    = "email.approval.required"
	TopicEmailScheduleCompleted   = "email.schedule.completed"
	TopicEmailVariationsGenerated = "email.variations.generated"
)

// QueryReceived is the payload of job.query.received
type QueryReceived struct {
	Query string `json:"query" validate:"required"`
	JobID string `json:"jobId" validate:"required"`
	Limit *int   `json:"limit,omitempty"`
}

// Normalize trims surrounding whitespace from the text fields
func (q *QueryReceived) Normalize() {
	q.Query = strings.TrimSpace(q.Query)
	q.JobID = strings.TrimSpace(q.JobID)
}

// Validate checks required fields. Failures are validator.ValidationErrors
// whose Field() is the JSON name.
func (q QueryReceived) Validate() error {
	return payloadValidator.Struct(q)
}

// VariationsGenerated is the payload of email.variations.generated
type VariationsGenerated struct {
	EmailID string `json:"emailId"`
	LeadID  string `json:"leadId"`
}

// VariationResult is the outcome of one variation generation pass
type VariationResult struct {
	Success bool   `json:"success"`
	Count   int    `json:"count"`
	Error   string `json:"error,omitempty"`
}

var payloadValidator = newPayloadValidator()

func newPayloadValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}
