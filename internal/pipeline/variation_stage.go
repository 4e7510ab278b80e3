package pipeline

import (
	"context"
	"fmt"

	"github.com/jonathan/outreach-pipeline/internal/bus"
	"github.com/jonathan/outreach-pipeline/internal/generation"
	"github.com/jonathan/outreach-pipeline/internal/rewriting"
	"github.com/jonathan/outreach-pipeline/internal/types"
	"go.uber.org/zap"
)

// VariationStage writes three rewrites of body_1 for every scheduled email
type VariationStage struct {
	store       EmailStore
	adapter     generation.Adapter
	events      bus.Publisher
	readyStatus string
	log         *zap.SugaredLogger
}

// VariationStageOption configures a VariationStage
type VariationStageOption func(*VariationStage)

// WithReadyStatus sets the email status selected for rewriting
func WithReadyStatus(status string) VariationStageOption {
	return func(s *VariationStage) {
		if status != "" {
			s.readyStatus = status
		}
	}
}

// NewVariationStage creates a VariationStage. A nil publisher disables the
// per-email event.
func NewVariationStage(store EmailStore, adapter generation.Adapter, events bus.Publisher, opts ...VariationStageOption) *VariationStage {
	s := &VariationStage{
		store:       store,
		adapter:     adapter,
		events:      events,
		readyStatus: types.EmailStatusScheduled,
		log:         zap.S().Named("variation_stage"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Handle is the bus.Handler for the email triggers. The payload is ignored
// and the result is logged; it never returns an error.
func (s *VariationStage) Handle(ctx context.Context, evt bus.Event) error {
	result := s.Run(ctx)
	if !result.Success {
		s.log.Errorw("variation pass failed", "topic", evt.Topic, "count", result.Count, "error", result.Error)
		return nil
	}
	s.log.Infow("variation pass completed", "topic", evt.Topic, "count", result.Count)
	return nil
}

// Run performs one pass over the scheduled emails
func (s *VariationStage) Run(ctx context.Context) (result types.VariationResult) {
	defer func() {
		if r := recover(); r != nil {
			result = types.VariationResult{Success: false, Count: result.Count, Error: fmt.Sprintf("variation pass panicked: %v", r)}
		}
		if result.Success {
			variationPassTotal.WithLabelValues(outcomeSuccess).Inc()
		} else {
			variationPassTotal.WithLabelValues(outcomeFailed).Inc()
		}
	}()

	if s.store == nil {
		s.log.Warn("store not configured, nothing to rewrite")
		return types.VariationResult{Success: true}
	}

	emails, err := s.store.ListEmailsByStatus(ctx, s.readyStatus)
	if err != nil {
		return types.VariationResult{Success: false, Error: err.Error()}
	}
	if len(emails) == 0 {
		return types.VariationResult{Success: true}
	}

	for _, email := range emails {
		if err := ctx.Err(); err != nil {
			return types.VariationResult{Success: false, Count: result.Count, Error: err.Error()}
		}
		if s.processEmail(ctx, email) {
			result.Count++
		}
	}

	result.Success = true
	return result
}

// processEmail rewrites one email and reports whether its variants were written
func (s *VariationStage) processEmail(ctx context.Context, email types.Email) bool {
	log := s.log.With("email_id", email.ID, "lead_id", email.LeadID)

	if !email.HasRequiredFields() {
		log.Warn("skipping email with missing id, lead_id or body_1")
		emailsTotal.WithLabelValues(outcomeSkipped).Inc()
		return false
	}

	lead, err := s.store.GetLead(ctx, email.LeadID)
	if err != nil {
		log.Errorw("failed to load lead", "error", err)
		emailsTotal.WithLabelValues(outcomeFailed).Inc()
		return false
	}
	if lead == nil {
		log.Warn("skipping email for unknown lead")
		emailsTotal.WithLabelValues(outcomeSkipped).Inc()
		return false
	}

	variants, err := rewriting.GenerateVariations(ctx, s.adapter, lead.JobDescription, email.Body1)
	if err != nil {
		log.Errorw("failed to generate variations", "error", err)
		emailsTotal.WithLabelValues(outcomeFailed).Inc()
		return false
	}

	if err := s.store.UpdateEmailVariants(ctx, email.ID, variants); err != nil {
		log.Errorw("failed to store variations", "error", err)
		emailsTotal.WithLabelValues(outcomeFailed).Inc()
		return false
	}

	if s.events != nil {
		payload := types.VariationsGenerated{EmailID: email.ID, LeadID: email.LeadID}
		if err := s.events.Publish(ctx, types.TopicEmailVariationsGenerated, payload); err != nil {
			log.Errorw("failed to emit variations event", "error", err)
		}
	}

	emailsTotal.WithLabelValues(outcomeGenerated).Inc()
	log.Info("email variations generated")
	return true
}
