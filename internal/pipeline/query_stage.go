package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/jonathan/outreach-pipeline/internal/bus"
	"github.com/jonathan/outreach-pipeline/internal/generation"
	"github.com/jonathan/outreach-pipeline/internal/parsing"
	"github.com/jonathan/outreach-pipeline/internal/types"
	"go.uber.org/zap"
)

// failureWriteTimeout bounds the ERROR write made after the handler context is done
const failureWriteTimeout = 5 * time.Second

// QueryStage turns a job.query.received event into a JobQuery with search terms
type QueryStage struct {
	store      JobStore
	adapter    generation.Adapter
	events     bus.Publisher
	smartDorks bool
	now        func() time.Time
	log        *zap.SugaredLogger
}

// QueryStageOption configures a QueryStage
type QueryStageOption func(*QueryStage)

// WithSmartDorks makes the stage ask the adapter for search terms before
// falling back to the templates
func WithSmartDorks(enabled bool) QueryStageOption {
	return func(s *QueryStage) { s.smartDorks = enabled }
}

// WithClock overrides the time source used for updated_at and completed_at
func WithClock(now func() time.Time) QueryStageOption {
	return func(s *QueryStage) { s.now = now }
}

// NewQueryStage creates a QueryStage. A nil store disables persistence and a
// nil publisher disables the downstream event.
func NewQueryStage(store JobStore, adapter generation.Adapter, events bus.Publisher, opts ...QueryStageOption) *QueryStage {
	s := &QueryStage{
		store:   store,
		adapter: adapter,
		events:  events,
		now:     func() time.Time { return time.Now().UTC() },
		log:     zap.S().Named("query_stage"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Handle is the bus.Handler for job.query.received
func (s *QueryStage) Handle(ctx context.Context, evt bus.Event) error {
	_, err := s.Process(ctx, evt)
	return err
}

// Process runs the stage for one event and returns the emitted JobQuery
func (s *QueryStage) Process(ctx context.Context, evt bus.Event) (*types.JobQuery, error) {
	payload, err := decodeQueryReceived(evt)
	if err != nil {
		queriesTotal.WithLabelValues(outcomeInvalid).Inc()
		return nil, err
	}
	return s.Run(ctx, payload)
}

// Run executes the stage for an already decoded payload
func (s *QueryStage) Run(ctx context.Context, payload types.QueryReceived) (*types.JobQuery, error) {
	payload.Normalize()
	if err := checkQueryReceived(payload); err != nil {
		queriesTotal.WithLabelValues(outcomeInvalid).Inc()
		return nil, err
	}

	log := s.log.With("job_id", payload.JobID)
	limit := types.DefaultQueryLimit
	if payload.Limit != nil {
		limit = *payload.Limit
	}
	if limit <= 0 {
		// emitted limit must cover the search terms actually generated
		limit = parsing.DorkCount(limit)
	}

	s.markProcessing(ctx, log, payload.JobID)

	query, fellBack, err := s.build(ctx, log, payload, limit)
	if err != nil {
		log.Errorw("query parsing failed", "error", err)
		s.markFailed(ctx, log, payload.JobID, err)
		queriesTotal.WithLabelValues(outcomeFailed).Inc()
		return nil, err
	}

	if s.events != nil {
		if err := s.events.Publish(ctx, types.TopicJobQueryProcessed, query); err != nil {
			queriesTotal.WithLabelValues(outcomeEmitError).Inc()
			return nil, fmt.Errorf("failed to emit %s: %w", types.TopicJobQueryProcessed, err)
		}
	}

	if fellBack {
		queriesTotal.WithLabelValues(outcomeFallback).Inc()
	} else {
		queriesTotal.WithLabelValues(outcomeParsed).Inc()
	}
	log.Infow("job query processed", "role", query.Role, "location", query.Location, "dorks", len(query.GoogleDorks))
	return query, nil
}

// build extracts the role and location, generates search terms and persists
// the result. Panics are returned as errors.
func (s *QueryStage) build(ctx context.Context, log *zap.SugaredLogger, payload types.QueryReceived, limit int) (query *types.JobQuery, fellBack bool, err error) {
	defer func() {
		if r := recover(); r != nil {
			query, fellBack = nil, false
			err = fmt.Errorf("query parsing panicked: %v", r)
		}
	}()

	parsed, perr := parsing.ParseQuery(ctx, s.adapter, payload.Query)
	if perr != nil {
		if cerr := ctx.Err(); cerr != nil {
			return nil, false, cerr
		}
		log.Warnw("extraction failed, using fallback parser", "error", perr)
		parsed = parsing.Fallback(payload.Query)
	}

	dorks := s.dorks(ctx, log, parsed, limit)
	if cerr := ctx.Err(); cerr != nil {
		return nil, false, cerr
	}

	query = &types.JobQuery{
		JobID:       payload.JobID,
		Query:       payload.Query,
		Role:        parsed.Role,
		Location:    parsed.Location,
		Limit:       limit,
		GoogleDorks: dorks,
	}

	s.persist(ctx, log, query)
	return query, parsed.Fallback, nil
}

func (s *QueryStage) dorks(ctx context.Context, log *zap.SugaredLogger, parsed parsing.Parsed, limit int) []string {
	if s.smartDorks {
		dorks, err := parsing.SmartDorks(ctx, s.adapter, parsed.Role, parsed.Location, limit)
		if err == nil {
			return dorks
		}
		log.Warnw("smart search terms failed, using templates", "error", err)
	}
	return parsing.GenerateDorks(parsed.Role, parsed.Location, limit)
}

func (s *QueryStage) markProcessing(ctx context.Context, log *zap.SugaredLogger, jobID string) {
	if s.store == nil {
		log.Warn("store not configured, job status not tracked")
		return
	}
	status := types.JobStatusProcessing
	now := s.now()
	if err := s.store.UpdateJob(ctx, jobID, types.JobPatch{Status: &status, UpdatedAt: &now}); err != nil {
		log.Warnw("failed to mark job processing", "error", err)
	}
}

func (s *QueryStage) persist(ctx context.Context, log *zap.SugaredLogger, q *types.JobQuery) {
	if s.store == nil {
		return
	}
	status := types.JobStatusProcessing
	now := s.now()
	patch := types.JobPatch{
		Status:      &status,
		Role:        &q.Role,
		Location:    &q.Location,
		GoogleDorks: q.GoogleDorks,
		UpdatedAt:   &now,
	}
	if err := s.store.UpdateJob(ctx, q.JobID, patch); err != nil {
		log.Errorw("failed to persist parsed query", "error", err)
	}
}

// markFailed records ERROR even when ctx is already canceled
func (s *QueryStage) markFailed(ctx context.Context, log *zap.SugaredLogger, jobID string, cause error) {
	if s.store == nil {
		return
	}
	writeCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), failureWriteTimeout)
	defer cancel()

	status := types.JobStatusError
	msg := cause.Error()
	now := s.now()
	patch := types.JobPatch{
		Status:       &status,
		ErrorMessage: &msg,
		UpdatedAt:    &now,
		CompletedAt:  &now,
	}
	if err := s.store.UpdateJob(writeCtx, jobID, patch); err != nil {
		log.Errorw("failed to record job error", "error", err)
	}
}

func decodeQueryReceived(evt bus.Event) (types.QueryReceived, error) {
	var payload types.QueryReceived
	if err := evt.Decode(&payload); err != nil {
		if errors.Is(err, bus.ErrEmptyPayload) {
			return payload, &MissingFieldError{Topic: types.TopicJobQueryReceived, Fields: []string{"query", "jobId"}}
		}
		return payload, &PayloadError{Topic: types.TopicJobQueryReceived, Cause: err}
	}
	return payload, nil
}

func checkQueryReceived(payload types.QueryReceived) error {
	err := payload.Validate()
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return &PayloadError{Topic: types.TopicJobQueryReceived, Cause: err}
	}

	missing := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		missing = append(missing, fe.Field())
	}
	return &MissingFieldError{Topic: types.TopicJobQueryReceived, Fields: missing}
}
