package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/jonathan/outreach-pipeline/internal/bus"
	"github.com/jonathan/outreach-pipeline/internal/types"
	"go.uber.org/zap"
)

// Stage names
const (
	StageParseQuery         = "parse_query"
	StageGenerateVariations = "generate_variations"
)

// Route binds a topic to the stage that handles it
type Route struct {
	Topic string
	Stage string
	Emits []string
}

// Routes lists every subscription of the pipeline
var Routes = []Route{
	{
		Topic: types.TopicJobQueryReceived,
		Stage: StageParseQuery,
		Emits: []string{types.TopicJobQueryProcessed},
	},
	{
		Topic: types.TopicEmailApprovalRequired,
		Stage: StageGenerateVariations,
		Emits: []string{types.TopicEmailVariationsGenerated},
	},
	{
		Topic: types.TopicEmailScheduleCompleted,
		Stage: StageGenerateVariations,
		Emits: []string{types.TopicEmailVariationsGenerated},
	},
}

// Orchestrator subscribes the stages to their topics
type Orchestrator struct {
	stages map[string]bus.Handler
	log    *zap.SugaredLogger
}

// NewOrchestrator creates an Orchestrator for the given stages
func NewOrchestrator(query *QueryStage, variation *VariationStage) *Orchestrator {
	return &Orchestrator{
		stages: map[string]bus.Handler{
			StageParseQuery:         query.Handle,
			StageGenerateVariations: variation.Handle,
		},
		log: zap.S().Named("orchestrator"),
	}
}

// Handler returns the instrumented handler for topic
func (o *Orchestrator) Handler(topic string) (bus.Handler, error) {
	for _, r := range Routes {
		if r.Topic != topic {
			continue
		}
		h, ok := o.stages[r.Stage]
		if !ok {
			return nil, fmt.Errorf("no stage %q for topic %s", r.Stage, topic)
		}
		return o.instrument(r, h), nil
	}
	return nil, fmt.Errorf("no route for topic %s", topic)
}

// Register subscribes every route on sub
func (o *Orchestrator) Register(sub bus.Subscriber) error {
	for _, r := range Routes {
		h, err := o.Handler(r.Topic)
		if err != nil {
			return err
		}
		if err := sub.Subscribe(r.Topic, h); err != nil {
			return fmt.Errorf("failed to register %s: %w", r.Stage, err)
		}
		o.log.Infow("route registered", "topic", r.Topic, "stage", r.Stage)
	}
	return nil
}

func (o *Orchestrator) instrument(r Route, h bus.Handler) bus.Handler {
	return func(ctx context.Context, evt bus.Event) error {
		start := time.Now()
		defer func() {
			handlerDuration.WithLabelValues(r.Topic).Observe(time.Since(start).Seconds())
		}()

		o.log.Debugw("event received", "topic", evt.Topic, "event_id", evt.ID, "stage", r.Stage)
		if err := h(ctx, evt); err != nil {
			return fmt.Errorf("%s: %w", r.Stage, err)
		}
		return nil
	}
}
