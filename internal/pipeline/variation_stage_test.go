package pipeline

import (
	"context"
	"errors"
	"testing"

	"github.com/jonathan/outreach-pipeline/internal/bus"
	"github.com/jonathan/outreach-pipeline/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func scheduled(id, leadID, body string) types.Email {
	return types.Email{ID: id, LeadID: leadID, Status: types.EmailStatusScheduled, Body1: body}
}

func TestVariationStage_OneScheduledEmail(t *testing.T) {
	store := newFakeStore()
	store.emails = []types.Email{scheduled("e1", "l1", "Hi! I loved your launch.")}
	store.leads["l1"] = &types.Lead{ID: "l1", JobDescription: "Build the core platform in Go."}
	adapter := &fakeAdapter{}
	events := bus.NewMemory()

	result := NewVariationStage(store, adapter, events).Run(context.Background())

	assert.Equal(t, types.VariationResult{Success: true, Count: 1}, result)
	assert.Equal(t, 3, adapter.completeCalls)

	v := store.variants["e1"]
	bodies := []string{v.Body2, v.Body3, v.Body4}
	for _, b := range bodies {
		assert.NotEmpty(t, b)
		assert.NotEqual(t, "Hi! I loved your launch.", b)
	}
	assert.NotEqual(t, v.Body2, v.Body3)
	assert.NotEqual(t, v.Body2, v.Body4)
	assert.NotEqual(t, v.Body3, v.Body4)

	published := events.Published(types.TopicEmailVariationsGenerated)
	require.Len(t, published, 1)
	var payload types.VariationsGenerated
	require.NoError(t, published[0].Decode(&payload))
	assert.Equal(t, types.VariationsGenerated{EmailID: "e1", LeadID: "l1"}, payload)
}

func TestVariationStage_NoScheduledEmails(t *testing.T) {
	store := newFakeStore()
	store.emails = []types.Email{{ID: "e1", LeadID: "l1", Status: "Draft", Body1: "hi"}}
	events := bus.NewMemory()

	result := NewVariationStage(store, &fakeAdapter{}, events).Run(context.Background())

	assert.Equal(t, types.VariationResult{Success: true, Count: 0}, result)
	assert.Empty(t, events.Published(types.TopicEmailVariationsGenerated))
	assert.Zero(t, store.updateCalls)
}

func TestVariationStage_SelectFailure(t *testing.T) {
	store := newFakeStore()
	store.listErr = errors.New("relation \"emails\" does not exist")
	events := bus.NewMemory()

	result := NewVariationStage(store, &fakeAdapter{}, events).Run(context.Background())

	assert.False(t, result.Success)
	assert.Equal(t, `relation "emails" does not exist`, result.Error)
	assert.Zero(t, store.updateCalls)
	assert.Empty(t, events.Published(types.TopicEmailVariationsGenerated))
}

func TestVariationStage_SkipsIncompleteEmails(t *testing.T) {
	store := newFakeStore()
	store.emails = []types.Email{
		scheduled("", "l1", "no id"),
		scheduled("e2", "", "no lead"),
		scheduled("e3", "l1", ""),
		scheduled("e4", "l1", "complete"),
	}
	store.leads["l1"] = &types.Lead{ID: "l1", JobDescription: "jd"}
	adapter := &fakeAdapter{}

	result := NewVariationStage(store, adapter, bus.NewMemory()).Run(context.Background())

	assert.Equal(t, types.VariationResult{Success: true, Count: 1}, result)
	assert.Equal(t, 3, adapter.completeCalls)
	assert.Len(t, store.variants, 1)
	assert.Contains(t, store.variants, "e4")
}

func TestVariationStage_LeadMissOrErrorSkipsEmail(t *testing.T) {
	store := newFakeStore()
	store.emails = []types.Email{
		scheduled("e1", "missing", "hello"),
		scheduled("e2", "l2", "hello again"),
	}
	store.leads["l2"] = &types.Lead{ID: "l2", JobDescription: ""}

	result := NewVariationStage(store, &fakeAdapter{}, bus.NewMemory()).Run(context.Background())
	assert.Equal(t, types.VariationResult{Success: true, Count: 1}, result)
	assert.Contains(t, store.variants, "e2")

	store.leadErr = errors.New("timeout")
	result = NewVariationStage(store, &fakeAdapter{}, bus.NewMemory()).Run(context.Background())
	assert.Equal(t, types.VariationResult{Success: true, Count: 0}, result)
}

func TestVariationStage_GenerationFailureWritesNothing(t *testing.T) {
	store := newFakeStore()
	store.emails = []types.Email{scheduled("e1", "l1", "hello")}
	store.leads["l1"] = &types.Lead{ID: "l1", JobDescription: "jd"}
	events := bus.NewMemory()

	result := NewVariationStage(store, &fakeAdapter{completeErr: errors.New("model overloaded")}, events).Run(context.Background())

	assert.Equal(t, types.VariationResult{Success: true, Count: 0}, result)
	assert.Zero(t, store.updateCalls)
	assert.Empty(t, events.Published(types.TopicEmailVariationsGenerated))
}

func TestVariationStage_UpdateFailureContinues(t *testing.T) {
	store := newFakeStore()
	store.emails = []types.Email{scheduled("e1", "l1", "one"), scheduled("e2", "l1", "two")}
	store.leads["l1"] = &types.Lead{ID: "l1", JobDescription: "jd"}
	store.variantErr = errors.New("deadlock detected")
	store.variantErrFor = "e1"
	events := bus.NewMemory()

	result := NewVariationStage(store, &fakeAdapter{}, events).Run(context.Background())

	assert.Equal(t, types.VariationResult{Success: true, Count: 1}, result)
	published := events.Published(types.TopicEmailVariationsGenerated)
	require.Len(t, published, 1)
	var payload types.VariationsGenerated
	require.NoError(t, published[0].Decode(&payload))
	assert.Equal(t, "e2", payload.EmailID)
}

func TestVariationStage_EmitFailureStillCounts(t *testing.T) {
	store := newFakeStore()
	store.emails = []types.Email{scheduled("e1", "l1", "one")}
	store.leads["l1"] = &types.Lead{ID: "l1", JobDescription: "jd"}
	publisher := &failingPublisher{}

	result := NewVariationStage(store, &fakeAdapter{}, publisher).Run(context.Background())

	assert.Equal(t, types.VariationResult{Success: true, Count: 1}, result)
	assert.Equal(t, 1, publisher.calls)
	assert.Contains(t, store.variants, "e1")
}

func TestVariationStage_RerunOverwritesVariants(t *testing.T) {
	store := newFakeStore()
	store.emails = []types.Email{scheduled("e1", "l1", "one")}
	store.leads["l1"] = &types.Lead{ID: "l1", JobDescription: "jd"}
	adapter := &fakeAdapter{}
	stage := NewVariationStage(store, adapter, bus.NewMemory())

	require.Equal(t, 1, stage.Run(context.Background()).Count)
	first := store.variants["e1"]

	require.Equal(t, 1, stage.Run(context.Background()).Count)
	second := store.variants["e1"]

	assert.Equal(t, 2, store.updateCalls)
	assert.NotEqual(t, first, second)
}

func TestVariationStage_EachEmailOncePerPass(t *testing.T) {
	store := newFakeStore()
	store.emails = []types.Email{scheduled("e1", "l1", "one"), scheduled("e2", "l1", "two")}
	store.leads["l1"] = &types.Lead{ID: "l1", JobDescription: "jd"}
	adapter := &fakeAdapter{}

	result := NewVariationStage(store, adapter, bus.NewMemory()).Run(context.Background())

	assert.Equal(t, 2, result.Count)
	assert.Equal(t, 2, store.updateCalls)
	assert.Equal(t, 6, adapter.completeCalls)
}

func TestVariationStage_CustomReadyStatus(t *testing.T) {
	store := newFakeStore()
	store.emails = []types.Email{{ID: "e1", LeadID: "l1", Status: "Approved", Body1: "hi"}}
	store.leads["l1"] = &types.Lead{ID: "l1", JobDescription: "jd"}

	result := NewVariationStage(store, &fakeAdapter{}, nil, WithReadyStatus("Approved")).Run(context.Background())
	assert.Equal(t, 1, result.Count)
}

type panickingStore struct{ *fakeStore }

func (panickingStore) ListEmailsByStatus(context.Context, string) ([]types.Email, error) {
	panic("driver bug")
}

func TestVariationStage_PanicBecomesFailure(t *testing.T) {
	stage := NewVariationStage(panickingStore{newFakeStore()}, &fakeAdapter{}, nil)

	var result types.VariationResult
	assert.NotPanics(t, func() { result = stage.Run(context.Background()) })
	assert.False(t, result.Success)
	assert.Contains(t, result.Error, "driver bug")
}

func TestVariationStage_AdapterPanicFailsOnlyThatEmail(t *testing.T) {
	store := newFakeStore()
	store.emails = []types.Email{scheduled("e1", "l1", "hello")}
	store.leads["l1"] = &types.Lead{ID: "l1", JobDescription: "jd"}
	events := bus.NewMemory()
	stage := NewVariationStage(store, &fakeAdapter{completePanic: true}, events)

	var result types.VariationResult
	assert.NotPanics(t, func() { result = stage.Run(context.Background()) })
	assert.Equal(t, types.VariationResult{Success: true, Count: 0}, result)
	assert.Zero(t, store.updateCalls)
	assert.Empty(t, events.Published(types.TopicEmailVariationsGenerated))
}

func TestVariationStage_NilStore(t *testing.T) {
	result := NewVariationStage(nil, &fakeAdapter{}, nil).Run(context.Background())
	assert.Equal(t, types.VariationResult{Success: true}, result)
}

func TestVariationStage_HandleNeverFails(t *testing.T) {
	store := newFakeStore()
	store.listErr = errors.New("down")
	stage := NewVariationStage(store, &fakeAdapter{}, nil)

	evt, err := bus.NewEvent(types.TopicEmailApprovalRequired, map[string]string{"anything": "ignored"})
	require.NoError(t, err)
	assert.NoError(t, stage.Handle(context.Background(), evt))
}
