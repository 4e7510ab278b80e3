package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/jonathan/outreach-pipeline/internal/llm"
	"github.com/jonathan/outreach-pipeline/internal/types"
)

// fakeStore is an in-memory Store
type fakeStore struct {
	mu sync.Mutex

	jobs        map[string]*types.Job
	patches     []types.JobPatch
	emails      []types.Email
	leads       map[string]*types.Lead
	variants    map[string]types.VariantSet
	updateCalls int

	updateJobErr  error
	listErr       error
	leadErr       error
	variantErr    error
	variantErrFor string
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		jobs:     make(map[string]*types.Job),
		leads:    make(map[string]*types.Lead),
		variants: make(map[string]types.VariantSet),
	}
}

func (f *fakeStore) GetJob(_ context.Context, id string) (*types.Job, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	j, ok := f.jobs[id]
	if !ok {
		return nil, nil
	}
	cp := *j
	return &cp, nil
}

// UpdateJob applies the patch under the same guard the SQL store uses
func (f *fakeStore) UpdateJob(_ context.Context, id string, patch types.JobPatch) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.patches = append(f.patches, patch)
	if f.updateJobErr != nil {
		return f.updateJobErr
	}

	j, ok := f.jobs[id]
	if !ok || j.CompletedAt != nil || j.Status.IsTerminal() {
		return errors.New("no row updated")
	}
	if patch.Status != nil {
		if !j.Status.CanTransition(*patch.Status) {
			return fmt.Errorf("invalid transition %s -> %s", j.Status, *patch.Status)
		}
		j.Status = *patch.Status
	}
	if patch.Role != nil {
		j.Role = *patch.Role
	}
	if patch.Location != nil {
		j.Location = *patch.Location
	}
	if patch.GoogleDorks != nil {
		j.GoogleDorks = append([]string(nil), patch.GoogleDorks...)
	}
	if patch.ErrorMessage != nil {
		j.ErrorMessage = patch.ErrorMessage
	}
	if patch.UpdatedAt != nil {
		j.UpdatedAt = patch.UpdatedAt
	}
	if patch.CompletedAt != nil {
		j.CompletedAt = patch.CompletedAt
	}
	return nil
}

func (f *fakeStore) ListEmailsByStatus(_ context.Context, status string) ([]types.Email, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.listErr != nil {
		return nil, f.listErr
	}
	var out []types.Email
	for _, e := range f.emails {
		if e.Status == status {
			out = append(out, e)
		}
	}
	return out, nil
}

func (f *fakeStore) GetLead(_ context.Context, id string) (*types.Lead, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.leadErr != nil {
		return nil, f.leadErr
	}
	return f.leads[id], nil
}

func (f *fakeStore) UpdateEmailVariants(_ context.Context, emailID string, v types.VariantSet) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.updateCalls++
	if f.variantErr != nil && (f.variantErrFor == "" || f.variantErrFor == emailID) {
		return f.variantErr
	}
	f.variants[emailID] = v
	return nil
}

// fakeAdapter returns canned extraction JSON and numbered completions
type fakeAdapter struct {
	mu sync.Mutex

	extractJSON   string
	extractErr    error
	extractPanic  bool
	completeErr   error
	completePanic bool
	completeCalls int
	beforeExtract func()
}

func (f *fakeAdapter) Extract(_ context.Context, _ string, _ llm.ExtractionSchema, _ string, out any) error {
	if f.beforeExtract != nil {
		f.beforeExtract()
	}
	if f.extractPanic {
		panic("extractor exploded")
	}
	if f.extractErr != nil {
		return f.extractErr
	}
	return json.Unmarshal([]byte(f.extractJSON), out)
}

func (f *fakeAdapter) Complete(_ context.Context, _ string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.completeCalls++
	if f.completePanic {
		panic("provider sdk exploded")
	}
	if f.completeErr != nil {
		return "", f.completeErr
	}
	return fmt.Sprintf("rewritten draft #%d", f.completeCalls), nil
}

// failingPublisher rejects every publish
type failingPublisher struct {
	calls int
}

func (p *failingPublisher) Publish(context.Context, string, any) error {
	p.calls++
	return errors.New("bus unavailable")
}
