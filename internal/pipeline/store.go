package pipeline

import (
	"context"

	"github.com/jonathan/outreach-pipeline/internal/types"
)

// JobStore is the part of the record store the query stage writes to
type JobStore interface {
	UpdateJob(ctx context.Context, id string, patch types.JobPatch) error
}

// EmailStore is the part of the record store the variation stage uses
type EmailStore interface {
	ListEmailsByStatus(ctx context.Context, status string) ([]types.Email, error)
	GetLead(ctx context.Context, id string) (*types.Lead, error)
	UpdateEmailVariants(ctx context.Context, emailID string, variants types.VariantSet) error
}

// Store is the full record store
type Store interface {
	JobStore
	EmailStore
	GetJob(ctx context.Context, id string) (*types.Job, error)
}
