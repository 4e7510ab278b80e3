package db

import (
	"errors"
	"testing"
	"time"

	"github.com/jonathan/outreach-pipeline/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr[T any](v T) *T { return &v }

func TestBuildJobUpdate_ProcessingResult(t *testing.T) {
	at := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	patch := types.JobPatch{
		Status:      ptr(types.JobStatusProcessing),
		Role:        ptr("founding engineer"),
		Location:    ptr("san francisco"),
		GoogleDorks: []string{"a", "b"},
		UpdatedAt:   &at,
	}

	query, args, err := buildJobUpdate("job-1", patch)
	require.NoError(t, err)

	assert.Equal(t,
		`UPDATE jobs SET status = $1, parsed_role = $2, parsed_location = $3, google_dorks = $4, updated_at = $5 `+
			`WHERE id = $6 AND completed_at IS NULL AND COALESCE(status, '') NOT IN ('COMPLETED', 'ERROR')`,
		query)
	assert.Equal(t, []any{"PROCESSING", "founding engineer", "san francisco", []string{"a", "b"}, at, "job-1"}, args)
}

func TestBuildJobUpdate_ErrorResult(t *testing.T) {
	at := time.Now()
	patch := types.JobPatch{
		Status:       ptr(types.JobStatusError),
		ErrorMessage: ptr("context canceled"),
		UpdatedAt:    &at,
		CompletedAt:  &at,
	}

	query, args, err := buildJobUpdate("job-2", patch)
	require.NoError(t, err)

	assert.Contains(t, query, "error_message = $2")
	assert.Contains(t, query, "completed_at = $4")
	assert.Contains(t, query, "WHERE id = $5")
	assert.Len(t, args, 5)
}

func TestBuildJobUpdate_DefaultsUpdatedAt(t *testing.T) {
	query, args, err := buildJobUpdate("job-3", types.JobPatch{Status: ptr(types.JobStatusProcessing)})
	require.NoError(t, err)

	assert.Contains(t, query, "updated_at = NOW()")
	assert.Equal(t, []any{"PROCESSING", "job-3"}, args)
}

func TestBuildJobUpdate_Invalid(t *testing.T) {
	_, _, err := buildJobUpdate("", types.JobPatch{Status: ptr(types.JobStatusProcessing)})
	assert.Error(t, err)

	_, _, err = buildJobUpdate("job-4", types.JobPatch{})
	assert.Error(t, err)
}

func TestStoreError(t *testing.T) {
	err := &StoreError{Op: "update", Table: TableEmails, Cause: ErrNotUpdated}

	assert.Equal(t, "store update on emails failed: no row updated", err.Error())
	assert.True(t, errors.Is(err, ErrNotUpdated))

	var storeErr *StoreError
	assert.True(t, errors.As(error(err), &storeErr))
	assert.Equal(t, "store get on leads failed", (&StoreError{Op: "get", Table: TableLeads}).Error())
}

func TestDerefString(t *testing.T) {
	assert.Equal(t, "", derefString(nil))
	assert.Equal(t, "x", derefString(ptr("x")))
}
