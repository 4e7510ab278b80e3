package db

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jonathan/outreach-pipeline/internal/types"
)

// GetJob retrieves a job by id. Returns nil, nil when no job exists.
func (db *DB) GetJob(ctx context.Context, id string) (*types.Job, error) {
	var (
		j                      types.Job
		role, location, status *string
		limit                  *int
	)

	err := db.pool.QueryRow(ctx,
		`SELECT id::text, query, parsed_role, parsed_location, "limit", google_dorks,
		        status, error_message, updated_at, completed_at
		 FROM jobs WHERE id = $1`,
		id,
	).Scan(&j.ID, &j.Query, &role, &location, &limit, &j.GoogleDorks,
		&status, &j.ErrorMessage, &j.UpdatedAt, &j.CompletedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, &StoreError{Op: "get", Table: TableJobs, Cause: err}
	}

	j.Role = derefString(role)
	j.Location = derefString(location)
	if limit != nil {
		j.Limit = *limit
	}
	j.Status = types.JobStatus(derefString(status))

	return &j, nil
}

// UpdateJob applies a partial update to a job that has not been finalized.
// Jobs with completed_at set, or already COMPLETED or ERROR, are left
// untouched and ErrNotUpdated is returned.
func (db *DB) UpdateJob(ctx context.Context, id string, patch types.JobPatch) error {
	query, args, err := buildJobUpdate(id, patch)
	if err != nil {
		return &StoreError{Op: "update", Table: TableJobs, Cause: err}
	}

	tag, err := db.pool.Exec(ctx, query, args...)
	if err != nil {
		return &StoreError{Op: "update", Table: TableJobs, Cause: err}
	}
	if tag.RowsAffected() == 0 {
		return &StoreError{Op: "update", Table: TableJobs, Cause: ErrNotUpdated}
	}
	return nil
}

// buildJobUpdate renders the UPDATE statement for the set fields of patch
func buildJobUpdate(id string, patch types.JobPatch) (string, []any, error) {
	if id == "" {
		return "", nil, errors.New("job id is required")
	}
	if patch.IsEmpty() {
		return "", nil, errors.New("empty job patch")
	}

	sets := make([]string, 0, 7)
	args := make([]any, 0, 8)
	add := func(column string, value any) {
		args = append(args, value)
		sets = append(sets, fmt.Sprintf("%s = $%d", column, len(args)))
	}

	if patch.Status != nil {
		add("status", string(*patch.Status))
	}
	if patch.Role != nil {
		add("parsed_role", *patch.Role)
	}
	if patch.Location != nil {
		add("parsed_location", *patch.Location)
	}
	if patch.GoogleDorks != nil {
		add("google_dorks", patch.GoogleDorks)
	}
	if patch.ErrorMessage != nil {
		add("error_message", *patch.ErrorMessage)
	}
	if patch.UpdatedAt != nil {
		add("updated_at", *patch.UpdatedAt)
	} else {
		sets = append(sets, "updated_at = NOW()")
	}
	if patch.CompletedAt != nil {
		add("completed_at", *patch.CompletedAt)
	}

	args = append(args, id)
	query := fmt.Sprintf(
		`UPDATE jobs SET %s WHERE id = $%d AND completed_at IS NULL AND COALESCE(status, '') NOT IN ('%s', '%s')`,
		strings.Join(sets, ", "), len(args), types.JobStatusCompleted, types.JobStatusError,
	)
	return query, args, nil
}
