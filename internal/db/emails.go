package db

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jonathan/outreach-pipeline/internal/types"
)

// ListEmailsByStatus returns id, lead_id and body_1 of every email in status,
// in the order the database returns them. NULL columns come back as empty
// strings so callers can skip incomplete rows.
func (db *DB) ListEmailsByStatus(ctx context.Context, status string) ([]types.Email, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT id::text, body_1, lead_id::text FROM emails WHERE status = $1`,
		status,
	)
	if err != nil {
		return nil, &StoreError{Op: "select", Table: TableEmails, Cause: err}
	}
	defer rows.Close()

	var emails []types.Email
	for rows.Next() {
		var id, body1, leadID *string
		if err := rows.Scan(&id, &body1, &leadID); err != nil {
			return nil, &StoreError{Op: "scan", Table: TableEmails, Cause: err}
		}
		emails = append(emails, types.Email{
			ID:     derefString(id),
			LeadID: derefString(leadID),
			Status: status,
			Body1:  derefString(body1),
		})
	}
	if err := rows.Err(); err != nil {
		return nil, &StoreError{Op: "select", Table: TableEmails, Cause: err}
	}

	return emails, nil
}

// GetLead retrieves a lead by id. Returns nil, nil when no lead exists.
func (db *DB) GetLead(ctx context.Context, id string) (*types.Lead, error) {
	var (
		lead types.Lead
		jd   *string
	)

	err := db.pool.QueryRow(ctx,
		`SELECT id::text, job_description FROM leads WHERE id = $1`,
		id,
	).Scan(&lead.ID, &jd)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, &StoreError{Op: "get", Table: TableLeads, Cause: err}
	}

	lead.JobDescription = derefString(jd)
	return &lead, nil
}

// UpdateEmailVariants writes body_2, body_3 and body_4 in a single statement,
// overwriting any previous variants
func (db *DB) UpdateEmailVariants(ctx context.Context, emailID string, variants types.VariantSet) error {
	tag, err := db.pool.Exec(ctx,
		`UPDATE emails SET body_2 = $1, body_3 = $2, body_4 = $3 WHERE id = $4`,
		variants.Body2, variants.Body3, variants.Body4, emailID,
	)
	if err != nil {
		return &StoreError{Op: "update", Table: TableEmails, Cause: err}
	}
	if tag.RowsAffected() == 0 {
		return &StoreError{Op: "update", Table: TableEmails, Cause: ErrNotUpdated}
	}
	return nil
}
