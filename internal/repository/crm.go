package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/octobees/lead-import/api/internal/entity"
)

// PGXCRMRepository persists committed batches into the downstream CRM tables.
type PGXCRMRepository struct {
	pool pgxPool
}

// NewPGXCRMRepository wires a pgx backed CRM store.
func NewPGXCRMRepository(pool *pgxpool.Pool) *PGXCRMRepository {
	return &PGXCRMRepository{pool: pool}
}

const commitContactSQL = `
    INSERT INTO contacts (
        import_job_id,
        record_id,
        company,
        tax_id,
        contact_name,
        emails,
        phone,
        position,
        website,
        segment,
        state,
        notes,
        employees,
        company_type,
        agent_id,
        status,
        updated_at
    ) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, 'open', NOW())
    ON CONFLICT (tax_id) DO UPDATE SET
        import_job_id = EXCLUDED.import_job_id,
        record_id = EXCLUDED.record_id,
        company = EXCLUDED.company,
        contact_name = EXCLUDED.contact_name,
        emails = EXCLUDED.emails,
        phone = EXCLUDED.phone,
        position = EXCLUDED.position,
        website = EXCLUDED.website,
        segment = EXCLUDED.segment,
        state = EXCLUDED.state,
        notes = EXCLUDED.notes,
        employees = EXCLUDED.employees,
        company_type = EXCLUDED.company_type,
        agent_id = EXCLUDED.agent_id,
        updated_at = NOW();
`

// CommitBatch writes the accepted records and their assignments in a single
// transaction. The upsert keyed by tax id keeps commit retries idempotent.
func (r *PGXCRMRepository) CommitBatch(ctx context.Context, job *entity.ImportJob) error {
	if job == nil || job.Batch == nil || job.Plan == nil {
		return fmt.Errorf("job is missing batch or plan")
	}

	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return fmt.Errorf("start commit tx: %w", err)
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx, `
        INSERT INTO import_jobs (id, filename, file_size, total, corrected_count, enriched_count, failed_count, duplicates_removed, created_by, created_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
        ON CONFLICT (id) DO NOTHING
    `, job.ID, job.Filename, job.FileSize, job.Batch.Total, job.Batch.CorrectedCount, job.Batch.EnrichedCount, job.Batch.FailedCount, job.Batch.DuplicatesRemoved, job.CreatedBy, job.CreatedAt)
	if err != nil {
		return fmt.Errorf("record import job: %w", err)
	}

	for _, record := range job.Batch.Records {
		agentID, assigned := job.Plan.Entries[record.ID]
		if !assigned {
			// Failed records are reported, never committed downstream.
			continue
		}

		_, err := tx.Exec(ctx, commitContactSQL,
			job.ID,
			record.ID,
			record.Company,
			record.TaxID,
			record.Contact,
			strings.Join(record.Emails, ";"),
			stringOrNil(record.Phone),
			stringOrNil(record.Position),
			stringOrNil(record.Website),
			stringOrNil(record.Segment),
			stringOrNil(record.State),
			stringOrNil(record.Notes),
			record.Employees,
			record.CompanyType,
			agentID,
		)
		if err != nil {
			return fmt.Errorf("commit contact %q: %w", record.Company, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit batch tx: %w", err)
	}
	return nil
}

func stringOrNil(value string) *string {
	if value == "" {
		return nil
	}
	return &value
}
