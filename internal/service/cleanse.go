package service

import (
	"context"
	"fmt"
	"runtime"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/octobees/lead-import/api/internal/entity"
)

// recordNamespace seeds deterministic record ids so that re-running the
// cleansing stage on identical input yields identical output.
var recordNamespace = uuid.MustParse("9f2c1d34-7a65-4b1d-9c01-5e8a2f6b3c70")

// CleansingStats summarizes a cleansing run.
type CleansingStats struct {
	Processed         int `json:"processed"`
	DuplicatesRemoved int `json:"duplicates_removed"`
}

// Cleanser applies the field validators to every raw record in a batch.
type Cleanser struct {
	validator *FieldValidator
	workers   int
}

// NewCleanser builds a cleanser; workers <= 0 means one worker per CPU.
func NewCleanser(validator *FieldValidator, workers int) *Cleanser {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	return &Cleanser{validator: validator, workers: workers}
}

// Cleanse validates and normalizes every record. The result order matches the
// input row order minus removed duplicates. The function is deterministic:
// no I/O, no randomness, records processed independently.
func (c *Cleanser) Cleanse(ctx context.Context, raw []entity.RawRecord) ([]entity.CleansedRecord, CleansingStats, error) {
	cleansed := make([]entity.CleansedRecord, len(raw))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(c.workers)
	for i, record := range raw {
		i, record := i, record
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			cleansed[i] = c.cleanseOne(record)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, CleansingStats{}, fmt.Errorf("cleanse batch: %w", err)
	}

	deduped, removed := removeDuplicates(cleansed)
	return deduped, CleansingStats{Processed: len(deduped), DuplicatesRemoved: removed}, nil
}

func (c *Cleanser) cleanseOne(raw entity.RawRecord) entity.CleansedRecord {
	record := entity.CleansedRecord{
		ID:       deterministicRecordID(raw),
		RowIndex: raw.RowIndex,
		Company:  raw.Company,
		Contact:  raw.Contact,
		Position: raw.Position,
		Website:  raw.Website,
		Segment:  raw.Segment,
		State:    raw.State,
		Notes:    raw.Notes,
		Status:   entity.StatusOK,
	}

	taxID, taxIssues := c.validator.ValidateTaxID(raw.TaxID)
	record.TaxID = taxID
	record.Issues = append(record.Issues, taxIssues...)

	emails, emailIssues := c.validator.ValidateEmails(raw.Emails)
	record.Emails = emails
	record.Issues = append(record.Issues, emailIssues...)

	phone, phoneIssues := c.validator.ValidatePhone(raw.Phone)
	record.Phone = phone
	record.Issues = append(record.Issues, phoneIssues...)

	// Mandatory-field violations: unrecoverable tax id or zero valid emails.
	switch {
	case taxID == "" || len(emails) == 0:
		record.Status = entity.StatusFailed
	case len(record.Issues) > 0:
		record.Status = entity.StatusCorrected
	}

	return record
}

// removeDuplicates drops records sharing a normalized tax id, keeping the
// first occurrence in row order.
func removeDuplicates(records []entity.CleansedRecord) ([]entity.CleansedRecord, int) {
	seen := make(map[string]struct{}, len(records))
	out := make([]entity.CleansedRecord, 0, len(records))
	removed := 0

	for _, record := range records {
		if record.TaxID != "" {
			if _, dup := seen[record.TaxID]; dup {
				removed++
				continue
			}
			seen[record.TaxID] = struct{}{}
		}
		out = append(out, record)
	}
	return out, removed
}

func deterministicRecordID(raw entity.RawRecord) uuid.UUID {
	return uuid.NewSHA1(recordNamespace, []byte(fmt.Sprintf("%d|%s|%s", raw.RowIndex, raw.TaxID, raw.Company)))
}
