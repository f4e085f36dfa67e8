package service

import (
	"context"
	"log"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/octobees/lead-import/api/internal/entity"
)

// Enricher fills missing optional fields via the enrichment provider.
// Enrichment is best-effort: provider errors and timeouts leave the record
// untouched and never fail it.
type Enricher struct {
	provider    EnrichmentProvider
	concurrency int
	timeout     time.Duration
}

// NewEnricher builds an enricher with a bounded provider concurrency.
func NewEnricher(provider EnrichmentProvider, concurrency int, timeout time.Duration) *Enricher {
	if concurrency <= 0 {
		concurrency = 4
	}
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Enricher{provider: provider, concurrency: concurrency, timeout: timeout}
}

// Enrich looks up records missing optional business fields and merges the
// returned values. The output keeps the input ordering regardless of call
// completion order.
func (e *Enricher) Enrich(ctx context.Context, records []entity.CleansedRecord) []entity.CleansedRecord {
	out := make([]entity.CleansedRecord, len(records))
	copy(out, records)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.concurrency)

	for i := range out {
		if out[i].Status == entity.StatusFailed || !needsEnrichment(out[i]) {
			continue
		}
		i := i
		g.Go(func() error {
			callCtx, cancel := context.WithTimeout(gctx, e.timeout)
			defer cancel()

			record := &out[i]
			profile, err := e.provider.Lookup(callCtx, record.Company, record.State, record.Segment)
			if err != nil {
				log.Printf("enrich record_id=%s company=%q skipped: %v", record.ID, record.Company, err)
				return nil
			}
			if profile.Empty() {
				return nil
			}
			mergeProfile(record, profile)
			return nil
		})
	}

	// Workers only write their own slot and never return errors.
	_ = g.Wait()
	return out
}

func needsEnrichment(record entity.CleansedRecord) bool {
	return record.Website == "" || record.Employees == nil || record.Position == "" || record.CompanyType == nil
}

// mergeProfile fills only the missing fields. The status tag becomes enriched
// unless a correction already outranks it; the fields are merged either way.
func mergeProfile(record *entity.CleansedRecord, profile entity.CompanyProfile) {
	merged := false
	if record.Website == "" && profile.Website != "" {
		record.Website = profile.Website
		merged = true
	}
	if record.Employees == nil && profile.Employees != nil {
		record.Employees = profile.Employees
		merged = true
	}
	if record.Position == "" && profile.Position != "" {
		record.Position = profile.Position
		merged = true
	}
	if record.CompanyType == nil && profile.CompanyType != nil {
		record.CompanyType = profile.CompanyType
		merged = true
	}
	if !merged {
		return
	}

	record.Enriched = true
	if !record.Status.Outranks(entity.StatusEnriched) {
		record.Status = entity.StatusEnriched
	}
}
