package entity

// ProcessedBatch owns the cleansed record list plus counters derived from it.
// Counters are always recomputed from Records, never maintained independently.
type ProcessedBatch struct {
	Records           []CleansedRecord `json:"records"`
	Total             int              `json:"total"`
	CorrectedCount    int              `json:"corrected_count"`
	EnrichedCount     int              `json:"enriched_count"`
	FailedCount       int              `json:"failed_count"`
	DuplicatesRemoved int              `json:"duplicates_removed"`
}

// AssignableRecords returns the records eligible for assignment (status != failed).
func (b *ProcessedBatch) AssignableRecords() []CleansedRecord {
	out := make([]CleansedRecord, 0, len(b.Records))
	for _, rec := range b.Records {
		if rec.Status != StatusFailed {
			out = append(out, rec)
		}
	}
	return out
}
