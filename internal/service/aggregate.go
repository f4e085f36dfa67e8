package service

import "github.com/octobees/lead-import/api/internal/entity"

// Aggregate recomputes batch counters from the record list. It is pure and
// re-invocable at any time, so counters can never drift from the records.
func Aggregate(records []entity.CleansedRecord, duplicatesRemoved int) entity.ProcessedBatch {
	batch := entity.ProcessedBatch{
		Records:           records,
		Total:             len(records),
		DuplicatesRemoved: duplicatesRemoved,
	}

	for _, record := range records {
		switch record.Status {
		case entity.StatusCorrected:
			batch.CorrectedCount++
		case entity.StatusEnriched:
			batch.EnrichedCount++
		case entity.StatusFailed:
			batch.FailedCount++
		}
	}
	return batch
}
