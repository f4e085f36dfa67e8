package service

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/octobees/lead-import/api/internal/entity"
)

// ErrBatchNotReady is returned when export is requested before cleansing ran.
var ErrBatchNotReady = errors.New("batch has not been processed yet")

var exportColumns = []string{"company", "tax_id", "contact", "email", "phone", "position", "segment", "state", "status"}

// ExportRecords renders the processed records as CSV for audit reporting.
// An empty statusFilter exports every record, failed ones included.
func (s *ImportService) ExportRecords(jobID uuid.UUID, statusFilter entity.RecordStatus) ([]byte, error) {
	state, err := s.state(jobID)
	if err != nil {
		return nil, err
	}

	state.mu.Lock()
	batch := state.job.Batch
	state.mu.Unlock()

	if batch == nil {
		return nil, ErrBatchNotReady
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(exportColumns); err != nil {
		return nil, fmt.Errorf("write export header: %w", err)
	}

	for _, record := range batch.Records {
		if statusFilter != "" && record.Status != statusFilter {
			continue
		}
		row := []string{
			record.Company,
			record.TaxID,
			record.Contact,
			strings.Join(record.Emails, "; "),
			record.Phone,
			record.Position,
			record.Segment,
			record.State,
			string(record.Status),
		}
		if err := w.Write(row); err != nil {
			return nil, fmt.Errorf("write export row: %w", err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("flush export: %w", err)
	}
	return buf.Bytes(), nil
}
