package service

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/octobees/lead-import/api/internal/entity"
)

// FileValidationError indicates that the uploaded file violates the header
// contract or cannot be parsed as delimited tabular data.
type FileValidationError struct {
	Message string
}

// Error implements the error interface.
func (e FileValidationError) Error() string {
	return e.Message
}

var requiredHeaders = []string{"company", "tax_id", "contact", "email", "phone", "position", "website", "segment", "state", "notes"}

// ParseRecords reads the uploaded delimited file into raw records.
// Rows without a company name and tax id are skipped as blank lines.
func ParseRecords(r io.Reader) ([]entity.RawRecord, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, FileValidationError{Message: "file is empty"}
		}
		return nil, FileValidationError{Message: fmt.Sprintf("unable to read header: %v", err)}
	}

	index, err := buildHeaderIndex(header)
	if err != nil {
		return nil, err
	}

	var (
		records []entity.RawRecord
		rowNum  int
		fileRow = 1
	)

	for {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		fileRow++
		if err != nil {
			return nil, FileValidationError{Message: fmt.Sprintf("unable to read row %d: %v", fileRow, err)}
		}

		record := entity.RawRecord{
			RowIndex: rowNum,
			Company:  strings.TrimSpace(cell(row, index, "company")),
			TaxID:    strings.TrimSpace(cell(row, index, "tax_id")),
			Contact:  strings.TrimSpace(cell(row, index, "contact")),
			Phone:    strings.TrimSpace(cell(row, index, "phone")),
			Position: strings.TrimSpace(cell(row, index, "position")),
			Website:  strings.TrimSpace(cell(row, index, "website")),
			Segment:  strings.TrimSpace(cell(row, index, "segment")),
			State:    strings.TrimSpace(cell(row, index, "state")),
			Notes:    strings.TrimSpace(cell(row, index, "notes")),
		}
		for _, col := range []string{"email", "email2", "email3"} {
			if email := strings.TrimSpace(cell(row, index, col)); email != "" {
				record.Emails = append(record.Emails, email)
			}
		}

		if record.Company == "" && record.TaxID == "" {
			continue
		}

		records = append(records, record)
		rowNum++
	}

	if len(records) == 0 {
		return nil, FileValidationError{Message: "file contains no records"}
	}
	return records, nil
}

func buildHeaderIndex(header []string) (map[string]int, error) {
	index := make(map[string]int)
	for i, col := range header {
		index[strings.ToLower(strings.TrimSpace(col))] = i
	}

	missing := make([]string, 0)
	for _, required := range requiredHeaders {
		if _, ok := index[required]; !ok {
			missing = append(missing, required)
		}
	}
	if len(missing) > 0 {
		return nil, FileValidationError{Message: fmt.Sprintf("missing required columns: %s", strings.Join(missing, ", "))}
	}
	return index, nil
}

func cell(row []string, index map[string]int, column string) string {
	i, ok := index[column]
	if !ok || i >= len(row) {
		return ""
	}
	return row[i]
}
