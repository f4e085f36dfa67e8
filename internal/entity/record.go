package entity

import "github.com/google/uuid"

// RecordStatus tags the cleansing outcome for a single record.
type RecordStatus string

const (
	StatusOK        RecordStatus = "ok"
	StatusCorrected RecordStatus = "corrected"
	StatusEnriched  RecordStatus = "enriched"
	StatusFailed    RecordStatus = "failed"
)

// statusPriority orders outcomes: failed > corrected > enriched > ok.
var statusPriority = map[RecordStatus]int{
	StatusOK:        0,
	StatusEnriched:  1,
	StatusCorrected: 2,
	StatusFailed:    3,
}

// Outranks reports whether s takes precedence over other in the status tag.
func (s RecordStatus) Outranks(other RecordStatus) bool {
	return statusPriority[s] > statusPriority[other]
}

// RawRecord is one row of the uploaded file, immutable once parsed.
type RawRecord struct {
	RowIndex int      `json:"row_index"`
	Company  string   `json:"company"`
	TaxID    string   `json:"tax_id"`
	Contact  string   `json:"contact"`
	Emails   []string `json:"emails"`
	Phone    string   `json:"phone"`
	Position string   `json:"position"`
	Website  string   `json:"website"`
	Segment  string   `json:"segment"`
	State    string   `json:"state"`
	Notes    string   `json:"notes"`
}

// ValidationIssue records a single field problem found during cleansing.
type ValidationIssue struct {
	Field   string `json:"field"`
	Problem string `json:"problem"`
	Value   string `json:"value"`
}

// CleansedRecord is the validated and normalized form of a RawRecord.
type CleansedRecord struct {
	ID          uuid.UUID         `json:"id"`
	RowIndex    int               `json:"row_index"`
	Company     string            `json:"company"`
	TaxID       string            `json:"tax_id"`
	Contact     string            `json:"contact"`
	Emails      []string          `json:"emails"`
	Phone       string            `json:"phone,omitempty"`
	Position    string            `json:"position,omitempty"`
	Website     string            `json:"website,omitempty"`
	Segment     string            `json:"segment,omitempty"`
	State       string            `json:"state,omitempty"`
	Notes       string            `json:"notes,omitempty"`
	Employees   *int              `json:"employees,omitempty"`
	CompanyType *string           `json:"company_type,omitempty"`
	Status      RecordStatus      `json:"status"`
	Issues      []ValidationIssue `json:"issues,omitempty"`
	Enriched    bool              `json:"enriched"`
}

// CompanyProfile holds the partial fields an enrichment lookup can return.
type CompanyProfile struct {
	Website     string  `json:"website,omitempty"`
	Employees   *int    `json:"employees,omitempty"`
	Position    string  `json:"position,omitempty"`
	CompanyType *string `json:"company_type,omitempty"`
}

// Empty reports whether the profile carries no usable field.
func (p CompanyProfile) Empty() bool {
	return p.Website == "" && p.Employees == nil && p.Position == "" && p.CompanyType == nil
}
