package service

import (
	"errors"
	"strings"
	"testing"
)

const sampleHeader = "company,tax_id,contact,email,email2,email3,phone,position,website,segment,state,notes"

func TestParseRecords(t *testing.T) {
	input := sampleHeader + "\n" +
		"Acme Ltda,11222333000181,Ana Souza,ana@acme.com,sales@acme.com,,+5511987654321,CEO,acme.com,retail,SP,key account\n" +
		",,,,,,,,,,,\n" +
		"Beta SA,06990590000123,Bruno Lima,bruno@beta.com,,,+5511912345678,CTO,,saas,RJ,\n"

	records, err := ParseRecords(strings.NewReader(input))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(records))
	}
	if records[0].RowIndex != 0 || records[1].RowIndex != 1 {
		t.Fatalf("expected sequential row indexes, got %d and %d", records[0].RowIndex, records[1].RowIndex)
	}
	if records[0].Company != "Acme Ltda" || records[0].TaxID != "11222333000181" {
		t.Fatalf("unexpected first record: %+v", records[0])
	}
	if len(records[0].Emails) != 2 {
		t.Fatalf("expected both email columns collected, got %+v", records[0].Emails)
	}
	if len(records[1].Emails) != 1 || records[1].Emails[0] != "bruno@beta.com" {
		t.Fatalf("unexpected second record emails: %+v", records[1].Emails)
	}
}

func TestParseRecords_HeaderCaseInsensitive(t *testing.T) {
	input := "Company,TAX_ID,Contact,Email,Phone,Position,Website,Segment,State,Notes\n" +
		"Acme,11222333000181,Ana,ana@acme.com,,,,,SP,\n"

	records, err := ParseRecords(strings.NewReader(input))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(records) != 1 || records[0].Company != "Acme" {
		t.Fatalf("unexpected records: %+v", records)
	}
}

func TestParseRecords_MissingColumns(t *testing.T) {
	input := "company,contact,email\nAcme,Ana,ana@acme.com\n"

	_, err := ParseRecords(strings.NewReader(input))
	var validationErr FileValidationError
	if !errors.As(err, &validationErr) {
		t.Fatalf("expected FileValidationError, got %v", err)
	}
	if !strings.Contains(validationErr.Message, "tax_id") {
		t.Fatalf("expected missing column named, got %q", validationErr.Message)
	}
}

func TestParseRecords_EmptyFile(t *testing.T) {
	if _, err := ParseRecords(strings.NewReader("")); err == nil {
		t.Fatalf("expected error for empty file")
	}

	if _, err := ParseRecords(strings.NewReader(sampleHeader + "\n")); err == nil {
		t.Fatalf("expected error for header-only file")
	}
}
