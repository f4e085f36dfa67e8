package service

import (
	"testing"
)

func TestValidateTaxID(t *testing.T) {
	v := NewFieldValidator("BR")

	t.Run("canonical value passes unchanged", func(t *testing.T) {
		taxID, issues := v.ValidateTaxID("11222333000181")
		if taxID != "11222333000181" || len(issues) != 0 {
			t.Fatalf("unexpected result: %q %+v", taxID, issues)
		}
	})

	t.Run("punctuation is stripped", func(t *testing.T) {
		taxID, issues := v.ValidateTaxID("11.222.333/0001-81")
		if taxID != "11222333000181" || len(issues) != 0 {
			t.Fatalf("unexpected result: %q %+v", taxID, issues)
		}
	})

	t.Run("wrong check digits are rederived", func(t *testing.T) {
		taxID, issues := v.ValidateTaxID("11222333000100")
		if taxID != "11222333000181" {
			t.Fatalf("expected rederived check digits, got %q", taxID)
		}
		if len(issues) != 1 || issues[0].Field != "tax_id" || issues[0].Value != "11222333000100" {
			t.Fatalf("unexpected issues: %+v", issues)
		}
	})

	t.Run("wrong digit count fails", func(t *testing.T) {
		taxID, issues := v.ValidateTaxID("1122233300")
		if taxID != "" || len(issues) != 1 {
			t.Fatalf("expected failure, got %q %+v", taxID, issues)
		}
	})

	t.Run("repeated digits fail", func(t *testing.T) {
		taxID, issues := v.ValidateTaxID("11111111111111")
		if taxID != "" || len(issues) != 1 {
			t.Fatalf("expected failure, got %q %+v", taxID, issues)
		}
	})
}

func TestValidateEmails(t *testing.T) {
	v := NewFieldValidator("BR")

	t.Run("whitespace and case are auto-fixed", func(t *testing.T) {
		emails, issues := v.ValidateEmails([]string{"  Ana@Example.COM "})
		if len(emails) != 1 || emails[0] != "ana@example.com" {
			t.Fatalf("unexpected emails: %+v", emails)
		}
		if len(issues) != 1 || issues[0].Problem != "email normalized" {
			t.Fatalf("expected normalization issue, got %+v", issues)
		}
	})

	t.Run("invalid syntax is dropped with an issue", func(t *testing.T) {
		emails, issues := v.ValidateEmails([]string{"not-an-email", "ana@example.com"})
		if len(emails) != 1 || emails[0] != "ana@example.com" {
			t.Fatalf("unexpected emails: %+v", emails)
		}
		if len(issues) != 1 || issues[0].Problem != "invalid email syntax" {
			t.Fatalf("unexpected issues: %+v", issues)
		}
	})

	t.Run("bad domain is dropped", func(t *testing.T) {
		emails, issues := v.ValidateEmails([]string{"ana@nodot", "ana@-bad-.com", "ana@example.com"})
		if len(emails) != 1 {
			t.Fatalf("unexpected emails: %+v", emails)
		}
		if len(issues) != 2 {
			t.Fatalf("expected two domain issues, got %+v", issues)
		}
	})

	t.Run("duplicates are removed", func(t *testing.T) {
		emails, _ := v.ValidateEmails([]string{"ana@example.com", "ANA@example.com", "bob@example.com"})
		if len(emails) != 2 || emails[0] != "ana@example.com" || emails[1] != "bob@example.com" {
			t.Fatalf("unexpected emails: %+v", emails)
		}
	})

	t.Run("zero valid emails is a mandatory-field violation", func(t *testing.T) {
		emails, issues := v.ValidateEmails([]string{"broken", ""})
		if emails != nil {
			t.Fatalf("expected no emails, got %+v", emails)
		}
		found := false
		for _, issue := range issues {
			if issue.Problem == "no valid email supplied" {
				found = true
			}
		}
		if !found {
			t.Fatalf("expected mandatory-field issue, got %+v", issues)
		}
	})
}

func TestValidatePhone(t *testing.T) {
	v := NewFieldValidator("BR")

	t.Run("empty phone is fine", func(t *testing.T) {
		phone, issues := v.ValidatePhone("")
		if phone != "" || len(issues) != 0 {
			t.Fatalf("unexpected result: %q %+v", phone, issues)
		}
	})

	t.Run("already canonical passes unchanged", func(t *testing.T) {
		phone, issues := v.ValidatePhone("+5511987654321")
		if phone != "+5511987654321" || len(issues) != 0 {
			t.Fatalf("unexpected result: %q %+v", phone, issues)
		}
	})

	t.Run("national format is normalized", func(t *testing.T) {
		phone, issues := v.ValidatePhone("(11) 98765-4321")
		if phone != "+5511987654321" {
			t.Fatalf("expected E.164 output, got %q", phone)
		}
		if len(issues) != 1 || issues[0].Problem != "phone normalized" {
			t.Fatalf("unexpected issues: %+v", issues)
		}
	})

	t.Run("unparseable phone is dropped not failed", func(t *testing.T) {
		phone, issues := v.ValidatePhone("not a phone")
		if phone != "" {
			t.Fatalf("expected empty phone, got %q", phone)
		}
		if len(issues) != 1 || issues[0].Problem != "unparseable phone dropped" {
			t.Fatalf("unexpected issues: %+v", issues)
		}
	})
}
