package service

import (
	"regexp"
	"strings"

	"github.com/nyaruka/phonenumbers"
	"golang.org/x/net/idna"

	"github.com/octobees/lead-import/api/internal/entity"
)

var (
	emailPattern = regexp.MustCompile(`^[a-z0-9._%+\-']+@[a-z0-9.-]+\.[a-z]{2,}$`)
	nonDigits    = regexp.MustCompile(`\D`)
	idnaProfile  = idna.Lookup
)

const (
	defaultPhoneRegion = "BR"
	cnpjLength         = 14
	maxEmailsPerRecord = 3
)

// FieldValidator applies the per-field cleansing rules to raw records.
type FieldValidator struct {
	PhoneRegion string
}

// NewFieldValidator builds a validator with the given default phone region.
func NewFieldValidator(region string) *FieldValidator {
	region = strings.ToUpper(strings.TrimSpace(region))
	if region == "" {
		region = defaultPhoneRegion
	}
	return &FieldValidator{PhoneRegion: region}
}

// ValidateTaxID normalizes a CNPJ to its 14-digit canonical form.
// Wrong check digits with a correct digit count are rederived (corrected);
// a wrong digit count is unrecoverable (failed).
func (v *FieldValidator) ValidateTaxID(raw string) (string, []entity.ValidationIssue) {
	digits := nonDigits.ReplaceAllString(raw, "")
	if len(digits) != cnpjLength {
		return "", []entity.ValidationIssue{{
			Field:   "tax_id",
			Problem: "tax id must contain 14 digits",
			Value:   raw,
		}}
	}
	if allSameDigit(digits) {
		return "", []entity.ValidationIssue{{
			Field:   "tax_id",
			Problem: "tax id digits are all identical",
			Value:   raw,
		}}
	}

	if cnpjChecksumValid(digits) {
		return digits, nil
	}

	fixed := digits[:12] + cnpjCheckDigits(digits[:12])
	return fixed, []entity.ValidationIssue{{
		Field:   "tax_id",
		Problem: "check digits rederived",
		Value:   raw,
	}}
}

// ValidateEmails cleans up to three supplied addresses. Low-risk malformations
// (stray whitespace, wrong case) are auto-fixed; duplicates are dropped.
// Zero valid addresses is a mandatory-field violation.
func (v *FieldValidator) ValidateEmails(raw []string) ([]string, []entity.ValidationIssue) {
	var issues []entity.ValidationIssue
	seen := make(map[string]struct{}, maxEmailsPerRecord)
	valid := make([]string, 0, maxEmailsPerRecord)

	for _, original := range raw {
		if strings.TrimSpace(original) == "" {
			continue
		}
		email := strings.ToLower(strings.TrimSpace(original))
		if !emailPattern.MatchString(email) {
			issues = append(issues, entity.ValidationIssue{
				Field:   "email",
				Problem: "invalid email syntax",
				Value:   original,
			})
			continue
		}
		domain := email[strings.LastIndex(email, "@")+1:]
		if !isDomainValid(domain) {
			issues = append(issues, entity.ValidationIssue{
				Field:   "email",
				Problem: "invalid email domain",
				Value:   original,
			})
			continue
		}
		if _, err := idnaProfile.ToASCII(domain); err != nil {
			issues = append(issues, entity.ValidationIssue{
				Field:   "email",
				Problem: "invalid email domain",
				Value:   original,
			})
			continue
		}
		if email != original {
			issues = append(issues, entity.ValidationIssue{
				Field:   "email",
				Problem: "email normalized",
				Value:   original,
			})
		}
		if _, dup := seen[email]; dup {
			continue
		}
		seen[email] = struct{}{}
		valid = append(valid, email)
	}

	if len(valid) == 0 {
		issues = append(issues, entity.ValidationIssue{
			Field:   "email",
			Problem: "no valid email supplied",
			Value:   strings.Join(raw, "; "),
		})
		return nil, issues
	}
	return valid, issues
}

// ValidatePhone normalizes to E.164. Phone is optional context: any reformat
// is a correction and an unparseable value is dropped, never a failure.
func (v *FieldValidator) ValidatePhone(raw string) (string, []entity.ValidationIssue) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return "", nil
	}

	number, err := phonenumbers.Parse(trimmed, v.PhoneRegion)
	if err != nil || !phonenumbers.IsPossibleNumber(number) || !phonenumbers.IsValidNumber(number) {
		return "", []entity.ValidationIssue{{
			Field:   "phone",
			Problem: "unparseable phone dropped",
			Value:   raw,
		}}
	}

	formatted := phonenumbers.Format(number, phonenumbers.E164)
	if formatted != raw {
		return formatted, []entity.ValidationIssue{{
			Field:   "phone",
			Problem: "phone normalized",
			Value:   raw,
		}}
	}
	return formatted, nil
}

func cnpjChecksumValid(digits string) bool {
	return digits[12:] == cnpjCheckDigits(digits[:12])
}

// cnpjCheckDigits derives the two mod-11 verification digits for a 12-digit base.
func cnpjCheckDigits(base string) string {
	first := cnpjDigit(base, []int{5, 4, 3, 2, 9, 8, 7, 6, 5, 4, 3, 2})
	second := cnpjDigit(base+string(rune('0'+first)), []int{6, 5, 4, 3, 2, 9, 8, 7, 6, 5, 4, 3, 2})
	return string(rune('0'+first)) + string(rune('0'+second))
}

func cnpjDigit(digits string, weights []int) int {
	sum := 0
	for i, w := range weights {
		sum += int(digits[i]-'0') * w
	}
	rest := sum % 11
	if rest < 2 {
		return 0
	}
	return 11 - rest
}

func allSameDigit(digits string) bool {
	for i := 1; i < len(digits); i++ {
		if digits[i] != digits[0] {
			return false
		}
	}
	return true
}

func isDomainValid(domain string) bool {
	if strings.Count(domain, ".") == 0 {
		return false
	}
	parts := strings.Split(domain, ".")
	for _, part := range parts {
		if part == "" || strings.HasPrefix(part, "-") || strings.HasSuffix(part, "-") {
			return false
		}
	}
	return true
}
