package validate

import "regexp"

// Reason codes reported per failing field.
const (
	ReasonRequired     = "REQUIRED"
	ReasonEmail        = "INVALID_EMAIL"
	ReasonWeakSecret   = "WEAK_SECRET"
	ReasonPhone        = "INVALID_PHONE"
	ReasonNationalID   = "INVALID_NATIONAL_ID"
	ReasonCode         = "INVALID_CODE"
	ReasonMismatch     = "MISMATCH"
	ReasonTermsMissing = "TERMS_NOT_ACCEPTED"
)

var (
	emailRe      = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	phoneRe      = regexp.MustCompile(`^\+?56\d{9}$`)
	nationalIDRe = regexp.MustCompile(`^\d{1,2}\.\d{3}\.\d{3}-[\dkK]$`)
	codeRe       = regexp.MustCompile(`^\d{6}$`)

	secretLower  = regexp.MustCompile(`[a-z]`)
	secretUpper  = regexp.MustCompile(`[A-Z]`)
	secretDigit  = regexp.MustCompile(`\d`)
	secretSymbol = regexp.MustCompile(`[@$!%*?&]`)
)

// Email checks local@domain shape.
func Email(s string) (bool, string) {
	if s == "" {
		return false, ReasonRequired
	}
	if !emailRe.MatchString(s) {
		return false, ReasonEmail
	}
	return true, ""
}

// SecretComplexity enforces the portal password policy: 8-20 characters with
// at least one lowercase, one uppercase, one digit and one symbol from @$!%*?&.
func SecretComplexity(s string) (bool, string) {
	if s == "" {
		return false, ReasonRequired
	}
	if len(s) < 8 || len(s) > 20 {
		return false, ReasonWeakSecret
	}
	if !secretLower.MatchString(s) || !secretUpper.MatchString(s) ||
		!secretDigit.MatchString(s) || !secretSymbol.MatchString(s) {
		return false, ReasonWeakSecret
	}
	return true, ""
}

// Phone checks an optional leading "+", country code 56 and exactly 9 digits.
func Phone(s string) (bool, string) {
	if s == "" {
		return false, ReasonRequired
	}
	if !phoneRe.MatchString(s) {
		return false, ReasonPhone
	}
	return true, ""
}

// NationalID checks the d{1,2}.ddd.ddd-[0-9kK] identity-number pattern.
func NationalID(s string) (bool, string) {
	if s == "" {
		return false, ReasonRequired
	}
	if !nationalIDRe.MatchString(s) {
		return false, ReasonNationalID
	}
	return true, ""
}

// Code checks a 6-digit recovery code.
func Code(s string) (bool, string) {
	if s == "" {
		return false, ReasonRequired
	}
	if !codeRe.MatchString(s) {
		return false, ReasonCode
	}
	return true, ""
}

// FieldsEqual checks confirmation pairs.
func FieldsEqual(a, b string) (bool, string) {
	if a != b {
		return false, ReasonMismatch
	}
	return true, ""
}

// EqualTo returns a predicate that checks the value matches expected. Used
// for secret-confirmation fields with Fields.Check.
func EqualTo(expected string) func(string) (bool, string) {
	return func(s string) (bool, string) {
		return FieldsEqual(expected, s)
	}
}

// Required checks plain non-empty fields with a minimum length of two
// characters, matching the registration form rules for names.
func Required(s string) (bool, string) {
	if len(s) < 2 {
		return false, ReasonRequired
	}
	return true, ""
}

// Fields collects per-field reason codes across a form.
type Fields map[string]string

// Check runs the predicate against the field's value and records the reason
// under name when it fails.
func (f Fields) Check(name, value string, predicate func(string) (bool, string)) {
	if ok, reason := predicate(value); !ok {
		f[name] = reason
	}
}

// Ok reports whether every checked field passed.
func (f Fields) Ok() bool {
	return len(f) == 0
}
