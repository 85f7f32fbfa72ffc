package fault

import (
	"errors"
	"fmt"
)

// Kind classifies recoverable failures surfaced to the portal UI. Every kind
// maps to a user-correctable message; none aborts server state.
type Kind string

const (
	KindValidationFailed    Kind = "VALIDATION_FAILED"
	KindInvalidCredentials  Kind = "INVALID_CREDENTIALS"
	KindWrongCode           Kind = "WRONG_CODE"
	KindMismatch            Kind = "MISMATCH"
	KindDuplicateIdentifier Kind = "DUPLICATE_IDENTIFIER"
	KindAccountDisabled     Kind = "ACCOUNT_DISABLED"
	KindInvalidState        Kind = "INVALID_STATE"
	KindFlowBusy            Kind = "FLOW_BUSY"
	KindServiceUnavailable  Kind = "SERVICE_UNAVAILABLE"
)

// Fault is a classified, recoverable error. Fields carries per-field reason
// codes for validation failures so the UI can mark individual inputs.
type Fault struct {
	Kind    Kind
	Message string
	Fields  map[string]string
}

func (f *Fault) Error() string {
	if len(f.Fields) == 0 {
		return fmt.Sprintf("%s: %s", f.Kind, f.Message)
	}
	return fmt.Sprintf("%s: %s %v", f.Kind, f.Message, f.Fields)
}

// New builds a fault of the given kind.
func New(kind Kind, message string) *Fault {
	return &Fault{Kind: kind, Message: message}
}

// Validation builds a VALIDATION_FAILED fault carrying per-field reasons.
func Validation(fields map[string]string) *Fault {
	return &Fault{Kind: KindValidationFailed, Message: "one or more fields are invalid", Fields: fields}
}

// KindOf extracts the kind from err, or "" when err is not a Fault.
func KindOf(err error) Kind {
	var f *Fault
	if errors.As(err, &f) {
		return f.Kind
	}
	return ""
}

// IsKind reports whether err is a Fault of the given kind.
func IsKind(err error, kind Kind) bool {
	return KindOf(err) == kind
}

// FieldsOf returns the per-field reasons attached to err, if any.
func FieldsOf(err error) map[string]string {
	var f *Fault
	if errors.As(err, &f) {
		return f.Fields
	}
	return nil
}
