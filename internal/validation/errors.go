package validation

import "fmt"

// ValidationError reports a caller-supplied value rejected before any request
// was made. Field names the offending argument; Value, when set, is the value.
type ValidationError struct {
	Field  string
	Reason string
	Value  string
}

func (e *ValidationError) Error() string {
	if e.Value != "" {
		return fmt.Sprintf("%s: %q", e.Reason, e.Value)
	}
	return e.Reason
}

// Is matches errors of the same kind regardless of Value, so a detailed error
// built with Invalid still satisfies errors.Is against its sentinel.
func (e *ValidationError) Is(target error) bool {
	t, ok := target.(*ValidationError)
	if !ok {
		return false
	}
	return t.Field == e.Field && t.Reason == e.Reason
}

var (
	ErrInvalidAccount = &ValidationError{
		Field:  "account",
		Reason: "invalid arguments format: should be domain + username, forming email username@domain",
	}
	ErrInvalidLabel       = &ValidationError{Field: "label", Reason: "invalid label, please use a non-empty string without ^ symbol"}
	ErrInvalidLabelID     = &ValidationError{Field: "id", Reason: "invalid label ID, must be integer"}
	ErrInvalidUUID        = &ValidationError{Field: "uuid", Reason: "invalid message UUID"}
	ErrInvalidDate        = &ValidationError{Field: "age", Reason: "invalid date"}
	ErrInvalidPartID      = &ValidationError{Field: "part", Reason: "invalid part ID, must be dotted positive integers"}
	ErrInvalidContentID   = &ValidationError{Field: "cid", Reason: "empty content ID"}
	ErrInvalidMarker      = &ValidationError{Field: "marker", Reason: "invalid marker, must be a non-empty word"}
	ErrInvalidCount       = &ValidationError{Field: "count", Reason: "count must be a positive integer"}
	ErrEmptyMessage       = &ValidationError{Field: "content", Reason: "empty message"}
	ErrNoModifications    = &ValidationError{Field: "modification", Reason: "no modifications provided"}
	ErrNoMessages         = &ValidationError{Field: "uuids", Reason: "no message UUIDs supplied"}
	ErrAdjacentNeedsLabel = &ValidationError{Field: "adjacent", Reason: "adjacent lookup requires a label"}
	ErrStartNeedsCount    = &ValidationError{Field: "start", Reason: "start requires count"}
)

// Invalid returns a copy of kind carrying the rejected value.
func Invalid(kind *ValidationError, value string) error {
	return &ValidationError{Field: kind.Field, Reason: kind.Reason, Value: value}
}

// ValidateAccount checks that user@domain is a valid email address.
func ValidateAccount(domain, user string) error {
	if !IsAccount(domain, user) {
		return Invalid(ErrInvalidAccount, user+"@"+domain)
	}
	return nil
}

// ValidateLabelName checks a label name for emptiness and the reserved separator.
func ValidateLabelName(name string) error {
	if !IsLabelName(name) {
		if name == "" {
			return ErrInvalidLabel
		}
		return Invalid(ErrInvalidLabel, name)
	}
	return nil
}

// ValidateLabelID checks that id is a non-negative integer.
func ValidateLabelID(id string) error {
	if !IsLabelID(id) {
		if id == "" {
			return ErrInvalidLabelID
		}
		return Invalid(ErrInvalidLabelID, id)
	}
	return nil
}

// ValidateUUID checks a single message UUID.
func ValidateUUID(id string) error {
	if !IsUUID(id) {
		if id == "" {
			return ErrInvalidUUID
		}
		return Invalid(ErrInvalidUUID, id)
	}
	return nil
}

// ValidateUUIDs checks every UUID in ids and fails on the first bad one.
// An empty list is rejected.
func ValidateUUIDs(ids []string) error {
	if len(ids) == 0 {
		return ErrNoMessages
	}
	for i, id := range ids {
		if !IsUUID(id) {
			return &ValidationError{
				Field:  ErrInvalidUUID.Field,
				Reason: ErrInvalidUUID.Reason,
				Value:  fmt.Sprintf("%s (index %d)", id, i),
			}
		}
	}
	return nil
}
