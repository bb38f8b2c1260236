package validation

import (
	"errors"
	"strings"
	"testing"
)

func TestValidationErrorIs(t *testing.T) {
	err := Invalid(ErrInvalidUUID, "nope")
	if !errors.Is(err, ErrInvalidUUID) {
		t.Fatal("expected detailed error to match its sentinel")
	}
	if errors.Is(err, ErrInvalidLabelID) {
		t.Fatal("expected detailed error not to match another sentinel")
	}
	if got := err.Error(); got != `invalid message UUID: "nope"` {
		t.Errorf("unexpected message %q", got)
	}
}

func TestValidateAccount(t *testing.T) {
	if err := ValidateAccount("test.com", "test"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	err := ValidateAccount("test-domain-wrong", "test")
	if !errors.Is(err, ErrInvalidAccount) {
		t.Fatalf("expected ErrInvalidAccount, got %v", err)
	}
	if !strings.Contains(err.Error(), "test@test-domain-wrong") {
		t.Errorf("expected the address in %q", err.Error())
	}
}

func TestValidateLabelName(t *testing.T) {
	if err := ValidateLabelName("Work"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := ValidateLabelName(""); err != ErrInvalidLabel {
		t.Errorf("expected bare ErrInvalidLabel for empty name, got %v", err)
	}
	if err := ValidateLabelName("a^b"); !errors.Is(err, ErrInvalidLabel) {
		t.Errorf("expected ErrInvalidLabel, got %v", err)
	}
}

func TestValidateLabelID(t *testing.T) {
	for _, id := range []string{"0", "1", "250"} {
		if err := ValidateLabelID(id); err != nil {
			t.Errorf("ValidateLabelID(%q) = %v", id, err)
		}
	}
	for _, id := range []string{"", "a", "-1", "1.5"} {
		if err := ValidateLabelID(id); !errors.Is(err, ErrInvalidLabelID) {
			t.Errorf("ValidateLabelID(%q) = %v, want ErrInvalidLabelID", id, err)
		}
	}
}

func TestValidateUUIDs(t *testing.T) {
	good := "7a8e6d30-4dd7-11e2-8dd9-040ccee13a02"

	if err := ValidateUUIDs(nil); err != ErrNoMessages {
		t.Errorf("expected ErrNoMessages, got %v", err)
	}
	if err := ValidateUUIDs([]string{good, good}); err != nil {
		t.Errorf("unexpected error: %v", err)
	}

	err := ValidateUUIDs([]string{good, "bad"})
	if !errors.Is(err, ErrInvalidUUID) {
		t.Fatalf("expected ErrInvalidUUID, got %v", err)
	}
	if !strings.Contains(err.Error(), "index 1") {
		t.Errorf("expected index in %q", err.Error())
	}
}
