package resolve_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/elasticinbox/elasticinbox-go/internal/resolve"
)

var mailboxLabels = []resolve.Label{
	{ID: 0, Name: "all"},
	{ID: 1, Name: "inbox"},
	{ID: 3, Name: "sent"},
	{ID: 12, Name: "Receipts"},
	{ID: 13, Name: "Project Alpha"},
}

func TestLabelID(t *testing.T) {
	tests := []struct {
		name string
		ref  string
		want string
	}{
		{name: "numeric passes through", ref: "42", want: "42"},
		{name: "zero", ref: "0", want: "0"},
		{name: "exact name", ref: "Receipts", want: "12"},
		{name: "case-insensitive name", ref: "INBOX", want: "1"},
		{name: "fuzzy prefix", ref: "rec", want: "12"},
		{name: "fuzzy words", ref: "proj alp", want: "13"},
		{name: "surrounding space", ref: "  sent ", want: "3"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := resolve.LabelID(tt.ref, mailboxLabels)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("LabelID(%q) = %q, want %q", tt.ref, got, tt.want)
			}
		})
	}
}

func TestLabelID_Errors(t *testing.T) {
	if _, err := resolve.LabelID(" ", mailboxLabels); !errors.Is(err, resolve.ErrEmptyQuery) {
		t.Errorf("expected ErrEmptyQuery, got %v", err)
	}
	if _, err := resolve.LabelID("work", nil); !errors.Is(err, resolve.ErrEmptyLabels) {
		t.Errorf("expected ErrEmptyLabels, got %v", err)
	}
	var noMatch *resolve.NoMatchError
	if _, err := resolve.LabelID("billing", mailboxLabels); !errors.As(err, &noMatch) {
		t.Errorf("expected NoMatchError, got %v", err)
	}
}

func TestLabelID_Ambiguous(t *testing.T) {
	labels := []resolve.Label{{ID: 20, Name: "Support US"}, {ID: 21, Name: "Support EU"}}

	_, err := resolve.LabelID("support", labels)
	var ambiguous *resolve.AmbiguousError
	if !errors.As(err, &ambiguous) {
		t.Fatalf("expected AmbiguousError, got %v", err)
	}
	msg := err.Error()
	if !strings.Contains(msg, `ambiguous label "support"`) || !strings.Contains(msg, "20: Support US") {
		t.Errorf("unexpected message %q", msg)
	}
}

func TestLabelIDs(t *testing.T) {
	got, err := resolve.LabelIDs([]string{"inbox", "12"}, mailboxLabels)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 2 || got[0] != "1" || got[1] != "12" {
		t.Errorf("LabelIDs = %v", got)
	}
	if _, err := resolve.LabelIDs([]string{"inbox", "nothing-like-it"}, mailboxLabels); err == nil {
		t.Error("expected error for unresolvable reference")
	}
}

func TestSuggestAndIsID(t *testing.T) {
	if matches := resolve.Suggest("in", mailboxLabels, 1); len(matches) != 1 {
		t.Errorf("expected one suggestion, got %v", matches)
	}
	if resolve.Suggest("", mailboxLabels, 3) != nil {
		t.Error("expected no suggestions for empty query")
	}
	if !resolve.IsID("7") || resolve.IsID("seven") {
		t.Error("unexpected IsID result")
	}
}

func TestExactLabelID(t *testing.T) {
	labels := []resolve.Label{{ID: 10, Name: "Receipts2024"}, {ID: 1, Name: "inbox"}}

	if got, err := resolve.ExactLabelID("INBOX", labels); err != nil || got != "1" {
		t.Errorf("ExactLabelID(INBOX) = %q, %v", got, err)
	}
	if got, err := resolve.ExactLabelID("42", nil); err != nil || got != "42" {
		t.Errorf("ExactLabelID(42) = %q, %v", got, err)
	}

	// LabelID would settle on Receipts2024; the exact form must not.
	_, err := resolve.ExactLabelID("receipts", labels)
	var noMatch *resolve.NoMatchError
	if !errors.As(err, &noMatch) {
		t.Fatalf("expected NoMatchError, got %v", err)
	}
	if len(noMatch.Suggestions) != 1 || noMatch.Suggestions[0].ID != 10 {
		t.Errorf("unexpected suggestions %+v", noMatch.Suggestions)
	}
	if !strings.Contains(err.Error(), "did you mean") || !strings.Contains(err.Error(), "10: Receipts2024") {
		t.Errorf("unexpected message %q", err.Error())
	}
}

func TestExactLabelIDs(t *testing.T) {
	got, err := resolve.ExactLabelIDs([]string{"sent", "13"}, mailboxLabels)
	if err != nil || len(got) != 2 || got[0] != "3" || got[1] != "13" {
		t.Errorf("ExactLabelIDs = %v, %v", got, err)
	}
	if _, err := resolve.ExactLabelIDs([]string{"sent", "recpts"}, mailboxLabels); err == nil {
		t.Error("expected error for a name that only matches fuzzily")
	}
}
