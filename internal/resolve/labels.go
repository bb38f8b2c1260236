// Package resolve turns label names typed on the command line into the
// numeric label ids the server expects.
package resolve

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/sahilm/fuzzy"

	"github.com/elasticinbox/elasticinbox-go/internal/validation"
)

// Label is a label id with its display name.
type Label struct {
	ID   int
	Name string
}

// Match is a fuzzy match result with score.
type Match struct {
	ID    int
	Name  string
	Score int
}

var (
	ErrEmptyQuery  = errors.New("empty label reference")
	ErrEmptyLabels = errors.New("mailbox has no labels")
)

// AmbiguousError indicates several labels matched equally well.
type AmbiguousError struct {
	Query   string
	Matches []Match
}

func (e *AmbiguousError) Error() string {
	var b strings.Builder
	_, _ = fmt.Fprintf(&b, "ambiguous label %q, candidates:", e.Query)
	for _, m := range e.Matches {
		_, _ = fmt.Fprintf(&b, "\n  %d: %s", m.ID, m.Name)
	}
	return b.String()
}

// NoMatchError indicates no label carries the referenced name. Suggestions
// holds the closest names, if any.
type NoMatchError struct {
	Query       string
	Suggestions []Match
}

func (e *NoMatchError) Error() string {
	if len(e.Suggestions) == 0 {
		return fmt.Sprintf("no label matches %q", e.Query)
	}
	var b strings.Builder
	_, _ = fmt.Fprintf(&b, "no label named %q, did you mean:", e.Query)
	for _, m := range e.Suggestions {
		_, _ = fmt.Fprintf(&b, "\n  %d: %s", m.ID, m.Name)
	}
	return b.String()
}

type lowerNames []Label

func (s lowerNames) String(i int) string { return strings.ToLower(s[i].Name) }
func (s lowerNames) Len() int            { return len(s) }

// IsID reports whether ref can be sent to the server as a label id without
// looking it up.
func IsID(ref string) bool {
	return validation.IsLabelID(strings.TrimSpace(ref))
}

// LabelID resolves ref to a label id string. Numeric references are returned
// as is. Otherwise an exact case-insensitive name wins, then the best fuzzy
// match; a tie between the top two fuzzy results is an *AmbiguousError.
func LabelID(ref string, labels []Label) (string, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return "", ErrEmptyQuery
	}
	if validation.IsLabelID(ref) {
		return ref, nil
	}
	if len(labels) == 0 {
		return "", ErrEmptyLabels
	}

	if id, ok := exactName(ref, labels); ok {
		return id, nil
	}

	results := fuzzy.FindFrom(strings.ToLower(ref), lowerNames(labels))
	if len(results) == 0 {
		return "", &NoMatchError{Query: ref}
	}
	if len(results) > 1 && results[0].Score == results[1].Score {
		return "", &AmbiguousError{Query: ref, Matches: topMatches(labels, results, 5)}
	}
	return strconv.Itoa(labels[results[0].Index].ID), nil
}

// ExactLabelID resolves ref by id or exact case-insensitive name only. A
// name that does not match exactly is a *NoMatchError with up to five
// suggestions.
func ExactLabelID(ref string, labels []Label) (string, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return "", ErrEmptyQuery
	}
	if validation.IsLabelID(ref) {
		return ref, nil
	}
	if id, ok := exactName(ref, labels); ok {
		return id, nil
	}
	return "", &NoMatchError{Query: ref, Suggestions: Suggest(ref, labels, 5)}
}

func exactName(ref string, labels []Label) (string, bool) {
	for _, l := range labels {
		if strings.EqualFold(l.Name, ref) {
			return strconv.Itoa(l.ID), true
		}
	}
	return "", false
}

// LabelIDs resolves every reference in refs with LabelID.
func LabelIDs(refs []string, labels []Label) ([]string, error) {
	return resolveAll(refs, labels, LabelID)
}

// ExactLabelIDs resolves every reference in refs with ExactLabelID.
func ExactLabelIDs(refs []string, labels []Label) ([]string, error) {
	return resolveAll(refs, labels, ExactLabelID)
}

func resolveAll(refs []string, labels []Label, fn func(string, []Label) (string, error)) ([]string, error) {
	out := make([]string, 0, len(refs))
	for _, ref := range refs {
		id, err := fn(ref, labels)
		if err != nil {
			return nil, err
		}
		out = append(out, id)
	}
	return out, nil
}

// Suggest returns up to limit labels ranked by how well they match query.
func Suggest(query string, labels []Label, limit int) []Match {
	query = strings.TrimSpace(query)
	if query == "" || len(labels) == 0 || limit <= 0 {
		return nil
	}
	return topMatches(labels, fuzzy.FindFrom(strings.ToLower(query), lowerNames(labels)), limit)
}

func topMatches(labels []Label, results fuzzy.Matches, limit int) []Match {
	if len(results) > limit {
		results = results[:limit]
	}
	matches := make([]Match, len(results))
	for i, r := range results {
		matches[i] = Match{ID: labels[r.Index].ID, Name: labels[r.Index].Name, Score: r.Score}
	}
	return matches
}
