// Package dryrun lets destructive commands describe what they would do
// without sending the request.
package dryrun

import (
	"context"
	"fmt"
	"io"
	"sort"
)

type contextKey string

const dryRunKey contextKey = "dry_run_enabled"

// WithDryRun returns a context with dry-run mode enabled/disabled.
func WithDryRun(ctx context.Context, enabled bool) context.Context {
	return context.WithValue(ctx, dryRunKey, enabled)
}

// IsEnabled returns true if dry-run mode is enabled.
func IsEnabled(ctx context.Context) bool {
	if v, ok := ctx.Value(dryRunKey).(bool); ok {
		return v
	}
	return false
}

// Preview describes a request that was not sent.
type Preview struct {
	Operation string            `json:"operation"`
	Resource  string            `json:"resource"`
	Method    string            `json:"method"`
	Details   map[string]string `json:"details,omitempty"`
	Warnings  []string          `json:"warnings,omitempty"`
	DryRun    bool              `json:"dry_run"`
}

// Write prints the preview as text. Details are listed in key order.
func (p *Preview) Write(w io.Writer) {
	_, _ = fmt.Fprintf(w, "[DRY-RUN] Would %s %s (%s)\n", p.Operation, p.Resource, p.Method)

	keys := make([]string, 0, len(p.Details))
	for k := range p.Details {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		_, _ = fmt.Fprintf(w, "  %s: %s\n", k, p.Details[k])
	}
	for _, warning := range p.Warnings {
		_, _ = fmt.Fprintf(w, "  ! %s\n", warning)
	}
	_, _ = fmt.Fprintln(w, "No changes made")
}
