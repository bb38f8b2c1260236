package outfmt

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/itchyny/gojq"
)

type queryKey struct{}

// WithQuery adds a jq expression to the context
func WithQuery(ctx context.Context, query string) context.Context {
	return context.WithValue(ctx, queryKey{}, query)
}

// GetQuery retrieves the jq expression from context
func GetQuery(ctx context.Context) string {
	if q, ok := ctx.Value(queryKey{}).(string); ok {
		return q
	}
	return ""
}

// normalizeExpression undoes zsh's escaping of "!" inside single quotes.
func normalizeExpression(expr string) string {
	return strings.ReplaceAll(expr, `\!`, `!`)
}

// ValidateQuery reports a parse error in expr without running it.
func ValidateQuery(expr string) error {
	if strings.TrimSpace(expr) == "" {
		return nil
	}
	if _, err := gojq.Parse(normalizeExpression(expr)); err != nil {
		return fmt.Errorf("invalid jq expression: %w", err)
	}
	return nil
}

// ApplyQuery runs expr against v. v is first round-tripped through JSON so
// structs are seen the way they are printed. A single result is returned as
// is; several results are returned as a slice.
func ApplyQuery(v any, expr string) (any, error) {
	if strings.TrimSpace(expr) == "" {
		return v, nil
	}
	query, err := gojq.Parse(normalizeExpression(expr))
	if err != nil {
		return nil, fmt.Errorf("invalid jq expression: %w", err)
	}

	data, err := toGeneric(v)
	if err != nil {
		return nil, err
	}

	iter := query.Run(data)
	var results []any
	for {
		out, ok := iter.Next()
		if !ok {
			break
		}
		if err, ok := out.(error); ok {
			var halt *gojq.HaltError
			if errors.As(err, &halt) && halt.Value() == nil {
				break
			}
			return nil, fmt.Errorf("jq error: %w", err)
		}
		results = append(results, out)
	}

	switch len(results) {
	case 0:
		return nil, nil
	case 1:
		return results[0], nil
	default:
		return results, nil
	}
}

// toGeneric converts v into the map/slice/number form gojq operates on.
func toGeneric(v any) (any, error) {
	switch v.(type) {
	case nil, map[string]any, []any, string, bool, float64:
		return v, nil
	}
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("failed to encode output: %w", err)
	}
	var out any
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("failed to decode output: %w", err)
	}
	return out, nil
}
