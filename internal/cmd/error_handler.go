package cmd

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/elasticinbox/elasticinbox-go/api"
	"github.com/elasticinbox/elasticinbox-go/internal/config"
	"github.com/elasticinbox/elasticinbox-go/internal/outfmt"
	"github.com/elasticinbox/elasticinbox-go/internal/resolve"
)

// handledError wraps an error that was already reported to the user.
type handledError struct {
	err      error
	exitCode int
}

func (e *handledError) Error() string {
	return e.err.Error()
}

func (e *handledError) Unwrap() error {
	return e.err
}

func isHandled(err error) bool {
	var handled *handledError
	return errors.As(err, &handled)
}

// errorPayload is the JSON shape of a failed command.
type errorPayload struct {
	Error     string `json:"error"`
	Status    int    `json:"status,omitempty"`
	RequestID string `json:"request_id,omitempty"`
	ExitCode  int    `json:"exit_code"`
}

// RunE reports the error returned by fn (as JSON in JSON modes, as a message
// with suggestions otherwise) and marks it handled.
func RunE(fn func(cmd *cobra.Command, args []string) error) func(cmd *cobra.Command, args []string) error {
	return func(cmd *cobra.Command, args []string) error {
		err := fn(cmd, args)
		if err == nil {
			return nil
		}
		code := ExitCode(err)
		if isJSON(cmd) {
			payload := errorPayload{Error: err.Error(), Status: api.StatusCode(err), ExitCode: code}
			var apiErr *api.APIError
			if errors.As(err, &apiErr) {
				payload.RequestID = apiErr.RequestID
			}
			_ = outfmt.WriteJSON(cmd.ErrOrStderr(), payload, true)
		} else {
			_, _ = fmt.Fprint(cmd.ErrOrStderr(), HandleError(err))
		}
		return &handledError{err: err, exitCode: code}
	}
}

// HandleError processes an error and returns a user-friendly message with suggestions
func HandleError(err error) string {
	if err == nil {
		return ""
	}

	var msg strings.Builder

	var (
		apiErr       *api.APIError
		serverErr    *api.ServerError
		ambiguousErr *resolve.AmbiguousError
		noMatchErr   *resolve.NoMatchError
	)

	switch {
	case api.IsValidationError(err):
		fmt.Fprintf(&msg, "Invalid input: %s\n", err.Error())

	case errors.As(err, &ambiguousErr):
		fmt.Fprintf(&msg, "Error: %s\n\n", ambiguousErr.Error())
		msg.WriteString("Suggestions:\n")
		msg.WriteString("  - Pass the numeric label id instead\n")
		msg.WriteString("  - Run: elasticinbox labels list\n")

	case errors.As(err, &noMatchErr):
		fmt.Fprintf(&msg, "Error: %s\n\n", noMatchErr.Error())
		msg.WriteString("Suggestions:\n")
		msg.WriteString("  - Names must match exactly for rename and delete\n")
		msg.WriteString("  - Run: elasticinbox labels list\n")

	case errors.Is(err, config.ErrNotConfigured), errors.Is(err, api.ErrNoHost):
		fmt.Fprintf(&msg, "Error: %s\n\n", err.Error())
		msg.WriteString("Suggestions:\n")
		msg.WriteString("  - Run: elasticinbox profile add default --host <host>\n")
		msg.WriteString("  - Or pass --host, or set ELASTICINBOX_HOST\n")

	case api.IsNotFoundError(err):
		msg.WriteString("Not found.\n\n")
		msg.WriteString("Suggestions:\n")
		msg.WriteString("  - Check the account, label id or message UUID\n")
		msg.WriteString("  - The resource may have been deleted\n")

	case errors.As(err, &serverErr):
		fmt.Fprintf(&msg, "Server error: %s\n\n", serverErr.Error())
		msg.WriteString("Suggestions:\n")
		msg.WriteString("  - Server error - not your fault\n")
		msg.WriteString("  - Use --debug to see the full request\n")

	case errors.As(err, &apiErr):
		fmt.Fprintf(&msg, "API error (HTTP %d): %s\n\n", apiErr.StatusCode, apiErr.Body)
		msg.WriteString(suggestionsForStatusCode(apiErr.StatusCode))
		if apiErr.RequestID != "" {
			fmt.Fprintf(&msg, "\nRequest ID: %s\n", apiErr.RequestID)
		}

	case strings.Contains(err.Error(), "connection refused"):
		msg.WriteString("Connection refused.\n\n")
		msg.WriteString("Suggestions:\n")
		msg.WriteString("  - Check if the ElasticInbox server is running\n")
		msg.WriteString("  - Verify host and port: elasticinbox profile show\n")

	case strings.Contains(err.Error(), "no such host"):
		msg.WriteString("DNS resolution failed.\n\n")
		msg.WriteString("Suggestions:\n")
		msg.WriteString("  - Check the host spelling\n")
		msg.WriteString("  - Try using the IP address directly\n")

	default:
		fmt.Fprintf(&msg, "Error: %s\n", err.Error())
	}

	return msg.String()
}

func suggestionsForStatusCode(code int) string {
	var suggestions strings.Builder
	suggestions.WriteString("Suggestions:\n")

	switch code {
	case 400:
		suggestions.WriteString("  - Check your request parameters\n")
		suggestions.WriteString("  - Use --debug to see the full request\n")
	case 409:
		suggestions.WriteString("  - The resource already exists\n")
	case 502, 503, 504:
		suggestions.WriteString("  - The server or a proxy in front of it is unavailable\n")
		suggestions.WriteString("  - Wait and retry\n")
	default:
		suggestions.WriteString("  - Use --debug for more details\n")
	}

	return suggestions.String()
}
