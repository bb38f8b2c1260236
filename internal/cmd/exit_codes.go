package cmd

import (
	"context"
	"errors"
	"net"
	"net/url"
	"strings"

	"github.com/spf13/pflag"

	"github.com/elasticinbox/elasticinbox-go/api"
	"github.com/elasticinbox/elasticinbox-go/internal/config"
	"github.com/elasticinbox/elasticinbox-go/internal/resolve"
)

const (
	exitOK          = 0
	exitGeneric     = 1
	exitUsage       = 2
	exitNotFound    = 4
	exitUnsupported = 5
	exitServer      = 7
	exitNetwork     = 8
)

// ExitCode maps an error to a process exit code.
func ExitCode(err error) int {
	if err == nil {
		return exitOK
	}
	if errors.Is(err, pflag.ErrHelp) {
		return exitOK
	}
	var handled *handledError
	if errors.As(err, &handled) {
		if handled.exitCode != 0 {
			return handled.exitCode
		}
		err = handled.err
	}

	switch {
	case api.IsValidationError(err), errors.Is(err, api.ErrNoHost), errors.Is(err, config.ErrNotConfigured):
		return exitUsage
	case api.IsNotFoundError(err), errors.As(err, new(*resolve.NoMatchError)):
		return exitNotFound
	case errors.Is(err, api.ErrNotImplemented):
		return exitUnsupported
	case api.IsServerError(err):
		return exitServer
	case api.IsAPIError(err):
		if code := api.StatusCode(err); code >= 500 {
			return exitServer
		}
		return exitGeneric
	}
	if isNetworkError(err) {
		return exitNetwork
	}
	if isUsageError(err) {
		return exitUsage
	}
	return exitGeneric
}

func isNetworkError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return true
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		return true
	}

	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "connection refused") ||
		strings.Contains(msg, "no such host") ||
		strings.Contains(msg, "i/o timeout")
}

func isUsageError(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	indicators := []string{
		"unknown command",
		"unknown flag",
		"unknown shorthand flag",
		"flag needs an argument",
		"requires at least",
		"requires exactly",
		"accepts",
		"invalid argument",
		"must be",
		"is required",
		"requires --",
		"invalid --",
	}
	for _, indicator := range indicators {
		if strings.Contains(msg, indicator) {
			return true
		}
	}
	return false
}
