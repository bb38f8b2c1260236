package cmd

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/elasticinbox/elasticinbox-go/api"
	"github.com/elasticinbox/elasticinbox-go/internal/config"
	"github.com/elasticinbox/elasticinbox-go/internal/dryrun"
	"github.com/elasticinbox/elasticinbox-go/internal/iocontext"
	"github.com/elasticinbox/elasticinbox-go/internal/outfmt"
)

func cmdContext(cmd *cobra.Command) context.Context {
	return cmd.Context()
}

func isJSON(cmd *cobra.Command) bool {
	return outfmt.IsJSON(cmd.Context())
}

func newFormatter(cmd *cobra.Command) *outfmt.Formatter {
	streams := iocontext.GetIO(cmd.Context())
	return outfmt.NewFormatter(cmd.Context(), streams.Out, streams.ErrOut)
}

// printAction reports a completed mutation. Nothing is printed in JSON modes
// or with --quiet.
func printAction(cmd *cobra.Command, format string, args ...any) {
	if flags.Quiet || isJSON(cmd) {
		return
	}
	_, _ = fmt.Fprintf(iocontext.GetIO(cmd.Context()).Out, format+"\n", args...)
}

func overrides() config.Overrides {
	return config.Overrides{
		Profile: flags.Profile,
		Host:    flags.Host,
		Port:    flags.Port,
		Scheme:  flags.Scheme,
		Path:    flags.Path,
		Account: flags.Account,
	}
}

// session is a client together with the account the command operates on.
type session struct {
	client  *api.Client
	profile config.Profile
}

// newClient builds a client from the resolved profile. It is a variable so
// tests can swap the transport.
var newClient = func(p config.Profile) (*api.Client, error) {
	opts := p.Options()
	opts.Debug = flags.Debug
	opts.Logger = slog.Default()

	header, err := parseHeaders(flags.Headers)
	if err != nil {
		return nil, err
	}
	header.Set("User-Agent", "elasticinbox-go/"+version)
	opts.Header = header

	client, err := api.New(opts)
	if err != nil {
		return nil, err
	}
	client.HTTP.Timeout = flags.Timeout
	return client, nil
}

func getSession() (*session, error) {
	p, err := config.Resolve(overrides())
	if err != nil {
		return nil, err
	}
	client, err := newClient(p)
	if err != nil {
		return nil, err
	}
	return &session{client: client, profile: p}, nil
}

// account returns the domain and user of the account the command targets.
func (s *session) account() (domain, user string, err error) {
	if strings.TrimSpace(s.profile.Account) == "" {
		return "", "", fmt.Errorf("account is required (use --account user@domain or set ELASTICINBOX_ACCOUNT)")
	}
	return config.SplitAccount(s.profile.Account)
}

func parseHeaders(values []string) (http.Header, error) {
	header := http.Header{}
	for _, v := range values {
		name, value, ok := strings.Cut(v, ":")
		name = strings.TrimSpace(name)
		if !ok || name == "" {
			return nil, fmt.Errorf("invalid --header %q: must be 'Name: value'", v)
		}
		header.Add(name, strings.TrimSpace(value))
	}
	return header, nil
}

// readSource reads a message file, or stdin when path is "-".
func readSource(cmd *cobra.Command, path string) ([]byte, error) {
	if path == "-" {
		data, err := io.ReadAll(iocontext.GetIO(cmd.Context()).In)
		if err != nil {
			return nil, fmt.Errorf("failed to read stdin: %w", err)
		}
		return data, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %q: %w", path, err)
	}
	return data, nil
}

// printResponse writes the parsed response data in JSON modes, or the raw
// body in text mode.
func printResponse(cmd *cobra.Command, resp *api.Response) error {
	if resp == nil {
		return nil
	}
	f := newFormatter(cmd)
	if handled, err := f.Output(resp.Data); handled {
		return err
	}
	out := iocontext.GetIO(cmd.Context()).Out
	_, err := out.Write(resp.Body)
	if err == nil && len(resp.Body) > 0 && resp.Body[len(resp.Body)-1] != '\n' {
		_, err = fmt.Fprintln(out)
	}
	return err
}

// accountSession resolves the client and target account. An explicit
// account argument wins over --account and the profile default.
func accountSession(explicit string) (*session, string, string, error) {
	s, err := getSession()
	if err != nil {
		return nil, "", "", err
	}
	if explicit != "" {
		s.profile.Account = explicit
	}
	domain, user, err := s.account()
	if err != nil {
		return nil, "", "", err
	}
	return s, domain, user, nil
}

// preview reports p instead of running a destructive command when --dry-run
// is set. It returns false when the command should go ahead.
func preview(cmd *cobra.Command, p dryrun.Preview) (bool, error) {
	if !dryrun.IsEnabled(cmdContext(cmd)) {
		return false, nil
	}
	p.DryRun = true
	if handled, err := newFormatter(cmd).Output(p); handled {
		return true, err
	}
	p.Write(cmd.OutOrStdout())
	return true, nil
}

// actionResult is the JSON form of a completed mutation.
type actionResult struct {
	Action   string `json:"action"`
	Target   string `json:"target"`
	Status   int    `json:"status"`
	Location string `json:"location,omitempty"`
	Data     any    `json:"data,omitempty"`
}

// reportAction prints "<Action> <target>" in text mode, or an actionResult
// in JSON modes.
func reportAction(cmd *cobra.Command, resp *api.Response, action, target string) error {
	result := actionResult{Action: strings.ToLower(action), Target: target}
	if resp != nil {
		result.Status = resp.StatusCode
		result.Location = resp.Location()
		result.Data = resp.Data
	}
	if handled, err := newFormatter(cmd).Output(result); handled {
		return err
	}
	printAction(cmd, "%s %s", action, target)
	return nil
}
