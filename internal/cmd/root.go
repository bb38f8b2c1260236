package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/elasticinbox/elasticinbox-go/api"
	"github.com/elasticinbox/elasticinbox-go/internal/config"
	"github.com/elasticinbox/elasticinbox-go/internal/debug"
	"github.com/elasticinbox/elasticinbox-go/internal/dryrun"
	"github.com/elasticinbox/elasticinbox-go/internal/iocontext"
	"github.com/elasticinbox/elasticinbox-go/internal/outfmt"
)

// rootFlags holds global CLI flags
type rootFlags struct {
	Output  string
	Query   string
	Compact bool
	Debug   bool
	Quiet   bool
	DryRun  bool
	Timeout time.Duration
	Headers []string

	Profile string
	Host    string
	Port    int
	Scheme  string
	Path    string
	Account string
}

// flags holds the global command flags. It is reset at the start of every
// Execute call; code reading it outside a command's RunE sees stale values.
var flags = defaultFlags()

func defaultFlags() rootFlags {
	return rootFlags{
		Output:  defaultOutput(),
		Timeout: api.DefaultTimeout,
	}
}

func defaultOutput() string {
	value := strings.TrimSpace(os.Getenv("ELASTICINBOX_OUTPUT"))
	if value != "" {
		return value
	}
	return "text"
}

// loadEnvFile loads .env from the config directory when present. Variables
// already set in the environment are not overwritten.
func loadEnvFile() {
	path := filepath.Join(config.ConfigDir(), ".env")
	if _, err := os.Stat(path); err != nil {
		return
	}
	_ = godotenv.Load(path)
}

// Execute runs the root command
func Execute(ctx context.Context, args []string) error {
	loadEnvFile()

	flags = defaultFlags()

	root := &cobra.Command{
		Use:           "elasticinbox",
		Short:         "CLI for the ElasticInbox mailbox REST API",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			// --jq implies JSON unless the user asked for something else.
			if flags.Query != "" && !cmd.Flags().Changed("output") {
				flags.Output = "json"
			}
			mode, err := outfmt.Parse(strings.TrimSpace(flags.Output))
			if err != nil {
				return err
			}
			if flags.Query != "" {
				if mode == outfmt.Text {
					return fmt.Errorf("--jq requires --output json or jsonl")
				}
				if err := outfmt.ValidateQuery(flags.Query); err != nil {
					return err
				}
				ctx = outfmt.WithQuery(ctx, flags.Query)
			}
			ctx = outfmt.WithMode(ctx, mode)
			ctx = outfmt.WithCompact(ctx, flags.Compact)

			streams := *iocontext.GetIO(ctx)
			if flags.Quiet {
				streams.ErrOut = io.Discard
			}
			ctx = iocontext.WithIO(ctx, &streams)
			cmd.SetOut(streams.Out)
			cmd.SetErr(streams.ErrOut)

			debug.SetupLogger(flags.Debug)
			ctx = debug.WithDebug(ctx, flags.Debug)
			ctx = dryrun.WithDryRun(ctx, flags.DryRun)

			if flags.Timeout < 0 {
				return fmt.Errorf("--timeout must be >= 0")
			}

			cmd.SetContext(ctx)
			return nil
		},
	}

	root.SetContext(ctx)
	root.SetArgs(args)
	streams := iocontext.GetIO(ctx)
	root.SetOut(streams.Out)
	root.SetErr(streams.ErrOut)
	root.SetIn(streams.In)

	pf := root.PersistentFlags()
	pf.StringVarP(&flags.Output, "output", "o", flags.Output, "Output format: text|json|jsonl|ndjson (env ELASTICINBOX_OUTPUT)")
	pf.StringVarP(&flags.Query, "jq", "q", "", "JQ expression to filter JSON output")
	pf.BoolVar(&flags.Compact, "compact", false, "Compact JSON output (no indentation)")
	pf.BoolVar(&flags.Debug, "debug", false, "Log every request and response to stderr")
	pf.BoolVarP(&flags.Quiet, "quiet", "Q", false, "Suppress non-essential output")
	pf.BoolVar(&flags.DryRun, "dry-run", false, "Show what destructive commands would do without sending them")
	pf.DurationVar(&flags.Timeout, "timeout", flags.Timeout, "HTTP request timeout (e.g., 30s, 2m); 0 disables it")
	pf.StringArrayVarP(&flags.Headers, "header", "H", nil, "Extra request header as 'Name: value' (repeatable)")
	pf.StringVarP(&flags.Profile, "profile", "p", "", "Connection profile to use (env ELASTICINBOX_PROFILE)")
	pf.StringVar(&flags.Host, "host", "", "Server host (env ELASTICINBOX_HOST)")
	pf.IntVar(&flags.Port, "port", 0, "Server port (env ELASTICINBOX_PORT)")
	pf.StringVar(&flags.Scheme, "scheme", "", "URL scheme, http or https (env ELASTICINBOX_SCHEME)")
	pf.StringVar(&flags.Path, "path", "", "Path the REST API is mounted under (env ELASTICINBOX_PATH)")
	pf.StringVarP(&flags.Account, "account", "a", "", "Mailbox account as user@domain (env ELASTICINBOX_ACCOUNT)")

	root.AddCommand(newProfileCmd())
	root.AddCommand(newAccountCmd())
	root.AddCommand(newLabelsCmd())
	root.AddCommand(newMailboxCmd())
	root.AddCommand(newMessagesCmd())
	root.AddCommand(newBatchCmd())
	root.AddCommand(newCacheCmd())
	root.AddCommand(newVersionCmd())

	if err := root.Execute(); err != nil {
		if !isHandled(err) {
			_, _ = fmt.Fprintln(root.ErrOrStderr(), err)
		}
		return err
	}
	return nil
}
