package cmd

import (
	"fmt"
	"net/http"
	"os"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/elasticinbox/elasticinbox-go/api"
	"github.com/elasticinbox/elasticinbox-go/internal/dryrun"
	"github.com/elasticinbox/elasticinbox-go/internal/iocontext"
	"github.com/elasticinbox/elasticinbox-go/internal/outfmt"
	"github.com/elasticinbox/elasticinbox-go/internal/validation"
)

const defaultUploadConcurrency = 4

func newMessagesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "messages",
		Aliases: []string{"message", "msg"},
		Short:   "Store, fetch and modify messages",
	}

	cmd.AddCommand(newMessagesListCmd())
	cmd.AddCommand(newMessagesGetCmd())
	cmd.AddCommand(newMessagesRawURLCmd())
	cmd.AddCommand(newMessagesPartCmd())
	cmd.AddCommand(newMessagesCreateCmd())
	cmd.AddCommand(newMessagesUpdateCmd())
	cmd.AddCommand(newMessagesModifyCmd())
	cmd.AddCommand(newMessagesDeleteCmd())

	return cmd
}

func newMessagesListCmd() *cobra.Command {
	var (
		metadata bool
		count    int
		start    string
		reverse  bool
	)

	cmd := &cobra.Command{
		Use:     "list <label>",
		Aliases: []string{"ls"},
		Short:   "List messages under a label",
		Long:    "List message UUIDs under a label, newest first. --reverse=false lists oldest first; --start continues after a previous page.",
		Example: `elasticinbox messages list inbox --count 10 --metadata
elasticinbox messages list 0 --count 50 --start 7a8e6d30-4dd7-11e2-8dd9-040ccee13a02`,
		Args: cobra.ExactArgs(1),
		RunE: RunE(func(cmd *cobra.Command, args []string) error {
			s, domain, user, err := accountSession("")
			if err != nil {
				return err
			}
			ctx := cmdContext(cmd)
			labelID, err := resolveLabel(ctx, s, domain, user, args[0], matchFuzzy)
			if err != nil {
				return err
			}

			opts := &api.ListOptions{Metadata: metadata, Count: count, Start: start}
			if cmd.Flags().Changed("reverse") {
				opts.Reverse = api.Bool(reverse)
			}
			resp, err := s.client.Messages().List(ctx, domain, user, labelID, opts)
			if err != nil {
				return err
			}

			f := newFormatter(cmd)
			if !metadata {
				ids, err := api.ParseMessageIDs(resp)
				if err != nil {
					return err
				}
				if handled, err := f.Output(ids); handled {
					return err
				}
				if len(ids) == 0 {
					f.Empty("No messages found")
					return nil
				}
				for _, id := range ids {
					f.Println(id)
				}
				return nil
			}

			messages, err := api.ParseMessages(resp)
			if err != nil {
				return err
			}
			list := sortedMessages(messages, reverse)
			if handled, err := f.Output(list); handled {
				return err
			}
			if len(list) == 0 {
				f.Empty("No messages found")
				return nil
			}
			f.StartTable("ID", "DATE", "FROM", "SUBJECT", "MARKERS")
			for _, m := range list {
				f.Row(m.ID, m.Date, firstAddress(m.From), m.Subject, strings.Join(m.Markers, ","))
			}
			return f.EndTable()
		}),
	}

	cmd.Flags().BoolVarP(&metadata, "metadata", "m", false, "Include message headers and markers")
	cmd.Flags().IntVarP(&count, "count", "n", 0, "Maximum number of messages to return")
	cmd.Flags().StringVar(&start, "start", "", "Message UUID to continue from (requires --count)")
	cmd.Flags().BoolVar(&reverse, "reverse", true, "Newest first; --reverse=false lists oldest first")
	return cmd
}

// sortedMessages flattens a metadata listing, ordered by date.
func sortedMessages(messages map[string]api.Message, newestFirst bool) []api.Message {
	list := make([]api.Message, 0, len(messages))
	for _, m := range messages {
		list = append(list, m)
	}
	sort.SliceStable(list, func(i, j int) bool {
		if list[i].Date == list[j].Date {
			return list[i].ID < list[j].ID
		}
		if newestFirst {
			return list[i].Date > list[j].Date
		}
		return list[i].Date < list[j].Date
	})
	return list
}

func firstAddress(list []api.Address) string {
	if len(list) == 0 {
		return ""
	}
	return list[0].String()
}

func newMessagesGetCmd() *cobra.Command {
	var (
		opts  api.GetOptions
		label string
	)

	cmd := &cobra.Command{
		Use:     "get <uuid>",
		Aliases: []string{"show"},
		Short:   "Fetch a message",
		Example: `elasticinbox messages get 7a8e6d30-4dd7-11e2-8dd9-040ccee13a02 --mark-seen
elasticinbox messages get 7a8e6d30-4dd7-11e2-8dd9-040ccee13a02 --raw > message.eml`,
		Args: cobra.ExactArgs(1),
		RunE: RunE(func(cmd *cobra.Command, args []string) error {
			s, domain, user, err := accountSession("")
			if err != nil {
				return err
			}
			ctx := cmdContext(cmd)
			if label != "" {
				if opts.Label, err = resolveLabel(ctx, s, domain, user, label, matchFuzzy); err != nil {
					return err
				}
			}
			resp, err := s.client.Messages().Get(ctx, domain, user, args[0], &opts)
			if err != nil {
				return err
			}
			if opts.Raw || opts.Adjacent {
				return printResponse(cmd, resp)
			}

			var m api.Message
			if err := resp.Decode(&m); err != nil {
				return printResponse(cmd, resp)
			}
			m.ID = args[0]
			f := newFormatter(cmd)
			if handled, err := f.Output(resp.Data); handled {
				return err
			}
			printMessage(f, m)
			return f.EndTable()
		}),
	}

	cmd.Flags().BoolVar(&opts.Raw, "raw", false, "Print the original message source")
	cmd.Flags().BoolVar(&opts.Adjacent, "adjacent", false, "Return the neighbouring message ids instead (requires --label)")
	cmd.Flags().StringVarP(&label, "label", "l", "", "Label to look up neighbours in")
	cmd.Flags().BoolVar(&opts.MarkSeen, "mark-seen", false, "Mark the message as seen")
	cmd.Flags().BoolVar(&opts.Deflate, "deflate", false, "Ask the server for a deflate-compressed response")
	return cmd
}

func printMessage(f *outfmt.Formatter, m api.Message) {
	f.Row("ID", m.ID)
	f.Row("DATE", m.Date)
	f.Row("FROM", joinAddresses(m.From))
	f.Row("TO", joinAddresses(m.To))
	if len(m.Cc) > 0 {
		f.Row("CC", joinAddresses(m.Cc))
	}
	f.Row("SUBJECT", m.Subject)
	if m.MessageID != "" {
		f.Row("MESSAGE-ID", m.MessageID)
	}
	f.Row("SIZE", strconv.FormatInt(m.Size, 10))
	labels := make([]string, len(m.Labels))
	for i, l := range m.Labels {
		labels[i] = strconv.Itoa(l)
	}
	f.Row("LABELS", strings.Join(labels, ","))
	f.Row("MARKERS", strings.Join(m.Markers, ","))
	if len(m.Parts) > 0 {
		ids := make([]string, 0, len(m.Parts))
		for id := range m.Parts {
			ids = append(ids, id)
		}
		sort.Strings(ids)
		for _, id := range ids {
			p := m.Parts[id]
			desc := p.MimeType
			if p.FileName != "" {
				desc += " " + p.FileName
			}
			f.Row("PART "+id, desc)
		}
	}
}

func joinAddresses(list []api.Address) string {
	parts := make([]string, len(list))
	for i, a := range list {
		parts[i] = a.String()
	}
	return strings.Join(parts, ", ")
}

func newMessagesRawURLCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "raw-url <uuid>",
		Aliases: []string{"url"},
		Short:   "Print the direct download URL of the message source",
		Args:    cobra.ExactArgs(1),
		RunE: RunE(func(cmd *cobra.Command, args []string) error {
			s, domain, user, err := accountSession("")
			if err != nil {
				return err
			}
			resp, err := s.client.Messages().GetRawURI(cmdContext(cmd), domain, user, args[0])
			if err != nil {
				return err
			}
			f := newFormatter(cmd)
			if handled, err := f.Output(map[string]string{"id": args[0], "url": resp.Location()}); handled {
				return err
			}
			f.Println(resp.Location())
			return nil
		}),
	}
}

func newMessagesPartCmd() *cobra.Command {
	var (
		contentID string
		outFile   string
	)

	cmd := &cobra.Command{
		Use:   "part <uuid> [part-id]",
		Short: "Download one MIME part of a message",
		Example: `elasticinbox messages part 7a8e6d30-4dd7-11e2-8dd9-040ccee13a02 2 -O report.pdf
elasticinbox messages part 7a8e6d30-4dd7-11e2-8dd9-040ccee13a02 --cid logo@example.com`,
		Args: cobra.RangeArgs(1, 2),
		RunE: RunE(func(cmd *cobra.Command, args []string) error {
			if (len(args) == 2) == (contentID != "") {
				return fmt.Errorf("exactly one of part-id or --cid is required")
			}
			s, domain, user, err := accountSession("")
			if err != nil {
				return err
			}
			ctx := cmdContext(cmd)
			var resp *api.Response
			if contentID != "" {
				resp, err = s.client.Messages().GetPartByContentID(ctx, domain, user, args[0], contentID)
			} else {
				resp, err = s.client.Messages().GetPartByID(ctx, domain, user, args[0], args[1])
			}
			if err != nil {
				return err
			}
			if outFile == "" {
				_, err := iocontext.GetIO(ctx).Out.Write(resp.Body)
				return err
			}
			if err := os.WriteFile(outFile, resp.Body, 0o600); err != nil {
				return fmt.Errorf("failed to write %q: %w", outFile, err)
			}
			printAction(cmd, "Wrote %d bytes to %s", len(resp.Body), outFile)
			return nil
		}),
	}

	cmd.Flags().StringVar(&contentID, "cid", "", "Select the part by Content-ID instead of part id")
	cmd.Flags().StringVarP(&outFile, "output-file", "O", "", "Write the part to a file instead of stdout")
	return cmd
}

// uploadResult is one row of a messages create run.
type uploadResult struct {
	Source string `json:"source"`
	ID     string `json:"id,omitempty"`
	envelope
	Error string `json:"error,omitempty"`
}

func newMessagesCreateCmd() *cobra.Command {
	var (
		labels      []string
		markers     []string
		concurrency int
	)

	cmd := &cobra.Command{
		Use:     "create <file>...",
		Aliases: []string{"add", "store"},
		Short:   "Store RFC 5322 messages in the mailbox",
		Long:    "Store one or more message files. Use - to read a single message from stdin.",
		Example: `elasticinbox messages create welcome.eml --label inbox --marker seen
cat mail.eml | elasticinbox messages create -`,
		Args: cobra.MinimumNArgs(1),
		RunE: RunE(func(cmd *cobra.Command, args []string) error {
			if concurrency < 1 {
				return fmt.Errorf("--concurrency must be >= 1")
			}
			s, domain, user, err := accountSession("")
			if err != nil {
				return err
			}
			ctx := cmdContext(cmd)
			labelIDs, err := resolveLabels(ctx, s, domain, user, labels, matchFuzzy)
			if err != nil {
				return err
			}

			// Read and check every source before uploading anything.
			contents := make([][]byte, len(args))
			results := make([]uploadResult, len(args))
			for i, src := range args {
				data, err := readSource(cmd, src)
				if err != nil {
					return err
				}
				env, err := inspectMessage(data)
				if err != nil {
					return fmt.Errorf("%s: %w", src, err)
				}
				contents[i] = data
				results[i] = uploadResult{Source: src, envelope: env}
			}

			opts := &api.CreateOptions{Labels: labelIDs, Markers: markers}
			var mu sync.Mutex
			failed := 0
			g, gctx := errgroup.WithContext(ctx)
			g.SetLimit(concurrency)
			for i := range args {
				i := i
				g.Go(func() error {
					resp, err := s.client.Messages().Create(gctx, domain, user, contents[i], opts)
					if err != nil {
						mu.Lock()
						results[i].Error = err.Error()
						failed++
						mu.Unlock()
						// Validation failures apply to every upload; stop early.
						if api.IsValidationError(err) {
							return err
						}
						return nil
					}
					var ref api.MessageRef
					if err := resp.Decode(&ref); err == nil {
						results[i].ID = ref.ID
					}
					return nil
				})
			}
			if err := g.Wait(); err != nil {
				return err
			}

			if err := printUploads(cmd, results); err != nil {
				return err
			}
			if failed > 0 {
				return fmt.Errorf("%d of %d messages failed to store", failed, len(args))
			}
			return nil
		}),
	}

	cmd.Flags().StringSliceVarP(&labels, "label", "l", nil, "Label id or name to file the message under (repeatable)")
	cmd.Flags().StringSliceVar(&markers, "marker", nil, "Marker to set, e.g. seen (repeatable)")
	cmd.Flags().IntVar(&concurrency, "concurrency", defaultUploadConcurrency, "Parallel uploads")
	return cmd
}

func printUploads(cmd *cobra.Command, results []uploadResult) error {
	f := newFormatter(cmd)
	if handled, err := f.Output(results); handled {
		return err
	}
	f.StartTable("SOURCE", "ID", "SUBJECT", "STATUS")
	for _, r := range results {
		status := "stored"
		if r.Error != "" {
			status = r.Error
		}
		f.Row(r.Source, r.ID, r.Subject, status)
	}
	return f.EndTable()
}

func newMessagesUpdateCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "update <uuid> <file>",
		Aliases: []string{"replace"},
		Short:   "Replace the content of a stored message",
		Long:    "Store new content for a message, keeping its labels and markers. The server assigns a new UUID.",
		Args:    cobra.ExactArgs(2),
		RunE: RunE(func(cmd *cobra.Command, args []string) error {
			data, err := readSource(cmd, args[1])
			if err != nil {
				return err
			}
			if _, err := inspectMessage(data); err != nil {
				return fmt.Errorf("%s: %w", args[1], err)
			}
			s, domain, user, err := accountSession("")
			if err != nil {
				return err
			}
			resp, err := s.client.Messages().Update(cmdContext(cmd), domain, user, args[0], data)
			if err != nil {
				return err
			}
			return reportAction(cmd, resp, "Updated", "message "+args[0])
		}),
	}
}

// modificationFlags registers the label/marker add/remove flags shared by
// messages modify and batch modify.
type modificationFlags struct {
	addLabels, removeLabels   []string
	addMarkers, removeMarkers []string
}

func (m *modificationFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringSliceVar(&m.addLabels, "add-label", nil, "Label id or name to add (repeatable)")
	cmd.Flags().StringSliceVar(&m.removeLabels, "remove-label", nil, "Label id or name to remove (repeatable)")
	cmd.Flags().StringSliceVar(&m.addMarkers, "add-marker", nil, "Marker to add (repeatable)")
	cmd.Flags().StringSliceVar(&m.removeMarkers, "remove-marker", nil, "Marker to remove (repeatable)")
}

func (m *modificationFlags) build(cmd *cobra.Command, s *session, domain, user string) (api.Modification, error) {
	ctx := cmdContext(cmd)
	add, err := resolveLabels(ctx, s, domain, user, m.addLabels, matchFuzzy)
	if err != nil {
		return api.Modification{}, err
	}
	remove, err := resolveLabels(ctx, s, domain, user, m.removeLabels, matchFuzzy)
	if err != nil {
		return api.Modification{}, err
	}
	return api.Modification{
		AddLabels:     add,
		RemoveLabels:  remove,
		AddMarkers:    m.addMarkers,
		RemoveMarkers: m.removeMarkers,
	}, nil
}

func newMessagesModifyCmd() *cobra.Command {
	var mf modificationFlags

	cmd := &cobra.Command{
		Use:     "modify <uuid>",
		Aliases: []string{"mod"},
		Short:   "Add or remove labels and markers on a message",
		Example: "elasticinbox messages modify 7a8e6d30-4dd7-11e2-8dd9-040ccee13a02 --add-marker seen --remove-label inbox",
		Args:    cobra.ExactArgs(1),
		RunE: RunE(func(cmd *cobra.Command, args []string) error {
			s, domain, user, err := accountSession("")
			if err != nil {
				return err
			}
			mod, err := mf.build(cmd, s, domain, user)
			if err != nil {
				return err
			}
			resp, err := s.client.Messages().Modify(cmdContext(cmd), domain, user, args[0], mod)
			if err != nil {
				return err
			}
			return reportAction(cmd, resp, "Modified", "message "+args[0])
		}),
	}

	mf.register(cmd)
	return cmd
}

func newMessagesDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "delete <uuid>",
		Aliases: []string{"rm"},
		Short:   "Delete a message",
		Args:    cobra.ExactArgs(1),
		RunE: RunE(func(cmd *cobra.Command, args []string) error {
			s, domain, user, err := accountSession("")
			if err != nil {
				return err
			}
			if err := validation.ValidateUUID(args[0]); err != nil {
				return err
			}
			if done, err := preview(cmd, dryrun.Preview{
				Operation: "delete",
				Resource:  "message " + args[0],
				Method:    http.MethodDelete,
				Details:   map[string]string{"account": user + "@" + domain},
			}); done {
				return err
			}
			resp, err := s.client.Messages().Delete(cmdContext(cmd), domain, user, args[0])
			if err != nil {
				return err
			}
			return reportAction(cmd, resp, "Deleted", "message "+args[0])
		}),
	}
}
