package cmd

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/elasticinbox/elasticinbox-go/api"
	"github.com/elasticinbox/elasticinbox-go/internal/cache"
	"github.com/elasticinbox/elasticinbox-go/internal/dryrun"
	"github.com/elasticinbox/elasticinbox-go/internal/resolve"
)

func newLabelsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "labels",
		Aliases: []string{"label", "lb"},
		Short:   "Manage mailbox labels",
		Long:    "Labels are addressed by numeric id or by name. Names are matched case-insensitively, then fuzzily; rename and delete accept exact names only.",
	}

	cmd.AddCommand(newLabelsListCmd())
	cmd.AddCommand(newLabelsCreateCmd())
	cmd.AddCommand(newLabelsRenameCmd())
	cmd.AddCommand(newLabelsDeleteCmd())

	return cmd
}

func newLabelsListCmd() *cobra.Command {
	var metadata bool

	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List labels",
		Example: "elasticinbox labels list --metadata -o json",
		Args:    cobra.NoArgs,
		RunE: RunE(func(cmd *cobra.Command, _ []string) error {
			s, domain, user, err := accountSession("")
			if err != nil {
				return err
			}
			resp, err := s.client.Labels().List(cmdContext(cmd), domain, user, metadata)
			if err != nil {
				return err
			}
			labels, err := api.ParseLabels(resp)
			if err != nil {
				return err
			}
			if store := s.labelCache(domain, user); store != nil {
				store.Put(toResolveLabels(labels))
			}

			f := newFormatter(cmd)
			if handled, err := f.Output(labels); handled {
				return err
			}
			if len(labels) == 0 {
				f.Empty("No labels found")
				return nil
			}
			if metadata {
				f.StartTable("ID", "NAME", "TOTAL", "NEW", "SIZE")
				for _, l := range labels {
					f.Row(strconv.Itoa(l.ID), l.Name, strconv.FormatInt(l.Total, 10), strconv.FormatInt(l.New, 10), strconv.FormatInt(l.Size, 10))
				}
			} else {
				f.StartTable("ID", "NAME")
				for _, l := range labels {
					f.Row(strconv.Itoa(l.ID), l.Name)
				}
			}
			return f.EndTable()
		}),
	}

	cmd.Flags().BoolVarP(&metadata, "metadata", "m", false, "Include message counts and sizes")
	return cmd
}

func newLabelsCreateCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "create <name>",
		Aliases: []string{"add", "new"},
		Short:   "Create a label",
		Example: "elasticinbox labels create Receipts",
		Args:    cobra.ExactArgs(1),
		RunE: RunE(func(cmd *cobra.Command, args []string) error {
			s, domain, user, err := accountSession("")
			if err != nil {
				return err
			}
			resp, err := s.client.Labels().Create(cmdContext(cmd), domain, user, args[0])
			if err != nil {
				return err
			}
			s.forgetLabels(domain, user)
			return reportAction(cmd, resp, "Created", "label "+args[0])
		}),
	}
}

func newLabelsRenameCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "rename <label> <new-name>",
		Aliases: []string{"mv"},
		Short:   "Rename a label",
		Example: "elasticinbox labels rename Receipts Invoices",
		Args:    cobra.ExactArgs(2),
		RunE: RunE(func(cmd *cobra.Command, args []string) error {
			s, domain, user, err := accountSession("")
			if err != nil {
				return err
			}
			ctx := cmdContext(cmd)
			id, err := resolveLabel(ctx, s, domain, user, args[0], matchExact)
			if err != nil {
				return err
			}
			resp, err := s.client.Labels().Rename(ctx, domain, user, id, args[1])
			if err != nil {
				return err
			}
			s.forgetLabels(domain, user)
			return reportAction(cmd, resp, "Renamed", "label "+id+" to "+args[1])
		}),
	}
}

func newLabelsDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "delete <label>",
		Aliases: []string{"rm"},
		Short:   "Delete a label",
		Args:    cobra.ExactArgs(1),
		RunE: RunE(func(cmd *cobra.Command, args []string) error {
			s, domain, user, err := accountSession("")
			if err != nil {
				return err
			}
			ctx := cmdContext(cmd)
			id, err := resolveLabel(ctx, s, domain, user, args[0], matchExact)
			if err != nil {
				return err
			}
			if done, err := preview(cmd, dryrun.Preview{
				Operation: "delete",
				Resource:  "label " + id,
				Method:    http.MethodDelete,
				Details:   map[string]string{"account": user + "@" + domain},
			}); done {
				return err
			}
			resp, err := s.client.Labels().Delete(ctx, domain, user, id)
			if err != nil {
				return err
			}
			s.forgetLabels(domain, user)
			return reportAction(cmd, resp, "Deleted", "label "+id)
		}),
	}
}

// labelMatch selects how label names given on the command line are matched.
type labelMatch int

const (
	// matchFuzzy accepts the best fuzzy match. Cached names are only trusted
	// for ids and exact names.
	matchFuzzy labelMatch = iota
	// matchExact requires an id or an exact name and always re-lists the
	// labels. Commands that rename or delete a label use it.
	matchExact
)

// resolveLabel returns ref unchanged when it is already an id, otherwise it
// matches ref against the mailbox label names.
func resolveLabel(ctx context.Context, s *session, domain, user, ref string, mode labelMatch) (string, error) {
	ids, err := resolveLabels(ctx, s, domain, user, []string{ref}, mode)
	if err != nil {
		return "", err
	}
	return ids[0], nil
}

// resolveLabels resolves refs to label ids. With matchFuzzy the cached label
// map is tried first; anything short of an exact match there falls back to a
// fresh listing.
func resolveLabels(ctx context.Context, s *session, domain, user string, refs []string, mode labelMatch) ([]string, error) {
	needsLookup := false
	for _, ref := range refs {
		if !resolve.IsID(ref) {
			needsLookup = true
			break
		}
	}
	if !needsLookup {
		return refs, nil
	}

	store := s.labelCache(domain, user)
	var cached []resolve.Label
	if mode == matchFuzzy && store != nil && store.Get(&cached) {
		if ids, err := resolve.ExactLabelIDs(refs, cached); err == nil {
			return ids, nil
		}
	}

	resp, err := s.client.Labels().List(ctx, domain, user, false)
	if err != nil {
		return nil, err
	}
	parsed, err := api.ParseLabels(resp)
	if err != nil {
		return nil, err
	}
	labels := toResolveLabels(parsed)
	if store != nil {
		store.Put(labels)
	}
	if mode == matchExact {
		return resolve.ExactLabelIDs(refs, labels)
	}
	return resolve.LabelIDs(refs, labels)
}

func toResolveLabels(parsed []api.Label) []resolve.Label {
	labels := make([]resolve.Label, 0, len(parsed))
	for _, l := range parsed {
		labels = append(labels, resolve.Label{ID: l.ID, Name: l.Name})
	}
	return labels
}

// labelCache returns the label map cache for the account, or nil when no
// cache directory is available.
func (s *session) labelCache(domain, user string) *cache.Store {
	dir, err := cache.DefaultDir()
	if err != nil {
		return nil
	}
	return cache.NewStore(dir, "labels", s.serverKey(), user+"@"+domain)
}

func (s *session) serverKey() string {
	p := s.profile
	return fmt.Sprintf("%s://%s%s", p.Scheme, hostPort(p), p.Path)
}

func (s *session) forgetLabels(domain, user string) {
	if store := s.labelCache(domain, user); store != nil {
		store.Clear()
	}
}
