package cmd

import (
	"bufio"
	"fmt"
	"net/http"
	"strings"

	"github.com/spf13/cobra"

	"github.com/elasticinbox/elasticinbox-go/internal/dryrun"
	"github.com/elasticinbox/elasticinbox-go/internal/iocontext"
	"github.com/elasticinbox/elasticinbox-go/internal/validation"
)

func newBatchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "batch",
		Short: "Modify or delete many messages in one request",
		Long:  "Batch commands take message UUIDs as arguments, or - to read one UUID per line from stdin. Every UUID is checked before the request is sent.",
	}

	cmd.AddCommand(newBatchModifyCmd())
	cmd.AddCommand(newBatchDeleteCmd())

	return cmd
}

func newBatchModifyCmd() *cobra.Command {
	var mf modificationFlags

	cmd := &cobra.Command{
		Use:     "modify <uuid>... | -",
		Aliases: []string{"mod"},
		Short:   "Add or remove labels and markers on many messages",
		Example: "elasticinbox messages list inbox -o json --jq '.[]' | elasticinbox batch modify - --add-marker seen",
		Args:    cobra.MinimumNArgs(1),
		RunE: RunE(func(cmd *cobra.Command, args []string) error {
			ids, err := batchIDs(cmd, args)
			if err != nil {
				return err
			}
			s, domain, user, err := accountSession("")
			if err != nil {
				return err
			}
			mod, err := mf.build(cmd, s, domain, user)
			if err != nil {
				return err
			}
			resp, err := s.client.Batch().Modify(cmdContext(cmd), domain, user, ids, mod)
			if err != nil {
				return err
			}
			return reportAction(cmd, resp, "Modified", fmt.Sprintf("%d messages", len(ids)))
		}),
	}

	mf.register(cmd)
	return cmd
}

func newBatchDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "delete <uuid>... | -",
		Aliases: []string{"rm"},
		Short:   "Delete many messages",
		Args:    cobra.MinimumNArgs(1),
		RunE: RunE(func(cmd *cobra.Command, args []string) error {
			ids, err := batchIDs(cmd, args)
			if err != nil {
				return err
			}
			s, domain, user, err := accountSession("")
			if err != nil {
				return err
			}
			if err := validation.ValidateUUIDs(ids); err != nil {
				return err
			}
			if done, err := preview(cmd, dryrun.Preview{
				Operation: "delete",
				Resource:  fmt.Sprintf("%d messages", len(ids)),
				Method:    http.MethodDelete,
				Details:   map[string]string{"account": user + "@" + domain, "ids": strings.Join(ids, ",")},
			}); done {
				return err
			}
			resp, err := s.client.Batch().Delete(cmdContext(cmd), domain, user, ids)
			if err != nil {
				return err
			}
			return reportAction(cmd, resp, "Deleted", fmt.Sprintf("%d messages", len(ids)))
		}),
	}
}

// batchIDs returns args, or the non-empty lines of stdin when args is "-".
// Surrounding quotes are stripped so jq string output can be piped in.
func batchIDs(cmd *cobra.Command, args []string) ([]string, error) {
	if len(args) != 1 || args[0] != "-" {
		return args, nil
	}
	var ids []string
	scanner := bufio.NewScanner(iocontext.GetIO(cmd.Context()).In)
	for scanner.Scan() {
		line := strings.Trim(strings.TrimSpace(scanner.Text()), `"`)
		if line != "" {
			ids = append(ids, line)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read stdin: %w", err)
	}
	return ids, nil
}
