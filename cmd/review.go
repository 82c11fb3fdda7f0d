package cmd

import (
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"timecard/access"
	"timecard/workflow"
)

var (
	reviewComment string
	reviewListAll bool
)

var reviewCmd = &cobra.Command{
	Use:   "review",
	Short: "Review pending timesheet entries (manager only)",
	Long: `List pending entries and approve or reject them with a comment.

Approval is terminal: an approved entry cannot change status again. A
rejected entry keeps the comment and can be resubmitted by its owner.`,
	Example: `
  timecard --as frank --role manager review list
  timecard --as frank --role manager review list --all
  timecard --as frank --role manager review approve 1 --comment "looks good"
  timecard --as frank --role manager review reject 2 --comment "missing approval"
`,
}

var reviewListCmd = &cobra.Command{
	Use:   "list",
	Short: "List pending entries (or all entries with --all)",
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openStore()
		if err != nil {
			return err
		}
		defer store.Close()

		actor, err := resolveActor(store)
		if err != nil {
			return err
		}

		flow := workflow.New(store)
		list := flow.ListPending
		if reviewListAll {
			list = flow.ListAll
		}
		entries, err := list(actor)
		if err != nil {
			return err
		}
		printEntryTable(os.Stdout, entries)
		return nil
	},
}

var reviewApproveCmd = &cobra.Command{
	Use:   "approve <id>",
	Short: "Approve a pending entry",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runReview(args[0], "approved", func(flow *workflow.Service, actor access.Identity, id int64) error {
			return flow.Approve(actor, id, reviewComment)
		})
	},
}

var reviewRejectCmd = &cobra.Command{
	Use:   "reject <id>",
	Short: "Reject a pending entry",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runReview(args[0], "rejected", func(flow *workflow.Service, actor access.Identity, id int64) error {
			return flow.Reject(actor, id, reviewComment)
		})
	},
}

func runReview(idArg, verb string, review func(*workflow.Service, access.Identity, int64) error) error {
	id, err := strconv.ParseInt(idArg, 10, 64)
	if err != nil {
		return fmt.Errorf("invalid entry id %q", idArg)
	}

	store, err := openStore()
	if err != nil {
		return err
	}
	defer store.Close()

	actor, err := resolveActor(store)
	if err != nil {
		return err
	}

	if err := review(workflow.New(store), actor, id); err != nil {
		return err
	}
	fmt.Printf("Entry %d %s\n", id, verb)
	return nil
}

func init() {
	rootCmd.AddCommand(reviewCmd)
	reviewCmd.AddCommand(reviewListCmd)
	reviewCmd.AddCommand(reviewApproveCmd)
	reviewCmd.AddCommand(reviewRejectCmd)

	reviewListCmd.Flags().BoolVar(&reviewListAll, "all", false, "List entries in every status, not only pending")
	reviewApproveCmd.Flags().StringVar(&reviewComment, "comment", "", "Reviewer comment to attach")
	reviewRejectCmd.Flags().StringVar(&reviewComment, "comment", "", "Reviewer comment to attach")
}
