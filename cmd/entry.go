package cmd

import (
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"timecard/internal/timeutil"
	"timecard/timesheet"
	"timecard/workflow"
)

var (
	entryListStatus  string
	entryEditProject string
	entryEditDate    string
	entryEditHours   float64
)

var entryCmd = &cobra.Command{
	Use:   "entry",
	Short: "Submit and manage your own timesheet entries",
	Long: `Create, list, edit, delete, and resubmit your own timesheet entries.

Every subcommand acts as the identity given with --as/--role. Entries are
created pending; a rejected entry can be resubmitted with new hours, which
returns it to pending while keeping the manager's comment attached.`,
	Example: `
  timecard --as alice --role user entry add ENG 2024-01-05 8.0
  timecard --as alice --role user entry list
  timecard --as alice --role user entry list --status rejected
  timecard --as alice --role user entry edit 3 --project OPS --date 2024-01-06 --hours 7.5
  timecard --as alice --role user entry resubmit 3 6.0
  timecard --as alice --role user entry rm 3
`,
}

var entryAddCmd = &cobra.Command{
	Use:   "add <project-code> <date> <hours>",
	Short: "Submit a new pending entry",
	Args:  cobra.ExactArgs(3),
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

		projectCode, err := store.GetProjectCodeByCode(args[0])
		if err != nil {
			return err
		}
		date, err := timeutil.ParseDay(args[1])
		if err != nil {
			return fmt.Errorf("invalid date %q (want %s)", args[1], timeutil.DayLayout)
		}
		hours, err := strconv.ParseFloat(args[2], 64)
		if err != nil {
			return fmt.Errorf("invalid hours %q", args[2])
		}

		flow := workflow.New(store)
		entry, err := flow.SubmitEntry(actor, projectCode.ID, date, hours)
		if err != nil {
			return err
		}
		fmt.Printf("Created entry %d: %s %s %.2fh (pending)\n", entry.ID, projectCode.Code, args[1], hours)
		return nil
	},
}

var entryListCmd = &cobra.Command{
	Use:   "list",
	Short: "List your own entries, optionally filtered by status",
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

		status := timesheet.Status(entryListStatus)
		if entryListStatus != "" && !status.Valid() {
			return fmt.Errorf("invalid status %q (valid: pending, approved, rejected)", entryListStatus)
		}

		flow := workflow.New(store)
		entries, err := flow.ListMine(actor, status)
		if err != nil {
			return err
		}
		printEntryTable(os.Stdout, entries)
		return nil
	},
}

var entryEditCmd = &cobra.Command{
	Use:   "edit <id>",
	Short: "Change project code, date, and hours of your own entry",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid entry id %q", args[0])
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

		projectCode, err := store.GetProjectCodeByCode(entryEditProject)
		if err != nil {
			return err
		}
		date, err := timeutil.ParseDay(entryEditDate)
		if err != nil {
			return fmt.Errorf("invalid date %q (want %s)", entryEditDate, timeutil.DayLayout)
		}

		flow := workflow.New(store)
		if err := flow.UpdateEntry(actor, id, projectCode.ID, date, entryEditHours); err != nil {
			return err
		}
		fmt.Printf("Updated entry %d\n", id)
		return nil
	},
}

var entryRmCmd = &cobra.Command{
	Use:   "rm <id>",
	Short: "Delete your own entry",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid entry id %q", args[0])
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

		flow := workflow.New(store)
		if err := flow.DeleteEntry(actor, id); err != nil {
			return err
		}
		fmt.Printf("Deleted entry %d\n", id)
		return nil
	},
}

var entryResubmitCmd = &cobra.Command{
	Use:   "resubmit <id> <hours>",
	Short: "Resubmit your rejected entry with new hours",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid entry id %q", args[0])
		}
		hours, err := strconv.ParseFloat(args[1], 64)
		if err != nil {
			return fmt.Errorf("invalid hours %q", args[1])
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

		flow := workflow.New(store)
		if err := flow.Resubmit(actor, id, hours); err != nil {
			return err
		}
		fmt.Printf("Resubmitted entry %d with %.2fh (pending)\n", id, hours)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(entryCmd)
	entryCmd.AddCommand(entryAddCmd)
	entryCmd.AddCommand(entryListCmd)
	entryCmd.AddCommand(entryEditCmd)
	entryCmd.AddCommand(entryRmCmd)
	entryCmd.AddCommand(entryResubmitCmd)

	entryListCmd.Flags().StringVar(&entryListStatus, "status", "", "Filter by status: pending|approved|rejected")

	entryEditCmd.Flags().StringVar(&entryEditProject, "project", "", "New project code")
	entryEditCmd.Flags().StringVar(&entryEditDate, "date", "", "New date (YYYY-MM-DD)")
	entryEditCmd.Flags().Float64Var(&entryEditHours, "hours", 0, "New hours")
	_ = entryEditCmd.MarkFlagRequired("project")
	_ = entryEditCmd.MarkFlagRequired("date")
	_ = entryEditCmd.MarkFlagRequired("hours")
}
