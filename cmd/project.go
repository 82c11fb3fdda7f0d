package cmd

import (
	"fmt"
	"os"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"timecard/storage"
)

var projectEditDescription string

var projectCmd = &cobra.Command{
	Use:   "project",
	Short: "Manage project codes",
	Long: `Create, list, edit, and delete the project codes that timesheet entries
reference. All mutations require a manager identity.`,
	Example: `
  timecard --as frank --role manager project add ENG "Engineering"
  timecard project list
  timecard --as frank --role manager project edit 1 OPS --description "Operations"
  timecard --as frank --role manager project rm 1
`,
}

var projectAddCmd = &cobra.Command{
	Use:   "add <code> [description]",
	Short: "Create a project code",
	Args:  cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openStore()
		if err != nil {
			return err
		}
		defer store.Close()

		if err := requireManager(store); err != nil {
			return err
		}

		description := ""
		if len(args) > 1 {
			description = args[1]
		}
		pc, err := store.CreateProjectCode(args[0], description)
		if err != nil {
			return err
		}
		fmt.Printf("Created project code %d: %s\n", pc.ID, pc.Code)
		return nil
	},
}

var projectListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all project codes",
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openStore()
		if err != nil {
			return err
		}
		defer store.Close()

		codes, err := store.ListProjectCodes()
		if err != nil {
			return err
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tCODE\tDESCRIPTION")
		for _, pc := range codes {
			fmt.Fprintf(w, "%d\t%s\t%s\n", pc.ID, pc.Code, pc.Description)
		}
		return w.Flush()
	},
}

var projectEditCmd = &cobra.Command{
	Use:   "edit <id> <code>",
	Short: "Change a project code's label and description",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid project code id %q", args[0])
		}

		store, err := openStore()
		if err != nil {
			return err
		}
		defer store.Close()

		if err := requireManager(store); err != nil {
			return err
		}

		if err := store.UpdateProjectCode(id, args[1], projectEditDescription); err != nil {
			return err
		}
		fmt.Printf("Updated project code %d\n", id)
		return nil
	},
}

var projectRmCmd = &cobra.Command{
	Use:   "rm <id>",
	Short: "Delete a project code",
	Long: `Delete a project code by id.

Entries referencing the code are NOT deleted; they stay behind as orphaned
rows, matching the permissive delete behavior of the schema.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid project code id %q", args[0])
		}

		store, err := openStore()
		if err != nil {
			return err
		}
		defer store.Close()

		if err := requireManager(store); err != nil {
			return err
		}

		count, err := store.CountEntriesForProjectCode(id)
		if err != nil {
			return err
		}
		if count > 0 {
			fmt.Fprintf(os.Stderr, "Warning: %d timesheet entries reference project code %d and will be orphaned\n", count, id)
		}

		deleted, err := store.DeleteProjectCode(id)
		if err != nil {
			return err
		}
		if !deleted {
			return storage.ErrNotFound
		}
		fmt.Printf("Deleted project code %d\n", id)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(projectCmd)
	projectCmd.AddCommand(projectAddCmd)
	projectCmd.AddCommand(projectListCmd)
	projectCmd.AddCommand(projectEditCmd)
	projectCmd.AddCommand(projectRmCmd)

	projectEditCmd.Flags().StringVar(&projectEditDescription, "description", "", "New description")
}
