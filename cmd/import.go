package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"timecard/importer"
	"timecard/workflow"
)

var (
	importInputs []string
	importFormat string
)

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Bulk-create pending entries from CSV/Excel files",
	Long: `Import timesheet rows from spreadsheet files (manager only).

Each row needs a username, project code, date (YYYY-MM-DD), and hours column.
Rows are created as pending entries owned by the named user. Rows that name an
unknown user or project code, or fail hours validation, are skipped and listed.`,
	Example: `
  # Import one CSV file
  timecard --as frank --role manager import -i january.csv

  # Import Excel exports
  timecard --as frank --role manager import -i week1.xlsx -i week2.xlsx

  # Force the input format for files without a matching extension
  timecard --as frank --role manager import -i rows.txt --format csv
`,
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

		service := importer.NewService(store, workflow.New(store))
		result, err := service.Run(actor, importInputs, importFormat)
		if err != nil {
			return err
		}

		fmt.Printf("Import completed. Files: %d, Rows read: %d, Created: %d, Skipped: %d\n",
			result.FilesProcessed, result.RowsRead, result.RowsCreated, result.RowsSkipped)
		for _, skipped := range result.Skipped {
			fmt.Fprintf(os.Stderr, "  skipped %s row %d: %s\n", skipped.Path, skipped.RowNumber, skipped.Reason)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(importCmd)

	importCmd.Flags().StringArrayVarP(&importInputs, "input", "i", nil, "Input file (repeatable)")
	importCmd.Flags().StringVar(&importFormat, "format", "", "Input format: csv|excel (optional, inferred from extension)")

	_ = importCmd.MarkFlagRequired("input")
}
