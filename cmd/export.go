package cmd

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"timecard/output"
	"timecard/timesheet"
	"timecard/workflow"
)

var (
	exportFormat string
	exportMode   string
	exportOutput string
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export timesheet entries to CSV/Excel",
	Long: `Export timesheet entries from the local store.

Modes:
- raw: one row per entry (user, project code, date, hours, status, comment)
- daily: per-user per-day aggregates (total hours, status counts)

Managers export every entry; contributors export their own. Output format
can be selected explicitly via --format or inferred from --output extension.`,
	Example: `
  # Export all entries to CSV (manager)
  timecard --as frank --role manager export --mode raw --output ./timesheets.csv

  # Export your own entries to Excel
  timecard --as alice --role user export --mode raw --output ./mine.xlsx

  # Export daily summary
  timecard --as frank --role manager export --mode daily --output ./daily.csv
`,
	RunE: func(cmd *cobra.Command, args []string) error {
		format := exportFormat
		if strings.TrimSpace(format) == "" {
			format = detectExportFormat(exportOutput)
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
		var entries []timesheet.EntryDetail
		if actor.IsManager() {
			entries, err = flow.ListAll(actor)
		} else {
			entries, err = flow.ListMine(actor, "")
		}
		if err != nil {
			return err
		}

		mode := strings.TrimSpace(strings.ToLower(exportMode))
		switch mode {
		case "", "raw":
			writer, writerErr := output.WriterForFormat(format)
			if writerErr != nil {
				return writerErr
			}
			if err := writer.Write(exportOutput, entries); err != nil {
				return err
			}
			fmt.Printf("Export completed. Rows: %d, Mode: raw, Format: %s, File: %s\n", len(entries), format, exportOutput)
		case "daily":
			summaries := output.BuildDailySummaries(entries)
			if err := output.WriteDailySummaries(exportOutput, format, summaries); err != nil {
				return err
			}
			fmt.Printf("Export completed. Rows: %d, Mode: daily, Format: %s, File: %s\n", len(summaries), format, exportOutput)
		default:
			return fmt.Errorf("unsupported export mode: %s (supported: raw, daily)", exportMode)
		}
		return nil
	},
}

func detectExportFormat(path string) string {
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
	switch ext {
	case "csv":
		return "csv"
	case "xlsx", "xlsm":
		return "excel"
	default:
		return "csv"
	}
}

func init() {
	rootCmd.AddCommand(exportCmd)

	exportCmd.Flags().StringVar(&exportMode, "mode", "raw", "Export mode: raw|daily")
	exportCmd.Flags().StringVarP(&exportFormat, "format", "f", "", "Output format: csv|excel (optional, inferred from output extension)")
	exportCmd.Flags().StringVarP(&exportOutput, "output", "o", "", "Output file path")

	_ = exportCmd.MarkFlagRequired("output")
}
