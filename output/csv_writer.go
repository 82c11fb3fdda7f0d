package output

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"

	"timecard/internal/timeutil"
	"timecard/timesheet"
)

type CSVWriter struct{}

func (w *CSVWriter) Write(path string, entries []timesheet.EntryDetail) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create csv output %s: %w", path, err)
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	defer writer.Flush()

	headers := []string{"ID", "Username", "ProjectCode", "Date", "Hours", "Status", "Comment"}
	if err := writer.Write(headers); err != nil {
		return fmt.Errorf("write csv headers: %w", err)
	}

	for _, entry := range entries {
		row := []string{
			strconv.FormatInt(entry.ID, 10),
			entry.Username,
			entry.Code,
			timeutil.FormatDay(entry.Date),
			fmt.Sprintf("%.2f", entry.Hours),
			string(entry.Status),
			entry.Comment,
		}
		if err := writer.Write(row); err != nil {
			return fmt.Errorf("write csv row: %w", err)
		}
	}

	if err := writer.Error(); err != nil {
		return fmt.Errorf("flush csv output: %w", err)
	}

	return nil
}
