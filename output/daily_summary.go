package output

import (
	"fmt"
	"math"
	"sort"

	"timecard/internal/timeutil"
	"timecard/timesheet"
)

// DailySummary aggregates one user's entries for one calendar day.
type DailySummary struct {
	Date          string
	Username      string
	TotalHours    float64
	PendingCount  int
	ApprovedCount int
	RejectedCount int
	EntryCount    int
}

// BuildDailySummaries groups entries by (day, username) and totals the
// hours and status counts. Output is sorted by day, then username.
func BuildDailySummaries(entries []timesheet.EntryDetail) []DailySummary {
	if len(entries) == 0 {
		return []DailySummary{}
	}

	type key struct {
		day      string
		username string
	}

	grouped := make(map[key]*DailySummary)
	for _, entry := range entries {
		k := key{day: timeutil.FormatDay(entry.Date), username: entry.Username}
		summary, ok := grouped[k]
		if !ok {
			summary = &DailySummary{Date: k.day, Username: k.username}
			grouped[k] = summary
		}

		summary.TotalHours += entry.Hours
		summary.EntryCount++
		switch entry.Status {
		case timesheet.StatusPending:
			summary.PendingCount++
		case timesheet.StatusApproved:
			summary.ApprovedCount++
		case timesheet.StatusRejected:
			summary.RejectedCount++
		}
	}

	summaries := make([]DailySummary, 0, len(grouped))
	for _, summary := range grouped {
		summary.TotalHours = roundHours(summary.TotalHours)
		summaries = append(summaries, *summary)
	}

	sort.Slice(summaries, func(i, j int) bool {
		if summaries[i].Date != summaries[j].Date {
			return summaries[i].Date < summaries[j].Date
		}
		return summaries[i].Username < summaries[j].Username
	})

	return summaries
}

func roundHours(value float64) float64 {
	return math.Round(value*100) / 100
}

func WriteDailySummaries(path, format string, summaries []DailySummary) error {
	switch normalizeFormat(format) {
	case "csv":
		return writeDailySummariesCSV(path, summaries)
	case "excel", "xlsx":
		return writeDailySummariesExcel(path, summaries)
	default:
		return fmt.Errorf("unsupported output format for daily summaries: %s", format)
	}
}
