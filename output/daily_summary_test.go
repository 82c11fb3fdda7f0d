package output

import (
	"testing"
	"time"

	"timecard/timesheet"
)

func detail(username, code, day string, hours float64, status timesheet.Status) timesheet.EntryDetail {
	date, _ := time.Parse("2006-01-02", day)
	return timesheet.EntryDetail{
		Entry: timesheet.Entry{
			Date:   date,
			Hours:  hours,
			Status: status,
		},
		Username: username,
		Code:     code,
	}
}

func TestBuildDailySummaries_GroupsByDayAndUser(t *testing.T) {
	t.Parallel()

	entries := []timesheet.EntryDetail{
		detail("alice", "ENG", "2024-01-05", 4, timesheet.StatusPending),
		detail("alice", "OPS", "2024-01-05", 3.5, timesheet.StatusApproved),
		detail("bob", "ENG", "2024-01-05", 8, timesheet.StatusRejected),
		detail("alice", "ENG", "2024-01-06", 8, timesheet.StatusPending),
	}

	summaries := BuildDailySummaries(entries)
	if len(summaries) != 3 {
		t.Fatalf("expected 3 summaries, got %d", len(summaries))
	}

	first := summaries[0]
	if first.Date != "2024-01-05" || first.Username != "alice" {
		t.Fatalf("expected sorted output starting with alice on 2024-01-05, got %+v", first)
	}
	if first.TotalHours != 7.5 || first.EntryCount != 2 {
		t.Fatalf("expected 7.5h over 2 entries, got %+v", first)
	}
	if first.PendingCount != 1 || first.ApprovedCount != 1 || first.RejectedCount != 0 {
		t.Fatalf("unexpected status counts: %+v", first)
	}

	second := summaries[1]
	if second.Username != "bob" || second.RejectedCount != 1 {
		t.Fatalf("expected bob's rejected entry second, got %+v", second)
	}

	third := summaries[2]
	if third.Date != "2024-01-06" || third.TotalHours != 8 {
		t.Fatalf("expected alice's next day last, got %+v", third)
	}
}

func TestBuildDailySummaries_EmptyInput(t *testing.T) {
	t.Parallel()

	summaries := BuildDailySummaries(nil)
	if len(summaries) != 0 {
		t.Fatalf("expected empty output, got %d", len(summaries))
	}
}

func TestWriteDailySummaries_UnsupportedFormat(t *testing.T) {
	t.Parallel()

	err := WriteDailySummaries("out.bin", "pdf", nil)
	if err == nil {
		t.Fatalf("expected unsupported format error")
	}
}
