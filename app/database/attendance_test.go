package database

import (
	"strings"
	"testing"

	"attendance-system/app/models"
)

func TestNormalizeEntryDefaultsToAbsent(t *testing.T) {
	entry := normalizeEntry(models.AttendanceEntry{StudentID: "s1"})
	if entry.Status != models.Absent {
		t.Errorf("empty status should default to absent, got %q", entry.Status)
	}
}

func TestNormalizeEntryKeepsExplicitStatus(t *testing.T) {
	entry := normalizeEntry(models.AttendanceEntry{StudentID: "s1", Status: models.Late})
	if entry.Status != models.Late {
		t.Errorf("explicit status should be kept, got %q", entry.Status)
	}
}

func TestNormalizeEntryTrimsNotes(t *testing.T) {
	entry := normalizeEntry(models.AttendanceEntry{StudentID: "s1", Notes: "  sick leave  "})
	if entry.Notes != "sick leave" {
		t.Errorf("notes should be trimmed, got %q", entry.Notes)
	}
}

func TestBuildReportQueryDateRangeOnly(t *testing.T) {
	filters := models.ReportFilters{DateFrom: "2026-03-01", DateTo: "2026-03-31"}

	query, args := buildReportQuery(filters)
	if len(args) != 2 {
		t.Fatalf("expected 2 args, got %d: %v", len(args), args)
	}
	if args[0] != "2026-03-01" || args[1] != "2026-03-31" {
		t.Errorf("unexpected args %v", args)
	}
	if !strings.Contains(query, "a.date BETWEEN $1 AND $2") {
		t.Errorf("missing date range condition in %q", query)
	}
	if strings.Contains(query, "ILIKE") {
		t.Errorf("no name filter requested, got %q", query)
	}
	if !strings.Contains(query, "ORDER BY a.date DESC") {
		t.Errorf("missing ordering in %q", query)
	}
}

func TestBuildReportQueryAllFilters(t *testing.T) {
	filters := models.ReportFilters{
		DateFrom: "2026-03-01",
		DateTo:   "2026-03-31",
		Student:  "nakato",
		Status:   "late",
		Teacher:  "kasozi",
	}

	query, args := buildReportQuery(filters)
	if len(args) != 5 {
		t.Fatalf("expected 5 args, got %d: %v", len(args), args)
	}
	if args[2] != "%nakato%" {
		t.Errorf("student pattern: got %v", args[2])
	}
	if args[3] != "late" {
		t.Errorf("status arg: got %v", args[3])
	}
	if args[4] != "%kasozi%" {
		t.Errorf("teacher pattern: got %v", args[4])
	}

	for _, placeholder := range []string{"$3", "$4", "$5"} {
		if !strings.Contains(query, placeholder) {
			t.Errorf("missing placeholder %s in %q", placeholder, query)
		}
	}
	// Filter values reach the query only as parameters.
	if strings.Contains(query, "nakato") || strings.Contains(query, "kasozi") {
		t.Errorf("filter value interpolated into SQL: %q", query)
	}
}

func TestBuildReportQueryStatusOnly(t *testing.T) {
	filters := models.ReportFilters{
		DateFrom: "2026-03-01",
		DateTo:   "2026-03-31",
		Status:   "absent",
	}

	query, args := buildReportQuery(filters)
	if len(args) != 3 {
		t.Fatalf("expected 3 args, got %d: %v", len(args), args)
	}
	if !strings.Contains(query, "a.status = $3") {
		t.Errorf("status condition should use the next placeholder, got %q", query)
	}
}
