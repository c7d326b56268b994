package export

import (
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/sadopc/streakr/internal/recur"
	"github.com/sadopc/streakr/internal/store"
)

func sampleSnapshot() store.Snapshot {
	end := recur.MustParseDate("2024-06-30")
	last := recur.MustParseDate("2024-03-10")
	work := recur.Tag{ID: "t1", Name: "work", Color: "#FF0000"}
	home := recur.Tag{ID: "t2", Name: "home", Color: "#00FF00"}

	return store.Snapshot{
		Tasks: []recur.Task{
			{
				ID:              "a",
				Title:           "Standup",
				DueDate:         recur.MustParseDate("2024-03-11"),
				EstimateMinutes: 90,
				Status:          recur.StatusPending,
				Tags:            []recur.Tag{work, home},
				Recurrence:      &recur.Recurrence{Pattern: recur.PatternWeekly, WeekDays: []string{"monday", "wednesday"}, EndDate: &end},
			},
			{
				ID:         "b",
				Title:      "Meditate",
				DueDate:    recur.MustParseDate("2024-03-10"),
				Status:     recur.StatusCompleted,
				Recurrence: &recur.Recurrence{Pattern: recur.PatternDaily},
			},
			{
				ID:      "c",
				Title:   "Taxes",
				DueDate: recur.MustParseDate("2024-04-15"),
				Status:  recur.StatusInProgress,
			},
		},
		Progress: []recur.DailyProgress{
			{Date: last, TasksCompleted: 1, TasksPlanned: 1, Completion: 1},
		},
		Streak: recur.StreakData{CurrentStreak: 1, LongestStreak: 4, LastCompletionDate: &last},
		Tags:   []recur.Tag{work, home},
		Bookmarks: []store.Bookmark{
			{ID: "bm", Title: "Go", URL: "https://go.dev", CreatedAt: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)},
		},
	}
}

func readCSV(t *testing.T, path string) [][]string {
	t.Helper()
	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	records, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatalf("invalid CSV: %v", err)
	}
	return records
}

// ============================================================
// CSV
// ============================================================

func TestTasksToCSV(t *testing.T) {
	snap := sampleSnapshot()
	path := filepath.Join(t.TempDir(), "tasks.csv")

	if err := TasksToCSV(snap.Tasks, path); err != nil {
		t.Fatalf("TasksToCSV: %v", err)
	}
	records := readCSV(t, path)

	if len(records) != 4 {
		t.Fatalf("expected 4 rows (1 header + 3 data), got %d", len(records))
	}
	for i, h := range csvHeader {
		if records[0][i] != h {
			t.Fatalf("header[%d] = %q, want %q", i, records[0][i], h)
		}
	}

	want := []string{"a", "Standup", "2024-03-11", "pending", "weekly", "monday wednesday", "2024-06-30", "90", "01:30:00", "work;home"}
	for i, w := range want {
		if records[1][i] != w {
			t.Fatalf("row 1 col %d = %q, want %q", i, records[1][i], w)
		}
	}

	oneOff := records[3]
	if oneOff[4] != "once" || oneOff[5] != "" || oneOff[6] != "" || oneOff[9] != "" {
		t.Fatalf("one-off task should have empty recurrence columns: %v", oneOff)
	}
	if oneOff[3] != "in-progress" {
		t.Fatalf("status = %q, want in-progress", oneOff[3])
	}
}

func TestTasksToCSVEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.csv")
	if err := TasksToCSV(nil, path); err != nil {
		t.Fatal(err)
	}
	if records := readCSV(t, path); len(records) != 1 {
		t.Fatalf("expected 1 row (header only), got %d", len(records))
	}
}

func TestTasksToCSVBadPath(t *testing.T) {
	if err := TasksToCSV(nil, "/nonexistent/dir/file.csv"); err == nil {
		t.Fatal("expected error for bad path")
	}
}

func TestTasksToCSVSpecialCharacters(t *testing.T) {
	tasks := []recur.Task{{
		ID:      "x",
		Title:   `Call "Mom", then dad`,
		DueDate: recur.MustParseDate("2024-03-10"),
		Status:  recur.StatusPending,
	}}
	path := filepath.Join(t.TempDir(), "special.csv")
	if err := TasksToCSV(tasks, path); err != nil {
		t.Fatal(err)
	}
	if got := readCSV(t, path)[1][1]; got != `Call "Mom", then dad` {
		t.Fatalf("title mangled: %q", got)
	}
}

// ============================================================
// JSON
// ============================================================

func TestToJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "export.json")
	if err := ToJSON(sampleSnapshot(), path); err != nil {
		t.Fatalf("ToJSON: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	var result jsonExport
	if err := json.Unmarshal(data, &result); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}

	want := jsonCounts{Tasks: 3, Completed: 1, Recurring: 2, Days: 1, Bookmarks: 1}
	if result.Counts != want {
		t.Fatalf("counts = %+v, want %+v", result.Counts, want)
	}
	if _, err := time.Parse(time.RFC3339, result.ExportedAt); err != nil {
		t.Fatalf("exported_at is not valid RFC3339: %q", result.ExportedAt)
	}
	if result.Streak.LongestStreak != 4 || result.Streak.LastCompletionDate.String() != "2024-03-10" {
		t.Fatalf("streak = %+v", result.Streak)
	}
	if got := result.Tasks[0].Recurrence; got == nil || got.EndDate.String() != "2024-06-30" {
		t.Fatalf("recurrence lost: %+v", got)
	}
	if !strings.Contains(string(data), `"dueDate": "2024-03-11"`) {
		t.Fatal("dates should be written as YYYY-MM-DD")
	}
	if !strings.Contains(string(data), "\n  ") {
		t.Fatal("JSON should be pretty-printed")
	}
}

func TestToJSONEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.json")
	if err := ToJSON(store.Snapshot{}, path); err != nil {
		t.Fatal(err)
	}

	data, _ := os.ReadFile(path)
	var result jsonExport
	if err := json.Unmarshal(data, &result); err != nil {
		t.Fatal(err)
	}
	if result.Counts != (jsonCounts{}) || result.Tasks != nil {
		t.Fatalf("expected empty export, got %+v", result)
	}
}

func TestToJSONBadPath(t *testing.T) {
	if err := ToJSON(store.Snapshot{}, "/nonexistent/dir/file.json"); err == nil {
		t.Fatal("expected error for bad path")
	}
}

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		secs int64
		want string
	}{
		{0, "00:00:00"},
		{60, "00:01:00"},
		{3661, "01:01:01"},
		{90061, "25:01:01"},
	}
	for _, tt := range tests {
		if got := formatDuration(tt.secs); got != tt.want {
			t.Errorf("formatDuration(%d) = %q, want %q", tt.secs, got, tt.want)
		}
	}
}
