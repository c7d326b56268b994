package export

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/sadopc/streakr/internal/recur"
)

var csvHeader = []string{"ID", "Title", "Due", "Status", "Pattern", "Week Days", "End Date", "Estimate (min)", "Estimate", "Tags"}

// TasksToCSV writes one row per task.
func TasksToCSV(tasks []recur.Task, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create csv file: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	defer w.Flush()

	if err := w.Write(csvHeader); err != nil {
		return err
	}

	for _, t := range tasks {
		pattern, weekDays, endDate := string(recur.PatternOnce), "", ""
		if r := t.Recurrence; r != nil {
			pattern = string(r.Pattern)
			weekDays = strings.Join(r.WeekDays, " ")
			if r.EndDate != nil {
				endDate = r.EndDate.String()
			}
		}

		row := []string{
			t.ID,
			t.Title,
			t.DueDate.String(),
			string(t.Status),
			pattern,
			weekDays,
			endDate,
			strconv.Itoa(t.EstimateMinutes),
			formatDuration(int64(t.EstimateMinutes) * 60),
			tagNames(t.Tags),
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}

	w.Flush()
	return w.Error()
}

func tagNames(tags []recur.Tag) string {
	names := make([]string, len(tags))
	for i, t := range tags {
		names[i] = t.Name
	}
	return strings.Join(names, ";")
}

func formatDuration(secs int64) string {
	h := secs / 3600
	m := (secs % 3600) / 60
	s := secs % 60
	return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
}
