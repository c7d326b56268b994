package export

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/sadopc/streakr/internal/recur"
	"github.com/sadopc/streakr/internal/store"
)

type jsonExport struct {
	ExportedAt string                `json:"exported_at"`
	Counts     jsonCounts            `json:"counts"`
	Streak     recur.StreakData      `json:"streak"`
	Tasks      []recur.Task          `json:"tasks"`
	Progress   []recur.DailyProgress `json:"progress"`
	Tags       []recur.Tag           `json:"tags"`
	Bookmarks  []store.Bookmark      `json:"bookmarks"`
}

type jsonCounts struct {
	Tasks     int `json:"tasks"`
	Completed int `json:"completed"`
	Recurring int `json:"recurring"`
	Days      int `json:"days"`
	Bookmarks int `json:"bookmarks"`
}

// ToJSON writes the whole document, pretty printed.
func ToJSON(snap store.Snapshot, path string) error {
	export := jsonExport{
		ExportedAt: time.Now().UTC().Format(time.RFC3339),
		Streak:     snap.Streak,
		Tasks:      snap.Tasks,
		Progress:   snap.Progress,
		Tags:       snap.Tags,
		Bookmarks:  snap.Bookmarks,
		Counts: jsonCounts{
			Tasks:     len(snap.Tasks),
			Days:      len(snap.Progress),
			Bookmarks: len(snap.Bookmarks),
		},
	}
	for _, t := range snap.Tasks {
		if t.Completed() {
			export.Counts.Completed++
		}
		if t.Recurrence.Repeats() {
			export.Counts.Recurring++
		}
	}

	data, err := json.MarshalIndent(export, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal json: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write json file: %w", err)
	}
	return nil
}
