package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/sadopc/streakr/internal/recur"
)

func saveProgress(ctx context.Context, tx *sql.Tx, userID string, progress []recur.DailyProgress) error {
	if _, err := tx.ExecContext(ctx, `DELETE FROM daily_progress WHERE user_id = ?`, userID); err != nil {
		return fmt.Errorf("clear progress: %w", err)
	}
	for _, p := range progress {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO daily_progress (user_id, date, tasks_completed, tasks_planned, completion) VALUES (?, ?, ?, ?, ?)`,
			userID, p.Date.String(), p.TasksCompleted, p.TasksPlanned, p.Completion,
		)
		if err != nil {
			return fmt.Errorf("insert progress %s: %w", p.Date, err)
		}
	}
	return nil
}

func (s *Store) loadProgress(ctx context.Context, userID string) ([]recur.DailyProgress, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT date, tasks_completed, tasks_planned, completion
		 FROM daily_progress WHERE user_id = ? ORDER BY date`, userID,
	)
	if err != nil {
		return nil, fmt.Errorf("list progress: %w", err)
	}
	defer rows.Close()

	var progress []recur.DailyProgress
	for rows.Next() {
		var p recur.DailyProgress
		var date string
		if err := rows.Scan(&date, &p.TasksCompleted, &p.TasksPlanned, &p.Completion); err != nil {
			return nil, err
		}
		if p.Date, err = recur.ParseDate(date); err != nil {
			return nil, fmt.Errorf("progress row: %w", err)
		}
		progress = append(progress, p)
	}
	return progress, rows.Err()
}
