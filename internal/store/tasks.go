package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/sadopc/streakr/internal/recur"
)

func saveTasks(ctx context.Context, tx *sql.Tx, userID string, tasks []recur.Task) error {
	if _, err := tx.ExecContext(ctx, `DELETE FROM task_tags WHERE user_id = ?`, userID); err != nil {
		return fmt.Errorf("clear task tags: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM tasks WHERE user_id = ?`, userID); err != nil {
		return fmt.Errorf("clear tasks: %w", err)
	}

	for i, t := range tasks {
		var pattern, endDate sql.NullString
		weekDays := ""
		if r := t.Recurrence; r != nil {
			pattern = sql.NullString{String: string(r.Pattern), Valid: true}
			weekDays = strings.Join(r.WeekDays, ",")
			if r.EndDate != nil {
				endDate = sql.NullString{String: r.EndDate.String(), Valid: true}
			}
		}
		_, err := tx.ExecContext(ctx,
			`INSERT INTO tasks (user_id, id, position, title, description, due_date, estimate_minutes, status, pattern, week_days, end_date)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			userID, t.ID, i, t.Title, t.Description, t.DueDate.String(), t.EstimateMinutes, string(t.Status),
			pattern, weekDays, endDate,
		)
		if err != nil {
			return fmt.Errorf("insert task %s: %w", t.ID, err)
		}
		for j, tag := range t.Tags {
			_, err := tx.ExecContext(ctx,
				`INSERT INTO task_tags (user_id, task_id, position, tag_id, name, color) VALUES (?, ?, ?, ?, ?, ?)`,
				userID, t.ID, j, tag.ID, tag.Name, tag.Color,
			)
			if err != nil {
				return fmt.Errorf("insert tag %s for task %s: %w", tag.ID, t.ID, err)
			}
		}
	}
	return nil
}

func (s *Store) loadTasks(ctx context.Context, userID string) ([]recur.Task, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, title, description, due_date, estimate_minutes, status, pattern, week_days, end_date
		 FROM tasks WHERE user_id = ? ORDER BY position`, userID,
	)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	defer rows.Close()

	var tasks []recur.Task
	index := make(map[string]int)
	for rows.Next() {
		var t recur.Task
		var due, status, weekDays string
		var pattern, endDate sql.NullString
		if err := rows.Scan(&t.ID, &t.Title, &t.Description, &due, &t.EstimateMinutes, &status, &pattern, &weekDays, &endDate); err != nil {
			return nil, err
		}
		if t.DueDate, err = recur.ParseDate(due); err != nil {
			return nil, fmt.Errorf("task %s: %w", t.ID, err)
		}
		t.Status = recur.Status(status)
		if pattern.Valid {
			r := &recur.Recurrence{Pattern: recur.Pattern(pattern.String)}
			if weekDays != "" {
				r.WeekDays = strings.Split(weekDays, ",")
			}
			if endDate.Valid {
				end, err := recur.ParseDate(endDate.String)
				if err != nil {
					return nil, fmt.Errorf("task %s end date: %w", t.ID, err)
				}
				r.EndDate = &end
			}
			t.Recurrence = r
		}
		index[t.ID] = len(tasks)
		tasks = append(tasks, t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	tagRows, err := s.db.QueryContext(ctx,
		`SELECT task_id, tag_id, name, color FROM task_tags WHERE user_id = ? ORDER BY task_id, position`, userID,
	)
	if err != nil {
		return nil, fmt.Errorf("list task tags: %w", err)
	}
	defer tagRows.Close()

	for tagRows.Next() {
		var taskID string
		var tag recur.Tag
		if err := tagRows.Scan(&taskID, &tag.ID, &tag.Name, &tag.Color); err != nil {
			return nil, err
		}
		if i, ok := index[taskID]; ok {
			tasks[i].Tags = append(tasks[i].Tags, tag)
		}
	}
	return tasks, tagRows.Err()
}
