package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/sadopc/streakr/internal/recur"
)

func saveStreak(ctx context.Context, tx *sql.Tx, userID string, st recur.StreakData) error {
	var last sql.NullString
	if st.LastCompletionDate != nil {
		last = sql.NullString{String: st.LastCompletionDate.String(), Valid: true}
	}
	_, err := tx.ExecContext(ctx,
		`INSERT INTO streaks (user_id, current_streak, longest_streak, last_completion_date) VALUES (?, ?, ?, ?)
		 ON CONFLICT(user_id) DO UPDATE SET
		   current_streak = excluded.current_streak,
		   longest_streak = excluded.longest_streak,
		   last_completion_date = excluded.last_completion_date`,
		userID, st.CurrentStreak, st.LongestStreak, last,
	)
	if err != nil {
		return fmt.Errorf("save streak: %w", err)
	}
	return nil
}

// loadStreak returns the zero streak for users that never saved one.
func (s *Store) loadStreak(ctx context.Context, userID string) (recur.StreakData, error) {
	var st recur.StreakData
	var last sql.NullString
	err := s.db.QueryRowContext(ctx,
		`SELECT current_streak, longest_streak, last_completion_date FROM streaks WHERE user_id = ?`, userID,
	).Scan(&st.CurrentStreak, &st.LongestStreak, &last)
	if err == sql.ErrNoRows {
		return recur.StreakData{}, nil
	}
	if err != nil {
		return st, fmt.Errorf("get streak: %w", err)
	}
	if last.Valid {
		d, err := recur.ParseDate(last.String)
		if err != nil {
			return st, fmt.Errorf("streak last completion: %w", err)
		}
		st.LastCompletionDate = &d
	}
	return st, nil
}
