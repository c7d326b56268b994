package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/sadopc/streakr/internal/recur"
)

func saveTags(ctx context.Context, tx *sql.Tx, userID string, tags []recur.Tag) error {
	if _, err := tx.ExecContext(ctx, `DELETE FROM tags WHERE user_id = ?`, userID); err != nil {
		return fmt.Errorf("clear tags: %w", err)
	}
	for i, t := range tags {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO tags (user_id, id, position, name, color) VALUES (?, ?, ?, ?, ?)`,
			userID, t.ID, i, t.Name, t.Color,
		)
		if err != nil {
			return fmt.Errorf("insert tag %q: %w", t.Name, err)
		}
	}
	return nil
}

func (s *Store) loadTags(ctx context.Context, userID string) ([]recur.Tag, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, color FROM tags WHERE user_id = ? ORDER BY position`, userID,
	)
	if err != nil {
		return nil, fmt.Errorf("list tags: %w", err)
	}
	defer rows.Close()

	var tags []recur.Tag
	for rows.Next() {
		var t recur.Tag
		if err := rows.Scan(&t.ID, &t.Name, &t.Color); err != nil {
			return nil, err
		}
		tags = append(tags, t)
	}
	return tags, rows.Err()
}
