package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

func saveBookmarks(ctx context.Context, tx *sql.Tx, userID string, bookmarks []Bookmark) error {
	if _, err := tx.ExecContext(ctx, `DELETE FROM bookmarks WHERE user_id = ?`, userID); err != nil {
		return fmt.Errorf("clear bookmarks: %w", err)
	}
	for i, b := range bookmarks {
		created := b.CreatedAt
		if created.IsZero() {
			created = time.Now()
		}
		_, err := tx.ExecContext(ctx,
			`INSERT INTO bookmarks (user_id, id, position, title, url, created_at) VALUES (?, ?, ?, ?, ?, ?)`,
			userID, b.ID, i, b.Title, b.URL, created.UTC().Format(time.RFC3339),
		)
		if err != nil {
			return fmt.Errorf("insert bookmark %s: %w", b.ID, err)
		}
	}
	return nil
}

func (s *Store) loadBookmarks(ctx context.Context, userID string) ([]Bookmark, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, title, url, created_at FROM bookmarks WHERE user_id = ? ORDER BY position`, userID,
	)
	if err != nil {
		return nil, fmt.Errorf("list bookmarks: %w", err)
	}
	defer rows.Close()

	var bookmarks []Bookmark
	for rows.Next() {
		var b Bookmark
		var createdAt string
		if err := rows.Scan(&b.ID, &b.Title, &b.URL, &createdAt); err != nil {
			return nil, err
		}
		b.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
		bookmarks = append(bookmarks, b)
	}
	return bookmarks, rows.Err()
}
