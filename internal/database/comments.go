package database

import (
	"context"
	"fmt"
	"time"

	"shareit/internal/models"

	"github.com/jmoiron/sqlx"
)

type commentRow struct {
	ID         int64  `db:"id"`
	Text       string `db:"text"`
	ItemID     int64  `db:"item_id"`
	AuthorID   int64  `db:"author_id"`
	AuthorName string `db:"author_name"`
	CreatedTS  int64  `db:"created_ts"`
}

func (db *DB) CreateComment(ctx context.Context, comment *models.Comment) error {
	query := `INSERT INTO comments (text, item_id, author_id, created_ts) VALUES (?, ?, ?, ?)`
	result, err := db.q.ExecContext(ctx, query, comment.Text, comment.ItemID, comment.AuthorID, comment.Created.Unix())
	if err != nil {
		return fmt.Errorf("failed to create comment: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}
	comment.ID = id
	return nil
}

func (db *DB) ListCommentsByItem(ctx context.Context, itemID int64) ([]models.Comment, error) {
	query := `SELECT c.id, c.text, c.item_id, c.author_id, u.name AS author_name, c.created_ts
		FROM comments c JOIN users u ON u.id = c.author_id
		WHERE c.item_id = ?
		ORDER BY c.created_ts, c.id`

	var rows []commentRow
	if err := sqlx.SelectContext(ctx, db.q, &rows, query, itemID); err != nil {
		return nil, fmt.Errorf("failed to list comments: %w", err)
	}

	comments := make([]models.Comment, 0, len(rows))
	for _, r := range rows {
		comments = append(comments, models.Comment{
			ID:         r.ID,
			Text:       r.Text,
			ItemID:     r.ItemID,
			AuthorID:   r.AuthorID,
			AuthorName: r.AuthorName,
			Created:    time.Unix(r.CreatedTS, 0),
		})
	}
	return comments, nil
}
