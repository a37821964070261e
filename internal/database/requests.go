package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"shareit/internal/domain"
	"shareit/internal/models"

	"github.com/jmoiron/sqlx"
)

type requestRow struct {
	ID          int64  `db:"id"`
	Description string `db:"description"`
	RequestorID int64  `db:"requestor_id"`
	CreatedTS   int64  `db:"created_ts"`
}

func (r *requestRow) toModel() *models.ItemRequest {
	return &models.ItemRequest{
		ID:          r.ID,
		Description: r.Description,
		RequestorID: r.RequestorID,
		Created:     time.Unix(r.CreatedTS, 0),
		Items:       []models.RequestItem{},
	}
}

func toRequests(rows []requestRow) []*models.ItemRequest {
	out := make([]*models.ItemRequest, 0, len(rows))
	for i := range rows {
		out = append(out, rows[i].toModel())
	}
	return out
}

func (db *DB) CreateRequest(ctx context.Context, req *models.ItemRequest) error {
	query := `INSERT INTO requests (description, requestor_id, created_ts) VALUES (?, ?, ?)`
	result, err := db.q.ExecContext(ctx, query, req.Description, req.RequestorID, req.Created.Unix())
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}
	req.ID = id
	return nil
}

func (db *DB) GetRequest(ctx context.Context, id int64) (*models.ItemRequest, error) {
	var row requestRow
	err := sqlx.GetContext(ctx, db.q, &row,
		`SELECT id, description, requestor_id, created_ts FROM requests WHERE id = ?`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: request %d", domain.ErrNotFound, id)
		}
		return nil, fmt.Errorf("failed to get request: %w", err)
	}
	return row.toModel(), nil
}

func (db *DB) ListRequestsByRequestor(ctx context.Context, userID int64) ([]*models.ItemRequest, error) {
	query := `SELECT id, description, requestor_id, created_ts FROM requests
		WHERE requestor_id = ? ORDER BY created_ts DESC, id DESC`

	var rows []requestRow
	if err := sqlx.SelectContext(ctx, db.q, &rows, query, userID); err != nil {
		return nil, fmt.Errorf("failed to list requests: %w", err)
	}
	return toRequests(rows), nil
}

// ListRequestsExcept pages through requests made by everyone but userID.
func (db *DB) ListRequestsExcept(ctx context.Context, userID int64, page models.Page) ([]*models.ItemRequest, error) {
	query := `SELECT id, description, requestor_id, created_ts FROM requests
		WHERE requestor_id <> ? ORDER BY created_ts DESC, id DESC LIMIT ? OFFSET ?`

	var rows []requestRow
	if err := sqlx.SelectContext(ctx, db.q, &rows, query, userID, page.Size, page.From); err != nil {
		return nil, fmt.Errorf("failed to list requests: %w", err)
	}
	return toRequests(rows), nil
}
