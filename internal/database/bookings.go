package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"shareit/internal/domain"
	"shareit/internal/models"

	"github.com/jmoiron/sqlx"
)

type bookingRow struct {
	ID       int64  `db:"id"`
	ItemID   int64  `db:"item_id"`
	ItemName string `db:"item_name"`
	OwnerID  int64  `db:"owner_id"`
	BookerID int64  `db:"booker_id"`
	StartTS  int64  `db:"start_ts"`
	EndTS    int64  `db:"end_ts"`
	Status   string `db:"status"`
}

func (r *bookingRow) toModel() *models.Booking {
	return &models.Booking{
		ID:       r.ID,
		ItemID:   r.ItemID,
		ItemName: r.ItemName,
		OwnerID:  r.OwnerID,
		BookerID: r.BookerID,
		Start:    time.Unix(r.StartTS, 0),
		End:      time.Unix(r.EndTS, 0),
		Status:   models.BookingStatus(r.Status),
	}
}

const bookingSelect = `SELECT b.id, b.item_id, i.name AS item_name, i.owner_id, b.booker_id,
	b.start_ts, b.end_ts, b.status
	FROM bookings b JOIN items i ON i.id = b.item_id`

func (db *DB) CreateBooking(ctx context.Context, booking *models.Booking) error {
	query := `INSERT INTO bookings (item_id, booker_id, start_ts, end_ts, status) VALUES (?, ?, ?, ?, ?)`
	result, err := db.q.ExecContext(ctx, query,
		booking.ItemID,
		booking.BookerID,
		booking.Start.Unix(),
		booking.End.Unix(),
		string(booking.Status),
	)
	if err != nil {
		return fmt.Errorf("failed to create booking: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}
	booking.ID = id
	return nil
}

func (db *DB) GetBooking(ctx context.Context, id int64) (*models.Booking, error) {
	var row bookingRow
	if err := sqlx.GetContext(ctx, db.q, &row, bookingSelect+` WHERE b.id = ?`, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: booking %d", domain.ErrNotFound, id)
		}
		return nil, fmt.Errorf("failed to get booking: %w", err)
	}
	return row.toModel(), nil
}

func (db *DB) DecideBooking(ctx context.Context, id int64, status models.BookingStatus) error {
	query := `UPDATE bookings SET status = ? WHERE id = ? AND status = ?`
	result, err := db.q.ExecContext(ctx, query, string(status), id, string(models.StatusWaiting))
	if err != nil {
		return fmt.Errorf("failed to update booking status: %w", err)
	}

	rows, err := affected(result)
	if err != nil {
		return err
	}
	if rows == 0 {
		return fmt.Errorf("%w: booking %d has already been decided", domain.ErrConflict, id)
	}
	return nil
}

// ListBookings returns one page ordered by start, newest first.
func (db *DB) ListBookings(ctx context.Context, filter models.BookingFilter) ([]*models.Booking, error) {
	var (
		conds []string
		args  []interface{}
	)
	if filter.BookerID != 0 {
		conds = append(conds, "b.booker_id = ?")
		args = append(args, filter.BookerID)
	}
	if filter.OwnerID != 0 {
		conds = append(conds, "i.owner_id = ?")
		args = append(args, filter.OwnerID)
	}

	now := filter.Now.Unix()
	switch filter.State {
	case models.StateAll:
	case models.StateCurrent:
		conds = append(conds, "b.start_ts <= ? AND b.end_ts >= ?")
		args = append(args, now, now)
	case models.StatePast:
		conds = append(conds, "b.end_ts < ?")
		args = append(args, now)
	case models.StateFuture:
		conds = append(conds, "b.start_ts > ?")
		args = append(args, now)
	case models.StateWaiting, models.StateRejected:
		status, _ := filter.State.Status()
		conds = append(conds, "b.status = ?")
		args = append(args, string(status))
	default:
		return nil, fmt.Errorf("%w: unknown state %s", domain.ErrValidation, filter.State)
	}

	query := bookingSelect
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY b.start_ts DESC, b.id DESC LIMIT ? OFFSET ?"
	args = append(args, filter.Page.Size, filter.Page.From)

	var rows []bookingRow
	if err := sqlx.SelectContext(ctx, db.q, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list bookings: %w", err)
	}

	bookings := make([]*models.Booking, 0, len(rows))
	for i := range rows {
		bookings = append(bookings, rows[i].toModel())
	}
	return bookings, nil
}

func (db *DB) ExistsCompletedApprovedBooking(ctx context.Context, itemID, userID int64, asOf time.Time) (bool, error) {
	query := `SELECT EXISTS (
		SELECT 1 FROM bookings
		WHERE item_id = ? AND booker_id = ? AND status = ? AND end_ts < ?
	)`
	var exists bool
	err := sqlx.GetContext(ctx, db.q, &exists, query, itemID, userID, string(models.StatusApproved), asOf.Unix())
	if err != nil {
		return false, fmt.Errorf("failed to check completed bookings: %w", err)
	}
	return exists, nil
}

// LastApprovedBooking is the most recently finished approved booking, or nil.
func (db *DB) LastApprovedBooking(ctx context.Context, itemID int64, now time.Time) (*models.BookingRef, error) {
	query := `SELECT id, booker_id FROM bookings
		WHERE item_id = ? AND status = ? AND end_ts < ?
		ORDER BY end_ts DESC, id DESC LIMIT 1`
	return db.bookingRef(ctx, query, itemID, string(models.StatusApproved), now.Unix())
}

// NextApprovedBooking is the earliest approved booking that has not started, or nil.
func (db *DB) NextApprovedBooking(ctx context.Context, itemID int64, now time.Time) (*models.BookingRef, error) {
	query := `SELECT id, booker_id FROM bookings
		WHERE item_id = ? AND status = ? AND start_ts > ?
		ORDER BY start_ts ASC, id ASC LIMIT 1`
	return db.bookingRef(ctx, query, itemID, string(models.StatusApproved), now.Unix())
}

func (db *DB) bookingRef(ctx context.Context, query string, args ...interface{}) (*models.BookingRef, error) {
	var ref models.BookingRef
	if err := sqlx.GetContext(ctx, db.q, &ref, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get adjacent booking: %w", err)
	}
	return &ref, nil
}
