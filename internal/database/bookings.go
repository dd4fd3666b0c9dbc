package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"odolzhi/internal/models"
)

const bookingColumns = `b.id, b.booker_id, u.name, b.item_id, i.name,
	                 b.start_date, b.end_date, b.status, b.created_at, b.updated_at`

const bookingJoins = `FROM bookings b
              JOIN users u ON u.id = b.booker_id
              JOIN items i ON i.id = b.item_id`

func scanBooking(row interface{ Scan(...any) error }) (*models.Booking, error) {
	b := &models.Booking{}
	var startStr, endStr, createdStr, updatedStr string
	err := row.Scan(
		&b.ID, &b.BookerID, &b.BookerName, &b.ItemID, &b.ItemName,
		&startStr, &endStr, &b.Status, &createdStr, &updatedStr,
	)
	if err != nil {
		return nil, err
	}

	for _, f := range []struct {
		dst *time.Time
		src string
	}{
		{&b.Start, startStr},
		{&b.End, endStr},
		{&b.CreatedAt, createdStr},
		{&b.UpdatedAt, updatedStr},
	} {
		t, err := parseTime(f.src)
		if err != nil {
			return nil, fmt.Errorf("failed to parse booking time %q: %w", f.src, err)
		}
		*f.dst = t
	}
	return b, nil
}

func (db *DB) queryBookings(ctx context.Context, query string, args ...any) ([]*models.Booking, error) {
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query bookings: %w", err)
	}
	defer rows.Close()

	var bookings []*models.Booking
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan booking: %w", err)
		}
		bookings = append(bookings, b)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return bookings, nil
}

// CreateBooking вставляет бронирование, повторно проверяя доступность вещи
// внутри транзакции: параллельная смена флага available не даст создать
// бронирование на закрытую вещь.
func (db *DB) CreateBooking(ctx context.Context, booking *models.Booking) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	var available bool
	err = tx.QueryRowContext(ctx, `SELECT available FROM items WHERE id = ?`, booking.ItemID).Scan(&available)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrItemNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to check item in tx: %w", err)
	}
	if !available {
		return ErrNotAvailable
	}

	now := time.Now()
	result, err := tx.ExecContext(ctx,
		`INSERT INTO bookings (booker_id, item_id, start_date, end_date, status, created_at, updated_at)
         VALUES (?, ?, ?, ?, ?, ?, ?)`,
		booking.BookerID,
		booking.ItemID,
		fmtTime(booking.Start),
		fmtTime(booking.End),
		booking.Status,
		fmtTime(now),
		fmtTime(now),
	)
	if err != nil {
		return fmt.Errorf("failed to insert booking: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}
	booking.ID = id
	booking.CreatedAt = now.UTC().Truncate(time.Second)
	booking.UpdatedAt = booking.CreatedAt

	return tx.Commit()
}

func (db *DB) GetBooking(ctx context.Context, id int64) (*models.Booking, error) {
	query := `SELECT ` + bookingColumns + ` ` + bookingJoins + ` WHERE b.id = ?`
	booking, err := scanBooking(db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrBookingNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get booking: %w", err)
	}
	return booking, nil
}

func (db *DB) UpdateBookingStatus(ctx context.Context, id int64, status string) error {
	query := `UPDATE bookings SET status = ?, updated_at = ? WHERE id = ?`
	result, err := db.ExecContext(ctx, query, status, fmtTime(time.Now()), id)
	if err != nil {
		return fmt.Errorf("failed to update booking status: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return ErrBookingNotFound
	}
	return nil
}

func (db *DB) GetBookingsByBooker(ctx context.Context, bookerID int64) ([]*models.Booking, error) {
	query := `SELECT ` + bookingColumns + ` ` + bookingJoins + `
              WHERE b.booker_id = ? ORDER BY b.start_date ASC`
	return db.queryBookings(ctx, query, bookerID)
}

func (db *DB) GetBookingsByBookerAndStatus(ctx context.Context, bookerID int64, status string) ([]*models.Booking, error) {
	query := `SELECT ` + bookingColumns + ` ` + bookingJoins + `
              WHERE b.booker_id = ? AND b.status = ? ORDER BY b.start_date ASC`
	return db.queryBookings(ctx, query, bookerID, status)
}

func (db *DB) GetBookingsByBookerCurrent(ctx context.Context, bookerID int64, now time.Time) ([]*models.Booking, error) {
	query := `SELECT ` + bookingColumns + ` ` + bookingJoins + `
              WHERE b.booker_id = ? AND b.start_date <= ? AND b.end_date > ? ORDER BY b.start_date ASC`
	return db.queryBookings(ctx, query, bookerID, fmtTime(now), fmtTime(now))
}

func (db *DB) GetBookingsByBookerPast(ctx context.Context, bookerID int64, now time.Time) ([]*models.Booking, error) {
	query := `SELECT ` + bookingColumns + ` ` + bookingJoins + `
              WHERE b.booker_id = ? AND b.end_date < ? ORDER BY b.start_date ASC`
	return db.queryBookings(ctx, query, bookerID, fmtTime(now))
}

func (db *DB) GetBookingsByBookerFuture(ctx context.Context, bookerID int64, now time.Time) ([]*models.Booking, error) {
	query := `SELECT ` + bookingColumns + ` ` + bookingJoins + `
              WHERE b.booker_id = ? AND b.start_date > ? ORDER BY b.start_date ASC`
	return db.queryBookings(ctx, query, bookerID, fmtTime(now))
}

func (db *DB) GetBookingsByOwner(ctx context.Context, ownerID int64) ([]*models.Booking, error) {
	query := `SELECT ` + bookingColumns + ` ` + bookingJoins + `
              WHERE i.owner_id = ? ORDER BY b.start_date ASC`
	return db.queryBookings(ctx, query, ownerID)
}

func (db *DB) GetBookingsByOwnerAndStatus(ctx context.Context, ownerID int64, status string) ([]*models.Booking, error) {
	query := `SELECT ` + bookingColumns + ` ` + bookingJoins + `
              WHERE i.owner_id = ? AND b.status = ? ORDER BY b.start_date ASC`
	return db.queryBookings(ctx, query, ownerID, status)
}

func (db *DB) GetBookingsByOwnerCurrent(ctx context.Context, ownerID int64, now time.Time) ([]*models.Booking, error) {
	query := `SELECT ` + bookingColumns + ` ` + bookingJoins + `
              WHERE i.owner_id = ? AND b.start_date <= ? AND b.end_date > ? ORDER BY b.start_date ASC`
	return db.queryBookings(ctx, query, ownerID, fmtTime(now), fmtTime(now))
}

func (db *DB) GetBookingsByOwnerPast(ctx context.Context, ownerID int64, now time.Time) ([]*models.Booking, error) {
	query := `SELECT ` + bookingColumns + ` ` + bookingJoins + `
              WHERE i.owner_id = ? AND b.end_date < ? ORDER BY b.start_date ASC`
	return db.queryBookings(ctx, query, ownerID, fmtTime(now))
}

func (db *DB) GetBookingsByOwnerFuture(ctx context.Context, ownerID int64, now time.Time) ([]*models.Booking, error) {
	query := `SELECT ` + bookingColumns + ` ` + bookingJoins + `
              WHERE i.owner_id = ? AND b.start_date > ? ORDER BY b.start_date ASC`
	return db.queryBookings(ctx, query, ownerID, fmtTime(now))
}

func (db *DB) GetBookingsByItem(ctx context.Context, itemID int64) ([]*models.Booking, error) {
	query := `SELECT ` + bookingColumns + ` ` + bookingJoins + `
              WHERE b.item_id = ? ORDER BY b.start_date ASC`
	return db.queryBookings(ctx, query, itemID)
}

// GetAllBookings возвращает все бронирования, используется экспортом.
func (db *DB) GetAllBookings(ctx context.Context) ([]*models.Booking, error) {
	query := `SELECT ` + bookingColumns + ` ` + bookingJoins + ` ORDER BY b.start_date ASC`
	return db.queryBookings(ctx, query)
}

// HasFinishedBooking сообщает, есть ли у пользователя подтвержденное
// бронирование вещи, закончившееся до now. Используется для допуска отзывов.
func (db *DB) HasFinishedBooking(ctx context.Context, bookerID, itemID int64, now time.Time) (bool, error) {
	query := `SELECT COUNT(*) FROM bookings
              WHERE booker_id = ? AND item_id = ? AND status = ? AND end_date < ?`
	var count int
	err := db.QueryRowContext(ctx, query, bookerID, itemID, models.StatusApproved, fmtTime(now)).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("failed to check finished bookings: %w", err)
	}
	return count > 0, nil
}
