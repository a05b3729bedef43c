package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/calchukom/caldepaz-sub001/internal/domain/booking"
	"github.com/calchukom/caldepaz-sub001/internal/domain/transaction"
)

type bookingRow struct {
	ID           string     `db:"id"`
	UserID       string     `db:"user_id"`
	VehicleID    string     `db:"vehicle_id"`
	LocationID   string     `db:"location_id"`
	BookingDate  time.Time  `db:"booking_date"`
	ReturnDate   time.Time  `db:"return_date"`
	TotalAmount  float64    `db:"total_amount"`
	Status       string     `db:"status"`
	CancelReason string     `db:"cancel_reason"`
	ConfirmedAt  *time.Time `db:"confirmed_at"`
	ActivatedAt  *time.Time `db:"activated_at"`
	CompletedAt  *time.Time `db:"completed_at"`
	CancelledAt  *time.Time `db:"cancelled_at"`
	CreatedAt    time.Time  `db:"created_at"`
	UpdatedAt    time.Time  `db:"updated_at"`
}

func (r *bookingRow) toEntity() *booking.Booking {
	return &booking.Booking{
		ID: r.ID, UserID: r.UserID, VehicleID: r.VehicleID, LocationID: r.LocationID,
		BookingDate: r.BookingDate, ReturnDate: r.ReturnDate,
		TotalAmount: r.TotalAmount, Status: booking.Status(r.Status),
		CancelReason: r.CancelReason,
		ConfirmedAt:  r.ConfirmedAt, ActivatedAt: r.ActivatedAt,
		CompletedAt: r.CompletedAt, CancelledAt: r.CancelledAt,
		CreatedAt: r.CreatedAt, UpdatedAt: r.UpdatedAt,
	}
}

const bookingColumns = `id, user_id, vehicle_id, location_id, booking_date, return_date, total_amount, status, cancel_reason, confirmed_at, activated_at, completed_at, cancelled_at, created_at, updated_at`

type BookingRepository struct{ db *sqlx.DB }

func NewBookingRepository(db *sqlx.DB) *BookingRepository { return &BookingRepository{db: db} }

func (r *BookingRepository) Create(ctx context.Context, tx transaction.Tx, b *booking.Booking) error {
	sqlxTx := UnwrapTx(tx)
	query := `INSERT INTO bookings (user_id, vehicle_id, location_id, booking_date, return_date, total_amount, status, cancel_reason, created_at, updated_at) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10) RETURNING id`
	if err := sqlxTx.QueryRowContext(ctx, query, b.UserID, b.VehicleID, b.LocationID, b.BookingDate, b.ReturnDate, b.TotalAmount, string(b.Status), b.CancelReason, b.CreatedAt, b.UpdatedAt).Scan(&b.ID); err != nil {
		// 23P01: 排他制約違反（同一車両の期間重複）
		if pgErr, ok := err.(*pq.Error); ok && pgErr.Code == "23P01" {
			return booking.ErrBookingConflict
		}
		return fmt.Errorf("予約作成に失敗: %w", err)
	}
	return nil
}

func (r *BookingRepository) GetByID(ctx context.Context, id string) (*booking.Booking, error) {
	var row bookingRow
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE id = $1`
	if err := r.db.GetContext(ctx, &row, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, booking.ErrBookingNotFound
		}
		return nil, fmt.Errorf("予約取得に失敗: %w", err)
	}
	return row.toEntity(), nil
}

func (r *BookingRepository) GetByUserID(ctx context.Context, userID string, limit, offset int) ([]*booking.Booking, error) {
	var rows []bookingRow
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE user_id = $1 ORDER BY created_at DESC LIMIT $2 OFFSET $3`
	if err := r.db.SelectContext(ctx, &rows, query, userID, limit, offset); err != nil {
		return nil, fmt.Errorf("予約一覧取得に失敗: %w", err)
	}
	return toBookings(rows), nil
}

func (r *BookingRepository) Update(ctx context.Context, tx transaction.Tx, b *booking.Booking) error {
	sqlxTx := UnwrapTx(tx)
	query := `UPDATE bookings SET status = $1, cancel_reason = $2, confirmed_at = $3, activated_at = $4, completed_at = $5, cancelled_at = $6, updated_at = $7 WHERE id = $8`
	result, err := sqlxTx.ExecContext(ctx, query, string(b.Status), b.CancelReason, b.ConfirmedAt, b.ActivatedAt, b.CompletedAt, b.CancelledAt, b.UpdatedAt, b.ID)
	if err != nil {
		if pgErr, ok := err.(*pq.Error); ok && pgErr.Code == "23P01" {
			return booking.ErrBookingConflict
		}
		return fmt.Errorf("予約更新に失敗: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return booking.ErrBookingNotFound
	}
	return nil
}

func (r *BookingRepository) CountOverlapping(ctx context.Context, tx transaction.Tx, vehicleID string, bookingDate, returnDate time.Time, excludeID string) (int, error) {
	sqlxTx := UnwrapTx(tx)
	// 行ロックを取ってから数える（同時リクエストの read-then-write 競合を防ぐ）
	query := `SELECT COUNT(*) FROM (
		SELECT id FROM bookings
		WHERE vehicle_id = $1
		  AND status IN ('confirmed', 'active')
		  AND booking_date < $3
		  AND return_date > $2
		  AND ($4 = '' OR id::text <> $4)
		FOR UPDATE
	) AS overlapping`
	var count int
	if err := sqlxTx.GetContext(ctx, &count, query, vehicleID, bookingDate, returnDate, excludeID); err != nil {
		return 0, fmt.Errorf("重複予約チェックに失敗: %w", err)
	}
	return count, nil
}

func (r *BookingRepository) GetBlockingByVehicle(ctx context.Context, vehicleID string) ([]*booking.Booking, error) {
	var rows []bookingRow
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE vehicle_id = $1 AND status IN ('confirmed', 'active') ORDER BY booking_date`
	if err := r.db.SelectContext(ctx, &rows, query, vehicleID); err != nil {
		return nil, fmt.Errorf("占有予約取得に失敗: %w", err)
	}
	return toBookings(rows), nil
}

func (r *BookingRepository) GetOverduePending(ctx context.Context, now time.Time) ([]*booking.Booking, error) {
	var rows []bookingRow
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE status = 'pending' AND booking_date < $1`
	if err := r.db.SelectContext(ctx, &rows, query, now); err != nil {
		return nil, fmt.Errorf("期限切れ保留予約取得に失敗: %w", err)
	}
	return toBookings(rows), nil
}

func (r *BookingRepository) GetOverdueActive(ctx context.Context, now time.Time) ([]*booking.Booking, error) {
	var rows []bookingRow
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE status = 'active' AND return_date < $1`
	if err := r.db.SelectContext(ctx, &rows, query, now); err != nil {
		return nil, fmt.Errorf("返却期限超過予約取得に失敗: %w", err)
	}
	return toBookings(rows), nil
}

func (r *BookingRepository) ExistsByLocation(ctx context.Context, locationID string) (bool, error) {
	var exists bool
	query := `SELECT EXISTS(SELECT 1 FROM bookings WHERE location_id = $1)`
	if err := r.db.GetContext(ctx, &exists, query, locationID); err != nil {
		return false, fmt.Errorf("拠点参照チェックに失敗: %w", err)
	}
	return exists, nil
}

func toBookings(rows []bookingRow) []*booking.Booking {
	result := make([]*booking.Booking, len(rows))
	for i := range rows {
		result[i] = rows[i].toEntity()
	}
	return result
}

var _ booking.Repository = (*BookingRepository)(nil)
