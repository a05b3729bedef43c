package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/calchukom/caldepaz-sub001/internal/domain/payment"
	"github.com/calchukom/caldepaz-sub001/internal/domain/transaction"
)

type paymentRow struct {
	ID            string     `db:"id"`
	BookingID     string     `db:"booking_id"`
	UserID        string     `db:"user_id"`
	Amount        float64    `db:"amount"`
	Method        string     `db:"method"`
	Status        string     `db:"status"`
	FailureReason string     `db:"failure_reason"`
	CompletedAt   *time.Time `db:"completed_at"`
	CreatedAt     time.Time  `db:"created_at"`
	UpdatedAt     time.Time  `db:"updated_at"`
}

func (r *paymentRow) toEntity() *payment.Payment {
	return &payment.Payment{
		ID: r.ID, BookingID: r.BookingID, UserID: r.UserID,
		Amount: r.Amount, Method: payment.Method(r.Method),
		Status: payment.Status(r.Status), FailureReason: r.FailureReason,
		CompletedAt: r.CompletedAt, CreatedAt: r.CreatedAt, UpdatedAt: r.UpdatedAt,
	}
}

const paymentColumns = `id, booking_id, user_id, amount, method, status, failure_reason, completed_at, created_at, updated_at`

type PaymentRepository struct{ db *sqlx.DB }

func NewPaymentRepository(db *sqlx.DB) *PaymentRepository { return &PaymentRepository{db: db} }

func (r *PaymentRepository) Create(ctx context.Context, tx transaction.Tx, p *payment.Payment) error {
	sqlxTx := UnwrapTx(tx)
	query := `INSERT INTO payments (booking_id, user_id, amount, method, status, failure_reason, created_at, updated_at) VALUES ($1, $2, $3, $4, $5, $6, $7, $8) RETURNING id`
	if err := sqlxTx.QueryRowContext(ctx, query, p.BookingID, p.UserID, p.Amount, string(p.Method), string(p.Status), p.FailureReason, p.CreatedAt, p.UpdatedAt).Scan(&p.ID); err != nil {
		return fmt.Errorf("支払い作成に失敗: %w", err)
	}
	return nil
}

func (r *PaymentRepository) GetByID(ctx context.Context, id string) (*payment.Payment, error) {
	var row paymentRow
	query := `SELECT ` + paymentColumns + ` FROM payments WHERE id = $1`
	if err := r.db.GetContext(ctx, &row, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, payment.ErrPaymentNotFound
		}
		return nil, fmt.Errorf("支払い取得に失敗: %w", err)
	}
	return row.toEntity(), nil
}

func (r *PaymentRepository) GetByBookingID(ctx context.Context, bookingID string) ([]*payment.Payment, error) {
	var rows []paymentRow
	query := `SELECT ` + paymentColumns + ` FROM payments WHERE booking_id = $1 ORDER BY created_at`
	if err := r.db.SelectContext(ctx, &rows, query, bookingID); err != nil {
		return nil, fmt.Errorf("支払い一覧取得に失敗: %w", err)
	}
	payments := make([]*payment.Payment, len(rows))
	for i := range rows {
		payments[i] = rows[i].toEntity()
	}
	return payments, nil
}

func (r *PaymentRepository) Update(ctx context.Context, tx transaction.Tx, p *payment.Payment) error {
	sqlxTx := UnwrapTx(tx)
	query := `UPDATE payments SET status = $1, failure_reason = $2, completed_at = $3, updated_at = $4 WHERE id = $5`
	result, err := sqlxTx.ExecContext(ctx, query, string(p.Status), p.FailureReason, p.CompletedAt, p.UpdatedAt, p.ID)
	if err != nil {
		return fmt.Errorf("支払い更新に失敗: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return payment.ErrPaymentNotFound
	}
	return nil
}

func (r *PaymentRepository) SumCompletedByBooking(ctx context.Context, tx transaction.Tx, bookingID string) (float64, error) {
	sqlxTx := UnwrapTx(tx)
	// 残高検証と同一トランザクションで行ロックを取る
	query := `SELECT COALESCE(SUM(amount), 0) FROM (
		SELECT amount FROM payments
		WHERE booking_id = $1 AND status = 'completed'
		FOR UPDATE
	) AS settled`
	var sum float64
	if err := sqlxTx.GetContext(ctx, &sum, query, bookingID); err != nil {
		return 0, fmt.Errorf("精算済み金額取得に失敗: %w", err)
	}
	return sum, nil
}

var _ payment.Repository = (*PaymentRepository)(nil)
