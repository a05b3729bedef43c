package application

import (
	"context"
	"fmt"

	"github.com/calchukom/caldepaz-sub001/internal/domain/booking"
	"github.com/calchukom/caldepaz-sub001/internal/domain/payment"
	"github.com/calchukom/caldepaz-sub001/internal/domain/transaction"
	"github.com/calchukom/caldepaz-sub001/internal/pkg/metrics"
)

type PaymentService struct {
	txManager   transaction.Manager
	paymentRepo payment.Repository
	bookingRepo booking.Repository
	metrics     *metrics.Metrics
}

func NewPaymentService(
	tm transaction.Manager,
	pr payment.Repository,
	br booking.Repository,
	m *metrics.Metrics,
) *PaymentService {
	return &PaymentService{
		txManager:   tm,
		paymentRepo: pr,
		bookingRepo: br,
		metrics:     m,
	}
}

type CreatePaymentInput struct {
	BookingID string
	UserID    string
	Amount    float64
	Method    payment.Method
}

// CreatePayment は新しい支払いを pending 状態で作成する
// 金額は予約の未払い残高（total_amount − completed 支払いの合計）を超えられない
func (s *PaymentService) CreatePayment(ctx context.Context, input CreatePaymentInput) (*payment.Payment, error) {
	b, err := s.bookingRepo.GetByID(ctx, input.BookingID)
	if err != nil {
		return nil, err
	}
	if b.Status == booking.StatusCancelled {
		return nil, payment.ErrBookingNotPayable
	}

	p := payment.NewPayment(input.BookingID, input.UserID, input.Amount, input.Method)
	if err := p.Validate(); err != nil {
		return nil, err
	}

	tx, err := s.txManager.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("トランザクション開始に失敗: %w", err)
	}
	defer tx.Rollback()

	settled, err := s.paymentRepo.SumCompletedByBooking(ctx, tx, input.BookingID)
	if err != nil {
		return nil, err
	}
	if input.Amount > b.TotalAmount-settled {
		return nil, payment.ErrAmountExceedsDue
	}

	if err := s.paymentRepo.Create(ctx, tx, p); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("コミットに失敗: %w", err)
	}
	return p, nil
}

// UpdatePaymentStatus は支払いステータスを遷移させる
// completed への遷移は冪等で、残高への二重計上は起こらない
func (s *PaymentService) UpdatePaymentStatus(ctx context.Context, id string, status payment.Status, failureReason string) (*payment.Payment, error) {
	p, err := s.paymentRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	// 既に completed のものへの completed 適用は何もしない
	if p.Status == payment.StatusCompleted && status == payment.StatusCompleted {
		return p, nil
	}
	if err := p.Transition(status, failureReason); err != nil {
		return nil, err
	}

	tx, err := s.txManager.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("トランザクション開始に失敗: %w", err)
	}
	defer tx.Rollback()

	// 完了時は残高を再検証する（pending のまま別の支払いが先に完了した場合に備える）
	if status == payment.StatusCompleted {
		b, err := s.bookingRepo.GetByID(ctx, p.BookingID)
		if err != nil {
			return nil, err
		}
		settled, err := s.paymentRepo.SumCompletedByBooking(ctx, tx, p.BookingID)
		if err != nil {
			return nil, err
		}
		if p.Amount > b.TotalAmount-settled {
			return nil, payment.ErrAmountExceedsDue
		}
	}

	if err := s.paymentRepo.Update(ctx, tx, p); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("コミットに失敗: %w", err)
	}

	if s.metrics != nil {
		s.metrics.PaymentsTotal.WithLabelValues(string(p.Status)).Inc()
	}
	return p, nil
}

func (s *PaymentService) GetPayment(ctx context.Context, id string) (*payment.Payment, error) {
	return s.paymentRepo.GetByID(ctx, id)
}

func (s *PaymentService) GetBookingPayments(ctx context.Context, bookingID string) ([]*payment.Payment, error) {
	if _, err := s.bookingRepo.GetByID(ctx, bookingID); err != nil {
		return nil, err
	}
	return s.paymentRepo.GetByBookingID(ctx, bookingID)
}

// OutstandingBalance は予約の未払い残高を返す
func (s *PaymentService) OutstandingBalance(ctx context.Context, bookingID string) (float64, error) {
	b, err := s.bookingRepo.GetByID(ctx, bookingID)
	if err != nil {
		return 0, err
	}

	tx, err := s.txManager.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("トランザクション開始に失敗: %w", err)
	}
	defer tx.Rollback()

	settled, err := s.paymentRepo.SumCompletedByBooking(ctx, tx, bookingID)
	if err != nil {
		return 0, err
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("コミットに失敗: %w", err)
	}
	return b.TotalAmount - settled, nil
}
