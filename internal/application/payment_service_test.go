package application

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/calchukom/caldepaz-sub001/internal/domain/booking"
	"github.com/calchukom/caldepaz-sub001/internal/domain/payment"
)

func testBookingFor(totalAmount float64) *booking.Booking {
	start := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	days := totalAmount / 150.0
	b := booking.NewBooking("user-1", "vehicle-1", "loc-1", start, start.Add(time.Duration(days)*24*time.Hour), 150.0)
	b.ID = "booking-1"
	return b
}

func TestPaymentService_CreatePayment(t *testing.T) {
	ctx := context.Background()
	b := testBookingFor(600)

	br := new(mockBookingRepo)
	br.On("GetByID", ctx, "booking-1").Return(b, nil)
	pr := new(mockPaymentRepo)
	pr.On("SumCompletedByBooking", ctx, mock.Anything, "booking-1").Return(0.0, nil)
	pr.On("Create", ctx, mock.Anything, mock.AnythingOfType("*payment.Payment")).Return(nil)

	svc := NewPaymentService(newMockTxManager(), pr, br, nil)
	p, err := svc.CreatePayment(ctx, CreatePaymentInput{
		BookingID: "booking-1", UserID: "user-1", Amount: 600, Method: payment.MethodCard,
	})

	require.NoError(t, err)
	assert.Equal(t, payment.StatusPending, p.Status)
	pr.AssertExpectations(t)
}

func TestPaymentService_CreatePayment_ExceedsBalance(t *testing.T) {
	ctx := context.Background()
	b := testBookingFor(600)

	br := new(mockBookingRepo)
	br.On("GetByID", ctx, "booking-1").Return(b, nil)
	pr := new(mockPaymentRepo)
	// 既に450が精算済みなので残高は150
	pr.On("SumCompletedByBooking", ctx, mock.Anything, "booking-1").Return(450.0, nil)

	svc := NewPaymentService(newMockTxManager(), pr, br, nil)
	_, err := svc.CreatePayment(ctx, CreatePaymentInput{
		BookingID: "booking-1", UserID: "user-1", Amount: 200, Method: payment.MethodCash,
	})
	assert.ErrorIs(t, err, payment.ErrAmountExceedsDue)
	pr.AssertNotCalled(t, "Create", mock.Anything, mock.Anything, mock.Anything)
}

func TestPaymentService_CreatePayment_ExactBalance(t *testing.T) {
	ctx := context.Background()
	b := testBookingFor(600)

	br := new(mockBookingRepo)
	br.On("GetByID", ctx, "booking-1").Return(b, nil)
	pr := new(mockPaymentRepo)
	pr.On("SumCompletedByBooking", ctx, mock.Anything, "booking-1").Return(450.0, nil)
	pr.On("Create", ctx, mock.Anything, mock.AnythingOfType("*payment.Payment")).Return(nil)

	// 残高ちょうどの金額は許可される
	svc := NewPaymentService(newMockTxManager(), pr, br, nil)
	_, err := svc.CreatePayment(ctx, CreatePaymentInput{
		BookingID: "booking-1", UserID: "user-1", Amount: 150, Method: payment.MethodCash,
	})
	require.NoError(t, err)
}

func TestPaymentService_CreatePayment_CancelledBooking(t *testing.T) {
	ctx := context.Background()
	b := testBookingFor(600)
	require.NoError(t, b.Cancel(""))

	br := new(mockBookingRepo)
	br.On("GetByID", ctx, "booking-1").Return(b, nil)

	svc := NewPaymentService(newMockTxManager(), new(mockPaymentRepo), br, nil)
	_, err := svc.CreatePayment(ctx, CreatePaymentInput{
		BookingID: "booking-1", UserID: "user-1", Amount: 100, Method: payment.MethodCard,
	})
	assert.ErrorIs(t, err, payment.ErrBookingNotPayable)
}

func TestPaymentService_UpdatePaymentStatus_Complete(t *testing.T) {
	ctx := context.Background()
	b := testBookingFor(600)
	p := payment.NewPayment("booking-1", "user-1", 600, payment.MethodCard)
	p.ID = "payment-1"

	pr := new(mockPaymentRepo)
	pr.On("GetByID", ctx, "payment-1").Return(p, nil)
	pr.On("SumCompletedByBooking", ctx, mock.Anything, "booking-1").Return(0.0, nil)
	pr.On("Update", ctx, mock.Anything, p).Return(nil)
	br := new(mockBookingRepo)
	br.On("GetByID", ctx, "booking-1").Return(b, nil)

	svc := NewPaymentService(newMockTxManager(), pr, br, nil)
	updated, err := svc.UpdatePaymentStatus(ctx, "payment-1", payment.StatusCompleted, "")

	require.NoError(t, err)
	assert.Equal(t, payment.StatusCompleted, updated.Status)
	assert.NotNil(t, updated.CompletedAt)
}

func TestPaymentService_UpdatePaymentStatus_CompletedIdempotent(t *testing.T) {
	ctx := context.Background()
	p := payment.NewPayment("booking-1", "user-1", 600, payment.MethodCard)
	p.ID = "payment-1"
	require.NoError(t, p.Transition(payment.StatusCompleted, ""))

	pr := new(mockPaymentRepo)
	pr.On("GetByID", ctx, "payment-1").Return(p, nil)

	// 既に完了済みなら更新クエリ自体が発行されない
	svc := NewPaymentService(newMockTxManager(), pr, new(mockBookingRepo), nil)
	updated, err := svc.UpdatePaymentStatus(ctx, "payment-1", payment.StatusCompleted, "")

	require.NoError(t, err)
	assert.Equal(t, payment.StatusCompleted, updated.Status)
	pr.AssertNotCalled(t, "Update", mock.Anything, mock.Anything, mock.Anything)
}

func TestPaymentService_UpdatePaymentStatus_CompleteExceedsBalance(t *testing.T) {
	ctx := context.Background()
	b := testBookingFor(600)
	p := payment.NewPayment("booking-1", "user-1", 300, payment.MethodCard)
	p.ID = "payment-1"

	// pending の間に別の支払いが500完了済みになっていた
	pr := new(mockPaymentRepo)
	pr.On("GetByID", ctx, "payment-1").Return(p, nil)
	pr.On("SumCompletedByBooking", ctx, mock.Anything, "booking-1").Return(500.0, nil)
	br := new(mockBookingRepo)
	br.On("GetByID", ctx, "booking-1").Return(b, nil)

	svc := NewPaymentService(newMockTxManager(), pr, br, nil)
	_, err := svc.UpdatePaymentStatus(ctx, "payment-1", payment.StatusCompleted, "")
	assert.ErrorIs(t, err, payment.ErrAmountExceedsDue)
}

func TestPaymentService_UpdatePaymentStatus_InvalidTransition(t *testing.T) {
	ctx := context.Background()
	p := payment.NewPayment("booking-1", "user-1", 600, payment.MethodCard)
	p.ID = "payment-1"
	require.NoError(t, p.Transition(payment.StatusFailed, "timeout"))

	pr := new(mockPaymentRepo)
	pr.On("GetByID", ctx, "payment-1").Return(p, nil)

	svc := NewPaymentService(newMockTxManager(), pr, new(mockBookingRepo), nil)
	_, err := svc.UpdatePaymentStatus(ctx, "payment-1", payment.StatusCompleted, "")
	assert.ErrorIs(t, err, payment.ErrInvalidTransition)
}

func TestPaymentService_OutstandingBalance(t *testing.T) {
	ctx := context.Background()
	b := testBookingFor(600)

	br := new(mockBookingRepo)
	br.On("GetByID", ctx, "booking-1").Return(b, nil)
	pr := new(mockPaymentRepo)
	pr.On("SumCompletedByBooking", ctx, mock.Anything, "booking-1").Return(450.0, nil)

	svc := NewPaymentService(newMockTxManager(), pr, br, nil)
	balance, err := svc.OutstandingBalance(ctx, "booking-1")

	require.NoError(t, err)
	assert.Equal(t, 150.0, balance)
}
