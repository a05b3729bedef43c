package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/calchukom/caldepaz-sub001/internal/api"
	"github.com/calchukom/caldepaz-sub001/internal/api/middleware"
	"github.com/calchukom/caldepaz-sub001/internal/application"
	"github.com/calchukom/caldepaz-sub001/internal/domain/payment"
)

// PaymentHandler は支払いハンドラー
type PaymentHandler struct {
	service PaymentServiceInterface
}

// NewPaymentHandler はPaymentHandlerを作成する
func NewPaymentHandler(s PaymentServiceInterface) *PaymentHandler {
	return &PaymentHandler{service: s}
}

type CreatePaymentRequest struct {
	BookingID string  `json:"booking_id" validate:"required"`
	Amount    float64 `json:"amount" validate:"required,gt=0" example:"600.00"`
	Method    string  `json:"method" validate:"required,oneof=card mobile_money bank_transfer cash" example:"card"`
}

type UpdatePaymentStatusRequest struct {
	Status        string `json:"status" validate:"required,oneof=pending processing completed failed refunded"`
	FailureReason string `json:"failure_reason"`
}

type PaymentResponse struct {
	ID            string     `json:"id"`
	BookingID     string     `json:"booking_id"`
	UserID        string     `json:"user_id"`
	Amount        float64    `json:"amount"`
	Method        string     `json:"method"`
	Status        string     `json:"status" example:"pending"`
	FailureReason string     `json:"failure_reason,omitempty"`
	CompletedAt   *time.Time `json:"completed_at,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

func toPaymentResponse(p *payment.Payment) *PaymentResponse {
	return &PaymentResponse{
		ID:            p.ID,
		BookingID:     p.BookingID,
		UserID:        p.UserID,
		Amount:        p.Amount,
		Method:        string(p.Method),
		Status:        string(p.Status),
		FailureReason: p.FailureReason,
		CompletedAt:   p.CompletedAt,
		CreatedAt:     p.CreatedAt,
		UpdatedAt:     p.UpdatedAt,
	}
}

// Create godoc
// @Summary 支払いを作成
// @Description 予約に対する支払いを pending 状態で作成します。金額は未払い残高を超えられません
// @Tags payments
// @Accept json
// @Produce json
// @Param request body CreatePaymentRequest true "支払い情報"
// @Success 201 {object} api.Envelope
// @Failure 400 {object} api.ErrorResponse "金額が未払い残高を超過"
// @Failure 409 {object} api.ErrorResponse "キャンセル済み予約への支払い"
// @Router /payments [post]
func (h *PaymentHandler) Create(c echo.Context) error {
	var req CreatePaymentRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "無効なリクエスト")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}
	p, err := h.service.CreatePayment(c.Request().Context(), application.CreatePaymentInput{
		BookingID: req.BookingID,
		UserID:    middleware.UserID(c),
		Amount:    req.Amount,
		Method:    payment.Method(req.Method),
	})
	if err != nil {
		return err
	}
	return api.OK(c, http.StatusCreated, toPaymentResponse(p), "支払いを作成しました")
}

// GetByID は支払いを取得する
func (h *PaymentHandler) GetByID(c echo.Context) error {
	p, err := h.service.GetPayment(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return api.OK(c, http.StatusOK, toPaymentResponse(p), "")
}

// ListByBooking は予約に紐づく支払い一覧と未払い残高を返す
func (h *PaymentHandler) ListByBooking(c echo.Context) error {
	bookingID := c.Param("id")
	payments, err := h.service.GetBookingPayments(c.Request().Context(), bookingID)
	if err != nil {
		return err
	}
	balance, err := h.service.OutstandingBalance(c.Request().Context(), bookingID)
	if err != nil {
		return err
	}
	resp := make([]*PaymentResponse, len(payments))
	for i, p := range payments {
		resp[i] = toPaymentResponse(p)
	}
	return api.OK(c, http.StatusOK, map[string]interface{}{
		"payments":            resp,
		"outstanding_balance": balance,
	}, "")
}

// UpdateStatus は支払いステータスを遷移させる。管理者専用
// completed への遷移は冪等で、二重適用しても金額は変わらない
func (h *PaymentHandler) UpdateStatus(c echo.Context) error {
	var req UpdatePaymentStatusRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "無効なリクエスト")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}
	p, err := h.service.UpdatePaymentStatus(c.Request().Context(), c.Param("id"), payment.Status(req.Status), req.FailureReason)
	if err != nil {
		return err
	}
	return api.OK(c, http.StatusOK, toPaymentResponse(p), "支払いステータスを更新しました")
}
