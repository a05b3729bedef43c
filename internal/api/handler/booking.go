package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/calchukom/caldepaz-sub001/internal/api"
	"github.com/calchukom/caldepaz-sub001/internal/api/middleware"
	"github.com/calchukom/caldepaz-sub001/internal/application"
	"github.com/calchukom/caldepaz-sub001/internal/domain/booking"
	"github.com/calchukom/caldepaz-sub001/internal/domain/user"
)

// BookingHandler は予約ハンドラー
type BookingHandler struct {
	service BookingServiceInterface
}

// NewBookingHandler はBookingHandlerを作成する
func NewBookingHandler(s BookingServiceInterface) *BookingHandler {
	return &BookingHandler{service: s}
}

type CreateBookingRequest struct {
	VehicleID   string    `json:"vehicle_id" validate:"required" example:"550e8400-e29b-41d4-a716-446655440000"`
	LocationID  string    `json:"location_id" validate:"required"`
	BookingDate time.Time `json:"booking_date" validate:"required"`
	ReturnDate  time.Time `json:"return_date" validate:"required"`
}

type CancelBookingRequest struct {
	Reason string `json:"reason"`
}

type BookingResponse struct {
	ID           string     `json:"id"`
	UserID       string     `json:"user_id"`
	VehicleID    string     `json:"vehicle_id"`
	LocationID   string     `json:"location_id"`
	BookingDate  time.Time  `json:"booking_date"`
	ReturnDate   time.Time  `json:"return_date"`
	TotalAmount  float64    `json:"total_amount" example:"600.00"`
	Status       string     `json:"status" example:"pending"`
	CancelReason string     `json:"cancel_reason,omitempty"`
	ConfirmedAt  *time.Time `json:"confirmed_at,omitempty"`
	ActivatedAt  *time.Time `json:"activated_at,omitempty"`
	CompletedAt  *time.Time `json:"completed_at,omitempty"`
	CancelledAt  *time.Time `json:"cancelled_at,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

func toBookingResponse(b *booking.Booking) *BookingResponse {
	return &BookingResponse{
		ID:           b.ID,
		UserID:       b.UserID,
		VehicleID:    b.VehicleID,
		LocationID:   b.LocationID,
		BookingDate:  b.BookingDate,
		ReturnDate:   b.ReturnDate,
		TotalAmount:  b.TotalAmount,
		Status:       string(b.Status),
		CancelReason: b.CancelReason,
		ConfirmedAt:  b.ConfirmedAt,
		ActivatedAt:  b.ActivatedAt,
		CompletedAt:  b.CompletedAt,
		CancelledAt:  b.CancelledAt,
		CreatedAt:    b.CreatedAt,
		UpdatedAt:    b.UpdatedAt,
	}
}

// Create godoc
// @Summary 予約を作成
// @Description 車両を指定期間で予約します。期間が重複する予約があれば 409 を返します
// @Tags bookings
// @Accept json
// @Produce json
// @Param request body CreateBookingRequest true "予約情報"
// @Success 201 {object} api.Envelope
// @Failure 400 {object} api.ErrorResponse
// @Failure 409 {object} api.ErrorResponse "期間が重複する予約が存在"
// @Router /bookings [post]
func (h *BookingHandler) Create(c echo.Context) error {
	var req CreateBookingRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "無効なリクエスト")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}
	b, err := h.service.CreateBooking(c.Request().Context(), application.CreateBookingInput{
		UserID:      middleware.UserID(c),
		VehicleID:   req.VehicleID,
		LocationID:  req.LocationID,
		BookingDate: req.BookingDate,
		ReturnDate:  req.ReturnDate,
	})
	if err != nil {
		return err
	}
	return api.OK(c, http.StatusCreated, toBookingResponse(b), "予約を作成しました")
}

// GetByID は予約を取得する。本人または管理者のみ
func (h *BookingHandler) GetByID(c echo.Context) error {
	b, err := h.service.GetBooking(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	if middleware.Role(c) != user.RoleAdmin && b.UserID != middleware.UserID(c) {
		return booking.ErrNotBookingOwner
	}
	return api.OK(c, http.StatusOK, toBookingResponse(b), "")
}

// ListMine は認証済みユーザー自身の予約一覧を返す
func (h *BookingHandler) ListMine(c echo.Context) error {
	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	offset, _ := strconv.Atoi(c.QueryParam("offset"))
	bookings, err := h.service.GetUserBookings(c.Request().Context(), middleware.UserID(c), limit, offset)
	if err != nil {
		return err
	}
	resp := make([]*BookingResponse, len(bookings))
	for i, b := range bookings {
		resp[i] = toBookingResponse(b)
	}
	return api.OKPaged(c, http.StatusOK, resp, &api.Pagination{Limit: limit, Offset: offset, Count: len(resp)})
}

// Confirm は pending の予約を confirmed に遷移させる。管理者専用
func (h *BookingHandler) Confirm(c echo.Context) error {
	b, err := h.service.ConfirmBooking(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return api.OK(c, http.StatusOK, toBookingResponse(b), "予約を確定しました")
}

// Activate は confirmed の予約を active に遷移させる（貸出開始）。管理者専用
func (h *BookingHandler) Activate(c echo.Context) error {
	b, err := h.service.ActivateBooking(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return api.OK(c, http.StatusOK, toBookingResponse(b), "貸出を開始しました")
}

// Complete は active の予約を completed に遷移させる（返却）。管理者専用
func (h *BookingHandler) Complete(c echo.Context) error {
	b, err := h.service.CompleteBooking(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return api.OK(c, http.StatusOK, toBookingResponse(b), "返却を完了しました")
}

// Cancel godoc
// @Summary 予約をキャンセル
// @Description pending / confirmed の予約をキャンセルします。本人または管理者のみ実行できます
// @Tags bookings
// @Accept json
// @Produce json
// @Param id path string true "予約ID"
// @Param request body CancelBookingRequest false "キャンセル理由"
// @Success 200 {object} api.Envelope
// @Failure 403 {object} api.ErrorResponse
// @Failure 409 {object} api.ErrorResponse "キャンセルできない状態"
// @Router /bookings/{id}/cancel [post]
func (h *BookingHandler) Cancel(c echo.Context) error {
	var req CancelBookingRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "無効なリクエスト")
	}
	b, err := h.service.CancelBooking(c.Request().Context(), application.CancelBookingInput{
		BookingID:     c.Param("id"),
		Reason:        req.Reason,
		RequesterID:   middleware.UserID(c),
		RequesterRole: middleware.Role(c),
	})
	if err != nil {
		return err
	}
	return api.OK(c, http.StatusOK, toBookingResponse(b), "予約をキャンセルしました")
}
