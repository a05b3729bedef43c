package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/calchukom/caldepaz-sub001/internal/api"
	"github.com/calchukom/caldepaz-sub001/internal/api/middleware"
	"github.com/calchukom/caldepaz-sub001/internal/application"
	"github.com/calchukom/caldepaz-sub001/internal/domain/booking"
	"github.com/calchukom/caldepaz-sub001/internal/domain/user"
)

// MockBookingService はBookingServiceInterfaceのモック
type MockBookingService struct {
	mock.Mock
}

func (m *MockBookingService) CreateBooking(ctx context.Context, input application.CreateBookingInput) (*booking.Booking, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*booking.Booking), args.Error(1)
}

func (m *MockBookingService) GetBooking(ctx context.Context, id string) (*booking.Booking, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*booking.Booking), args.Error(1)
}

func (m *MockBookingService) GetUserBookings(ctx context.Context, userID string, limit, offset int) ([]*booking.Booking, error) {
	args := m.Called(ctx, userID, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*booking.Booking), args.Error(1)
}

func (m *MockBookingService) ConfirmBooking(ctx context.Context, id string) (*booking.Booking, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*booking.Booking), args.Error(1)
}

func (m *MockBookingService) ActivateBooking(ctx context.Context, id string) (*booking.Booking, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*booking.Booking), args.Error(1)
}

func (m *MockBookingService) CompleteBooking(ctx context.Context, id string) (*booking.Booking, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*booking.Booking), args.Error(1)
}

func (m *MockBookingService) CancelBooking(ctx context.Context, input application.CancelBookingInput) (*booking.Booking, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*booking.Booking), args.Error(1)
}

func testBooking(status booking.Status) *booking.Booking {
	now := time.Now()
	return &booking.Booking{
		ID:          "booking-123",
		UserID:      "user-123",
		VehicleID:   "vehicle-123",
		LocationID:  "loc-123",
		BookingDate: time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC),
		ReturnDate:  time.Date(2026, 3, 5, 10, 0, 0, 0, time.UTC),
		TotalAmount: 600,
		Status:      status,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

func TestBookingHandler_Create(t *testing.T) {
	e := NewTestEcho()

	t.Run("正常に予約を作成できる", func(t *testing.T) {
		mockService := new(MockBookingService)
		mockService.On("CreateBooking", mock.Anything, mock.AnythingOfType("application.CreateBookingInput")).
			Return(testBooking(booking.StatusPending), nil)

		handler := NewBookingHandler(mockService)

		reqBody := `{
			"vehicle_id": "vehicle-123",
			"location_id": "loc-123",
			"booking_date": "2026-03-01T10:00:00Z",
			"return_date": "2026-03-05T10:00:00Z"
		}`
		req := httptest.NewRequest(http.MethodPost, "/bookings", strings.NewReader(reqBody))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)
		c.Set(middleware.ContextKeyUserID, "user-123")
		c.Set(middleware.ContextKeyRole, string(user.RoleUser))

		err := handler.Create(c)

		require.NoError(t, err)
		assert.Equal(t, http.StatusCreated, rec.Code)

		var resp api.Envelope
		err = json.Unmarshal(rec.Body.Bytes(), &resp)
		require.NoError(t, err)
		assert.True(t, resp.Success)

		mockService.AssertExpectations(t)
	})

	t.Run("必須項目が欠けている場合400", func(t *testing.T) {
		mockService := new(MockBookingService)
		handler := NewBookingHandler(mockService)

		reqBody := `{"vehicle_id": "vehicle-123"}`
		req := httptest.NewRequest(http.MethodPost, "/bookings", strings.NewReader(reqBody))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)
		c.Set(middleware.ContextKeyUserID, "user-123")

		err := handler.Create(c)

		require.Error(t, err)
		he, ok := err.(*echo.HTTPError)
		require.True(t, ok)
		assert.Equal(t, http.StatusBadRequest, he.Code)
		mockService.AssertNotCalled(t, "CreateBooking", mock.Anything, mock.Anything)
	})

	t.Run("期間が重複する場合409のエンベロープを返す", func(t *testing.T) {
		mockService := new(MockBookingService)
		mockService.On("CreateBooking", mock.Anything, mock.Anything).
			Return(nil, booking.ErrBookingConflict)

		handler := NewBookingHandler(mockService)
		e.POST("/bookings", handler.Create, func(next echo.HandlerFunc) echo.HandlerFunc {
			return func(c echo.Context) error {
				c.Set(middleware.ContextKeyUserID, "user-123")
				return next(c)
			}
		})

		reqBody := `{
			"vehicle_id": "vehicle-123",
			"location_id": "loc-123",
			"booking_date": "2026-03-01T10:00:00Z",
			"return_date": "2026-03-05T10:00:00Z"
		}`
		req := httptest.NewRequest(http.MethodPost, "/bookings", strings.NewReader(reqBody))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusConflict, rec.Code)

		var resp api.ErrorResponse
		err := json.Unmarshal(rec.Body.Bytes(), &resp)
		require.NoError(t, err)
		assert.False(t, resp.Success)
		assert.Equal(t, api.CodeConflict, resp.Error)

		mockService.AssertExpectations(t)
	})
}

func TestBookingHandler_GetByID(t *testing.T) {
	e := NewTestEcho()

	t.Run("本人は自分の予約を取得できる", func(t *testing.T) {
		mockService := new(MockBookingService)
		mockService.On("GetBooking", mock.Anything, "booking-123").Return(testBooking(booking.StatusConfirmed), nil)

		handler := NewBookingHandler(mockService)

		req := httptest.NewRequest(http.MethodGet, "/bookings/booking-123", nil)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)
		c.SetParamNames("id")
		c.SetParamValues("booking-123")
		c.Set(middleware.ContextKeyUserID, "user-123")
		c.Set(middleware.ContextKeyRole, string(user.RoleUser))

		err := handler.GetByID(c)

		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, rec.Code)
		mockService.AssertExpectations(t)
	})

	t.Run("他人の予約は取得できない", func(t *testing.T) {
		mockService := new(MockBookingService)
		mockService.On("GetBooking", mock.Anything, "booking-123").Return(testBooking(booking.StatusConfirmed), nil)

		handler := NewBookingHandler(mockService)

		req := httptest.NewRequest(http.MethodGet, "/bookings/booking-123", nil)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)
		c.SetParamNames("id")
		c.SetParamValues("booking-123")
		c.Set(middleware.ContextKeyUserID, "other-user")
		c.Set(middleware.ContextKeyRole, string(user.RoleUser))

		err := handler.GetByID(c)

		require.ErrorIs(t, err, booking.ErrNotBookingOwner)
	})

	t.Run("管理者は他人の予約を取得できる", func(t *testing.T) {
		mockService := new(MockBookingService)
		mockService.On("GetBooking", mock.Anything, "booking-123").Return(testBooking(booking.StatusConfirmed), nil)

		handler := NewBookingHandler(mockService)

		req := httptest.NewRequest(http.MethodGet, "/bookings/booking-123", nil)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)
		c.SetParamNames("id")
		c.SetParamValues("booking-123")
		c.Set(middleware.ContextKeyUserID, "admin-1")
		c.Set(middleware.ContextKeyRole, string(user.RoleAdmin))

		err := handler.GetByID(c)

		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("予約が見つからない場合はそのままエラーを返す", func(t *testing.T) {
		mockService := new(MockBookingService)
		mockService.On("GetBooking", mock.Anything, "nonexistent").Return(nil, booking.ErrBookingNotFound)

		handler := NewBookingHandler(mockService)

		req := httptest.NewRequest(http.MethodGet, "/bookings/nonexistent", nil)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)
		c.SetParamNames("id")
		c.SetParamValues("nonexistent")

		err := handler.GetByID(c)

		require.ErrorIs(t, err, booking.ErrBookingNotFound)
		mockService.AssertExpectations(t)
	})
}

func TestBookingHandler_ListMine(t *testing.T) {
	e := NewTestEcho()

	mockService := new(MockBookingService)
	bookings := []*booking.Booking{
		testBooking(booking.StatusPending),
		testBooking(booking.StatusConfirmed),
	}
	mockService.On("GetUserBookings", mock.Anything, "user-123", 0, 0).Return(bookings, nil)

	handler := NewBookingHandler(mockService)

	req := httptest.NewRequest(http.MethodGet, "/bookings", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.Set(middleware.ContextKeyUserID, "user-123")

	err := handler.ListMine(c)

	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, rec.Code)

	var resp api.PagedEnvelope
	err = json.Unmarshal(rec.Body.Bytes(), &resp)
	require.NoError(t, err)
	assert.True(t, resp.Success)
	assert.Equal(t, 2, resp.Pagination.Count)

	mockService.AssertExpectations(t)
}

func TestBookingHandler_Cancel(t *testing.T) {
	e := NewTestEcho()

	t.Run("正常に予約をキャンセルできる", func(t *testing.T) {
		mockService := new(MockBookingService)
		cancelled := testBooking(booking.StatusCancelled)
		mockService.On("CancelBooking", mock.Anything, application.CancelBookingInput{
			BookingID:     "booking-123",
			Reason:        "予定変更",
			RequesterID:   "user-123",
			RequesterRole: user.RoleUser,
		}).Return(cancelled, nil)

		handler := NewBookingHandler(mockService)

		reqBody := `{"reason": "予定変更"}`
		req := httptest.NewRequest(http.MethodPost, "/bookings/booking-123/cancel", strings.NewReader(reqBody))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)
		c.SetParamNames("id")
		c.SetParamValues("booking-123")
		c.Set(middleware.ContextKeyUserID, "user-123")
		c.Set(middleware.ContextKeyRole, string(user.RoleUser))

		err := handler.Cancel(c)

		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, rec.Code)
		mockService.AssertExpectations(t)
	})

	t.Run("他人の予約のキャンセルは403のエンベロープを返す", func(t *testing.T) {
		mockService := new(MockBookingService)
		mockService.On("CancelBooking", mock.Anything, mock.Anything).
			Return(nil, booking.ErrNotBookingOwner)

		handler := NewBookingHandler(mockService)
		e.POST("/bookings/:id/cancel", handler.Cancel, func(next echo.HandlerFunc) echo.HandlerFunc {
			return func(c echo.Context) error {
				c.Set(middleware.ContextKeyUserID, "other-user")
				c.Set(middleware.ContextKeyRole, string(user.RoleUser))
				return next(c)
			}
		})

		req := httptest.NewRequest(http.MethodPost, "/bookings/booking-123/cancel", strings.NewReader(`{}`))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusForbidden, rec.Code)

		var resp api.ErrorResponse
		err := json.Unmarshal(rec.Body.Bytes(), &resp)
		require.NoError(t, err)
		assert.Equal(t, api.CodeForbidden, resp.Error)
	})

	t.Run("貸出中の予約はキャンセルできない", func(t *testing.T) {
		mockService := new(MockBookingService)
		mockService.On("CancelBooking", mock.Anything, mock.Anything).
			Return(nil, booking.ErrInvalidTransition)

		handler := NewBookingHandler(mockService)

		req := httptest.NewRequest(http.MethodPost, "/bookings/booking-123/cancel", strings.NewReader(`{}`))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)
		c.SetParamNames("id")
		c.SetParamValues("booking-123")
		c.Set(middleware.ContextKeyUserID, "user-123")
		c.Set(middleware.ContextKeyRole, string(user.RoleUser))

		err := handler.Cancel(c)

		require.ErrorIs(t, err, booking.ErrInvalidTransition)
	})
}

func TestBookingHandler_Confirm(t *testing.T) {
	e := NewTestEcho()

	t.Run("正常に予約を確定できる", func(t *testing.T) {
		mockService := new(MockBookingService)
		confirmed := testBooking(booking.StatusConfirmed)
		mockService.On("ConfirmBooking", mock.Anything, "booking-123").Return(confirmed, nil)

		handler := NewBookingHandler(mockService)

		req := httptest.NewRequest(http.MethodPost, "/bookings/booking-123/confirm", nil)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)
		c.SetParamNames("id")
		c.SetParamValues("booking-123")

		err := handler.Confirm(c)

		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, rec.Code)
		mockService.AssertExpectations(t)
	})

	t.Run("キャンセル済みの予約は確定できない", func(t *testing.T) {
		mockService := new(MockBookingService)
		mockService.On("ConfirmBooking", mock.Anything, "booking-123").
			Return(nil, booking.ErrInvalidTransition)

		handler := NewBookingHandler(mockService)

		req := httptest.NewRequest(http.MethodPost, "/bookings/booking-123/confirm", nil)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)
		c.SetParamNames("id")
		c.SetParamValues("booking-123")

		err := handler.Confirm(c)

		require.ErrorIs(t, err, booking.ErrInvalidTransition)
	})
}
