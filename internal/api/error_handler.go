package api

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/calchukom/caldepaz-sub001/internal/application"
	"github.com/calchukom/caldepaz-sub001/internal/domain/booking"
	"github.com/calchukom/caldepaz-sub001/internal/domain/location"
	"github.com/calchukom/caldepaz-sub001/internal/domain/maintenance"
	"github.com/calchukom/caldepaz-sub001/internal/domain/payment"
	"github.com/calchukom/caldepaz-sub001/internal/domain/ticket"
	"github.com/calchukom/caldepaz-sub001/internal/domain/user"
	"github.com/calchukom/caldepaz-sub001/internal/domain/vehicle"
	redisinfra "github.com/calchukom/caldepaz-sub001/internal/infrastructure/redis"
	"github.com/calchukom/caldepaz-sub001/internal/pkg/logger"
)

// エラーコード定数。クライアントが分岐に使う安定した識別子。
const (
	CodeNotFound      = "not_found"
	CodeConflict      = "conflict"
	CodeForbidden     = "forbidden"
	CodeValidation    = "validation_error"
	CodeUnauthorized  = "unauthorized"
	CodeInternalError = "internal_error"
)

// ErrorResponse はエラーレスポンスの統一フォーマット
type ErrorResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Error   string `json:"error"`
}

var notFoundErrors = []error{
	user.ErrUserNotFound,
	vehicle.ErrVehicleNotFound,
	vehicle.ErrSpecificationNotFound,
	location.ErrLocationNotFound,
	booking.ErrBookingNotFound,
	payment.ErrPaymentNotFound,
	ticket.ErrTicketNotFound,
	maintenance.ErrRecordNotFound,
}

var conflictErrors = []error{
	user.ErrEmailAlreadyExists,
	vehicle.ErrLicensePlateExists,
	vehicle.ErrVehicleNotAvailable,
	vehicle.ErrOptimisticLockConflict,
	location.ErrLocationInUse,
	booking.ErrBookingConflict,
	booking.ErrInvalidTransition,
	booking.ErrBookingAlreadyCancelled,
	payment.ErrInvalidTransition,
	payment.ErrBookingNotPayable,
	ticket.ErrInvalidTransition,
	ticket.ErrTicketNotOpen,
	maintenance.ErrInvalidTransition,
	maintenance.ErrVehicleRented,
}

var forbiddenErrors = []error{
	booking.ErrNotBookingOwner,
	ticket.ErrAssigneeNotAgent,
	user.ErrNotAgent,
}

var validationErrors = []error{
	booking.ErrInvalidDateRange,
	booking.ErrUserIDRequired,
	booking.ErrVehicleIDRequired,
	payment.ErrInvalidAmount,
	payment.ErrInvalidMethod,
	payment.ErrAmountExceedsDue,
	payment.ErrBookingIDRequired,
	vehicle.ErrManualStatusOnly,
	vehicle.ErrInvalidStatus,
	vehicle.ErrInvalidRentalRate,
	vehicle.ErrInvalidYear,
	vehicle.ErrLicensePlateRequired,
	vehicle.ErrMakeModelRequired,
	vehicle.ErrLocationIDRequired,
	vehicle.ErrSpecificationIDRequired,
	user.ErrInvalidRole,
	user.ErrEmailRequired,
	user.ErrPasswordRequired,
	location.ErrNameRequired,
	location.ErrCityRequired,
	ticket.ErrSubjectRequired,
	maintenance.ErrServiceTypeRequired,
	maintenance.ErrInvalidCost,
	redisinfra.ErrInviteNotFound,
}

var unauthorizedErrors = []error{
	user.ErrInvalidCredentials,
	application.ErrInvalidToken,
	application.ErrTokenBlacklisted,
	application.ErrWrongTokenType,
}

func classify(err error) (int, string) {
	for _, sentinel := range notFoundErrors {
		if errors.Is(err, sentinel) {
			return http.StatusNotFound, CodeNotFound
		}
	}
	for _, sentinel := range conflictErrors {
		if errors.Is(err, sentinel) {
			return http.StatusConflict, CodeConflict
		}
	}
	for _, sentinel := range forbiddenErrors {
		if errors.Is(err, sentinel) {
			return http.StatusForbidden, CodeForbidden
		}
	}
	for _, sentinel := range validationErrors {
		if errors.Is(err, sentinel) {
			return http.StatusBadRequest, CodeValidation
		}
	}
	for _, sentinel := range unauthorizedErrors {
		if errors.Is(err, sentinel) {
			return http.StatusUnauthorized, CodeUnauthorized
		}
	}
	return http.StatusInternalServerError, CodeInternalError
}

func codeForStatus(status int) string {
	switch status {
	case http.StatusBadRequest:
		return CodeValidation
	case http.StatusUnauthorized:
		return CodeUnauthorized
	case http.StatusForbidden:
		return CodeForbidden
	case http.StatusNotFound:
		return CodeNotFound
	case http.StatusConflict:
		return CodeConflict
	default:
		return CodeInternalError
	}
}

// NewHTTPErrorHandler はドメインエラーをHTTPレスポンスに変換するハンドラーを返す
func NewHTTPErrorHandler() echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		var status int
		var code, message string

		var httpErr *echo.HTTPError
		if errors.As(err, &httpErr) {
			status = httpErr.Code
			code = codeForStatus(status)
			if msg, ok := httpErr.Message.(string); ok {
				message = msg
			} else {
				message = http.StatusText(status)
			}
		} else {
			status, code = classify(err)
			if status == http.StatusInternalServerError {
				logger.Error("ハンドラーで予期しないエラーが発生",
					zap.String("path", c.Request().URL.Path),
					zap.Error(err))
				message = "internal server error"
			} else {
				message = err.Error()
			}
		}

		if writeErr := c.JSON(status, ErrorResponse{Success: false, Message: message, Error: code}); writeErr != nil {
			logger.Error("エラーレスポンスの書き込みに失敗", zap.Error(writeErr))
		}
	}
}
