package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/calchukom/caldepaz-sub001/internal/api"
	"github.com/calchukom/caldepaz-sub001/internal/application"
	"github.com/calchukom/caldepaz-sub001/internal/domain/location"
)

// LocationHandler は拠点ハンドラー
type LocationHandler struct {
	service LocationServiceInterface
}

// NewLocationHandler はLocationHandlerを作成する
func NewLocationHandler(s LocationServiceInterface) *LocationHandler {
	return &LocationHandler{service: s}
}

type CreateLocationRequest struct {
	Name    string `json:"name" validate:"required" example:"渋谷営業所"`
	Address string `json:"address"`
	City    string `json:"city" validate:"required" example:"東京"`
	Phone   string `json:"phone"`
}

type LocationResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Address   string    `json:"address"`
	City      string    `json:"city"`
	Phone     string    `json:"phone"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func toLocationResponse(l *location.Location) *LocationResponse {
	return &LocationResponse{
		ID: l.ID, Name: l.Name, Address: l.Address,
		City: l.City, Phone: l.Phone,
		CreatedAt: l.CreatedAt, UpdatedAt: l.UpdatedAt,
	}
}

// Create は拠点を登録する。管理者専用
func (h *LocationHandler) Create(c echo.Context) error {
	var req CreateLocationRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "無効なリクエスト")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}
	l, err := h.service.CreateLocation(c.Request().Context(), application.CreateLocationInput{
		Name: req.Name, Address: req.Address, City: req.City, Phone: req.Phone,
	})
	if err != nil {
		return err
	}
	return api.OK(c, http.StatusCreated, toLocationResponse(l), "拠点を登録しました")
}

// GetByID は拠点を取得する
func (h *LocationHandler) GetByID(c echo.Context) error {
	l, err := h.service.GetLocation(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return api.OK(c, http.StatusOK, toLocationResponse(l), "")
}

// List は拠点一覧を取得する
func (h *LocationHandler) List(c echo.Context) error {
	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	offset, _ := strconv.Atoi(c.QueryParam("offset"))
	locations, err := h.service.ListLocations(c.Request().Context(), limit, offset)
	if err != nil {
		return err
	}
	resp := make([]*LocationResponse, len(locations))
	for i, l := range locations {
		resp[i] = toLocationResponse(l)
	}
	return api.OKPaged(c, http.StatusOK, resp, &api.Pagination{Limit: limit, Offset: offset, Count: len(resp)})
}

// Delete は拠点を削除する。管理者専用
// 車両または予約が紐づいている拠点は削除できない
func (h *LocationHandler) Delete(c echo.Context) error {
	if err := h.service.DeleteLocation(c.Request().Context(), c.Param("id")); err != nil {
		return err
	}
	return api.OK(c, http.StatusOK, nil, "拠点を削除しました")
}
