package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/calchukom/caldepaz-sub001/internal/api"
	"github.com/calchukom/caldepaz-sub001/internal/application"
	"github.com/calchukom/caldepaz-sub001/internal/domain/vehicle"
)

// VehicleHandler は車両ハンドラー
type VehicleHandler struct {
	service VehicleServiceInterface
}

// NewVehicleHandler はVehicleHandlerを作成する
func NewVehicleHandler(s VehicleServiceInterface) *VehicleHandler {
	return &VehicleHandler{service: s}
}

type CreateVehicleRequest struct {
	SpecificationID string  `json:"specification_id" validate:"required"`
	LocationID      string  `json:"location_id" validate:"required"`
	LicensePlate    string  `json:"license_plate" validate:"required"`
	RentalRate      float64 `json:"rental_rate" validate:"required,gt=0" example:"150.00"`
}

type UpdateVehicleRequest struct {
	LocationID    string     `json:"location_id"`
	RentalRate    float64    `json:"rental_rate"`
	Mileage       int        `json:"mileage"`
	FuelLevel     int        `json:"fuel_level"`
	LastServiceAt *time.Time `json:"last_service_at"`
	NextServiceAt *time.Time `json:"next_service_at"`
}

type SetVehicleStatusRequest struct {
	Status string `json:"status" validate:"required"`
}

type VehicleResponse struct {
	ID              string     `json:"id"`
	SpecificationID string     `json:"specification_id"`
	LocationID      string     `json:"location_id"`
	LicensePlate    string     `json:"license_plate"`
	Status          string     `json:"status" example:"available"`
	RentalRate      float64    `json:"rental_rate"`
	Mileage         int        `json:"mileage"`
	FuelLevel       int        `json:"fuel_level"`
	LastServiceAt   *time.Time `json:"last_service_at,omitempty"`
	NextServiceAt   *time.Time `json:"next_service_at,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

func toVehicleResponse(v *vehicle.Vehicle) *VehicleResponse {
	return &VehicleResponse{
		ID:              v.ID,
		SpecificationID: v.SpecificationID,
		LocationID:      v.LocationID,
		LicensePlate:    v.LicensePlate,
		Status:          string(v.Status),
		RentalRate:      v.RentalRate,
		Mileage:         v.Mileage,
		FuelLevel:       v.FuelLevel,
		LastServiceAt:   v.LastServiceAt,
		NextServiceAt:   v.NextServiceAt,
		CreatedAt:       v.CreatedAt,
		UpdatedAt:       v.UpdatedAt,
	}
}

// Create は車両を登録する。管理者専用
func (h *VehicleHandler) Create(c echo.Context) error {
	var req CreateVehicleRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "無効なリクエスト")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}
	v, err := h.service.CreateVehicle(c.Request().Context(), application.CreateVehicleInput{
		SpecificationID: req.SpecificationID,
		LocationID:      req.LocationID,
		LicensePlate:    req.LicensePlate,
		RentalRate:      req.RentalRate,
	})
	if err != nil {
		return err
	}
	return api.OK(c, http.StatusCreated, toVehicleResponse(v), "車両を登録しました")
}

// GetByID は車両を取得する
func (h *VehicleHandler) GetByID(c echo.Context) error {
	v, err := h.service.GetVehicle(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return api.OK(c, http.StatusOK, toVehicleResponse(v), "")
}

// List は車両一覧を取得する。location_id / status で絞り込み可能
func (h *VehicleHandler) List(c echo.Context) error {
	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	offset, _ := strconv.Atoi(c.QueryParam("offset"))
	filter := vehicle.ListFilter{
		LocationID: c.QueryParam("location_id"),
		Status:     vehicle.Status(c.QueryParam("status")),
		Limit:      limit,
		Offset:     offset,
	}
	vehicles, err := h.service.ListVehicles(c.Request().Context(), filter)
	if err != nil {
		return err
	}
	resp := make([]*VehicleResponse, len(vehicles))
	for i, v := range vehicles {
		resp[i] = toVehicleResponse(v)
	}
	return api.OKPaged(c, http.StatusOK, resp, &api.Pagination{Limit: limit, Offset: offset, Count: len(resp)})
}

// Update は車両情報を更新する。管理者専用
func (h *VehicleHandler) Update(c echo.Context) error {
	var req UpdateVehicleRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "無効なリクエスト")
	}
	v, err := h.service.UpdateVehicle(c.Request().Context(), application.UpdateVehicleInput{
		VehicleID:     c.Param("id"),
		LocationID:    req.LocationID,
		RentalRate:    req.RentalRate,
		Mileage:       req.Mileage,
		FuelLevel:     req.FuelLevel,
		LastServiceAt: req.LastServiceAt,
		NextServiceAt: req.NextServiceAt,
	})
	if err != nil {
		return err
	}
	return api.OK(c, http.StatusOK, toVehicleResponse(v), "車両を更新しました")
}

// SetStatus は車両の手動ステータスを設定する。管理者専用
// out_of_service / damaged の設定と available への復帰のみ受け付ける
func (h *VehicleHandler) SetStatus(c echo.Context) error {
	var req SetVehicleStatusRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "無効なリクエスト")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}
	v, err := h.service.SetManualStatus(c.Request().Context(), c.Param("id"), vehicle.Status(req.Status))
	if err != nil {
		return err
	}
	return api.OK(c, http.StatusOK, toVehicleResponse(v), "車両ステータスを更新しました")
}

// AvailableCount は拠点ごとの利用可能車両数を返す
func (h *VehicleHandler) AvailableCount(c echo.Context) error {
	locationID := c.QueryParam("location_id")
	if locationID == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "location_id は必須です")
	}
	count, err := h.service.AvailableCount(c.Request().Context(), locationID)
	if err != nil {
		return err
	}
	return api.OK(c, http.StatusOK, map[string]interface{}{
		"location_id": locationID,
		"available":   count,
	}, "")
}
