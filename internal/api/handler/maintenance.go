package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/calchukom/caldepaz-sub001/internal/api"
	"github.com/calchukom/caldepaz-sub001/internal/application"
	"github.com/calchukom/caldepaz-sub001/internal/domain/maintenance"
)

// MaintenanceHandler は整備記録ハンドラー
type MaintenanceHandler struct {
	service MaintenanceServiceInterface
}

// NewMaintenanceHandler はMaintenanceHandlerを作成する
func NewMaintenanceHandler(s MaintenanceServiceInterface) *MaintenanceHandler {
	return &MaintenanceHandler{service: s}
}

type ScheduleMaintenanceRequest struct {
	VehicleID   string    `json:"vehicle_id" validate:"required"`
	ServiceType string    `json:"service_type" validate:"required" example:"oil_change"`
	Description string    `json:"description"`
	Cost        float64   `json:"cost" validate:"gte=0"`
	ScheduledAt time.Time `json:"scheduled_at" validate:"required"`
}

type MaintenanceResponse struct {
	ID          string     `json:"id"`
	VehicleID   string     `json:"vehicle_id"`
	ServiceType string     `json:"service_type"`
	Description string     `json:"description,omitempty"`
	Cost        float64    `json:"cost"`
	ScheduledAt time.Time  `json:"scheduled_at"`
	StartedAt   *time.Time `json:"started_at,omitempty"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	Status      string     `json:"status" example:"scheduled"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

func toMaintenanceResponse(r *maintenance.Record) *MaintenanceResponse {
	return &MaintenanceResponse{
		ID:          r.ID,
		VehicleID:   r.VehicleID,
		ServiceType: r.ServiceType,
		Description: r.Description,
		Cost:        r.Cost,
		ScheduledAt: r.ScheduledAt,
		StartedAt:   r.StartedAt,
		CompletedAt: r.CompletedAt,
		Status:      string(r.Status),
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
	}
}

// Schedule は整備を予定として登録する。管理者専用
func (h *MaintenanceHandler) Schedule(c echo.Context) error {
	var req ScheduleMaintenanceRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "無効なリクエスト")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}
	rec, err := h.service.ScheduleMaintenance(c.Request().Context(), application.ScheduleMaintenanceInput{
		VehicleID:   req.VehicleID,
		ServiceType: req.ServiceType,
		Description: req.Description,
		Cost:        req.Cost,
		ScheduledAt: req.ScheduledAt,
	})
	if err != nil {
		return err
	}
	return api.OK(c, http.StatusCreated, toMaintenanceResponse(rec), "整備を予定しました")
}

// GetByID は整備記録を取得する
func (h *MaintenanceHandler) GetByID(c echo.Context) error {
	rec, err := h.service.GetRecord(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return api.OK(c, http.StatusOK, toMaintenanceResponse(rec), "")
}

// ListByVehicle は車両の整備履歴を取得する
func (h *MaintenanceHandler) ListByVehicle(c echo.Context) error {
	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	offset, _ := strconv.Atoi(c.QueryParam("offset"))
	records, err := h.service.GetVehicleRecords(c.Request().Context(), c.Param("id"), limit, offset)
	if err != nil {
		return err
	}
	resp := make([]*MaintenanceResponse, len(records))
	for i, r := range records {
		resp[i] = toMaintenanceResponse(r)
	}
	return api.OKPaged(c, http.StatusOK, resp, &api.Pagination{Limit: limit, Offset: offset, Count: len(resp)})
}

// Start は整備を開始する。貸出中の車両には開始できない
func (h *MaintenanceHandler) Start(c echo.Context) error {
	rec, err := h.service.StartMaintenance(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return api.OK(c, http.StatusOK, toMaintenanceResponse(rec), "整備を開始しました")
}

// Complete は整備を完了し、車両の最終整備日時を更新する
func (h *MaintenanceHandler) Complete(c echo.Context) error {
	rec, err := h.service.CompleteMaintenance(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return api.OK(c, http.StatusOK, toMaintenanceResponse(rec), "整備を完了しました")
}

// Cancel は予定された整備を取り消す
func (h *MaintenanceHandler) Cancel(c echo.Context) error {
	rec, err := h.service.CancelMaintenance(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return api.OK(c, http.StatusOK, toMaintenanceResponse(rec), "整備を取り消しました")
}
