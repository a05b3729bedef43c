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

// SpecificationHandler は車種テンプレートハンドラー
type SpecificationHandler struct {
	service VehicleServiceInterface
}

// NewSpecificationHandler はSpecificationHandlerを作成する
func NewSpecificationHandler(s VehicleServiceInterface) *SpecificationHandler {
	return &SpecificationHandler{service: s}
}

type CreateSpecificationRequest struct {
	Make         string   `json:"make" validate:"required" example:"Toyota"`
	Model        string   `json:"model" validate:"required" example:"Corolla"`
	Year         int      `json:"year" validate:"required,gte=1980" example:"2023"`
	Category     string   `json:"category" example:"sedan"`
	Seats        int      `json:"seats" validate:"gte=1" example:"5"`
	Transmission string   `json:"transmission" example:"automatic"`
	FuelType     string   `json:"fuel_type" example:"hybrid"`
	Features     []string `json:"features"`
}

type SpecificationResponse struct {
	ID           string    `json:"id"`
	Make         string    `json:"make"`
	Model        string    `json:"model"`
	Year         int       `json:"year"`
	Category     string    `json:"category"`
	Seats        int       `json:"seats"`
	Transmission string    `json:"transmission"`
	FuelType     string    `json:"fuel_type"`
	Features     []string  `json:"features"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func toSpecificationResponse(s *vehicle.Specification) *SpecificationResponse {
	return &SpecificationResponse{
		ID: s.ID, Make: s.Make, Model: s.Model, Year: s.Year,
		Category: s.Category, Seats: s.Seats,
		Transmission: s.Transmission, FuelType: s.FuelType,
		Features: s.Features, CreatedAt: s.CreatedAt, UpdatedAt: s.UpdatedAt,
	}
}

// Create は車種テンプレートを登録する。管理者専用
func (h *SpecificationHandler) Create(c echo.Context) error {
	var req CreateSpecificationRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "無効なリクエスト")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}
	spec, err := h.service.CreateSpecification(c.Request().Context(), application.CreateSpecificationInput{
		Make: req.Make, Model: req.Model, Year: req.Year,
		Category: req.Category, Seats: req.Seats,
		Transmission: req.Transmission, FuelType: req.FuelType,
		Features: req.Features,
	})
	if err != nil {
		return err
	}
	return api.OK(c, http.StatusCreated, toSpecificationResponse(spec), "車種テンプレートを登録しました")
}

// GetByID は車種テンプレートを取得する
func (h *SpecificationHandler) GetByID(c echo.Context) error {
	spec, err := h.service.GetSpecification(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return api.OK(c, http.StatusOK, toSpecificationResponse(spec), "")
}

// List は車種テンプレート一覧を取得する
func (h *SpecificationHandler) List(c echo.Context) error {
	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	offset, _ := strconv.Atoi(c.QueryParam("offset"))
	specs, err := h.service.ListSpecifications(c.Request().Context(), limit, offset)
	if err != nil {
		return err
	}
	resp := make([]*SpecificationResponse, len(specs))
	for i, s := range specs {
		resp[i] = toSpecificationResponse(s)
	}
	return api.OKPaged(c, http.StatusOK, resp, &api.Pagination{Limit: limit, Offset: offset, Count: len(resp)})
}
