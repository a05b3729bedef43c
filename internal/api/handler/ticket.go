package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/calchukom/caldepaz-sub001/internal/api"
	"github.com/calchukom/caldepaz-sub001/internal/api/middleware"
	"github.com/calchukom/caldepaz-sub001/internal/application"
	"github.com/calchukom/caldepaz-sub001/internal/domain/ticket"
	"github.com/calchukom/caldepaz-sub001/internal/domain/user"
)

// TicketHandler はサポートチケットハンドラー
type TicketHandler struct {
	service TicketServiceInterface
}

// NewTicketHandler はTicketHandlerを作成する
func NewTicketHandler(s TicketServiceInterface) *TicketHandler {
	return &TicketHandler{service: s}
}

type CreateTicketRequest struct {
	Subject     string  `json:"subject" validate:"required" example:"返却時に傷を指摘された"`
	Description string  `json:"description"`
	Priority    string  `json:"priority" validate:"omitempty,oneof=low medium high urgent"`
	Category    string  `json:"category"`
	BookingID   *string `json:"booking_id"`
}

type AssignTicketRequest struct {
	AgentID string `json:"agent_id" validate:"required"`
}

type UpdateTicketStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=open in_progress resolved closed"`
}

type TicketResponse struct {
	ID          string    `json:"id"`
	UserID      string    `json:"user_id"`
	AssignedTo  *string   `json:"assigned_to,omitempty"`
	Subject     string    `json:"subject"`
	Description string    `json:"description,omitempty"`
	Status      string    `json:"status" example:"open"`
	Priority    string    `json:"priority"`
	Category    string    `json:"category,omitempty"`
	BookingID   *string   `json:"booking_id,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func toTicketResponse(t *ticket.Ticket) *TicketResponse {
	return &TicketResponse{
		ID:          t.ID,
		UserID:      t.UserID,
		AssignedTo:  t.AssignedTo,
		Subject:     t.Subject,
		Description: t.Description,
		Status:      string(t.Status),
		Priority:    t.Priority,
		Category:    t.Category,
		BookingID:   t.BookingID,
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
	}
}

// Create はサポートチケットを作成する
func (h *TicketHandler) Create(c echo.Context) error {
	var req CreateTicketRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "無効なリクエスト")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}
	t, err := h.service.CreateTicket(c.Request().Context(), application.CreateTicketInput{
		UserID:      middleware.UserID(c),
		Subject:     req.Subject,
		Description: req.Description,
		Priority:    req.Priority,
		Category:    req.Category,
		BookingID:   req.BookingID,
	})
	if err != nil {
		return err
	}
	return api.OK(c, http.StatusCreated, toTicketResponse(t), "チケットを作成しました")
}

// GetByID はチケットを取得する。本人・担当者・管理者のみ
func (h *TicketHandler) GetByID(c echo.Context) error {
	t, err := h.service.GetTicket(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	role := middleware.Role(c)
	if role != user.RoleAdmin && role != user.RoleSupportAgent && t.UserID != middleware.UserID(c) {
		return echo.NewHTTPError(http.StatusForbidden, "このチケットを参照する権限がありません")
	}
	return api.OK(c, http.StatusOK, toTicketResponse(t), "")
}

// List はチケット一覧を取得する
// 一般ユーザーは自分のチケットのみ、サポート担当と管理者は全件を参照できる
func (h *TicketHandler) List(c echo.Context) error {
	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	offset, _ := strconv.Atoi(c.QueryParam("offset"))
	filter := ticket.ListFilter{
		Status:     ticket.Status(c.QueryParam("status")),
		AssignedTo: c.QueryParam("assigned_to"),
		Limit:      limit,
		Offset:     offset,
	}
	role := middleware.Role(c)
	if role != user.RoleAdmin && role != user.RoleSupportAgent {
		filter.UserID = middleware.UserID(c)
	} else {
		filter.UserID = c.QueryParam("user_id")
	}
	tickets, err := h.service.ListTickets(c.Request().Context(), filter)
	if err != nil {
		return err
	}
	resp := make([]*TicketResponse, len(tickets))
	for i, t := range tickets {
		resp[i] = toTicketResponse(t)
	}
	return api.OKPaged(c, http.StatusOK, resp, &api.Pagination{Limit: limit, Offset: offset, Count: len(resp)})
}

// Assign はチケットをサポート担当に割り当てる
// 割り当て先が support_agent / admin でなければ 403 を返す
func (h *TicketHandler) Assign(c echo.Context) error {
	var req AssignTicketRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "無効なリクエスト")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}
	t, err := h.service.AssignAgent(c.Request().Context(), c.Param("id"), req.AgentID)
	if err != nil {
		return err
	}
	return api.OK(c, http.StatusOK, toTicketResponse(t), "チケットを割り当てました")
}

// UpdateStatus はチケットステータスを遷移させる
func (h *TicketHandler) UpdateStatus(c echo.Context) error {
	var req UpdateTicketStatusRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "無効なリクエスト")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}
	t, err := h.service.UpdateTicketStatus(c.Request().Context(), c.Param("id"), ticket.Status(req.Status))
	if err != nil {
		return err
	}
	return api.OK(c, http.StatusOK, toTicketResponse(t), "チケットステータスを更新しました")
}
