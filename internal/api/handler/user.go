package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/calchukom/caldepaz-sub001/internal/api"
	"github.com/calchukom/caldepaz-sub001/internal/api/middleware"
	"github.com/calchukom/caldepaz-sub001/internal/application"
)

// UserHandler はユーザーハンドラー
type UserHandler struct {
	service UserServiceInterface
}

// NewUserHandler はUserHandlerを作成する
func NewUserHandler(s UserServiceInterface) *UserHandler {
	return &UserHandler{service: s}
}

type UpdateProfileRequest struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Phone     string `json:"phone"`
}

// Me は認証済みユーザー自身の情報を返す
func (h *UserHandler) Me(c echo.Context) error {
	u, err := h.service.GetUser(c.Request().Context(), middleware.UserID(c))
	if err != nil {
		return err
	}
	return api.OK(c, http.StatusOK, toUserResponse(u), "")
}

// UpdateMe は認証済みユーザー自身のプロフィールを更新する
func (h *UserHandler) UpdateMe(c echo.Context) error {
	var req UpdateProfileRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "無効なリクエスト")
	}
	u, err := h.service.UpdateProfile(c.Request().Context(), application.UpdateProfileInput{
		UserID:    middleware.UserID(c),
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Phone:     req.Phone,
	})
	if err != nil {
		return err
	}
	return api.OK(c, http.StatusOK, toUserResponse(u), "プロフィールを更新しました")
}

// GetByID は指定IDのユーザーを取得する。管理者専用
func (h *UserHandler) GetByID(c echo.Context) error {
	u, err := h.service.GetUser(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return api.OK(c, http.StatusOK, toUserResponse(u), "")
}

// List はユーザー一覧を取得する。管理者専用
func (h *UserHandler) List(c echo.Context) error {
	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	offset, _ := strconv.Atoi(c.QueryParam("offset"))
	users, err := h.service.ListUsers(c.Request().Context(), limit, offset)
	if err != nil {
		return err
	}
	resp := make([]*UserResponse, len(users))
	for i, u := range users {
		resp[i] = toUserResponse(u)
	}
	return api.OKPaged(c, http.StatusOK, resp, &api.Pagination{Limit: limit, Offset: offset, Count: len(resp)})
}
