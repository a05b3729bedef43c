package handler

import (
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/calchukom/caldepaz-sub001/internal/api"
	"github.com/calchukom/caldepaz-sub001/internal/application"
	"github.com/calchukom/caldepaz-sub001/internal/domain/user"
)

// AuthHandler は認証ハンドラー
type AuthHandler struct {
	service AuthServiceInterface
}

// NewAuthHandler はAuthHandlerを作成する
func NewAuthHandler(s AuthServiceInterface) *AuthHandler {
	return &AuthHandler{service: s}
}

type RegisterRequest struct {
	Email      string `json:"email" validate:"required,email" example:"user@example.com"`
	Password   string `json:"password" validate:"required,min=8" example:"secret-password"`
	FirstName  string `json:"first_name" validate:"required" example:"太郎"`
	LastName   string `json:"last_name" validate:"required" example:"山田"`
	Phone      string `json:"phone" example:"090-1234-5678"`
	InviteCode string `json:"invite_code,omitempty"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

type LogoutRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

type IssueInviteRequest struct {
	Role string `json:"role" validate:"required,oneof=admin support_agent"`
}

type UserResponse struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	Phone     string    `json:"phone,omitempty"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type TokenResponse struct {
	User         *UserResponse `json:"user,omitempty"`
	AccessToken  string        `json:"access_token"`
	RefreshToken string        `json:"refresh_token"`
	ExpiresAt    time.Time     `json:"expires_at"`
}

func toUserResponse(u *user.User) *UserResponse {
	return &UserResponse{
		ID: u.ID, Email: u.Email,
		FirstName: u.FirstName, LastName: u.LastName,
		Phone: u.Phone, Role: string(u.Role),
		CreatedAt: u.CreatedAt, UpdatedAt: u.UpdatedAt,
	}
}

// Register godoc
// @Summary ユーザー登録
// @Description 新しいユーザーを登録します。招待コードがあれば管理者・サポート担当として登録されます
// @Tags auth
// @Accept json
// @Produce json
// @Param request body RegisterRequest true "登録情報"
// @Success 201 {object} api.Envelope
// @Failure 400 {object} api.ErrorResponse
// @Failure 409 {object} api.ErrorResponse "メールアドレスが登録済み"
// @Router /auth/register [post]
func (h *AuthHandler) Register(c echo.Context) error {
	var req RegisterRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "無効なリクエスト")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}
	u, err := h.service.Register(c.Request().Context(), application.RegisterInput{
		Email: req.Email, Password: req.Password,
		FirstName: req.FirstName, LastName: req.LastName,
		Phone: req.Phone, InviteCode: req.InviteCode,
	})
	if err != nil {
		return err
	}
	return api.OK(c, http.StatusCreated, toUserResponse(u), "ユーザーを登録しました")
}

// Login godoc
// @Summary ログイン
// @Tags auth
// @Accept json
// @Produce json
// @Param request body LoginRequest true "認証情報"
// @Success 200 {object} api.Envelope
// @Failure 401 {object} api.ErrorResponse
// @Router /auth/login [post]
func (h *AuthHandler) Login(c echo.Context) error {
	var req LoginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "無効なリクエスト")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}
	u, pair, err := h.service.Login(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		return err
	}
	return api.OK(c, http.StatusOK, TokenResponse{
		User:         toUserResponse(u),
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		ExpiresAt:    pair.ExpiresAt,
	}, "ログインしました")
}

// Refresh godoc
// @Summary トークン更新
// @Description リフレッシュトークンで新しいトークンペアを発行します。古いリフレッシュトークンは無効化されます
// @Tags auth
// @Accept json
// @Produce json
// @Param request body RefreshRequest true "リフレッシュトークン"
// @Success 200 {object} api.Envelope
// @Failure 401 {object} api.ErrorResponse
// @Router /auth/refresh [post]
func (h *AuthHandler) Refresh(c echo.Context) error {
	var req RefreshRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "無効なリクエスト")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}
	pair, err := h.service.Refresh(c.Request().Context(), req.RefreshToken)
	if err != nil {
		return err
	}
	return api.OK(c, http.StatusOK, TokenResponse{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		ExpiresAt:    pair.ExpiresAt,
	}, "トークンを更新しました")
}

// Logout godoc
// @Summary ログアウト
// @Description アクセストークンとリフレッシュトークンをブラックリストに登録します
// @Tags auth
// @Accept json
// @Produce json
// @Param request body LogoutRequest true "リフレッシュトークン"
// @Success 200 {object} api.Envelope
// @Router /auth/logout [post]
func (h *AuthHandler) Logout(c echo.Context) error {
	var req LogoutRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "無効なリクエスト")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}
	accessToken, _ := strings.CutPrefix(c.Request().Header.Get(echo.HeaderAuthorization), "Bearer ")
	if err := h.service.Logout(c.Request().Context(), accessToken, req.RefreshToken); err != nil {
		return err
	}
	return api.OK(c, http.StatusOK, nil, "ログアウトしました")
}

// IssueInvite godoc
// @Summary 招待コード発行
// @Description 管理者またはサポート担当としての登録に使う一回限りの招待コードを発行します
// @Tags auth
// @Accept json
// @Produce json
// @Param request body IssueInviteRequest true "発行する役割"
// @Success 201 {object} api.Envelope
// @Failure 403 {object} api.ErrorResponse
// @Router /auth/invites [post]
func (h *AuthHandler) IssueInvite(c echo.Context) error {
	var req IssueInviteRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "無効なリクエスト")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}
	code, err := h.service.IssueInvite(c.Request().Context(), user.Role(req.Role))
	if err != nil {
		return err
	}
	return api.OK(c, http.StatusCreated, map[string]string{"invite_code": code}, "招待コードを発行しました")
}
