package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/calchukom/caldepaz-sub001/internal/application"
	"github.com/calchukom/caldepaz-sub001/internal/domain/user"
)

// コンテキストに格納するキー
const (
	ContextKeyUserID = "auth_user_id"
	ContextKeyRole   = "auth_role"
)

// AccessTokenVerifier はアクセストークンを検証する
type AccessTokenVerifier interface {
	VerifyAccessToken(ctx context.Context, tokenString string) (*application.Claims, error)
}

// RequireAuth はBearerトークンを検証し、ユーザーIDと役割をコンテキストに格納する
func RequireAuth(verifier AccessTokenVerifier) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			header := c.Request().Header.Get(echo.HeaderAuthorization)
			if header == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "認証トークンがありません")
			}

			token, ok := strings.CutPrefix(header, "Bearer ")
			if !ok || token == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "Authorizationヘッダーの形式が不正です")
			}

			claims, err := verifier.VerifyAccessToken(c.Request().Context(), token)
			if err != nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "トークンの検証に失敗しました")
			}

			c.Set(ContextKeyUserID, claims.Subject)
			c.Set(ContextKeyRole, claims.Role)

			return next(c)
		}
	}
}

// RequireRole は認証済みユーザーの役割を制限する。RequireAuthの後段で使う。
func RequireRole(roles ...user.Role) echo.MiddlewareFunc {
	allowed := make(map[string]struct{}, len(roles))
	for _, r := range roles {
		allowed[string(r)] = struct{}{}
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			role, _ := c.Get(ContextKeyRole).(string)
			if _, ok := allowed[role]; !ok {
				return echo.NewHTTPError(http.StatusForbidden, "この操作を行う権限がありません")
			}
			return next(c)
		}
	}
}

// UserID はコンテキストから認証済みユーザーIDを取り出す
func UserID(c echo.Context) string {
	id, _ := c.Get(ContextKeyUserID).(string)
	return id
}

// Role はコンテキストから認証済みユーザーの役割を取り出す
func Role(c echo.Context) user.Role {
	role, _ := c.Get(ContextKeyRole).(string)
	return user.Role(role)
}
