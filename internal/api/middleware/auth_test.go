package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/calchukom/caldepaz-sub001/internal/application"
	"github.com/calchukom/caldepaz-sub001/internal/domain/user"
)

// MockTokenVerifier はAccessTokenVerifierのモック
type MockTokenVerifier struct {
	mock.Mock
}

func (m *MockTokenVerifier) VerifyAccessToken(ctx context.Context, tokenString string) (*application.Claims, error) {
	args := m.Called(ctx, tokenString)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*application.Claims), args.Error(1)
}

func testClaims(subject, role string) *application.Claims {
	return &application.Claims{
		Role: role,
		Type: "access",
		RegisteredClaims: jwt.RegisteredClaims{
			Subject: subject,
		},
	}
}

func TestRequireAuth(t *testing.T) {
	e := echo.New()

	t.Run("有効なトークンでユーザー情報がコンテキストに入る", func(t *testing.T) {
		verifier := new(MockTokenVerifier)
		verifier.On("VerifyAccessToken", mock.Anything, "valid-token").
			Return(testClaims("user-123", "user"), nil)

		var gotUserID string
		var gotRole user.Role
		handler := RequireAuth(verifier)(func(c echo.Context) error {
			gotUserID = UserID(c)
			gotRole = Role(c)
			return c.NoContent(http.StatusOK)
		})

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set(echo.HeaderAuthorization, "Bearer valid-token")
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)

		err := handler(c)

		require.NoError(t, err)
		assert.Equal(t, "user-123", gotUserID)
		assert.Equal(t, user.RoleUser, gotRole)
		verifier.AssertExpectations(t)
	})

	t.Run("ヘッダーがない場合401", func(t *testing.T) {
		verifier := new(MockTokenVerifier)
		handler := RequireAuth(verifier)(func(c echo.Context) error {
			return c.NoContent(http.StatusOK)
		})

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)

		err := handler(c)

		require.Error(t, err)
		he, ok := err.(*echo.HTTPError)
		require.True(t, ok)
		assert.Equal(t, http.StatusUnauthorized, he.Code)
	})

	t.Run("Bearer形式でない場合401", func(t *testing.T) {
		verifier := new(MockTokenVerifier)
		handler := RequireAuth(verifier)(func(c echo.Context) error {
			return c.NoContent(http.StatusOK)
		})

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set(echo.HeaderAuthorization, "Basic dXNlcjpwYXNz")
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)

		err := handler(c)

		require.Error(t, err)
		he, ok := err.(*echo.HTTPError)
		require.True(t, ok)
		assert.Equal(t, http.StatusUnauthorized, he.Code)
	})

	t.Run("検証に失敗した場合401", func(t *testing.T) {
		verifier := new(MockTokenVerifier)
		verifier.On("VerifyAccessToken", mock.Anything, "bad-token").
			Return(nil, application.ErrInvalidToken)

		handler := RequireAuth(verifier)(func(c echo.Context) error {
			return c.NoContent(http.StatusOK)
		})

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set(echo.HeaderAuthorization, "Bearer bad-token")
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)

		err := handler(c)

		require.Error(t, err)
		he, ok := err.(*echo.HTTPError)
		require.True(t, ok)
		assert.Equal(t, http.StatusUnauthorized, he.Code)
		verifier.AssertExpectations(t)
	})
}

func TestRequireRole(t *testing.T) {
	e := echo.New()

	tests := []struct {
		name     string
		allowed  []user.Role
		role     string
		wantCode int
	}{
		{
			name:     "許可された役割は通過する",
			allowed:  []user.Role{user.RoleAdmin},
			role:     "admin",
			wantCode: http.StatusOK,
		},
		{
			name:     "複数の役割のいずれかで通過する",
			allowed:  []user.Role{user.RoleAdmin, user.RoleSupportAgent},
			role:     "support_agent",
			wantCode: http.StatusOK,
		},
		{
			name:     "許可されていない役割は403",
			allowed:  []user.Role{user.RoleAdmin},
			role:     "user",
			wantCode: http.StatusForbidden,
		},
		{
			name:     "役割が設定されていない場合403",
			allowed:  []user.Role{user.RoleAdmin},
			role:     "",
			wantCode: http.StatusForbidden,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := RequireRole(tt.allowed...)(func(c echo.Context) error {
				return c.NoContent(http.StatusOK)
			})

			req := httptest.NewRequest(http.MethodGet, "/", nil)
			rec := httptest.NewRecorder()
			c := e.NewContext(req, rec)
			if tt.role != "" {
				c.Set(ContextKeyRole, tt.role)
			}

			err := handler(c)

			if tt.wantCode == http.StatusOK {
				require.NoError(t, err)
				assert.Equal(t, http.StatusOK, rec.Code)
			} else {
				require.Error(t, err)
				he, ok := err.(*echo.HTTPError)
				require.True(t, ok)
				assert.Equal(t, tt.wantCode, he.Code)
			}
		})
	}
}
