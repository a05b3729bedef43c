package application

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/calchukom/caldepaz-sub001/internal/config"
	"github.com/calchukom/caldepaz-sub001/internal/domain/user"
	"github.com/calchukom/caldepaz-sub001/internal/pkg/logger"
	"github.com/calchukom/caldepaz-sub001/internal/pkg/mailer"
)

// 認証まわりのエラー定義
var (
	ErrInvalidToken     = errors.New("トークンが無効です")
	ErrTokenBlacklisted = errors.New("トークンは失効しています")
	ErrWrongTokenType   = errors.New("トークン種別が一致しません")
)

const (
	tokenTypeAccess  = "access"
	tokenTypeRefresh = "refresh"
)

// TokenBlacklist はトークン失効リストのインターフェース
type TokenBlacklist interface {
	Add(ctx context.Context, token string, expiresAt time.Time) error
	Contains(ctx context.Context, token string) (bool, error)
}

// InviteStore は招待コードストアのインターフェース
type InviteStore interface {
	Issue(ctx context.Context, role string, ttl time.Duration) (string, error)
	Redeem(ctx context.Context, code string) (string, error)
}

// Claims はJWTに載せる認証情報
type Claims struct {
	Role string `json:"role"`
	Type string `json:"typ"`
	jwt.RegisteredClaims
}

// TokenPair はアクセストークンとリフレッシュトークンの組
type TokenPair struct {
	AccessToken  string
	RefreshToken string
	ExpiresAt    time.Time
}

type AuthService struct {
	userRepo  user.Repository
	blacklist TokenBlacklist
	invites   InviteStore
	mail      mailer.Mailer
	cfg       *config.AuthConfig
}

func NewAuthService(
	ur user.Repository,
	blacklist TokenBlacklist,
	invites InviteStore,
	mail mailer.Mailer,
	cfg *config.AuthConfig,
) *AuthService {
	return &AuthService{
		userRepo:  ur,
		blacklist: blacklist,
		invites:   invites,
		mail:      mail,
		cfg:       cfg,
	}
}

type RegisterInput struct {
	Email      string
	Password   string
	FirstName  string
	LastName   string
	Phone      string
	InviteCode string
}

// Register は新しいユーザーを登録する
// 招待コードがあれば admin / support_agent として登録され、なければ user になる。
// 登録完了メールの送信失敗は登録自体を失敗させない
func (s *AuthService) Register(ctx context.Context, input RegisterInput) (*user.User, error) {
	role := user.RoleUser
	if input.InviteCode != "" {
		redeemed, err := s.invites.Redeem(ctx, input.InviteCode)
		if err != nil {
			return nil, err
		}
		role = user.Role(redeemed)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("パスワードハッシュ化に失敗: %w", err)
	}

	u := user.NewUser(input.Email, string(hash), input.FirstName, input.LastName, input.Phone, role)
	if err := u.Validate(); err != nil {
		return nil, err
	}
	if err := s.userRepo.Create(ctx, u); err != nil {
		return nil, err
	}

	if s.mail != nil {
		if err := s.mail.SendWelcome(u.Email, u.FirstName); err != nil {
			logger.Warn("登録完了メールの送信に失敗",
				zap.String("email", u.Email), zap.Error(err))
		}
	}
	return u, nil
}

// Login はメールアドレスとパスワードで認証し、トークンペアを発行する
func (s *AuthService) Login(ctx context.Context, email, password string) (*user.User, *TokenPair, error) {
	u, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, user.ErrUserNotFound) {
			return nil, nil, user.ErrInvalidCredentials
		}
		return nil, nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return nil, nil, user.ErrInvalidCredentials
	}

	pair, err := s.issueTokenPair(u)
	if err != nil {
		return nil, nil, err
	}
	return u, pair, nil
}

// Refresh はリフレッシュトークンから新しいトークンペアを発行する
// 使用済みのリフレッシュトークンは失効させる（ローテーション）
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*TokenPair, error) {
	claims, err := s.VerifyToken(ctx, refreshToken, tokenTypeRefresh)
	if err != nil {
		return nil, err
	}

	u, err := s.userRepo.GetByID(ctx, claims.Subject)
	if err != nil {
		return nil, err
	}
	pair, err := s.issueTokenPair(u)
	if err != nil {
		return nil, err
	}

	if err := s.blacklist.Add(ctx, refreshToken, claims.ExpiresAt.Time); err != nil {
		logger.Warn("使用済みリフレッシュトークンの失効登録に失敗", zap.Error(err))
	}
	return pair, nil
}

// Logout はアクセストークンとリフレッシュトークンを失効させる
func (s *AuthService) Logout(ctx context.Context, accessToken, refreshToken string) error {
	for _, token := range []string{accessToken, refreshToken} {
		if token == "" {
			continue
		}
		claims, err := s.parseToken(token)
		if err != nil {
			// 壊れたトークンは失効させる必要がない
			continue
		}
		if err := s.blacklist.Add(ctx, token, claims.ExpiresAt.Time); err != nil {
			return err
		}
	}
	return nil
}

// IssueInvite は admin / support_agent 用の招待コードを発行する
func (s *AuthService) IssueInvite(ctx context.Context, role user.Role) (string, error) {
	if role != user.RoleAdmin && role != user.RoleSupportAgent {
		return "", user.ErrInvalidRole
	}
	return s.invites.Issue(ctx, string(role), s.cfg.InviteCodeTTL)
}

// VerifyToken はトークンを検証し、失効リストも確認する
func (s *AuthService) VerifyToken(ctx context.Context, tokenString, expectedType string) (*Claims, error) {
	claims, err := s.parseToken(tokenString)
	if err != nil {
		return nil, err
	}
	if claims.Type != expectedType {
		return nil, ErrWrongTokenType
	}

	blacklisted, err := s.blacklist.Contains(ctx, tokenString)
	if err != nil {
		return nil, err
	}
	if blacklisted {
		return nil, ErrTokenBlacklisted
	}
	return claims, nil
}

// VerifyAccessToken はアクセストークンを検証する（ミドルウェア用）
func (s *AuthService) VerifyAccessToken(ctx context.Context, tokenString string) (*Claims, error) {
	return s.VerifyToken(ctx, tokenString, tokenTypeAccess)
}

func (s *AuthService) issueTokenPair(u *user.User) (*TokenPair, error) {
	now := time.Now()
	accessExpiry := now.Add(s.cfg.AccessTokenTTL)

	access, err := s.signToken(u, tokenTypeAccess, now, accessExpiry)
	if err != nil {
		return nil, err
	}
	refresh, err := s.signToken(u, tokenTypeRefresh, now, now.Add(s.cfg.RefreshTokenTTL))
	if err != nil {
		return nil, err
	}
	return &TokenPair{AccessToken: access, RefreshToken: refresh, ExpiresAt: accessExpiry}, nil
}

func (s *AuthService) signToken(u *user.User, tokenType string, issuedAt, expiresAt time.Time) (string, error) {
	claims := Claims{
		Role: string(u.Role),
		Type: tokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   u.ID,
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.cfg.JWTSecret))
	if err != nil {
		return "", fmt.Errorf("トークン署名に失敗: %w", err)
	}
	return signed, nil
}

func (s *AuthService) parseToken(tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("予期しない署名方式: %v", t.Header["alg"])
		}
		return []byte(s.cfg.JWTSecret), nil
	})
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
