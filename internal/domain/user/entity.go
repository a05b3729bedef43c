package user

import (
	"strings"
	"time"
)

// Role はユーザーの役割を表す
type Role string

const (
	RoleUser         Role = "user"
	RoleAdmin        Role = "admin"
	RoleSupportAgent Role = "support_agent"
)

// User はユーザーエンティティを表す
type User struct {
	ID           string
	Email        string
	PasswordHash string
	FirstName    string
	LastName     string
	Phone        string
	Role         Role
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// NewUser は新しいユーザーを作成する
func NewUser(email, passwordHash, firstName, lastName, phone string, role Role) *User {
	now := time.Now()
	return &User{
		Email:        strings.ToLower(strings.TrimSpace(email)),
		PasswordHash: passwordHash,
		FirstName:    firstName,
		LastName:     lastName,
		Phone:        phone,
		Role:         role,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

// IsAgent はサポート対応が可能な役割かを返す
func (u *User) IsAgent() bool {
	return u.Role == RoleAdmin || u.Role == RoleSupportAgent
}

// IsAdmin は管理者かを返す
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// Validate はユーザーの検証を行う
func (u *User) Validate() error {
	if u.Email == "" {
		return ErrEmailRequired
	}
	if u.PasswordHash == "" {
		return ErrPasswordRequired
	}
	switch u.Role {
	case RoleUser, RoleAdmin, RoleSupportAgent:
	default:
		return ErrInvalidRole
	}
	return nil
}
