package application

import (
	"context"
	"time"

	"github.com/calchukom/caldepaz-sub001/internal/domain/user"
)

type UserService struct {
	userRepo user.Repository
}

func NewUserService(ur user.Repository) *UserService {
	return &UserService{userRepo: ur}
}

func (s *UserService) GetUser(ctx context.Context, id string) (*user.User, error) {
	return s.userRepo.GetByID(ctx, id)
}

func (s *UserService) ListUsers(ctx context.Context, limit, offset int) ([]*user.User, error) {
	if limit <= 0 {
		limit = 20
	}
	return s.userRepo.List(ctx, limit, offset)
}

type UpdateProfileInput struct {
	UserID    string
	FirstName string
	LastName  string
	Phone     string
}

// UpdateProfile はユーザー自身のプロフィールを更新する
// 役割の変更はここではできない（招待コード経由のみ）
func (s *UserService) UpdateProfile(ctx context.Context, input UpdateProfileInput) (*user.User, error) {
	u, err := s.userRepo.GetByID(ctx, input.UserID)
	if err != nil {
		return nil, err
	}
	if input.FirstName != "" {
		u.FirstName = input.FirstName
	}
	if input.LastName != "" {
		u.LastName = input.LastName
	}
	if input.Phone != "" {
		u.Phone = input.Phone
	}
	u.UpdatedAt = time.Now()
	if err := s.userRepo.Update(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}
