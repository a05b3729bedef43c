package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

var ErrInviteNotFound = errors.New("招待コードが無効か期限切れです")

// InviteStore は admin / support_agent 登録用の招待コードを管理する
// コードはRedisにTTL付きで保存され、使用時にアトミックに削除される（一回限り）
type InviteStore struct {
	client *redis.Client
}

// NewInviteStore は新しいInviteStoreを作成する
func NewInviteStore(client *redis.Client) *InviteStore {
	return &InviteStore{client: client}
}

// Issue は指定した役割の招待コードを発行する
func (s *InviteStore) Issue(ctx context.Context, role string, ttl time.Duration) (string, error) {
	code := uuid.New().String()
	if err := s.client.Set(ctx, s.key(code), role, ttl).Err(); err != nil {
		return "", fmt.Errorf("招待コード発行に失敗: %w", err)
	}
	return code, nil
}

// Redeem はコードを消費し、紐づく役割を返す
// GETDEL でアトミックに取得と削除を行い、二重使用を防ぐ
func (s *InviteStore) Redeem(ctx context.Context, code string) (string, error) {
	role, err := s.client.GetDel(ctx, s.key(code)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", ErrInviteNotFound
		}
		return "", fmt.Errorf("招待コード照会に失敗: %w", err)
	}
	return role, nil
}

func (s *InviteStore) key(code string) string {
	return "auth:invite:" + code
}
