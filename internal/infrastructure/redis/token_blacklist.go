package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// TokenBlacklist はログアウト済みJWTの失効リストを管理する
// プロセス内のマップではなくRedisに置くことで、再起動や複数インスタンスでも
// 失効状態が共有される。キーはトークン文字列そのもの、TTLはトークンの残り有効期間
type TokenBlacklist struct {
	client *redis.Client
}

// NewTokenBlacklist は新しいTokenBlacklistを作成する
func NewTokenBlacklist(client *redis.Client) *TokenBlacklist {
	return &TokenBlacklist{client: client}
}

// Add はトークンを失効リストに追加する
// expiresAt を過ぎたエントリはRedisのTTLで自動削除される
func (b *TokenBlacklist) Add(ctx context.Context, token string, expiresAt time.Time) error {
	ttl := time.Until(expiresAt)
	if ttl <= 0 {
		// 既に期限切れのトークンは登録不要
		return nil
	}
	if err := b.client.Set(ctx, b.key(token), "1", ttl).Err(); err != nil {
		return fmt.Errorf("トークン失効登録に失敗: %w", err)
	}
	return nil
}

// Contains はトークンが失効済みかを返す
func (b *TokenBlacklist) Contains(ctx context.Context, token string) (bool, error) {
	n, err := b.client.Exists(ctx, b.key(token)).Result()
	if err != nil {
		return false, fmt.Errorf("トークン失効確認に失敗: %w", err)
	}
	return n > 0, nil
}

func (b *TokenBlacklist) key(token string) string {
	return "auth:blacklist:" + token
}
