package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

var ErrCacheMiss = errors.New("キャッシュが見つかりません")

// FleetCache は拠点ごとの貸出可能台数のキャッシュを管理する
type FleetCache struct {
	client *redis.Client
}

// NewFleetCache は新しいFleetCacheインスタンスを作成する
func NewFleetCache(client *redis.Client) *FleetCache {
	return &FleetCache{client: client}
}

// GetAvailableCount は拠点の貸出可能台数をキャッシュから取得する
func (c *FleetCache) GetAvailableCount(ctx context.Context, locationID string) (int, error) {
	val, err := c.client.Get(ctx, c.availableCountKey(locationID)).Int()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, ErrCacheMiss
		}
		return 0, fmt.Errorf("キャッシュ取得に失敗: %w", err)
	}
	return val, nil
}

// SetAvailableCount は拠点の貸出可能台数をキャッシュに保存する
func (c *FleetCache) SetAvailableCount(ctx context.Context, locationID string, count int, ttl time.Duration) error {
	if err := c.client.Set(ctx, c.availableCountKey(locationID), count, ttl).Err(); err != nil {
		return fmt.Errorf("キャッシュ保存に失敗: %w", err)
	}
	return nil
}

// Invalidate は拠点のキャッシュを無効化する
// 車両ステータスの再導出後に呼ばれる
func (c *FleetCache) Invalidate(ctx context.Context, locationID string) error {
	if err := c.client.Del(ctx, c.availableCountKey(locationID)).Err(); err != nil {
		return fmt.Errorf("キャッシュ無効化に失敗: %w", err)
	}
	return nil
}

func (c *FleetCache) availableCountKey(locationID string) string {
	return fmt.Sprintf("fleet:available:%s", locationID)
}
