package worker

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/calchukom/caldepaz-sub001/internal/pkg/logger"
)

// OverdueBookingCanceller は期限超過の未確定予約をキャンセルするインターフェース
type OverdueBookingCanceller interface {
	CancelOverduePending(ctx context.Context) (int, error)
}

// OverdueBookingCleaner は開始日を過ぎても pending のままの予約を
// 定期的にキャンセルするワーカー
type OverdueBookingCleaner struct {
	bookingService OverdueBookingCanceller
	interval       time.Duration
	stopCh         chan struct{}
	doneCh         chan struct{}
}

// NewOverdueBookingCleaner は新しいクリーナーを作成
func NewOverdueBookingCleaner(bs OverdueBookingCanceller, interval time.Duration) *OverdueBookingCleaner {
	return &OverdueBookingCleaner{
		bookingService: bs,
		interval:       interval,
		stopCh:         make(chan struct{}),
		doneCh:         make(chan struct{}),
	}
}

// Start はクリーナーを開始
func (c *OverdueBookingCleaner) Start(ctx context.Context) {
	logger.Info("期限超過予約クリーナー開始",
		zap.Duration("interval", c.interval),
	)

	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()
	defer close(c.doneCh)

	for {
		select {
		case <-ctx.Done():
			logger.Info("期限超過予約クリーナー停止（コンテキストキャンセル）")
			return
		case <-c.stopCh:
			logger.Info("期限超過予約クリーナー停止（シグナル受信）")
			return
		case <-ticker.C:
			c.cleanup(ctx)
		}
	}
}

// Stop はクリーナーを停止
func (c *OverdueBookingCleaner) Stop() {
	close(c.stopCh)
	<-c.doneCh
}

// cleanup は期限超過の pending 予約をキャンセル
func (c *OverdueBookingCleaner) cleanup(ctx context.Context) {
	log := logger.Get()
	log.Debug("期限超過予約のクリーンアップ開始")

	count, err := c.bookingService.CancelOverduePending(ctx)
	if err != nil {
		log.Error("期限超過予約のクリーンアップ失敗", zap.Error(err))
		return
	}

	if count > 0 {
		log.Info("期限超過予約をキャンセル", zap.Int("count", count))
	} else {
		log.Debug("期限超過予約なし")
	}
}
