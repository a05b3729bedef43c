package application

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/calchukom/caldepaz-sub001/internal/domain/booking"
	"github.com/calchukom/caldepaz-sub001/internal/domain/maintenance"
	"github.com/calchukom/caldepaz-sub001/internal/domain/transaction"
	"github.com/calchukom/caldepaz-sub001/internal/domain/vehicle"
	"github.com/calchukom/caldepaz-sub001/internal/pkg/logger"
)

// AvailabilityCache は拠点ごとの空き台数キャッシュの無効化インターフェース
type AvailabilityCache interface {
	Invalidate(ctx context.Context, locationID string) error
}

// StatusSynchronizer は車両ステータスを予約・整備の現況から再導出する
// 呼び出し側が直接ステータスを書き換えるのではなく、状態を変えるすべての
// 操作の最後にここを通すことで、車両と予約・整備の整合性を一点で保証する
type StatusSynchronizer struct {
	txManager       transaction.Manager
	vehicleRepo     vehicle.Repository
	bookingRepo     booking.Repository
	maintenanceRepo maintenance.Repository
	cache           AvailabilityCache
}

// NewStatusSynchronizer は新しいStatusSynchronizerを作成する
func NewStatusSynchronizer(
	tm transaction.Manager,
	vr vehicle.Repository,
	br booking.Repository,
	mr maintenance.Repository,
	cache AvailabilityCache,
) *StatusSynchronizer {
	return &StatusSynchronizer{
		txManager:       tm,
		vehicleRepo:     vr,
		bookingRepo:     br,
		maintenanceRepo: mr,
		cache:           cache,
	}
}

// Resync は車両ステータスを再導出して保存する
// 導出順: 手動固定状態はそのまま → active 予約あり = rented →
// 進行中の整備あり = maintenance → confirmed 予約あり = reserved → available
func (s *StatusSynchronizer) Resync(ctx context.Context, vehicleID string) (vehicle.Status, error) {
	v, err := s.vehicleRepo.GetByID(ctx, vehicleID)
	if err != nil {
		return "", fmt.Errorf("車両取得に失敗: %w", err)
	}

	// out_of_service / damaged は管理者が解除するまで導出の対象外
	if v.HasManualStatus() {
		return v.Status, nil
	}

	derived, err := s.derive(ctx, vehicleID)
	if err != nil {
		return "", err
	}

	if derived != v.Status {
		tx, err := s.txManager.Begin(ctx)
		if err != nil {
			return "", fmt.Errorf("トランザクション開始に失敗: %w", err)
		}
		defer tx.Rollback()

		if err := s.vehicleRepo.UpdateStatus(ctx, tx, vehicleID, derived); err != nil {
			return "", err
		}
		if err := tx.Commit(); err != nil {
			return "", fmt.Errorf("コミットに失敗: %w", err)
		}

		logger.Info("車両ステータスを再導出",
			zap.String("vehicle_id", vehicleID),
			zap.String("from", string(v.Status)),
			zap.String("to", string(derived)),
		)
	}

	s.invalidateCache(ctx, v.LocationID)
	return derived, nil
}

// ClearManualStatus は手動固定（out_of_service / damaged）を解除する
// 解除後のステータスは available を直接書くのではなく、予約・整備の現況から
// 再導出する。active 予約が残っている車両は rented に戻る
func (s *StatusSynchronizer) ClearManualStatus(ctx context.Context, vehicleID string) (vehicle.Status, error) {
	v, err := s.vehicleRepo.GetByID(ctx, vehicleID)
	if err != nil {
		return "", fmt.Errorf("車両取得に失敗: %w", err)
	}

	derived, err := s.derive(ctx, vehicleID)
	if err != nil {
		return "", err
	}

	tx, err := s.txManager.Begin(ctx)
	if err != nil {
		return "", fmt.Errorf("トランザクション開始に失敗: %w", err)
	}
	defer tx.Rollback()

	if err := s.vehicleRepo.UpdateStatus(ctx, tx, vehicleID, derived); err != nil {
		return "", err
	}
	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("コミットに失敗: %w", err)
	}

	logger.Info("手動固定を解除して車両ステータスを再導出",
		zap.String("vehicle_id", vehicleID),
		zap.String("from", string(v.Status)),
		zap.String("to", string(derived)),
	)

	s.invalidateCache(ctx, v.LocationID)
	return derived, nil
}

// ResyncAll は全車両のステータスをリスイープする
// 再導出直後のクラッシュ等で残った不整合をここで修復する。戻り値は修復した台数
func (s *StatusSynchronizer) ResyncAll(ctx context.Context) (int, error) {
	const batchSize = 100

	fixed := 0
	for offset := 0; ; offset += batchSize {
		vehicles, err := s.vehicleRepo.List(ctx, vehicle.ListFilter{Limit: batchSize, Offset: offset})
		if err != nil {
			return fixed, fmt.Errorf("車両一覧取得に失敗: %w", err)
		}

		for _, v := range vehicles {
			if v.HasManualStatus() {
				continue
			}
			derived, err := s.Resync(ctx, v.ID)
			if err != nil {
				logger.Warn("車両ステータスのリスイープに失敗",
					zap.String("vehicle_id", v.ID), zap.Error(err))
				continue
			}
			if derived != v.Status {
				fixed++
			}
		}

		if len(vehicles) < batchSize {
			return fixed, nil
		}
	}
}

// derive は現在の予約・整備の集合からステータスを計算する
func (s *StatusSynchronizer) derive(ctx context.Context, vehicleID string) (vehicle.Status, error) {
	blocking, err := s.bookingRepo.GetBlockingByVehicle(ctx, vehicleID)
	if err != nil {
		return "", fmt.Errorf("占有予約取得に失敗: %w", err)
	}

	hasConfirmed := false
	for _, b := range blocking {
		if b.Status == booking.StatusActive {
			return vehicle.StatusRented, nil
		}
		if b.Status == booking.StatusConfirmed {
			hasConfirmed = true
		}
	}

	inProgress, err := s.maintenanceRepo.GetBlockingByVehicle(ctx, vehicleID)
	if err != nil {
		return "", fmt.Errorf("進行中整備取得に失敗: %w", err)
	}
	if len(inProgress) > 0 {
		return vehicle.StatusMaintenance, nil
	}

	if hasConfirmed {
		return vehicle.StatusReserved, nil
	}
	return vehicle.StatusAvailable, nil
}

// invalidateCache は空き台数キャッシュを無効化する（失敗してもログのみ）
func (s *StatusSynchronizer) invalidateCache(ctx context.Context, locationID string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx, locationID); err != nil {
		logger.Warn("空き台数キャッシュの無効化に失敗",
			zap.String("location_id", locationID), zap.Error(err))
	}
}
