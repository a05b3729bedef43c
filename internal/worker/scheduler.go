package worker

import (
	"context"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/calchukom/caldepaz-sub001/internal/pkg/logger"
)

// OverdueReturnCompleter は返却予定日を過ぎた貸出中予約を完了させるインターフェース
type OverdueReturnCompleter interface {
	CompleteOverdueActive(ctx context.Context) (int, error)
}

// FleetResweeper は全車両のステータスを再導出するインターフェース
type FleetResweeper interface {
	ResyncAll(ctx context.Context) (int, error)
}

// Scheduler は夜間バッチをcronで実行する
type Scheduler struct {
	cron           *cron.Cron
	bookingService OverdueReturnCompleter
	resweeper      FleetResweeper
}

// NewScheduler は新しいSchedulerを作成
func NewScheduler(bs OverdueReturnCompleter, rs FleetResweeper) *Scheduler {
	return &Scheduler{
		cron:           cron.New(),
		bookingService: bs,
		resweeper:      rs,
	}
}

// Start はジョブを登録してスケジューラーを起動する
// 返却予定日超過の自動完了は毎時0分、車両ステータスのリスイープは毎時30分に実行される
func (s *Scheduler) Start(ctx context.Context) error {
	if _, err := s.cron.AddFunc("0 * * * *", func() { s.completeOverdueReturns(ctx) }); err != nil {
		return err
	}
	if _, err := s.cron.AddFunc("30 * * * *", func() { s.resweepFleet(ctx) }); err != nil {
		return err
	}

	s.cron.Start()
	logger.Info("バッチスケジューラー開始")
	return nil
}

// completeOverdueReturns は返却予定日を過ぎた貸出中予約を完了させる
func (s *Scheduler) completeOverdueReturns(ctx context.Context) {
	count, err := s.bookingService.CompleteOverdueActive(ctx)
	if err != nil {
		logger.Error("返却超過予約の自動完了に失敗", zap.Error(err))
		return
	}
	if count > 0 {
		logger.Info("返却超過予約を自動完了", zap.Int("count", count))
	}
}

// resweepFleet は全車両のステータスを再導出し、残った不整合を修復する
func (s *Scheduler) resweepFleet(ctx context.Context) {
	fixed, err := s.resweeper.ResyncAll(ctx)
	if err != nil {
		logger.Error("車両ステータスのリスイープに失敗", zap.Error(err))
		return
	}
	if fixed > 0 {
		logger.Info("車両ステータスの不整合を修復", zap.Int("fixed", fixed))
	}
}

// Stop は実行中のジョブの完了を待ってスケジューラーを停止する
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	logger.Info("バッチスケジューラー停止")
}
