package application

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/calchukom/caldepaz-sub001/internal/domain/booking"
	"github.com/calchukom/caldepaz-sub001/internal/domain/transaction"
	"github.com/calchukom/caldepaz-sub001/internal/domain/user"
	"github.com/calchukom/caldepaz-sub001/internal/domain/vehicle"
	redislock "github.com/calchukom/caldepaz-sub001/internal/infrastructure/redis"
	"github.com/calchukom/caldepaz-sub001/internal/pkg/logger"
	"github.com/calchukom/caldepaz-sub001/internal/pkg/mailer"
	"github.com/calchukom/caldepaz-sub001/internal/pkg/metrics"
)

// VehicleStatusResyncer は車両ステータスの再導出インターフェース
type VehicleStatusResyncer interface {
	Resync(ctx context.Context, vehicleID string) (vehicle.Status, error)
}

type BookingService struct {
	txManager   transaction.Manager
	bookingRepo booking.Repository
	vehicleRepo vehicle.Repository
	userRepo    user.Repository
	resyncer    VehicleStatusResyncer
	lockManager *redislock.LockManager
	mail        mailer.Mailer
	metrics     *metrics.Metrics
}

func NewBookingService(
	tm transaction.Manager,
	br booking.Repository,
	vr vehicle.Repository,
	ur user.Repository,
	resyncer VehicleStatusResyncer,
	lm *redislock.LockManager,
	mail mailer.Mailer,
	m *metrics.Metrics,
) *BookingService {
	return &BookingService{
		txManager:   tm,
		bookingRepo: br,
		vehicleRepo: vr,
		userRepo:    ur,
		resyncer:    resyncer,
		lockManager: lm,
		mail:        mail,
		metrics:     m,
	}
}

type CreateBookingInput struct {
	UserID      string
	VehicleID   string
	LocationID  string
	BookingDate time.Time
	ReturnDate  time.Time
}

// CreateBooking は新しい予約を pending 状態で作成する
// 同一車両への同時リクエストは分散ロックで直列化し、期間の重複は
// トランザクション内のチェックとDBの排他制約で二重に防ぐ
func (s *BookingService) CreateBooking(ctx context.Context, input CreateBookingInput) (*booking.Booking, error) {
	if !input.BookingDate.Before(input.ReturnDate) {
		return nil, booking.ErrInvalidDateRange
	}

	// 車両単位の分散ロック
	if s.lockManager != nil {
		lock, err := s.lockManager.AcquireLockWithRetry(ctx, "vehicle:"+input.VehicleID, 10*time.Second, 3, 100*time.Millisecond)
		if err != nil {
			if errors.Is(err, redislock.ErrLockNotAcquired) {
				s.count("create", "conflict")
				return nil, booking.ErrBookingConflict
			}
			return nil, fmt.Errorf("ロック取得に失敗: %w", err)
		}
		defer lock.Release(ctx)
	}

	v, err := s.vehicleRepo.GetByID(ctx, input.VehicleID)
	if err != nil {
		return nil, err
	}
	if v.HasManualStatus() {
		s.count("create", "conflict")
		return nil, vehicle.ErrVehicleNotAvailable
	}

	b := booking.NewBooking(input.UserID, input.VehicleID, input.LocationID, input.BookingDate, input.ReturnDate, v.RentalRate)
	if err := b.Validate(); err != nil {
		return nil, err
	}

	tx, err := s.txManager.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("トランザクション開始に失敗: %w", err)
	}
	defer tx.Rollback()

	overlapping, err := s.bookingRepo.CountOverlapping(ctx, tx, input.VehicleID, input.BookingDate, input.ReturnDate, "")
	if err != nil {
		return nil, err
	}
	if overlapping > 0 {
		s.count("create", "conflict")
		return nil, booking.ErrBookingConflict
	}

	if err := s.bookingRepo.Create(ctx, tx, b); err != nil {
		s.count("create", "error")
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("コミットに失敗: %w", err)
	}

	s.count("create", "success")
	return b, nil
}

func (s *BookingService) GetBooking(ctx context.Context, id string) (*booking.Booking, error) {
	return s.bookingRepo.GetByID(ctx, id)
}

func (s *BookingService) GetUserBookings(ctx context.Context, userID string, limit, offset int) ([]*booking.Booking, error) {
	if limit <= 0 {
		limit = 20
	}
	return s.bookingRepo.GetByUserID(ctx, userID, limit, offset)
}

// ConfirmBooking は予約を確定し、車両ステータスの再導出を行う
// 確定時点での重複は排他制約が最終防衛線となる
func (s *BookingService) ConfirmBooking(ctx context.Context, id string) (*booking.Booking, error) {
	b, err := s.bookingRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := b.Confirm(); err != nil {
		return nil, err
	}

	tx, err := s.txManager.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("トランザクション開始に失敗: %w", err)
	}
	defer tx.Rollback()

	overlapping, err := s.bookingRepo.CountOverlapping(ctx, tx, b.VehicleID, b.BookingDate, b.ReturnDate, b.ID)
	if err != nil {
		return nil, err
	}
	if overlapping > 0 {
		s.count("confirm", "conflict")
		return nil, booking.ErrBookingConflict
	}
	if err := s.bookingRepo.Update(ctx, tx, b); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("コミットに失敗: %w", err)
	}

	s.resync(ctx, b.VehicleID)
	s.count("confirm", "success")
	s.notifyConfirmed(ctx, b)
	return b, nil
}

// ActivateBooking は車両の引き渡しを記録する
func (s *BookingService) ActivateBooking(ctx context.Context, id string) (*booking.Booking, error) {
	return s.transitionAndResync(ctx, id, "activate", func(b *booking.Booking) error {
		return b.Activate()
	})
}

// CompleteBooking は車両の返却を記録する
// 後続の confirmed 予約が存在する場合、再導出により車両は reserved のまま残る
func (s *BookingService) CompleteBooking(ctx context.Context, id string) (*booking.Booking, error) {
	return s.transitionAndResync(ctx, id, "complete", func(b *booking.Booking) error {
		return b.Complete()
	})
}

type CancelBookingInput struct {
	BookingID     string
	Reason        string
	RequesterID   string
	RequesterRole user.Role
}

// CancelBooking は pending / confirmed の予約をキャンセルする
// 本人または管理者のみ実行可能。他に占有予約がなければ車両は available に戻る
func (s *BookingService) CancelBooking(ctx context.Context, input CancelBookingInput) (*booking.Booking, error) {
	b, err := s.bookingRepo.GetByID(ctx, input.BookingID)
	if err != nil {
		return nil, err
	}
	if input.RequesterRole != user.RoleAdmin && b.UserID != input.RequesterID {
		return nil, booking.ErrNotBookingOwner
	}
	if err := b.Cancel(input.Reason); err != nil {
		return nil, err
	}

	tx, err := s.txManager.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("トランザクション開始に失敗: %w", err)
	}
	defer tx.Rollback()

	if err := s.bookingRepo.Update(ctx, tx, b); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("コミットに失敗: %w", err)
	}

	s.resync(ctx, b.VehicleID)
	s.count("cancel", "success")
	return b, nil
}

// CancelOverduePending は貸出日を過ぎても確定されなかった予約をキャンセルする
// ワーカーから定期的に呼ばれる
func (s *BookingService) CancelOverduePending(ctx context.Context) (int, error) {
	overdue, err := s.bookingRepo.GetOverduePending(ctx, time.Now())
	if err != nil {
		return 0, err
	}

	cancelled := 0
	for _, b := range overdue {
		if err := b.Cancel("booking date passed without confirmation"); err != nil {
			continue
		}
		tx, err := s.txManager.Begin(ctx)
		if err != nil {
			return cancelled, fmt.Errorf("トランザクション開始に失敗: %w", err)
		}
		if err := s.bookingRepo.Update(ctx, tx, b); err != nil {
			tx.Rollback()
			logger.Error("期限切れ予約のキャンセルに失敗",
				zap.String("booking_id", b.ID), zap.Error(err))
			continue
		}
		if err := tx.Commit(); err != nil {
			return cancelled, fmt.Errorf("コミットに失敗: %w", err)
		}
		cancelled++
	}
	return cancelled, nil
}

// CompleteOverdueActive は返却日を過ぎた利用中予約を完了にする
// 定期ジョブから呼ばれる
func (s *BookingService) CompleteOverdueActive(ctx context.Context) (int, error) {
	overdue, err := s.bookingRepo.GetOverdueActive(ctx, time.Now())
	if err != nil {
		return 0, err
	}

	completed := 0
	for _, b := range overdue {
		if err := b.Complete(); err != nil {
			continue
		}
		tx, err := s.txManager.Begin(ctx)
		if err != nil {
			return completed, fmt.Errorf("トランザクション開始に失敗: %w", err)
		}
		if err := s.bookingRepo.Update(ctx, tx, b); err != nil {
			tx.Rollback()
			logger.Error("返却期限超過予約の完了に失敗",
				zap.String("booking_id", b.ID), zap.Error(err))
			continue
		}
		if err := tx.Commit(); err != nil {
			return completed, fmt.Errorf("コミットに失敗: %w", err)
		}
		s.resync(ctx, b.VehicleID)
		completed++
	}
	return completed, nil
}

func (s *BookingService) transitionAndResync(ctx context.Context, id, operation string, apply func(*booking.Booking) error) (*booking.Booking, error) {
	b, err := s.bookingRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := apply(b); err != nil {
		return nil, err
	}

	tx, err := s.txManager.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("トランザクション開始に失敗: %w", err)
	}
	defer tx.Rollback()

	if err := s.bookingRepo.Update(ctx, tx, b); err != nil {
		s.count(operation, "error")
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("コミットに失敗: %w", err)
	}

	s.resync(ctx, b.VehicleID)
	s.count(operation, "success")
	return b, nil
}

// resync は車両ステータスを再導出する（失敗しても予約操作は成立済みなのでログのみ）
func (s *BookingService) resync(ctx context.Context, vehicleID string) {
	if s.resyncer == nil {
		return
	}
	if _, err := s.resyncer.Resync(ctx, vehicleID); err != nil {
		logger.Error("車両ステータス再導出に失敗",
			zap.String("vehicle_id", vehicleID), zap.Error(err))
	}
}

// notifyConfirmed は予約確定メールを送信する（失敗は操作を失敗させない）
func (s *BookingService) notifyConfirmed(ctx context.Context, b *booking.Booking) {
	if s.mail == nil {
		return
	}
	u, err := s.userRepo.GetByID(ctx, b.UserID)
	if err != nil {
		logger.Warn("確定メール送信先の取得に失敗",
			zap.String("user_id", b.UserID), zap.Error(err))
		return
	}
	if err := s.mail.SendBookingConfirmed(u.Email, u.FirstName, b.ID, b.BookingDate, b.ReturnDate, b.TotalAmount); err != nil {
		logger.Warn("予約確定メールの送信に失敗",
			zap.String("booking_id", b.ID), zap.Error(err))
	}
}

func (s *BookingService) count(operation, status string) {
	if s.metrics == nil {
		return
	}
	s.metrics.BookingsTotal.WithLabelValues(operation, status).Inc()
}
