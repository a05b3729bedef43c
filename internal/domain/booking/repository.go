package booking

import (
	"context"
	"time"

	"github.com/calchukom/caldepaz-sub001/internal/domain/transaction"
)

// Repository は予約リポジトリのインターフェース
type Repository interface {
	// Create は新しい予約を作成する（トランザクション必須）
	Create(ctx context.Context, tx transaction.Tx, b *Booking) error

	// GetByID はIDから予約を取得する
	GetByID(ctx context.Context, id string) (*Booking, error)

	// GetByUserID はユーザーIDから予約一覧を取得する
	GetByUserID(ctx context.Context, userID string, limit, offset int) ([]*Booking, error)

	// Update は予約を更新する（トランザクション必須）
	Update(ctx context.Context, tx transaction.Tx, b *Booking) error

	// CountOverlapping は指定車両・期間に重なる confirmed/active 予約数を返す
	// excludeID が空でない場合はその予約を除外する（トランザクション内で行ロックを取る）
	CountOverlapping(ctx context.Context, tx transaction.Tx, vehicleID string, bookingDate, returnDate time.Time, excludeID string) (int, error)

	// GetBlockingByVehicle は車両を占有している confirmed/active 予約を返す
	GetBlockingByVehicle(ctx context.Context, vehicleID string) ([]*Booking, error)

	// GetOverduePending は貸出日を過ぎても未確定の予約を返す
	GetOverduePending(ctx context.Context, now time.Time) ([]*Booking, error)

	// GetOverdueActive は返却日を過ぎても利用中の予約を返す
	GetOverdueActive(ctx context.Context, now time.Time) ([]*Booking, error)

	// ExistsByLocation は拠点を参照する予約が存在するかを返す
	ExistsByLocation(ctx context.Context, locationID string) (bool, error)
}
