package payment

import (
	"context"

	"github.com/calchukom/caldepaz-sub001/internal/domain/transaction"
)

// Repository は支払いリポジトリのインターフェース
type Repository interface {
	// Create は新しい支払いを作成する（トランザクション必須）
	Create(ctx context.Context, tx transaction.Tx, p *Payment) error

	// GetByID はIDから支払いを取得する
	GetByID(ctx context.Context, id string) (*Payment, error)

	// GetByBookingID は予約IDから支払い一覧を取得する
	GetByBookingID(ctx context.Context, bookingID string) ([]*Payment, error)

	// Update は支払いを更新する（トランザクション必須）
	Update(ctx context.Context, tx transaction.Tx, p *Payment) error

	// SumCompletedByBooking は予約に対する completed 支払いの合計額を返す
	// トランザクション内で行ロックを取り、残高検証との競合を防ぐ
	SumCompletedByBooking(ctx context.Context, tx transaction.Tx, bookingID string) (float64, error)
}
