package maintenance

import "context"

// Repository は整備記録リポジトリのインターフェース
type Repository interface {
	// Create は新しい整備記録を作成する
	Create(ctx context.Context, r *Record) error

	// GetByID はIDから整備記録を取得する
	GetByID(ctx context.Context, id string) (*Record, error)

	// GetByVehicleID は車両IDから整備記録一覧を取得する
	GetByVehicleID(ctx context.Context, vehicleID string, limit, offset int) ([]*Record, error)

	// GetBlockingByVehicle は車両の貸出をブロックしている整備記録を返す
	GetBlockingByVehicle(ctx context.Context, vehicleID string) ([]*Record, error)

	// Update は整備記録を更新する
	Update(ctx context.Context, r *Record) error
}
