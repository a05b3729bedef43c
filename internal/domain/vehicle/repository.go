package vehicle

import (
	"context"

	"github.com/calchukom/caldepaz-sub001/internal/domain/transaction"
)

// ListFilter は車両一覧の絞り込み条件
type ListFilter struct {
	LocationID string
	Status     Status
	Limit      int
	Offset     int
}

// Repository は車両リポジトリのインターフェース
type Repository interface {
	// Create は新しい車両を作成する
	Create(ctx context.Context, v *Vehicle) error

	// GetByID はIDから車両を取得する
	GetByID(ctx context.Context, id string) (*Vehicle, error)

	// List は条件に合致する車両一覧を取得する
	List(ctx context.Context, filter ListFilter) ([]*Vehicle, error)

	// Update は車両の属性を更新する（楽観的ロック）
	Update(ctx context.Context, v *Vehicle) error

	// UpdateStatus は車両ステータスを更新する（トランザクション必須）
	UpdateStatus(ctx context.Context, tx transaction.Tx, id string, status Status) error

	// CountAvailableByLocation は拠点ごとの貸出可能台数を返す
	CountAvailableByLocation(ctx context.Context, locationID string) (int, error)
}

// SpecificationRepository は車種テンプレートリポジトリのインターフェース
type SpecificationRepository interface {
	// Create は新しい車種テンプレートを作成する
	Create(ctx context.Context, s *Specification) error

	// GetByID はIDから車種テンプレートを取得する
	GetByID(ctx context.Context, id string) (*Specification, error)

	// List は車種テンプレート一覧を取得する
	List(ctx context.Context, limit, offset int) ([]*Specification, error)
}
