package location

import "context"

// Repository は拠点リポジトリのインターフェース
type Repository interface {
	// Create は新しい拠点を作成する
	Create(ctx context.Context, l *Location) error

	// GetByID はIDから拠点を取得する
	GetByID(ctx context.Context, id string) (*Location, error)

	// List は拠点一覧を取得する
	List(ctx context.Context, limit, offset int) ([]*Location, error)

	// Update は拠点を更新する
	Update(ctx context.Context, l *Location) error

	// Delete は拠点を削除する
	// 拠点を参照する予約が存在する場合は ErrLocationInUse を返す
	Delete(ctx context.Context, id string) error
}
