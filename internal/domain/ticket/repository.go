package ticket

import "context"

// ListFilter はチケット一覧の絞り込み条件
type ListFilter struct {
	Status     Status
	AssignedTo string
	UserID     string
	Limit      int
	Offset     int
}

// Repository はチケットリポジトリのインターフェース
type Repository interface {
	// Create は新しいチケットを作成する
	Create(ctx context.Context, t *Ticket) error

	// GetByID はIDからチケットを取得する
	GetByID(ctx context.Context, id string) (*Ticket, error)

	// List は条件に合致するチケット一覧を取得する
	List(ctx context.Context, filter ListFilter) ([]*Ticket, error)

	// Update はチケットを更新する
	Update(ctx context.Context, t *Ticket) error
}
