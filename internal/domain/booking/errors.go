package booking

import "errors"

// Booking ドメインのエラー定義
var (
	ErrBookingNotFound         = errors.New("予約が見つかりません")
	ErrBookingConflict         = errors.New("同じ車両の重複する予約が既に存在します")
	ErrBookingAlreadyCancelled = errors.New("予約は既にキャンセルされています")
	ErrInvalidTransition       = errors.New("許可されていない予約ステータス遷移です")
	ErrInvalidDateRange        = errors.New("返却日は貸出日より後である必要があります")
	ErrUserIDRequired          = errors.New("ユーザーIDは必須です")
	ErrVehicleIDRequired       = errors.New("車両IDは必須です")
	ErrLocationIDRequired      = errors.New("拠点IDは必須です")
	ErrNotBookingOwner         = errors.New("この予約の所有者ではありません")
)
