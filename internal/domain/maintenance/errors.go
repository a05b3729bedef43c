package maintenance

import "errors"

// Maintenance ドメインのエラー定義
var (
	ErrRecordNotFound      = errors.New("整備記録が見つかりません")
	ErrInvalidTransition   = errors.New("許可されていない整備ステータス遷移です")
	ErrVehicleIDRequired   = errors.New("車両IDは必須です")
	ErrServiceTypeRequired = errors.New("整備種別は必須です")
	ErrInvalidCost         = errors.New("費用は0以上である必要があります")
	ErrVehicleRented       = errors.New("貸出中の車両の整備は開始できません")
)
