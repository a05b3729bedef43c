package vehicle

import "errors"

// Vehicle ドメインのエラー定義
var (
	ErrVehicleNotFound         = errors.New("車両が見つかりません")
	ErrSpecificationNotFound   = errors.New("車種テンプレートが見つかりません")
	ErrVehicleNotAvailable     = errors.New("車両は貸出できません")
	ErrSpecificationIDRequired = errors.New("車種テンプレートIDは必須です")
	ErrLocationIDRequired      = errors.New("拠点IDは必須です")
	ErrLicensePlateRequired    = errors.New("ナンバープレートは必須です")
	ErrLicensePlateExists      = errors.New("同じナンバープレートの車両が既に存在します")
	ErrInvalidRentalRate       = errors.New("料金は0より大きい必要があります")
	ErrInvalidStatus           = errors.New("無効な車両ステータスです")
	ErrManualStatusOnly        = errors.New("手動で設定できるのは out_of_service / damaged / available のみです")
	ErrMakeModelRequired       = errors.New("メーカーとモデルは必須です")
	ErrInvalidYear             = errors.New("年式が不正です")
	ErrOptimisticLockConflict  = errors.New("楽観的ロックの競合が発生しました")
)
