package location

import "errors"

// Location ドメインのエラー定義
var (
	ErrLocationNotFound = errors.New("拠点が見つかりません")
	ErrNameRequired     = errors.New("拠点名は必須です")
	ErrCityRequired     = errors.New("都市名は必須です")
	ErrLocationInUse    = errors.New("この拠点を参照する予約が存在するため削除できません")
)
