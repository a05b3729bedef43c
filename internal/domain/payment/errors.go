package payment

import "errors"

// Payment ドメインのエラー定義
var (
	ErrPaymentNotFound   = errors.New("支払いが見つかりません")
	ErrInvalidTransition = errors.New("許可されていない支払いステータス遷移です")
	ErrBookingIDRequired = errors.New("予約IDは必須です")
	ErrUserIDRequired    = errors.New("ユーザーIDは必須です")
	ErrInvalidAmount     = errors.New("金額は0より大きい必要があります")
	ErrInvalidMethod     = errors.New("無効な支払い方法です")
	ErrAmountExceedsDue  = errors.New("金額が予約の未払い残高を超えています")
	ErrBookingNotPayable = errors.New("キャンセル済みの予約には支払いできません")
)
