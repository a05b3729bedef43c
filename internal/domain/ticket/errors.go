package ticket

import "errors"

// Ticket ドメインのエラー定義
var (
	ErrTicketNotFound    = errors.New("チケットが見つかりません")
	ErrTicketNotOpen     = errors.New("チケットは open 状態ではありません")
	ErrInvalidTransition = errors.New("許可されていないチケットステータス遷移です")
	ErrUserIDRequired    = errors.New("ユーザーIDは必須です")
	ErrSubjectRequired   = errors.New("件名は必須です")
	ErrAssigneeNotAgent  = errors.New("担当者は support_agent または admin である必要があります")
)
