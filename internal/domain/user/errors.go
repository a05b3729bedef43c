package user

import "errors"

// User ドメインのエラー定義
var (
	ErrUserNotFound       = errors.New("ユーザーが見つかりません")
	ErrEmailAlreadyExists = errors.New("同じメールアドレスのユーザーが既に存在します")
	ErrEmailRequired      = errors.New("メールアドレスは必須です")
	ErrPasswordRequired   = errors.New("パスワードは必須です")
	ErrInvalidRole        = errors.New("無効な役割です")
	ErrInvalidCredentials = errors.New("メールアドレスまたはパスワードが正しくありません")
	ErrNotAgent           = errors.New("サポート担当者または管理者ではありません")
)
