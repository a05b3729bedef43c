package transaction

import "context"

// Tx はDBトランザクションの抽象
// 予約の重複チェックと作成、支払いの残額検証と記録のように、
// 読みと書きを同一トランザクションで行う操作のための境界を表す。
// ドメイン層がsqlx等のインフラ実装へ依存しないための抽象化でもある
type Tx interface {
	// Commit はトランザクションを確定する
	Commit() error
	// Rollback はトランザクションを破棄する
	// 呼び出し側は defer で呼び、Commit済みの場合のエラーは捨てる
	Rollback() error
}

// Manager はトランザクションの開始点
// 実装は infrastructure/postgres の TxManager
type Manager interface {
	// Begin は新しいトランザクションを開始する
	Begin(ctx context.Context) (Tx, error)
}
