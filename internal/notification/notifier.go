package notification

import "context"

// 一方向の「ユーザーへ知らせる」窓口。
// 送信失敗は呼び出し元の処理を失敗させない（ログだけ残して握りつぶす）。
type Notifier interface {
	Send(ctx context.Context, recipient string, subject string, body string) error
}
