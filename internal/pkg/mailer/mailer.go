package mailer

import (
	"fmt"
	"time"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
	"go.uber.org/zap"

	"github.com/calchukom/caldepaz-sub001/internal/config"
	"github.com/calchukom/caldepaz-sub001/internal/pkg/logger"
)

// Mailer はメール送信のインターフェース
// 送信失敗は呼び出し元の処理を失敗させない（ログのみ）
type Mailer interface {
	SendWelcome(to, name string) error
	SendBookingConfirmed(to, name, bookingID string, bookingDate, returnDate time.Time, totalAmount float64) error
}

// SendGridMailer はSendGridを使ったメール送信
type SendGridMailer struct {
	client *sendgrid.Client
	from   *mail.Email
}

// NewSendGridMailer は新しいSendGridMailerを作成する
func NewSendGridMailer(cfg *config.MailConfig) *SendGridMailer {
	return &SendGridMailer{
		client: sendgrid.NewSendClient(cfg.SendGridAPIKey),
		from:   mail.NewEmail(cfg.FromName, cfg.FromAddress),
	}
}

// SendWelcome は登録完了メールを送信する
func (m *SendGridMailer) SendWelcome(to, name string) error {
	subject := "Welcome to Caldepaz Rentals"
	body := fmt.Sprintf("Hi %s,\n\nYour account has been created. You can now browse and book vehicles.\n\nCaldepaz Rentals", name)
	return m.send(to, name, subject, body)
}

// SendBookingConfirmed は予約確定メールを送信する
func (m *SendGridMailer) SendBookingConfirmed(to, name, bookingID string, bookingDate, returnDate time.Time, totalAmount float64) error {
	subject := fmt.Sprintf("Booking confirmed - %s", bookingID)
	body := fmt.Sprintf(
		"Hi %s,\n\nYour booking %s is confirmed.\n\nPickup: %s\nReturn: %s\nTotal: %.2f\n\nCaldepaz Rentals",
		name, bookingID,
		bookingDate.Format("02 Jan 2006 15:04 MST"),
		returnDate.Format("02 Jan 2006 15:04 MST"),
		totalAmount,
	)
	return m.send(to, name, subject, body)
}

func (m *SendGridMailer) send(to, name, subject, body string) error {
	message := mail.NewSingleEmail(m.from, subject, mail.NewEmail(name, to), body, "")
	resp, err := m.client.Send(message)
	if err != nil {
		return fmt.Errorf("メール送信に失敗: %w", err)
	}
	if resp.StatusCode >= 400 {
		return fmt.Errorf("メール送信に失敗: status=%d", resp.StatusCode)
	}
	return nil
}

// NopMailer は送信せずログだけ出すメーラー（APIキー未設定時・テスト用）
type NopMailer struct{}

// SendWelcome はログのみ出力する
func (NopMailer) SendWelcome(to, _ string) error {
	logger.Debug("メール送信スキップ（welcome）", zap.String("to", to))
	return nil
}

// SendBookingConfirmed はログのみ出力する
func (NopMailer) SendBookingConfirmed(to, _, bookingID string, _, _ time.Time, _ float64) error {
	logger.Debug("メール送信スキップ（booking confirmed）",
		zap.String("to", to), zap.String("booking_id", bookingID))
	return nil
}
