// Package mailer はお問い合わせフォームのメール中継を提供する。
//
// SMTP送信はブロッキングのネットワーク呼び出しであるため、
// 必ずタイムアウト付きのコンテキストで実行し、失敗はユーザーに
// 再送信可能なエラーとして返す。メッセージを黙って破棄しない。
package mailer

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/wneessen/go-mail"

	"github.com/hitoshi/blogman/internal/model"
)

// ContactMessage はお問い合わせフォームから送信されたメッセージを表す。
type ContactMessage struct {
	Name    string
	Email   string
	Phone   string
	Message string
}

// Sender はメール送信のインターフェース。
// テストではモックに差し替える。
type Sender interface {
	// Send はお問い合わせメッセージを管理者宛てに送信する。
	Send(ctx context.Context, msg ContactMessage) error
}

// Config はSMTP中継の設定。認証情報は環境変数から供給される。
type Config struct {
	Host      string
	Port      int
	Username  string
	Password  string
	From      string
	Recipient string
	Timeout   time.Duration
}

// SMTPSender はgo-mailを使用したSender実装。
type SMTPSender struct {
	config Config
}

// NewSMTPSender はSMTPSenderを生成する。
func NewSMTPSender(config Config) *SMTPSender {
	if config.Timeout <= 0 {
		config.Timeout = 10 * time.Second
	}
	if config.From == "" {
		config.From = config.Username
	}
	return &SMTPSender{config: config}
}

// Send はお問い合わせメッセージをSMTPで送信する。
// 設定不足・接続失敗・送信失敗はすべてMailTransportエラーとして返す。
// 送信はConfig.Timeoutで打ち切られ、リクエストを無期限に待たせない。
func (s *SMTPSender) Send(ctx context.Context, msg ContactMessage) error {
	if s.config.Host == "" || s.config.Recipient == "" {
		slog.Error("mail relay is not configured")
		return model.NewMailTransportError()
	}

	m := mail.NewMsg()
	if err := m.From(s.config.From); err != nil {
		slog.Error("invalid mail from address", slog.String("error", err.Error()))
		return model.NewMailTransportError()
	}
	if err := m.To(s.config.Recipient); err != nil {
		slog.Error("invalid mail recipient address", slog.String("error", err.Error()))
		return model.NewMailTransportError()
	}
	if msg.Email != "" {
		// 返信先は送信者本人。不正な形式ならヘッダーを付けずに続行する。
		if err := m.ReplyTo(msg.Email); err != nil {
			slog.Warn("invalid reply-to address, header omitted")
		}
	}

	m.Subject("New Message")
	m.SetBodyString(mail.TypeTextPlain, formatBody(msg))

	client, err := mail.NewClient(s.config.Host,
		mail.WithPort(s.config.Port),
		mail.WithSMTPAuth(mail.SMTPAuthPlain),
		mail.WithUsername(s.config.Username),
		mail.WithPassword(s.config.Password),
		mail.WithTLSPolicy(mail.TLSMandatory),
	)
	if err != nil {
		slog.Error("failed to create smtp client", slog.String("error", err.Error()))
		return model.NewMailTransportError()
	}

	sendCtx, cancel := context.WithTimeout(ctx, s.config.Timeout)
	defer cancel()

	if err := client.DialAndSendWithContext(sendCtx, m); err != nil {
		slog.Error("failed to relay contact message",
			slog.String("error", err.Error()),
		)
		return model.NewMailTransportError()
	}

	slog.Info("contact message relayed")
	return nil
}

// formatBody はメール本文を組み立てる。元ブログと同じ項目構成。
func formatBody(msg ContactMessage) string {
	return fmt.Sprintf("Name: %s\nEmail: %s\nPhone: %s\nMessage:\n%s\n",
		msg.Name, msg.Email, msg.Phone, msg.Message)
}

// compile-time interface check
var _ Sender = (*SMTPSender)(nil)
