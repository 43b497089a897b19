package notification

import (
	"context"
	"fmt"
	"net/smtp"

	"go.uber.org/zap"
)

// SMTP経由のメール通知。
type SMTPNotifier struct {
	host     string
	port     string
	username string
	password string
	from     string
	logger   *zap.Logger
}

func NewSMTPNotifier(host, port, username, password, from string, logger *zap.Logger) *SMTPNotifier {
	return &SMTPNotifier{
		host:     host,
		port:     port,
		username: username,
		password: password,
		from:     from,
		logger:   logger,
	}
}

func (n *SMTPNotifier) Send(ctx context.Context, recipient string, subject string, body string) error {
	msg := []byte("From: " + n.from + "\r\n" +
		"To: " + recipient + "\r\n" +
		"Subject: " + subject + "\r\n" +
		"MIME-Version: 1.0\r\n" +
		"Content-Type: text/html; charset=\"UTF-8\"\r\n" +
		"\r\n" +
		body + "\r\n")

	addr := fmt.Sprintf("%s:%s", n.host, n.port)

	var auth smtp.Auth
	if n.username != "" {
		auth = smtp.PlainAuth("", n.username, n.password, n.host)
	}

	if err := smtp.SendMail(addr, auth, n.from, []string{recipient}, msg); err != nil {
		n.logger.Warn("smtp send failed",
			zap.String("recipient", recipient),
			zap.String("subject", subject),
			zap.Error(err))
		return err
	}

	n.logger.Info("notification sent",
		zap.String("recipient", recipient),
		zap.String("subject", subject))
	return nil
}
