package notification

import (
	"context"
	"fmt"
	"mime/multipart"
	"net/smtp"
	"net/textproto"
	"strings"

	"github.com/Dhoini/course-marketplace/pkg/logger"
)

// SMTPConfig параметры SMTP сервера
type SMTPConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	From     string
}

// sendMailFunc совпадает с сигнатурой smtp.SendMail
type sendMailFunc func(addr string, a smtp.Auth, from string, to []string, msg []byte) error

// SMTPNotifier отправляет письма через SMTP
type SMTPNotifier struct {
	cfg      SMTPConfig
	log      *logger.Logger
	sendMail sendMailFunc
}

func NewSMTPNotifier(cfg SMTPConfig, log *logger.Logger) *SMTPNotifier {
	return &SMTPNotifier{
		cfg:      cfg,
		log:      log,
		sendMail: smtp.SendMail,
	}
}

// Send отправляет письмо в формате multipart/alternative (text + html)
func (n *SMTPNotifier) Send(ctx context.Context, email Email) error {
	if email.To == "" {
		return ErrNoRecipient
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	msg, err := buildMessage(n.cfg.From, email)
	if err != nil {
		return fmt.Errorf("failed to build email: %w", err)
	}

	var auth smtp.Auth
	if n.cfg.User != "" {
		auth = smtp.PlainAuth("", n.cfg.User, n.cfg.Password, n.cfg.Host)
	}

	addr := fmt.Sprintf("%s:%d", n.cfg.Host, n.cfg.Port)
	if err := n.sendMail(addr, auth, n.cfg.From, []string{email.To}, msg); err != nil {
		n.log.Errorw("Failed to send email", "error", err, "to", email.To, "subject", email.Subject)
		return fmt.Errorf("failed to send email: %w", err)
	}

	n.log.Infow("Email sent", "to", email.To, "subject", email.Subject)
	return nil
}

func buildMessage(from string, email Email) ([]byte, error) {
	var body strings.Builder
	mw := multipart.NewWriter(&body)

	for _, part := range []struct {
		contentType string
		content     string
	}{
		{"text/plain; charset=UTF-8", email.Text},
		{"text/html; charset=UTF-8", email.HTML},
	} {
		w, err := mw.CreatePart(textproto.MIMEHeader{"Content-Type": {part.contentType}})
		if err != nil {
			return nil, err
		}
		if _, err := w.Write([]byte(part.content)); err != nil {
			return nil, err
		}
	}
	if err := mw.Close(); err != nil {
		return nil, err
	}

	var msg strings.Builder
	fmt.Fprintf(&msg, "From: %s\r\n", from)
	fmt.Fprintf(&msg, "To: %s\r\n", email.To)
	fmt.Fprintf(&msg, "Subject: %s\r\n", email.Subject)
	msg.WriteString("MIME-Version: 1.0\r\n")
	fmt.Fprintf(&msg, "Content-Type: multipart/alternative; boundary=%s\r\n\r\n", mw.Boundary())
	msg.WriteString(body.String())

	return []byte(msg.String()), nil
}
