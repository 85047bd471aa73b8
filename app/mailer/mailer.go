package mailer

import (
	"context"
	"fmt"
	"net/smtp"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/rebk-studio/ms-go-studio/app/factory"
)

type Message struct {
	Subject string
	Body    string
	To      []string
}

// Sender delivers operator and customer notifications. Fire-and-forget from
// the caller's point of view; delivery failures surface as ordinary errors.
type Sender interface {
	Send(ctx context.Context, msg *Message) error
}

type SMTPConfig struct {
	Host     string
	Port     string
	Username string
	Password string
	From     string
}

type SMTPSender struct {
	cfg    SMTPConfig
	logger logrus.FieldLogger
}

func NewSMTPSender(cfg SMTPConfig) *SMTPSender {
	return &SMTPSender{
		cfg:    cfg,
		logger: factory.NewModuleLogger("mailer"),
	}
}

func (s *SMTPSender) Send(_ context.Context, msg *Message) error {
	if len(msg.To) == 0 {
		return fmt.Errorf("no recipients for message %q", msg.Subject)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "From: %s\r\n", s.cfg.From)
	fmt.Fprintf(&b, "To: %s\r\n", strings.Join(msg.To, ", "))
	fmt.Fprintf(&b, "Subject: %s\r\n", msg.Subject)
	b.WriteString("MIME-Version: 1.0\r\nContent-Type: text/plain; charset=utf-8\r\n\r\n")
	b.WriteString(msg.Body)

	addr := s.cfg.Host + ":" + s.cfg.Port
	var auth smtp.Auth
	if s.cfg.Username != "" {
		auth = smtp.PlainAuth("", s.cfg.Username, s.cfg.Password, s.cfg.Host)
	}

	if err := smtp.SendMail(addr, auth, s.cfg.From, msg.To, []byte(b.String())); err != nil {
		return fmt.Errorf("send mail %q: %w", msg.Subject, err)
	}

	s.logger.WithFields(logrus.Fields{
		"subject":    msg.Subject,
		"recipients": len(msg.To),
	}).Info("mail_sent")

	return nil
}

// LogSender is used when no SMTP host is configured; messages go to the log
// instead of the wire.
type LogSender struct {
	logger logrus.FieldLogger
}

func NewLogSender() *LogSender {
	return &LogSender{logger: factory.NewModuleLogger("mailer")}
}

func (s *LogSender) Send(_ context.Context, msg *Message) error {
	s.logger.WithFields(logrus.Fields{
		"subject": msg.Subject,
		"to":      strings.Join(msg.To, ", "),
		"body":    msg.Body,
	}).Info("mail_logged")
	return nil
}
