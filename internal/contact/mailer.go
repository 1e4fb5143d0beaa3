package contact

import (
	"context"
	"fmt"
	"net"
	"net/smtp"
	"strconv"

	"go.uber.org/zap"
)

// Mailer delivers a composed message.
type Mailer interface {
	Send(ctx context.Context, msg Message) error
}

type sendFunc func(addr string, a smtp.Auth, from string, to []string, msg []byte) error

// SMTPMailer hands messages to an SMTP relay.
type SMTPMailer struct {
	addr string
	auth smtp.Auth
	send sendFunc
}

// NewSMTPMailer returns a mailer for host:port. Authentication is skipped
// when username is empty.
func NewSMTPMailer(host string, port int, username, password string) *SMTPMailer {
	m := &SMTPMailer{
		addr: net.JoinHostPort(host, strconv.Itoa(port)),
		send: smtp.SendMail,
	}
	if username != "" {
		m.auth = smtp.PlainAuth("", username, password, host)
	}
	return m
}

// Send delivers msg. net/smtp has no context support, so ctx is only
// checked before dialling.
func (m *SMTPMailer) Send(ctx context.Context, msg Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := m.send(m.addr, m.auth, msg.From.Address, []string{msg.To}, msg.Bytes()); err != nil {
		return fmt.Errorf("smtp send via %s: %w", m.addr, err)
	}
	return nil
}

// LogMailer writes messages to the log instead of sending them.
type LogMailer struct {
	logger *zap.Logger
}

// NewLogMailer returns a mailer that logs through logger.
func NewLogMailer(logger *zap.Logger) *LogMailer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LogMailer{logger: logger}
}

// Send logs msg and never fails.
func (m *LogMailer) Send(_ context.Context, msg Message) error {
	m.logger.Info("contact message captured",
		zap.String("to", msg.To),
		zap.String("reply_to", msg.ReplyTo),
		zap.String("subject", msg.Subject),
		zap.Int("html_bytes", len(msg.HTML)),
	)
	m.logger.Debug("contact message body", zap.String("html", msg.HTML))
	return nil
}
