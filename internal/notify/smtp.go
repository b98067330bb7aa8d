package notify

import (
	"context"
	"fmt"
	"net"
	"net/smtp"
	"strconv"
	"strings"
	"time"

	"timeTracker/internal/logger"

	"github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"
)

type sendFunc func(addr string, a smtp.Auth, from string, to []string, msg []byte) error

type SMTPOptions struct {
	Host       string
	Port       int
	Username   string
	Password   string
	MaxRetries uint64
}

// SMTPNotifier повторяет отправку с экспоненциальной задержкой
type SMTPNotifier struct {
	addr       string
	auth       smtp.Auth
	maxRetries uint64
	initial    time.Duration
	send       sendFunc
}

func NewSMTP(opts SMTPOptions) *SMTPNotifier {
	var auth smtp.Auth
	if opts.Username != "" {
		auth = smtp.PlainAuth("", opts.Username, opts.Password, opts.Host)
	}
	return &SMTPNotifier{
		addr:       net.JoinHostPort(opts.Host, strconv.Itoa(opts.Port)),
		auth:       auth,
		maxRetries: opts.MaxRetries,
		initial:    500 * time.Millisecond,
		send:       smtp.SendMail,
	}
}

func (n *SMTPNotifier) Send(ctx context.Context, subject, message, from, to string) error {
	msg := buildMessage(subject, message, from, to)

	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = n.initial
	retry := backoff.WithContext(backoff.WithMaxRetries(policy, n.maxRetries), ctx)

	attempt := 0
	op := func() error {
		attempt++
		if err := n.send(n.addr, n.auth, from, []string{to}, msg); err != nil {
			logger.Warn("Notify: Ошибка отправки письма",
				zap.String("to", to),
				zap.Int("attempt", attempt),
				zap.Error(err))
			return err
		}
		return nil
	}

	if err := backoff.Retry(op, retry); err != nil {
		return fmt.Errorf("отправка письма %s: %w", to, err)
	}
	return nil
}

func buildMessage(subject, message, from, to string) []byte {
	var b strings.Builder
	b.WriteString("From: " + from + "\r\n")
	b.WriteString("To: " + to + "\r\n")
	b.WriteString("Subject: " + subject + "\r\n")
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/plain; charset=\"utf-8\"\r\n")
	b.WriteString("\r\n")
	b.WriteString(strings.ReplaceAll(message, "\n", "\r\n"))
	b.WriteString("\r\n")
	return []byte(b.String())
}
