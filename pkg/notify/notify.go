// Package notify delivers recovery tokens to a user's registered address.
package notify

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/smtp"
	"os"
	"strings"
	"time"

	"github.com/aussiebroadwan/mindful/pkg/slogx"
)

// Notifier sends token to the address to. Callers treat delivery as best
// effort.
type Notifier interface {
	Send(ctx context.Context, to, token string) error
}

// ErrInvalidAddress rejects addresses that could inject mail headers.
var ErrInvalidAddress = errors.New("notify: invalid address")

// SMTPConfig describes the relay used by SMTPNotifier.
type SMTPConfig struct {
	Host     string
	Port     string
	From     string
	Username string
	Password string
	Subject  string
	TTL      time.Duration
}

// SMTPNotifier mails the reset token through an SMTP relay.
type SMTPNotifier struct {
	cfg SMTPConfig

	// dial opens the relay connection. It is net.Dialer.DialContext outside tests.
	dial func(ctx context.Context, network, addr string) (net.Conn, error)
}

func NewSMTPNotifier(cfg SMTPConfig) *SMTPNotifier {
	if cfg.Subject == "" {
		cfg.Subject = "Your password reset code"
	}
	return &SMTPNotifier{cfg: cfg, dial: (&net.Dialer{}).DialContext}
}

// Send delivers the token and gives up once ctx is done, including while
// waiting on a relay that has stopped responding.
func (n *SMTPNotifier) Send(ctx context.Context, to, token string) error {
	if to == "" || strings.ContainsAny(to, "\r\n") {
		return ErrInvalidAddress
	}

	conn, err := n.dial(ctx, "tcp", net.JoinHostPort(n.cfg.Host, n.cfg.Port))
	if err != nil {
		return fmt.Errorf("notify: smtp dial: %w", err)
	}
	defer conn.Close()

	if deadline, ok := ctx.Deadline(); ok {
		if err := conn.SetDeadline(deadline); err != nil {
			return fmt.Errorf("notify: smtp deadline: %w", err)
		}
	}
	// Cancellation without a deadline unblocks pending I/O as well.
	stop := context.AfterFunc(ctx, func() { _ = conn.SetDeadline(time.Now()) })
	defer stop()

	if err := n.deliver(conn, to, token); err != nil {
		// Conn deadlines only ever come from ctx, so ctx is done or about to be.
		if errors.Is(err, os.ErrDeadlineExceeded) {
			<-ctx.Done()
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return fmt.Errorf("notify: smtp send: %w", ctxErr)
		}
		return fmt.Errorf("notify: smtp send: %w", err)
	}
	return nil
}

// deliver runs the SMTP conversation on conn the way smtp.SendMail does.
func (n *SMTPNotifier) deliver(conn net.Conn, to, token string) error {
	c, err := smtp.NewClient(conn, n.cfg.Host)
	if err != nil {
		return err
	}
	defer c.Close()

	if ok, _ := c.Extension("STARTTLS"); ok {
		if err := c.StartTLS(&tls.Config{ServerName: n.cfg.Host, MinVersion: tls.VersionTLS12}); err != nil {
			return err
		}
	}
	if n.cfg.Username != "" {
		if ok, _ := c.Extension("AUTH"); !ok {
			return errors.New("server doesn't support AUTH")
		}
		if err := c.Auth(smtp.PlainAuth("", n.cfg.Username, n.cfg.Password, n.cfg.Host)); err != nil {
			return err
		}
	}

	if err := c.Mail(n.cfg.From); err != nil {
		return err
	}
	if err := c.Rcpt(to); err != nil {
		return err
	}
	w, err := c.Data()
	if err != nil {
		return err
	}
	if _, err := w.Write(n.message(to, token)); err != nil {
		return err
	}
	if err := w.Close(); err != nil {
		return err
	}
	return c.Quit()
}

func (n *SMTPNotifier) message(to, token string) []byte {
	var b strings.Builder
	fmt.Fprintf(&b, "From: %s\r\n", n.cfg.From)
	fmt.Fprintf(&b, "To: %s\r\n", to)
	fmt.Fprintf(&b, "Subject: %s\r\n", n.cfg.Subject)
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/plain; charset=UTF-8\r\n\r\n")
	b.WriteString("Someone answered the security questions on your account and asked to reset the password.\r\n\r\n")
	fmt.Fprintf(&b, "Reset code: %s\r\n\r\n", token)
	if n.cfg.TTL > 0 {
		fmt.Fprintf(&b, "The code expires in %s and works once.\r\n", n.cfg.TTL)
	}
	b.WriteString("If this was not you, you can ignore this message.\r\n")
	return []byte(b.String())
}

// LogNotifier writes the delivery to the log instead of sending it. It is
// meant for development; the token itself is never logged.
type LogNotifier struct{}

func (LogNotifier) Send(ctx context.Context, to, token string) error {
	slogx.FromContext(ctx).Info("recovery notification",
		slog.String("to", to),
		slog.Int("token_len", len(token)),
	)
	return nil
}
