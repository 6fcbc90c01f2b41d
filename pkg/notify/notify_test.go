package notify

import (
	"bufio"
	"context"
	"errors"
	"net"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// fakeRelay is a minimal SMTP server that accepts one message per connection.
type fakeRelay struct {
	ln net.Listener

	mu   sync.Mutex
	auth bool
	rcpt []string
	data string
}

func startFakeRelay(t *testing.T) *fakeRelay {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	t.Cleanup(func() { _ = ln.Close() })

	r := &fakeRelay{ln: ln}
	go func() {
		for {
			conn, err := ln.Accept()
			if err != nil {
				return
			}
			go r.serve(conn)
		}
	}()
	return r
}

func (r *fakeRelay) serve(conn net.Conn) {
	defer conn.Close()
	rd := bufio.NewReader(conn)
	reply := func(s string) { _, _ = conn.Write([]byte(s + "\r\n")) }

	reply("220 fake ESMTP")
	for {
		line, err := rd.ReadString('\n')
		if err != nil {
			return
		}
		line = strings.TrimRight(line, "\r\n")
		verb, _, _ := strings.Cut(line, " ")

		switch strings.ToUpper(verb) {
		case "EHLO":
			reply("250-fake")
			reply("250 AUTH PLAIN")
		case "AUTH":
			r.mu.Lock()
			r.auth = true
			r.mu.Unlock()
			reply("235 2.7.0 accepted")
		case "MAIL":
			reply("250 ok")
		case "RCPT":
			r.mu.Lock()
			r.rcpt = append(r.rcpt, line)
			r.mu.Unlock()
			reply("250 ok")
		case "DATA":
			reply("354 go ahead")
			var b strings.Builder
			for {
				l, err := rd.ReadString('\n')
				if err != nil {
					return
				}
				if l == ".\r\n" {
					break
				}
				b.WriteString(l)
			}
			r.mu.Lock()
			r.data = b.String()
			r.mu.Unlock()
			reply("250 queued")
		case "QUIT":
			reply("221 bye")
			return
		default:
			reply("502 unrecognised")
		}
	}
}

func (r *fakeRelay) config() SMTPConfig {
	host, port, _ := net.SplitHostPort(r.ln.Addr().String())
	return SMTPConfig{Host: host, Port: port, From: "no-reply@example.com"}
}

func TestSMTPNotifier_Send(t *testing.T) {
	relay := startFakeRelay(t)

	cfg := relay.config()
	cfg.Username = "relay"
	cfg.Password = "secret"
	cfg.TTL = 10 * time.Minute
	n := NewSMTPNotifier(cfg)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, n.Send(ctx, "alice@example.com", "TOKEN123"))

	relay.mu.Lock()
	defer relay.mu.Unlock()
	require.True(t, relay.auth)
	require.Equal(t, []string{"RCPT TO:<alice@example.com>"}, relay.rcpt)
	require.Contains(t, relay.data, "To: alice@example.com\r\n")
	require.Contains(t, relay.data, "Subject: Your password reset code\r\n")
	require.Contains(t, relay.data, "Reset code: TOKEN123")
	require.Contains(t, relay.data, "expires in 10m0s")
}

func TestSMTPNotifier_Errors(t *testing.T) {
	n := NewSMTPNotifier(SMTPConfig{Host: "localhost", Port: "25", From: "a@b"})
	n.dial = func(context.Context, string, string) (net.Conn, error) {
		return nil, errors.New("connection refused")
	}

	require.ErrorIs(t, n.Send(context.Background(), "x@example.com\r\nBcc: evil@example.com", "t"), ErrInvalidAddress)
	require.ErrorContains(t, n.Send(context.Background(), "x@example.com", "t"), "connection refused")
}

// silentListener accepts connections and never sends the SMTP greeting.
func silentListener(t *testing.T) SMTPConfig {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	var mu sync.Mutex
	var conns []net.Conn
	go func() {
		for {
			conn, err := ln.Accept()
			if err != nil {
				return
			}
			mu.Lock()
			conns = append(conns, conn)
			mu.Unlock()
		}
	}()
	t.Cleanup(func() {
		_ = ln.Close()
		mu.Lock()
		defer mu.Unlock()
		for _, c := range conns {
			_ = c.Close()
		}
	})

	host, port, _ := net.SplitHostPort(ln.Addr().String())
	return SMTPConfig{Host: host, Port: port, From: "no-reply@example.com"}
}

func TestSMTPNotifier_StalledRelay(t *testing.T) {
	t.Run("deadline", func(t *testing.T) {
		n := NewSMTPNotifier(silentListener(t))

		ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
		defer cancel()

		start := time.Now()
		err := n.Send(ctx, "alice@example.com", "t")
		require.ErrorIs(t, err, context.DeadlineExceeded)
		require.Less(t, time.Since(start), 2*time.Second)
	})

	t.Run("cancel without deadline", func(t *testing.T) {
		n := NewSMTPNotifier(silentListener(t))

		ctx, cancel := context.WithCancel(context.Background())
		time.AfterFunc(200*time.Millisecond, cancel)

		start := time.Now()
		err := n.Send(ctx, "alice@example.com", "t")
		require.ErrorIs(t, err, context.Canceled)
		require.Less(t, time.Since(start), 2*time.Second)
	})
}

func TestLogNotifier(t *testing.T) {
	require.NoError(t, LogNotifier{}.Send(context.Background(), "alice@example.com", "t"))
}
