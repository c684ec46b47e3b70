package notify

import (
	"context"
	"crypto/tls"
	"fmt"
	"net"
	"net/smtp"
	"strconv"
	"strings"
	"time"
)

// EmailSender delivers events over SMTP with the configured encryption
// mode (starttls, tls or none). A connection failure is a per-channel
// error only; it never affects other channels.
type EmailSender struct {
	cfg EmailConfig
}

// NewEmailSender creates an SMTP sender.
func NewEmailSender(cfg EmailConfig) *EmailSender {
	return &EmailSender{cfg: cfg}
}

func (e *EmailSender) Name() string { return KindEmail }

func (e *EmailSender) Send(ctx context.Context, event Event) error {
	port := e.cfg.Port
	if port == 0 {
		if e.cfg.Encryption == "tls" {
			port = 465
		} else {
			port = 587
		}
	}
	addr := net.JoinHostPort(e.cfg.Host, strconv.Itoa(port))

	deadline := time.Now().Add(30 * time.Second)
	if d, ok := ctx.Deadline(); ok {
		deadline = d
	}

	client, err := e.connect(addr, deadline)
	if err != nil {
		return err
	}
	defer client.Close()

	if e.cfg.Username != "" {
		auth := smtp.PlainAuth("", e.cfg.Username, e.cfg.Password, e.cfg.Host)
		if err := client.Auth(auth); err != nil {
			return fmt.Errorf("smtp auth: %w", err)
		}
	}

	if err := client.Mail(e.cfg.From); err != nil {
		return fmt.Errorf("smtp mail from: %w", err)
	}
	for _, rcpt := range e.cfg.To {
		if err := client.Rcpt(rcpt); err != nil {
			return fmt.Errorf("smtp rcpt %s: %w", rcpt, err)
		}
	}

	w, err := client.Data()
	if err != nil {
		return fmt.Errorf("smtp data: %w", err)
	}
	if _, err := w.Write([]byte(e.message(event))); err != nil {
		return fmt.Errorf("write message: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("close message: %w", err)
	}
	return client.Quit()
}

func (e *EmailSender) connect(addr string, deadline time.Time) (*smtp.Client, error) {
	dialer := &net.Dialer{Deadline: deadline}

	if e.cfg.Encryption == "tls" {
		conn, err := tls.DialWithDialer(dialer, "tcp", addr, &tls.Config{ServerName: e.cfg.Host})
		if err != nil {
			return nil, fmt.Errorf("smtp tls dial: %w", err)
		}
		client, err := smtp.NewClient(conn, e.cfg.Host)
		if err != nil {
			conn.Close()
			return nil, fmt.Errorf("smtp handshake: %w", err)
		}
		return client, nil
	}

	conn, err := dialer.Dial("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("smtp dial: %w", err)
	}
	conn.SetDeadline(deadline)
	client, err := smtp.NewClient(conn, e.cfg.Host)
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("smtp handshake: %w", err)
	}

	if e.cfg.Encryption == "starttls" || e.cfg.Encryption == "" {
		if ok, _ := client.Extension("STARTTLS"); ok {
			if err := client.StartTLS(&tls.Config{ServerName: e.cfg.Host}); err != nil {
				client.Close()
				return nil, fmt.Errorf("smtp starttls: %w", err)
			}
		} else if e.cfg.Encryption == "starttls" {
			client.Close()
			return nil, fmt.Errorf("server %s does not support STARTTLS", e.cfg.Host)
		}
	}
	return client, nil
}

func (e *EmailSender) message(event Event) string {
	var b strings.Builder
	fmt.Fprintf(&b, "From: %s\r\n", e.cfg.From)
	fmt.Fprintf(&b, "To: %s\r\n", strings.Join(e.cfg.To, ", "))
	fmt.Fprintf(&b, "Subject: %s\r\n", event.Title())
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/plain; charset=UTF-8\r\n")
	b.WriteString("\r\n")
	b.WriteString(strings.ReplaceAll(event.Body(), "\n", "\r\n"))
	b.WriteString("\r\n")
	return b.String()
}
