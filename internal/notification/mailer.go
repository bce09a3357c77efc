package notification

import (
	"context"
	"crypto/tls"
	"fmt"
	"net/smtp"
	"strings"
)

// smtpsPort expects a TLS handshake before any SMTP traffic, unlike the
// STARTTLS upgrade smtp.SendMail performs on submission ports.
const smtpsPort = "465"

// SMTPMailer sends reset codes over SMTP with PLAIN auth.
type SMTPMailer struct {
	host        string
	port        string
	user        string
	pass        string
	from        string
	implicitTLS bool

	// send is swappable for tests; the default is chosen from the port.
	send func(addr string, a smtp.Auth, from string, to []string, msg []byte) error
}

// NewSMTPMailer constructs a mailer for the given SMTP account. Port 465
// speaks SMTP over an implicit TLS connection; any other port uses the
// plaintext dial + STARTTLS flow of smtp.SendMail.
func NewSMTPMailer(host, port, user, pass, from string) *SMTPMailer {
	m := &SMTPMailer{
		host:        host,
		port:        port,
		user:        user,
		pass:        pass,
		from:        from,
		implicitTLS: port == smtpsPort,
	}
	if m.implicitTLS {
		m.send = m.sendSMTPS
	} else {
		m.send = smtp.SendMail
	}
	return m
}

// Send delivers the reset code email. The context bounds the attempt: a
// transport that hangs past the deadline is reported as a delivery failure.
func (m *SMTPMailer) Send(ctx context.Context, message Message) error {
	auth := smtp.PlainAuth("", m.user, m.pass, m.host)
	addr := m.host + ":" + m.port
	body := buildResetEmail(m.from, message.To, message.Code)

	errCh := make(chan error, 1)
	go func() {
		errCh <- m.send(addr, auth, m.from, []string{message.To}, body)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("send reset email: %w", err)
		}
		return nil
	case <-ctx.Done():
		return fmt.Errorf("send reset email: %w", ctx.Err())
	}
}

// sendSMTPS performs the SendMail exchange over an already-encrypted
// connection. An implicit-TLS server sends its 220 greeting only after the
// handshake, so a plaintext dial would block forever waiting for it.
func (m *SMTPMailer) sendSMTPS(addr string, a smtp.Auth, from string, to []string, msg []byte) error {
	conn, err := tls.Dial("tcp", addr, &tls.Config{ServerName: m.host})
	if err != nil {
		return err
	}

	client, err := smtp.NewClient(conn, m.host)
	if err != nil {
		conn.Close()
		return err
	}
	defer client.Close()

	if err := client.Auth(a); err != nil {
		return err
	}
	if err := client.Mail(from); err != nil {
		return err
	}
	for _, rcpt := range to {
		if err := client.Rcpt(rcpt); err != nil {
			return err
		}
	}
	w, err := client.Data()
	if err != nil {
		return err
	}
	if _, err := w.Write(msg); err != nil {
		w.Close()
		return err
	}
	if err := w.Close(); err != nil {
		return err
	}
	return client.Quit()
}

func buildResetEmail(from, to, code string) []byte {
	var b strings.Builder
	fmt.Fprintf(&b, "From: %s\r\n", from)
	fmt.Fprintf(&b, "To: %s\r\n", to)
	b.WriteString("Subject: Your OrderKing password reset code\r\n")
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/html; charset=\"UTF-8\"\r\n")
	b.WriteString("\r\n")
	fmt.Fprintf(&b, `<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto;">
  <h2>Password Reset Code</h2>
  <p>Use the code below to reset your OrderKing password:</p>
  <div style="font-size: 28px; font-weight: bold; letter-spacing: 4px; margin: 16px 0;">%s</div>
  <p>This code will expire in 1 hour.</p>
  <p>If you didn't request this reset, you can ignore this email.</p>
</div>`, code)
	b.WriteString("\r\n")
	return []byte(b.String())
}
