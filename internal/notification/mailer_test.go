package notification

import (
	"context"
	"errors"
	"net/smtp"
	"strings"
	"testing"
	"time"
)

func TestSMTPMailerSend(t *testing.T) {
	var gotAddr, gotFrom string
	var gotTo []string
	var gotMsg []byte

	m := NewSMTPMailer("smtp.example.com", "465", "user", "pass", "noreply@example.com")
	m.send = func(addr string, _ smtp.Auth, from string, to []string, msg []byte) error {
		gotAddr, gotFrom, gotTo, gotMsg = addr, from, to, msg
		return nil
	}

	err := m.Send(context.Background(), Message{To: "alice@example.com", Code: "123456"})
	if err != nil {
		t.Fatalf("send: %v", err)
	}
	if gotAddr != "smtp.example.com:465" {
		t.Fatalf("unexpected addr %q", gotAddr)
	}
	if gotFrom != "noreply@example.com" || len(gotTo) != 1 || gotTo[0] != "alice@example.com" {
		t.Fatalf("unexpected envelope %q -> %v", gotFrom, gotTo)
	}
	if !strings.Contains(string(gotMsg), "123456") {
		t.Fatal("message body must carry the reset code")
	}
}

func TestSMTPMailerTransportByPort(t *testing.T) {
	smtps := NewSMTPMailer("smtp.gmail.com", "465", "user", "pass", "noreply@example.com")
	if !smtps.implicitTLS {
		t.Fatal("port 465 must use implicit TLS, not a plaintext dial")
	}

	submission := NewSMTPMailer("smtp.example.com", "587", "user", "pass", "noreply@example.com")
	if submission.implicitTLS {
		t.Fatal("port 587 must use the STARTTLS flow")
	}
}

func TestSMTPMailerTransportError(t *testing.T) {
	m := NewSMTPMailer("smtp.example.com", "465", "user", "pass", "noreply@example.com")
	m.send = func(string, smtp.Auth, string, []string, []byte) error {
		return errors.New("connection refused")
	}

	if err := m.Send(context.Background(), Message{To: "alice@example.com", Code: "123456"}); err == nil {
		t.Fatal("expected transport error to propagate")
	}
}

func TestSMTPMailerHonorsContextDeadline(t *testing.T) {
	block := make(chan struct{})
	defer close(block)

	m := NewSMTPMailer("smtp.example.com", "465", "user", "pass", "noreply@example.com")
	m.send = func(string, smtp.Auth, string, []string, []byte) error {
		<-block
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	err := m.Send(ctx, Message{To: "alice@example.com", Code: "123456"})
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline error, got %v", err)
	}
}
