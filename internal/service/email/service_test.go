package email

import (
	"context"
	"errors"
	"strings"
	"testing"
)

// fakeSender records sent messages and can fail the nth send.
type fakeSender struct {
	sent   []Message
	failAt int // 1-based index of the send that errors, 0 = never
}

func (s *fakeSender) Send(_ context.Context, msg Message) (string, error) {
	s.sent = append(s.sent, msg)
	if s.failAt == len(s.sent) {
		return "", errors.New("provider rejected")
	}
	return "msg-1", nil
}

func TestSendContact(t *testing.T) {
	sender := &fakeSender{}
	svc := NewService(sender, "", "")

	id, err := svc.SendContact(context.Background(), "Ana", "ana@example.com", "Hi <team>")
	if err != nil {
		t.Fatalf("SendContact err: %v", err)
	}
	if id != "msg-1" {
		t.Fatalf("message id = %q, want msg-1", id)
	}
	if len(sender.sent) != 2 {
		t.Fatalf("sent %d mails, want support + confirmation", len(sender.sent))
	}

	support := sender.sent[0]
	if support.To[0] != defaultSupport {
		t.Fatalf("support mail to %v, want %s", support.To, defaultSupport)
	}
	if support.ReplyTo != "ana@example.com" {
		t.Fatalf("support mail reply-to = %q", support.ReplyTo)
	}
	if !strings.Contains(support.Subject, "Ana") {
		t.Fatalf("support subject = %q, want the sender's name", support.Subject)
	}
	if !strings.Contains(support.HTML, "Hi &lt;team&gt;") {
		t.Fatalf("support body should carry the escaped message, got:\n%s", support.HTML)
	}

	confirmation := sender.sent[1]
	if confirmation.To[0] != "ana@example.com" {
		t.Fatalf("confirmation mail to %v, want the sender", confirmation.To)
	}
	if confirmation.ReplyTo != "" {
		t.Fatalf("confirmation reply-to = %q, want empty", confirmation.ReplyTo)
	}
}

func TestSendContactValidation(t *testing.T) {
	sender := &fakeSender{}
	svc := NewService(sender, "", "")
	ctx := context.Background()

	if _, err := svc.SendContact(ctx, "  ", "ana@example.com", "hello"); !errors.Is(err, ErrFieldsRequired) {
		t.Fatalf("blank name: got %v, want ErrFieldsRequired", err)
	}
	if _, err := svc.SendContact(ctx, "Ana", "ana@example.com", ""); !errors.Is(err, ErrFieldsRequired) {
		t.Fatalf("blank message: got %v, want ErrFieldsRequired", err)
	}
	if _, err := svc.SendContact(ctx, "Ana", "not an address", "hello"); !errors.Is(err, ErrInvalidAddress) {
		t.Fatalf("bad address: got %v, want ErrInvalidAddress", err)
	}
	if len(sender.sent) != 0 {
		t.Fatalf("invalid submissions must not send, sent %d", len(sender.sent))
	}
}

func TestSendContactSupportFailure(t *testing.T) {
	sender := &fakeSender{failAt: 1}
	svc := NewService(sender, "", "")

	if _, err := svc.SendContact(context.Background(), "Ana", "ana@example.com", "hello"); err == nil {
		t.Fatal("expected error when the support mail fails")
	}
	if len(sender.sent) != 1 {
		t.Fatalf("sent %d mails, want only the failed support attempt", len(sender.sent))
	}
}

func TestSendContactConfirmationFailureIsNotFatal(t *testing.T) {
	sender := &fakeSender{failAt: 2}
	svc := NewService(sender, "", "")

	id, err := svc.SendContact(context.Background(), "Ana", "ana@example.com", "hello")
	if err != nil {
		t.Fatalf("SendContact err: %v, confirmation failure must not surface", err)
	}
	if id != "msg-1" {
		t.Fatalf("message id = %q, want msg-1", id)
	}
}

func TestSendContactCustomAddresses(t *testing.T) {
	sender := &fakeSender{}
	svc := NewService(sender, "Custom <team@custom.es>", "help@custom.es")

	if _, err := svc.SendContact(context.Background(), "Ana", "ana@example.com", "hello"); err != nil {
		t.Fatalf("SendContact err: %v", err)
	}
	if sender.sent[0].From != "Custom <team@custom.es>" || sender.sent[0].To[0] != "help@custom.es" {
		t.Fatalf("support mail = %+v, want custom addresses", sender.sent[0])
	}
}
