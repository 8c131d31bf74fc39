// Package email sends the transactional contact mails: one to the support
// inbox and a best-effort confirmation back to the sender. The confirmation
// failing never fails the contact itself.
package email

import (
	"context"
	"errors"
	"fmt"
	"html"
	"log"
	"regexp"
	"strings"
)

const (
	defaultFrom    = "Jefree <hola@jefree.es>"
	defaultSupport = "soporte@jefree.es"
)

var (
	ErrFieldsRequired = errors.New("name, email and message are required")
	ErrInvalidAddress = errors.New("invalid email address")
)

var addressPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// Message is one outbound mail handed to the sender.
type Message struct {
	From    string
	To      []string
	ReplyTo string
	Subject string
	HTML    string
}

// Sender delivers a message through the mail provider and returns the
// provider's message id.
type Sender interface {
	Send(ctx context.Context, msg Message) (string, error)
}

// Service validates contact requests and fans them out to support and sender.
type Service struct {
	sender  Sender
	from    string
	support string
}

// NewService wires the email service. Empty from/support fall back to the
// jefree.es defaults.
func NewService(sender Sender, from, support string) *Service {
	if from == "" {
		from = defaultFrom
	}
	if support == "" {
		support = defaultSupport
	}
	return &Service{sender: sender, from: from, support: support}
}

// SendContact delivers a contact-form submission to the support inbox and
// confirms receipt to the sender. Returns the support mail's message id.
func (s *Service) SendContact(ctx context.Context, name, address, message string) (string, error) {
	name = strings.TrimSpace(name)
	address = strings.TrimSpace(address)
	message = strings.TrimSpace(message)
	if name == "" || address == "" || message == "" {
		return "", ErrFieldsRequired
	}
	if !addressPattern.MatchString(address) {
		return "", ErrInvalidAddress
	}

	id, err := s.sender.Send(ctx, Message{
		From:    s.from,
		To:      []string{s.support},
		ReplyTo: address,
		Subject: fmt.Sprintf("New contact message from %s", name),
		HTML:    contactHTML(name, address, message),
	})
	if err != nil {
		return "", fmt.Errorf("send contact mail: %w", err)
	}

	// The contact already reached support; a failed confirmation is only
	// worth a log line.
	if _, err := s.sender.Send(ctx, Message{
		From:    s.from,
		To:      []string{address},
		Subject: "We received your message!",
		HTML:    confirmationHTML(name),
	}); err != nil {
		log.Printf("[email] failed to send confirmation to %s: %v", address, err)
	}

	return id, nil
}

func contactHTML(name, address, message string) string {
	return fmt.Sprintf(`<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto;">
  <h2 style="color: #7E22CE;">New contact message</h2>
  <p><strong>Name:</strong> %s</p>
  <p><strong>Email:</strong> %s</p>
  <div style="margin: 20px 0; padding: 20px; background-color: #f9f9f9; border-radius: 5px;">
    <h3 style="margin-top: 0; color: #7E22CE;">Message:</h3>
    <p style="white-space: pre-wrap;">%s</p>
  </div>
</div>`, html.EscapeString(name), html.EscapeString(address), html.EscapeString(message))
}

func confirmationHTML(name string) string {
	return fmt.Sprintf(`<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto;">
  <h2 style="color: #7E22CE;">Thanks for contacting Jefree!</h2>
  <p>Hi %s,</p>
  <p>We received your message and will get back to you as soon as possible.</p>
  <p>Best,<br>The Jefree team</p>
</div>`, html.EscapeString(name))
}
