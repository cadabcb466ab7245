package email

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"gdp/internal/platform/config"
)

func TestBuildIncludesAttachment(t *testing.T) {
	msg := Build("nomina@example.com", Message{
		To:      "laura@example.com",
		Subject: "Volante de Pago",
		Body:    "Adjunto",
		Attachments: []Attachment{
			{Name: "volante.pdf", ContentType: "application/pdf", Data: []byte("%PDF-1.3")},
		},
	})
	var buf bytes.Buffer
	if _, err := msg.WriteTo(&buf); err != nil {
		t.Fatalf("write message: %v", err)
	}
	raw := buf.String()
	for _, want := range []string{"To: laura@example.com", "volante.pdf", "application/pdf"} {
		if !strings.Contains(raw, want) {
			t.Fatalf("expected %q in message", want)
		}
	}
}

func TestDisabledMailerIsNoop(t *testing.T) {
	mailer := New(config.Config{EmailEnabled: false})
	if err := mailer.Send(context.Background(), Message{}); err != nil {
		t.Fatalf("expected noop, got %v", err)
	}
}

func TestSMTPMailerRequiresRecipient(t *testing.T) {
	mailer := New(config.Config{EmailEnabled: true, SMTPHost: "localhost", SMTPPort: 2525})
	if err := mailer.Send(context.Background(), Message{Subject: "x"}); err != ErrNoRecipient {
		t.Fatalf("expected ErrNoRecipient, got %v", err)
	}
}
