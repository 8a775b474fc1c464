package mailer

import (
	"context"
	"fmt"
	"html"
	"strings"
	"sync"

	"github.com/resend/resend-go/v2"
	"github.com/zivilschutz/zsadmin/colors"
	"github.com/zivilschutz/zsadmin/server/logger"
)

var logg = logger.NewLogger()

type Message struct {
	To      []string
	Subject string
	Text    string
}

// Mailer delivers transactional e-mail.
type Mailer interface {
	Send(ctx context.Context, msg Message) error
}

type ResendMailer struct {
	client *resend.Client
	from   string
}

func NewResendMailer(apiKey, from string) *ResendMailer {
	return &ResendMailer{client: resend.NewClient(apiKey), from: from}
}

func (m *ResendMailer) Send(ctx context.Context, msg Message) error {
	if len(msg.To) == 0 {
		return nil
	}

	sent, err := m.client.Emails.SendWithContext(ctx, &resend.SendEmailRequest{
		From:    m.from,
		To:      msg.To,
		Subject: msg.Subject,
		Html:    textToHTML(msg.Text),
		Text:    msg.Text,
	})
	if err != nil {
		return fmt.Errorf("resend: %v", err)
	}

	logg.Infof("E-mail %q sent to %v recipient(s), id=%v", msg.Subject, len(msg.To), sent.Id)
	return nil
}

// LogMailer only logs messages; used when no e-mail provider is configured.
type LogMailer struct{}

func (LogMailer) Send(ctx context.Context, msg Message) error {
	logg.Infof("%s to=%v subject=%q\n%s", colors.Yellow("[mail not sent]"), msg.To, msg.Subject, msg.Text)
	return nil
}

// MailerStub records messages for tests.
type MailerStub struct {
	mu   sync.Mutex
	Sent []Message
	Err  error
}

func (s *MailerStub) Send(ctx context.Context, msg Message) error {
	if s.Err != nil {
		return s.Err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.Sent = append(s.Sent, msg)
	return nil
}

func (s *MailerStub) Messages() []Message {
	s.mu.Lock()
	defer s.mu.Unlock()

	sent := make([]Message, len(s.Sent))
	copy(sent, s.Sent)
	return sent
}

func textToHTML(text string) string {
	paragraphs := []string{}
	for _, paragraph := range strings.Split(text, "\n\n") {
		escaped := strings.ReplaceAll(html.EscapeString(paragraph), "\n", "<br>")
		paragraphs = append(paragraphs, "<p>"+escaped+"</p>")
	}
	return strings.Join(paragraphs, "\n")
}
