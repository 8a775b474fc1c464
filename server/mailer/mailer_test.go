package mailer

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTextToHTML(t *testing.T) {
	assert.Equal(t, "<p>Hallo &lt;Anna&gt;<br>Gruss</p>\n<p>ZSO</p>", textToHTML("Hallo <Anna>\nGruss\n\nZSO"))
}

func TestMailerStub(t *testing.T) {
	var m Mailer = &MailerStub{}
	err := m.Send(context.Background(), Message{To: []string{"a@zso.ch"}, Subject: "Test"})
	assert.Nil(t, err)
	assert.Len(t, m.(*MailerStub).Messages(), 1)

	assert.Nil(t, LogMailer{}.Send(context.Background(), Message{Subject: "nur log"}))
}
