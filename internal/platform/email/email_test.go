package email

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/gomail.v2"

	"worklog/internal/platform/config"
)

type captureDialer struct {
	sent []*gomail.Message
}

func (d *captureDialer) DialAndSend(m ...*gomail.Message) error {
	d.sent = append(d.sent, m...)
	return nil
}

func TestSMTPMailerBuildsMessage(t *testing.T) {
	d := &captureDialer{}
	mailer := NewWithDialer(d)

	require.NoError(t, mailer.Send(context.Background(), "hr@example.com", "ana@example.com", "Leave approved", "enjoy"))
	require.Len(t, d.sent, 1)
	assert.Equal(t, []string{"ana@example.com"}, d.sent[0].GetHeader("To"))
	assert.Equal(t, []string{"Leave approved"}, d.sent[0].GetHeader("Subject"))

	require.NoError(t, mailer.Send(context.Background(), "hr@example.com", " ", "x", "y"))
	assert.Len(t, d.sent, 1)
}

func TestNewDisabledIsNoop(t *testing.T) {
	cfg := config.Default()
	cfg.EmailEnabled = false
	mailer := New(cfg)
	_, ok := mailer.(noopMailer)
	assert.True(t, ok)
	assert.NoError(t, mailer.Send(context.Background(), "a", "b", "c", "d"))
}
