package mailer

import (
	"context"
	"net/smtp"
	"testing"

	infraconfig "github.com/recyclemart/backend/internal/infrastructure/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestSMTPSenderSend(t *testing.T) {
	cfg := &infraconfig.MailConfig{
		Host: "mail.example.com",
		Port: 587,
		From: "orders@recyclemart.example",
	}
	sender := NewSMTPSender(cfg, zap.NewNop())

	var gotAddr, gotFrom string
	var gotTo []string
	var gotMsg []byte
	sender.sendMail = func(addr string, a smtp.Auth, from string, to []string, msg []byte) error {
		gotAddr, gotFrom, gotTo, gotMsg = addr, from, to, msg
		return nil
	}

	err := sender.Send(context.Background(), "buyer@example.com", "Order status updated", "Your order moved to processing.")
	require.NoError(t, err)

	assert.Equal(t, "mail.example.com:587", gotAddr)
	assert.Equal(t, "orders@recyclemart.example", gotFrom)
	assert.Equal(t, []string{"buyer@example.com"}, gotTo)
	assert.Contains(t, string(gotMsg), "Subject: Order status updated")
	assert.Contains(t, string(gotMsg), "Your order moved to processing.")
}

func TestSMTPSenderSend_Validation(t *testing.T) {
	sender := NewSMTPSender(&infraconfig.MailConfig{Host: "mail.example.com", Port: 587}, zap.NewNop())
	sender.sendMail = func(addr string, a smtp.Auth, from string, to []string, msg []byte) error {
		t.Fatal("sendMail should not be called")
		return nil
	}

	err := sender.Send(context.Background(), "", "subject", "body")
	assert.Error(t, err)

	cancelled, cancel := context.WithCancel(context.Background())
	cancel()
	err = sender.Send(cancelled, "buyer@example.com", "subject", "body")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestNewFromConfig(t *testing.T) {
	sender := NewFromConfig(&infraconfig.MailConfig{}, zap.NewNop())
	_, isNoop := sender.(*NoopSender)
	assert.True(t, isNoop)

	sender = NewFromConfig(&infraconfig.MailConfig{Host: "mail.example.com", Port: 25}, zap.NewNop())
	_, isSMTP := sender.(*SMTPSender)
	assert.True(t, isSMTP)
}
