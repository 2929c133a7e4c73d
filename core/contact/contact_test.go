package contact_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/examcenter/backend/core"
	"github.com/examcenter/backend/core/contact"
	emailsvc "github.com/examcenter/backend/services/email"
	logsvc "github.com/examcenter/backend/services/logger"
)

type verifierMock struct {
	ok  bool
	err error

	gotToken, gotIP string
}

func (v *verifierMock) Verify(_ context.Context, token, remoteIP string) (bool, error) {
	v.gotToken, v.gotIP = token, remoteIP
	return v.ok, v.err
}

func newMessage() contact.Message {
	return contact.Message{
		Name:           "Ani Petrosyan",
		Email:          "ani@example.com",
		Phone:          "+374 10 000000",
		Message:        "When is the next TOEFL session?",
		TurnstileToken: "token",
	}
}

func TestMessage_Validate(t *testing.T) {
	validate := validator.New()

	tests := []struct {
		name    string
		mutate  func(m *contact.Message)
		wantErr bool
	}{
		{name: "valid", mutate: func(m *contact.Message) {}},
		{name: "honeypot", mutate: func(m *contact.Message) { m.Website = "http://spam.example" }, wantErr: true},
		{name: "missing name", mutate: func(m *contact.Message) { m.Name = "  " }, wantErr: true},
		{name: "bad email", mutate: func(m *contact.Message) { m.Email = "ani" }, wantErr: true},
		{name: "missing token", mutate: func(m *contact.Message) { m.TurnstileToken = "" }, wantErr: true},
		{name: "message too long", mutate: func(m *contact.Message) { m.Message = strings.Repeat("a", 5001) }, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := newMessage()
			tt.mutate(&m)
			if err := m.Validate(validate); (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestService_Submit(t *testing.T) {
	conf := &core.Config{AppName: "Exam Center", FrontendBaseURL: "https://exams.example.com", TestMode: true}
	logger := logsvc.NewDiscardLogger()
	core.ParseEmailTemplates(conf, logger)
	mailSvc := emailsvc.NewConsoleServiceMock(conf, logger)

	tests := []struct {
		name     string
		verifier *verifierMock
		website  string
		wantErr  error
		wantSent int
	}{
		{name: "accepted", verifier: &verifierMock{ok: true}, wantSent: 1},
		{name: "rejected challenge", verifier: &verifierMock{}, wantErr: contact.ErrVerificationFailed},
		{name: "honeypot filled", verifier: &verifierMock{ok: true}, website: "x", wantErr: contact.ErrInvalidRequest},
		{name: "not configured", verifier: &verifierMock{err: contact.ErrChallengeNotConfigured}, wantErr: contact.ErrChallengeNotConfigured},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			emailsvc.ResetSentMessages()
			svc := contact.NewService(tt.verifier, mailSvc, "desk@example.com, , not-an-email")

			msg := newMessage()
			msg.Website = tt.website
			err := svc.Submit(context.Background(), msg, "198.51.100.1")
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("Submit() error = %v, wantErr %v", err, tt.wantErr)
			}
			require.Len(t, emailsvc.SentMessages, tt.wantSent)
			if tt.wantSent == 0 {
				return
			}

			assert.Equal(t, "token", tt.verifier.gotToken)
			assert.Equal(t, "198.51.100.1", tt.verifier.gotIP)

			sent := emailsvc.SentMessages[0]
			require.Len(t, sent.To, 1)
			assert.Equal(t, "desk@example.com", sent.To[0].Address)
			assert.Equal(t, "ani@example.com", sent.ReplyTo.Address)
			assert.Contains(t, sent.TextContent, "When is the next TOEFL session?")
			assert.Contains(t, sent.HTMLContent, "Ani Petrosyan")
		})
	}
}
