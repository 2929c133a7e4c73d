package admin

import (
	"context"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
)

func TestAllowlist_IsAuthorized(t *testing.T) {
	al := ParseAllowlist(" Admin@Center.am, ,not-an-email, second@center.am ,")

	assert.ElementsMatch(t, []string{"admin@center.am", "second@center.am"}, al.Emails())

	tests := []struct {
		name  string
		al    Allowlist
		actor string
		want  bool
	}{
		{name: "listed", al: al, actor: "admin@center.am", want: true},
		{name: "case and spaces ignored", al: al, actor: "  SECOND@center.AM ", want: true},
		{name: "not listed", al: al, actor: "intruder@center.am"},
		{name: "dropped entry", al: al, actor: "not-an-email"},
		{name: "empty actor", al: al, actor: ""},
		{name: "empty allowlist denies everyone", al: ParseAllowlist(""), actor: "admin@center.am"},
		{name: "nil allowlist", actor: "admin@center.am"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.al.IsAuthorized(tt.actor); got != tt.want {
				t.Errorf("IsAuthorized(%q) = %v, want %v", tt.actor, got, tt.want)
			}
		})
	}
}

type verifierMock map[string]Identity

func (m verifierMock) Verify(_ context.Context, token string) (Identity, error) {
	if token == "broken" {
		return Identity{}, errors.New("connection reset")
	}
	id, ok := m[token]
	if !ok {
		return Identity{}, ErrInvalidIdentity
	}
	return id, nil
}

func TestService_Authenticate(t *testing.T) {
	svc := NewService(
		verifierMock{
			"good":     {Subject: "1", Email: "Admin@Center.am", Name: "Ani"},
			"stranger": {Subject: "2", Email: "someone@gmail.com"},
			"no-email": {Subject: "3"},
		},
		ParseAllowlist("admin@center.am"),
	)

	tests := []struct {
		name    string
		token   string
		want    Admin
		wantErr error
	}{
		{name: "allowed", token: "good", want: Admin{Subject: "1", Email: "admin@center.am", Name: "Ani"}},
		{name: "not allowlisted", token: "stranger", wantErr: ErrNotAuthorized},
		{name: "no email", token: "no-email", wantErr: ErrNotAuthorized},
		{name: "invalid token", token: "forged", wantErr: ErrInvalidIdentity},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := svc.Authenticate(context.Background(), tt.token)
			if err != tt.wantErr {
				t.Fatalf("Authenticate() error = %v, wantErr %v", err, tt.wantErr)
			}
			assert.Equal(t, tt.want, got)
		})
	}

	t.Run("verifier failure is wrapped", func(t *testing.T) {
		_, err := svc.Authenticate(context.Background(), "broken")
		if err == nil || err == ErrInvalidIdentity {
			t.Fatalf("Authenticate() error = %v, want wrapped transport error", err)
		}
	})
}
