package tests

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	emailsvc "github.com/examcenter/backend/services/email"
)

func TestContactAPI_Submit(t *testing.T) {
	e := setup(t)
	path := "/v1/contact"

	tests := []httpTest{
		{
			name:     "missing fields",
			body:     []byte(`{"email": "not-an-email"}`),
			wantCode: http.StatusBadRequest,
			wantData: []byte(`{
				"name": "this field is required",
				"email": "email must be a valid email address",
				"message": "this field is required",
				"turnstile_token": "this field is required"
			}`),
		},
		{
			name:     "honeypot filled",
			body:     []byte(`{"name": "Bot", "email": "bot@example.com", "message": "hi", "turnstile_token": "human", "website": "spam.example"}`),
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, httpErr{Error: "invalid request"}),
		},
		{
			name:     "challenge failed",
			body:     []byte(`{"name": "Ani", "email": "ani@example.com", "message": "hi", "turnstile_token": "robot"}`),
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, httpErr{Error: "verification failed, please try again"}),
		},
		{
			name:     "accepted",
			body:     []byte(`{"name": " Ani ", "email": "Ani@Example.com", "phone": "+374 10 000000", "message": "When is the next TOEFL?", "turnstile_token": "human"}`),
			wantCode: http.StatusOK,
			wantData: []byte(`{"success": "Thank you, we will get back to you shortly."}`),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.method, tt.path = http.MethodPost, path
			checkCodeAndData(t, tt, e.serve(tt))
		})
	}

	require.Len(t, emailsvc.SentMessages, 1)
	msg := emailsvc.SentMessages[0]
	require.Len(t, msg.To, 1)
	assert.Equal(t, "desk@example.com", msg.To[0].Address)
	require.NotNil(t, msg.ReplyTo)
	assert.Equal(t, "ani@example.com", msg.ReplyTo.Address)
	assert.Equal(t, "Ani", msg.ReplyTo.Name)
}
