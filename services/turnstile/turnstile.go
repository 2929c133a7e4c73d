// Package turnstile verifies Cloudflare Turnstile challenge tokens.
package turnstile

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/pkg/errors"
	"github.com/sendgrid/rest"

	"github.com/examcenter/backend/core"
	"github.com/examcenter/backend/core/contact"
)

const DefaultVerifyURL = "https://challenges.cloudflare.com/turnstile/v0/siteverify"

type (
	verifyRequest struct {
		Secret   string `json:"secret"`
		Response string `json:"response"`
		RemoteIP string `json:"remoteip,omitempty"`
	}

	verifyResponse struct {
		Success    bool     `json:"success"`
		ErrorCodes []string `json:"error-codes"`
	}
)

type Verifier struct {
	secret    string
	verifyURL string
	client    *rest.Client
}

var _ contact.ChallengeVerifier = (*Verifier)(nil)

func NewVerifier(conf *core.Config) *Verifier {
	url := conf.TurnstileVerifyURL
	if url == "" {
		url = DefaultVerifyURL
	}
	return &Verifier{
		secret:    conf.TurnstileSecretKey,
		verifyURL: url,
		client:    &rest.Client{HTTPClient: &http.Client{Timeout: 10 * time.Second}},
	}
}

func (v *Verifier) Verify(ctx context.Context, token, remoteIP string) (bool, error) {
	if v.secret == "" {
		return false, contact.ErrChallengeNotConfigured
	}

	body, err := json.Marshal(verifyRequest{Secret: v.secret, Response: token, RemoteIP: remoteIP})
	if err != nil {
		return false, errors.Wrap(err, "encoding siteverify request")
	}
	req := rest.Request{
		Method:  rest.Post,
		BaseURL: v.verifyURL,
		Headers: map[string]string{"Content-Type": "application/json"},
		Body:    body,
	}

	res, err := v.client.SendWithContext(ctx, req)
	if err != nil {
		return false, core.NewUnavailableError(err, "calling siteverify")
	}
	if res.StatusCode >= http.StatusInternalServerError {
		return false, core.NewUnavailableError(nil, "siteverify status "+http.StatusText(res.StatusCode))
	}

	var out verifyResponse
	if err = json.Unmarshal([]byte(res.Body), &out); err != nil {
		return false, errors.Wrap(err, "decoding siteverify response")
	}
	return out.Success, nil
}
