// Package identity verifies Google Sign-In ID tokens.
package identity

import (
	"context"

	googleAuthIDTokenVerifier "github.com/futurenda/google-auth-id-token-verifier"
	"github.com/pkg/errors"

	"github.com/examcenter/backend/core"
	"github.com/examcenter/backend/core/admin"
)

type GoogleVerifier struct {
	clientIDs []string
	logger    core.Logger
}

var _ admin.IdentityVerifier = (*GoogleVerifier)(nil)

func NewGoogleVerifier(conf *core.Config, logger core.Logger) *GoogleVerifier {
	return &GoogleVerifier{clientIDs: core.SplitList(conf.GoogleClientID), logger: logger}
}

func (v *GoogleVerifier) Verify(_ context.Context, token string) (admin.Identity, error) {
	if len(v.clientIDs) == 0 {
		return admin.Identity{}, errors.New("google client ID is not configured")
	}

	verifier := googleAuthIDTokenVerifier.Verifier{}
	if err := verifier.VerifyIDToken(token, v.clientIDs); err != nil {
		v.logger.Info("rejected google ID token", err)
		return admin.Identity{}, admin.ErrInvalidIdentity
	}
	claimSet, err := googleAuthIDTokenVerifier.Decode(token)
	if err != nil {
		return admin.Identity{}, admin.ErrInvalidIdentity
	}
	return admin.Identity{Subject: claimSet.Sub, Email: claimSet.Email, Name: claimSet.Name}, nil
}
