package admin

import (
	"context"
	"errors"
	"strings"

	pkgerrors "github.com/pkg/errors"

	"github.com/examcenter/backend/core"
)

var (
	ErrInvalidIdentity = errors.New("invalid identity token")
	ErrNotAuthorized   = errors.New("account is not allowed to administer this site")
)

// Admin is a signed-in site administrator.
type Admin struct {
	Subject string `json:"sub"`
	Email   string `json:"email"`
	Name    string `json:"name,omitempty"`
}

// Actor is the audit identity recorded on the records an admin changes.
func (a Admin) Actor() string { return a.Email }

// Identity is what the identity provider asserts about a token holder.
type Identity struct {
	Subject string
	Email   string
	Name    string
}

type (
	// IdentityVerifier checks an identity provider token and returns its claims.
	IdentityVerifier interface {
		Verify(ctx context.Context, token string) (Identity, error)
	}

	// Authorizer decides, server side, whether an actor may use the admin API.
	Authorizer interface {
		IsAuthorized(actor string) bool
	}
)

// Allowlist is a set of admin email addresses.
type Allowlist map[string]struct{}

var _ Authorizer = Allowlist(nil)

// ParseAllowlist reads a comma separated list of emails.
// Entries are trimmed and lowered; entries without an "@" are dropped.
func ParseAllowlist(raw string) Allowlist {
	al := make(Allowlist)
	for _, email := range core.SplitList(raw, true /* lower */) {
		if strings.Contains(email, "@") {
			al[email] = struct{}{}
		}
	}
	return al
}

// IsAuthorized reports whether actor is listed. An empty allowlist authorizes nobody.
func (al Allowlist) IsAuthorized(actor string) bool {
	if len(al) == 0 {
		return false
	}
	_, ok := al[core.CleanString(actor, true /* lower */)]
	return ok
}

// Emails lists the allowed addresses in no particular order.
func (al Allowlist) Emails() []string {
	emails := make([]string, 0, len(al))
	for e := range al {
		emails = append(emails, e)
	}
	return emails
}

type (
	Service interface {
		// Authenticate exchanges an identity provider token for an Admin.
		Authenticate(ctx context.Context, token string) (Admin, error)
		IsAuthorized(actor string) bool
	}

	service struct {
		verifier   IdentityVerifier
		authorizer Authorizer
	}
)

var _ Service = (*service)(nil)

func NewService(verifier IdentityVerifier, authorizer Authorizer) Service {
	return &service{verifier: verifier, authorizer: authorizer}
}

func (svc *service) Authenticate(ctx context.Context, token string) (Admin, error) {
	id, err := svc.verifier.Verify(ctx, token)
	if err != nil {
		if errors.Is(err, ErrInvalidIdentity) {
			return Admin{}, ErrInvalidIdentity
		}
		return Admin{}, pkgerrors.Wrap(err, "verifying identity token")
	}
	email := core.CleanString(id.Email, true /* lower */)
	if email == "" || !svc.authorizer.IsAuthorized(email) {
		return Admin{}, ErrNotAuthorized
	}
	return Admin{Subject: id.Subject, Email: email, Name: id.Name}, nil
}

func (svc *service) IsAuthorized(actor string) bool {
	return svc.authorizer.IsAuthorized(actor)
}
