package contact

import (
	"context"
	"errors"
	"net/mail"

	"github.com/go-playground/validator/v10"
	pkgerrors "github.com/pkg/errors"

	"github.com/examcenter/backend/core"
)

var (
	ErrInvalidRequest     = errors.New("invalid request")
	ErrVerificationFailed = errors.New("verification failed, please try again")
	// ErrChallengeNotConfigured is returned by verifiers lacking their server secret.
	ErrChallengeNotConfigured = errors.New("challenge verification is not configured")
)

const templateName = "contact_message"

// Message is a visitor submission from the contact page.
type Message struct {
	Name           string `json:"name" validate:"required,max=200"`
	Email          string `json:"email" validate:"required,email"`
	Phone          string `json:"phone" validate:"max=50"`
	Message        string `json:"message" validate:"required,max=5000"`
	TurnstileToken string `json:"turnstile_token" validate:"required"`
	// Website is a honeypot: the field is hidden from humans, so only bots fill it in.
	Website string `json:"website"`
}

func (m *Message) Validate(validate *validator.Validate) error {
	if core.CleanString(m.Website) != "" {
		return core.NewValidationError(ErrInvalidRequest)
	}
	m.Name = core.CleanString(m.Name)
	m.Email = core.CleanString(m.Email, true /* lower */)
	m.Phone = core.CleanString(m.Phone)
	m.Message = core.CleanString(m.Message)
	return validate.Struct(m)
}

type (
	// ChallengeVerifier confirms that a bot-challenge token was issued to a human.
	ChallengeVerifier interface {
		Verify(ctx context.Context, token, remoteIP string) (bool, error)
	}

	Service interface {
		Submit(ctx context.Context, msg Message, remoteIP string) error
	}

	service struct {
		verifier   ChallengeVerifier
		mailSvc    core.EmailService
		recipients []mail.Address
	}
)

var _ Service = (*service)(nil)

// NewService notifies recipients (comma separated emails) of every accepted message.
func NewService(verifier ChallengeVerifier, mailSvc core.EmailService, recipients string) Service {
	addrs := make([]mail.Address, 0)
	for _, r := range core.SplitList(recipients) {
		if addr, err := mail.ParseAddress(r); err == nil {
			addrs = append(addrs, *addr)
		}
	}
	return &service{verifier: verifier, mailSvc: mailSvc, recipients: addrs}
}

func (svc *service) Submit(ctx context.Context, msg Message, remoteIP string) error {
	if core.CleanString(msg.Website) != "" {
		return core.NewValidationError(ErrInvalidRequest)
	}

	ok, err := svc.verifier.Verify(ctx, msg.TurnstileToken, remoteIP)
	if err != nil {
		return pkgerrors.Wrap(err, "verifying challenge token")
	}
	if !ok {
		return core.NewValidationError(ErrVerificationFailed)
	}

	if len(svc.recipients) == 0 {
		return nil
	}
	svc.mailSvc.SendMessages(&core.EmailMessage{
		To:           svc.recipients,
		ReplyTo:      &mail.Address{Name: msg.Name, Address: msg.Email},
		Subject:      "New contact message from " + msg.Name,
		TemplateName: templateName,
		TemplateData: msg,
	})
	return nil
}
