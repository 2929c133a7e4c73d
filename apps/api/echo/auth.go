package echoapi

import (
	"net/http"
	"time"

	"github.com/dgrijalva/jwt-go"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"

	"github.com/examcenter/backend/core"
	"github.com/examcenter/backend/core/admin"
)

var (
	NowFunc = time.Now // mockable

	contextTokenKey = "adminToken"
)

// Claims represents the authorization claims transmitted via a JWT.
type Claims struct {
	jwt.StandardClaims
	OrigIssuedAt int64  `json:"oriat,omitempty"`
	Email        string `json:"email"`
	Name         string `json:"name,omitempty"`
}

func (c Claims) Admin() admin.Admin {
	return admin.Admin{Subject: c.Subject, Email: c.Email, Name: c.Name}
}

// GetAdminClaims builds the claims of a fresh token for adm.
// origIat carries the first issue time across refreshes.
func GetAdminClaims(conf *core.Config, adm admin.Admin, origIat ...int64) *Claims {
	now := NowFunc()
	nownix := now.Unix()

	oriat := nownix
	if len(origIat) > 0 {
		oriat = origIat[0]
	}

	return &Claims{
		StandardClaims: jwt.StandardClaims{
			Issuer:    conf.AppName,
			Subject:   adm.Subject,
			Audience:  "admin",
			ExpiresAt: now.Add(conf.Server.JWTExpirationDelta).Unix(),
			IssuedAt:  nownix,
		},
		OrigIssuedAt: oriat,
		Email:        adm.Email,
		Name:         adm.Name,
	}
}

// GenerateToken generates a signed JWT token string representing the admin Claims.
func GenerateToken(claims *Claims, secretKey string) (string, error) {
	token := jwt.NewWithClaims(jwt.GetSigningMethod(middleware.AlgorithmHS256), claims)
	ss, err := token.SignedString([]byte(secretKey))
	if err != nil {
		return "", errors.Wrap(err, "signing token")
	}
	return ss, nil
}

func getContextClaims(ctx echo.Context) (Claims, error) {
	if token, ok := ctx.Get(contextTokenKey).(*jwt.Token); ok {
		if claims, ok := token.Claims.(*Claims); ok {
			return *claims, nil
		}
	}
	return Claims{}, errUnauthorized
}

// contextActor is the audit identity of the signed in admin.
func contextActor(ctx echo.Context) string {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return ""
	}
	return claims.Admin().Actor()
}

type (
	LoginRequest struct {
		IDToken string `json:"id_token" validate:"required"`
	}

	LoginResponse struct {
		Token string      `json:"token"`
		Admin admin.Admin `json:"admin"`
	}
)

func (lr *LoginRequest) Validate(validate *validator.Validate) error {
	lr.IDToken = core.CleanString(lr.IDToken)
	return validate.Struct(lr)
}

type authenticator struct {
	conf      *core.Config
	svc       admin.Service
	jwtConfig middleware.JWTConfig
}

func newAuthenticator(conf *core.Config, svc admin.Service) *authenticator {
	return &authenticator{
		conf: conf,
		svc:  svc,
		jwtConfig: middleware.JWTConfig{
			SigningKey:    []byte(conf.SecretKey),
			SigningMethod: middleware.AlgorithmHS256,
			ContextKey:    contextTokenKey,
			Claims:        new(Claims),
		},
	}
}

func (a *authenticator) login(validate *validator.Validate) echo.HandlerFunc {
	return func(ctx echo.Context) error {
		var data LoginRequest
		if err := ctx.Bind(&data); err != nil {
			return errors.Wrap(err, "binding to LoginRequest")
		}
		if err := data.Validate(validate); err != nil {
			return err
		}

		adm, err := a.svc.Authenticate(ctx.Request().Context(), data.IDToken)
		if err != nil {
			switch errors.Cause(err) {
			case admin.ErrInvalidIdentity:
				return errLoginFailed
			case admin.ErrNotAuthorized:
				return errHttpForbidden
			}
			return errors.Wrap(err, "authenticating admin")
		}

		token, err := GenerateToken(GetAdminClaims(a.conf, adm), a.conf.SecretKey)
		if err != nil {
			return errors.Wrap(err, "generating token")
		}
		return ctx.JSON(http.StatusOK, LoginResponse{Token: token, Admin: adm})
	}
}

func (a *authenticator) refresh(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}

	// check if refresh has not expired
	expTime := time.Unix(claims.OrigIssuedAt, 0).Add(a.conf.Server.JWTRefreshExpirationDelta)
	if NowFunc().After(expTime) {
		return errRefreshExpired
	}

	adm := claims.Admin()
	token, err := GenerateToken(GetAdminClaims(a.conf, adm, claims.OrigIssuedAt), a.conf.SecretKey)
	if err != nil {
		return errors.Wrap(err, "generating token")
	}
	return ctx.JSON(http.StatusOK, LoginResponse{Token: token, Admin: adm})
}
