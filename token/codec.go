package token

import (
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	apperrors "github.com/jrsteele09/go-admin-console/internal/errors"
	"github.com/jrsteele09/go-admin-console/phase"
	"github.com/jrsteele09/go-admin-console/users"
	"github.com/pkg/errors"
)

// SessionClaims is the payload of a session token.
type SessionClaims struct {
	User users.SessionUser `json:"user"`
	jwt.RegisteredClaims
}

// Codec issues and parses signed session tokens.
type Codec struct {
	signer  Signer
	phase   phase.Phase
	nowFunc func() time.Time
}

type CodecOption func(*Codec)

// WithNowFunc overrides the clock used for issuing and verifying.
func WithNowFunc(now func() time.Time) CodecOption {
	return func(c *Codec) {
		c.nowFunc = now
	}
}

func NewCodec(signer Signer, p phase.Phase, options ...CodecOption) (*Codec, error) {
	if signer == nil {
		return nil, errors.New("[NewCodec] signer is required")
	}
	c := &Codec{
		signer:  signer,
		phase:   p,
		nowFunc: time.Now,
	}
	for _, opt := range options {
		opt(c)
	}
	return c, nil
}

// Expiry is the token lifetime in seconds for the codec's phase.
func (c *Codec) Expiry() int {
	return Expiry(c.phase)
}

// Issue signs a token for user expiring Expiry seconds from now.
func (c *Codec) Issue(user users.SessionUser) (string, error) {
	now := c.nowFunc()
	claims := SessionClaims{
		User: user,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.UserCd,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(Lifetime(c.phase))),
			ID:        uuid.New().String(),
		},
	}

	signed, err := c.signer.Sign(claims)
	if err != nil {
		return "", errors.Wrap(err, "[Codec Issue]")
	}
	return signed, nil
}

// Verify parses rawToken and reports why it was rejected. Expired tokens wrap
// ErrTokenExpired, every other rejection wraps ErrInvalidToken.
func (c *Codec) Verify(rawToken string) (users.SessionUser, error) {
	if strings.TrimSpace(rawToken) == "" {
		return users.SessionUser{}, apperrors.ErrInvalidToken
	}

	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{c.signer.GetSigningMethod().Alg()}),
		jwt.WithTimeFunc(c.nowFunc),
		jwt.WithExpirationRequired(),
		jwt.WithStrictDecoding(),
	)
	parsed, err := parser.ParseWithClaims(rawToken, &SessionClaims{}, c.signer.GetVerificationKey)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return users.SessionUser{}, apperrors.Wrapf(apperrors.ErrTokenExpired, "[Codec Verify] %v", err)
		}
		return users.SessionUser{}, apperrors.Wrapf(apperrors.ErrInvalidToken, "[Codec Verify] %v", err)
	}

	claims, ok := parsed.Claims.(*SessionClaims)
	if !ok || !parsed.Valid {
		return users.SessionUser{}, apperrors.ErrInvalidToken
	}
	if claims.User.UserCd == "" || claims.User.UserCd != claims.Subject {
		return users.SessionUser{}, apperrors.Wrapf(apperrors.ErrInvalidToken, "[Codec Verify] subject mismatch")
	}
	return claims.User, nil
}

// Parse returns the token's user, or false for any malformed, forged or
// expired token.
func (c *Codec) Parse(rawToken string) (users.SessionUser, bool) {
	user, err := c.Verify(rawToken)
	if err != nil {
		return users.SessionUser{}, false
	}
	return user, true
}
