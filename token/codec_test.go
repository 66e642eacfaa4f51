package token_test

import (
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	apperrors "github.com/jrsteele09/go-admin-console/internal/errors"
	"github.com/jrsteele09/go-admin-console/phase"
	"github.com/jrsteele09/go-admin-console/token"
	"github.com/jrsteele09/go-admin-console/users"
	"github.com/stretchr/testify/require"
)

var testSecret = []byte("axboot")

// clock is a settable time source shared by the codec under test.
type clock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *clock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func newTestCodec(t *testing.T, p phase.Phase) (*token.Codec, *clock) {
	t.Helper()
	signer, err := token.NewHMACSigner(testSecret)
	require.NoError(t, err)

	clk := &clock{now: time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)}
	codec, err := token.NewCodec(signer, p, token.WithNowFunc(clk.Now))
	require.NoError(t, err)
	return codec, clk
}

func testSessionUser() users.SessionUser {
	return users.SessionUser{
		UserCd:        "system",
		UserNm:        "System Admin",
		Email:         "system@example.com",
		Locale:        "en_US",
		TimeZone:      540,
		DateFormat:    "yyyy-mm-dd",
		MenuGrpCd:     "SYSTEM_MANAGER",
		AuthGroupList: []string{"S0001", "S0002"},
	}
}

func TestExpiry(t *testing.T) {
	require.Equal(t, 180, token.Expiry(phase.Alpha))
	require.Equal(t, 3000, token.Expiry(phase.Production))
	require.Equal(t, 100000, token.Expiry(phase.Local))
	require.Equal(t, 100000, token.Expiry(phase.Parse("anything-else")))
	require.Equal(t, 50*time.Minute, token.Lifetime(phase.Production))
}

func TestNewHMACSigner_RequiresSecret(t *testing.T) {
	_, err := token.NewHMACSigner(nil)
	require.Error(t, err)
}

func TestNewCodec_RequiresSigner(t *testing.T) {
	_, err := token.NewCodec(nil, phase.Local)
	require.Error(t, err)
}

func TestCodec_RoundTrip(t *testing.T) {
	for _, p := range []phase.Phase{phase.Alpha, phase.Production, phase.Local} {
		t.Run(p.String(), func(t *testing.T) {
			codec, clk := newTestCodec(t, p)
			user := testSessionUser()

			raw, err := codec.Issue(user)
			require.NoError(t, err)
			require.Equal(t, 2, strings.Count(raw, "."))

			got, ok := codec.Parse(raw)
			require.True(t, ok)
			require.True(t, user.Equal(got))

			clk.Advance(token.Lifetime(p) - time.Second)
			_, ok = codec.Parse(raw)
			require.True(t, ok, "token should still be valid just before expiry")

			clk.Advance(2 * time.Second)
			_, ok = codec.Parse(raw)
			require.False(t, ok, "token should be rejected after expiry")

			_, err = codec.Verify(raw)
			require.ErrorIs(t, err, apperrors.ErrTokenExpired)
		})
	}
}

func TestCodec_TokensAreUnique(t *testing.T) {
	codec, _ := newTestCodec(t, phase.Local)
	a, err := codec.Issue(testSessionUser())
	require.NoError(t, err)
	b, err := codec.Issue(testSessionUser())
	require.NoError(t, err)
	require.NotEqual(t, a, b)
}

func TestCodec_TamperedTokenIsInvalid(t *testing.T) {
	codec, _ := newTestCodec(t, phase.Local)
	raw, err := codec.Issue(testSessionUser())
	require.NoError(t, err)

	signedPart := strings.LastIndex(raw, ".")
	for i := 0; i < signedPart; i++ {
		if raw[i] == '.' {
			continue
		}
		replacement := byte('A')
		if raw[i] == 'A' {
			replacement = 'B'
		}
		tampered := raw[:i] + string(replacement) + raw[i+1:]
		_, ok := codec.Parse(tampered)
		require.False(t, ok, "tampered byte %d accepted", i)
	}
}

func TestCodec_RejectsMalformedAndForeignTokens(t *testing.T) {
	codec, _ := newTestCodec(t, phase.Local)

	t.Run("empty", func(t *testing.T) {
		_, err := codec.Verify("")
		require.ErrorIs(t, err, apperrors.ErrInvalidToken)
	})

	t.Run("garbage", func(t *testing.T) {
		_, ok := codec.Parse("not-a-token")
		require.False(t, ok)
	})

	t.Run("different secret", func(t *testing.T) {
		other, err := token.NewHMACSigner([]byte("someone-else"))
		require.NoError(t, err)
		otherCodec, err := token.NewCodec(other, phase.Local)
		require.NoError(t, err)

		raw, err := otherCodec.Issue(testSessionUser())
		require.NoError(t, err)
		_, err = codec.Verify(raw)
		require.ErrorIs(t, err, apperrors.ErrInvalidToken)
	})

	t.Run("alg none", func(t *testing.T) {
		claims := token.SessionClaims{
			User: testSessionUser(),
			RegisteredClaims: jwt.RegisteredClaims{
				Subject:   "system",
				ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
			},
		}
		raw, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
		require.NoError(t, err)
		_, ok := codec.Parse(raw)
		require.False(t, ok)
	})

	t.Run("missing expiry", func(t *testing.T) {
		signer, err := token.NewHMACSigner(testSecret)
		require.NoError(t, err)
		raw, err := signer.Sign(token.SessionClaims{
			User:             testSessionUser(),
			RegisteredClaims: jwt.RegisteredClaims{Subject: "system"},
		})
		require.NoError(t, err)
		_, ok := codec.Parse(raw)
		require.False(t, ok)
	})

	t.Run("subject mismatch", func(t *testing.T) {
		signer, err := token.NewHMACSigner(testSecret)
		require.NoError(t, err)
		raw, err := signer.Sign(token.SessionClaims{
			User: testSessionUser(),
			RegisteredClaims: jwt.RegisteredClaims{
				Subject:   "intruder",
				ExpiresAt: jwt.NewNumericDate(time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)),
			},
		})
		require.NoError(t, err)
		_, ok := codec.Parse(raw)
		require.False(t, ok)
	})
}
