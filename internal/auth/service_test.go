package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func newTestService(t *testing.T, passcode string) *Service {
	t.Helper()
	hash := ""
	if passcode != "" {
		b, err := bcrypt.GenerateFromPassword([]byte(passcode), bcrypt.MinCost)
		require.NoError(t, err)
		hash = string(b)
	}
	s, err := NewService(hash, "test-secret", nil)
	require.NoError(t, err)
	return s
}

func TestLogin(t *testing.T) {
	s := newTestService(t, "open-sesame")

	_, err := s.Login("wrong")
	assert.ErrorIs(t, err, ErrInvalidPasscode)

	token, err := s.Login("open-sesame")
	require.NoError(t, err)
	assert.NoError(t, s.Validate(token))
}

func TestLogin_NotConfigured(t *testing.T) {
	s := newTestService(t, "")
	assert.False(t, s.Configured())
	_, err := s.Login("")
	assert.ErrorIs(t, err, ErrNotConfigured)
}

func TestValidate(t *testing.T) {
	s := newTestService(t, "pw")
	issued := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return issued }
	token, err := s.generateToken()
	require.NoError(t, err)

	s.now = func() time.Time { return issued.Add(DefaultTTL + time.Minute) }
	assert.ErrorIs(t, s.Validate(token), ErrInvalidToken, "expired")

	s.now = func() time.Time { return issued.Add(time.Hour) }
	assert.NoError(t, s.Validate(token))

	other, err := NewService("", "another-secret", nil)
	require.NoError(t, err)
	other.now = s.now
	assert.ErrorIs(t, other.Validate(token), ErrInvalidToken, "foreign signature")

	wrongSub := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "someone",
		"exp": issued.Add(time.Hour).Unix(),
	})
	signed, err := wrongSub.SignedString([]byte("test-secret"))
	require.NoError(t, err)
	assert.ErrorIs(t, s.Validate(signed), ErrInvalidToken)
}

func TestEphemeralSecret(t *testing.T) {
	a, err := NewService("", "", nil)
	require.NoError(t, err)
	b, err := NewService("", "", nil)
	require.NoError(t, err)
	assert.NotEqual(t, a.secret, b.secret)
}

func TestHashPasscode(t *testing.T) {
	hash, err := HashPasscode("letmein")
	require.NoError(t, err)
	s, err := NewService(hash, "x", nil)
	require.NoError(t, err)
	_, err = s.Login("letmein")
	assert.NoError(t, err)

	_, err = HashPasscode("  ")
	assert.Error(t, err)
}

func TestMiddleware(t *testing.T) {
	s := newTestService(t, "pw")
	token, err := s.Login("pw")
	require.NoError(t, err)

	e := echo.New()
	h := s.Middleware(func(c echo.Context) error {
		assert.True(t, IsAdmin(c))
		return c.NoContent(http.StatusNoContent)
	})

	tests := []struct {
		name   string
		header string
		want   int
	}{
		{"missing", "", http.StatusUnauthorized},
		{"wrong scheme", "Basic " + token, http.StatusUnauthorized},
		{"garbage", "Bearer not-a-token", http.StatusUnauthorized},
		{"valid", "Bearer " + token, http.StatusNoContent},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			err := h(e.NewContext(req, rec))
			if tt.want == http.StatusNoContent {
				require.NoError(t, err)
				assert.Equal(t, tt.want, rec.Code)
				return
			}
			var he *echo.HTTPError
			require.ErrorAs(t, err, &he)
			assert.Equal(t, tt.want, he.Code)
		})
	}
}
