package auth

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrInvalidPasscode = errors.New("invalid passcode")
	ErrNotConfigured   = errors.New("admin passcode not configured")
	ErrInvalidToken    = errors.New("invalid or expired token")
)

const (
	adminSubject = "blog-admin"
	DefaultTTL   = 24 * time.Hour
)

// Service gates the blog admin tools behind a single shared passcode. A
// correct passcode is exchanged for a short-lived HS256 token.
type Service struct {
	hash   []byte
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewService builds the gate from a bcrypt passcode hash. An empty hash
// leaves the gate closed: Login always fails with ErrNotConfigured. An empty
// secret is replaced by a random in-memory one, so tokens do not survive a
// restart.
func NewService(passcodeHash, jwtSecret string, log *zap.Logger) (*Service, error) {
	if log == nil {
		log = zap.NewNop()
	}
	s := &Service{
		hash: []byte(strings.TrimSpace(passcodeHash)),
		ttl:  DefaultTTL,
		now:  time.Now,
	}

	secret := strings.TrimSpace(jwtSecret)
	if secret == "" {
		buf := make([]byte, 48)
		if _, err := rand.Read(buf); err != nil {
			return nil, fmt.Errorf("failed to generate JWT fallback secret: %w", err)
		}
		secret = base64.RawURLEncoding.EncodeToString(buf)
		log.Warn("JWT_SECRET is not set; using ephemeral in-memory fallback secret")
	}
	s.secret = []byte(secret)

	if len(s.hash) == 0 {
		log.Warn("ADMIN_PASSCODE_HASH is not set; blog admin is disabled")
	}
	return s, nil
}

// Configured reports whether a passcode hash is present.
func (s *Service) Configured() bool {
	return len(s.hash) > 0
}

// Login checks passcode and returns a signed token.
func (s *Service) Login(passcode string) (string, error) {
	if !s.Configured() {
		return "", ErrNotConfigured
	}
	if err := bcrypt.CompareHashAndPassword(s.hash, []byte(passcode)); err != nil {
		return "", ErrInvalidPasscode
	}
	return s.generateToken()
}

func (s *Service) generateToken() (string, error) {
	now := s.now()
	claims := jwt.MapClaims{
		"sub": adminSubject,
		"iat": now.Unix(),
		"exp": now.Add(s.ttl).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

// Validate parses tokenString and checks signature, expiry and subject.
func (s *Service) Validate(tokenString string) error {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.secret, nil
	}, jwt.WithTimeFunc(s.now), jwt.WithExpirationRequired())
	if err != nil || !token.Valid {
		return ErrInvalidToken
	}

	sub, err := token.Claims.GetSubject()
	if err != nil || sub != adminSubject {
		return ErrInvalidToken
	}
	return nil
}

// HashPasscode returns the bcrypt hash to configure as ADMIN_PASSCODE_HASH.
func HashPasscode(passcode string) (string, error) {
	if strings.TrimSpace(passcode) == "" {
		return "", errors.New("passcode must not be blank")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(passcode), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hashing failed: %w", err)
	}
	return string(hash), nil
}
