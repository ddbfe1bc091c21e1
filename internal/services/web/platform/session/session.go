// Package session issues and verifies signed web session tokens.
package session

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	// DefaultTTL is the session lifetime when none is configured.
	DefaultTTL = 12 * time.Hour
	// DefaultIssuer names this service in the iss claim.
	DefaultIssuer = "typeshelf"

	// MinSecretLength is the shortest accepted HMAC secret.
	MinSecretLength = 16
	leeway          = 30 * time.Second
)

var (
	// ErrInvalid reports a token that failed signature or claim validation.
	ErrInvalid = errors.New("session: invalid token")
	// ErrExpired reports a well-formed token past its expiry.
	ErrExpired = errors.New("session: token expired")
)

// Claims is the signed payload of a session token.
type Claims struct {
	SessionID string `json:"sid"`
	jwt.RegisteredClaims
}

// Principal is the verified identity carried by a session token.
type Principal struct {
	UserID    string
	SessionID string
	ExpiresAt time.Time
}

// Remaining returns the time left before the session expires.
func (p Principal) Remaining(now time.Time) time.Duration {
	if p.ExpiresAt.IsZero() {
		return 0
	}
	return p.ExpiresAt.Sub(now)
}

// Config configures a Manager.
type Config struct {
	Secret []byte
	Issuer string
	TTL    time.Duration
}

// Manager signs and verifies HS256 session tokens.
type Manager struct {
	secret []byte
	issuer string
	ttl    time.Duration
	now    func() time.Time
}

// NewManager validates cfg and returns a Manager.
func NewManager(cfg Config) (*Manager, error) {
	if len(cfg.Secret) < MinSecretLength {
		return nil, fmt.Errorf("session secret must be at least %d bytes", MinSecretLength)
	}
	issuer := strings.TrimSpace(cfg.Issuer)
	if issuer == "" {
		issuer = DefaultIssuer
	}
	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Manager{secret: cfg.Secret, issuer: issuer, ttl: ttl, now: time.Now}, nil
}

// TTL returns the configured session lifetime.
func (m *Manager) TTL() time.Duration {
	return m.ttl
}

// Issue mints a token for userID with a fresh session id.
func (m *Manager) Issue(userID string) (string, Principal, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return "", Principal{}, errors.New("user id is required")
	}
	now := m.now().UTC()
	principal := Principal{
		UserID:    userID,
		SessionID: uuid.NewString(),
		ExpiresAt: now.Add(m.ttl).Truncate(time.Second),
	}
	claims := Claims{
		SessionID: principal.SessionID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			Issuer:    m.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(principal.ExpiresAt),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return "", Principal{}, fmt.Errorf("sign session token: %w", err)
	}
	return token, principal, nil
}

// Verify checks token and returns its principal.
func (m *Manager) Verify(token string) (Principal, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return Principal{}, ErrInvalid
	}
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(m.issuer),
		jwt.WithExpirationRequired(),
		jwt.WithLeeway(leeway),
		jwt.WithTimeFunc(m.now),
	)
	parsed, err := parser.ParseWithClaims(token, &Claims{}, func(*jwt.Token) (any, error) {
		return m.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return Principal{}, ErrExpired
		}
		return Principal{}, fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid || claims.Subject == "" || claims.SessionID == "" {
		return Principal{}, ErrInvalid
	}
	principal := Principal{UserID: claims.Subject, SessionID: claims.SessionID}
	if claims.ExpiresAt != nil {
		principal.ExpiresAt = claims.ExpiresAt.Time
	}
	return principal, nil
}
