package server

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/jonathan/favor-advisor/internal/config"
	"github.com/jonathan/favor-advisor/internal/server/middleware"
)

const (
	// AdminSubject is the subject of sessions minted by the admin login.
	AdminSubject = "admin"
	// ScopeExclusionsWrite allows replacing the junk exclusion list.
	ScopeExclusionsWrite = "exclusions:write"
)

// Session is an issued operator token.
type Session struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// sessionClaims is the signed payload of a session token.
type sessionClaims struct {
	Scopes []string `json:"scp,omitempty"`
	jwt.RegisteredClaims
}

// Session token failures. Authenticate wraps the underlying parser error.
var (
	ErrSessionExpired   = errors.New("session expired")
	ErrSessionSignature = errors.New("session signature mismatch")
	ErrSessionMalformed = errors.New("malformed session token")
)

// SessionIssuer signs and verifies HS256 operator session tokens.
type SessionIssuer struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
	parser *jwt.Parser
}

// NewSessionIssuer creates an issuer from the admin session settings.
func NewSessionIssuer(cfg *config.AdminConfig) *SessionIssuer {
	ttl := cfg.SessionTTL
	if ttl <= 0 {
		ttl = config.DefaultSessionTTL
	}
	i := &SessionIssuer{
		secret: []byte(cfg.SessionSecret),
		ttl:    ttl,
		now:    time.Now,
	}
	i.parser = jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(config.SessionIssuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(func() time.Time { return i.now() }),
	)
	return i
}

// Issue mints a session for subject carrying scopes.
func (i *SessionIssuer) Issue(subject string, scopes ...string) (*Session, error) {
	now := i.now()
	expiresAt := now.Add(i.ttl)
	claims := &sessionClaims{
		Scopes: scopes,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   subject,
			Issuer:    config.SessionIssuer,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.secret)
	if err != nil {
		return nil, fmt.Errorf("failed to sign session: %w", err)
	}
	// Numeric dates have second precision.
	return &Session{Token: token, ExpiresAt: expiresAt.Truncate(time.Second)}, nil
}

// Authenticate verifies token and returns its principal.
// It implements middleware.Authenticator.
func (i *SessionIssuer) Authenticate(token string) (*middleware.Principal, error) {
	claims := &sessionClaims{}
	_, err := i.parser.ParseWithClaims(token, claims, func(*jwt.Token) (any, error) {
		return i.secret, nil
	})
	switch {
	case err == nil:
	case errors.Is(err, jwt.ErrTokenExpired):
		return nil, fmt.Errorf("%w: %w", ErrSessionExpired, err)
	case errors.Is(err, jwt.ErrTokenSignatureInvalid):
		return nil, fmt.Errorf("%w: %w", ErrSessionSignature, err)
	case errors.Is(err, jwt.ErrTokenMalformed):
		return nil, fmt.Errorf("%w: %w", ErrSessionMalformed, err)
	default:
		return nil, fmt.Errorf("failed to verify session: %w", err)
	}

	if claims.Subject == "" {
		return nil, fmt.Errorf("%w: missing subject", ErrSessionMalformed)
	}
	return &middleware.Principal{Subject: claims.Subject, Scopes: claims.Scopes}, nil
}
