package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/fachwerk-hq/fachwerk/internal/shared/biztime"
	"github.com/fachwerk-hq/fachwerk/internal/shared/config"
)

const roleAdmin = "admin"

// AppMetadata carries provider-managed attributes the user cannot edit.
type AppMetadata struct {
	Role string `json:"role,omitempty"`
}

// Claims mirrors the access tokens minted by the identity provider.
type Claims struct {
	Email       string      `json:"email,omitempty"`
	AppMetadata AppMetadata `json:"app_metadata"`
	jwt.RegisteredClaims
}

// IsAdmin reports whether the provider marked the user as an administrator.
func (c *Claims) IsAdmin() bool {
	return c.AppMetadata.Role == roleAdmin
}

var ErrInvalidSession = errors.New("invalid session")

// SessionVerifier checks HS256 session tokens and issues short-lived tokens
// for local development.
type SessionVerifier struct {
	secret   []byte
	issuer   string
	audience string
	devTTL   time.Duration
}

func NewSessionVerifier(cfg config.AuthConfig) *SessionVerifier {
	ttl := cfg.DevTokenTTL
	if ttl <= 0 {
		ttl = 12 * time.Hour
	}
	return &SessionVerifier{
		secret:   []byte(cfg.JWTSecret),
		issuer:   cfg.Issuer,
		audience: cfg.Audience,
		devTTL:   ttl,
	}
}

func (s *SessionVerifier) Verify(tokenString string) (*Claims, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
	}
	if s.issuer != "" {
		opts = append(opts, jwt.WithIssuer(s.issuer))
	}
	if s.audience != "" {
		opts = append(opts, jwt.WithAudience(s.audience))
	}

	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		return s.secret, nil
	}, opts...)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSession, err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrInvalidSession
	}
	if claims.Subject == "" {
		return nil, fmt.Errorf("%w: missing subject", ErrInvalidSession)
	}
	return claims, nil
}

// Issue signs a token for userID. It backs the `token issue` command and
// tests; production sessions come from the identity provider.
func (s *SessionVerifier) Issue(userID, email string, admin bool) (string, time.Time, error) {
	now := biztime.NowUTC()
	exp := now.Add(s.devTTL)

	claims := &Claims{
		Email: email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			Issuer:    s.issuer,
			ExpiresAt: jwt.NewNumericDate(exp),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}
	if s.audience != "" {
		claims.Audience = jwt.ClaimStrings{s.audience}
	}
	if admin {
		claims.AppMetadata.Role = roleAdmin
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to sign session token: %w", err)
	}
	return signed, exp, nil
}
