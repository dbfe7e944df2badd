package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/kcs1040/jarviscs/internal/security"
)

// SessionCookieName is the cookie carrying the signed session token.
const SessionCookieName = "jarviscs_session"

const sessionIssuer = "jarviscs"

// sessionClaims embeds the credential record in a signed JWT, mirroring the
// fields the rest of the system reads from a Credential.
type sessionClaims struct {
	AccessToken  string `json:"access_token,omitempty"`
	RefreshToken string `json:"refresh_token,omitempty"`
	TokenExpiry  int64  `json:"expires_at,omitempty"`
	LastError    string `json:"error,omitempty"`
	jwt.RegisteredClaims
}

// SessionCodec issues and parses the session tokens that carry a Credential
// between requests. Tokens are HS256-signed with a key derived from the
// configured session secret.
type SessionCodec struct {
	signingKey []byte
	ttl        time.Duration
	now        func() time.Time
}

func NewSessionCodec(secret string, ttl time.Duration) (*SessionCodec, error) {
	key, err := security.DeriveSessionKey(secret)
	if err != nil {
		return nil, fmt.Errorf("failed to derive session key: %w", err)
	}
	if ttl <= 0 {
		ttl = 30 * 24 * time.Hour
	}
	return &SessionCodec{
		signingKey: key,
		ttl:        ttl,
		now:        time.Now,
	}, nil
}

// Issue signs a session token embedding the credential.
func (c *SessionCodec) Issue(cred Credential) (string, error) {
	now := c.now()
	claims := sessionClaims{
		AccessToken:  cred.AccessToken,
		RefreshToken: cred.RefreshToken,
		TokenExpiry:  cred.ExpiresAt,
		LastError:    cred.LastError,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    sessionIssuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(c.ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(c.signingKey)
	if err != nil {
		return "", fmt.Errorf("failed to sign session token: %w", err)
	}
	return signed, nil
}

// Parse validates a session token and returns the embedded credential.
func (c *SessionCodec) Parse(tokenString string) (Credential, error) {
	var claims sessionClaims
	token, err := jwt.ParseWithClaims(tokenString, &claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return c.signingKey, nil
	}, jwt.WithIssuer(sessionIssuer), jwt.WithTimeFunc(func() time.Time { return c.now() }))
	if err != nil {
		return Credential{}, fmt.Errorf("invalid session token: %w", err)
	}
	if !token.Valid {
		return Credential{}, fmt.Errorf("invalid session token")
	}

	return Credential{
		AccessToken:  claims.AccessToken,
		RefreshToken: claims.RefreshToken,
		ExpiresAt:    claims.TokenExpiry,
		LastError:    claims.LastError,
	}, nil
}
