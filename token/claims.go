package token

import (
	"fmt"
	"strings"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
	"github.com/jrsteele09/go-blog-client/internal/errors"
	"golang.org/x/oauth2"
)

// NowTimeFunc returns the current time. It can be overridden in tests.
var NowTimeFunc = time.Now

// Claims is what the client can read out of a bearer credential without the
// server's key. Nothing here is trusted for authorization decisions.
type Claims struct {
	Subject   string
	TokenType string
	IssuedAt  time.Time
	ExpiresAt time.Time // zero when the credential carries no exp claim
}

// Inspect parses a credential as an unverified JWT.
func Inspect(rawToken string) (*Claims, error) {
	if strings.TrimSpace(rawToken) == "" {
		return nil, errors.ErrNoCredential
	}

	parsed, _, err := jwtlib.NewParser().ParseUnverified(rawToken, jwtlib.MapClaims{})
	if err != nil {
		return nil, fmt.Errorf("[token Inspect] %w: %v", errors.ErrInvalidCredential, err)
	}

	mapClaims, ok := parsed.Claims.(jwtlib.MapClaims)
	if !ok {
		return nil, fmt.Errorf("[token Inspect] error extracting claims: %w", errors.ErrInvalidCredential)
	}

	claims := &Claims{}
	claims.Subject, _ = mapClaims.GetSubject()
	claims.TokenType, _ = mapClaims["token_type"].(string)
	if exp, err := mapClaims.GetExpirationTime(); err == nil && exp != nil {
		claims.ExpiresAt = exp.Time
	}
	if iat, err := mapClaims.GetIssuedAt(); err == nil && iat != nil {
		claims.IssuedAt = iat.Time
	}
	return claims, nil
}

// Expired reports whether the credential is past its exp claim. Credentials
// without exp never expire client side.
func (c *Claims) Expired() bool {
	if c.ExpiresAt.IsZero() {
		return false
	}
	return NowTimeFunc().After(c.ExpiresAt)
}

// TTL is the remaining lifetime, zero when expired or unknown
func (c *Claims) TTL() time.Duration {
	if c.ExpiresAt.IsZero() {
		return 0
	}
	ttl := c.ExpiresAt.Sub(NowTimeFunc())
	if ttl < 0 {
		return 0
	}
	return ttl
}

// OAuth2 wraps a bearer credential as an oauth2.Token so it can be attached with
// SetAuthHeader. Expiry is filled from the exp claim when the credential is a JWT.
func OAuth2(rawToken string) *oauth2.Token {
	tok := &oauth2.Token{
		AccessToken: rawToken,
		TokenType:   "Bearer",
	}
	if claims, err := Inspect(rawToken); err == nil {
		tok.Expiry = claims.ExpiresAt
	}
	return tok
}
