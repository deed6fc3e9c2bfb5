package session

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/biolinks/biolinks/pkg/auth"
	jwt "github.com/dgrijalva/jwt-go"
	"github.com/valyala/fasthttp"
)

const (
	CookieName           string = "session"
	DefaultLandcareGroup string = "halls-gap"
	DefaultTokenTTL             = 24 * time.Hour
)

var (
	ErrMissingSecret = errors.New("session secret is not configured")
)

type Claims struct {
	Name          string `json:"name,omitempty"`
	Email         string `json:"email,omitempty"`
	Group         string `json:"group,omitempty"`
	LandcareGroup string `json:"landcare_group,omitempty"`
	jwt.StandardClaims
}

// Provider turns HS256 session tokens into caller contexts.
type Provider struct {
	secret []byte
	parser *jwt.Parser
}

func NewProvider(secret string) *Provider {
	return &Provider{
		secret: []byte(secret),
		parser: &jwt.Parser{ValidMethods: []string{jwt.SigningMethodHS256.Alg()}},
	}
}

// FromRequest reads the bearer token, or the session cookie when there is no
// Authorization header. A missing or invalid token yields nil.
func (p *Provider) FromRequest(ctx *fasthttp.RequestCtx) *auth.CallerContext {
	raw := ""
	if str := string(ctx.Request.Header.Peek(fasthttp.HeaderAuthorization)); len(str) > 0 {
		if parts := strings.Split(str, " "); len(parts) == 2 && strings.ToLower(parts[0]) == "bearer" {
			raw = parts[1]
		}
	} else if cookie := ctx.Request.Header.Cookie(CookieName); len(cookie) > 0 {
		raw = string(cookie)
	}

	if raw == "" {
		return nil
	}

	caller, err := p.Parse(raw)
	if err != nil {
		return nil
	}
	return caller
}

func (p *Provider) Parse(raw string) (*auth.CallerContext, error) {
	if len(p.secret) == 0 {
		return nil, ErrMissingSecret
	}

	token, err := p.parser.ParseWithClaims(raw, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		return p.secret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("invalid session token: %w", err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid session token")
	}

	return claims.CallerContext(), nil
}

// Sign mints a token for claims that expires after ttl.
func (p *Provider) Sign(claims Claims, ttl time.Duration) (string, error) {
	if len(p.secret) == 0 {
		return "", ErrMissingSecret
	}
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}

	now := time.Now()
	claims.IssuedAt = now.Unix()
	claims.ExpiresAt = now.Add(ttl).Unix()
	if claims.Subject == "" {
		claims.Subject = claims.Email
	}

	return jwt.NewWithClaims(jwt.SigningMethodHS256, &claims).SignedString(p.secret)
}

func (c *Claims) CallerContext() *auth.CallerContext {
	landcareGroup := c.LandcareGroup
	if landcareGroup == "" {
		landcareGroup = DefaultLandcareGroup
	}
	return &auth.CallerContext{
		User: &auth.Identity{
			Name:  c.Name,
			Email: c.Email,
		},
		Group:         c.Group,
		LandcareGroup: landcareGroup,
	}
}
