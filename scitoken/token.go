package scitoken

import (
	"encoding/json"
	"errors"
	"maps"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// DefaultScheme is the HTTP Authorization scheme used for tokens.
const DefaultScheme = "Bearer"

// Token is a decoded bearer token. Its claims never change after
// construction; it is safe for concurrent use.
type Token struct {
	claims jwt.MapClaims
	header map[string]any

	mu         sync.Mutex
	serialized string
	method     jwt.SigningMethod
	key        any
}

// New creates an in-memory token with the given claims. It is signed with
// method and key the first time it is serialized; the compact form is then
// reused.
func New(claims map[string]any, method jwt.SigningMethod, key any) *Token {
	return &Token{
		claims: jwt.MapClaims(maps.Clone(claims)),
		method: method,
		key:    key,
	}
}

func fromJWT(t *jwt.Token, raw string) *Token {
	claims, _ := t.Claims.(jwt.MapClaims)
	return &Token{claims: claims, header: t.Header, serialized: raw}
}

// Claims returns a copy of the token's claims.
func (t *Token) Claims() map[string]any { return maps.Clone(t.claims) }

// Get returns a single claim.
func (t *Token) Get(name string) (any, bool) {
	v, ok := t.claims[name]
	return v, ok
}

// Header returns a copy of the JOSE header of a decoded token. It is nil for
// tokens built with New.
func (t *Token) Header() map[string]any { return maps.Clone(t.header) }

// Issuer returns the "iss" claim.
func (t *Token) Issuer() string {
	s, _ := t.claims["iss"].(string)
	return s
}

// Audience returns the "aud" claim, which may be a single string or a list.
func (t *Token) Audience() []string { return stringList(t.claims["aud"]) }

// Scopes returns the entries of the space-separated "scope" claim.
func (t *Token) Scopes() []string {
	switch v := t.claims["scope"].(type) {
	case string:
		return strings.Fields(v)
	default:
		return stringList(v)
	}
}

// ExpiresAt returns the "exp" claim. ok is false when the claim is missing or
// not a number.
func (t *Token) ExpiresAt() (exp time.Time, ok bool) { return t.timeClaim("exp") }

// NotBefore returns the "nbf" claim.
func (t *Token) NotBefore() (nbf time.Time, ok bool) { return t.timeClaim("nbf") }

// IssuedAt returns the "iat" claim.
func (t *Token) IssuedAt() (iat time.Time, ok bool) { return t.timeClaim("iat") }

func (t *Token) timeClaim(name string) (time.Time, bool) {
	secs, ok := numeric(t.claims[name])
	if !ok {
		return time.Time{}, false
	}
	whole := int64(secs)
	return time.Unix(whole, int64((secs-float64(whole))*1e9)), true
}

// Serialize returns the compact JWS form of the token, signing it on first
// use if it was built with New.
func (t *Token) Serialize() (string, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.serialized != "" {
		return t.serialized, nil
	}
	if t.method == nil {
		return "", errors.New("scitoken: token has no serialized form and no signing key")
	}
	s, err := jwt.NewWithClaims(t.method, t.claims).SignedString(t.key)
	if err != nil {
		return "", err
	}
	t.serialized = s
	return s, nil
}

// AuthorizationHeader formats tok as the value of an HTTP Authorization
// header, "<scheme> <token>" (RFC 6750). An empty scheme means "Bearer".
func AuthorizationHeader(tok *Token, scheme string) (string, error) {
	if scheme == "" {
		scheme = DefaultScheme
	}
	s, err := tok.Serialize()
	if err != nil {
		return "", err
	}
	return scheme + " " + s, nil
}

func stringList(v any) []string {
	switch v := v.(type) {
	case string:
		return []string{v}
	case []string:
		return append([]string(nil), v...)
	case []any:
		out := make([]string, 0, len(v))
		for _, e := range v {
			if s, ok := e.(string); ok {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}

func numeric(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case int32:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	}
	return 0, false
}
