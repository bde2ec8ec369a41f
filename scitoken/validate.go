package scitoken

import (
	"context"
	"fmt"
	"log/slog"
	"path"
	"slices"
	"strings"
	"time"

	"github.com/igwn/authutils"
)

// AnyAudience in Requirement.Audience accepts a token for any audience.
const AnyAudience = "ANY"

// Requirement is what a token must satisfy to be accepted.
type Requirement struct {
	// Audience lists acceptable "aud" values. AnyAudience accepts all.
	Audience []string
	// Scope lists requested "scheme:path" scopes; a token needs to cover
	// only one of them. Empty accepts any scope.
	Scope []string
	// Issuer lists acceptable "iss" values. Empty accepts any issuer.
	Issuer []string
}

// IsValid reports whether tok satisfies req and has at least the configured
// time left (WithTimeLeft) before it expires. A token whose "nbf" or "iat"
// lies in the future is not yet valid.
//
// A rejected claim yields (false, nil), logged at WARN with WithWarnings and
// at DEBUG otherwise. A requested scope without a ':' is a usage error and is
// returned as authutils.ErrInvalidScope.
func IsValid(tok *Token, req Requirement, opts ...Option) (bool, error) {
	c := newConfig(opts)
	scopes, err := parseScopes(req.Scope)
	if err != nil {
		return false, err
	}
	return c.validate(context.Background(), tok, req, scopes), nil
}

// IsValidSerialized is IsValid for raw token content. Content that cannot be
// decoded or verified is reported as not valid rather than as an error.
func IsValidSerialized(ctx context.Context, raw string, req Requirement, opts ...Option) (bool, error) {
	c := newConfig(opts)
	scopes, err := parseScopes(req.Scope)
	if err != nil {
		return false, err
	}
	l, err := c.newLoader(ctx)
	if err != nil {
		return false, err
	}
	defer l.Close()
	tok, err := l.deserialize(ctx, raw)
	if err != nil {
		c.reject(ctx, "could not decode token", slog.Any("error", err))
		return false, nil
	}
	return c.validate(ctx, tok, req, scopes), nil
}

type scope struct {
	scheme string
	path   string
}

// covers reports whether granted s allows requested r. Paths are matched
// hierarchically: "/a" covers "/a" and "/a/b" but not "/ab".
func (s scope) covers(r scope) bool {
	if s.scheme != r.scheme {
		return false
	}
	return s.path == "/" || s.path == r.path || strings.HasPrefix(r.path, s.path+"/")
}

func parseScopes(requested []string) ([]scope, error) {
	out := make([]scope, 0, len(requested))
	for _, r := range requested {
		scheme, p, ok := strings.Cut(r, ":")
		if !ok {
			return nil, authutils.NewError(authutils.ErrInvalidScope,
				fmt.Sprintf("scope %q is not of the form scheme:path", r), nil)
		}
		out = append(out, scope{scheme: scheme, path: cleanPath(p)})
	}
	return out, nil
}

// grantedScope parses a token scope entry. An entry without a path grants
// the whole namespace.
func grantedScope(entry string) scope {
	scheme, p, _ := strings.Cut(entry, ":")
	return scope{scheme: scheme, path: cleanPath(p)}
}

func cleanPath(p string) string {
	if p == "" {
		return "/"
	}
	return path.Clean("/" + p)
}

func (c *config) validate(ctx context.Context, tok *Token, req Requirement, scopes []scope) bool {
	if aud := tok.Audience(); !audienceMatches(aud, req.Audience) {
		c.reject(ctx, "token audience not accepted", slog.Any("aud", aud), slog.Any("want", req.Audience))
		return false
	}

	if len(scopes) > 0 {
		granted := tok.Scopes()
		if !scopesCovered(granted, scopes) {
			c.reject(ctx, "token scope not accepted", slog.Any("scope", granted), slog.Any("want", req.Scope))
			return false
		}
	}

	if len(req.Issuer) > 0 && !slices.Contains(req.Issuer, tok.Issuer()) {
		c.reject(ctx, "token issuer not accepted", slog.String("iss", tok.Issuer()), slog.Any("want", req.Issuer))
		return false
	}

	now := time.Now()
	for _, claim := range []struct {
		name string
		get  func() (time.Time, bool)
	}{
		{"nbf", tok.NotBefore},
		{"iat", tok.IssuedAt},
	} {
		if at, ok := claim.get(); ok && at.After(now) {
			c.reject(ctx, "token not yet valid", slog.String("claim", claim.name), slog.Time(claim.name, at))
			return false
		}
	}

	exp, ok := tok.ExpiresAt()
	if !ok {
		c.reject(ctx, "token has no expiry", slog.Any("exp", tok.claims["exp"]))
		return false
	}
	if left := exp.Sub(now); left < c.timeLeft {
		c.reject(ctx, "token expires too soon",
			slog.Time("exp", exp), slog.Duration("left", left), slog.Duration("want", c.timeLeft))
		return false
	}
	return true
}

func audienceMatches(have, want []string) bool {
	if slices.Contains(want, AnyAudience) {
		return true
	}
	for _, a := range have {
		if slices.Contains(want, a) {
			return true
		}
	}
	return false
}

func scopesCovered(granted []string, requested []scope) bool {
	for _, r := range requested {
		for _, g := range granted {
			if grantedScope(g).covers(r) {
				return true
			}
		}
	}
	return false
}

// reject logs a rejected token or skipped source at WARN when warnings are
// enabled, at DEBUG otherwise.
func (c *config) reject(ctx context.Context, msg string, attrs ...slog.Attr) {
	level := slog.LevelDebug
	if c.warn {
		level = slog.LevelWarn
	}
	c.logger.LogAttrs(ctx, level, msg, attrs...)
}
