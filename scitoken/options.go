package scitoken

import (
	"crypto"
	"log/slog"
	"time"

	"github.com/igwn/authutils/internal/logctx"
	"github.com/igwn/authutils/internal/platform"
	"github.com/igwn/authutils/internal/tokenverify"
)

// DefaultTimeLeft is the minimum remaining lifetime a token needs to be
// considered valid unless WithTimeLeft says otherwise.
const DefaultTimeLeft = 600 * time.Second

// Option configures decoding, validation and discovery. Options that do not
// apply to an operation are ignored by it.
type Option func(*config)

type config struct {
	verify     *tokenverify.Config
	audience   []string
	timeLeft   time.Duration
	skipErrors bool
	warn       bool
	logger     *slog.Logger
	acquirer   Acquirer
	plat       platform.Platform
}

func newConfig(opts []Option) *config {
	c := &config{
		verify:   tokenverify.DefaultConfig(),
		timeLeft: DefaultTimeLeft,
		plat:     platform.Current(),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.logger == nil {
		c.logger = slog.Default()
	}
	c.logger = logctx.Wrap(c.logger)
	return c
}

// WithTimeLeft sets the minimum remaining lifetime (default 600s).
func WithTimeLeft(d time.Duration) Option {
	return func(c *config) { c.timeLeft = d }
}

// WithSkipErrors makes FindToken step over tokens that cannot be read,
// decoded or verified instead of failing on the first one.
func WithSkipErrors() Option {
	return func(c *config) { c.skipErrors = true }
}

// WithWarnings logs rejected tokens and skipped errors at WARN level rather
// than DEBUG.
func WithWarnings() Option {
	return func(c *config) { c.warn = true }
}

// WithLogger sets the logger (default slog.Default()).
func WithLogger(l *slog.Logger) Option {
	return func(c *config) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithAcquirer sets a last-resort token source that FindToken invokes when
// discovery finds nothing valid.
func WithAcquirer(a Acquirer) Option {
	return func(c *config) { c.acquirer = a }
}

// WithAudience makes decoding fail with authutils.ErrTokenVerification for
// tokens not issued to one of aud. FindToken sets it from its Requirement.
func WithAudience(aud ...string) Option {
	return func(c *config) { c.audience = append([]string(nil), aud...) }
}

// WithPublicKey verifies token signatures with key instead of discovering the
// issuer's keys.
func WithPublicKey(key crypto.PublicKey) Option {
	return func(c *config) { c.verify.PublicKey = key }
}

// WithPublicKeyPEM is WithPublicKey for a PEM encoded RSA, EC or Ed25519
// public key.
func WithPublicKeyPEM(pem []byte) Option {
	return func(c *config) { c.verify.PublicKeyPEM = append([]byte(nil), pem...) }
}

// WithKeySetJSON verifies token signatures against a local JWKS document.
func WithKeySetJSON(jwks []byte) Option {
	return func(c *config) { c.verify.KeySetJSON = append([]byte(nil), jwks...) }
}

// WithInsecure allows signing keys to be discovered from http:// issuers.
func WithInsecure() Option {
	return func(c *config) { c.verify.Insecure = true }
}

// WithAllowedAlgs restricts accepted JWS algorithms. Defaults to RS256 and
// ES256; "none" is never allowed.
func WithAllowedAlgs(algs ...string) Option {
	return func(c *config) { c.verify.AllowedAlgs = append([]string(nil), algs...) }
}
