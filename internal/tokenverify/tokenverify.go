// Package tokenverify decodes serialized bearer tokens and verifies their
// signatures. Keys come from a caller-supplied public key or JWKS document,
// or are discovered from the token issuer's OpenID metadata.
package tokenverify

import (
	"context"
	"crypto"
	"errors"
	"fmt"
	"slices"
	"sync"

	keyfunc "github.com/MicahParks/keyfunc/v3"
	"github.com/golang-jwt/jwt/v5"

	"github.com/igwn/authutils"
)

// Config controls how tokens are verified.
type Config struct {
	// AllowedAlgs lists the accepted JWS algorithms. "none" is never
	// accepted.
	AllowedAlgs []string
	// PublicKey, if set, verifies every token; issuer discovery is skipped.
	PublicKey crypto.PublicKey
	// PublicKeyPEM is a PEM encoded RSA, EC or Ed25519 public key, used when
	// PublicKey is nil.
	PublicKeyPEM []byte
	// KeySetJSON is a local JWKS document; keys are selected by kid.
	KeySetJSON []byte
	// Insecure permits key discovery from http:// issuers.
	Insecure bool
}

// DefaultConfig returns a Config accepting the algorithms SciTokens issuers
// sign with.
func DefaultConfig() *Config {
	return &Config{AllowedAlgs: []string{"RS256", "ES256"}}
}

// Verifier decodes and verifies tokens. Keysets discovered from issuers are
// cached for the lifetime of the Verifier; call Close to release them.
type Verifier struct {
	cfg    *Config
	static jwt.Keyfunc

	ctx    context.Context
	cancel context.CancelFunc

	mu      sync.Mutex
	issuers map[string]keyfunc.Keyfunc
}

// New builds a Verifier. ctx bounds the background refresh of any keysets
// fetched from issuers.
func New(ctx context.Context, cfg *Config) (*Verifier, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if len(cfg.AllowedAlgs) == 0 {
		cfg.AllowedAlgs = DefaultConfig().AllowedAlgs
	}
	if slices.Contains(cfg.AllowedAlgs, "none") {
		return nil, errors.New(`tokenverify: algorithm "none" is not allowed`)
	}

	static, err := staticKeyfunc(cfg)
	if err != nil {
		return nil, authutils.NewError(authutils.ErrTokenVerification, "loading verification key", err)
	}

	vctx, cancel := context.WithCancel(ctx)
	return &Verifier{
		cfg:     cfg,
		static:  static,
		ctx:     vctx,
		cancel:  cancel,
		issuers: map[string]keyfunc.Keyfunc{},
	}, nil
}

// Close stops keyset refreshes started by this Verifier.
func (v *Verifier) Close() { v.cancel() }

// Parse decodes raw and verifies its signature. Time based claims are not
// checked here; expiry is a validation concern of the caller.
//
// Malformed input fails with authutils.ErrTokenFormat; anything that stops
// the signature being verified fails with authutils.ErrTokenVerification.
func (v *Verifier) Parse(ctx context.Context, raw string) (*jwt.Token, error) {
	parser := jwt.NewParser(
		jwt.WithValidMethods(v.cfg.AllowedAlgs),
		jwt.WithoutClaimsValidation(),
	)
	tok, err := parser.Parse(raw, v.keyfunc(ctx))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenMalformed) {
			return nil, authutils.NewError(authutils.ErrTokenFormat, "", err)
		}
		return nil, authutils.NewError(authutils.ErrTokenVerification, "", err)
	}
	if _, ok := tok.Claims.(jwt.MapClaims); !ok {
		return nil, authutils.NewError(authutils.ErrTokenFormat, "", errors.New("invalid claims type"))
	}
	return tok, nil
}

func (v *Verifier) keyfunc(ctx context.Context) jwt.Keyfunc {
	return func(t *jwt.Token) (any, error) {
		if v.static != nil {
			return v.static(t)
		}
		iss, err := t.Claims.GetIssuer()
		if err != nil {
			return nil, fmt.Errorf("reading issuer: %w", err)
		}
		kf, err := v.issuerKeyfunc(ctx, iss)
		if err != nil {
			return nil, err
		}
		return kf.Keyfunc(t)
	}
}
