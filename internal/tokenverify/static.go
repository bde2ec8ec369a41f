package tokenverify

import (
	"crypto"
	"errors"
	"fmt"

	keyfunc "github.com/MicahParks/keyfunc/v3"
	"github.com/golang-jwt/jwt/v5"
)

// staticKeyfunc returns the keyfunc for a locally configured key, or nil when
// keys must be discovered from the issuer.
func staticKeyfunc(cfg *Config) (jwt.Keyfunc, error) {
	switch {
	case cfg.PublicKey != nil:
		key := cfg.PublicKey
		return func(*jwt.Token) (any, error) { return key, nil }, nil
	case len(cfg.PublicKeyPEM) > 0:
		key, err := parsePublicKeyPEM(cfg.PublicKeyPEM)
		if err != nil {
			return nil, err
		}
		return func(*jwt.Token) (any, error) { return key, nil }, nil
	case len(cfg.KeySetJSON) > 0:
		kf, err := keyfunc.NewJWKSetJSON(cfg.KeySetJSON)
		if err != nil {
			return nil, fmt.Errorf("jwks: %w", err)
		}
		return kf.Keyfunc, nil
	}
	return nil, nil
}

func parsePublicKeyPEM(b []byte) (crypto.PublicKey, error) {
	if k, err := jwt.ParseRSAPublicKeyFromPEM(b); err == nil {
		return k, nil
	}
	if k, err := jwt.ParseECPublicKeyFromPEM(b); err == nil {
		return k, nil
	}
	if k, err := jwt.ParseEdPublicKeyFromPEM(b); err == nil {
		return k, nil
	}
	return nil, errors.New("not a PEM encoded RSA, EC or Ed25519 public key")
}
