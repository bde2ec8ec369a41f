package tokenverify

import (
	"context"
	"errors"
	"fmt"
	"net/url"

	keyfunc "github.com/MicahParks/keyfunc/v3"
	"github.com/coreos/go-oidc/v3/oidc"
)

// issuerKeyfunc resolves the issuer's jwks_uri through OpenID discovery and
// returns an auto-refreshing keyfunc for it.
func (v *Verifier) issuerKeyfunc(ctx context.Context, iss string) (keyfunc.Keyfunc, error) {
	if iss == "" {
		return nil, errors.New("token has no issuer")
	}
	u, err := url.Parse(iss)
	if err != nil || u.Host == "" {
		return nil, fmt.Errorf("issuer %q is not a URL", iss)
	}
	if u.Scheme != "https" && !(v.cfg.Insecure && u.Scheme == "http") {
		return nil, fmt.Errorf("issuer %q is not over HTTPS", iss)
	}

	v.mu.Lock()
	defer v.mu.Unlock()
	if kf, ok := v.issuers[iss]; ok {
		return kf, nil
	}

	provider, err := oidc.NewProvider(ctx, iss)
	if err != nil {
		return nil, fmt.Errorf("oidc discovery failed: %w", err)
	}
	var meta struct {
		JwksURI string `json:"jwks_uri"`
	}
	if err := provider.Claims(&meta); err != nil {
		return nil, fmt.Errorf("invalid discovery metadata: %w", err)
	}
	if meta.JwksURI == "" {
		return nil, errors.New("discovery incomplete: missing jwks_uri")
	}

	kf, err := keyfunc.NewDefaultCtx(v.ctx, []string{meta.JwksURI})
	if err != nil {
		return nil, fmt.Errorf("jwks init failed: %w", err)
	}
	v.issuers[iss] = kf
	return kf, nil
}
