package tokenverify

import (
	"context"
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/json"
	"encoding/pem"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	jose "github.com/go-jose/go-jose/v4"
	"github.com/golang-jwt/jwt/v5"

	"github.com/igwn/authutils"
)

type mockIssuer struct {
	srv      *httptest.Server
	issuer   string
	jwksPath string
	noJWKS   bool
	hits     atomic.Int32
}

func newMockIssuer(t *testing.T, keysJSON []byte) *mockIssuer {
	t.Helper()
	m := &mockIssuer{jwksPath: "/keys"}
	mux := http.NewServeMux()
	mux.HandleFunc("/.well-known/openid-configuration", func(w http.ResponseWriter, r *http.Request) {
		m.hits.Add(1)
		meta := map[string]any{"issuer": m.issuer}
		if !m.noJWKS {
			meta["jwks_uri"] = m.issuer + m.jwksPath
		}
		_ = json.NewEncoder(w).Encode(meta)
	})
	mux.HandleFunc(m.jwksPath, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write(keysJSON)
	})
	m.srv = httptest.NewServer(mux)
	m.issuer = m.srv.URL
	t.Cleanup(m.srv.Close)
	return m
}

func genRSA(t *testing.T) (*rsa.PrivateKey, string, []byte) {
	t.Helper()
	pk, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatalf("gen key: %v", err)
	}
	kid := "test-key"
	jwk := jose.JSONWebKey{Key: &pk.PublicKey, KeyID: kid, Algorithm: "RS256", Use: "sig"}
	set := struct {
		Keys []jose.JSONWebKey `json:"keys"`
	}{Keys: []jose.JSONWebKey{jwk}}
	b, err := json.Marshal(set)
	if err != nil {
		t.Fatalf("marshal jwks: %v", err)
	}
	return pk, kid, b
}

func genEC(t *testing.T) *ecdsa.PrivateKey {
	t.Helper()
	pk, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		t.Fatalf("gen key: %v", err)
	}
	return pk
}

func sign(t *testing.T, method jwt.SigningMethod, key any, kid string, claims jwt.MapClaims) string {
	t.Helper()
	tok := jwt.NewWithClaims(method, claims)
	if kid != "" {
		tok.Header["kid"] = kid
	}
	s, err := tok.SignedString(key)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	return s
}

func claimsFor(iss string) jwt.MapClaims {
	now := time.Now()
	return jwt.MapClaims{
		"iss":   iss,
		"aud":   "igwn_auth_utils",
		"scope": "read:/igwn_auth_utils",
		"iat":   now.Unix(),
		"nbf":   now.Unix(),
		"exp":   now.Add(time.Hour).Unix(),
	}
}

func newVerifier(t *testing.T, cfg *Config) *Verifier {
	t.Helper()
	v, err := New(context.Background(), cfg)
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	t.Cleanup(v.Close)
	return v
}

func TestVerifier_Discovery(t *testing.T) {
	pk, kid, jwks := genRSA(t)
	iss := newMockIssuer(t, jwks)

	cfg := DefaultConfig()
	cfg.Insecure = true
	v := newVerifier(t, cfg)

	raw := sign(t, jwt.SigningMethodRS256, pk, kid, claimsFor(iss.issuer))
	tok, err := v.Parse(context.Background(), raw)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	claims := tok.Claims.(jwt.MapClaims)
	if claims["scope"] != "read:/igwn_auth_utils" {
		t.Fatalf("scope roundtrip mismatch: %v", claims["scope"])
	}

	// keyset is cached per verifier
	if _, err := v.Parse(context.Background(), raw); err != nil {
		t.Fatalf("second parse: %v", err)
	}
	if iss.hits.Load() != 1 {
		t.Fatalf("want 1 discovery request, got %d", iss.hits.Load())
	}
}

func TestVerifier_IssuerNotHTTPS(t *testing.T) {
	pk, kid, jwks := genRSA(t)
	iss := newMockIssuer(t, jwks)
	v := newVerifier(t, DefaultConfig())

	raw := sign(t, jwt.SigningMethodRS256, pk, kid, claimsFor(iss.issuer))
	_, err := v.Parse(context.Background(), raw)
	if !errors.Is(err, authutils.ErrTokenVerification) {
		t.Fatalf("want ErrTokenVerification, got %v", err)
	}
	if iss.hits.Load() != 0 {
		t.Fatalf("discovery must not be attempted for http issuers")
	}
}

func TestVerifier_IssuerNotURL(t *testing.T) {
	pk := genEC(t)
	v := newVerifier(t, DefaultConfig())
	raw := sign(t, jwt.SigningMethodES256, pk, "", claimsFor("local"))
	if _, err := v.Parse(context.Background(), raw); !errors.Is(err, authutils.ErrTokenVerification) {
		t.Fatalf("want ErrTokenVerification, got %v", err)
	}
}

func TestVerifier_DiscoveryMissingJWKS(t *testing.T) {
	pk, kid, jwks := genRSA(t)
	iss := newMockIssuer(t, jwks)
	iss.noJWKS = true

	cfg := DefaultConfig()
	cfg.Insecure = true
	v := newVerifier(t, cfg)

	raw := sign(t, jwt.SigningMethodRS256, pk, kid, claimsFor(iss.issuer))
	if _, err := v.Parse(context.Background(), raw); !errors.Is(err, authutils.ErrTokenVerification) {
		t.Fatalf("want ErrTokenVerification, got %v", err)
	}
}

func TestVerifier_Malformed(t *testing.T) {
	v := newVerifier(t, DefaultConfig())
	for _, raw := range []string{"", "not-a-token", "a.b.c"} {
		if _, err := v.Parse(context.Background(), raw); !errors.Is(err, authutils.ErrTokenFormat) {
			t.Fatalf("%q: want ErrTokenFormat, got %v", raw, err)
		}
	}
}

func TestVerifier_StaticPublicKey(t *testing.T) {
	pk := genEC(t)
	cfg := DefaultConfig()
	cfg.PublicKey = &pk.PublicKey
	v := newVerifier(t, cfg)

	raw := sign(t, jwt.SigningMethodES256, pk, "", claimsFor("local"))
	if _, err := v.Parse(context.Background(), raw); err != nil {
		t.Fatalf("parse: %v", err)
	}

	other := genEC(t)
	raw = sign(t, jwt.SigningMethodES256, other, "", claimsFor("local"))
	if _, err := v.Parse(context.Background(), raw); !errors.Is(err, authutils.ErrTokenVerification) {
		t.Fatalf("want ErrTokenVerification for wrong key, got %v", err)
	}
}

func TestVerifier_PublicKeyPEM(t *testing.T) {
	pk := genEC(t)
	der, err := x509.MarshalPKIXPublicKey(&pk.PublicKey)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	cfg := DefaultConfig()
	cfg.PublicKeyPEM = pem.EncodeToMemory(&pem.Block{Type: "PUBLIC KEY", Bytes: der})
	v := newVerifier(t, cfg)

	raw := sign(t, jwt.SigningMethodES256, pk, "", claimsFor("local"))
	if _, err := v.Parse(context.Background(), raw); err != nil {
		t.Fatalf("parse: %v", err)
	}
}

func TestVerifier_BadPublicKeyPEM(t *testing.T) {
	cfg := DefaultConfig()
	cfg.PublicKeyPEM = []byte("garbage")
	if _, err := New(context.Background(), cfg); !errors.Is(err, authutils.ErrTokenVerification) {
		t.Fatalf("want ErrTokenVerification, got %v", err)
	}
}

func TestVerifier_KeySetJSON(t *testing.T) {
	pk, kid, jwks := genRSA(t)
	cfg := DefaultConfig()
	cfg.KeySetJSON = jwks
	v := newVerifier(t, cfg)

	raw := sign(t, jwt.SigningMethodRS256, pk, kid, claimsFor("https://issuer.example"))
	if _, err := v.Parse(context.Background(), raw); err != nil {
		t.Fatalf("parse: %v", err)
	}
}

func TestVerifier_DisallowedAlg(t *testing.T) {
	cfg := DefaultConfig()
	cfg.PublicKey = []byte("secret")
	v := newVerifier(t, cfg)

	raw := sign(t, jwt.SigningMethodHS256, []byte("secret"), "", claimsFor("local"))
	if _, err := v.Parse(context.Background(), raw); !errors.Is(err, authutils.ErrTokenVerification) {
		t.Fatalf("want ErrTokenVerification, got %v", err)
	}
}

func TestVerifier_NoneRejected(t *testing.T) {
	cfg := DefaultConfig()
	cfg.AllowedAlgs = []string{"none"}
	if _, err := New(context.Background(), cfg); err == nil {
		t.Fatalf("expected error for alg none")
	}
}

func TestVerifier_ExpiredStillDecodes(t *testing.T) {
	pk := genEC(t)
	cfg := DefaultConfig()
	cfg.PublicKey = &pk.PublicKey
	v := newVerifier(t, cfg)

	claims := claimsFor("local")
	claims["exp"] = time.Now().Add(-time.Hour).Unix()
	raw := sign(t, jwt.SigningMethodES256, pk, "", claims)
	if _, err := v.Parse(context.Background(), raw); err != nil {
		t.Fatalf("expired tokens must decode, got %v", err)
	}
}
