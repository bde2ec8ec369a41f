package scitoken

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/igwn/authutils/internal/platform"
	"github.com/igwn/authutils/internal/platform/platformtest"
)

const (
	testIssuer   = "local"
	testAudience = "igwn_auth_utils"
	readScope    = "read:/igwn_auth_utils"
	writeScope   = "write:/igwn_auth_utils"
)

var discoveryVars = []string{
	"SCITOKEN", "BEARER_TOKEN", "SCITOKEN_FILE", "BEARER_TOKEN_FILE",
	"_CONDOR_CREDS", "XDG_RUNTIME_DIR",
}

func withPlatform(p platform.Platform) Option {
	return func(c *config) { c.plat = p }
}

// clearEnv unsets every variable discovery reads for the duration of t.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, name := range discoveryVars {
		t.Setenv(name, "")
	}
}

func genKey(t *testing.T) *ecdsa.PrivateKey {
	t.Helper()
	k, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		t.Fatalf("gen key: %v", err)
	}
	return k
}

func testClaims(scope string, lifetime time.Duration) map[string]any {
	now := time.Now()
	return map[string]any{
		"iss":   testIssuer,
		"aud":   testAudience,
		"sub":   "albert.einstein",
		"scope": scope,
		"iat":   now.Unix(),
		"nbf":   now.Unix(),
		"exp":   now.Add(lifetime).Unix(),
	}
}

func newToken(t *testing.T, key *ecdsa.PrivateKey, claims map[string]any) *Token {
	t.Helper()
	return New(claims, jwt.SigningMethodES256, key)
}

func serialize(t *testing.T, tok *Token) string {
	t.Helper()
	s, err := tok.Serialize()
	if err != nil {
		t.Fatalf("serialize: %v", err)
	}
	return s
}

func writeToken(t *testing.T, path string, tok *Token) string {
	t.Helper()
	if err := os.WriteFile(path, []byte(serialize(t, tok)+"\n"), 0o600); err != nil {
		t.Fatalf("write token: %v", err)
	}
	return path
}

// fixture holds a signing key, a read and a write token and options that
// verify them against an isolated fake platform.
type fixture struct {
	key    *ecdsa.PrivateKey
	rtoken *Token
	wtoken *Token
	dir    string
	plat   *platformtest.Fake
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	clearEnv(t)
	key := genKey(t)
	dir := t.TempDir()
	return &fixture{
		key:    key,
		rtoken: newToken(t, key, testClaims(readScope, 24*time.Hour)),
		wtoken: newToken(t, key, testClaims(writeScope, 24*time.Hour)),
		dir:    dir,
		plat:   platformtest.NewUnix(dir),
	}
}

func (f *fixture) opts(extra ...Option) []Option {
	return append([]Option{WithPublicKey(&f.key.PublicKey), withPlatform(f.plat)}, extra...)
}

func (f *fixture) path(name string) string { return filepath.Join(f.dir, name) }

func assertSameClaims(t *testing.T, got, want *Token) {
	t.Helper()
	for _, name := range []string{"iss", "aud", "sub", "scope"} {
		g, _ := got.Get(name)
		w, _ := want.Get(name)
		if g != w {
			t.Fatalf("claim %s: got %v want %v", name, g, w)
		}
	}
}
