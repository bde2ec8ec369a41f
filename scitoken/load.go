package scitoken

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/igwn/authutils"
	"github.com/igwn/authutils/internal/sources"
	"github.com/igwn/authutils/internal/tokenverify"
)

// Deserialize decodes and verifies a serialized token. Surrounding whitespace
// is ignored.
//
// With WithAudience the token's "aud" claim is checked as part of decoding.
//
// It fails with authutils.ErrTokenFormat for malformed input and
// authutils.ErrTokenVerification when the signature cannot be verified.
func Deserialize(ctx context.Context, raw string, opts ...Option) (*Token, error) {
	l, err := newConfig(opts).newLoader(ctx)
	if err != nil {
		return nil, err
	}
	defer l.Close()
	return l.deserialize(ctx, raw)
}

// LoadFile reads a token file and deserializes its content. An unreadable
// file fails with authutils.ErrIO.
func LoadFile(ctx context.Context, path string, opts ...Option) (*Token, error) {
	l, err := newConfig(opts).newLoader(ctx)
	if err != nil {
		return nil, err
	}
	defer l.Close()
	return l.loadFile(ctx, path)
}

type loader struct {
	v        *tokenverify.Verifier
	audience []string
}

func (c *config) newLoader(ctx context.Context) (*loader, error) {
	v, err := tokenverify.New(ctx, c.verify)
	if err != nil {
		return nil, err
	}
	return &loader{v: v, audience: c.audience}, nil
}

func (l *loader) Close() { l.v.Close() }

func (l *loader) deserialize(ctx context.Context, raw string) (*Token, error) {
	raw = strings.TrimSpace(raw)
	parsed, err := l.v.Parse(ctx, raw)
	if err != nil {
		return nil, err
	}
	tok := fromJWT(parsed, raw)
	if len(l.audience) > 0 && !audienceMatches(tok.Audience(), l.audience) {
		return nil, authutils.NewError(authutils.ErrTokenVerification,
			fmt.Sprintf("token audience %q not accepted", tok.Audience()), nil)
	}
	return tok, nil
}

func (l *loader) loadFile(ctx context.Context, path string) (*Token, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, authutils.NewError(authutils.ErrIO, "reading token file "+path, err)
	}
	return l.deserialize(ctx, string(b))
}

// load turns one discovery candidate into a Result.
func (l *loader) load(ctx context.Context, c sources.TokenCandidate) Result {
	res := Result{Origin: c.Origin}
	switch {
	case c.Err != nil:
		res.Err = c.Err
	case c.Kind == sources.Raw:
		res.Token, res.Err = l.deserialize(ctx, c.Value)
	default:
		res.Token, res.Err = l.loadFile(ctx, c.Value)
	}
	return res
}
