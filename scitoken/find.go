package scitoken

import (
	"context"
	"iter"
	"log/slog"

	"github.com/google/uuid"

	"github.com/igwn/authutils"
	"github.com/igwn/authutils/internal/environ"
	"github.com/igwn/authutils/internal/logctx"
	"github.com/igwn/authutils/internal/sources"
)

const notFoundMsg = "could not find a valid SciToken, please verify the audience and scope, or generate a new token and try again"

// Result is the outcome of trying one discovery source: a decoded Token, or
// the Err that stopped it being read, decoded or verified.
type Result struct {
	// Origin names the source, an environment variable or a file path.
	Origin string
	Token  *Token
	Err    error
}

// Acquirer obtains a new token when discovery finds none. Acquire returns the
// path of the token file it wrote.
type Acquirer interface {
	Acquire(ctx context.Context) (string, error)
}

// Discover yields one Result per token source, in discovery order. Sources
// are read lazily; stopping the iteration leaves later sources untouched.
func Discover(ctx context.Context, opts ...Option) iter.Seq[Result] {
	c := newConfig(opts)
	return func(yield func(Result) bool) {
		l, err := c.newLoader(ctx)
		if err != nil {
			yield(Result{Origin: "verification key", Err: err})
			return
		}
		defer l.Close()
		for res := range c.discover(ctx, l) {
			if !yield(res) {
				return
			}
		}
	}
}

func (c *config) discover(ctx context.Context, l *loader) iter.Seq[Result] {
	return func(yield func(Result) bool) {
		env, err := environ.Load()
		if err != nil {
			yield(Result{Origin: "environment", Err: err})
			return
		}
		for cand := range sources.Tokens(env, c.plat) {
			if !yield(l.load(ctx, cand)) {
				return
			}
		}
	}
}

// FindToken returns the first discovered token that satisfies req.
//
// Tokens are decoded for req.Audience. A source that cannot be read, decoded
// or verified ends the search with its error unless WithSkipErrors is set;
// platform errors always end it. When every source is exhausted the
// Acquirer, if any, is asked for a new token. Otherwise FindToken fails with
// authutils.ErrNotFound.
func FindToken(ctx context.Context, req Requirement, opts ...Option) (*Token, error) {
	c := newConfig(append([]Option{WithAudience(req.Audience...)}, opts...))
	scopes, err := parseScopes(req.Scope)
	if err != nil {
		return nil, err
	}

	ctx = logctx.WithLookupData(ctx, &logctx.LookupData{ID: uuid.NewString(), Kind: "scitoken"})
	c.logger.DebugContext(ctx, "searching for token",
		slog.Any("audience", req.Audience), slog.Any("scope", req.Scope))

	l, err := c.newLoader(ctx)
	if err != nil {
		return nil, err
	}
	defer l.Close()

	for res := range c.discover(ctx, l) {
		sctx := logctx.WithSourceData(ctx, &logctx.SourceData{Origin: res.Origin})
		if res.Err != nil {
			if !c.skipErrors || !authutils.IsSkippable(res.Err) {
				return nil, res.Err
			}
			c.reject(sctx, "skipping token source", slog.Any("error", res.Err))
			continue
		}
		if c.validate(sctx, res.Token, req, scopes) {
			c.logger.DebugContext(sctx, "found token")
			return res.Token, nil
		}
	}

	if c.acquirer != nil {
		return c.acquire(ctx, l, req, scopes)
	}
	return nil, authutils.NewError(authutils.ErrNotFound, notFoundMsg, nil)
}

func (c *config) acquire(ctx context.Context, l *loader, req Requirement, scopes []scope) (*Token, error) {
	c.logger.InfoContext(ctx, "no valid token found, acquiring a new one")
	path, err := c.acquirer.Acquire(ctx)
	if err != nil {
		return nil, err
	}
	tok, err := l.loadFile(ctx, path)
	if err != nil {
		return nil, err
	}
	if !c.validate(logctx.WithSourceData(ctx, &logctx.SourceData{Origin: path}), tok, req, scopes) {
		return nil, authutils.NewError(authutils.ErrNotFound, notFoundMsg, nil)
	}
	return tok, nil
}
