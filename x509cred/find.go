package x509cred

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/igwn/authutils"
	"github.com/igwn/authutils/internal/environ"
	"github.com/igwn/authutils/internal/logctx"
	"github.com/igwn/authutils/internal/platform"
	"github.com/igwn/authutils/internal/sources"
)

// DefaultTimeLeft is the minimum remaining validity of a certificate found
// in a default location.
const DefaultTimeLeft = 600 * time.Second

const notFoundMsg = "could not find an RFC-3820 compliant X.509 credential, please generate one and try again."

// Option configures FindCredentials.
type Option func(*config)

type config struct {
	timeLeft time.Duration
	logger   *slog.Logger
	plat     platform.Platform
}

// WithTimeLeft sets the minimum remaining validity (default 600s).
func WithTimeLeft(d time.Duration) Option {
	return func(c *config) { c.timeLeft = d }
}

// WithLogger sets the logger (default slog.Default()).
func WithLogger(l *slog.Logger) Option {
	return func(c *config) {
		if l != nil {
			c.logger = l
		}
	}
}

// FindCredentials returns the first usable X.509 credential. It fails with
// authutils.ErrNotFound when there is none.
func FindCredentials(opts ...Option) (Credential, error) {
	c := &config{timeLeft: DefaultTimeLeft, logger: slog.Default(), plat: platform.Current()}
	for _, opt := range opts {
		opt(c)
	}
	log := logctx.Wrap(c.logger)
	ctx := logctx.WithLookupData(context.Background(), &logctx.LookupData{ID: uuid.NewString(), Kind: "x509"})

	env, err := environ.Load()
	if err != nil {
		return Credential{}, err
	}

	for cand := range sources.X509(env, c.plat) {
		sctx := logctx.WithSourceData(ctx, &logctx.SourceData{Origin: cand.Origin, Tier: cand.Tier})
		cred := Credential{Cert: cand.Cert, Key: cand.Key}
		switch {
		case cand.Err != nil:
			log.DebugContext(sctx, "skipping x509 location", slog.Any("error", cand.Err))
		case cand.Trusted:
			log.DebugContext(sctx, "using x509 credential from environment", slog.String("cred", cred.String()))
			return cred, nil
		default:
			if ok, err := checkCertPath(cand.Cert, c.timeLeft); !ok {
				log.DebugContext(sctx, "x509 certificate not usable", slog.String("cert", cand.Cert), slog.Any("error", err))
				continue
			}
			if cand.CheckKey && !c.plat.Readable(cand.Key) {
				log.DebugContext(sctx, "x509 key not readable", slog.String("key", cand.Key))
				continue
			}
			log.DebugContext(sctx, "found x509 credential", slog.String("cred", cred.String()))
			return cred, nil
		}
	}
	return Credential{}, authutils.NewError(authutils.ErrNotFound, notFoundMsg, nil)
}
