// Package htgettoken obtains a new bearer token by running the htgettoken
// helper, which walks the user through an OIDC or Kerberos flow with a vault
// server and writes the resulting token to a file.
package htgettoken

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"strconv"
	"strings"

	"github.com/igwn/authutils"
	"github.com/igwn/authutils/internal/environ"
	"github.com/igwn/authutils/internal/platform"
)

// DefaultExecutable is the helper looked up on PATH.
const DefaultExecutable = "htgettoken"

// DefaultMinSecs is the minimum lifetime requested for a new token.
const DefaultMinSecs = 60

// Option configures GetToken.
type Option func(*config)

type config struct {
	exe     string
	minSecs int
	quiet   bool
	noOIDC  bool
	outfile string
	extra   []string
	out     io.Writer
	logger  *slog.Logger
	plat    platform.Platform
}

func newConfig(opts []Option) *config {
	c := &config{
		exe:     DefaultExecutable,
		minSecs: DefaultMinSecs,
		quiet:   true,
		out:     os.Stderr,
		logger:  slog.Default(),
		plat:    platform.Current(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// WithMinSecs sets the minimum lifetime of the token, in seconds.
func WithMinSecs(n int) Option { return func(c *config) { c.minSecs = n } }

// WithQuiet controls the helper's --quiet flag (default true).
func WithQuiet(quiet bool) Option { return func(c *config) { c.quiet = quiet } }

// WithNoOIDC passes --nooidc, disabling the interactive OIDC flow.
func WithNoOIDC() Option { return func(c *config) { c.noOIDC = true } }

// WithOutfile sets where the token is written instead of DefaultTokenPath.
func WithOutfile(path string) Option { return func(c *config) { c.outfile = path } }

// WithOption passes --name value to the helper. Underscores in name become
// dashes, so "vault_server" is passed as --vault-server.
func WithOption(name, value string) Option {
	return func(c *config) { c.extra = append(c.extra, flagName(name), value) }
}

// WithFlag passes the value-less flag --name to the helper.
func WithFlag(name string) Option {
	return func(c *config) { c.extra = append(c.extra, flagName(name)) }
}

// WithArgs appends raw arguments to the helper command line.
func WithArgs(args ...string) Option {
	return func(c *config) { c.extra = append(c.extra, args...) }
}

// WithExecutable runs path instead of htgettoken from PATH.
func WithExecutable(path string) Option { return func(c *config) { c.exe = path } }

// WithOutput sets where the helper's own output is echoed (default
// os.Stderr). Interactive flows print their instructions there.
func WithOutput(w io.Writer) Option {
	return func(c *config) {
		if w == nil {
			w = io.Discard
		}
		c.out = w
	}
}

// WithLogger sets the logger (default slog.Default()).
func WithLogger(l *slog.Logger) Option {
	return func(c *config) {
		if l != nil {
			c.logger = l
		}
	}
}

func flagName(name string) string {
	return "--" + strings.ReplaceAll(strings.TrimLeft(name, "-"), "_", "-")
}

// DefaultTokenPath returns where a new token is written by default:
// $BEARER_TOKEN_FILE, else $XDG_RUNTIME_DIR/bt_u<uid>, else /tmp/bt_u<uid>.
// On Windows the fallback is %SYSTEMROOT%\Temp\bt_<username>.
func DefaultTokenPath() (string, error) {
	env, err := environ.Load()
	if err != nil {
		return "", err
	}
	return defaultTokenPath(env, platform.Current())
}

func defaultTokenPath(env environ.Env, plat platform.Platform) (string, error) {
	if env.BearerTokenFile != "" {
		return env.BearerTokenFile, nil
	}
	return platform.DefaultBearerTokenPath(plat, env.XDGRuntimeDir)
}

func (c *config) args(outfile string) []string {
	args := []string{"--outfile", outfile, "--minsecs", strconv.Itoa(c.minSecs)}
	if c.quiet {
		args = append(args, "--quiet")
	}
	if c.noOIDC {
		args = append(args, "--nooidc")
	}
	return append(args, c.extra...)
}

// GetToken runs the helper and returns the path of the token file it wrote.
// Any failure to run it, including a non-zero exit, is reported as
// authutils.ErrAcquisition carrying the helper's error output.
func GetToken(ctx context.Context, opts ...Option) (string, error) {
	c := newConfig(opts)

	outfile := c.outfile
	if outfile == "" {
		env, err := environ.Load()
		if err != nil {
			return "", err
		}
		if outfile, err = defaultTokenPath(env, c.plat); err != nil {
			return "", err
		}
	}

	args := c.args(outfile)
	c.logger.DebugContext(ctx, "running token helper", slog.String("exe", c.exe), slog.Any("args", args))

	var stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, c.exe, args...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = c.out
	cmd.Stderr = io.MultiWriter(c.out, &stderr)
	if err := cmd.Run(); err != nil {
		msg := strings.TrimSpace(stderr.String())
		var exitErr *exec.ExitError
		if msg == "" && !errors.As(err, &exitErr) {
			msg = fmt.Sprintf("running %s", c.exe)
		}
		return "", authutils.NewError(authutils.ErrAcquisition, msg, err)
	}

	c.logger.InfoContext(ctx, "acquired new token", slog.String("path", outfile))
	return outfile, nil
}

// Helper adapts GetToken to the Acquire method used as a discovery
// fallback.
type Helper struct {
	opts []Option
}

// NewHelper returns a Helper that runs GetToken with opts.
func NewHelper(opts ...Option) *Helper {
	return &Helper{opts: opts}
}

// Acquire runs the helper and returns the token file path.
func (h *Helper) Acquire(ctx context.Context) (string, error) {
	return GetToken(ctx, h.opts...)
}
