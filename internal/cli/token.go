package cli

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/igwn/authutils/htgettoken"
	"github.com/igwn/authutils/scitoken"
)

type tokenFlags struct {
	audience   []string
	scope      []string
	issuer     []string
	timeleft   time.Duration
	skipErrors bool
	warn       bool
	insecure   bool
	publicKey  string
	header     bool
	acquire    bool
}

func newTokenCmd() *cobra.Command {
	var f tokenFlags
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Find a valid SciToken and print it",
		Long: `Search SCITOKEN, BEARER_TOKEN, their *_FILE variants, the WLCG default token
files and $_CONDOR_CREDS for a token matching the audience and scope, and print
the first one found.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runToken(cmd, &f)
		},
	}
	fl := cmd.Flags()
	fl.StringSliceVar(&f.audience, "audience", nil, `accepted audience(s), "ANY" for any`)
	fl.StringSliceVar(&f.scope, "scope", nil, "required scope(s), scheme:path")
	fl.StringSliceVar(&f.issuer, "issuer", nil, "accepted issuer(s)")
	fl.DurationVar(&f.timeleft, "timeleft", scitoken.DefaultTimeLeft, "minimum remaining lifetime")
	fl.BoolVar(&f.skipErrors, "skip-errors", false, "pass over tokens that cannot be read or verified")
	fl.BoolVar(&f.warn, "warn", false, "log rejected tokens as warnings")
	fl.BoolVar(&f.insecure, "insecure", false, "allow fetching keys from http:// issuers")
	fl.StringVar(&f.publicKey, "public-key", "", "PEM public key to verify tokens with")
	fl.BoolVar(&f.header, "header", false, "print an HTTP Authorization header value")
	fl.BoolVar(&f.acquire, "acquire", false, "run htgettoken if no valid token is found")
	_ = cmd.MarkFlagRequired("audience")
	return cmd
}

func runToken(cmd *cobra.Command, f *tokenFlags) error {
	opts := []scitoken.Option{
		scitoken.WithTimeLeft(f.timeleft),
		scitoken.WithLogger(slog.Default()),
	}
	if f.skipErrors {
		opts = append(opts, scitoken.WithSkipErrors())
	}
	if f.warn {
		opts = append(opts, scitoken.WithWarnings())
	}
	if f.insecure {
		opts = append(opts, scitoken.WithInsecure())
	}
	if f.publicKey != "" {
		pem, err := os.ReadFile(f.publicKey)
		if err != nil {
			return fmt.Errorf("reading public key: %w", err)
		}
		opts = append(opts, scitoken.WithPublicKeyPEM(pem))
	}
	if f.acquire {
		opts = append(opts, scitoken.WithAcquirer(htgettoken.NewHelper(
			htgettoken.WithOutput(cmd.ErrOrStderr()),
		)))
	}

	req := scitoken.Requirement{Audience: f.audience, Scope: f.scope, Issuer: f.issuer}
	tok, err := scitoken.FindToken(cmd.Context(), req, opts...)
	if err != nil {
		return err
	}

	var out string
	if f.header {
		out, err = scitoken.AuthorizationHeader(tok, scitoken.DefaultScheme)
	} else {
		out, err = tok.Serialize()
	}
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), out)
	return nil
}
