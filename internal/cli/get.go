package cli

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/igwn/authutils/htgettoken"
)

func newGetCmd() *cobra.Command {
	var (
		minSecs int
		noQuiet bool
		noOIDC  bool
		outfile string
		exe     string
	)
	cmd := &cobra.Command{
		Use:   "get [-- htgettoken options...]",
		Short: "Fetch a new token with htgettoken",
		Long: `Run htgettoken to obtain a new bearer token and print the path it was written
to. Arguments after -- are passed to htgettoken unchanged.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := []htgettoken.Option{
				htgettoken.WithMinSecs(minSecs),
				htgettoken.WithQuiet(!noQuiet),
				htgettoken.WithExecutable(exe),
				htgettoken.WithOutput(cmd.ErrOrStderr()),
				htgettoken.WithLogger(slog.Default()),
				htgettoken.WithArgs(args...),
			}
			if noOIDC {
				opts = append(opts, htgettoken.WithNoOIDC())
			}
			if outfile != "" {
				opts = append(opts, htgettoken.WithOutfile(outfile))
			}
			path, err := htgettoken.GetToken(cmd.Context(), opts...)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), path)
			return nil
		},
	}
	fl := cmd.Flags()
	fl.IntVar(&minSecs, "minsecs", htgettoken.DefaultMinSecs, "minimum token lifetime in seconds")
	fl.BoolVar(&noQuiet, "no-quiet", false, "let htgettoken print progress")
	fl.BoolVar(&noOIDC, "nooidc", false, "disable the interactive OIDC flow")
	fl.StringVar(&outfile, "outfile", "", "token file (default: the WLCG bearer token location)")
	fl.StringVar(&exe, "executable", htgettoken.DefaultExecutable, "htgettoken executable")
	return cmd
}
