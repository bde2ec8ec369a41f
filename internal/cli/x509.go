package cli

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"github.com/igwn/authutils/x509cred"
)

func newX509Cmd() *cobra.Command {
	var timeleft time.Duration
	cmd := &cobra.Command{
		Use:   "x509",
		Short: "Find an X.509 credential and print its path(s)",
		Long: `Print the certificate path, and the key path when it is separate, of the first
X.509 credential found in X509_USER_PROXY, X509_USER_CERT/X509_USER_KEY, the
default proxy location or ~/.globus.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cred, err := x509cred.FindCredentials(
				x509cred.WithTimeLeft(timeleft),
				x509cred.WithLogger(slog.Default()),
			)
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			fmt.Fprintln(w, cred.Cert)
			if !cred.Combined() {
				fmt.Fprintln(w, cred.Key)
			}
			return nil
		},
	}
	cmd.Flags().DurationVar(&timeleft, "timeleft", x509cred.DefaultTimeLeft, "minimum remaining validity of default credentials")
	return cmd
}
