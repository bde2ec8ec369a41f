// Package environ snapshots the environment variables consulted during
// credential discovery.
package environ

import (
	"errors"

	"github.com/joeshaw/envdecode"
)

// Env holds every variable discovery reads. Empty values are treated as
// unset.
type Env struct {
	// SciToken and BearerToken hold raw serialized tokens.
	SciToken    string `env:"SCITOKEN"`
	BearerToken string `env:"BEARER_TOKEN"`
	// SciTokenFile and BearerTokenFile hold paths to token files.
	SciTokenFile    string `env:"SCITOKEN_FILE"`
	BearerTokenFile string `env:"BEARER_TOKEN_FILE"`
	// CondorCreds is the HTCondor per-job credentials directory.
	CondorCreds   string `env:"_CONDOR_CREDS"`
	XDGRuntimeDir string `env:"XDG_RUNTIME_DIR"`

	X509UserProxy string `env:"X509_USER_PROXY"`
	X509UserCert  string `env:"X509_USER_CERT"`
	X509UserKey   string `env:"X509_USER_KEY"`
}

// Load reads the current process environment.
func Load() (Env, error) {
	var e Env
	if err := envdecode.Decode(&e); err != nil && !errors.Is(err, envdecode.ErrNoTargetFieldsAreSet) {
		return Env{}, err
	}
	return e, nil
}
