package sources

import (
	"iter"
	"path/filepath"

	"github.com/igwn/authutils/internal/environ"
	"github.com/igwn/authutils/internal/platform"
)

// X509Candidate is one X.509 credential location.
type X509Candidate struct {
	// Tier is the 1-based position in the search order.
	Tier   int
	Origin string
	Cert   string
	// Key is empty when Cert also contains the private key.
	Key string
	// Trusted candidates come from explicit environment overrides and are
	// returned without validation.
	Trusted bool
	// CheckKey asks the consumer to confirm Key is readable.
	CheckKey bool
	// Err is set when the location could not be computed.
	Err error
}

// X509 yields X.509 candidates in discovery order:
//
//  1. X509_USER_PROXY (trusted)
//  2. X509_USER_CERT and X509_USER_KEY (trusted, both required)
//  3. /tmp/x509up_u<uid> (validate)
//  4. ~/.globus/usercert.pem and ~/.globus/userkey.pem (validate cert, check key)
func X509(env environ.Env, plat platform.Platform) iter.Seq[X509Candidate] {
	return func(yield func(X509Candidate) bool) {
		if env.X509UserProxy != "" {
			if !yield(X509Candidate{Tier: 1, Origin: "X509_USER_PROXY", Cert: env.X509UserProxy, Trusted: true}) {
				return
			}
		}
		if env.X509UserCert != "" && env.X509UserKey != "" {
			if !yield(X509Candidate{Tier: 2, Origin: "X509_USER_CERT/X509_USER_KEY", Cert: env.X509UserCert, Key: env.X509UserKey, Trusted: true}) {
				return
			}
		}

		proxy, err := platform.DefaultX509ProxyPath(plat)
		c := X509Candidate{Tier: 3, Origin: "default proxy", Cert: proxy, Err: err}
		if !yield(c) {
			return
		}

		home, err := plat.HomeDir()
		if err != nil {
			yield(X509Candidate{Tier: 4, Origin: "globus", Err: err})
			return
		}
		globus := filepath.Join(home, ".globus")
		yield(X509Candidate{
			Tier:     4,
			Origin:   "globus",
			Cert:     filepath.Join(globus, "usercert.pem"),
			Key:      filepath.Join(globus, "userkey.pem"),
			CheckKey: true,
		})
	}
}
