package x509cred

import (
	"crypto/x509"
	"encoding/pem"
	"errors"
	"fmt"
	"os"
	"time"
)

// Credential is the location of an X.509 credential. Only paths are
// returned; nothing is read into memory.
type Credential struct {
	// Cert is the certificate path. For a proxy it also holds the key.
	Cert string
	// Key is the private key path, empty for a combined proxy file.
	Key string
}

// Combined reports whether the certificate and key share one file.
func (c Credential) Combined() bool { return c.Key == "" }

func (c Credential) String() string {
	if c.Combined() {
		return c.Cert
	}
	return c.Cert + ", " + c.Key
}

// LoadCertificate reads the first PEM certificate in path.
func LoadCertificate(path string) (*x509.Certificate, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	for {
		var block *pem.Block
		block, b = pem.Decode(b)
		if block == nil {
			return nil, fmt.Errorf("%s: no PEM certificate found", path)
		}
		if block.Type == "CERTIFICATE" {
			cert, err := x509.ParseCertificate(block.Bytes)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", path, err)
			}
			return cert, nil
		}
	}
}

// TimeLeft returns how long cert remains valid. It is negative once the
// certificate has expired.
func TimeLeft(cert *x509.Certificate) time.Duration {
	return time.Until(cert.NotAfter)
}

// IsValidCertPath reports whether path holds a PEM certificate with at least
// timeleft remaining. A missing, unreadable or unparsable file is not valid.
func IsValidCertPath(path string, timeleft time.Duration) bool {
	ok, _ := checkCertPath(path, timeleft)
	return ok
}

var errExpiring = errors.New("certificate expires too soon")

func checkCertPath(path string, timeleft time.Duration) (bool, error) {
	cert, err := LoadCertificate(path)
	if err != nil {
		return false, err
	}
	if left := TimeLeft(cert); left < timeleft {
		return false, fmt.Errorf("%w: %s left", errExpiring, left.Round(time.Second))
	}
	return true, nil
}
