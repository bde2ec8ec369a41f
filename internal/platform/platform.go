// Package platform isolates the operating-system specific facts credential
// discovery depends on: who the current user is, where the shared temporary
// directory lives and whether a file can be read.
package platform

import (
	"fmt"
	"path/filepath"
)

// Platform describes the capabilities of the host operating system.
type Platform interface {
	// Windows reports whether this is the Windows implementation.
	Windows() bool
	// UID returns the numeric user id. Platforms without one return an
	// error wrapping authutils.ErrPlatform.
	UID() (int, error)
	// FileTag returns the user-specific suffix used by default credential
	// file names: "u<uid>" on Unix, the login name on Windows.
	FileTag() (string, error)
	// TempDir is the system-wide temporary directory used for default
	// credential files. It is not os.TempDir: TMPDIR is ignored.
	TempDir() string
	// HomeDir returns the current user's home directory.
	HomeDir() (string, error)
	// Readable reports whether the current user may read path.
	Readable(path string) bool
}

// Current returns the implementation for the running operating system.
func Current() Platform { return current }

// DefaultX509ProxyPath returns <tmp>/x509up_<tag>, the location grid-proxy-init
// and friends write short-lived proxies to.
func DefaultX509ProxyPath(p Platform) (string, error) {
	tag, err := p.FileTag()
	if err != nil {
		return "", err
	}
	return filepath.Join(p.TempDir(), "x509up_"+tag), nil
}

// DefaultBearerTokenPath returns the WLCG default bearer token file:
// $XDG_RUNTIME_DIR/bt_u<uid> when xdgRuntimeDir is set, <tmp>/bt_u<uid>
// otherwise. On Windows it is %SYSTEMROOT%\Temp\bt_<username>.
func DefaultBearerTokenPath(p Platform, xdgRuntimeDir string) (string, error) {
	tag, err := p.FileTag()
	if err != nil {
		return "", err
	}
	name := "bt_" + tag
	if !p.Windows() && xdgRuntimeDir != "" {
		return filepath.Join(xdgRuntimeDir, name), nil
	}
	return filepath.Join(p.TempDir(), name), nil
}

// BearerTokenSearchPaths returns the WLCG bearer token discovery locations in
// order. It needs a numeric uid, so it fails on Windows.
func BearerTokenSearchPaths(p Platform, xdgRuntimeDir string) ([]string, error) {
	uid, err := p.UID()
	if err != nil {
		return nil, err
	}
	name := fmt.Sprintf("bt_u%d", uid)
	var out []string
	if xdgRuntimeDir != "" {
		out = append(out, filepath.Join(xdgRuntimeDir, name))
	}
	return append(out, filepath.Join(p.TempDir(), name)), nil
}
