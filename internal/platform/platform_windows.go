//go:build windows

package platform

import (
	"os"
	"os/user"
	"path/filepath"
	"strings"

	"github.com/igwn/authutils"
)

var current Platform = windowsPlatform{}

type windowsPlatform struct{}

func (windowsPlatform) Windows() bool { return true }

func (windowsPlatform) UID() (int, error) {
	return 0, authutils.NewError(authutils.ErrPlatform, "numeric user id lookup is not available on windows", nil)
}

func (windowsPlatform) FileTag() (string, error) {
	u, err := user.Current()
	if err != nil {
		return "", authutils.NewError(authutils.ErrPlatform, "looking up current user", err)
	}
	name := u.Username
	// DOMAIN\user
	if i := strings.LastIndex(name, `\`); i >= 0 {
		name = name[i+1:]
	}
	if name == "" {
		return "", authutils.NewError(authutils.ErrPlatform, "current user has no login name", nil)
	}
	return name, nil
}

func (windowsPlatform) TempDir() string {
	return filepath.Join(os.Getenv("SYSTEMROOT"), "Temp")
}

func (windowsPlatform) HomeDir() (string, error) { return os.UserHomeDir() }

func (windowsPlatform) Readable(path string) bool {
	f, err := os.Open(path)
	if err != nil {
		return false
	}
	_ = f.Close()
	return true
}
