// Package platformtest provides a configurable platform.Platform for tests
// that must not depend on the real user id, home directory or /tmp.
package platformtest

import (
	"fmt"
	"os"

	"github.com/igwn/authutils"
	"github.com/igwn/authutils/internal/platform"
)

// Fake is a platform.Platform whose answers are fixed fields.
type Fake struct {
	IsWindows bool
	// Username is the FileTag on Windows.
	Username string
	// NoUID makes UID fail with authutils.ErrPlatform.
	NoUID bool
	UserID int
	Temp   string
	Home   string
	// Unreadable lists paths Readable must reject even if they exist.
	Unreadable map[string]bool
}

var _ platform.Platform = (*Fake)(nil)

// NewUnix returns a Unix-like fake rooted at tmp (used for both TempDir and
// HomeDir).
func NewUnix(tmp string) *Fake {
	return &Fake{UserID: 1000, Temp: tmp, Home: tmp}
}

func (f *Fake) Windows() bool { return f.IsWindows }

func (f *Fake) UID() (int, error) {
	if f.NoUID || f.IsWindows {
		return 0, authutils.NewError(authutils.ErrPlatform, "no uid on this fake platform", nil)
	}
	return f.UserID, nil
}

func (f *Fake) FileTag() (string, error) {
	if f.IsWindows {
		return f.Username, nil
	}
	uid, err := f.UID()
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("u%d", uid), nil
}

func (f *Fake) TempDir() string { return f.Temp }

func (f *Fake) HomeDir() (string, error) {
	if f.Home == "" {
		return "", fmt.Errorf("no home directory")
	}
	return f.Home, nil
}

func (f *Fake) Readable(path string) bool {
	if f.Unreadable[path] {
		return false
	}
	fh, err := os.Open(path)
	if err != nil {
		return false
	}
	_ = fh.Close()
	return true
}
