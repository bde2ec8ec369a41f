//go:build !windows

package platform

import (
	"fmt"
	"os"

	"golang.org/x/sys/unix"
)

var current Platform = unixPlatform{}

type unixPlatform struct{}

func (unixPlatform) Windows() bool { return false }

func (unixPlatform) UID() (int, error) { return os.Getuid(), nil }

func (unixPlatform) FileTag() (string, error) { return fmt.Sprintf("u%d", os.Getuid()), nil }

func (unixPlatform) TempDir() string { return "/tmp" }

func (unixPlatform) HomeDir() (string, error) { return os.UserHomeDir() }

func (unixPlatform) Readable(path string) bool {
	return unix.Access(path, unix.R_OK) == nil
}
