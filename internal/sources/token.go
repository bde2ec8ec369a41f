package sources

import (
	"errors"
	"io/fs"
	"iter"
	"os"
	"path/filepath"

	"github.com/igwn/authutils"
	"github.com/igwn/authutils/internal/environ"
	"github.com/igwn/authutils/internal/platform"
)

// Kind says how a TokenCandidate's Value is interpreted.
type Kind int

const (
	// Raw candidates hold serialized token content.
	Raw Kind = iota + 1
	// File candidates hold the path of a token file.
	File
)

func (k Kind) String() string {
	switch k {
	case Raw:
		return "raw"
	case File:
		return "file"
	}
	return "unknown"
}

// CondorCredsSuffix is the extension HTCondor gives usable token files.
const CondorCredsSuffix = ".use"

// TokenCandidate is one place a bearer token may be found. When Err is set
// the source itself could not be enumerated and Kind/Value are empty.
type TokenCandidate struct {
	// Origin names the source, e.g. "SCITOKEN" or a file path.
	Origin string
	Kind   Kind
	Value  string
	Err    error
}

// Tokens yields token candidates in discovery order:
//
//  1. SCITOKEN, BEARER_TOKEN (raw content)
//  2. SCITOKEN_FILE, BEARER_TOKEN_FILE (paths)
//  3. WLCG default token files ($XDG_RUNTIME_DIR/bt_u<uid>, /tmp/bt_u<uid>)
//  4. $_CONDOR_CREDS/*.use
//
// The HTCondor directory is scanned whenever iteration reaches it, including
// after a WLCG default token file was yielded and rejected by the consumer.
func Tokens(env environ.Env, plat platform.Platform) iter.Seq[TokenCandidate] {
	return func(yield func(TokenCandidate) bool) {
		for _, v := range []struct{ name, value string }{
			{"SCITOKEN", env.SciToken},
			{"BEARER_TOKEN", env.BearerToken},
		} {
			if v.value == "" {
				continue
			}
			if !yield(TokenCandidate{Origin: v.name, Kind: Raw, Value: v.value}) {
				return
			}
		}

		for _, v := range []struct{ name, value string }{
			{"SCITOKEN_FILE", env.SciTokenFile},
			{"BEARER_TOKEN_FILE", env.BearerTokenFile},
		} {
			if v.value == "" {
				continue
			}
			if !yield(TokenCandidate{Origin: v.name, Kind: File, Value: v.value}) {
				return
			}
		}

		for c := range defaultTokenFiles(env, plat) {
			if !yield(c) {
				return
			}
		}

		for path := range CondorCredsTokenPaths(env.CondorCreds) {
			if !yield(TokenCandidate{Origin: path, Kind: File, Value: path}) {
				return
			}
		}
	}
}

// defaultTokenFiles yields the WLCG default token files that exist. Missing
// files are not candidates. A missing uid is expected on Windows and
// swallowed there; anywhere else it is reported.
func defaultTokenFiles(env environ.Env, plat platform.Platform) iter.Seq[TokenCandidate] {
	return func(yield func(TokenCandidate) bool) {
		paths, err := platform.BearerTokenSearchPaths(plat, env.XDGRuntimeDir)
		if err != nil {
			if errors.Is(err, authutils.ErrPlatform) && plat.Windows() {
				return
			}
			yield(TokenCandidate{Origin: "bearer token discovery", Err: err})
			return
		}
		for _, path := range paths {
			if _, err := os.Stat(path); err != nil {
				continue
			}
			if !yield(TokenCandidate{Origin: path, Kind: File, Value: path}) {
				return
			}
		}
	}
}

// CondorCredsTokenPaths yields the *.use files in dir in directory order. An
// empty dir, a directory that does not exist or an empty directory yield
// nothing.
func CondorCredsTokenPaths(dir string) iter.Seq[string] {
	return func(yield func(string) bool) {
		if dir == "" {
			return
		}
		entries, err := os.ReadDir(dir)
		if err != nil {
			// missing or unreadable directory: nothing to offer
			return
		}
		for _, e := range entries {
			if filepath.Ext(e.Name()) != CondorCredsSuffix {
				continue
			}
			if !e.Type().IsRegular() && e.Type()&fs.ModeSymlink == 0 {
				continue
			}
			if !yield(filepath.Join(dir, e.Name())) {
				return
			}
		}
	}
}
