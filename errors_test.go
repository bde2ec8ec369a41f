package authutils

import (
	"errors"
	"io/fs"
	"testing"
)

func TestError_Message(t *testing.T) {
	cases := []struct {
		name string
		err  *Error
		want string
	}{
		{"kind only", NewError(ErrNotFound, "", nil), "no valid credential found"},
		{"kind and cause", NewError(ErrIO, "", fs.ErrNotExist), "credential file unreadable: file does not exist"},
		{"message only", NewError(ErrNotFound, "could not find a valid SciToken", nil), "could not find a valid SciToken"},
		{"message and cause", NewError(ErrTokenFormat, "SCITOKEN", errors.New("bad")), "SCITOKEN: bad"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.err.Error(); got != tc.want {
				t.Fatalf("want %q, got %q", tc.want, got)
			}
		})
	}
}

func TestError_Is(t *testing.T) {
	err := error(NewError(ErrIO, "token.use", fs.ErrPermission))
	if !errors.Is(err, ErrIO) {
		t.Fatalf("expected ErrIO kind")
	}
	if !errors.Is(err, fs.ErrPermission) {
		t.Fatalf("expected cause to be reachable")
	}
	if errors.Is(err, ErrNotFound) {
		t.Fatalf("unexpected ErrNotFound match")
	}
	var ae *Error
	if !errors.As(err, &ae) || ae.Msg != "token.use" {
		t.Fatalf("errors.As failed: %#v", ae)
	}
}

func TestIsSkippable(t *testing.T) {
	for _, kind := range []error{ErrTokenFormat, ErrTokenVerification, ErrIO} {
		if !IsSkippable(NewError(kind, "x", nil)) {
			t.Fatalf("%v should be skippable", kind)
		}
	}
	for _, kind := range []error{ErrInvalidScope, ErrNotFound, ErrPlatform, ErrAcquisition} {
		if IsSkippable(NewError(kind, "x", nil)) {
			t.Fatalf("%v should not be skippable", kind)
		}
	}
}
