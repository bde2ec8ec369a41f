// Package authutils locates authentication credentials for IGWN clients.
//
// Two discovery pipelines share one design: scan an ordered list of candidate
// sources, validate each candidate against the caller's requirements and
// return the first match. Failures are only reported when nothing matches.
//
// # Bearer tokens
//
// The scitoken package finds SciTokens (WLCG JWT bearer tokens) in the
// SCITOKEN, BEARER_TOKEN, SCITOKEN_FILE and BEARER_TOKEN_FILE variables, the
// WLCG default token files and an HTCondor credentials directory:
//
//	tok, err := scitoken.FindToken(ctx, scitoken.Requirement{
//	    Audience: []string{"https://datafind.ligo.org"},
//	    Scope:    []string{"read:/frames"},
//	})
//	if errors.Is(err, authutils.ErrNotFound) { /* mint a token */ }
//	hdr, _ := scitoken.AuthorizationHeader(tok, "")
//
// # X.509
//
// The x509cred package finds a proxy or certificate/key pair following the
// X509_USER_PROXY, X509_USER_CERT/X509_USER_KEY, /tmp/x509up_u<uid> and
// ~/.globus conventions.
//
// # Errors
//
// Every error returned by this module's packages is an *Error whose kind can
// be tested with errors.Is against ErrInvalidScope, ErrTokenFormat,
// ErrTokenVerification, ErrIO, ErrNotFound, ErrPlatform and ErrAcquisition.
package authutils
