// Package scitoken discovers, decodes and validates SciTokens: JWT bearer
// tokens carrying issuer, audience, scope and expiry claims.
//
// # Discovery
//
// FindToken searches, in order:
//
//   - the SCITOKEN and BEARER_TOKEN variables (raw token content)
//   - the SCITOKEN_FILE and BEARER_TOKEN_FILE variables (token file paths)
//   - the WLCG default token files, $XDG_RUNTIME_DIR/bt_u<uid> and /tmp/bt_u<uid>
//   - every *.use file in the HTCondor credentials directory, $_CONDOR_CREDS
//
// and returns the first token that satisfies the Requirement. Discover exposes
// the same search as a lazy sequence of per-candidate Results for callers that
// want to apply their own policy.
//
// # Verification
//
// Token signatures are always verified. By default the signing key is found
// through the issuer's OpenID discovery document; WithPublicKey,
// WithPublicKeyPEM and WithKeySetJSON supply keys locally instead.
//
// # Validation
//
// A token satisfies a Requirement when its audience matches one of
// Requirement.Audience (or the requirement contains "ANY"), when it grants any
// one of Requirement.Scope, when its issuer is one of Requirement.Issuer (if
// given), when its "nbf" and "iat" are not in the future and when it has at
// least the configured time left before expiry.
// Scopes are "scheme:path" pairs and paths are hierarchical: a token granting
// "read:/frames" satisfies a request for "read:/frames/O4".
package scitoken
