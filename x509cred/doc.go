// Package x509cred locates an X.509 credential (an RFC 3820 proxy, or a
// certificate and private key pair) for client authentication.
//
// FindCredentials checks, in order:
//
//  1. X509_USER_PROXY
//  2. X509_USER_CERT and X509_USER_KEY
//  3. the default proxy location, /tmp/x509up_u<uid> on Unix or
//     %SYSTEMROOT%\Temp\x509up_<login> on Windows
//  4. ~/.globus/usercert.pem and ~/.globus/userkey.pem
//
// Paths named by environment variables are returned as they are, without
// being opened. A variable set to the empty string counts as unset, so
// X509_USER_PROXY="" falls through to the next location. The default
// locations are only returned when the certificate is valid for long enough
// and, for the .globus pair, the key is readable.
package x509cred
