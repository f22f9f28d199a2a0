// Package keyring bridges to the system GPG installation.
//
// The bridge shells out to the configured binary rather than linking a PGP
// implementation for keyring access, so the user's existing keyring, agent,
// and trust settings apply unchanged. Every subprocess runs under a hard
// deadline and is killed when it expires; GPG is allowed to be absent, which
// surfaces as a status rather than a failure.
package keyring
