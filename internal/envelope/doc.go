// Package envelope produces and consumes the versioned encrypted envelope.
//
// An envelope binds content to exactly one recipient key. Version 2 is the
// hybrid shape: content under a fresh AES-256-GCM key, the key wrapped with
// the recipient's RSA public key using OAEP. Version 3 wraps an OpenPGP
// message built by the external PGP collaborator. Version 1 is consumed for
// backward compatibility only and is never produced.
//
// Decryption is a stateless dispatch over the declared version: the
// dispatcher resolves which local private key the envelope requires, checks
// that the claimed recipient matches the local identity (fingerprint over
// label), and invokes the per-version unwrap path.
package envelope
