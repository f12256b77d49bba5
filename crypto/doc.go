// Package crypto provides the password-based encryption primitive used to
// protect collections at rest.
//
// Blobs are JSON envelopes carrying the argon2id cost, salt, nonce, a short
// key check value and the XChaCha20-Poly1305 ciphertext. A wrong secret is
// detected by the key check value before the AEAD is opened; both cases are
// reported as ErrDecrypt.
package crypto
