// Package cryptox implements the key-derivation and encryption core of tnyr.
//
// Two independent schemes are supported:
//
//   - Server scheme: Argon2id over the link identifier, salted with one of two
//     16-byte server secrets. The lookup secret yields the stored lookup key,
//     the encryption secret yields the AES key. See ServerKeys.
//   - Client scheme: scrypt over the link identifier. A fixed public salt
//     yields the lookup key, a random per-record salt yields the AES key. The
//     parameters and the lookup salt are part of the client protocol and must
//     not change without bumping ClientProtocolVersion. See ClientKeys.
//
// Both schemes encrypt with AES-256-CBC and PKCS#7 padding (Encrypt, Decrypt).
// Identifiers are produced by GenerateID.
package cryptox
