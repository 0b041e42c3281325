// Package hash hashes and verifies secrets.
//
// HMACSHA256 is deterministic and is used for fingerprints that must be
// compared later (challenge tokens, code hashes, the plaintext password).
// Bcrypt and Argon2id are salted and are used for an operator supplied
// password hash.
package hash
