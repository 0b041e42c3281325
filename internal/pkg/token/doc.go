// Package token signs and verifies compact HS256 JSON Web Tokens.
//
// A Symmetric codec is bound to one purpose ("session", "otp", ...). Each
// purpose signs with its own key derived from the master secret, so a token
// minted for one purpose never verifies under another. Session builds on a
// codec to issue and authenticate login sessions.
package token
