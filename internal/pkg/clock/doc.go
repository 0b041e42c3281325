// Package clock wraps time.Now behind the Clocker interface.
//
// Lockout windows and code expiry are computed from an injected Clocker so
// tests can move time with Fake instead of sleeping.
package clock
