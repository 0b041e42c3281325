// Package validator validates request structs with go-playground/validator.
//
// Failures come back as V10ValidationError keyed by the JSON field name so the
// HTTP layer can return them as-is.
package validator
