// Package mail sends plain email. It carries OTP codes when email delivery
// is selected and security alerts to the operator.
package mail
