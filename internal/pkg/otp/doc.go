// Package otp draws the numeric one-time codes sent out of band during login.
package otp
