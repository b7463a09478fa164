package shared

import "errors"

var (
	// ErrNotFound indicates resource not found.
	ErrNotFound = errors.New("not found")
	// ErrInvalidCredentials indicates login failure.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrOTPExpired indicates the one-time code is missing or past its TTL.
	ErrOTPExpired = errors.New("otp expired")
	// ErrOTPMismatch indicates the supplied one-time code does not match.
	ErrOTPMismatch = errors.New("otp mismatch")
	// ErrCSRFTokenMissing occurs when the CSRF token is missing.
	ErrCSRFTokenMissing = errors.New("csrf token missing")
	// ErrCSRFTokenMismatch occurs when CSRF tokens do not match.
	ErrCSRFTokenMismatch = errors.New("csrf token mismatch")
)

// UserSafeMessage converts internal errors into text safe to surface to clients.
func UserSafeMessage(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrNotFound):
		return "The requested record was not found."
	case errors.Is(err, ErrInvalidCredentials):
		return "Email or password is incorrect."
	case errors.Is(err, ErrOTPExpired):
		return "The verification code has expired. Request a new one."
	case errors.Is(err, ErrOTPMismatch):
		return "The verification code is incorrect."
	default:
		return "Something went wrong. Please try again."
	}
}
