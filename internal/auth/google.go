package auth

import "context"

// GoogleProfile is the identity returned after a Google sign-in code
// exchange.
type GoogleProfile struct {
	Subject string
	Email   string
	Name    string
}

// GoogleIdentity exchanges an OAuth authorization code for a verified
// profile. The concrete implementation lives at the application edge so
// services stay testable without Google.
type GoogleIdentity interface {
	Exchange(ctx context.Context, code string) (GoogleProfile, error)
}
