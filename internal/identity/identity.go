// Package identity adapts external identity providers into one normalized
// assertion. Verifiers never touch sessions or users.
package identity

import (
	"context"
	"strings"
)

// Identity is what a provider vouches for.
type Identity struct {
	Email   string
	Name    string
	Picture string
}

// Verifier exchanges a provider credential for a verified identity. All
// failures are apperr.KindAuthenticationFailed.
type Verifier interface {
	Verify(ctx context.Context, credential string) (Identity, error)
}

// VerifierFunc adapts a function to Verifier.
type VerifierFunc func(ctx context.Context, credential string) (Identity, error)

func (f VerifierFunc) Verify(ctx context.Context, credential string) (Identity, error) {
	return f(ctx, credential)
}

// normalize fills the display name from the email local part when the
// provider omitted the name field. Values the provider did send are kept
// as given, including an empty name.
func normalize(email string, name *string, picture string) Identity {
	id := Identity{Email: email, Picture: picture}
	if name != nil {
		id.Name = *name
	} else {
		id.Name, _, _ = strings.Cut(email, "@")
	}
	return id
}
