package port

import "context"

type IdentityProvider interface {
	// UserID returns the signed-in user for ctx, or "" for an anonymous session
	UserID(ctx context.Context) string
}
