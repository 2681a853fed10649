package handler

import (
	"context"
	"net/http"
)

const (
	SessionHeader = "X-Session-ID"
	UserHeader    = "X-User-ID"
)

type ctxKey int

const (
	sessionKey ctxKey = iota
	userKey
)

func WithSession(ctx context.Context, sessionID string) context.Context {
	return context.WithValue(ctx, sessionKey, sessionID)
}

func SessionFrom(ctx context.Context) string {
	v, _ := ctx.Value(sessionKey).(string)
	return v
}

func WithUser(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, userKey, userID)
}

// ContextIdentity resolves the analytics user from the request context.
type ContextIdentity struct{}

func (ContextIdentity) UserID(ctx context.Context) string {
	v, _ := ctx.Value(userKey).(string)
	return v
}

// Identify copies the session and user headers into the request context.
// Neither is required: the user only attributes analytics events.
func Identify(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := WithSession(r.Context(), r.Header.Get(SessionHeader))
		ctx = WithUser(ctx, r.Header.Get(UserHeader))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
