// ABOUTME: Authentication context for tracking identity through request handlers
// ABOUTME: Provides WithUserID/UserID for propagating the caller via context

package auth

import "context"

// userIDKey is the key type for storing the authenticated user id in context.
type userIDKey struct{}

// WithUserID returns a new context with the authenticated user id attached.
func WithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, userIDKey{}, userID)
}

// UserID retrieves the authenticated user id from the context, returning
// the empty string if not present.
func UserID(ctx context.Context) string {
	val := ctx.Value(userIDKey{})
	if val == nil {
		return ""
	}
	id, ok := val.(string)
	if !ok {
		return ""
	}
	return id
}
