package userctx

import "context"

// Context key type
type contextKey string

const userIDKey contextKey = "user_id"

// SetUserID adds the logged in user ID to request context
func SetUserID(ctx context.Context, id int64) context.Context {
	return context.WithValue(ctx, userIDKey, id)
}

// GetUserID retrieves the logged in user ID from request context, 0 if anonymous
func GetUserID(ctx context.Context) int64 {
	if id, ok := ctx.Value(userIDKey).(int64); ok {
		return id
	}
	return 0
}
