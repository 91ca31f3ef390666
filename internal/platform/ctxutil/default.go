package ctxutil

import "context"

// Default guards against nil contexts passed across service boundaries.
func Default(ctx context.Context) context.Context {
	if ctx == nil {
		return context.Background()
	}
	return ctx
}
