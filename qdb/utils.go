package qdb

import (
	"context"
	"time"
)

// withTimeout bounds a single storage round trip. A zero timeout leaves
// ctx untouched.
func withTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if timeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, timeout)
}
