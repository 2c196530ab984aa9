// Package service holds the storage business logic. Managers get their
// database handle, object store and limits injected, no globals.
package service

import (
	"context"
	"strings"
	"time"
)

func now() time.Time {
	return time.Now().UTC()
}

func withTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return context.WithCancel(ctx)
	}

	return context.WithTimeout(ctx, d)
}

// optional normalizes an optional id, treating blank strings as nil (root)
func optional(id *string) *string {
	if id == nil {
		return nil
	}

	v := strings.TrimSpace(*id)
	if v == "" || v == "null" {
		return nil
	}

	return &v
}
