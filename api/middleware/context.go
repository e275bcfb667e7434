package middleware

import (
	"context"

	"github.com/plantops/plantops-backend/pkg/access"
)

type contextKey string

const ctxViewer contextKey = "viewer"

// ViewerFromContext returns the authenticated viewer, if any.
func ViewerFromContext(ctx context.Context) (access.Viewer, bool) {
	if ctx == nil {
		return access.Viewer{}, false
	}
	v, ok := ctx.Value(ctxViewer).(access.Viewer)
	return v, ok
}

// WithViewer injects the viewer into the context for downstream handlers.
func WithViewer(ctx context.Context, viewer access.Viewer) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, ctxViewer, viewer)
}
