package auth

import (
	"context"

	"github.com/dmitrijs2005/teamboard/internal/server/models"
)

type ctxKey struct{}

// WithCaller returns a copy of ctx carrying the authenticated caller.
func WithCaller(ctx context.Context, caller *models.Caller) context.Context {
	return context.WithValue(ctx, ctxKey{}, caller)
}

// CallerFromContext returns the caller stored by WithCaller.
func CallerFromContext(ctx context.Context) (*models.Caller, bool) {
	c, ok := ctx.Value(ctxKey{}).(*models.Caller)
	return c, ok && c != nil
}
