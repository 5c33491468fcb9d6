package gql

import (
	"context"

	"github.com/dmitrijs2005/gophboard/internal/server/models"
)

type ctxKey string

const callerKey ctxKey = "caller"

// WithCaller stores the resolved caller (possibly nil) in ctx.
func WithCaller(ctx context.Context, caller *models.User) context.Context {
	return context.WithValue(ctx, callerKey, caller)
}

// CallerFrom returns the caller resolved for this request or connection, or
// nil for anonymous access.
func CallerFrom(ctx context.Context) *models.User {
	caller, _ := ctx.Value(callerKey).(*models.User)
	return caller
}
