// Package gql exposes the services over GraphQL: queries and mutations over
// HTTP, the messageAdded subscription over WebSocket on the same path.
package gql

import (
	"context"
	_ "embed"
	"fmt"

	"github.com/dmitrijs2005/gophboard/internal/logging"
	graphql "github.com/graph-gophers/graphql-go"
)

//go:embed schema.graphql
var schemaSDL string

const maxQueryDepth = 20

// panicLogger routes resolver panics into the application log.
type panicLogger struct {
	log logging.Logger
}

func (p panicLogger) LogPanic(ctx context.Context, value interface{}) {
	p.log.Error(ctx, "resolver panic", "panic", fmt.Sprint(value))
}

// NewSchema parses the embedded SDL against r.
func NewSchema(r *Resolver) (*graphql.Schema, error) {
	return graphql.ParseSchema(schemaSDL, r,
		graphql.MaxDepth(maxQueryDepth),
		graphql.Logger(panicLogger{log: r.log}),
	)
}
