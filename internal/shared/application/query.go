package application

import "context"

// Query represents a query that reads system state. Query handlers never
// mutate anything; rejections they report are data, not side effects.
type Query interface {
	QueryName() string
}

// QueryHandler handles a specific query type.
type QueryHandler[Q Query, R any] interface {
	Handle(ctx context.Context, query Q) (R, error)
}
