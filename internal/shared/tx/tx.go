// Package tx abstracts the atomic-unit boundary so application services can
// group repository calls without depending on the storage driver.
package tx

import "context"

// Runner executes fn as one all-or-nothing unit against the shared store.
type Runner interface {
	InTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// NopRunner runs fn inline with no transactional guarantees. Used with the
// in-memory adapters and in unit tests.
type NopRunner struct{}

func (NopRunner) InTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}
