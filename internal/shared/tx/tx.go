// Package tx defines the unit-of-work boundary shared by the bounded contexts.
package tx

import "context"

// Transactor runs fn inside a single unit of work. Repositories called with the
// context handed to fn participate in that unit of work. A non-nil error (or a
// panic) from fn rolls every change back. Nested calls join the outer unit.
type Transactor interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// TransactorFunc adapts a function to the Transactor interface.
type TransactorFunc func(ctx context.Context, fn func(ctx context.Context) error) error

// WithinTx calls f.
func (f TransactorFunc) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return f(ctx, fn)
}

// Passthrough runs fn directly without any transactional guarantees. Useful for
// fakes in unit tests.
var Passthrough Transactor = TransactorFunc(func(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
})
