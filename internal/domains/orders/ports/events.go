package ports

import (
	"context"

	"github.com/Apurer/go-gin-bookstore/internal/domains/orders/domain"
)

// EventRecorder stores order events in the caller's unit of work.
type EventRecorder interface {
	Record(ctx context.Context, events ...domain.Event) error
}

// EventRecorderFunc adapts a function to EventRecorder.
type EventRecorderFunc func(ctx context.Context, events ...domain.Event) error

func (f EventRecorderFunc) Record(ctx context.Context, events ...domain.Event) error {
	return f(ctx, events...)
}

// DiscardEvents drops every event.
var DiscardEvents EventRecorder = EventRecorderFunc(func(context.Context, ...domain.Event) error { return nil })
