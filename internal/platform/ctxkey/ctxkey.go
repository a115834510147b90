// Copyright (c) 2026 CoPla. All rights reserved.

// Package ctxkey defines typed context keys shared by the HTTP layer.
//
// It has no dependencies so that low-level packages such as respond can read
// request values without importing middleware.
package ctxkey

import (
	"context"
	"log/slog"
)

// Key is a context key bound to the type of the value it stores.
type Key[T any] struct {
	name string
}

// New declares a key. Keys with the same name but different T never collide.
func New[T any](name string) Key[T] {
	return Key[T]{name: name}
}

// With stores value under the key.
func (k Key[T]) With(ctx context.Context, value T) context.Context {
	return context.WithValue(ctx, k, value)
}

// From reads the value, reporting whether one was stored.
func (k Key[T]) From(ctx context.Context) (T, bool) {
	value, ok := ctx.Value(k).(T)
	return value, ok
}

func (k Key[T]) String() string { return "ctxkey." + k.name }

var (
	// RequestID carries the X-Request-ID correlation value.
	RequestID = New[string]("request_id")

	// Logger carries the per-request logger built by middleware.StructuredLogger.
	Logger = New[*slog.Logger]("logger")
)
