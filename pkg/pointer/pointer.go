// Copyright (c) 2026 CoPla. All rights reserved.

/*
Package pointer helps with optional fields.

Partial updates use nil to mean "leave unchanged"; [Fallback] applies them and
[To] builds them in tests and clients.
*/
package pointer

// To returns a pointer to a copy of v.
func To[T any](v T) *T {
	return &v
}

// Fallback returns *p, or fallback when p is nil.
func Fallback[T any](p *T, fallback T) T {
	if p == nil {
		return fallback
	}
	return *p
}
