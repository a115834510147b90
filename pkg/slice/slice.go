// Copyright (c) 2026 CoPla. All rights reserved.

// Package slice has the generic Map and Filter helpers the [slices] package lacks.
package slice

// Map applies transform to each element. A nil input yields nil.
func Map[T any, U any](input []T, transform func(T) U) []U {
	if input == nil {
		return nil
	}

	result := make([]U, len(input))
	for i, v := range input {
		result[i] = transform(v)
	}
	return result
}

// Filter keeps the elements for which predicate is true, in order. The
// result is nil when nothing matches.
func Filter[T any](input []T, predicate func(T) bool) []T {
	var result []T
	for _, v := range input {
		if predicate(v) {
			result = append(result, v)
		}
	}
	return result
}
