// Copyright (c) 2026 CoPla. All rights reserved.

// Package query splits list-valued parameters such as "--tags Portrait,Fantasy".
package query

import "strings"

// StringSlice splits val on commas, trimming entries and dropping empty ones.
// An empty val yields nil.
func StringSlice(val string) []string {
	var result []string
	for _, part := range strings.Split(val, ",") {
		if clean := strings.TrimSpace(part); clean != "" {
			result = append(result, clean)
		}
	}
	return result
}
