// Copyright (c) 2026 CoPla. All rights reserved.

/*
Package convert parses query parameters leniently.

Malformed input becomes the caller's default instead of an error. Use
[strconv] directly where a malformed value must be rejected.
*/
package convert

import "strconv"

// ToIntD parses s as an int, returning def when s is empty or malformed.
func ToIntD(s string, def int) int {
	if s == "" {
		return def
	}
	if v, err := strconv.Atoi(s); err == nil {
		return v
	}
	return def
}
