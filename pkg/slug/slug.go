// Copyright (c) 2026 CoPla. All rights reserved.

// Package slug turns display names into ASCII URL identifiers.
//
// Tags are addressed by slug, so "Character Design", "character-design" and
// "Charactér  Design!" all resolve to the same tag.
package slug

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// From lowercases s, strips accents and joins runs of ASCII letters and digits
// with single hyphens. Characters with no ASCII decomposition are dropped.
func From(s string) string {
	stripped, _, err := transform.String(transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC), s)
	if err != nil {
		stripped = s
	}

	var builder strings.Builder
	builder.Grow(len(stripped))

	pendingHyphen := false
	for _, r := range strings.ToLower(stripped) {
		if !isSlugRune(r) {
			pendingHyphen = builder.Len() > 0
			continue
		}
		if pendingHyphen {
			builder.WriteByte('-')
			pendingHyphen = false
		}
		builder.WriteRune(r)
	}
	return builder.String()
}

func isSlugRune(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9')
}
