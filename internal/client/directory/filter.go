// Copyright (c) 2026 CoPla. All rights reserved.

package directory

import (
	"slices"
	"strings"
)

// FilterState is the user's current directory filter. Availability and Tags
// are ordered sets in selection order.
type FilterState struct {
	SearchTerm     string
	Price          PriceRange
	Availability   []Availability
	Tags           []string
	VerifiedOnly   bool
	FollowingOnly  bool
	CustomTagInput string
}

// DefaultFilterState matches every record.
func DefaultFilterState() FilterState {
	return FilterState{Price: PriceRange{Min: 0, Max: PriceCeiling}}
}

// Clone returns a copy that shares no slices with s.
func (s FilterState) Clone() FilterState {
	s.Availability = slices.Clone(s.Availability)
	s.Tags = slices.Clone(s.Tags)
	return s
}

// # Mutators

// None of these fail: inputs are clamped or ignored.

func (s *FilterState) SetSearchTerm(term string) { s.SearchTerm = term }
func (s *FilterState) SetVerifiedOnly(on bool) { s.VerifiedOnly = on }
func (s *FilterState) SetFollowingOnly(on bool) { s.FollowingOnly = on }
func (s *FilterState) SetCustomTagInput(raw string) { s.CustomTagInput = raw }

// ToggleTag adds tag when absent and removes it when present.
func (s *FilterState) ToggleTag(tag string) {
	s.Tags = toggle(s.Tags, tag)
}

// ToggleAvailability adds status when absent and removes it when present.
func (s *FilterState) ToggleAvailability(status Availability) {
	s.Availability = toggle(s.Availability, status)
}

// AddCustomTag appends the trimmed input unless it is empty or already
// selected. Duplicates are compared case-sensitively. On success the custom
// input box is cleared.
func (s *FilterState) AddCustomTag(raw string) {
	tag := strings.TrimSpace(raw)
	if tag == "" || slices.Contains(s.Tags, tag) {
		return
	}
	s.Tags = append(s.Tags, tag)
	s.CustomTagInput = ""
}

// SetPriceMin clamps v to [0, Max-1].
func (s *FilterState) SetPriceMin(v int) {
	s.Price.Min = clamp(v, 0, s.Price.Max-1)
}

// SetPriceMax clamps v to [Min+1, PriceCeiling].
func (s *FilterState) SetPriceMax(v int) {
	s.Price.Max = clamp(v, s.Price.Min+1, PriceCeiling)
}

// ClearAll resets every field in one step.
func (s *FilterState) ClearAll() {
	*s = DefaultFilterState()
}

func toggle[T comparable](set []T, value T) []T {
	if index := slices.Index(set, value); index >= 0 {
		return slices.Delete(slices.Clone(set), index, index+1)
	}
	return append(slices.Clone(set), value)
}

func clamp(v, low, high int) int {
	if high < low {
		high = low
	}
	return max(low, min(v, high))
}
