// Copyright (c) 2026 CoPla. All rights reserved.

/*
Package directory filters the artist directory on the client.

The visible list is a pure function of the loaded records, a [FilterState] and
the viewer's [FollowingSet]; see [ComputeVisible]. A [View] owns one filter
state, loads its data slots concurrently and discards results that arrive
after it is closed.
*/
package directory

import (
	"strings"

	"github.com/copla/copla/pkg/slice"
)

// # Data Model

// ArtistRecord is an immutable snapshot of one directory entry.
type ArtistRecord struct {
	ID                   int64
	Name                 string
	Bio                  string
	LowestPrice          float64
	IsOpenForCommissions bool
	Verified             bool
	Tags                 []string
}

// Availability is a commission status the directory can filter on.
type Availability string

const (
	AvailabilityOpen   Availability = "open"
	AvailabilityBusy   Availability = "busy"
	AvailabilityClosed Availability = "closed"
)

// PriceCeiling is the upper bound of the price slider. A maximum equal to it
// means no upper bound.
const PriceCeiling = 1000

// PriceRange is an inclusive price window with 0 <= Min <= Max <= PriceCeiling.
type PriceRange struct {
	Min int
	Max int
}

// FollowingEdge is one account the viewer follows on the provider.
// LinkedArtistID is only meaningful when IsLinked is set.
type FollowingEdge struct {
	IsLinked       bool
	LinkedArtistID int64
}

// FollowingSet is the set of local artist ids the viewer follows.
type FollowingSet map[int64]struct{}

// NewFollowingSet collects the linked artist ids of edges.
func NewFollowingSet(edges []FollowingEdge) FollowingSet {
	set := make(FollowingSet, len(edges))
	for _, edge := range edges {
		if edge.IsLinked {
			set[edge.LinkedArtistID] = struct{}{}
		}
	}
	return set
}

// Contains reports whether id is followed. A nil set contains nothing.
func (s FollowingSet) Contains(id int64) bool {
	_, ok := s[id]
	return ok
}

// DefaultTags is the vocabulary offered when the tag list cannot be fetched.
var DefaultTags = []string{
	"Portrait", "Character Design", "Illustration", "Digital",
	"Traditional", "NSFW", "Fantasy", "Animation",
}

// # Filtering

// ComputeVisible returns the records matching every predicate of filters, in
// input order.
func ComputeVisible(records []ArtistRecord, filters FilterState, following FollowingSet) []ArtistRecord {
	search := strings.ToLower(filters.SearchTerm)
	tags := slice.Map(filters.Tags, strings.ToLower)

	visible := slice.Filter(records, func(record ArtistRecord) bool {
		return matchesSearch(record, search) &&
			matchesPrice(record, filters.Price) &&
			(!filters.VerifiedOnly || record.Verified) &&
			(!filters.FollowingOnly || following.Contains(record.ID)) &&
			matchesAvailability(record, filters.Availability) &&
			matchesTags(record, tags)
	})

	if visible == nil {
		return []ArtistRecord{}
	}
	return visible
}

func matchesSearch(record ArtistRecord, lowered string) bool {
	if lowered == "" {
		return true
	}
	return strings.Contains(strings.ToLower(record.Name), lowered) ||
		strings.Contains(strings.ToLower(record.Bio), lowered)
}

func matchesPrice(record ArtistRecord, price PriceRange) bool {
	if record.LowestPrice < float64(price.Min) {
		return false
	}
	return price.Max >= PriceCeiling || record.LowestPrice <= float64(price.Max)
}

// busy has no backing field on a record and never matches.
func matchesAvailability(record ArtistRecord, selected []Availability) bool {
	if len(selected) == 0 {
		return true
	}

	for _, status := range selected {
		switch status {
		case AvailabilityOpen:
			if record.IsOpenForCommissions {
				return true
			}
		case AvailabilityClosed:
			if !record.IsOpenForCommissions {
				return true
			}
		}
	}
	return false
}

// A selected tag matches when it is a substring of any record tag.
func matchesTags(record ArtistRecord, lowered []string) bool {
	if len(lowered) == 0 {
		return true
	}

	for _, selected := range lowered {
		for _, tag := range record.Tags {
			if strings.Contains(strings.ToLower(tag), selected) {
				return true
			}
		}
	}
	return false
}
