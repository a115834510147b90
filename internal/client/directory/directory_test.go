// Copyright (c) 2026 CoPla. All rights reserved.

package directory_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"

	"github.com/copla/copla/internal/client/directory"
)

var (
	ana = directory.ArtistRecord{ID: 1, Name: "Ana", Bio: "Soft watercolor portraits", LowestPrice: 50, Verified: true, IsOpenForCommissions: true, Tags: []string{"Portrait"}}
	bo  = directory.ArtistRecord{ID: 2, Name: "Bo", LowestPrice: 900, Tags: []string{"Logo"}}
	cy  = directory.ArtistRecord{ID: 3, Name: "Cy", Bio: "mecha", LowestPrice: 1500, IsOpenForCommissions: true, Tags: []string{"Character Design", "Digital"}}
)

func names(records []directory.ArtistRecord) []string {
	out := make([]string, 0, len(records))
	for _, record := range records {
		out = append(out, record.Name)
	}
	return out
}

/*
TestComputeVisible checks every predicate and their conjunction.
*/
func TestComputeVisible(t *testing.T) {
	records := []directory.ArtistRecord{ana, bo, cy}
	following := directory.NewFollowingSet([]directory.FollowingEdge{
		{IsLinked: true, LinkedArtistID: 2},
		{IsLinked: false, LinkedArtistID: 1},
	})

	tests := []struct {
		name   string
		mutate func(*directory.FilterState)
		want   []string
	}{
		{"defaults_match_all_in_order", func(*directory.FilterState) {}, []string{"Ana", "Bo", "Cy"}},
		{"verified_only", func(s *directory.FilterState) { s.VerifiedOnly = true }, []string{"Ana"}},
		{"search_name_case_insensitive", func(s *directory.FilterState) { s.SearchTerm = "bO" }, []string{"Bo"}},
		{"search_bio", func(s *directory.FilterState) { s.SearchTerm = "WATERCOLOR" }, []string{"Ana"}},
		{"price_ceiling_is_unbounded", func(s *directory.FilterState) { s.Price.Min = 100 }, []string{"Bo", "Cy"}},
		{"price_max_bounds", func(s *directory.FilterState) { s.Price.Max = 900 }, []string{"Ana", "Bo"}},
		{"following_uses_linked_edges", func(s *directory.FilterState) { s.FollowingOnly = true }, []string{"Bo"}},
		{"open", func(s *directory.FilterState) { s.ToggleAvailability(directory.AvailabilityOpen) }, []string{"Ana", "Cy"}},
		{"closed", func(s *directory.FilterState) { s.ToggleAvailability(directory.AvailabilityClosed) }, []string{"Bo"}},
		{"busy_never_matches", func(s *directory.FilterState) { s.ToggleAvailability(directory.AvailabilityBusy) }, []string{}},
		{"tag_substring", func(s *directory.FilterState) { s.ToggleTag("character") }, []string{"Cy"}},
		{"tags_any", func(s *directory.FilterState) { s.Tags = []string{"logo", "portrait"} }, []string{"Ana", "Bo"}},
		{"conjunction", func(s *directory.FilterState) {
			s.ToggleAvailability(directory.AvailabilityOpen)
			s.SearchTerm = "a"
			s.Tags = []string{"digital"}
		}, []string{"Cy"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			filters := directory.DefaultFilterState()
			tt.mutate(&filters)

			got := names(directory.ComputeVisible(records, filters, following))
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("visible mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

/*
TestComputeVisible_SentinelPrice keeps a 1500 record inside [0, 1000].
*/
func TestComputeVisible_SentinelPrice(t *testing.T) {
	records := []directory.ArtistRecord{{ID: 1, LowestPrice: 10}, {ID: 2, LowestPrice: 1500}}

	got := directory.ComputeVisible(records, directory.DefaultFilterState(), nil)
	assert.Equal(t, records, got)
}

/*
TestFilterState_Mutators covers clamping, toggling and custom tags.
*/
func TestFilterState_Mutators(t *testing.T) {
	t.Run("price_clamps", func(t *testing.T) {
		s := directory.DefaultFilterState()
		s.SetPriceMin(2000)
		assert.Equal(t, 999, s.Price.Min)

		s = directory.DefaultFilterState()
		s.SetPriceMax(-5)
		assert.Equal(t, 1, s.Price.Max)

		s.SetPriceMin(-3)
		assert.Equal(t, 0, s.Price.Min)
		s.SetPriceMax(5000)
		assert.Equal(t, directory.PriceCeiling, s.Price.Max)
	})

	t.Run("toggle_round_trip", func(t *testing.T) {
		s := directory.DefaultFilterState()
		s.ToggleTag("Anime")
		before := s.Clone()

		s.ToggleTag("Portrait")
		assert.Equal(t, []string{"Anime", "Portrait"}, s.Tags)
		s.ToggleTag("Portrait")
		assert.Equal(t, before.Tags, s.Tags)

		s.ToggleAvailability(directory.AvailabilityOpen)
		s.ToggleAvailability(directory.AvailabilityOpen)
		assert.Empty(t, s.Availability)
	})

	t.Run("custom_tags", func(t *testing.T) {
		s := directory.DefaultFilterState()
		s.SetCustomTagInput("  ")
		s.AddCustomTag("  ")
		assert.Empty(t, s.Tags)
		assert.Equal(t, "  ", s.CustomTagInput)

		s.SetCustomTagInput(" Anime ")
		s.AddCustomTag(" Anime ")
		s.AddCustomTag("Anime")
		s.AddCustomTag("anime")
		assert.Equal(t, []string{"Anime", "anime"}, s.Tags)
		assert.Empty(t, s.CustomTagInput)
	})

	t.Run("clear_all_idempotent", func(t *testing.T) {
		s := directory.DefaultFilterState()
		s.SetSearchTerm("x")
		s.SetVerifiedOnly(true)
		s.SetFollowingOnly(true)
		s.ToggleTag("Logo")
		s.SetPriceMin(10)

		s.ClearAll()
		once := s.Clone()
		s.ClearAll()

		assert.Equal(t, once, s)
		assert.Equal(t, directory.DefaultFilterState(), s)
	})
}
