// Copyright (c) 2026 CoPla. All rights reserved.

package schema

// CoreArtistTagTable represents the 'core.artisttag' join table
type CoreArtistTagTable struct {
	Table    string
	ArtistID string
	TagID    string
	AddedAt  string
}

// CoreArtistTag is the schema definition for core.artisttag
var CoreArtistTag = CoreArtistTagTable{
	Table:    "core.artisttag",
	ArtistID: "artistid",
	TagID:    "tagid",
	AddedAt:  "addedat",
}
