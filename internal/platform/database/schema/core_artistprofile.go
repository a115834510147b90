// Copyright (c) 2026 CoPla. All rights reserved.

package schema

// CoreArtistProfileTable represents the 'core.artistprofile' table.
// One row per account with the artist role.
type CoreArtistProfileTable struct {
	Table                string
	UserID               string
	IsVerified           string
	IsOpenForCommissions string
	UpdatedAt            string
}

// CoreArtistProfile is the schema definition for core.artistprofile
var CoreArtistProfile = CoreArtistProfileTable{
	Table:                "core.artistprofile",
	UserID:               "userid",
	IsVerified:           "isverified",
	IsOpenForCommissions: "isopenforcommissions",
	UpdatedAt:            "updatedat",
}

func (t CoreArtistProfileTable) Columns() []string {
	return []string{t.UserID, t.IsVerified, t.IsOpenForCommissions, t.UpdatedAt}
}
