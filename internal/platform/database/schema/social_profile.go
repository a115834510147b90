// Copyright (c) 2026 CoPla. All rights reserved.

package schema

// SocialProfileTable represents the 'social.profile' table
type SocialProfileTable struct {
	Table       string
	ID          string
	UserID      string
	Platform    string
	Username    string
	ProfileURL  string
	IsVerified  string
	DID         string
	DisplayName string
	CanSync     string
	SessionData string
	CreatedAt   string
	UpdatedAt   string
}

// SocialProfile is the schema definition for social.profile
var SocialProfile = SocialProfileTable{
	Table:       "social.profile",
	ID:          "id",
	UserID:      "userid",
	Platform:    "platform",
	Username:    "username",
	ProfileURL:  "profileurl",
	IsVerified:  "isverified",
	DID:         "did",
	DisplayName: "displayname",
	CanSync:     "cansync",
	SessionData: "sessiondata",
	CreatedAt:   "createdat",
	UpdatedAt:   "updatedat",
}

// PublicColumns returns the columns safe to expose; the sealed session is excluded.
func (t SocialProfileTable) PublicColumns() []string {
	return []string{t.ID, t.UserID, t.Platform, t.Username, t.ProfileURL, t.IsVerified, t.DID, t.DisplayName, t.CanSync}
}
