// Copyright (c) 2026 CoPla. All rights reserved.

package schema

// SocialFollowingTable represents the 'social.following' table: one row per
// provider account a local user follows, linked to a local account when known.
type SocialFollowingTable struct {
	Table       string
	ID          string
	FollowerID  string
	FollowedID  string
	Handle      string
	DID         string
	DisplayName string
	FollowedAt  string
	SyncedAt    string
}

// SocialFollowing is the schema definition for social.following
var SocialFollowing = SocialFollowingTable{
	Table:       "social.following",
	ID:          "id",
	FollowerID:  "followerid",
	FollowedID:  "followedid",
	Handle:      "handle",
	DID:         "did",
	DisplayName: "displayname",
	FollowedAt:  "followedat",
	SyncedAt:    "syncedat",
}
