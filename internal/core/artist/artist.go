// Copyright (c) 2026 CoPla. All rights reserved.

package artist

// Artist is a directory entry: an account with the artist role plus its
// commission state and tags.
type Artist struct {
	ID                   int64    `json:"id"`
	Name                 string   `json:"name"`
	Bio                  string   `json:"bio"`
	ProfilePicPath       string   `json:"profile_pic_path"`
	Verified             bool     `json:"verified"`
	IsOpenForCommissions bool     `json:"is_open_for_commissions"`
	LowestPrice          float64  `json:"lowest_price"`
	RelatedTags          []string `json:"related_tags"`
}

// Filter narrows the directory listing. Nil fields match everything.
type Filter struct {
	Verified           *bool
	OpenForCommissions *bool
}

// CommissionStatus is returned after toggling availability.
type CommissionStatus struct {
	Message              string `json:"message"`
	IsOpenForCommissions bool   `json:"is_open_for_commissions"`
}

const (
	FieldTagName = "tag_name"
	FieldIsOpen  = "is_open"
)
