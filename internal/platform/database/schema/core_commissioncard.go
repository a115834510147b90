// Copyright (c) 2026 CoPla. All rights reserved.

package schema

// CoreCommissionCardTable represents the 'core.commissioncard' table
type CoreCommissionCardTable struct {
	Table       string
	ID          string
	ArtistID    string
	Title       string
	Description string
	CreatedAt   string
	UpdatedAt   string
}

// CoreCommissionCard is the schema definition for core.commissioncard
var CoreCommissionCard = CoreCommissionCardTable{
	Table:       "core.commissioncard",
	ID:          "id",
	ArtistID:    "artistid",
	Title:       "title",
	Description: "description",
	CreatedAt:   "createdat",
	UpdatedAt:   "updatedat",
}

// CoreCommissionElementTable represents the 'core.commissionelement' table
type CoreCommissionElementTable struct {
	Table            string
	ID               string
	CardID           string
	Title            string
	Description      string
	Price            string
	ExampleImageURLs string
	Position         string
	CreatedAt        string
}

// CoreCommissionElement is the schema definition for core.commissionelement
var CoreCommissionElement = CoreCommissionElementTable{
	Table:            "core.commissionelement",
	ID:               "id",
	CardID:           "cardid",
	Title:            "title",
	Description:      "description",
	Price:            "price",
	ExampleImageURLs: "exampleimageurls",
	Position:         "position",
	CreatedAt:        "createdat",
}

func (t CoreCommissionElementTable) Columns() []string {
	return []string{t.ID, t.Title, t.Description, t.Price, t.ExampleImageURLs}
}
