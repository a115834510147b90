// Copyright (c) 2026 CoPla. All rights reserved.

package schema

// CoreTagTable represents the 'core.tag' table
type CoreTagTable struct {
	Table       string
	ID          string
	Name        string
	Slug        string
	Description string
	Category    string
	IsActive    string
	CreatedAt   string
}

// CoreTag is the schema definition for core.tag
var CoreTag = CoreTagTable{
	Table:       "core.tag",
	ID:          "id",
	Name:        "name",
	Slug:        "slug",
	Description: "description",
	Category:    "category",
	IsActive:    "isactive",
	CreatedAt:   "createdat",
}

func (t CoreTagTable) Columns() []string {
	return []string{t.ID, t.Name, t.Slug, t.Description, t.Category, t.IsActive, t.CreatedAt}
}
