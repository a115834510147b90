// Copyright (c) 2026 CoPla. All rights reserved.

package tag

import "time"

// Tag is an art-style label artists attach to their profile.
type Tag struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Slug        string    `json:"slug"`
	Description string    `json:"description"`
	Category    string    `json:"category"`
	IsActive    bool      `json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`
}

const DefaultCategory = "general"

const (
	FieldName        = "name"
	FieldDescription = "description"
	FieldCategory    = "category"
)
