// Copyright (c) 2026 CoPla. All rights reserved.

package tag

import "context"

type Repository interface {
	ListNames(context context.Context) ([]string, error)

	// ListTags returns active tags; an empty category means all categories.
	ListTags(context context.Context, category string) ([]*Tag, error)

	CreateTag(context context.Context, tag *Tag) error
}
