// Copyright (c) 2026 CoPla. All rights reserved.

package tag

import (
	"context"
	"log/slog"
	"strings"

	"github.com/copla/copla/internal/platform/validate"
	"github.com/copla/copla/pkg/slug"
)

type Service struct {
	repo   Repository
	logger *slog.Logger
}

func NewService(repo Repository, logger *slog.Logger) *Service {
	return &Service{
		repo:   repo,
		logger: logger,
	}
}

func (service *Service) ListNames(context context.Context) ([]string, error) {
	names, err := service.repo.ListNames(context)
	if names == nil && err == nil {
		names = []string{}
	}
	return names, err
}

func (service *Service) ListTags(context context.Context, category string) ([]*Tag, error) {
	tags, err := service.repo.ListTags(context, strings.TrimSpace(category))
	if tags == nil && err == nil {
		tags = []*Tag{}
	}
	return tags, err
}

// CreateTag validates and stores a new tag, deriving its slug from the name.
func (service *Service) CreateTag(context context.Context, tag *Tag) error {
	tag.Name = strings.TrimSpace(tag.Name)
	tag.Slug = slug.From(tag.Name)
	if tag.Category = strings.TrimSpace(tag.Category); tag.Category == "" {
		tag.Category = DefaultCategory
	}

	validator := &validate.Validator{}
	validator.Required(FieldName, tag.Name).MaxLen(FieldName, tag.Name, 64).
		MaxLen(FieldDescription, tag.Description, 500).
		MaxLen(FieldCategory, tag.Category, 64).
		Custom(FieldName, tag.Name != "" && tag.Slug == "", "Name must contain letters or digits")
	if err := validator.Err(); err != nil {
		return err
	}

	tag.IsActive = true
	if err := service.repo.CreateTag(context, tag); err != nil {
		return err
	}

	service.logger.Info("tag_created", slog.String("slug", tag.Slug))
	return nil
}
