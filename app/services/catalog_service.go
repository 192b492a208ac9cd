package services

import (
	"context"
	"strings"

	"github.com/shashiranjanraj/shopfront/app/models"
	"github.com/shashiranjanraj/shopfront/app/repositories"
	"github.com/shashiranjanraj/shopfront/pkg/apperr"
)

// ---- categories ----

type CategoryInput struct {
	Name        *string `json:"name"        validate:"nullable,max=100"`
	Image       *string `json:"image"`
	Description *string `json:"description"`
	IsActive    *bool   `json:"isActive"`
	SortOrder   *int    `json:"sortOrder"   validate:"nullable,integer"`
}

type CategoryService struct {
	categories repositories.CategoryRepository
	now        Clock
}

func NewCategoryService(categories repositories.CategoryRepository) *CategoryService {
	return &CategoryService{categories: categories, now: nowUTC}
}

func (s *CategoryService) Create(ctx context.Context, in CategoryInput) (*models.Category, error) {
	if err := check(in); err != nil {
		return nil, err
	}
	fields := map[string]string{}
	if in.Name == nil || strings.TrimSpace(*in.Name) == "" {
		fields["name"] = "The name field is required."
	}
	if in.Image == nil || strings.TrimSpace(*in.Image) == "" {
		fields["image"] = "The image field is required."
	}
	if len(fields) > 0 {
		return nil, apperr.ValidationFields("Validation failed", fields)
	}

	now := s.now()
	c := &models.Category{IsActive: true, CreatedAt: now, UpdatedAt: now}
	applyCategory(c, in)
	if err := s.categories.Create(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

func applyCategory(c *models.Category, in CategoryInput) {
	if in.Name != nil {
		c.Name = strings.TrimSpace(*in.Name)
	}
	if in.Image != nil {
		c.Image = *in.Image
	}
	if in.Description != nil {
		c.Description = *in.Description
	}
	if in.IsActive != nil {
		c.IsActive = *in.IsActive
	}
	if in.SortOrder != nil {
		c.SortOrder = *in.SortOrder
	}
}

// ListActive returns active categories in display order.
func (s *CategoryService) ListActive(ctx context.Context) ([]models.Category, error) {
	return s.categories.List(ctx, true)
}

func (s *CategoryService) ListAll(ctx context.Context) ([]models.Category, error) {
	return s.categories.List(ctx, false)
}

func (s *CategoryService) Get(ctx context.Context, rawID string) (*models.Category, error) {
	id, err := parseID(rawID)
	if err != nil {
		return nil, err
	}
	return s.categories.FindByID(ctx, id)
}

// FindByName matches the whole name, ignoring case.
func (s *CategoryService) FindByName(ctx context.Context, name string) (*models.Category, error) {
	return s.categories.FindByName(ctx, name)
}

func (s *CategoryService) Update(ctx context.Context, rawID string, in CategoryInput) (*models.Category, error) {
	if err := check(in); err != nil {
		return nil, err
	}
	c, err := s.Get(ctx, rawID)
	if err != nil {
		return nil, err
	}
	applyCategory(c, in)
	if c.Name == "" || c.Image == "" {
		return nil, apperr.Validation("Name and image are required")
	}
	c.UpdatedAt = s.now()
	if err := s.categories.Save(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *CategoryService) Delete(ctx context.Context, rawID string) (*models.Category, error) {
	c, err := s.Get(ctx, rawID)
	if err != nil {
		return nil, err
	}
	if err := s.categories.Delete(ctx, c.ID); err != nil {
		return nil, err
	}
	return c, nil
}

// ---- attributes ----

type AttributeInput struct {
	Name     *string             `json:"name"`
	Type     *string             `json:"type"   validate:"nullable,in=color,size,brand,material"`
	Values   models.StringOrList `json:"values"`
	IsActive *bool               `json:"isActive"`
}

type AttributeService struct {
	attributes repositories.AttributeRepository
	now        Clock
}

func NewAttributeService(attributes repositories.AttributeRepository) *AttributeService {
	return &AttributeService{attributes: attributes, now: nowUTC}
}

func applyAttribute(a *models.Attribute, in AttributeInput) {
	if in.Name != nil {
		a.Name = strings.TrimSpace(*in.Name)
	}
	if in.Type != nil {
		a.Type = *in.Type
	}
	if in.Values != nil {
		a.Values = in.Values.Values()
	}
	if in.IsActive != nil {
		a.IsActive = *in.IsActive
	}
}

func (s *AttributeService) Create(ctx context.Context, in AttributeInput) (*models.Attribute, error) {
	if err := check(in); err != nil {
		return nil, err
	}
	now := s.now()
	a := &models.Attribute{Type: models.AttributeTypeColor, Values: []string{}, IsActive: true, CreatedAt: now, UpdatedAt: now}
	applyAttribute(a, in)
	if a.Name == "" {
		return nil, apperr.ValidationFields("Validation failed", map[string]string{"name": "The name field is required."})
	}
	if err := s.attributes.Create(ctx, a); err != nil {
		return nil, err
	}
	return a, nil
}

func (s *AttributeService) ListActive(ctx context.Context) ([]models.Attribute, error) {
	return s.attributes.List(ctx, true)
}

func (s *AttributeService) ListByType(ctx context.Context, typ string) ([]models.Attribute, error) {
	if !models.ValidAttributeType(typ) {
		return nil, apperr.Validation("Invalid attribute type")
	}
	return s.attributes.ListByType(ctx, typ)
}

func (s *AttributeService) Get(ctx context.Context, rawID string) (*models.Attribute, error) {
	id, err := parseID(rawID)
	if err != nil {
		return nil, err
	}
	return s.attributes.FindByID(ctx, id)
}

func (s *AttributeService) Update(ctx context.Context, rawID string, in AttributeInput) (*models.Attribute, error) {
	if err := check(in); err != nil {
		return nil, err
	}
	a, err := s.Get(ctx, rawID)
	if err != nil {
		return nil, err
	}
	applyAttribute(a, in)
	if a.Name == "" {
		return nil, apperr.ValidationFields("Validation failed", map[string]string{"name": "The name field is required."})
	}
	a.UpdatedAt = s.now()
	if err := s.attributes.Save(ctx, a); err != nil {
		return nil, err
	}
	return a, nil
}

func (s *AttributeService) Delete(ctx context.Context, rawID string) (*models.Attribute, error) {
	a, err := s.Get(ctx, rawID)
	if err != nil {
		return nil, err
	}
	if err := s.attributes.Delete(ctx, a.ID); err != nil {
		return nil, err
	}
	return a, nil
}
