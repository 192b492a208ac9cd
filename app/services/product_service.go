package services

import (
	"context"
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	"github.com/shashiranjanraj/shopfront/app/models"
	"github.com/shashiranjanraj/shopfront/app/repositories"
	"github.com/shashiranjanraj/shopfront/pkg/apperr"
	"github.com/shashiranjanraj/shopfront/pkg/cache"
	"github.com/shashiranjanraj/shopfront/pkg/logger"
)

// VariantCacheTTL bounds how long a variant bundle is served from cache.
const VariantCacheTTL = 5 * time.Minute

// ProductInput is the create and update payload. Nil fields are left
// unchanged on update. Categories may arrive as "category" or "categories",
// as a single label or a list.
type ProductInput struct {
	Name                     *string                        `json:"name"                     validate:"nullable,max=200"`
	Description              *string                        `json:"description"`
	Image                    *string                        `json:"image"`
	Prices                   *models.PriceTiers             `json:"prices"`
	StockQuantity            *int                           `json:"stockQuantity"            validate:"nullable,gte=0"`
	Category                 models.StringOrList            `json:"category"`
	Categories               models.StringOrList            `json:"categories"`
	Attributes               map[string]models.StringOrList `json:"attributes"`
	AdditionalAttributes     map[string]models.StringOrList `json:"additionalAttributes"`
	IsActive                 *bool                          `json:"isActive"`
	IsCustomizable           *bool                          `json:"isCustomizable"`
	CustomizationDescription *string                        `json:"customizationDescription"`
}

func (in ProductInput) categories() []string {
	if in.Category != nil {
		return in.Category.Values()
	}
	return in.Categories.Values()
}

func (in ProductInput) validateCreate() error {
	if err := check(in); err != nil {
		return err
	}
	fields := map[string]string{}
	if in.Name == nil || *in.Name == "" {
		fields["name"] = "The name field is required."
	}
	if in.StockQuantity == nil {
		fields["stockQuantity"] = "The stockQuantity field is required."
	}
	if len(fields) > 0 {
		return apperr.ValidationFields("Validation failed", fields)
	}
	return validatePrices(in.Prices)
}

func validatePrices(p *models.PriceTiers) error {
	if p == nil {
		return nil
	}
	tiers := map[string]*decimal.Decimal{
		"prices.small": p.Small, "prices.medium": p.Medium, "prices.large": p.Large, "prices.xlarge": p.XLarge,
	}
	for name, v := range tiers {
		if v != nil && v.IsNegative() {
			return apperr.ValidationFields("Validation failed", map[string]string{name: "Prices must not be negative."})
		}
	}
	return nil
}

// ProductService manages the catalogue and resolves color variants.
type ProductService struct {
	products repositories.ProductRepository
	cache    cache.Cache
	now      Clock
}

// NewProductService wires the service. c may be nil to disable caching.
func NewProductService(products repositories.ProductRepository, c cache.Cache) *ProductService {
	return &ProductService{products: products, cache: c, now: nowUTC}
}

func (s *ProductService) build(in ProductInput) *models.Product {
	now := s.now()
	p := &models.Product{IsActive: true, CreatedAt: now, UpdatedAt: now, Category: []string{}}
	s.apply(p, in)
	return p
}

func (s *ProductService) apply(p *models.Product, in ProductInput) {
	if in.Name != nil {
		p.Name = *in.Name
	}
	if in.Description != nil {
		p.Description = *in.Description
	}
	if in.Image != nil {
		p.Image = *in.Image
	}
	if in.Prices != nil {
		p.Prices = *in.Prices
	}
	if in.StockQuantity != nil {
		p.StockQuantity = *in.StockQuantity
	}
	if cats := in.categories(); cats != nil {
		p.Category = cats
	}
	if in.Attributes != nil || in.AdditionalAttributes != nil {
		fixed, additional := NormalizeAttributes(in.Attributes, in.AdditionalAttributes)
		if in.Attributes != nil {
			p.Attributes = fixed
		}
		switch {
		case in.AdditionalAttributes != nil:
			p.AdditionalAttributes = additional
		case len(additional) > 0:
			// Reclassified keys join what the product already has.
			merged := make(models.AttributeMap, len(p.AdditionalAttributes)+len(additional))
			for k, v := range p.AdditionalAttributes {
				merged[k] = v
			}
			for k, v := range additional {
				merged[k] = v
			}
			p.AdditionalAttributes = merged
		}
	}
	if in.IsActive != nil {
		p.IsActive = *in.IsActive
	}
	if in.IsCustomizable != nil {
		p.IsCustomizable = *in.IsCustomizable
	}
	if in.CustomizationDescription != nil {
		p.CustomizationDescription = *in.CustomizationDescription
	}
}

func (s *ProductService) Create(ctx context.Context, in ProductInput) (*models.Product, error) {
	if err := in.validateCreate(); err != nil {
		return nil, err
	}
	p := s.build(in)
	if err := s.products.Create(ctx, p); err != nil {
		return nil, err
	}
	s.flushVariants(ctx)
	return p, nil
}

// BulkCreate inserts every product or none.
func (s *ProductService) BulkCreate(ctx context.Context, ins []ProductInput) ([]*models.Product, error) {
	if len(ins) == 0 {
		return nil, apperr.Validation("Invalid or empty product list")
	}
	ps := make([]*models.Product, 0, len(ins))
	for i, in := range ins {
		if err := in.validateCreate(); err != nil {
			if e, ok := apperr.As(err); ok {
				e.Message = "Invalid product at index " + strconv.Itoa(i)
			}
			return nil, err
		}
		ps = append(ps, s.build(in))
	}
	if err := s.products.InsertMany(ctx, ps); err != nil {
		return nil, err
	}
	s.flushVariants(ctx)
	return ps, nil
}

func (s *ProductService) List(ctx context.Context) ([]models.Product, error) {
	return s.products.List(ctx)
}

func (s *ProductService) Get(ctx context.Context, rawID string) (*models.Product, error) {
	id, err := parseID(rawID)
	if err != nil {
		return nil, err
	}
	return s.products.FindByID(ctx, id)
}

func (s *ProductService) Update(ctx context.Context, rawID string, in ProductInput) (*models.Product, error) {
	if err := check(in); err != nil {
		return nil, err
	}
	if err := validatePrices(in.Prices); err != nil {
		return nil, err
	}
	p, err := s.Get(ctx, rawID)
	if err != nil {
		return nil, err
	}
	s.apply(p, in)
	if p.Name == "" {
		return nil, apperr.ValidationFields("Validation failed", map[string]string{"name": "The name field is required."})
	}
	p.UpdatedAt = s.now()
	if err := s.products.Save(ctx, p); err != nil {
		return nil, err
	}
	s.flushVariants(ctx)
	return p, nil
}

// Delete removes the product and returns what was deleted.
func (s *ProductService) Delete(ctx context.Context, rawID string) (*models.Product, error) {
	p, err := s.Get(ctx, rawID)
	if err != nil {
		return nil, err
	}
	if err := s.products.Delete(ctx, p.ID); err != nil {
		return nil, err
	}
	s.flushVariants(ctx)
	return p, nil
}

func (s *ProductService) SearchByName(ctx context.Context, term string) ([]models.Product, error) {
	ps, err := s.products.SearchByName(ctx, term)
	if err != nil {
		return nil, err
	}
	if len(ps) == 0 {
		return nil, apperr.NotFound("No products found")
	}
	return ps, nil
}

func (s *ProductService) ByCategory(ctx context.Context, category string) ([]models.Product, error) {
	return s.products.FindByCategory(ctx, category)
}

// ResolveVariants groups every product sharing name's base name by color.
func (s *ProductService) ResolveVariants(ctx context.Context, name string) (*models.VariantBundle, error) {
	base := BaseName(name)
	key := variantCacheKey(base)

	if s.cache != nil {
		var cached models.VariantBundle
		if s.cache.Get(ctx, key, &cached) {
			return &cached, nil
		}
	}

	ps, err := s.products.FindByNamePrefix(ctx, base)
	if err != nil {
		return nil, err
	}
	if len(ps) == 0 {
		return nil, apperr.NotFound("No variants found")
	}
	bundle := BuildVariantBundle(base, ps)

	if s.cache != nil {
		if err := s.cache.Set(ctx, key, bundle, VariantCacheTTL); err != nil {
			logger.WithCtx(ctx).Warn("variant cache write failed", "key", key, "error", err)
		}
	}
	return bundle, nil
}

// ResolveExactVariant finds the product named exactly name that carries
// color. With several matches the lowest id wins.
func (s *ProductService) ResolveExactVariant(ctx context.Context, name, color string) (*models.Product, error) {
	ps, err := s.products.FindByExactName(ctx, name)
	if err != nil {
		return nil, err
	}
	p, ok := pickExactVariant(ps, color)
	if !ok {
		return nil, apperr.NotFound("Variant not found")
	}
	return &p, nil
}

func (s *ProductService) flushVariants(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.DeletePrefix(ctx, variantCachePrefix); err != nil {
		logger.WithCtx(ctx).Warn("variant cache flush failed", "error", err)
	}
}
