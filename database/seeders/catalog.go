package seeders

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/shashiranjanraj/shopfront/app/models"
	"github.com/shashiranjanraj/shopfront/app/services"
	"github.com/shashiranjanraj/shopfront/config"
	"github.com/shashiranjanraj/shopfront/pkg/apperr"
)

func init() {
	Register("admin", SeedAdmin)
	Register("categories", SeedCategories)
	Register("attributes", SeedAttributes)
	Register("products", SeedProducts)
}

// SeedAdmin creates the first administrator from ADMIN_EMAIL and
// ADMIN_PASSWORD.
func SeedAdmin(ctx context.Context, svc services.Set) error {
	in := services.AdminCreateInput{
		RegisterInput: services.RegisterInput{
			Name:     "Administrator",
			Email:    config.Get("ADMIN_EMAIL", "admin@shopfront.local"),
			Password: config.Get("ADMIN_PASSWORD", "changeme123"),
		},
		Role: models.RoleAdmin,
	}
	_, err := svc.Users.Create(ctx, in)
	if apperr.KindOf(err) == apperr.KindConflict {
		return nil
	}
	return err
}

var categories = []struct {
	name, image string
	order       int
}{
	{"Chairs", "/images/categories/chairs.jpg", 1},
	{"Tables", "/images/categories/tables.jpg", 2},
	{"Sofas", "/images/categories/sofas.jpg", 3},
	{"Lighting", "/images/categories/lighting.jpg", 4},
}

func SeedCategories(ctx context.Context, svc services.Set) error {
	for _, c := range categories {
		_, err := svc.Categories.FindByName(ctx, c.name)
		if err == nil {
			continue
		}
		if apperr.KindOf(err) != apperr.KindNotFound {
			return err
		}
		if _, err := svc.Categories.Create(ctx, services.CategoryInput{
			Name:      ptr(c.name),
			Image:     ptr(c.image),
			IsActive:  ptr(true),
			SortOrder: ptr(c.order),
		}); err != nil {
			return err
		}
	}
	return nil
}

var attributes = map[string]struct {
	name   string
	values []string
}{
	models.AttributeTypeColor:    {"Color", []string{"black", "blue", "green", "red", "white"}},
	models.AttributeTypeSize:     {"Size", []string{"S", "M", "L", "XL"}},
	models.AttributeTypeMaterial: {"Material", []string{"oak", "steel", "velvet"}},
}

func SeedAttributes(ctx context.Context, svc services.Set) error {
	for typ, a := range attributes {
		existing, err := svc.Attributes.ListByType(ctx, typ)
		if err != nil {
			return err
		}
		if len(existing) > 0 {
			continue
		}
		if _, err := svc.Attributes.Create(ctx, services.AttributeInput{
			Name:   ptr(a.name),
			Type:   ptr(typ),
			Values: models.StringOrList(a.values),
		}); err != nil {
			return err
		}
	}
	return nil
}

// SeedProducts adds a small family of chair variants so the variant
// endpoints have something to group.
func SeedProducts(ctx context.Context, svc services.Set) error {
	existing, err := svc.Products.SearchByName(ctx, "Chair")
	if err != nil && apperr.KindOf(err) != apperr.KindNotFound {
		return err
	}
	if len(existing) > 0 {
		return nil
	}

	chair := func(name, color string, price int64) services.ProductInput {
		small := decimal.NewFromInt(price)
		large := small.Add(decimal.NewFromInt(20))
		return services.ProductInput{
			Name:          ptr(name),
			Image:         ptr("/images/products/" + name + ".jpg"),
			Prices:        &models.PriceTiers{Small: &small, Large: &large},
			StockQuantity: ptr(10),
			Category:      models.StringOrList{"Chairs"},
			Attributes: map[string]models.StringOrList{
				"colors":   {color},
				"sizes":    {"S", "L"},
				"material": {"oak"},
			},
		}
	}
	_, err = svc.Products.BulkCreate(ctx, []services.ProductInput{
		chair("Chair1", "red", 120),
		chair("Chair2", "blue", 125),
		chair("Chair3", "green", 130),
	})
	return err
}

func ptr[T any](v T) *T { return &v }
