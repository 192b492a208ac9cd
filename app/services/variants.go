package services

import (
	"sort"
	"strings"

	"github.com/shashiranjanraj/shopfront/app/models"
	"github.com/shashiranjanraj/shopfront/pkg/collection"
)

// BaseName strips the trailing run of ASCII digits from a product name.
// "Chair12" → "Chair", "Chair1A2" → "Chair1A".
func BaseName(name string) string {
	return strings.TrimRightFunc(name, func(r rune) bool { return r >= '0' && r <= '9' })
}

func variantCacheKey(base string) string {
	return variantCachePrefix + strings.ToLower(base)
}

const variantCachePrefix = "variants:"

// BuildVariantBundle indexes products by color. products keep their input
// order inside each bucket; a product without colors appears only in
// AllVariants. Colors are listed in sorted order.
func BuildVariantBundle(base string, products []models.Product) *models.VariantBundle {
	bundle := &models.VariantBundle{
		BaseName:          base,
		ColorToProductMap: make(map[string][]models.VariantSummary),
		AllVariants:       products,
	}
	if bundle.AllVariants == nil {
		bundle.AllVariants = []models.Product{}
	}

	for _, p := range products {
		for _, color := range collection.Unique(p.Attributes.Colors) {
			bundle.ColorToProductMap[color] = append(bundle.ColorToProductMap[color], p.Summary())
		}
	}

	colors := make([]string, 0, len(bundle.ColorToProductMap))
	for c := range bundle.ColorToProductMap {
		colors = append(colors, c)
	}
	sort.Strings(colors)
	bundle.AllAvailableColors = colors
	return bundle
}

// pickExactVariant returns the first product, in the given order, that
// carries color.
func pickExactVariant(products []models.Product, color string) (models.Product, bool) {
	return collection.First(products, func(p models.Product) bool {
		return p.Attributes.HasColor(color)
	})
}
