package services

import (
	"github.com/shashiranjanraj/shopfront/app/models"
)

// NormalizeAttributes turns request attribute maps into their stored form.
//
// Fixed keys (colors, sizes, brand, material) go to the fixed struct with
// scalars coerced to single-element lists. Any other key found under
// attributes is moved to the additional map, unless the caller already
// supplied that key there explicitly. Every additional value becomes a list.
func NormalizeAttributes(raw, rawAdditional map[string]models.StringOrList) (models.FixedAttributes, models.AttributeMap) {
	var fixed models.FixedAttributes
	var additional models.AttributeMap

	put := func(k string, v []string) {
		if additional == nil {
			additional = make(models.AttributeMap)
		}
		additional[k] = v
	}

	for k, v := range rawAdditional {
		put(k, listOf(v))
	}

	for k, v := range raw {
		if models.IsFixedAttribute(k) {
			fixed.Set(k, listOf(v))
			continue
		}
		if _, explicit := rawAdditional[k]; explicit {
			continue
		}
		put(k, listOf(v))
	}
	return fixed, additional
}

// listOf never returns nil so stored lists are always present.
func listOf(v models.StringOrList) []string {
	out := v.Values()
	if out == nil {
		out = []string{}
	}
	return out
}

// MergedView is the combined attribute map a client sees; fixed keys win.
func MergedView(p models.Product) map[string][]string {
	return models.MergeAttributes(p.Attributes, p.AdditionalAttributes)
}
