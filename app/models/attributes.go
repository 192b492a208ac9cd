package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// Fixed attribute keys. Anything else belongs in AdditionalAttributes.
const (
	AttrColors   = "colors"
	AttrSizes    = "sizes"
	AttrBrand    = "brand"
	AttrMaterial = "material"
)

// FixedAttributeKeys lists the schema-defined attribute keys in display order.
var FixedAttributeKeys = []string{AttrColors, AttrSizes, AttrBrand, AttrMaterial}

// IsFixedAttribute reports whether key is one of the four schema keys.
func IsFixedAttribute(key string) bool {
	switch key {
	case AttrColors, AttrSizes, AttrBrand, AttrMaterial:
		return true
	}
	return false
}

// StringOrList accepts either a JSON scalar or a JSON array on input.
// It only exists at the request boundary; stored documents always hold lists.
type StringOrList []string

func (s *StringOrList) UnmarshalJSON(b []byte) error {
	trimmed := bytes.TrimSpace(b)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		*s = nil
		return nil
	}

	if trimmed[0] == '[' {
		var raw []any
		if err := json.Unmarshal(trimmed, &raw); err != nil {
			return err
		}
		out := make([]string, 0, len(raw))
		for _, v := range raw {
			str, err := scalarString(v)
			if err != nil {
				return err
			}
			out = append(out, str)
		}
		*s = out
		return nil
	}

	var raw any
	if err := json.Unmarshal(trimmed, &raw); err != nil {
		return err
	}
	str, err := scalarString(raw)
	if err != nil {
		return err
	}
	*s = StringOrList{str}
	return nil
}

// Values returns the normalized list form.
func (s StringOrList) Values() []string {
	if s == nil {
		return nil
	}
	out := make([]string, len(s))
	copy(out, s)
	return out
}

func scalarString(v any) (string, error) {
	switch t := v.(type) {
	case string:
		return t, nil
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64), nil
	case bool:
		return strconv.FormatBool(t), nil
	default:
		return "", fmt.Errorf("attribute value must be a string or list of strings, got %T", v)
	}
}

// FixedAttributes holds the four schema-defined attribute lists.
type FixedAttributes struct {
	Colors   []string `bson:"colors,omitempty"   json:"colors,omitempty"`
	Sizes    []string `bson:"sizes,omitempty"    json:"sizes,omitempty"`
	Brand    []string `bson:"brand,omitempty"    json:"brand,omitempty"`
	Material []string `bson:"material,omitempty" json:"material,omitempty"`
}

// Get returns the list stored under a fixed key.
func (f FixedAttributes) Get(key string) ([]string, bool) {
	switch key {
	case AttrColors:
		return f.Colors, f.Colors != nil
	case AttrSizes:
		return f.Sizes, f.Sizes != nil
	case AttrBrand:
		return f.Brand, f.Brand != nil
	case AttrMaterial:
		return f.Material, f.Material != nil
	}
	return nil, false
}

// Set stores a list under a fixed key. Unknown keys are ignored.
func (f *FixedAttributes) Set(key string, values []string) {
	switch key {
	case AttrColors:
		f.Colors = values
	case AttrSizes:
		f.Sizes = values
	case AttrBrand:
		f.Brand = values
	case AttrMaterial:
		f.Material = values
	}
}

// HasColor reports whether color is among the product colors.
func (f FixedAttributes) HasColor(color string) bool {
	for _, c := range f.Colors {
		if c == color {
			return true
		}
	}
	return false
}

// AttributeMap is the open name → values mapping for additional attributes.
type AttributeMap map[string][]string

// MergeAttributes builds the merged read view of a product's attributes.
// Additional keys are copied first; fixed keys are written last and win on
// collision.
func MergeAttributes(fixed FixedAttributes, additional AttributeMap) map[string][]string {
	out := make(map[string][]string, len(additional)+len(FixedAttributeKeys))
	for k, v := range additional {
		out[k] = v
	}
	for _, k := range FixedAttributeKeys {
		if v, ok := fixed.Get(k); ok {
			out[k] = v
		}
	}
	return out
}
