package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Category is a named product grouping with a display order.
type Category struct {
	ID          primitive.ObjectID `bson:"_id,omitempty"         json:"_id"`
	Name        string             `bson:"name"                  json:"name"`
	Image       string             `bson:"image"                 json:"image"`
	Description string             `bson:"description,omitempty" json:"description,omitempty"`
	IsActive    bool               `bson:"isActive"              json:"isActive"`
	SortOrder   int                `bson:"sortOrder"             json:"sortOrder"`
	CreatedAt   time.Time          `bson:"createdAt"             json:"createdAt"`
	UpdatedAt   time.Time          `bson:"updatedAt"             json:"updatedAt"`
}

// Attribute types accepted by the attribute catalogue.
const (
	AttributeTypeColor    = "color"
	AttributeTypeSize     = "size"
	AttributeTypeBrand    = "brand"
	AttributeTypeMaterial = "material"
)

// ValidAttributeType reports whether t is one of the catalogue types.
func ValidAttributeType(t string) bool {
	switch t {
	case AttributeTypeColor, AttributeTypeSize, AttributeTypeBrand, AttributeTypeMaterial:
		return true
	}
	return false
}

// Attribute is a taxonomy entry listing the allowed values of one type.
// It is reference data, separate from the values stored on each product.
type Attribute struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	Name      string             `bson:"name"          json:"name"`
	Type      string             `bson:"type"          json:"type"`
	Values    []string           `bson:"values"        json:"values"`
	IsActive  bool               `bson:"isActive"      json:"isActive"`
	CreatedAt time.Time          `bson:"createdAt"     json:"createdAt"`
	UpdatedAt time.Time          `bson:"updatedAt"     json:"updatedAt"`
}
