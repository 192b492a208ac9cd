package models

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func init() {
	// Money goes over the wire as a JSON number, not a quoted string.
	decimal.MarshalJSONWithoutQuotes = true
}

// PriceTiers holds per-size prices. Any tier may be absent.
type PriceTiers struct {
	Small  *decimal.Decimal `bson:"small,omitempty"  json:"small,omitempty"`
	Medium *decimal.Decimal `bson:"medium,omitempty" json:"medium,omitempty"`
	Large  *decimal.Decimal `bson:"large,omitempty"  json:"large,omitempty"`
	XLarge *decimal.Decimal `bson:"xlarge,omitempty" json:"xlarge,omitempty"`
}

// Product is a catalogue entry.
type Product struct {
	ID                       primitive.ObjectID `bson:"_id,omitempty"                      json:"_id"`
	Name                     string             `bson:"name"                               json:"name"`
	Description              string             `bson:"description,omitempty"              json:"description,omitempty"`
	Image                    string             `bson:"image"                              json:"image"`
	Prices                   PriceTiers         `bson:"prices"                             json:"prices"`
	StockQuantity            int                `bson:"stockQuantity"                      json:"stockQuantity"`
	Category                 []string           `bson:"category"                           json:"category"`
	Attributes               FixedAttributes    `bson:"attributes"                         json:"attributes"`
	AdditionalAttributes     AttributeMap       `bson:"additionalAttributes,omitempty"     json:"additionalAttributes,omitempty"`
	IsActive                 bool               `bson:"isActive"                           json:"isActive"`
	IsCustomizable           bool               `bson:"isCustomizable"                     json:"isCustomizable"`
	CustomizationDescription string             `bson:"customizationDescription,omitempty" json:"customizationDescription,omitempty"`
	CreatedAt                time.Time          `bson:"createdAt"                          json:"createdAt"`
	UpdatedAt                time.Time          `bson:"updatedAt"                          json:"updatedAt"`
}

// AllAttributes is the merged attribute view; fixed keys win on collision.
func (p Product) AllAttributes() map[string][]string {
	return MergeAttributes(p.Attributes, p.AdditionalAttributes)
}

// MarshalJSON adds the merged allAttributes view to the stored fields.
func (p Product) MarshalJSON() ([]byte, error) {
	type plain Product
	return json.Marshal(struct {
		plain
		AllAttributes map[string][]string `json:"allAttributes"`
	}{plain(p), p.AllAttributes()})
}

// VariantSummary is the compact product shape listed inside a color bucket.
type VariantSummary struct {
	ID            primitive.ObjectID `json:"_id"`
	Name          string             `json:"name"`
	Image         string             `json:"image"`
	Prices        PriceTiers         `json:"prices"`
	StockQuantity int                `json:"stockQuantity"`
	IsActive      bool               `json:"isActive"`
}

// Summary projects p to its variant summary.
func (p Product) Summary() VariantSummary {
	return VariantSummary{
		ID:            p.ID,
		Name:          p.Name,
		Image:         p.Image,
		Prices:        p.Prices,
		StockQuantity: p.StockQuantity,
		IsActive:      p.IsActive,
	}
}

// VariantBundle groups every product sharing a base name, indexed by color.
type VariantBundle struct {
	BaseName           string                      `json:"baseName"`
	ColorToProductMap  map[string][]VariantSummary `json:"colorToProductMap"`
	AllAvailableColors []string                    `json:"allAvailableColors"`
	AllVariants        []Product                   `json:"allVariants"`
}
