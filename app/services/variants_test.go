package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/shashiranjanraj/shopfront/app/models"
)

func TestBaseName(t *testing.T) {
	cases := map[string]string{
		"Chair12":  "Chair",
		"Chair":    "Chair",
		"Chair1A2": "Chair1A",
		"123":      "",
		"":         "",
		"Table ٣":  "Table ٣",
	}
	for in, want := range cases {
		assert.Equal(t, want, BaseName(in), in)
	}
}

func colored(name string, colors ...string) models.Product {
	return models.Product{
		ID:         primitive.NewObjectID(),
		Name:       name,
		IsActive:   true,
		Attributes: models.FixedAttributes{Colors: colors},
	}
}

func TestBuildVariantBundle(t *testing.T) {
	chair1 := colored("Chair1", "red", "blue", "red")
	chair2 := colored("Chair2", "red")
	plain := colored("Chair3")

	b := BuildVariantBundle("Chair", []models.Product{chair1, chair2, plain})

	assert.Equal(t, "Chair", b.BaseName)
	assert.Equal(t, []string{"blue", "red"}, b.AllAvailableColors)
	require.Len(t, b.ColorToProductMap["red"], 2)
	assert.Equal(t, chair1.ID, b.ColorToProductMap["red"][0].ID)
	assert.Equal(t, chair2.ID, b.ColorToProductMap["red"][1].ID)
	require.Len(t, b.ColorToProductMap["blue"], 1)
	assert.Len(t, b.AllVariants, 3)
}

func TestBuildVariantBundle_Empty(t *testing.T) {
	b := BuildVariantBundle("Desk", nil)
	assert.NotNil(t, b.AllVariants)
	assert.Empty(t, b.AllAvailableColors)
	assert.Empty(t, b.ColorToProductMap)
}

func TestPickExactVariant_FirstMatchWins(t *testing.T) {
	a := colored("Chair1", "red")
	b := colored("Chair1", "red", "green")

	got, ok := pickExactVariant([]models.Product{a, b}, "red")
	require.True(t, ok)
	assert.Equal(t, a.ID, got.ID)

	got, ok = pickExactVariant([]models.Product{a, b}, "green")
	require.True(t, ok)
	assert.Equal(t, b.ID, got.ID)

	_, ok = pickExactVariant([]models.Product{a, b}, "Red")
	assert.False(t, ok)
}
