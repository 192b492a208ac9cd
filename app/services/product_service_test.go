package services

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shashiranjanraj/shopfront/app/models"
	"github.com/shashiranjanraj/shopfront/app/repositories"
	"github.com/shashiranjanraj/shopfront/pkg/apperr"
	"github.com/shashiranjanraj/shopfront/pkg/cache"
)

func newProductService() (*ProductService, *cache.Memory) {
	c := cache.NewMemory()
	return NewProductService(repositories.NewMemory().Products, c), c
}

func productInput(t *testing.T, body string) ProductInput {
	t.Helper()
	var in ProductInput
	require.NoError(t, json.Unmarshal([]byte(body), &in))
	return in
}

func TestProductCreate_NormalizesInput(t *testing.T) {
	svc, _ := newProductService()
	in := productInput(t, `{
		"name": "Chair1",
		"stockQuantity": 4,
		"category": "Furniture",
		"prices": {"small": 10.5},
		"attributes": {"colors": "red", "legs": 4}
	}`)

	p, err := svc.Create(context.Background(), in)
	require.NoError(t, err)

	assert.False(t, p.ID.IsZero())
	assert.True(t, p.IsActive)
	assert.Equal(t, []string{"Furniture"}, p.Category)
	assert.Equal(t, []string{"red"}, p.Attributes.Colors)
	assert.Equal(t, []string{"4"}, p.AdditionalAttributes["legs"])
	require.NotNil(t, p.Prices.Small)
	assert.True(t, decimal.RequireFromString("10.5").Equal(*p.Prices.Small))
}

func TestProductCreate_Validation(t *testing.T) {
	svc, _ := newProductService()

	_, err := svc.Create(context.Background(), productInput(t, `{"stockQuantity": 1}`))
	e, ok := apperr.As(err)
	require.True(t, ok)
	assert.Equal(t, apperr.KindValidation, e.Kind)
	assert.Contains(t, e.Fields, "name")

	_, err = svc.Create(context.Background(), productInput(t, `{"name":"X","stockQuantity":1,"prices":{"large":-1}}`))
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
}

func TestProductBulkCreate(t *testing.T) {
	svc, _ := newProductService()
	ctx := context.Background()

	_, err := svc.BulkCreate(ctx, nil)
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))

	_, err = svc.BulkCreate(ctx, []ProductInput{
		productInput(t, `{"name":"A","stockQuantity":1}`),
		productInput(t, `{"stockQuantity":1}`),
	})
	e, ok := apperr.As(err)
	require.True(t, ok)
	assert.Equal(t, "Invalid product at index 1", e.Message)

	all, err := svc.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, all, "nothing is written when one entry is invalid")

	created, err := svc.BulkCreate(ctx, []ProductInput{
		productInput(t, `{"name":"A","stockQuantity":1}`),
		productInput(t, `{"name":"B","stockQuantity":2}`),
	})
	require.NoError(t, err)
	assert.Len(t, created, 2)
}

func TestProductUpdate_PartialAndInvalidID(t *testing.T) {
	svc, _ := newProductService()
	ctx := context.Background()
	p, err := svc.Create(ctx, productInput(t, `{"name":"Lamp","stockQuantity":3,"description":"old"}`))
	require.NoError(t, err)

	updated, err := svc.Update(ctx, p.ID.Hex(), ProductInput{StockQuantity: intPtr(9)})
	require.NoError(t, err)
	assert.Equal(t, 9, updated.StockQuantity)
	assert.Equal(t, "old", updated.Description)

	_, err = svc.Update(ctx, "nope", ProductInput{})
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))

	_, err = svc.Update(ctx, p.ID.Hex(), ProductInput{Name: strPtr("")})
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
}

func TestProductUpdate_ReclassifiedKeysKeepExistingAdditional(t *testing.T) {
	svc, _ := newProductService()
	ctx := context.Background()
	p, err := svc.Create(ctx, productInput(t, `{
		"name": "Rug1",
		"stockQuantity": 2,
		"additionalAttributes": {"pattern": "striped"}
	}`))
	require.NoError(t, err)

	updated, err := svc.Update(ctx, p.ID.Hex(), productInput(t, `{
		"attributes": {"colors": ["blue"], "finish": "matte"}
	}`))
	require.NoError(t, err)
	assert.Equal(t, []string{"blue"}, updated.Attributes.Colors)
	assert.Equal(t, []string{"striped"}, updated.AdditionalAttributes["pattern"])
	assert.Equal(t, []string{"matte"}, updated.AdditionalAttributes["finish"])

	replaced, err := svc.Update(ctx, p.ID.Hex(), productInput(t, `{
		"additionalAttributes": {"weave": "flat"}
	}`))
	require.NoError(t, err)
	assert.Equal(t, models.AttributeMap{"weave": {"flat"}}, replaced.AdditionalAttributes)
}

func TestProductSearchByName_EmptyIsNotFound(t *testing.T) {
	svc, _ := newProductService()
	_, err := svc.SearchByName(context.Background(), "sofa")
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
}

func TestResolveVariants_GroupsAndCaches(t *testing.T) {
	svc, c := newProductService()
	ctx := context.Background()
	_, err := svc.Create(ctx, productInput(t, `{"name":"Chair1","stockQuantity":1,"attributes":{"colors":["red","blue"]}}`))
	require.NoError(t, err)
	_, err = svc.Create(ctx, productInput(t, `{"name":"Chair2","stockQuantity":1,"attributes":{"colors":"red"}}`))
	require.NoError(t, err)

	b, err := svc.ResolveVariants(ctx, "Chair2")
	require.NoError(t, err)
	assert.Equal(t, "Chair", b.BaseName)
	assert.Equal(t, []string{"blue", "red"}, b.AllAvailableColors)
	assert.Len(t, b.ColorToProductMap["red"], 2)

	var cached models.VariantBundle
	assert.True(t, c.Get(ctx, variantCacheKey("Chair"), &cached))

	// Any write invalidates cached bundles.
	_, err = svc.Create(ctx, productInput(t, `{"name":"Chair3","stockQuantity":1,"attributes":{"colors":"green"}}`))
	require.NoError(t, err)
	assert.False(t, c.Get(ctx, variantCacheKey("Chair"), &cached))

	b, err = svc.ResolveVariants(ctx, "Chair")
	require.NoError(t, err)
	assert.Contains(t, b.AllAvailableColors, "green")
}

func TestResolveVariants_NoneFound(t *testing.T) {
	svc, _ := newProductService()
	_, err := svc.ResolveVariants(context.Background(), "Ghost1")
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
}

func TestResolveExactVariant_LowestIDWins(t *testing.T) {
	svc, _ := newProductService()
	ctx := context.Background()
	first, err := svc.Create(ctx, productInput(t, `{"name":"Chair1","stockQuantity":1,"attributes":{"colors":"red"}}`))
	require.NoError(t, err)
	_, err = svc.Create(ctx, productInput(t, `{"name":"Chair1","stockQuantity":1,"attributes":{"colors":"red"}}`))
	require.NoError(t, err)

	got, err := svc.ResolveExactVariant(ctx, "Chair1", "red")
	require.NoError(t, err)
	assert.Equal(t, first.ID, got.ID)

	_, err = svc.ResolveExactVariant(ctx, "Chair1", "purple")
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
}
