package seeders

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shashiranjanraj/shopfront/app/models"
	"github.com/shashiranjanraj/shopfront/app/repositories"
	"github.com/shashiranjanraj/shopfront/app/services"
	"github.com/shashiranjanraj/shopfront/pkg/auth"
	"github.com/shashiranjanraj/shopfront/pkg/cache"
	"github.com/shashiranjanraj/shopfront/pkg/payment"
)

func TestRunAllIsRepeatable(t *testing.T) {
	ctx := context.Background()
	repos := repositories.NewMemory()
	svc := services.New(services.Deps{
		Repos:    repos,
		Cache:    cache.NewMemory(),
		Payments: payment.Unconfigured{},
		Signer:   auth.NewSigner("seed-secret"),
	})

	var out bytes.Buffer
	require.NoError(t, RunAll(ctx, svc, &out))
	require.NoError(t, RunAll(ctx, svc, &out))
	assert.Contains(t, out.String(), "Running seeder: products")

	admins, err := repos.Users.ListByRole(ctx, models.RoleAdmin)
	require.NoError(t, err)
	require.Len(t, admins, 1)
	assert.True(t, admins[0].IsVerified)

	cats, err := repos.Categories.List(ctx, true)
	require.NoError(t, err)
	assert.Len(t, cats, len(categories))
	assert.Equal(t, "Chairs", cats[0].Name)

	colors, err := repos.Attributes.ListByType(ctx, models.AttributeTypeColor)
	require.NoError(t, err)
	assert.Len(t, colors, 1)

	products, err := repos.Products.List(ctx)
	require.NoError(t, err)
	assert.Len(t, products, 3)

	bundle, err := svc.Products.ResolveVariants(ctx, "Chair9")
	require.NoError(t, err)
	assert.Equal(t, []string{"blue", "green", "red"}, bundle.AllAvailableColors)
}
