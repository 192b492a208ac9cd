package repositories

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/shashiranjanraj/shopfront/app/models"
	"github.com/shashiranjanraj/shopfront/pkg/apperr"
)

func TestPatterns_QuoteUserInput(t *testing.T) {
	assert.Equal(t, `^Chair\.\*`, prefixPattern("Chair.*").Pattern)
	assert.Equal(t, "i", prefixPattern("x").Options)
	assert.Equal(t, `^\(red\)$`, exactPattern("(red)").Pattern)
	assert.Equal(t, `a\+b`, containsPattern("a+b").Pattern)
}

func TestMemoryUsers_UniqueEmailAndIdentityProjection(t *testing.T) {
	ctx := context.Background()
	repo := NewMemory().Users

	u := &models.User{Name: "Ann", Email: "ann@example.com", Password: "hash", VerificationToken: "tok"}
	require.NoError(t, repo.Create(ctx, u))
	assert.False(t, u.ID.IsZero())

	err := repo.Create(ctx, &models.User{Email: "ann@example.com"})
	assert.Equal(t, apperr.KindConflict, apperr.KindOf(err))

	full, err := repo.FindByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "hash", full.Password)

	ident, err := repo.FindIdentity(ctx, u.ID)
	require.NoError(t, err)
	assert.Empty(t, ident.Password)
	assert.Empty(t, ident.VerificationToken)

	_, err = repo.FindIdentity(ctx, primitive.NewObjectID())
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
}

func TestMemoryUsers_ReturnedCopiesAreIsolated(t *testing.T) {
	ctx := context.Background()
	repo := NewMemory().Users
	u := &models.User{Name: "Ann", Email: "ann@example.com"}
	require.NoError(t, repo.Create(ctx, u))

	got, _ := repo.FindByID(ctx, u.ID)
	got.Name = "Changed"

	again, _ := repo.FindByID(ctx, u.ID)
	assert.Equal(t, "Ann", again.Name)
}

func TestMemoryProducts_PrefixAndExactName(t *testing.T) {
	ctx := context.Background()
	repo := NewMemory().Products
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	for i, name := range []string{"Chair1", "chair2", "Table1", "Chair1"} {
		p := &models.Product{Name: name, CreatedAt: base.Add(time.Duration(i) * time.Hour)}
		require.NoError(t, repo.Create(ctx, p))
	}

	ps, err := repo.FindByNamePrefix(ctx, "CHAIR")
	require.NoError(t, err)
	require.Len(t, ps, 3)
	assert.Equal(t, "Chair1", ps[0].Name, "newest first")
	assert.Equal(t, "chair2", ps[1].Name)

	exact, err := repo.FindByExactName(ctx, "Chair1")
	require.NoError(t, err)
	require.Len(t, exact, 2)
	assert.True(t, exact[0].ID.Hex() < exact[1].ID.Hex())

	none, err := repo.FindByNamePrefix(ctx, "C.*")
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestMemoryProducts_CountByCategory(t *testing.T) {
	ctx := context.Background()
	repo := NewMemory().Products
	require.NoError(t, repo.Create(ctx, &models.Product{Name: "a", Category: []string{"Chairs", "Sale"}}))
	require.NoError(t, repo.Create(ctx, &models.Product{Name: "b", Category: []string{"Chairs"}}))

	counts, err := repo.CountByCategory(ctx)
	require.NoError(t, err)
	assert.Equal(t, []CategoryCount{{"Chairs", 2}, {"Sale", 1}}, counts)
}

func TestMemoryCategories_SortAndConflict(t *testing.T) {
	ctx := context.Background()
	repo := NewMemory().Categories
	require.NoError(t, repo.Create(ctx, &models.Category{Name: "B", SortOrder: 2, IsActive: true}))
	require.NoError(t, repo.Create(ctx, &models.Category{Name: "A", SortOrder: 1, IsActive: true}))
	require.NoError(t, repo.Create(ctx, &models.Category{Name: "C", SortOrder: 1, IsActive: false}))

	active, err := repo.List(ctx, true)
	require.NoError(t, err)
	require.Len(t, active, 2)
	assert.Equal(t, "A", active[0].Name)

	all, err := repo.List(ctx, false)
	require.NoError(t, err)
	assert.Equal(t, []string{"A", "C", "B"}, []string{all[0].Name, all[1].Name, all[2].Name})

	err = repo.Create(ctx, &models.Category{Name: "A"})
	assert.Equal(t, apperr.KindConflict, apperr.KindOf(err))

	found, err := repo.FindByName(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, "A", found.Name)
}

func TestMemoryOrders_MarkPaidOnce(t *testing.T) {
	ctx := context.Background()
	repo := NewMemory().Orders
	o := &models.Order{Status: models.OrderPending, PaymentStatus: models.PaymentUnpaid, TotalAmount: decimal.NewFromInt(35)}
	require.NoError(t, repo.Create(ctx, o))

	paid, applied, err := repo.MarkPaid(ctx, o.ID, "pi_1", "Stripe", time.Now())
	require.NoError(t, err)
	assert.True(t, applied)
	assert.Equal(t, models.PaymentPaid, paid.PaymentStatus)
	assert.Equal(t, models.OrderProcessing, paid.Status)

	_, applied, err = repo.MarkPaid(ctx, o.ID, "pi_2", "Stripe", time.Now())
	require.NoError(t, err)
	assert.False(t, applied)

	failed, err := repo.MarkFailed(ctx, o.ID, time.Now())
	require.NoError(t, err)
	assert.False(t, failed, "Paid is never overwritten")

	got, _ := repo.FindByID(ctx, o.ID)
	assert.Equal(t, "pi_1", got.PaymentIntentID)
	assert.True(t, got.TotalAmount.Equal(decimal.NewFromInt(35)))
}

func TestMemoryOrders_MarkPaidKeepsLaterStatus(t *testing.T) {
	ctx := context.Background()
	repo := NewMemory().Orders
	o := &models.Order{Status: models.OrderShipped, PaymentStatus: models.PaymentFailed}
	require.NoError(t, repo.Create(ctx, o))

	paid, applied, err := repo.MarkPaid(ctx, o.ID, "pi_1", "Stripe", time.Now())
	require.NoError(t, err)
	assert.True(t, applied)
	assert.Equal(t, models.OrderShipped, paid.Status)
}

func TestMemoryOrders_MonthlyTotals(t *testing.T) {
	ctx := context.Background()
	repo := NewMemory().Orders
	at := func(m time.Month) time.Time { return time.Date(2026, m, 10, 0, 0, 0, 0, time.UTC) }
	require.NoError(t, repo.Create(ctx, &models.Order{CreatedAt: at(time.March), TotalAmount: decimal.RequireFromString("10.5")}))
	require.NoError(t, repo.Create(ctx, &models.Order{CreatedAt: at(time.March), TotalAmount: decimal.NewFromInt(4)}))
	require.NoError(t, repo.Create(ctx, &models.Order{CreatedAt: time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC), TotalAmount: decimal.NewFromInt(99)}))

	from := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	totals, err := repo.MonthlyTotals(ctx, from, from.AddDate(1, 0, 0))
	require.NoError(t, err)
	require.Len(t, totals, 1)
	assert.Equal(t, 3, totals[0].Month)
	assert.Equal(t, int64(2), totals[0].Orders)
	assert.Equal(t, "14.5", totals[0].Sales.String())
}

func TestMemoryPaymentEvents_Duplicate(t *testing.T) {
	ctx := context.Background()
	repo := NewMemory().PaymentEvents
	ev := &models.PaymentEvent{PaymentIntentID: "pi_1", Type: "payment_intent.succeeded"}
	require.NoError(t, repo.Record(ctx, ev))
	assert.ErrorIs(t, repo.Record(ctx, &models.PaymentEvent{PaymentIntentID: "pi_1", Type: "payment_intent.succeeded"}), ErrDuplicateEvent)
	assert.NoError(t, repo.Record(ctx, &models.PaymentEvent{PaymentIntentID: "pi_1", Type: "payment_intent.payment_failed"}))
}
