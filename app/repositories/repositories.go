// Package repositories holds the persistence contracts used by services and
// their MongoDB and in-memory implementations.
package repositories

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/shashiranjanraj/shopfront/app/models"
)

// Collection names.
const (
	UsersCollection         = "users"
	ProductsCollection      = "products"
	CategoriesCollection    = "categories"
	AttributesCollection    = "attributes"
	OrdersCollection        = "orders"
	PaymentEventsCollection = "payment_events"
)

// ErrDuplicateEvent is returned by PaymentEventRepository.Record when the
// (paymentIntentId, type) pair was already recorded.
var ErrDuplicateEvent = errors.New("repositories: payment event already recorded")

type UserRepository interface {
	Create(ctx context.Context, u *models.User) error
	// FindByID returns the full document, password hash included.
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.User, error)
	// FindIdentity returns the user without the password hash.
	FindIdentity(ctx context.Context, id primitive.ObjectID) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	FindByVerificationToken(ctx context.Context, token string) (*models.User, error)
	FindByResetToken(ctx context.Context, token string) (*models.User, error)
	List(ctx context.Context) ([]models.User, error)
	ListByRole(ctx context.Context, role string) ([]models.User, error)
	Save(ctx context.Context, u *models.User) error
	Delete(ctx context.Context, id primitive.ObjectID) error
	Count(ctx context.Context) (int64, error)
}

type ProductRepository interface {
	Create(ctx context.Context, p *models.Product) error
	InsertMany(ctx context.Context, ps []*models.Product) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Product, error)
	// List returns every product, newest first.
	List(ctx context.Context) ([]models.Product, error)
	Save(ctx context.Context, p *models.Product) error
	Delete(ctx context.Context, id primitive.ObjectID) error
	// SearchByName matches names containing term, case-insensitively.
	SearchByName(ctx context.Context, term string) ([]models.Product, error)
	// FindByCategory matches products carrying the label, case-insensitively.
	FindByCategory(ctx context.Context, category string) ([]models.Product, error)
	// FindByNamePrefix returns active and inactive products whose name starts
	// with prefix, case-insensitively, newest first.
	FindByNamePrefix(ctx context.Context, prefix string) ([]models.Product, error)
	// FindByExactName returns products named exactly name, lowest id first.
	FindByExactName(ctx context.Context, name string) ([]models.Product, error)
	CountActive(ctx context.Context) (int64, error)
	CountByCategory(ctx context.Context) ([]CategoryCount, error)
}

type CategoryRepository interface {
	Create(ctx context.Context, c *models.Category) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Category, error)
	// FindByName matches the whole name, case-insensitively.
	FindByName(ctx context.Context, name string) (*models.Category, error)
	// List sorts by sortOrder then creation order.
	List(ctx context.Context, activeOnly bool) ([]models.Category, error)
	Save(ctx context.Context, c *models.Category) error
	Delete(ctx context.Context, id primitive.ObjectID) error
}

type AttributeRepository interface {
	Create(ctx context.Context, a *models.Attribute) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Attribute, error)
	List(ctx context.Context, activeOnly bool) ([]models.Attribute, error)
	ListByType(ctx context.Context, typ string) ([]models.Attribute, error)
	Save(ctx context.Context, a *models.Attribute) error
	Delete(ctx context.Context, id primitive.ObjectID) error
}

type OrderRepository interface {
	Create(ctx context.Context, o *models.Order) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Order, error)
	// List returns every order, newest first.
	List(ctx context.Context) ([]models.Order, error)
	ListByUser(ctx context.Context, userID primitive.ObjectID) ([]models.Order, error)
	Save(ctx context.Context, o *models.Order) error
	Delete(ctx context.Context, id primitive.ObjectID) error
	// MarkPaid settles the order unless it is already Paid. applied is false
	// when another writer got there first.
	MarkPaid(ctx context.Context, id primitive.ObjectID, intentID, method string, at time.Time) (o *models.Order, applied bool, err error)
	// MarkFailed moves an Unpaid order to Failed.
	MarkFailed(ctx context.Context, id primitive.ObjectID, at time.Time) (applied bool, err error)
	Count(ctx context.Context) (int64, error)
	// MonthlyTotals groups orders created in [from, to) by calendar month.
	MonthlyTotals(ctx context.Context, from, to time.Time) ([]MonthTotal, error)
	CountByStatus(ctx context.Context) ([]StatusCount, error)
}

type PaymentEventRepository interface {
	// Record inserts the event or returns ErrDuplicateEvent.
	Record(ctx context.Context, e *models.PaymentEvent) error
	// Release removes a recorded event so a later delivery is applied again.
	Release(ctx context.Context, intentID, typ string) error
}

// MonthTotal is one month of order activity. Month is 1-12.
type MonthTotal struct {
	Month  int             `bson:"_id"`
	Orders int64           `bson:"orders"`
	Sales  decimal.Decimal `bson:"sales"`
}

type StatusCount struct {
	Status models.OrderStatus `bson:"_id"`
	Count  int64              `bson:"count"`
}

type CategoryCount struct {
	Category string `bson:"_id"   json:"category"`
	Count    int64  `bson:"count" json:"count"`
}

// Set bundles every repository so callers can swap drivers in one place.
type Set struct {
	Users         UserRepository
	Products      ProductRepository
	Categories    CategoryRepository
	Attributes    AttributeRepository
	Orders        OrderRepository
	PaymentEvents PaymentEventRepository
}
