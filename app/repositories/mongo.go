package repositories

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/shashiranjanraj/shopfront/pkg/apperr"
	"github.com/shashiranjanraj/shopfront/pkg/database"
	"github.com/shashiranjanraj/shopfront/pkg/metrics"
)

// NewMongo builds every repository on db.
func NewMongo(db *mongo.Database) Set {
	return Set{
		Users:         &MongoUsers{base{db.Collection(UsersCollection)}},
		Products:      &MongoProducts{base{db.Collection(ProductsCollection)}},
		Categories:    &MongoCategories{base{db.Collection(CategoriesCollection)}},
		Attributes:    &MongoAttributes{base{db.Collection(AttributesCollection)}},
		Orders:        &MongoOrders{base{db.Collection(OrdersCollection)}},
		PaymentEvents: &MongoPaymentEvents{base{db.Collection(PaymentEventsCollection)}},
	}
}

// base carries the collection shared by the Mongo repositories.
type base struct {
	coll *mongo.Collection
}

// observe records the operation latency; use as defer b.observe("find")().
func (b base) observe(op string) func() {
	start := time.Now()
	return func() { metrics.ObserveDBQuery(b.coll.Name(), op, start) }
}

func (b base) wrap(op string, err error) error {
	return fmt.Errorf("repositories: %s: %s: %w", b.coll.Name(), op, err)
}

func (b base) insert(ctx context.Context, doc interface{}, conflict string) error {
	defer b.observe("insert")()
	if _, err := b.coll.InsertOne(ctx, doc); err != nil {
		if database.IsDuplicateKey(err) {
			return apperr.Conflict(conflict)
		}
		return b.wrap("insert", err)
	}
	return nil
}

func (b base) findOne(ctx context.Context, filter interface{}, dest interface{}, missing string, opts ...*options.FindOneOptions) error {
	defer b.observe("find_one")()
	err := b.coll.FindOne(ctx, filter, opts...).Decode(dest)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return apperr.NotFound(missing)
	}
	if err != nil {
		return b.wrap("find_one", err)
	}
	return nil
}

func (b base) replace(ctx context.Context, id primitive.ObjectID, doc interface{}, missing string) error {
	defer b.observe("replace")()
	res, err := b.coll.ReplaceOne(ctx, bson.M{"_id": id}, doc)
	if err != nil {
		if database.IsDuplicateKey(err) {
			return apperr.Conflict("Duplicate value")
		}
		return b.wrap("replace", err)
	}
	if res.MatchedCount == 0 {
		return apperr.NotFound(missing)
	}
	return nil
}

func (b base) delete(ctx context.Context, id primitive.ObjectID, missing string) error {
	defer b.observe("delete")()
	res, err := b.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return b.wrap("delete", err)
	}
	if res.DeletedCount == 0 {
		return apperr.NotFound(missing)
	}
	return nil
}

func (b base) count(ctx context.Context, filter interface{}) (int64, error) {
	defer b.observe("count")()
	n, err := b.coll.CountDocuments(ctx, filter)
	if err != nil {
		return 0, b.wrap("count", err)
	}
	return n, nil
}

// findAll decodes every match into a non-nil slice.
func findAll[T any](ctx context.Context, b base, filter interface{}, opts ...*options.FindOptions) ([]T, error) {
	defer b.observe("find")()
	cur, err := b.coll.Find(ctx, filter, opts...)
	if err != nil {
		return nil, b.wrap("find", err)
	}
	out := make([]T, 0)
	if err := cur.All(ctx, &out); err != nil {
		return nil, b.wrap("decode", err)
	}
	return out, nil
}

func aggregate[T any](ctx context.Context, b base, pipeline mongo.Pipeline) ([]T, error) {
	defer b.observe("aggregate")()
	cur, err := b.coll.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, b.wrap("aggregate", err)
	}
	out := make([]T, 0)
	if err := cur.All(ctx, &out); err != nil {
		return nil, b.wrap("decode", err)
	}
	return out, nil
}

// User input is always quoted before it reaches a regex.

func containsPattern(term string) primitive.Regex {
	return primitive.Regex{Pattern: regexp.QuoteMeta(term), Options: "i"}
}

func prefixPattern(prefix string) primitive.Regex {
	return primitive.Regex{Pattern: "^" + regexp.QuoteMeta(prefix), Options: "i"}
}

func exactPattern(s string) primitive.Regex {
	return primitive.Regex{Pattern: "^" + regexp.QuoteMeta(s) + "$", Options: "i"}
}

var newestFirst = bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}}
