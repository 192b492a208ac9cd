package repositories

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/shashiranjanraj/shopfront/app/models"
	"github.com/shashiranjanraj/shopfront/pkg/database"
)

const orderNotFound = "Order not found"

type MongoOrders struct{ base }

func (r *MongoOrders) Create(ctx context.Context, o *models.Order) error {
	if o.ID.IsZero() {
		o.ID = primitive.NewObjectID()
	}
	return r.insert(ctx, o, "Order already exists")
}

func (r *MongoOrders) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Order, error) {
	var o models.Order
	if err := r.findOne(ctx, bson.M{"_id": id}, &o, orderNotFound); err != nil {
		return nil, err
	}
	return &o, nil
}

func (r *MongoOrders) List(ctx context.Context) ([]models.Order, error) {
	return findAll[models.Order](ctx, r.base, bson.M{}, options.Find().SetSort(newestFirst))
}

func (r *MongoOrders) ListByUser(ctx context.Context, userID primitive.ObjectID) ([]models.Order, error) {
	return findAll[models.Order](ctx, r.base, bson.M{"user": userID}, options.Find().SetSort(newestFirst))
}

func (r *MongoOrders) Save(ctx context.Context, o *models.Order) error {
	return r.replace(ctx, o.ID, o, orderNotFound)
}

func (r *MongoOrders) Delete(ctx context.Context, id primitive.ObjectID) error {
	return r.delete(ctx, id, orderNotFound)
}

// MarkPaid uses a pipeline update so the Pending→Processing step and the
// payment flip happen in the same atomic write.
func (r *MongoOrders) MarkPaid(ctx context.Context, id primitive.ObjectID, intentID, method string, at time.Time) (*models.Order, bool, error) {
	defer r.observe("mark_paid")()

	filter := bson.M{"_id": id, "paymentStatus": bson.M{"$ne": models.PaymentPaid}}
	update := mongo.Pipeline{{{Key: "$set", Value: bson.D{
		{Key: "paymentStatus", Value: models.PaymentPaid},
		{Key: "paymentIntentId", Value: intentID},
		{Key: "paymentMethod", Value: method},
		{Key: "updatedAt", Value: at},
		{Key: "status", Value: bson.D{{Key: "$cond", Value: bson.A{
			bson.D{{Key: "$eq", Value: bson.A{"$status", models.OrderPending}}},
			models.OrderProcessing,
			"$status",
		}}}},
	}}}}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var o models.Order
	err := r.coll.FindOneAndUpdate(ctx, filter, update, opts).Decode(&o)
	if err == nil {
		return &o, true, nil
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		return nil, false, r.wrap("mark_paid", err)
	}

	// Either missing or already paid.
	current, ferr := r.FindByID(ctx, id)
	if ferr != nil {
		return nil, false, ferr
	}
	return current, false, nil
}

func (r *MongoOrders) MarkFailed(ctx context.Context, id primitive.ObjectID, at time.Time) (bool, error) {
	defer r.observe("mark_failed")()
	filter := bson.M{"_id": id, "paymentStatus": models.PaymentUnpaid}
	update := bson.M{"$set": bson.M{"paymentStatus": models.PaymentFailed, "updatedAt": at}}
	res, err := r.coll.UpdateOne(ctx, filter, update)
	if err != nil {
		return false, r.wrap("mark_failed", err)
	}
	return res.ModifiedCount > 0, nil
}

func (r *MongoOrders) Count(ctx context.Context) (int64, error) {
	return r.count(ctx, bson.M{})
}

func (r *MongoOrders) MonthlyTotals(ctx context.Context, from, to time.Time) ([]MonthTotal, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"createdAt": bson.M{"$gte": from, "$lt": to}}}},
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: bson.D{{Key: "$month", Value: "$createdAt"}}},
			{Key: "orders", Value: bson.D{{Key: "$sum", Value: 1}}},
			{Key: "sales", Value: bson.D{{Key: "$sum", Value: "$totalAmount"}}},
		}}},
		{{Key: "$sort", Value: bson.D{{Key: "_id", Value: 1}}}},
	}
	return aggregate[MonthTotal](ctx, r.base, pipeline)
}

func (r *MongoOrders) CountByStatus(ctx context.Context) ([]StatusCount, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: "$status"},
			{Key: "count", Value: bson.D{{Key: "$sum", Value: 1}}},
		}}},
	}
	return aggregate[StatusCount](ctx, r.base, pipeline)
}

// ---- payment events ----

type MongoPaymentEvents struct{ base }

func (r *MongoPaymentEvents) Record(ctx context.Context, e *models.PaymentEvent) error {
	defer r.observe("insert")()
	if e.ID.IsZero() {
		e.ID = primitive.NewObjectID()
	}
	if _, err := r.coll.InsertOne(ctx, e); err != nil {
		if database.IsDuplicateKey(err) {
			return ErrDuplicateEvent
		}
		return r.wrap("insert", err)
	}
	return nil
}

func (r *MongoPaymentEvents) Release(ctx context.Context, intentID, typ string) error {
	defer r.observe("delete")()
	if _, err := r.coll.DeleteOne(ctx, bson.M{"paymentIntentId": intentID, "type": typ}); err != nil {
		return r.wrap("delete", err)
	}
	return nil
}
