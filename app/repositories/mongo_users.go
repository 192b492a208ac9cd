package repositories

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/shashiranjanraj/shopfront/app/models"
)

const userNotFound = "User not found"

// identityProjection strips credentials from identity lookups.
var identityProjection = bson.M{
	"password":                 0,
	"verificationToken":        0,
	"verificationTokenExpires": 0,
	"resetPasswordToken":       0,
	"resetPasswordExpires":     0,
}

type MongoUsers struct{ base }

func (r *MongoUsers) Create(ctx context.Context, u *models.User) error {
	if u.ID.IsZero() {
		u.ID = primitive.NewObjectID()
	}
	return r.insert(ctx, u, "User already exists")
}

func (r *MongoUsers) FindByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	var u models.User
	if err := r.findOne(ctx, bson.M{"_id": id}, &u, userNotFound); err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *MongoUsers) FindIdentity(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	var u models.User
	opts := options.FindOne().SetProjection(identityProjection)
	if err := r.findOne(ctx, bson.M{"_id": id}, &u, userNotFound, opts); err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *MongoUsers) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	var u models.User
	if err := r.findOne(ctx, bson.M{"email": email}, &u, userNotFound); err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *MongoUsers) FindByVerificationToken(ctx context.Context, token string) (*models.User, error) {
	var u models.User
	if err := r.findOne(ctx, bson.M{"verificationToken": token}, &u, userNotFound); err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *MongoUsers) FindByResetToken(ctx context.Context, token string) (*models.User, error) {
	var u models.User
	if err := r.findOne(ctx, bson.M{"resetPasswordToken": token}, &u, userNotFound); err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *MongoUsers) List(ctx context.Context) ([]models.User, error) {
	opts := options.Find().SetProjection(identityProjection).SetSort(newestFirst)
	return findAll[models.User](ctx, r.base, bson.M{}, opts)
}

func (r *MongoUsers) ListByRole(ctx context.Context, role string) ([]models.User, error) {
	opts := options.Find().SetProjection(identityProjection).SetSort(newestFirst)
	return findAll[models.User](ctx, r.base, bson.M{"role": role}, opts)
}

func (r *MongoUsers) Save(ctx context.Context, u *models.User) error {
	return r.replace(ctx, u.ID, u, userNotFound)
}

func (r *MongoUsers) Delete(ctx context.Context, id primitive.ObjectID) error {
	return r.delete(ctx, id, userNotFound)
}

func (r *MongoUsers) Count(ctx context.Context) (int64, error) {
	return r.count(ctx, bson.M{})
}
