package repositories

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/shashiranjanraj/shopfront/app/models"
	"github.com/shashiranjanraj/shopfront/pkg/apperr"
)

const (
	productNotFound   = "Product not found"
	categoryNotFound  = "Category not found"
	attributeNotFound = "Attribute not found"
)

// ---- products ----

type MongoProducts struct{ base }

func (r *MongoProducts) Create(ctx context.Context, p *models.Product) error {
	if p.ID.IsZero() {
		p.ID = primitive.NewObjectID()
	}
	return r.insert(ctx, p, "Product already exists")
}

func (r *MongoProducts) InsertMany(ctx context.Context, ps []*models.Product) error {
	if len(ps) == 0 {
		return nil
	}
	defer r.observe("insert_many")()
	docs := make([]interface{}, len(ps))
	for i, p := range ps {
		if p.ID.IsZero() {
			p.ID = primitive.NewObjectID()
		}
		docs[i] = p
	}
	if _, err := r.coll.InsertMany(ctx, docs); err != nil {
		return r.wrap("insert_many", err)
	}
	return nil
}

func (r *MongoProducts) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Product, error) {
	var p models.Product
	if err := r.findOne(ctx, bson.M{"_id": id}, &p, productNotFound); err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *MongoProducts) List(ctx context.Context) ([]models.Product, error) {
	return findAll[models.Product](ctx, r.base, bson.M{}, options.Find().SetSort(newestFirst))
}

func (r *MongoProducts) Save(ctx context.Context, p *models.Product) error {
	return r.replace(ctx, p.ID, p, productNotFound)
}

func (r *MongoProducts) Delete(ctx context.Context, id primitive.ObjectID) error {
	return r.delete(ctx, id, productNotFound)
}

func (r *MongoProducts) SearchByName(ctx context.Context, term string) ([]models.Product, error) {
	filter := bson.M{"name": containsPattern(term)}
	return findAll[models.Product](ctx, r.base, filter, options.Find().SetSort(newestFirst))
}

func (r *MongoProducts) FindByCategory(ctx context.Context, category string) ([]models.Product, error) {
	filter := bson.M{"category": exactPattern(category)}
	return findAll[models.Product](ctx, r.base, filter, options.Find().SetSort(newestFirst))
}

func (r *MongoProducts) FindByNamePrefix(ctx context.Context, prefix string) ([]models.Product, error) {
	filter := bson.M{"name": prefixPattern(prefix)}
	return findAll[models.Product](ctx, r.base, filter, options.Find().SetSort(newestFirst))
}

func (r *MongoProducts) FindByExactName(ctx context.Context, name string) ([]models.Product, error) {
	opts := options.Find().SetSort(bson.D{{Key: "_id", Value: 1}})
	return findAll[models.Product](ctx, r.base, bson.M{"name": name}, opts)
}

func (r *MongoProducts) CountActive(ctx context.Context) (int64, error) {
	return r.count(ctx, bson.M{"isActive": true})
}

func (r *MongoProducts) CountByCategory(ctx context.Context) ([]CategoryCount, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$unwind", Value: "$category"}},
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: "$category"},
			{Key: "count", Value: bson.D{{Key: "$sum", Value: 1}}},
		}}},
		{{Key: "$sort", Value: bson.D{{Key: "count", Value: -1}, {Key: "_id", Value: 1}}}},
	}
	return aggregate[CategoryCount](ctx, r.base, pipeline)
}

// ---- categories ----

type MongoCategories struct{ base }

var categoryOrder = bson.D{{Key: "sortOrder", Value: 1}, {Key: "_id", Value: 1}}

func (r *MongoCategories) Create(ctx context.Context, c *models.Category) error {
	if c.ID.IsZero() {
		c.ID = primitive.NewObjectID()
	}
	return r.insert(ctx, c, "Category already exists")
}

func (r *MongoCategories) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Category, error) {
	var c models.Category
	if err := r.findOne(ctx, bson.M{"_id": id}, &c, categoryNotFound); err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *MongoCategories) FindByName(ctx context.Context, name string) (*models.Category, error) {
	var c models.Category
	if err := r.findOne(ctx, bson.M{"name": exactPattern(name)}, &c, categoryNotFound); err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *MongoCategories) List(ctx context.Context, activeOnly bool) ([]models.Category, error) {
	filter := bson.M{}
	if activeOnly {
		filter["isActive"] = true
	}
	return findAll[models.Category](ctx, r.base, filter, options.Find().SetSort(categoryOrder))
}

func (r *MongoCategories) Save(ctx context.Context, c *models.Category) error {
	err := r.replace(ctx, c.ID, c, categoryNotFound)
	if apperr.KindOf(err) == apperr.KindConflict {
		return apperr.Conflict("Category already exists")
	}
	return err
}

func (r *MongoCategories) Delete(ctx context.Context, id primitive.ObjectID) error {
	return r.delete(ctx, id, categoryNotFound)
}

// ---- attributes ----

type MongoAttributes struct{ base }

var byName = bson.D{{Key: "name", Value: 1}, {Key: "_id", Value: 1}}

func (r *MongoAttributes) Create(ctx context.Context, a *models.Attribute) error {
	if a.ID.IsZero() {
		a.ID = primitive.NewObjectID()
	}
	return r.insert(ctx, a, "Attribute already exists")
}

func (r *MongoAttributes) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Attribute, error) {
	var a models.Attribute
	if err := r.findOne(ctx, bson.M{"_id": id}, &a, attributeNotFound); err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *MongoAttributes) List(ctx context.Context, activeOnly bool) ([]models.Attribute, error) {
	filter := bson.M{}
	if activeOnly {
		filter["isActive"] = true
	}
	return findAll[models.Attribute](ctx, r.base, filter, options.Find().SetSort(byName))
}

func (r *MongoAttributes) ListByType(ctx context.Context, typ string) ([]models.Attribute, error) {
	filter := bson.M{"type": typ, "isActive": true}
	return findAll[models.Attribute](ctx, r.base, filter, options.Find().SetSort(byName))
}

func (r *MongoAttributes) Save(ctx context.Context, a *models.Attribute) error {
	return r.replace(ctx, a.ID, a, attributeNotFound)
}

func (r *MongoAttributes) Delete(ctx context.Context, id primitive.ObjectID) error {
	return r.delete(ctx, id, attributeNotFound)
}
