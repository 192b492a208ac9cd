// Package migrations registers the index migrations. It is blank-imported by
// the CLI so every init() runs before `migrate`.
package migrations

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// index is a migration that creates one named index and drops it on rollback.
type index struct {
	collection string
	name       string
	keys       bson.D
	unique     bool
	sparse     bool
}

func (m index) Up(ctx context.Context, db *mongo.Database) error {
	opts := options.Index().SetName(m.name)
	if m.unique {
		opts.SetUnique(true)
	}
	if m.sparse {
		opts.SetSparse(true)
	}
	_, err := db.Collection(m.collection).Indexes().CreateOne(ctx, mongo.IndexModel{Keys: m.keys, Options: opts})
	return err
}

func (m index) Down(ctx context.Context, db *mongo.Database) error {
	_, err := db.Collection(m.collection).Indexes().DropOne(ctx, m.name)
	return err
}

func asc(fields ...string) bson.D {
	d := make(bson.D, len(fields))
	for i, f := range fields {
		d[i] = bson.E{Key: f, Value: 1}
	}
	return d
}
