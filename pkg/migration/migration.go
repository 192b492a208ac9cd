// Package migration runs versioned schema changes against MongoDB. Mongo has
// no DDL, so migrations here create and drop indexes and backfill fields.
//
// Usage (in database/migrations):
//
//	func init() {
//	    migration.Register("20240101000000_users_email_unique", &UsersEmailUnique{})
//	}
//
//	type UsersEmailUnique struct{}
//	func (UsersEmailUnique) Up(ctx context.Context, db *mongo.Database) error { ... }
//	func (UsersEmailUnique) Down(ctx context.Context, db *mongo.Database) error { ... }
//
// Run from CLI:
//
//	shopfront migrate             // run all pending
//	shopfront migrate:rollback    // rollback last batch
//	shopfront migrate:status
package migration

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/shashiranjanraj/shopfront/pkg/logger"
)

// Collection is where applied migrations are tracked.
const Collection = "shopfront_migrations"

// Migration is the interface every migration must implement.
type Migration interface {
	Up(ctx context.Context, db *mongo.Database) error
	Down(ctx context.Context, db *mongo.Database) error
}

// Record is one applied migration.
type Record struct {
	Name  string    `bson:"name"`
	Batch int       `bson:"batch"`
	RunAt time.Time `bson:"runAt"`
}

// Store persists Records.
type Store interface {
	Applied(ctx context.Context) ([]Record, error)
	Insert(ctx context.Context, rec Record) error
	Delete(ctx context.Context, name string) error
}

// ------------------- Registry -------------------

type registeredMigration struct {
	name string
	m    Migration
}

var registry []registeredMigration

// Register adds a migration to the global registry. name should be a
// timestamp-prefixed string; pending migrations run in name order.
func Register(name string, m Migration) {
	registry = append(registry, registeredMigration{name: name, m: m})
}

// ------------------- Mongo store -------------------

type mongoStore struct {
	coll *mongo.Collection
}

// NewMongoStore tracks migrations in the Collection of db and makes sure
// a name can only be recorded once.
func NewMongoStore(ctx context.Context, db *mongo.Database) (Store, error) {
	coll := db.Collection(Collection)
	_, err := coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "name", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return nil, fmt.Errorf("migration: ensure index: %w", err)
	}
	return &mongoStore{coll: coll}, nil
}

func (s *mongoStore) Applied(ctx context.Context) ([]Record, error) {
	cur, err := s.coll.Find(ctx, bson.D{})
	if err != nil {
		return nil, err
	}
	var out []Record
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *mongoStore) Insert(ctx context.Context, rec Record) error {
	_, err := s.coll.InsertOne(ctx, rec)
	return err
}

func (s *mongoStore) Delete(ctx context.Context, name string) error {
	_, err := s.coll.DeleteOne(ctx, bson.D{{Key: "name", Value: name}})
	return err
}

// ------------------- Runner -------------------

// Runner executes and tracks migrations.
type Runner struct {
	db         *mongo.Database
	store      Store
	migrations []registeredMigration
	out        io.Writer
	now        func() time.Time
}

// New creates a Runner for the registered migrations.
func New(db *mongo.Database, store Store) *Runner {
	return &Runner{
		db:         db,
		store:      store,
		migrations: registry,
		out:        os.Stdout,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

func (r *Runner) applied(ctx context.Context) (map[string]Record, int, error) {
	recs, err := r.store.Applied(ctx)
	if err != nil {
		return nil, 0, fmt.Errorf("migration: fetch applied: %w", err)
	}
	byName := make(map[string]Record, len(recs))
	last := 0
	for _, rec := range recs {
		byName[rec.Name] = rec
		if rec.Batch > last {
			last = rec.Batch
		}
	}
	return byName, last, nil
}

// Pending returns the migrations that have not yet been run, by name.
func (r *Runner) Pending(ctx context.Context) ([]string, error) {
	ran, _, err := r.applied(ctx)
	if err != nil {
		return nil, err
	}
	var names []string
	for _, reg := range r.sorted() {
		if _, ok := ran[reg.name]; !ok {
			names = append(names, reg.name)
		}
	}
	return names, nil
}

func (r *Runner) sorted() []registeredMigration {
	out := append([]registeredMigration(nil), r.migrations...)
	sort.Slice(out, func(i, j int) bool { return out[i].name < out[j].name })
	return out
}

// Run executes all pending migrations in a single batch.
func (r *Runner) Run(ctx context.Context) error {
	ran, last, err := r.applied(ctx)
	if err != nil {
		return err
	}

	batch := last + 1
	count := 0
	for _, reg := range r.sorted() {
		if _, ok := ran[reg.name]; ok {
			continue
		}
		logger.Info("migration: running", "name", reg.name)
		fmt.Fprintf(r.out, "  ▶ Migrating: %s\n", reg.name)

		if err := reg.m.Up(ctx, r.db); err != nil {
			return fmt.Errorf("migration: %s up: %w", reg.name, err)
		}
		if err := r.store.Insert(ctx, Record{Name: reg.name, Batch: batch, RunAt: r.now()}); err != nil {
			return fmt.Errorf("migration: record %s: %w", reg.name, err)
		}
		fmt.Fprintf(r.out, "  ✅ Migrated:  %s\n", reg.name)
		count++
	}

	if count == 0 {
		fmt.Fprintln(r.out, "Nothing to migrate.")
		return nil
	}
	logger.Info("migration: done", "ran", count, "batch", batch)
	return nil
}

// Rollback reverses every migration of the most recent batch, newest first.
func (r *Runner) Rollback(ctx context.Context) error {
	ran, last, err := r.applied(ctx)
	if err != nil {
		return err
	}
	if last == 0 {
		fmt.Fprintln(r.out, "Nothing to roll back.")
		return nil
	}

	regMap := make(map[string]Migration, len(r.migrations))
	for _, reg := range r.migrations {
		regMap[reg.name] = reg.m
	}

	var names []string
	for name, rec := range ran {
		if rec.Batch == last {
			names = append(names, name)
		}
	}
	sort.Sort(sort.Reverse(sort.StringSlice(names)))

	for _, name := range names {
		m, ok := regMap[name]
		if !ok {
			return fmt.Errorf("migration: cannot rollback %s: not registered", name)
		}

		fmt.Fprintf(r.out, "  ◀ Rolling back: %s\n", name)
		logger.Info("migration: rolling back", "name", name)

		if err := m.Down(ctx, r.db); err != nil {
			return fmt.Errorf("migration: %s down: %w", name, err)
		}
		if err := r.store.Delete(ctx, name); err != nil {
			return err
		}
		fmt.Fprintf(r.out, "  ✅ Rolled back:  %s\n", name)
	}
	return nil
}

// Status prints every registered migration and whether it has been run.
func (r *Runner) Status(ctx context.Context) error {
	ran, _, err := r.applied(ctx)
	if err != nil {
		return err
	}

	fmt.Fprintf(r.out, "%-60s  %-8s  %s\n", "Migration", "Status", "Batch")
	fmt.Fprintln(r.out, strings.Repeat("-", 80))
	for _, reg := range r.sorted() {
		if rec, ok := ran[reg.name]; ok {
			fmt.Fprintf(r.out, "%-60s  %-8s  %d\n", reg.name, "Ran", rec.Batch)
		} else {
			fmt.Fprintf(r.out, "%-60s  %-8s  -\n", reg.name, "Pending")
		}
	}
	return nil
}

// ErrNoMigrations is returned by a Runner with nothing registered.
var ErrNoMigrations = errors.New("no migrations registered")

// Check fails when nothing is registered, usually a missing blank import.
func (r *Runner) Check() error {
	if len(r.migrations) == 0 {
		return ErrNoMigrations
	}
	return nil
}
