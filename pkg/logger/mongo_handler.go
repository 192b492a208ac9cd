package logger

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	sinkQueue     = 4096
	sinkBatch     = 50
	sinkTick      = 2 * time.Second
	sinkRetention = 14 * 24 * time.Hour
)

// LogDocument is one stored log record.
type LogDocument struct {
	Time      time.Time `bson:"time"`
	Level     string    `bson:"level"`
	Msg       string    `bson:"msg"`
	RequestID string    `bson:"request_id,omitempty"`
	Attrs     bson.M    `bson:"attrs,omitempty"`
}

// sink owns the connection and the writer goroutine shared by every
// MongoHandler derived through WithAttrs or WithGroup.
type sink struct {
	client *mongo.Client
	col    *mongo.Collection
	queue  chan LogDocument
	stop   chan struct{}
	done   chan struct{}
	once   sync.Once
}

// MongoHandler is a slog.Handler that stores records in a collection off
// the request path. A full queue drops the record.
type MongoHandler struct {
	s      *sink
	attrs  []slog.Attr
	groups []string
}

// NewMongoHandler connects to uri and writes to db.collection with a
// two-week TTL. The caller must eventually call Close.
func NewMongoHandler(uri, db, collection string) (*MongoHandler, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri).
		SetConnectTimeout(5*time.Second).
		SetServerSelectionTimeout(5*time.Second).
		SetMaxPoolSize(10))
	if err != nil {
		return nil, fmt.Errorf("logger: mongo sink connect: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("logger: mongo sink ping: %w", err)
	}

	col := client.Database(db).Collection(collection)
	_, _ = col.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "time", Value: 1}},
		Options: options.Index().SetExpireAfterSeconds(int32(sinkRetention.Seconds())),
	})

	s := &sink{
		client: client,
		col:    col,
		queue:  make(chan LogDocument, sinkQueue),
		stop:   make(chan struct{}),
		done:   make(chan struct{}),
	}
	go s.run()
	return &MongoHandler{s: s}, nil
}

// Enabled drops debug records; the sink is for operational logs.
func (h *MongoHandler) Enabled(_ context.Context, l slog.Level) bool { return l >= slog.LevelInfo }

func (h *MongoHandler) Handle(_ context.Context, r slog.Record) error {
	select {
	case h.s.queue <- h.document(r):
	default:
	}
	return nil
}

// document flattens r into a LogDocument. request_id is lifted to the top
// level, grouped keys are dotted and errors are stored as their message.
func (h *MongoHandler) document(r slog.Record) LogDocument {
	doc := LogDocument{Time: r.Time, Level: r.Level.String(), Msg: r.Message, Attrs: bson.M{}}
	add := func(a slog.Attr) {
		if a.Key == "request_id" {
			doc.RequestID = a.Value.String()
			return
		}
		key := a.Key
		for i := len(h.groups) - 1; i >= 0; i-- {
			key = h.groups[i] + "." + key
		}
		v := a.Value.Resolve().Any()
		if err, ok := v.(error); ok {
			v = err.Error()
		}
		doc.Attrs[key] = v
	}
	for _, a := range h.attrs {
		add(a)
	}
	r.Attrs(func(a slog.Attr) bool {
		add(a)
		return true
	})
	return doc
}

func (h *MongoHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &MongoHandler{s: h.s, attrs: append(append([]slog.Attr(nil), h.attrs...), attrs...), groups: h.groups}
}

func (h *MongoHandler) WithGroup(name string) slog.Handler {
	return &MongoHandler{s: h.s, attrs: h.attrs, groups: append(append([]string(nil), h.groups...), name)}
}

// run batches queued documents into InsertMany calls until stopped.
func (s *sink) run() {
	defer close(s.done)
	ticker := time.NewTicker(sinkTick)
	defer ticker.Stop()

	batch := make([]interface{}, 0, sinkBatch)
	flush := func() {
		if len(batch) == 0 {
			return
		}
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if _, err := s.col.InsertMany(ctx, batch); err != nil {
			fmt.Fprintf(os.Stderr, "logger: mongo sink dropped %d records: %v\n", len(batch), err)
		}
		batch = batch[:0]
	}

	for {
		select {
		case doc := <-s.queue:
			if batch = append(batch, doc); len(batch) >= sinkBatch {
				flush()
			}
		case <-ticker.C:
			flush()
		case <-s.stop:
			for len(s.queue) > 0 {
				batch = append(batch, <-s.queue)
			}
			flush()
			return
		}
	}
}

// Close flushes pending records and disconnects. Safe to call twice.
func (h *MongoHandler) Close() {
	h.s.once.Do(func() { close(h.s.stop) })
	<-h.s.done
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = h.s.client.Disconnect(ctx)
}

// MultiHandler sends each record to every handler that accepts its level.
type MultiHandler struct {
	handlers []slog.Handler
}

func NewMultiHandler(hs ...slog.Handler) *MultiHandler {
	return &MultiHandler{handlers: hs}
}

func (m *MultiHandler) Enabled(ctx context.Context, l slog.Level) bool {
	for _, h := range m.handlers {
		if h.Enabled(ctx, l) {
			return true
		}
	}
	return false
}

func (m *MultiHandler) Handle(ctx context.Context, r slog.Record) error {
	for _, h := range m.handlers {
		if h.Enabled(ctx, r.Level) {
			_ = h.Handle(ctx, r.Clone())
		}
	}
	return nil
}

func (m *MultiHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return m.each(func(h slog.Handler) slog.Handler { return h.WithAttrs(attrs) })
}

func (m *MultiHandler) WithGroup(name string) slog.Handler {
	return m.each(func(h slog.Handler) slog.Handler { return h.WithGroup(name) })
}

func (m *MultiHandler) each(fn func(slog.Handler) slog.Handler) *MultiHandler {
	hs := make([]slog.Handler, len(m.handlers))
	for i, h := range m.handlers {
		hs[i] = fn(h)
	}
	return &MultiHandler{handlers: hs}
}
