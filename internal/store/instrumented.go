package store

import (
	"context"
	"time"

	metrics "tinbr-service/prometheus"
)

// Instrumented records the duration of every storage call.
type Instrumented struct {
	next Store
}

// Instrument wraps next so every call is timed in the db metrics.
func Instrument(next Store) *Instrumented {
	return &Instrumented{next: next}
}

func (s *Instrumented) Find(ctx context.Context, collection string, filter Filter, opts FindOptions) ([]Document, error) {
	defer metrics.TrackDBOperation("find")(time.Now())
	return s.next.Find(ctx, collection, filter, opts)
}

func (s *Instrumented) FindOne(ctx context.Context, collection string, filter Filter) (Document, error) {
	defer metrics.TrackDBOperation("find_one")(time.Now())
	return s.next.FindOne(ctx, collection, filter)
}

func (s *Instrumented) Exists(ctx context.Context, collection string, filter Filter) (bool, error) {
	defer metrics.TrackDBOperation("exists")(time.Now())
	return s.next.Exists(ctx, collection, filter)
}

func (s *Instrumented) InsertOne(ctx context.Context, collection string, doc Document) error {
	defer metrics.TrackDBOperation("insert_one")(time.Now())
	return s.next.InsertOne(ctx, collection, doc)
}

func (s *Instrumented) UpdateOne(ctx context.Context, collection string, filter Filter, update Update) (UpdateResult, error) {
	defer metrics.TrackDBOperation("update_one")(time.Now())
	return s.next.UpdateOne(ctx, collection, filter, update)
}

func (s *Instrumented) UpdateMany(ctx context.Context, collection string, filter Filter, update Update) (UpdateResult, error) {
	defer metrics.TrackDBOperation("update_many")(time.Now())
	return s.next.UpdateMany(ctx, collection, filter, update)
}

func (s *Instrumented) DeleteOne(ctx context.Context, collection string, filter Filter) (int64, error) {
	defer metrics.TrackDBOperation("delete_one")(time.Now())
	return s.next.DeleteOne(ctx, collection, filter)
}

func (s *Instrumented) EnsureUniqueIndex(ctx context.Context, collection string, index UniqueIndex) error {
	return s.next.EnsureUniqueIndex(ctx, collection, index)
}

func (s *Instrumented) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	defer metrics.TrackDBOperation("transaction")(time.Now())
	return s.next.WithTransaction(ctx, fn)
}

func (s *Instrumented) Ping(ctx context.Context) error {
	defer metrics.TrackDBOperation("ping")(time.Now())
	return s.next.Ping(ctx)
}

func (s *Instrumented) Close(ctx context.Context) error {
	return s.next.Close(ctx)
}
