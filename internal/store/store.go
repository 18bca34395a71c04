// Package store is the document storage boundary shared by every repository.
//
// Documents are schema-less maps keyed by an opaque string _id. Filters are
// equality maps over (possibly dotted) field names; the only operator used by
// callers is Ne.
package store

import (
	"context"
	"errors"
	"fmt"
)

type Document map[string]any

type Filter map[string]any

type Sort struct {
	Field string
	Desc  bool
}

type FindOptions struct {
	Sort []Sort
	// Limit <= 0 means no limit.
	Limit int64
}

// Update is a partial update: fields to set and fields to remove.
type Update struct {
	Set   Document
	Unset []string
}

func (u Update) Empty() bool {
	return len(u.Set) == 0 && len(u.Unset) == 0
}

type UpdateResult struct {
	Matched  int64
	Modified int64
}

// UniqueIndex is enforced only for documents whose first field holds a non-empty string.
type UniqueIndex struct {
	Name   string
	Fields []string
}

var ErrNotFound = errors.New("store: document not found")

// DuplicateKeyError reports a write rejected by a unique index.
type DuplicateKeyError struct {
	Collection string
	Index      string
	Err        error
}

func (e *DuplicateKeyError) Error() string {
	return fmt.Sprintf("duplicate key on %s index %s", e.Collection, e.Index)
}

func (e *DuplicateKeyError) Unwrap() error {
	return e.Err
}

// Store is the document storage used by repositories.
type Store interface {
	Find(ctx context.Context, collection string, filter Filter, opts FindOptions) ([]Document, error)
	// FindOne returns ErrNotFound when nothing matches.
	FindOne(ctx context.Context, collection string, filter Filter) (Document, error)
	Exists(ctx context.Context, collection string, filter Filter) (bool, error)
	InsertOne(ctx context.Context, collection string, doc Document) error
	UpdateOne(ctx context.Context, collection string, filter Filter, update Update) (UpdateResult, error)
	UpdateMany(ctx context.Context, collection string, filter Filter, update Update) (UpdateResult, error)
	DeleteOne(ctx context.Context, collection string, filter Filter) (int64, error)
	EnsureUniqueIndex(ctx context.Context, collection string, index UniqueIndex) error
	// WithTransaction runs fn atomically when the backend supports it, plainly otherwise.
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
	Ping(ctx context.Context) error
	Close(ctx context.Context) error
}

// Ne builds a not-equal predicate value.
func Ne(v any) map[string]any {
	return map[string]any{"$ne": v}
}
