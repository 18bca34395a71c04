package store

import (
	"context"
	"sort"
	"strings"
	"sync"
)

// Memory is an in-process Store used for local runs and tests.
// WithTransaction offers no isolation or rollback.
type Memory struct {
	mu      sync.RWMutex
	data    map[string][]map[string]any
	indexes map[string][]UniqueIndex
}

// NewMemory creates an empty in-process store.
func NewMemory() *Memory {
	return &Memory{
		data:    make(map[string][]map[string]any),
		indexes: make(map[string][]UniqueIndex),
	}
}

func (m *Memory) Find(_ context.Context, collection string, filter Filter, opts FindOptions) ([]Document, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []Document
	for _, doc := range m.data[collection] {
		if matches(doc, filter) {
			out = append(out, Document(cloneMap(doc)))
		}
	}

	if len(opts.Sort) > 0 {
		sort.SliceStable(out, func(i, j int) bool {
			for _, s := range opts.Sort {
				a, _ := Lookup(out[i], s.Field)
				b, _ := Lookup(out[j], s.Field)
				c := compare(a, b)
				if c == 0 {
					continue
				}
				if s.Desc {
					return c > 0
				}
				return c < 0
			}
			return false
		})
	}

	if opts.Limit > 0 && int64(len(out)) > opts.Limit {
		out = out[:opts.Limit]
	}
	return out, nil
}

func (m *Memory) FindOne(ctx context.Context, collection string, filter Filter) (Document, error) {
	docs, err := m.Find(ctx, collection, filter, FindOptions{Limit: 1})
	if err != nil {
		return nil, err
	}
	if len(docs) == 0 {
		return nil, ErrNotFound
	}
	return docs[0], nil
}

func (m *Memory) Exists(ctx context.Context, collection string, filter Filter) (bool, error) {
	docs, err := m.Find(ctx, collection, filter, FindOptions{Limit: 1})
	return len(docs) > 0, err
}

func (m *Memory) InsertOne(_ context.Context, collection string, doc Document) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	stored := cloneMap(doc)
	if err := m.checkUnique(collection, stored, -1); err != nil {
		return err
	}
	if id, ok := stored["_id"]; ok {
		for _, existing := range m.data[collection] {
			if equal(existing["_id"], id) {
				return &DuplicateKeyError{Collection: collection, Index: "_id_"}
			}
		}
	}
	m.data[collection] = append(m.data[collection], stored)
	return nil
}

func (m *Memory) UpdateOne(_ context.Context, collection string, filter Filter, update Update) (UpdateResult, error) {
	return m.update(collection, filter, update, false)
}

func (m *Memory) UpdateMany(_ context.Context, collection string, filter Filter, update Update) (UpdateResult, error) {
	return m.update(collection, filter, update, true)
}

func (m *Memory) update(collection string, filter Filter, update Update, many bool) (UpdateResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var res UpdateResult
	docs := m.data[collection]
	for i, doc := range docs {
		if !matches(doc, filter) {
			continue
		}
		res.Matched++

		next := cloneMap(doc)
		changed := false
		for k, v := range update.Set {
			if old, ok := Lookup(next, k); !ok || !equal(old, v) {
				changed = true
			}
			SetPath(next, k, clone(v))
		}
		for _, k := range update.Unset {
			if unsetPath(next, k) {
				changed = true
			}
		}

		if changed {
			if err := m.checkUnique(collection, next, i); err != nil {
				return res, err
			}
			docs[i] = next
			res.Modified++
		}
		if !many {
			break
		}
	}
	return res, nil
}

func (m *Memory) DeleteOne(_ context.Context, collection string, filter Filter) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	docs := m.data[collection]
	for i, doc := range docs {
		if matches(doc, filter) {
			m.data[collection] = append(docs[:i:i], docs[i+1:]...)
			return 1, nil
		}
	}
	return 0, nil
}

func (m *Memory) EnsureUniqueIndex(_ context.Context, collection string, index UniqueIndex) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, existing := range m.indexes[collection] {
		if existing.Name == index.Name {
			return nil
		}
	}
	m.indexes[collection] = append(m.indexes[collection], index)
	return nil
}

func (m *Memory) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

func (m *Memory) Ping(context.Context) error {
	return nil
}

func (m *Memory) Close(context.Context) error {
	return nil
}

// checkUnique must be called with the write lock held. skip is the position of
// the document being replaced, or -1 for inserts.
func (m *Memory) checkUnique(collection string, doc map[string]any, skip int) error {
	for _, idx := range m.indexes[collection] {
		key, ok := indexKey(doc, idx)
		if !ok {
			continue
		}
		for i, other := range m.data[collection] {
			if i == skip {
				continue
			}
			if otherKey, ok := indexKey(other, idx); ok && equal(key, otherKey) {
				return &DuplicateKeyError{Collection: collection, Index: idx.Name}
			}
		}
	}
	return nil
}

func indexKey(doc map[string]any, idx UniqueIndex) ([]any, bool) {
	if len(idx.Fields) == 0 {
		return nil, false
	}
	first, _ := Lookup(doc, idx.Fields[0])
	if s, ok := first.(string); !ok || s == "" {
		return nil, false
	}
	key := make([]any, len(idx.Fields))
	for i, f := range idx.Fields {
		key[i], _ = Lookup(doc, f)
	}
	return key, true
}

func matches(doc map[string]any, filter Filter) bool {
	for field, want := range filter {
		got, present := Lookup(doc, field)
		if op, ok := want.(map[string]any); ok && isOperator(op) {
			if !matchOperator(got, present, op) {
				return false
			}
			continue
		}
		if !present || !equal(got, want) {
			return false
		}
	}
	return true
}

func isOperator(m map[string]any) bool {
	for k := range m {
		if !strings.HasPrefix(k, "$") {
			return false
		}
	}
	return len(m) > 0
}

func matchOperator(got any, present bool, op map[string]any) bool {
	for name, arg := range op {
		switch name {
		case "$ne":
			if present && equal(got, arg) {
				return false
			}
		case "$exists":
			want, _ := arg.(bool)
			if present != want {
				return false
			}
		default:
			return false
		}
	}
	return true
}
