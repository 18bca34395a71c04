package store

import (
	"context"
	"errors"
	"fmt"
	"regexp"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.uber.org/zap"
)

// Mongo is the MongoDB-backed Store.
type Mongo struct {
	client       *mongo.Client
	db           *mongo.Database
	transactions bool
	logger       *zap.Logger
}

// NewMongo wraps an already connected client. Transactions require a replica set.
func NewMongo(client *mongo.Client, database string, transactions bool, logger *zap.Logger) *Mongo {
	return &Mongo{
		client:       client,
		db:           client.Database(database),
		transactions: transactions,
		logger:       logger,
	}
}

func (m *Mongo) Find(ctx context.Context, collection string, filter Filter, opts FindOptions) ([]Document, error) {
	findOpts := options.Find()
	if len(opts.Sort) > 0 {
		findOpts.SetSort(sortSpec(opts.Sort))
	}
	if opts.Limit > 0 {
		findOpts.SetLimit(opts.Limit)
	}

	cursor, err := m.db.Collection(collection).Find(ctx, filterDoc(filter), findOpts)
	if err != nil {
		return nil, fmt.Errorf("find %s: %w", collection, err)
	}
	defer cursor.Close(ctx)

	var raw []bson.M
	if err := cursor.All(ctx, &raw); err != nil {
		return nil, fmt.Errorf("decode %s: %w", collection, err)
	}

	docs := make([]Document, 0, len(raw))
	for _, r := range raw {
		docs = append(docs, Document(plainMap(r)))
	}
	return docs, nil
}

func (m *Mongo) FindOne(ctx context.Context, collection string, filter Filter) (Document, error) {
	var raw bson.M
	err := m.db.Collection(collection).FindOne(ctx, filterDoc(filter)).Decode(&raw)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find one %s: %w", collection, err)
	}
	return Document(plainMap(raw)), nil
}

func (m *Mongo) Exists(ctx context.Context, collection string, filter Filter) (bool, error) {
	n, err := m.db.Collection(collection).CountDocuments(ctx, filterDoc(filter), options.Count().SetLimit(1))
	if err != nil {
		return false, fmt.Errorf("count %s: %w", collection, err)
	}
	return n > 0, nil
}

func (m *Mongo) InsertOne(ctx context.Context, collection string, doc Document) error {
	if _, err := m.db.Collection(collection).InsertOne(ctx, bson.M(doc)); err != nil {
		return translate(collection, err)
	}
	return nil
}

func (m *Mongo) UpdateOne(ctx context.Context, collection string, filter Filter, update Update) (UpdateResult, error) {
	res, err := m.db.Collection(collection).UpdateOne(ctx, filterDoc(filter), updateSpec(update))
	if err != nil {
		return UpdateResult{}, translate(collection, err)
	}
	return UpdateResult{Matched: res.MatchedCount, Modified: res.ModifiedCount}, nil
}

func (m *Mongo) UpdateMany(ctx context.Context, collection string, filter Filter, update Update) (UpdateResult, error) {
	res, err := m.db.Collection(collection).UpdateMany(ctx, filterDoc(filter), updateSpec(update))
	if err != nil {
		return UpdateResult{}, translate(collection, err)
	}
	return UpdateResult{Matched: res.MatchedCount, Modified: res.ModifiedCount}, nil
}

func (m *Mongo) DeleteOne(ctx context.Context, collection string, filter Filter) (int64, error) {
	res, err := m.db.Collection(collection).DeleteOne(ctx, filterDoc(filter))
	if err != nil {
		return 0, fmt.Errorf("delete %s: %w", collection, err)
	}
	return res.DeletedCount, nil
}

func (m *Mongo) EnsureUniqueIndex(ctx context.Context, collection string, index UniqueIndex) error {
	model := indexModel(index)
	name, err := m.db.Collection(collection).Indexes().CreateOne(ctx, model)
	if err != nil {
		return fmt.Errorf("create index %s on %s: %w", index.Name, collection, err)
	}
	m.logger.Debug("Unique index ensured",
		zap.String("collection", collection),
		zap.String("index", name))
	return nil
}

func (m *Mongo) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if !m.transactions {
		return fn(ctx)
	}

	session, err := m.client.StartSession()
	if err != nil {
		return fmt.Errorf("start session: %w", err)
	}
	defer session.EndSession(ctx)

	_, err = session.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		return nil, fn(sc)
	})
	return err
}

func (m *Mongo) Ping(ctx context.Context) error {
	return m.client.Ping(ctx, readpref.Primary())
}

func (m *Mongo) Close(ctx context.Context) error {
	return m.client.Disconnect(ctx)
}

func sortSpec(fields []Sort) bson.D {
	spec := make(bson.D, 0, len(fields))
	for _, f := range fields {
		dir := 1
		if f.Desc {
			dir = -1
		}
		spec = append(spec, bson.E{Key: f.Field, Value: dir})
	}
	return spec
}

func updateSpec(u Update) bson.M {
	spec := bson.M{}
	if len(u.Set) > 0 {
		spec["$set"] = bson.M(u.Set)
	}
	if len(u.Unset) > 0 {
		unset := bson.M{}
		for _, f := range u.Unset {
			unset[f] = ""
		}
		spec["$unset"] = unset
	}
	return spec
}

func indexModel(index UniqueIndex) mongo.IndexModel {
	keys := make(bson.D, 0, len(index.Fields))
	for _, f := range index.Fields {
		keys = append(keys, bson.E{Key: f, Value: 1})
	}
	opts := options.Index().SetName(index.Name).SetUnique(true)
	if len(index.Fields) > 0 {
		opts.SetPartialFilterExpression(bson.M{index.Fields[0]: bson.M{"$gt": ""}})
	}
	return mongo.IndexModel{Keys: keys, Options: opts}
}

var dupIndexPattern = regexp.MustCompile(`index: (\S+) dup key`)

func translate(collection string, err error) error {
	if !mongo.IsDuplicateKeyError(err) {
		return fmt.Errorf("write %s: %w", collection, err)
	}
	index := ""
	if match := dupIndexPattern.FindStringSubmatch(err.Error()); match != nil {
		index = match[1]
	}
	return &DuplicateKeyError{Collection: collection, Index: index, Err: err}
}

// plainMap converts driver types into the plain values the rest of the service works with.
func plainMap(m bson.M) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = plain(v)
	}
	return out
}

func plain(v any) any {
	switch t := v.(type) {
	case bson.M:
		return plainMap(t)
	case map[string]any:
		return plainMap(bson.M(t))
	case bson.D:
		out := make(map[string]any, len(t))
		for _, e := range t {
			out[e.Key] = plain(e.Value)
		}
		return out
	case bson.A:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = plain(e)
		}
		return out
	case []any:
		return plain(bson.A(t))
	case primitive.DateTime:
		return t.Time().UTC()
	case primitive.ObjectID:
		return t.Hex()
	case int32:
		return int64(t)
	default:
		return v
	}
}

func filterDoc(f Filter) bson.M {
	if f == nil {
		return bson.M{}
	}
	return bson.M(f)
}
