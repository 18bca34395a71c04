// Package repository implements the generic, tenant-scoped collection repository.
//
// Every write goes through the same steps: normalize the payload, resolve the
// tenant scope, check unique fields, handle the password field and stamp
// timestamps. Per-collection behaviour comes only from model.Collection.
package repository

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"tinbr-service/internal/apperror"
	"tinbr-service/internal/credential"
	"tinbr-service/internal/model"
	"tinbr-service/internal/normalize"
	"tinbr-service/internal/store"
	"tinbr-service/internal/tenant"
	metrics "tinbr-service/prometheus"
)

// DefaultLimit caps List when no WithLimit option is given.
const DefaultLimit = 1000

// Repository runs the CRUD operations of one collection.
type Repository struct {
	col    model.Collection
	store  store.Store
	unique *UniquenessValidator
	logger *zap.Logger

	limit int64
	now   func() time.Time
}

// Option configures a Repository.
type Option func(*Repository)

// WithLimit sets the default and maximum number of documents returned by List.
func WithLimit(n int) Option {
	return func(r *Repository) {
		if n > 0 {
			r.limit = int64(n)
		}
	}
}

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) Option {
	return func(r *Repository) { r.now = now }
}

// New creates a repository for col on top of s.
func New(col model.Collection, s store.Store, logger *zap.Logger, opts ...Option) *Repository {
	r := &Repository{
		col:    col,
		store:  s,
		unique: NewUniquenessValidator(s),
		logger: logger.With(zap.String("collection", col.Name)),
		limit:  DefaultLimit,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Collection returns the configuration the repository was built with.
func (r *Repository) Collection() model.Collection {
	return r.col
}

// List returns the documents matching q under the tenant's scope.
func (r *Repository) List(ctx context.Context, tenantID string, q Query) ([]map[string]any, error) {
	scope, err := tenant.For(r.col, tenant.Read, tenantID)
	if err != nil {
		return nil, err
	}

	filters := normalize.Document(q.Filters)
	delete(filters, model.FieldTenantID)
	if err := r.checkQuery(filters, q.Sort); err != nil {
		return nil, err
	}

	limit := q.Limit
	if limit <= 0 || limit > r.limit {
		limit = r.limit
	}

	docs, err := r.store.Find(ctx, r.col.Name, scope.Filter(filters), store.FindOptions{
		Sort:  q.Sort,
		Limit: limit,
	})
	if err != nil {
		return nil, apperror.Storage(err)
	}

	out := make([]map[string]any, 0, len(docs))
	for _, d := range docs {
		out = append(out, r.col.Redact(d))
	}
	metrics.RecordCollectionOperation(r.col.Name, "list")
	return out, nil
}

// Get returns one document by id under the tenant's scope.
func (r *Repository) Get(ctx context.Context, tenantID, id string) (map[string]any, error) {
	scope, err := tenant.For(r.col, tenant.Read, tenantID)
	if err != nil {
		return nil, err
	}

	doc, err := r.store.FindOne(ctx, r.col.Name, scope.Filter(map[string]any{model.FieldID: id}))
	if errors.Is(err, store.ErrNotFound) {
		return nil, apperror.NotFound("registro")
	}
	if err != nil {
		return nil, apperror.Storage(err)
	}

	metrics.RecordCollectionOperation(r.col.Name, "get")
	return r.col.Redact(doc), nil
}

// Create inserts payload under the tenant and returns the new id.
func (r *Repository) Create(ctx context.Context, tenantID string, payload map[string]any) (string, error) {
	if err := r.writable(); err != nil {
		return "", err
	}

	doc := r.normalize(payload)
	scope, err := tenant.For(r.col, tenant.Write, tenantID)
	if err != nil {
		return "", err
	}

	delete(doc, model.FieldID)
	delete(doc, model.FieldTenantID)
	if scope.Bound() {
		doc[model.FieldTenantID] = scope.TenantID()
	}
	for k, v := range r.col.Defaults {
		if _, ok := doc[k]; !ok {
			doc[k] = v
		}
	}

	if err := r.checkPassword(doc); err != nil {
		return "", err
	}
	if err := r.unique.Check(ctx, r.col, scope, doc, ""); err != nil {
		return "", err
	}
	if err := r.hashPassword(doc); err != nil {
		return "", err
	}

	id := uuid.NewString()
	now := r.now().UTC()
	doc[model.FieldID] = id
	doc[model.FieldCreatedAt] = now
	doc[model.FieldUpdatedAt] = now

	if err := r.store.InsertOne(ctx, r.col.Name, doc); err != nil {
		return "", r.writeError("create", err)
	}

	r.logger.Info("Document created", zap.String("id", id), zap.String("cliente_id", scope.TenantID()))
	metrics.RecordCollectionOperation(r.col.Name, "create")
	return id, nil
}

// Update applies payload as a partial update. _id, cliente_id and createdAt are ignored.
func (r *Repository) Update(ctx context.Context, tenantID, id string, payload map[string]any) error {
	if err := r.writable(); err != nil {
		return err
	}

	doc := r.normalize(payload)
	scope, err := tenant.For(r.col, tenant.Write, tenantID)
	if err != nil {
		return err
	}

	for _, f := range r.col.Protected() {
		delete(doc, f)
	}

	match := scope.Filter(map[string]any{model.FieldID: id})
	found, err := r.store.Exists(ctx, r.col.Name, match)
	if err != nil {
		return apperror.Storage(err)
	}
	if !found {
		return apperror.NotFound("registro")
	}

	if err := r.checkPassword(doc); err != nil {
		return err
	}
	if err := r.unique.Check(ctx, r.col, scope, doc, id); err != nil {
		return err
	}
	if err := r.hashPassword(doc); err != nil {
		return err
	}
	doc[model.FieldUpdatedAt] = r.now().UTC()

	res, err := r.store.UpdateOne(ctx, r.col.Name, match, store.Update{Set: doc})
	if err != nil {
		return r.writeError("update", err)
	}
	if res.Matched == 0 {
		return apperror.NotFound("registro")
	}

	r.logger.Info("Document updated", zap.String("id", id), zap.String("cliente_id", scope.TenantID()))
	metrics.RecordCollectionOperation(r.col.Name, "update")
	return nil
}

// Delete removes one document by id under the tenant's scope.
func (r *Repository) Delete(ctx context.Context, tenantID, id string) error {
	if err := r.writable(); err != nil {
		return err
	}

	scope, err := tenant.For(r.col, tenant.Write, tenantID)
	if err != nil {
		return err
	}

	n, err := r.store.DeleteOne(ctx, r.col.Name, scope.Filter(map[string]any{model.FieldID: id}))
	if err != nil {
		return apperror.Storage(err)
	}
	if n == 0 {
		return apperror.NotFound("registro")
	}

	r.logger.Info("Document deleted", zap.String("id", id), zap.String("cliente_id", scope.TenantID()))
	metrics.RecordCollectionOperation(r.col.Name, "delete")
	return nil
}

// EnsureIndexes creates the storage-level unique indexes backing UniqueFields.
func (r *Repository) EnsureIndexes(ctx context.Context) error {
	for _, field := range r.col.UniqueFields {
		fields := []string{field}
		if r.col.TenantScoped {
			fields = append(fields, model.FieldTenantID)
		}
		idx := store.UniqueIndex{Name: r.col.IndexName(field), Fields: fields}
		if err := r.store.EnsureUniqueIndex(ctx, r.col.Name, idx); err != nil {
			return err
		}
	}
	return nil
}

func (r *Repository) writable() error {
	if r.col.ReadOnly {
		return apperror.Validation("", "a coleção %s é somente leitura", r.col.Name)
	}
	return nil
}

func (r *Repository) normalize(payload map[string]any) map[string]any {
	doc := normalize.Document(payload)
	if f := r.col.EmailField; f != "" {
		if s, ok := doc[f].(string); ok {
			doc[f] = normalize.Email(s)
		}
	}
	if f := r.col.DocumentField; f != "" {
		if v, ok := doc[f]; ok && v != nil {
			doc[f] = normalize.Digits(normalize.TenantID(v))
		}
	}
	// unique values are compared and indexed as strings, so 5 and "5" collide
	for _, f := range r.col.UniqueFields {
		v, ok := store.Lookup(doc, f)
		if !ok || !isScalar(v) {
			continue
		}
		if _, isString := v.(string); !isString {
			store.SetPath(doc, f, normalize.TenantID(v))
		}
	}
	return doc
}

func isScalar(v any) bool {
	switch v.(type) {
	case nil, map[string]any, store.Document, []any:
		return false
	default:
		return true
	}
}

// checkQuery rejects operator keys and any filter or sort path that reaches
// the password field. Filter values must be plain values, not sub-documents.
func (r *Repository) checkQuery(filters map[string]any, sort []store.Sort) error {
	for k, v := range filters {
		if err := r.checkQueryField(k, k); err != nil {
			return err
		}
		switch v.(type) {
		case map[string]any, store.Document:
			return apperror.Validation(k, "valor de filtro inválido para %s", k)
		}
	}
	for _, s := range sort {
		if err := r.checkQueryField("sort", s.Field); err != nil {
			return err
		}
	}
	return nil
}

func (r *Repository) checkQueryField(param, field string) error {
	if field == "" || strings.HasPrefix(field, "$") || strings.Contains(field, ".$") {
		return apperror.Validation(param, "campo de consulta inválido: %s", field)
	}
	if pw := r.col.PasswordField; pw != "" {
		if field == pw || strings.HasPrefix(field, pw+".") || strings.HasPrefix(pw, field+".") {
			return apperror.Validation(param, "campo de consulta não permitido: %s", field)
		}
	}
	return nil
}

func (r *Repository) checkPassword(doc map[string]any) error {
	if r.col.PasswordField == "" {
		return nil
	}
	v, ok := store.Lookup(doc, r.col.PasswordField)
	if !ok {
		return nil
	}
	pwd, isString := v.(string)
	if !isString || !credential.ValidateStrength(pwd) {
		return apperror.WeakPassword(r.col.PasswordField)
	}
	return nil
}

func (r *Repository) hashPassword(doc map[string]any) error {
	if r.col.PasswordField == "" {
		return nil
	}
	v, ok := store.Lookup(doc, r.col.PasswordField)
	if !ok {
		return nil
	}
	hash, err := credential.Hash(v.(string))
	if err != nil {
		return err
	}
	store.SetPath(doc, r.col.PasswordField, hash)
	return nil
}

func (r *Repository) writeError(op string, err error) error {
	translated := r.unique.Translate(r.col, err)
	if apperror.Is(translated, apperror.KindStorage) {
		r.logger.Error("Storage write failed", zap.String("operation", op), zap.Error(err))
	} else {
		r.logger.Warn("Unique index rejected write", zap.String("operation", op), zap.Error(err))
	}
	return translated
}
