package repository

import (
	"context"
	"errors"
	"strings"

	"tinbr-service/internal/apperror"
	"tinbr-service/internal/model"
	"tinbr-service/internal/store"
	"tinbr-service/internal/tenant"
)

// UniquenessValidator checks declared-unique fields against the documents
// already stored under the same scope.
type UniquenessValidator struct {
	store store.Store
}

// NewUniquenessValidator creates a validator reading from s.
func NewUniquenessValidator(s store.Store) *UniquenessValidator {
	return &UniquenessValidator{store: s}
}

// Check walks col.UniqueFields in order and stops at the first conflict.
// Empty values are skipped. excludeID, when set, is the record being updated.
func (v *UniquenessValidator) Check(ctx context.Context, col model.Collection, scope tenant.Scope, doc map[string]any, excludeID string) error {
	for _, field := range col.UniqueFields {
		value, ok := store.Lookup(doc, field)
		if !ok || isBlank(value) {
			continue
		}

		filter := map[string]any{field: value}
		if excludeID != "" {
			filter[model.FieldID] = store.Ne(excludeID)
		}

		exists, err := v.store.Exists(ctx, col.Name, scope.Filter(filter))
		if err != nil {
			return apperror.Storage(err)
		}
		if exists {
			return apperror.DuplicateField(field)
		}
	}
	return nil
}

// Translate turns a unique index violation raised by the store into the same
// duplicate error the pre-check would have produced.
func (v *UniquenessValidator) Translate(col model.Collection, err error) error {
	if err == nil {
		return nil
	}
	var dup *store.DuplicateKeyError
	if !errors.As(err, &dup) {
		return apperror.Storage(err)
	}
	if field, ok := col.FieldForIndex(dup.Index); ok {
		return apperror.DuplicateField(field)
	}
	if dup.Index == "_id_" {
		return apperror.DuplicateField(model.FieldID)
	}
	return apperror.Storage(err)
}

func isBlank(v any) bool {
	switch t := v.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(t) == ""
	default:
		return false
	}
}
