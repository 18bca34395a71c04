package model

import "strings"

// Collection is the per-collection configuration that drives the generic repository.
type Collection struct {
	Name string

	// TenantScoped collections carry cliente_id on every document and every predicate.
	TenantScoped bool

	// SharedReads lets list/get run without a tenant; the tenant, when given, still filters.
	SharedReads bool

	// ReadOnly collections reject writes through the generic repository.
	ReadOnly bool

	// UniqueFields are checked in this order, per tenant when TenantScoped,
	// globally otherwise.
	UniqueFields []string

	// PasswordField is a dotted path hashed on write and removed from responses.
	PasswordField string

	// EmailField values are stored lowercased, DocumentField values digits-only.
	EmailField    string
	DocumentField string

	// Defaults are applied on create for fields missing from the payload.
	Defaults map[string]any
}

// Protected fields never change through an update payload.
func (c Collection) Protected() []string {
	return []string{FieldID, FieldTenantID, FieldCreatedAt}
}

// IndexName is the storage-level unique index name for a unique field.
func (c Collection) IndexName(field string) string {
	return "uniq_" + strings.ReplaceAll(field, ".", "_")
}

// FieldForIndex resolves a unique index name back into the field it guards.
func (c Collection) FieldForIndex(index string) (string, bool) {
	for _, f := range c.UniqueFields {
		if c.IndexName(f) == index {
			return f, true
		}
	}
	return "", false
}

// Redact drops the password field from a document before it leaves the service.
func (c Collection) Redact(doc map[string]any) map[string]any {
	if c.PasswordField == "" || doc == nil {
		return doc
	}
	out := make(map[string]any, len(doc))
	for k, v := range doc {
		out[k] = v
	}
	head, rest, nested := strings.Cut(c.PasswordField, ".")
	if !nested {
		delete(out, head)
		return out
	}
	if sub, ok := out[head].(map[string]any); ok {
		out[head] = Collection{PasswordField: rest}.Redact(sub)
	}
	return out
}
