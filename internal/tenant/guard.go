// Package tenant decides which tenant a collection operation runs under.
//
// Repositories only build storage predicates through a Scope, and a Scope can
// only be obtained from For, so a tenant-scoped collection cannot be queried
// without the cliente_id predicate.
package tenant

import (
	"strings"

	"tinbr-service/internal/apperror"
	"tinbr-service/internal/model"
)

// Operation is the kind of access a scope is requested for.
type Operation int

const (
	Read Operation = iota
	Write
)

// Scope is a resolved tenant binding for one collection.
type Scope struct {
	collection string
	tenantID   string
}

// For validates the declared tenant for an operation on col.
func For(col model.Collection, op Operation, tenantID string) (Scope, error) {
	tenantID = strings.TrimSpace(tenantID)
	if !col.TenantScoped {
		return Scope{collection: col.Name}, nil
	}
	if tenantID == "" {
		if op == Read && col.SharedReads {
			return Scope{collection: col.Name}, nil
		}
		return Scope{}, apperror.MissingTenant()
	}
	return Scope{collection: col.Name, tenantID: tenantID}, nil
}

// Collection returns the collection the scope was resolved for.
func (s Scope) Collection() string { return s.collection }

// TenantID returns the bound tenant, or "" for unbound scopes.
func (s Scope) TenantID() string { return s.tenantID }

// Bound reports whether predicates built from s carry a tenant.
func (s Scope) Bound() bool { return s.tenantID != "" }

// Filter copies extra and, for bound scopes, pins cliente_id to the scope's tenant.
// A cliente_id inside extra never wins over the scope.
func (s Scope) Filter(extra map[string]any) map[string]any {
	out := make(map[string]any, len(extra)+1)
	for k, v := range extra {
		out[k] = v
	}
	if s.Bound() {
		out[model.FieldTenantID] = s.tenantID
	}
	return out
}
