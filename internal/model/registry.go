package model

import "sort"

// Collection names
const (
	Users      = "users"
	Tenants    = "clientes"
	Owners     = "proprietarios"
	Properties = "propriedades"
	Operations = "operacoes"
	Market     = "mercado"
	Tokens     = "tks"
	References = "referencia"
	Players    = "players"
	AuditLog   = "historico"
	Quotes     = "cotacoes"
)

var collections = map[string]Collection{
	Tenants: {
		Name:          Tenants,
		UniqueFields:  []string{FieldDocument},
		PasswordField: "responsavel." + FieldPassword,
		DocumentField: FieldDocument,
	},
	Users: {
		Name:          Users,
		TenantScoped:  true,
		UniqueFields:  []string{FieldEmail, FieldDocument},
		PasswordField: FieldPassword,
		EmailField:    FieldEmail,
		DocumentField: FieldDocument,
		Defaults:      map[string]any{FieldLevel: 1},
	},
	Owners: {
		Name:          Owners,
		TenantScoped:  true,
		UniqueFields:  []string{FieldDocument},
		DocumentField: FieldDocument,
		Defaults:      map[string]any{FieldStatus: string(StatusActive)},
	},
	Properties: {
		Name:         Properties,
		TenantScoped: true,
		UniqueFields: []string{FieldCode},
		Defaults:     map[string]any{FieldStatus: string(StatusActive)},
	},
	Operations: {
		Name:         Operations,
		TenantScoped: true,
		UniqueFields: []string{FieldCode, FieldTxID},
	},
	Market: {
		Name:         Market,
		TenantScoped: true,
		SharedReads:  true,
		UniqueFields: []string{FieldCode},
	},
	Tokens: {
		Name:         Tokens,
		TenantScoped: true,
		UniqueFields: []string{FieldCode, FieldToken},
	},
	References: {
		Name:         References,
		TenantScoped: true,
		UniqueFields: []string{FieldCode},
	},
	Players: {
		Name:          Players,
		TenantScoped:  true,
		UniqueFields:  []string{FieldEmail, FieldDocument},
		PasswordField: FieldPassword,
		EmailField:    FieldEmail,
		DocumentField: FieldDocument,
	},
	AuditLog: {
		Name:         AuditLog,
		TenantScoped: true,
		ReadOnly:     true,
	},
}

// Lookup returns the configuration of a known collection.
func Lookup(name string) (Collection, bool) {
	c, ok := collections[name]
	return c, ok
}

// MustLookup is Lookup for names fixed at compile time.
func MustLookup(name string) Collection {
	c, ok := collections[name]
	if !ok {
		panic("model: unknown collection " + name)
	}
	return c
}

// All returns every configured collection sorted by name.
func All() []Collection {
	out := make([]Collection, 0, len(collections))
	for _, c := range collections {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}
