package tenant

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tinbr-service/internal/apperror"
	"tinbr-service/internal/model"
)

func TestFor(t *testing.T) {
	users := model.MustLookup(model.Users)
	market := model.MustLookup(model.Market)
	tenants := model.MustLookup(model.Tenants)

	tests := []struct {
		name      string
		col       model.Collection
		op        Operation
		tenantID  string
		wantErr   bool
		wantBound bool
	}{
		{"scoped read without tenant", users, Read, "", true, false},
		{"scoped write without tenant", users, Write, "   ", true, false},
		{"scoped read with tenant", users, Read, "T1", false, true},
		{"shared read without tenant", market, Read, "", false, false},
		{"shared read with tenant", market, Read, "T1", false, true},
		{"shared write without tenant", market, Write, "", true, false},
		{"unscoped ignores tenant", tenants, Write, "T1", false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			scope, err := For(tt.col, tt.op, tt.tenantID)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, apperror.Is(err, apperror.KindMissingTenant))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantBound, scope.Bound())
			assert.Equal(t, tt.col.Name, scope.Collection())
		})
	}
}

func TestFilterPinsTenant(t *testing.T) {
	scope, err := For(model.MustLookup(model.Users), Read, " T1 ")
	require.NoError(t, err)
	assert.Equal(t, "T1", scope.TenantID())

	extra := map[string]any{"email": "a@x.com", "cliente_id": "T2"}
	f := scope.Filter(extra)

	assert.Equal(t, "T1", f["cliente_id"])
	assert.Equal(t, "a@x.com", f["email"])
	assert.Equal(t, "T2", extra["cliente_id"], "input must not be mutated")
}

func TestFilterUnbound(t *testing.T) {
	scope, err := For(model.MustLookup(model.Market), Read, "")
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"codigo": "M1"}, scope.Filter(map[string]any{"codigo": "M1"}))
}
