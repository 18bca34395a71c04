package cascade

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"tinbr-service/internal/apperror"
	"tinbr-service/internal/model"
	"tinbr-service/internal/repository"
	"tinbr-service/internal/store"
)

type fixture struct {
	store   *store.Memory
	owners  *repository.Repository
	props   *repository.Repository
	audit   *repository.Repository
	updater *Updater
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	s := store.NewMemory()
	log := zap.NewNop()
	return fixture{
		store:   s,
		owners:  repository.New(model.MustLookup(model.Owners), s, log),
		props:   repository.New(model.MustLookup(model.Properties), s, log),
		audit:   repository.New(model.MustLookup(model.AuditLog), s, log),
		updater: NewUpdater(s, log),
	}
}

func (f fixture) seedOwner(t *testing.T, tenantID, documento string, properties int) string {
	t.Helper()
	ctx := context.Background()
	ownerID, err := f.owners.Create(ctx, tenantID, map[string]any{"documento": documento, "nome": "Dono"})
	require.NoError(t, err)
	for i := 0; i < properties; i++ {
		_, err := f.props.Create(ctx, tenantID, map[string]any{
			"codigo":          fmt.Sprintf("%s-%s-%d", tenantID, ownerID, i),
			"proprietario_id": ownerID,
		})
		require.NoError(t, err)
	}
	return ownerID
}

func TestBlockThenUnblock(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	ownerID := f.seedOwner(t, "T1", "111", 3)
	other := f.seedOwner(t, "T1", "222", 2)

	res, err := f.updater.Block(ctx, "T1", ownerID, "inadimplência", "admin")
	require.NoError(t, err)
	assert.Equal(t, Result{OwnerID: ownerID, Status: model.StatusBlocked, Affected: 3}, res)

	owner, err := f.owners.Get(ctx, "T1", ownerID)
	require.NoError(t, err)
	assert.Equal(t, "bloqueado", owner["status"])
	assert.Equal(t, "inadimplência", owner["motivo_bloqueio"])
	assert.Equal(t, "admin", owner["bloqueado_por"])
	assert.Contains(t, owner, "bloqueado_em")

	blocked, err := f.props.List(ctx, "T1", repository.Query{Filters: map[string]any{"proprietario_id": ownerID}})
	require.NoError(t, err)
	require.Len(t, blocked, 3)
	for _, p := range blocked {
		assert.Equal(t, "bloqueado", p["status"])
		assert.Equal(t, "inadimplência", p["motivo_bloqueio"])
	}

	untouched, err := f.props.List(ctx, "T1", repository.Query{Filters: map[string]any{"proprietario_id": other}})
	require.NoError(t, err)
	for _, p := range untouched {
		assert.Equal(t, "ativo", p["status"])
	}

	entries, err := f.audit.List(ctx, "T1", repository.Query{})
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "bloqueio", entries[0]["acao"])
	assert.Equal(t, int64(3), entries[0]["propriedades_afetadas"])
	assert.Equal(t, ownerID, entries[0]["proprietario_id"])
	assert.Equal(t, "T1", entries[0]["cliente_id"])

	res, err = f.updater.Unblock(ctx, "T1", ownerID, "admin")
	require.NoError(t, err)
	assert.Equal(t, Result{OwnerID: ownerID, Status: model.StatusActive, Affected: 3}, res)

	owner, err = f.owners.Get(ctx, "T1", ownerID)
	require.NoError(t, err)
	assert.Equal(t, "ativo", owner["status"])
	assert.NotContains(t, owner, "motivo_bloqueio")
	assert.NotContains(t, owner, "bloqueado_por")
	assert.Equal(t, "admin", owner["desbloqueado_por"])

	active, err := f.props.List(ctx, "T1", repository.Query{Filters: map[string]any{"proprietario_id": ownerID}})
	require.NoError(t, err)
	for _, p := range active {
		assert.Equal(t, "ativo", p["status"])
		assert.NotContains(t, p, "motivo_bloqueio")
	}

	entries, err = f.audit.List(ctx, "T1", repository.Query{Sort: []store.Sort{{Field: "acao"}}})
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "desbloqueio", entries[1]["acao"])
}

func TestBlockIsTenantScoped(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	ownerID := f.seedOwner(t, "T1", "111", 2)

	_, err := f.updater.Block(ctx, "T2", ownerID, "x", "admin")
	assert.True(t, apperror.Is(err, apperror.KindNotFound))

	_, err = f.updater.Block(ctx, "", ownerID, "x", "admin")
	assert.True(t, apperror.Is(err, apperror.KindMissingTenant))

	entries, err := f.store.Find(ctx, model.AuditLog, nil, store.FindOptions{})
	require.NoError(t, err)
	assert.Empty(t, entries)

	owner, err := f.owners.Get(ctx, "T1", ownerID)
	require.NoError(t, err)
	assert.Equal(t, "ativo", owner["status"])
}

func TestBlockOwnerWithoutProperties(t *testing.T) {
	f := newFixture(t)
	ownerID := f.seedOwner(t, "T1", "111", 0)

	res, err := f.updater.Block(context.Background(), "T1", ownerID, "x", "admin")
	require.NoError(t, err)
	assert.Zero(t, res.Affected)
}
