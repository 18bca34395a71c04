package credential

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"tinbr-service/internal/apperror"
	"tinbr-service/internal/model"
	"tinbr-service/internal/store"
)

func seedPasswords(t *testing.T) *store.Memory {
	t.Helper()
	s := store.NewMemory()
	hashed, err := Hash("Abcdef1!")
	require.NoError(t, err)

	for _, d := range []store.Document{
		{"_id": "u1", "cliente_id": "T1", "senha": "123456"},
		{"_id": "u2", "cliente_id": "T2", "senha": "senha"},
		{"_id": "u3", "cliente_id": "T1", "senha": hashed},
		{"_id": "u4", "cliente_id": "T1"},
	} {
		require.NoError(t, s.InsertOne(context.Background(), model.Users, d))
	}
	return s
}

func password(t *testing.T, s store.Store, id string) string {
	t.Helper()
	doc, err := s.FindOne(context.Background(), model.Users, store.Filter{"_id": id})
	require.NoError(t, err)
	v, _ := doc["senha"].(string)
	return v
}

func TestRehashTargets(t *testing.T) {
	s := seedPasswords(t)
	report, err := Rehash(context.Background(), s, model.MustLookup(model.Users),
		RehashOptions{Targets: []string{"123456"}}, zap.NewNop())
	require.NoError(t, err)

	assert.Equal(t, RehashReport{Scanned: 4, Converted: 1}, report)
	assert.True(t, Verify("123456", password(t, s, "u1")))
	assert.Equal(t, "senha", password(t, s, "u2"))
}

func TestRehashAllPlaintext(t *testing.T) {
	s := seedPasswords(t)
	before := password(t, s, "u3")

	report, err := Rehash(context.Background(), s, model.MustLookup(model.Users),
		RehashOptions{AllPlaintext: true}, zap.NewNop())
	require.NoError(t, err)

	assert.Equal(t, 2, report.Converted)
	assert.True(t, Verify("senha", password(t, s, "u2")))
	assert.Equal(t, before, password(t, s, "u3"))
}

func TestRehashDryRun(t *testing.T) {
	s := seedPasswords(t)
	report, err := Rehash(context.Background(), s, model.MustLookup(model.Users),
		RehashOptions{AllPlaintext: true, DryRun: true}, zap.NewNop())
	require.NoError(t, err)

	assert.Equal(t, 2, report.Converted)
	assert.Equal(t, "123456", password(t, s, "u1"))
}

func TestRehashRequiresSelection(t *testing.T) {
	_, err := Rehash(context.Background(), store.NewMemory(), model.MustLookup(model.Users),
		RehashOptions{}, zap.NewNop())
	assert.True(t, apperror.Is(err, apperror.KindValidation))

	_, err = Rehash(context.Background(), store.NewMemory(), model.MustLookup(model.Owners),
		RehashOptions{AllPlaintext: true}, zap.NewNop())
	assert.True(t, apperror.Is(err, apperror.KindValidation))
}
