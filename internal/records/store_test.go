package records

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fintrack/internal/core"
)

type fakeKV struct {
	data    map[string][]byte
	failPut bool
}

func newFakeKV() *fakeKV {
	return &fakeKV{data: make(map[string][]byte)}
}

func (f *fakeKV) Get(_ context.Context, key string) ([]byte, bool, error) {
	v, ok := f.data[key]
	return v, ok, nil
}

func (f *fakeKV) Put(_ context.Context, key string, value []byte) error {
	if f.failPut {
		return errors.New("disk full")
	}
	f.data[key] = value
	return nil
}

func tx(id string, typ core.TransactionType, cents int64, category string) core.Transaction {
	return core.Transaction{
		ID: id, Type: typ, Amount: core.Money{Cents: cents},
		Category: category, Date: core.NewDate(2024, 1, 15),
	}
}

func TestLoadMissingKeysMeansEmpty(t *testing.T) {
	store := NewStore(newFakeKV())
	require.NoError(t, store.Load(context.Background()))

	snap, version := store.Snapshot()
	assert.Empty(t, snap.Transactions)
	assert.Empty(t, snap.Goals)
	assert.Equal(t, uint64(1), version)
}

func TestLoadMalformedCollectionFallsBackToEmpty(t *testing.T) {
	kv := newFakeKV()
	kv.data[KeyTransactions] = []byte(`{"not":"an array"`)
	kv.data[KeyGoals] = []byte(`[{"id":"g1","name":"ok","target":10,"current":0,"category":"","deadline":""}]`)

	store := NewStore(kv)
	require.NoError(t, store.Load(context.Background()))

	snap, _ := store.Snapshot()
	assert.Empty(t, snap.Transactions, "malformed collection is fatal to that collection only")
	require.Len(t, snap.Goals, 1, "the healthy collection still loads")
	assert.Equal(t, "g1", snap.Goals[0].ID)
}

func TestAddTransactionPrependsAndPersists(t *testing.T) {
	kv := newFakeKV()
	store := NewStore(kv)
	ctx := context.Background()

	require.NoError(t, store.AddTransaction(ctx, tx("a", core.Income, 100000, "Salário")))
	require.NoError(t, store.AddTransaction(ctx, tx("b", core.Expense, 30000, "Alimentação")))

	snap, _ := store.Snapshot()
	require.Len(t, snap.Transactions, 2)
	assert.Equal(t, "b", snap.Transactions[0].ID, "newest first")
	assert.Equal(t, "a", snap.Transactions[1].ID)

	// The persisted collection reloads identically, order included.
	reloaded := NewStore(kv)
	require.NoError(t, reloaded.Load(ctx))
	snap2, _ := reloaded.Snapshot()
	assert.Equal(t, snap.Transactions, snap2.Transactions)
}

func TestAddGoalAppends(t *testing.T) {
	store := NewStore(newFakeKV())
	ctx := context.Background()

	require.NoError(t, store.AddGoal(ctx, core.Goal{ID: "g1", Name: "a", Target: core.Money{Cents: 1000}}))
	require.NoError(t, store.AddGoal(ctx, core.Goal{ID: "g2", Name: "b", Target: core.Money{Cents: 2000}}))

	snap, _ := store.Snapshot()
	require.Len(t, snap.Goals, 2)
	assert.Equal(t, "g1", snap.Goals[0].ID, "append order is creation order")
}

func TestReplaceGoal(t *testing.T) {
	store := NewStore(newFakeKV())
	ctx := context.Background()
	require.NoError(t, store.AddGoal(ctx, core.Goal{ID: "g1", Name: "a", Target: core.Money{Cents: 1000}}))

	updated := core.Goal{ID: "g1", Name: "a", Target: core.Money{Cents: 1000}, Current: core.Money{Cents: 250}}
	require.NoError(t, store.ReplaceGoal(ctx, updated))

	g, ok := store.FindGoal("g1")
	require.True(t, ok)
	assert.Equal(t, int64(250), g.Current.Cents)

	err := store.ReplaceGoal(ctx, core.Goal{ID: "missing", Name: "x", Target: core.Money{Cents: 1}})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDurabilityFailureKeepsMutation(t *testing.T) {
	kv := newFakeKV()
	kv.failPut = true
	store := NewStore(kv)

	err := store.AddTransaction(context.Background(), tx("a", core.Income, 100, "Outros"))
	require.ErrorIs(t, err, ErrDurability)

	snap, _ := store.Snapshot()
	assert.Len(t, snap.Transactions, 1, "in-memory mutation survives a failed durability write")
}

func TestSnapshotVersionIncreases(t *testing.T) {
	store := NewStore(newFakeKV())
	ctx := context.Background()

	_, v0 := store.Snapshot()
	require.NoError(t, store.AddTransaction(ctx, tx("a", core.Income, 100, "Outros")))
	_, v1 := store.Snapshot()
	require.NoError(t, store.AddGoal(ctx, core.Goal{ID: "g", Name: "n", Target: core.Money{Cents: 1}}))
	_, v2 := store.Snapshot()

	assert.Greater(t, v1, v0)
	assert.Greater(t, v2, v1)
}

func TestSnapshotIsACopy(t *testing.T) {
	store := NewStore(newFakeKV())
	ctx := context.Background()
	require.NoError(t, store.AddTransaction(ctx, tx("a", core.Income, 100, "Outros")))

	snap, _ := store.Snapshot()
	snap.Transactions[0].ID = "mutated"

	fresh, _ := store.Snapshot()
	assert.Equal(t, "a", fresh.Transactions[0].ID)
}
