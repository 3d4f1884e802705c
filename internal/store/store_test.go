package store_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Butros55/studysync-ai-study-c-sub002/internal/domain"
	"github.com/Butros55/studysync-ai-study-c-sub002/internal/store"
	"github.com/Butros55/studysync-ai-study-c-sub002/internal/testutil"
)

func TestSQLiteStore_RoundtripAndNotFound(t *testing.T) {
	kv := testutil.NewTestStore(t)
	ctx := context.Background()

	type payload struct {
		Name  string `json:"name"`
		Count int    `json:"count"`
	}

	require.NoError(t, kv.Set(ctx, "c1", "k1", payload{Name: "a", Count: 1}))

	var got payload
	require.NoError(t, kv.Get(ctx, "c1", "k1", &got))
	assert.Equal(t, payload{Name: "a", Count: 1}, got)

	err := kv.Get(ctx, "c1", "missing", &got)
	assert.True(t, store.IsNotFound(err))

	err = kv.Get(ctx, "other-collection", "k1", &got)
	assert.True(t, store.IsNotFound(err), "keys are scoped per collection")
}

func TestSQLiteStore_SetReplacesAndDeleteIsIdempotent(t *testing.T) {
	kv := testutil.NewTestStore(t)
	ctx := context.Background()

	require.NoError(t, kv.Set(ctx, "c1", "k1", map[string]int{"v": 1}))
	require.NoError(t, kv.Set(ctx, "c1", "k1", map[string]int{"v": 2}))

	var got map[string]int
	require.NoError(t, kv.Get(ctx, "c1", "k1", &got))
	assert.Equal(t, 2, got["v"])

	require.NoError(t, kv.Delete(ctx, "c1", "k1"))
	require.NoError(t, kv.Delete(ctx, "c1", "k1"), "deleting a missing record is not an error")
	assert.True(t, store.IsNotFound(kv.Get(ctx, "c1", "k1", &got)))
}

func TestSQLiteStore_ListInKeyOrder(t *testing.T) {
	kv := testutil.NewTestStore(t)
	ctx := context.Background()

	require.NoError(t, kv.Set(ctx, "c1", "b", 2))
	require.NoError(t, kv.Set(ctx, "c1", "a", 1))
	require.NoError(t, kv.Set(ctx, "c2", "z", 3))

	var keys []string
	require.NoError(t, kv.List(ctx, "c1", func(key string, raw []byte) error {
		keys = append(keys, key)
		return nil
	}))
	assert.Equal(t, []string{"a", "b"}, keys)
}

func TestAnalysisRepo_ListByModule(t *testing.T) {
	kv := testutil.NewTestStore(t)
	repo := store.NewAnalysisRepo(kv)
	ctx := context.Background()

	require.NoError(t, repo.Put(ctx, &domain.DocumentAnalysisRecord{
		ID: "r1", DocumentID: "doc-1", ModuleID: "mod-1", Status: domain.StatusDone,
	}))
	require.NoError(t, repo.Put(ctx, &domain.DocumentAnalysisRecord{
		ID: "r2", DocumentID: "doc-2", ModuleID: "mod-2", Status: domain.StatusDone,
	}))

	recs, err := repo.ListByModule(ctx, "mod-1")
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, "doc-1", recs[0].DocumentID)

	all, err := repo.ListAll(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestProfileRepo_Invalidate(t *testing.T) {
	kv := testutil.NewTestStore(t)
	repo := store.NewProfileRepo(kv)
	ctx := context.Background()

	require.NoError(t, repo.Put(ctx, &domain.ModuleProfileRecord{
		ModuleID:            "mod-1",
		SourceHashAggregate: "abc",
		Status:              domain.StatusDone,
	}))
	require.NoError(t, repo.Invalidate(ctx, "mod-1"))

	rec, err := repo.Get(ctx, "mod-1")
	require.NoError(t, err)
	assert.Empty(t, rec.SourceHashAggregate)
	assert.Equal(t, domain.StatusQueued, rec.Status)

	err = repo.Invalidate(ctx, "mod-missing")
	assert.True(t, store.IsNotFound(err))
}

func TestCoverageRepo_IncrementCreatesAndGrows(t *testing.T) {
	kv := testutil.NewTestStore(t)
	repo := store.NewCoverageRepo(kv)
	ctx := context.Background()
	now := time.Date(2026, 4, 1, 10, 0, 0, 0, time.UTC)

	require.NoError(t, repo.Increment(ctx, "mod-1", "top-a", "KV-Diagramm", domain.DifficultyEasy, now))
	require.NoError(t, repo.Increment(ctx, "mod-1", "top-a", "KV-Diagramm", domain.DifficultyMedium, now.Add(time.Hour)))

	rec, err := repo.Get(ctx, "mod-1", "top-a")
	require.NoError(t, err)
	assert.Equal(t, 2, rec.TasksGeneratedCount)
	assert.Equal(t, 1, rec.ByDifficulty.Easy)
	assert.Equal(t, 1, rec.ByDifficulty.Medium)
	require.NotNil(t, rec.LastGeneratedAt)
	assert.Equal(t, now.Add(time.Hour), *rec.LastGeneratedAt)
}

func TestQueueRepo_LoadEmptyAndRoundtrip(t *testing.T) {
	kv := testutil.NewTestStore(t)
	repo := store.NewQueueRepo(kv)
	ctx := context.Background()

	snap, err := repo.Load(ctx)
	require.NoError(t, err)
	assert.Empty(t, snap.Pending)
	assert.Empty(t, snap.Current)

	snap.Pending = []string{"doc-1", "doc-2"}
	snap.Current = "doc-0"
	require.NoError(t, repo.Save(ctx, snap))

	loaded, err := repo.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"doc-1", "doc-2"}, loaded.Pending)
	assert.Equal(t, "doc-0", loaded.Current)
}
