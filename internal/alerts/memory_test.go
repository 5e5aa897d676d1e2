package alerts

import (
	"context"
	"testing"
	"time"

	"github.com/phishguard/phishing-detector/internal/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestStore(t *testing.T) *MemoryStore {
	t.Helper()
	store := NewMemoryStore(zap.NewNop(), time.Hour, 0)
	t.Cleanup(store.Stop)
	return store
}

func alertAt(id string, severity core.RiskLevel, createdAt time.Time) *core.Alert {
	return &core.Alert{
		ID:        id,
		Severity:  severity,
		Message:   "test alert " + id,
		CreatedAt: createdAt,
	}
}

func TestMemoryStore_SaveGet(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	alert := alertAt("a1", core.RiskHigh, time.Now())
	require.NoError(t, store.Save(ctx, alert))

	got, err := store.Get(ctx, "a1")
	require.NoError(t, err)
	assert.Equal(t, "a1", got.ID)
	assert.Equal(t, core.RiskHigh, got.Severity)

	// The store hands out copies, not its own entries.
	got.Severity = core.RiskLow
	again, err := store.Get(ctx, "a1")
	require.NoError(t, err)
	assert.Equal(t, core.RiskHigh, again.Severity)
}

func TestMemoryStore_GetMissing(t *testing.T) {
	store := newTestStore(t)

	_, err := store.Get(context.Background(), "nope")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryStore_ListNewestFirst(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	now := time.Now()

	require.NoError(t, store.Save(ctx, alertAt("old", core.RiskLow, now.Add(-2*time.Hour))))
	require.NoError(t, store.Save(ctx, alertAt("new", core.RiskHigh, now)))
	require.NoError(t, store.Save(ctx, alertAt("mid", core.RiskMedium, now.Add(-time.Hour))))

	list, err := store.List(ctx, false)
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, "new", list[0].ID)
	assert.Equal(t, "mid", list[1].ID)
	assert.Equal(t, "old", list[2].ID)
}

func TestMemoryStore_UnreadFilterAndMarkRead(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, alertAt("a1", core.RiskHigh, time.Now())))
	require.NoError(t, store.Save(ctx, alertAt("a2", core.RiskHigh, time.Now())))
	require.NoError(t, store.MarkRead(ctx, "a1"))

	unread, err := store.List(ctx, true)
	require.NoError(t, err)
	require.Len(t, unread, 1)
	assert.Equal(t, "a2", unread[0].ID)

	assert.ErrorIs(t, store.MarkRead(ctx, "missing"), ErrNotFound)
}

func TestMemoryStore_Acknowledge(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, alertAt("a1", core.RiskCritical, time.Now())))
	require.NoError(t, store.Acknowledge(ctx, "a1"))

	got, err := store.Get(ctx, "a1")
	require.NoError(t, err)
	assert.True(t, got.Acknowledged)
}

func TestMemoryStore_Stats(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, alertAt("a1", core.RiskHigh, time.Now())))
	require.NoError(t, store.Save(ctx, alertAt("a2", core.RiskHigh, time.Now())))
	require.NoError(t, store.Save(ctx, alertAt("a3", core.RiskCritical, time.Now())))
	require.NoError(t, store.MarkRead(ctx, "a1"))

	stats, err := store.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, stats.Total)
	assert.Equal(t, 2, stats.Unread)
	assert.Equal(t, 2, stats.BySeverity[core.RiskHigh])
	assert.Equal(t, 1, stats.BySeverity[core.RiskCritical])
}

func TestMemoryStore_CleanupDropsExpired(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, alertAt("stale", core.RiskLow, time.Now().Add(-2*time.Hour))))
	require.NoError(t, store.Save(ctx, alertAt("fresh", core.RiskLow, time.Now())))

	require.NoError(t, store.Cleanup(ctx))

	_, err := store.Get(ctx, "stale")
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = store.Get(ctx, "fresh")
	assert.NoError(t, err)
}
