package replication

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"studyforest/internal/storage"
)

func TestSQLiteBridgeLastWriteWins(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sync", "shared.db")
	bridge, err := OpenSQLite(path)
	require.NoError(t, err)
	defer bridge.Close()

	version, err := bridge.SchemaVersion()
	require.NoError(t, err)
	require.Equal(t, CurrentSchemaVersion, version)

	ctx := context.Background()
	_, ok, err := bridge.PullOnce(ctx, "space-a", storage.KeyForest)
	require.NoError(t, err)
	require.False(t, ok)

	require.NoError(t, bridge.Push(ctx, "space-a", storage.KeyForest, []byte(`[1]`)))
	require.NoError(t, bridge.Push(ctx, "space-a", storage.KeyForest, []byte(`[1,2]`)))
	require.NoError(t, bridge.Push(ctx, "space-b", storage.KeyForest, []byte(`[]`)))

	value, ok, err := bridge.PullOnce(ctx, "space-a", storage.KeyForest)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, `[1,2]`, string(value))

	records, err := bridge.List(ctx, "space-a")
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, storage.KeyForest, records[0].Key)
	assert.Equal(t, 5, records[0].Size)
}

func TestSQLiteBridgeSharedBetweenOpenHandles(t *testing.T) {
	path := filepath.Join(t.TempDir(), "shared.db")
	first, err := OpenSQLite(path)
	require.NoError(t, err)
	defer first.Close()
	second, err := OpenSQLite(path)
	require.NoError(t, err)
	defer second.Close()

	ctx := context.Background()
	require.NoError(t, first.Push(ctx, "space", storage.KeyReminderState, []byte(`{"dismissed":true}`)))

	value, ok, err := second.PullOnce(ctx, "space", storage.KeyReminderState)
	require.NoError(t, err)
	require.True(t, ok)
	require.JSONEq(t, `{"dismissed":true}`, string(value))
}

func TestReplicatorCoalescesAndFlushesOnClose(t *testing.T) {
	bridge := &countingBridge{Memory: NewMemory()}
	replicator := New(bridge, "space")

	for i := 0; i < 50; i++ {
		replicator.Push(storage.KeySessionHistory, []byte{byte('0' + i%10)})
	}
	replicator.Push(storage.KeySessionHistory, []byte(`["last"]`))
	replicator.Close()
	replicator.Close()

	value, ok, err := bridge.PullOnce(context.Background(), "space", storage.KeySessionHistory)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, `["last"]`, string(value))
	require.LessOrEqual(t, bridge.pushes(), 51)

	replicator.Push(storage.KeyForest, []byte(`[]`))
	_, ok, err = bridge.PullOnce(context.Background(), "space", storage.KeyForest)
	require.NoError(t, err)
	require.False(t, ok)
}

func TestReplicatorSurvivesBridgeErrors(t *testing.T) {
	bridge := NewMemory()
	bridge.Err = errors.New("offline")
	replicator := New(bridge, "space")

	replicator.Push(storage.KeyForest, []byte(`[]`))
	require.NotPanics(t, replicator.Close)
}

func TestSeedOnlyFillsAbsentKeys(t *testing.T) {
	ctx := context.Background()
	bridge := NewMemory()
	require.NoError(t, bridge.Push(ctx, "space", storage.KeySessionHistory, []byte(`[{"id":"remote"}]`)))
	require.NoError(t, bridge.Push(ctx, "space", storage.KeyForest, []byte(`[{"id":"remote"}]`)))
	require.NoError(t, bridge.Push(ctx, "space", storage.KeyReminderState, []byte(`null`)))

	store := storage.NewMemory()
	require.NoError(t, store.Save(storage.KeyForest, []byte(`[{"id":"local"}]`)))

	replicator := New(bridge, "space")
	defer replicator.Close()
	seeded := replicator.Seed(ctx, store, ReplicatedKeys...)

	require.Equal(t, []string{storage.KeySessionHistory}, seeded)
	history, _, err := store.Load(storage.KeySessionHistory)
	require.NoError(t, err)
	require.Equal(t, `[{"id":"remote"}]`, string(history))
	forest, _, err := store.Load(storage.KeyForest)
	require.NoError(t, err)
	require.Equal(t, `[{"id":"local"}]`, string(forest))
	_, ok, err := store.Load(storage.KeyReminderState)
	require.NoError(t, err)
	require.False(t, ok)
}

func TestSpaceIDIsGeneratedOnce(t *testing.T) {
	store := storage.NewMemory()

	first, err := SpaceID(store, "")
	require.NoError(t, err)
	_, err = uuid.Parse(first)
	require.NoError(t, err)

	second, err := SpaceID(store, "")
	require.NoError(t, err)
	require.Equal(t, first, second)

	joined, err := SpaceID(store, "  shared-room ")
	require.NoError(t, err)
	require.Equal(t, "shared-room", joined)

	again, err := SpaceID(store, "")
	require.NoError(t, err)
	require.Equal(t, first, again)
}

func TestSpaceIDReplacesCorruptValue(t *testing.T) {
	store := storage.NewMemory()
	require.NoError(t, store.Save(storage.KeySpaceID, []byte(`"not-a-uuid"`)))

	id, err := SpaceID(store, "")
	require.NoError(t, err)
	require.NotEqual(t, "not-a-uuid", id)
}

func TestPath(t *testing.T) {
	require.Equal(t, "abc/sessionHistory", Path("abc", storage.KeySessionHistory))
}

type countingBridge struct {
	*Memory
	mu    sync.Mutex
	count int
}

func (bridge *countingBridge) Push(ctx context.Context, namespace, key string, value []byte) error {
	bridge.mu.Lock()
	bridge.count++
	bridge.mu.Unlock()
	return bridge.Memory.Push(ctx, namespace, key, value)
}

func (bridge *countingBridge) pushes() int {
	bridge.mu.Lock()
	defer bridge.mu.Unlock()
	return bridge.count
}
