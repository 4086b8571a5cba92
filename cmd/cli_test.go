package main

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"studyforest/internal/core/history"
	"studyforest/internal/core/model"
	"studyforest/internal/core/session"
	"studyforest/internal/storage"
)

// testEnv points settings and data at a temporary directory.
func testEnv(t *testing.T) (configPath, dataDir string) {
	t.Helper()
	dir := t.TempDir()
	dataDir = filepath.Join(dir, "data")
	t.Setenv("STUDYFOREST_DATA_DIR", dataDir)
	return filepath.Join(dir, "settings.yaml"), dataDir
}

func seedStore(t *testing.T, dataDir string, documents map[string]any) {
	t.Helper()
	store, err := storage.OpenBolt(filepath.Join(dataDir, "studyforest.db"))
	require.NoError(t, err)
	for key, value := range documents {
		require.NoError(t, storage.SaveDocument(store, key, value))
	}
	require.NoError(t, store.Close())
}

func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	app := newCLIApp()
	app.Writer = &out
	err := app.Run(append([]string{"studyforest"}, args...))
	return out.String(), err
}

func TestHistoryJSON(t *testing.T) {
	configPath, dataDir := testEnv(t)
	start := time.Date(2026, 3, 2, 9, 0, 0, 0, time.Local)
	entry := history.NewEntry("01HISTORY", model.PhaseFocus, start, start.Add(2*time.Hour), 2*time.Hour)
	seedStore(t, dataDir, map[string]any{storage.KeySessionHistory: []history.Entry{entry}})

	out, err := runCLI(t, "--config", configPath, "history", "--json")
	require.NoError(t, err)

	var entries []history.Entry
	require.NoError(t, json.Unmarshal([]byte(out), &entries))
	require.Len(t, entries, 1)
	assert.Equal(t, "2h 0m", entries[0].DurationLabel)
}

func TestHistoryEmpty(t *testing.T) {
	configPath, _ := testEnv(t)

	out, err := runCLI(t, "--config", configPath, "history")
	require.NoError(t, err)
	assert.Equal(t, "No completed phases yet\n", out)
}

func TestStatusReportsIdle(t *testing.T) {
	configPath, _ := testEnv(t)

	out, err := runCLI(t, "--config", configPath, "status")
	require.NoError(t, err)

	var status statusOutput
	require.NoError(t, json.Unmarshal([]byte(out), &status))
	assert.Equal(t, session.StateIdle, status.State)
	assert.Equal(t, "00:00:00", status.Remaining)
	assert.Empty(t, status.Phase)
}

func TestClearForest(t *testing.T) {
	configPath, dataDir := testEnv(t)
	plants := []history.Plant{
		{ID: "1", Kind: history.KindTree, Species: "Oak Tree", PlantedAt: time.Now()},
		{ID: "2", Kind: history.KindBush, Species: "Fern", PlantedAt: time.Now()},
	}
	seedStore(t, dataDir, map[string]any{storage.KeyForest: plants})

	out, err := runCLI(t, "--config", configPath, "forest")
	require.NoError(t, err)
	assert.Contains(t, out, "2 plants grown")
	assert.Contains(t, out, "Oak Tree")

	_, err = runCLI(t, "--config", configPath, "clear", "--forest")
	require.NoError(t, err)

	out, err = runCLI(t, "--config", configPath, "forest", "--json")
	require.NoError(t, err)
	assert.JSONEq(t, `[]`, out)
}

func TestClearRequiresTarget(t *testing.T) {
	configPath, _ := testEnv(t)

	_, err := runCLI(t, "--config", configPath, "clear")
	require.Error(t, err)
}

func TestSpaceListsReplicatedDocuments(t *testing.T) {
	configPath, dataDir := testEnv(t)
	t.Setenv("STUDYFOREST_SYNC_PATH", filepath.Join(dataDir, "..", "sync", "shared.db"))

	_, err := runCLI(t, "--config", configPath, "clear", "--history")
	require.NoError(t, err)

	out, err := runCLI(t, "--config", configPath, "space")
	require.NoError(t, err)

	var output struct {
		SpaceID     string        `json:"spaceId"`
		SyncEnabled bool          `json:"syncEnabled"`
		Documents   []spaceRecord `json:"documents"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &output))
	_, err = uuid.Parse(output.SpaceID)
	require.NoError(t, err)
	assert.True(t, output.SyncEnabled)
	require.Len(t, output.Documents, 1)
	assert.Equal(t, storage.KeySessionHistory, output.Documents[0].Key)
}

func TestPluralPlants(t *testing.T) {
	assert.Equal(t, "1 plant", pluralPlants(1))
	assert.Equal(t, "1,200 plants", pluralPlants(1200))
}
