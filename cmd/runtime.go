package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"path/filepath"
	"time"

	"github.com/urfave/cli/v2"

	"studyforest/internal/alert"
	"studyforest/internal/config"
	"studyforest/internal/core/session"
	"studyforest/internal/playback"
	"studyforest/internal/replication"
	"studyforest/internal/storage"
)

const (
	seedTimeout   = 10 * time.Second
	ambienceTrack = 30 * time.Minute
)

// runtime holds what every command opens: settings, the document store and,
// when sync is enabled, the shared database and its replicator.
type runtime struct {
	settings     config.Settings
	settingsPath string
	dataPath     string
	store        *storage.BoltStore
	bridge       *replication.SQLiteBridge
	replicator   *replication.Replicator
	spaceID      string
}

func loadSettings(c *cli.Context) (config.Settings, error) {
	var (
		settings config.Settings
		err      error
	)
	if path := c.String("config"); path != "" {
		settings, err = storage.LoadSettingsFile(path)
	} else {
		settings, err = storage.LoadSettings(appName)
	}
	if err != nil {
		log.Printf("load settings: %v", err)
	}
	if err := config.ApplyEnv(&settings, c.StringSlice("env-file")...); err != nil {
		return settings, err
	}
	if err := settings.Validate(); err != nil {
		return settings, err
	}
	return settings, nil
}

// openRuntime loads settings and opens the store. With sync, remote history,
// forest and reminder state seed the keys that are absent locally.
func openRuntime(c *cli.Context) (*runtime, error) {
	settings, err := loadSettings(c)
	if err != nil {
		return nil, err
	}
	dataPath, err := storage.DataPath(appName, settings)
	if err != nil {
		return nil, err
	}
	store, err := storage.OpenBolt(dataPath)
	if err != nil {
		return nil, err
	}

	rt := &runtime{
		settings:     settings,
		settingsPath: c.String("config"),
		dataPath:     dataPath,
		store:        store,
	}
	if settings.SyncEnabled {
		if err := rt.openSync(c.Context); err != nil {
			log.Printf("sync disabled: %v", err)
		}
	}
	return rt, nil
}

func (rt *runtime) openSync(ctx context.Context) error {
	spaceID, err := replication.SpaceID(rt.store, rt.settings.SpaceID)
	if err != nil {
		return err
	}
	bridge, err := replication.OpenSQLite(rt.settings.SyncPath)
	if err != nil {
		return err
	}

	rt.bridge = bridge
	rt.spaceID = spaceID
	rt.replicator = replication.New(bridge, spaceID)

	if ctx == nil {
		ctx = context.Background()
	}
	seedCtx, cancel := context.WithTimeout(ctx, seedTimeout)
	defer cancel()
	if seeded := rt.replicator.Seed(seedCtx, rt.store, replication.ReplicatedKeys...); len(seeded) > 0 {
		log.Printf("seeded %v from space %s", seeded, spaceID)
	}
	return nil
}

// newController builds the session controller over the runtime's store.
func (rt *runtime) newController(alerter alert.Alerter, keeper *playback.Keeper) *session.Controller {
	deps := session.Deps{Store: rt.store, Alerter: alerter}
	if rt.replicator != nil {
		deps.Replicator = rt.replicator
	}
	if keeper != nil {
		deps.Playback = keeper
	}
	return session.New(rt.settings.TimerConfig(), deps)
}

func (rt *runtime) saveSettings(settings config.Settings) error {
	rt.settings = settings
	if rt.settingsPath != "" {
		return storage.SaveSettingsFile(rt.settingsPath, settings)
	}
	return storage.SaveSettings(appName, settings)
}

func (rt *runtime) logPath() string {
	return filepath.Join(filepath.Dir(rt.dataPath), "tui.log")
}

// Close flushes replication and closes the databases.
func (rt *runtime) Close() {
	if rt.replicator != nil {
		rt.replicator.Close()
	}
	if rt.bridge != nil {
		if err := rt.bridge.Close(); err != nil {
			log.Printf("close sync database: %v", err)
		}
	}
	if err := rt.store.Close(); err != nil {
		log.Printf("close store: %v", err)
	}
}

func withRuntime(c *cli.Context, fn func(*runtime) error) error {
	rt, err := openRuntime(c)
	if errors.Is(err, storage.ErrLocked) {
		return cli.Exit("the store is in use by a running Study Forest; quit it first", 1)
	}
	if err != nil {
		return cli.Exit(fmt.Sprintf("open store: %v", err), 1)
	}
	defer rt.Close()
	return fn(rt)
}
