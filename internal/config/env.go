package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

type envOverrides struct {
	FocusMinutes int    `env:"STUDYFOREST_FOCUS_MINUTES"`
	BreakMinutes int    `env:"STUDYFOREST_BREAK_MINUTES"`
	HistoryLimit int    `env:"STUDYFOREST_HISTORY_LIMIT"`
	DataDir      string `env:"STUDYFOREST_DATA_DIR"`
	SyncPath     string `env:"STUDYFOREST_SYNC_PATH"`
	SpaceID      string `env:"STUDYFOREST_SPACE_ID"`
}

// ApplyEnv overlays environment variables onto settings.
// Variables from the given dotenv files (default ".env") are loaded first
// without replacing variables that are already set. A named file that cannot
// be read is an error; a missing default .env is not.
func ApplyEnv(settings *Settings, dotenvFiles ...string) error {
	if err := loadDotenv(dotenvFiles); err != nil {
		return err
	}

	var overrides envOverrides
	if err := env.Parse(&overrides); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}

	if overrides.FocusMinutes > 0 {
		settings.FocusDuration = time.Duration(overrides.FocusMinutes) * time.Minute
	}
	if overrides.BreakMinutes > 0 {
		settings.BreakDuration = time.Duration(overrides.BreakMinutes) * time.Minute
	}
	if overrides.HistoryLimit > 0 {
		settings.HistoryLimit = overrides.HistoryLimit
	}
	if overrides.DataDir != "" {
		settings.DataDir = overrides.DataDir
	}
	if overrides.SyncPath != "" {
		settings.SyncPath = overrides.SyncPath
		settings.SyncEnabled = true
	}
	if overrides.SpaceID != "" {
		settings.SpaceID = overrides.SpaceID
	}
	return nil
}

func loadDotenv(files []string) error {
	if len(files) == 0 {
		err := godotenv.Load()
		if err != nil && !errors.Is(err, fs.ErrNotExist) {
			log.Printf("load .env: %v", err)
		}
		return nil
	}
	for _, file := range files {
		if err := godotenv.Load(file); err != nil {
			return fmt.Errorf("load env file %s: %w", file, err)
		}
	}
	return nil
}
