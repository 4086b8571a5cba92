package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/dustin/go-humanize"
	"github.com/urfave/cli/v2"

	"studyforest/internal/alert"
	"studyforest/internal/core/history"
	"studyforest/internal/core/session"
	"studyforest/internal/platform"
	"studyforest/internal/playback"
	"studyforest/internal/replication"
	"studyforest/internal/storage"
	"studyforest/internal/ui/format"
	"studyforest/internal/ui/tui"
)

// newCLIApp creates the CLI application with all commands. Without a
// command it starts the desktop shell.
func newCLIApp() *cli.App {
	app := &cli.App{
		Name:    "studyforest",
		Usage:   "Focus timer with eye-strain reminders and a forest of finished sessions",
		Version: Version,
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "config", Usage: "Settings file (defaults to the user config dir)"},
			&cli.StringSliceFlag{Name: "env-file", Usage: "Dotenv files loaded before environment overrides"},
		},
		Action: runDesktop,
		Commands: []*cli.Command{
			desktopCmd(),
			tuiCmd(),
			statusCmd(),
			historyCmd(),
			forestCmd(),
			clearCmd(),
			spaceCmd(),
			autostartCmd(),
		},
	}
	// Disable default exit error handler to allow proper error return in tests
	app.ExitErrHandler = func(_ *cli.Context, _ error) {}
	return app
}

// desktopCmd creates the desktop command.
func desktopCmd() *cli.Command {
	return &cli.Command{
		Name:   "desktop",
		Usage:  "Run in the system tray (default)",
		Action: runDesktop,
	}
}

// tuiCmd creates the tui command.
func tuiCmd() *cli.Command {
	return &cli.Command{
		Name:  "tui",
		Usage: "Run the timer in the terminal",
		Action: func(c *cli.Context) error {
			guard, err := platform.AcquireSingleInstance(appName)
			if err != nil {
				return cli.Exit("another Study Forest window is already running", 1)
			}
			defer guard.Release()

			return withRuntime(c, func(rt *runtime) error {
				keeper := playback.NewKeeper(playback.NewTrack(nil, ambienceTrack), rt.store)
				controller := rt.newController(alert.NewBell(os.Stdout), keeper)
				defer controller.Dispose()
				if rt.settings.IdlePauseAfter > 0 {
					controller.SetIdleChecker(platform.NewIdleChecker())
				}
				return tui.Run(controller, controller.Subscribe(64), rt.logPath())
			})
		},
	}
}

type statusOutput struct {
	State        session.State `json:"state"`
	Phase        string        `json:"phase,omitempty"`
	Remaining    string        `json:"remaining"`
	Progress     float64       `json:"progress"`
	EyeNextIn    string        `json:"eyeReminderIn,omitempty"`
	BreakNextIn  string        `json:"breakReminderIn,omitempty"`
	HistoryCount int           `json:"historyCount"`
	ForestCount  int           `json:"forestCount"`
	SpaceID      string        `json:"spaceId,omitempty"`
}

// statusCmd creates the status command.
func statusCmd() *cli.Command {
	return &cli.Command{
		Name:  "status",
		Usage: "Print the current session as JSON",
		Action: func(c *cli.Context) error {
			return withRuntime(c, func(rt *runtime) error {
				controller := rt.newController(nil, nil)
				defer controller.Dispose()
				return outputJSON(c.App.Writer, newStatusOutput(controller.Snapshot(), rt.spaceID))
			})
		},
	}
}

func newStatusOutput(snapshot session.Snapshot, spaceID string) statusOutput {
	output := statusOutput{
		State:        snapshot.State,
		Remaining:    snapshot.Clock(),
		Progress:     snapshot.Progress,
		HistoryCount: len(snapshot.History),
		ForestCount:  len(snapshot.Forest),
		SpaceID:      spaceID,
	}
	if snapshot.State.Active() {
		output.Phase = string(snapshot.Phase)
	}
	if snapshot.Reminders.Running {
		output.EyeNextIn = session.FormatClock(snapshot.Reminders.EyeNextIn)
		output.BreakNextIn = session.FormatClock(snapshot.Reminders.BreakNextIn)
	}
	return output
}

// historyCmd creates the history command.
func historyCmd() *cli.Command {
	return &cli.Command{
		Name:  "history",
		Usage: "List completed phases, most recent first",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "json", Usage: "Print JSON"},
		},
		Action: func(c *cli.Context) error {
			return withRuntime(c, func(rt *runtime) error {
				entries, _ := storage.LoadDocument[[]history.Entry](rt.store, storage.KeySessionHistory, nil)
				if c.Bool("json") {
					if entries == nil {
						entries = []history.Entry{}
					}
					return outputJSON(c.App.Writer, entries)
				}
				if len(entries) == 0 {
					fmt.Fprintln(c.App.Writer, "No completed phases yet")
					return nil
				}
				for _, entry := range entries {
					fmt.Fprintln(c.App.Writer, format.HistoryLine(entry))
				}
				return nil
			})
		},
	}
}

// forestCmd creates the forest command.
func forestCmd() *cli.Command {
	return &cli.Command{
		Name:  "forest",
		Usage: "List the plants grown by finished focus phases",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "json", Usage: "Print JSON"},
		},
		Action: func(c *cli.Context) error {
			return withRuntime(c, func(rt *runtime) error {
				plants, _ := storage.LoadDocument[[]history.Plant](rt.store, storage.KeyForest, nil)
				if c.Bool("json") {
					if plants == nil {
						plants = []history.Plant{}
					}
					return outputJSON(c.App.Writer, plants)
				}
				fmt.Fprintf(c.App.Writer, "%s grown\n", pluralPlants(len(plants)))
				for i := len(plants) - 1; i >= 0; i-- {
					fmt.Fprintln(c.App.Writer, format.PlantLine(plants[i]))
				}
				return nil
			})
		},
	}
}

func pluralPlants(count int) string {
	if count == 1 {
		return "1 plant"
	}
	return humanize.Comma(int64(count)) + " plants"
}

// clearCmd creates the clear command.
func clearCmd() *cli.Command {
	return &cli.Command{
		Name:  "clear",
		Usage: "Clear the session history and/or the forest",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "history", Usage: "Clear the session history"},
			&cli.BoolFlag{Name: "forest", Usage: "Clear the forest"},
		},
		Action: func(c *cli.Context) error {
			if !c.Bool("history") && !c.Bool("forest") {
				return cli.Exit("nothing to clear: pass --history and/or --forest", 1)
			}
			return withRuntime(c, func(rt *runtime) error {
				controller := rt.newController(nil, nil)
				defer controller.Dispose()
				if c.Bool("history") {
					controller.ClearHistory()
				}
				if c.Bool("forest") {
					controller.ClearForest()
				}
				snapshot := controller.Snapshot()
				return outputJSON(c.App.Writer, map[string]int{
					"historyCount": len(snapshot.History),
					"forestCount":  len(snapshot.Forest),
				})
			})
		},
	}
}

type spaceRecord struct {
	Key     string `json:"key"`
	Size    string `json:"size"`
	Updated string `json:"updated"`
}

// spaceCmd creates the space command.
func spaceCmd() *cli.Command {
	return &cli.Command{
		Name:  "space",
		Usage: "Show the sync space id and the documents shared in it",
		Action: func(c *cli.Context) error {
			return withRuntime(c, func(rt *runtime) error {
				spaceID := rt.spaceID
				if spaceID == "" {
					id, err := replication.SpaceID(rt.store, rt.settings.SpaceID)
					if err != nil {
						return cli.Exit(err.Error(), 1)
					}
					spaceID = id
				}
				output := map[string]any{"spaceId": spaceID, "syncEnabled": rt.bridge != nil}
				if rt.bridge != nil {
					records, err := rt.bridge.List(c.Context, spaceID)
					if err != nil {
						return cli.Exit(err.Error(), 1)
					}
					documents := make([]spaceRecord, 0, len(records))
					for _, record := range records {
						documents = append(documents, spaceRecord{
							Key:     record.Key,
							Size:    humanize.Bytes(uint64(record.Size)),
							Updated: humanize.Time(record.UpdatedAt),
						})
					}
					output["documents"] = documents
				}
				return outputJSON(c.App.Writer, output)
			})
		},
	}
}

// autostartCmd creates the autostart command.
func autostartCmd() *cli.Command {
	autostart := platform.NewAutostart(appName)
	return &cli.Command{
		Name:  "autostart",
		Usage: "Manage launching Study Forest at login",
		Subcommands: []*cli.Command{
			{
				Name:  "enable",
				Usage: "Start the desktop shell at login",
				Action: func(c *cli.Context) error {
					exe, err := os.Executable()
					if err != nil {
						return cli.Exit(err.Error(), 1)
					}
					if err := autostart.Enable(exe); err != nil {
						return cli.Exit(err.Error(), 1)
					}
					return outputJSON(c.App.Writer, map[string]bool{"enabled": true})
				},
			},
			{
				Name:  "disable",
				Usage: "Stop starting at login",
				Action: func(c *cli.Context) error {
					if err := autostart.Disable(); err != nil {
						return cli.Exit(err.Error(), 1)
					}
					return outputJSON(c.App.Writer, map[string]bool{"enabled": false})
				},
			},
			{
				Name:  "status",
				Usage: "Report whether autostart is enabled",
				Action: func(c *cli.Context) error {
					enabled, err := autostart.Enabled()
					if err != nil {
						return cli.Exit(err.Error(), 1)
					}
					return outputJSON(c.App.Writer, map[string]bool{"enabled": enabled})
				},
			},
		},
	}
}

// outputJSON writes v as indented JSON.
func outputJSON(w io.Writer, v any) error {
	if w == nil {
		w = os.Stdout
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
