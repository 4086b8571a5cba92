package format

import (
	"fmt"

	"studyforest/internal/core/history"
	"studyforest/internal/core/session"

	"github.com/dustin/go-humanize"
)

// PhaseTitle names the state for headings.
func PhaseTitle(state session.State) string {
	switch state {
	case session.StateFocusRunning:
		return "Focus"
	case session.StateFocusPaused:
		return "Focus (paused)"
	case session.StateBreakRunning:
		return "Break"
	case session.StateBreakPaused:
		return "Break (paused)"
	default:
		return "Ready to focus"
	}
}

// HistoryLine renders one ledger entry.
func HistoryLine(entry history.Entry) string {
	return fmt.Sprintf("%-5s %s-%s  %s  %s", entry.Phase, entry.StartTimeLabel, entry.EndTimeLabel, entry.DurationLabel, entry.DateLabel)
}

// PlantLine renders one plant with its relative planting time.
func PlantLine(plant history.Plant) string {
	return fmt.Sprintf("%s %s, planted %s", Glyph(plant.Kind), plant.Species, humanize.Time(plant.PlantedAt))
}

// Glyph returns a one-character marker for kind.
func Glyph(kind history.PlantKind) string {
	switch kind {
	case history.KindTree:
		return "🌳"
	case history.KindFlower:
		return "🌸"
	default:
		return "🌿"
	}
}

// ReminderLine summarizes the next reminders of snapshot.
func ReminderLine(snapshot session.Snapshot) string {
	status := snapshot.Reminders
	if !status.Running {
		return "Reminders paused"
	}
	return fmt.Sprintf("Eye rest in %s, break reminder in %s",
		session.FormatClock(status.EyeNextIn), session.FormatClock(status.BreakNextIn))
}

// AmbienceLine renders the ambience track position.
func AmbienceLine(positionSeconds float64, volume int) string {
	seconds := int(positionSeconds)
	return fmt.Sprintf("Ambience %02d:%02d, volume %d%%", seconds/60, seconds%60, volume)
}
