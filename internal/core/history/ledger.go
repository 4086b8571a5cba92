package history

import (
	"fmt"
	"time"

	"studyforest/internal/core/model"
)

// DefaultLimit is the number of entries kept when no limit is configured.
const DefaultLimit = 20

const (
	timeLabelLayout = "15:04"
	dateLabelLayout = "Monday, January 2, 2006"
)

// Entry is an immutable record of one completed phase, formatted at creation.
type Entry struct {
	ID             string      `json:"id"`
	Phase          model.Phase `json:"phase"`
	StartTimeLabel string      `json:"startTimeLabel"`
	EndTimeLabel   string      `json:"endTimeLabel"`
	DurationLabel  string      `json:"durationLabel"`
	DateLabel      string      `json:"dateLabel"`
}

// NewEntry formats a completed phase that ran from start to end.
func NewEntry(id string, phase model.Phase, start, end time.Time, total time.Duration) Entry {
	return Entry{
		ID:             id,
		Phase:          phase,
		StartTimeLabel: start.Format(timeLabelLayout),
		EndTimeLabel:   end.Format(timeLabelLayout),
		DurationLabel:  FormatDuration(total),
		DateLabel:      end.Format(dateLabelLayout),
	}
}

// FormatDuration renders a phase length as "2h 0m".
func FormatDuration(value time.Duration) string {
	if value < 0 {
		value = 0
	}
	minutes := int(value / time.Minute)
	return fmt.Sprintf("%dh %dm", minutes/60, minutes%60)
}

// Ledger is a most-recent-first log of completed phases capped at a fixed length.
type Ledger struct {
	limit   int
	entries []Entry
}

// NewLedger creates a ledger seeded with previously persisted entries.
func NewLedger(limit int, entries []Entry) *Ledger {
	if limit <= 0 {
		limit = DefaultLimit
	}
	ledger := &Ledger{limit: limit}
	if len(entries) > limit {
		entries = entries[:limit]
	}
	ledger.entries = append([]Entry(nil), entries...)
	return ledger
}

// Record prepends entry and evicts the oldest entries beyond the limit.
func (ledger *Ledger) Record(entry Entry) {
	entries := make([]Entry, 0, len(ledger.entries)+1)
	entries = append(entries, entry)
	entries = append(entries, ledger.entries...)
	if len(entries) > ledger.limit {
		entries = entries[:ledger.limit]
	}
	ledger.entries = entries
}

// Clear empties the ledger.
func (ledger *Ledger) Clear() {
	ledger.entries = nil
}

// Entries returns a copy of the entries, most recent first.
func (ledger *Ledger) Entries() []Entry {
	return append([]Entry{}, ledger.entries...)
}

// Len returns the number of retained entries.
func (ledger *Ledger) Len() int {
	return len(ledger.entries)
}

// Limit returns the maximum retained count.
func (ledger *Ledger) Limit() int {
	return ledger.limit
}
