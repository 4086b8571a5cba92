package playback

import (
	"errors"
	"fmt"
	"log"
	"sync"

	"studyforest/internal/storage"
)

// Player is an embedded audio/video widget.
type Player interface {
	Play() error
	Pause() error
	SeekTo(seconds float64) error
	SetVolume(percent int) error
	CurrentPositionSeconds() (float64, error)
}

// State is the last known playback position.
type State struct {
	PositionSeconds float64 `json:"positionSeconds"`
	Volume          int     `json:"volume"`
}

// DefaultVolume is used until a volume has been saved.
const DefaultVolume = 50

var errInvalidState = errors.New("invalid playback state")

// Validate rejects negative positions and out-of-range volumes.
func (state State) Validate() error {
	if state.PositionSeconds < 0 {
		return fmt.Errorf("%w: position %v", errInvalidState, state.PositionSeconds)
	}
	if state.Volume < 0 || state.Volume > 100 {
		return fmt.Errorf("%w: volume %d", errInvalidState, state.Volume)
	}
	return nil
}

// Keeper remembers where playback stopped. Player failures are logged and
// never returned: playback is a side channel.
type Keeper struct {
	mu      sync.Mutex
	player  Player
	store   storage.Store
	state   State
	playing bool
}

// NewKeeper restores the saved position from store.
func NewKeeper(player Player, store storage.Store) *Keeper {
	state, ok := storage.LoadDocument(store, storage.KeyPlayback, State.Validate)
	if !ok {
		state = State{Volume: DefaultVolume}
	}
	return &Keeper{player: player, store: store, state: state}
}

// State returns the last known position.
func (keeper *Keeper) State() State {
	keeper.mu.Lock()
	defer keeper.mu.Unlock()
	return keeper.state
}

// Start seeks to the saved position and plays.
func (keeper *Keeper) Start() {
	keeper.mu.Lock()
	defer keeper.mu.Unlock()
	if keeper.player == nil || keeper.playing {
		return
	}
	keeper.call("set volume", func() error { return keeper.player.SetVolume(keeper.state.Volume) })
	keeper.call("seek", func() error { return keeper.player.SeekTo(keeper.state.PositionSeconds) })
	keeper.call("play", keeper.player.Play)
	keeper.playing = true
}

// Pause stops playback and saves the position.
func (keeper *Keeper) Pause() {
	keeper.mu.Lock()
	defer keeper.mu.Unlock()
	if keeper.player == nil || !keeper.playing {
		return
	}
	keeper.call("pause", keeper.player.Pause)
	keeper.playing = false
	keeper.saveLocked()
}

// SetVolume changes the volume and remembers it.
func (keeper *Keeper) SetVolume(percent int) {
	if percent < 0 {
		percent = 0
	}
	if percent > 100 {
		percent = 100
	}
	keeper.mu.Lock()
	defer keeper.mu.Unlock()
	keeper.state.Volume = percent
	if keeper.player != nil {
		keeper.call("set volume", func() error { return keeper.player.SetVolume(percent) })
	}
	keeper.persistLocked()
}

// Unload saves the position without pausing, for process shutdown.
func (keeper *Keeper) Unload() {
	keeper.mu.Lock()
	defer keeper.mu.Unlock()
	if keeper.player == nil {
		return
	}
	keeper.saveLocked()
	keeper.playing = false
}

func (keeper *Keeper) saveLocked() {
	var position float64
	known := false
	keeper.call("position", func() error {
		value, err := keeper.player.CurrentPositionSeconds()
		if err != nil {
			return err
		}
		position, known = value, true
		return nil
	})
	if known && position >= 0 {
		keeper.state.PositionSeconds = position
	}
	keeper.persistLocked()
}

func (keeper *Keeper) persistLocked() {
	if keeper.store == nil {
		return
	}
	if err := storage.SaveDocument(keeper.store, storage.KeyPlayback, keeper.state); err != nil {
		log.Printf("playback: %v", err)
	}
}

func (keeper *Keeper) call(name string, fn func() error) {
	defer func() {
		if recovered := recover(); recovered != nil {
			log.Printf("playback %s: %v", name, recovered)
		}
	}()
	if err := fn(); err != nil {
		log.Printf("playback %s: %v", name, err)
	}
}
