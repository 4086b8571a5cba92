package playback

import (
	"errors"
	"sync"
	"time"

	"studyforest/internal/core/clock"
)

// ErrSeekOutOfRange rejects seeks past the end of a track.
var ErrSeekOutOfRange = errors.New("seek out of range")

// Track is a Player without audio output: it follows the position of a looping
// ambience track of the given length against a clock, so shells can show
// where the soundtrack would be and the keeper can resume it.
type Track struct {
	mu      sync.Mutex
	clock   clock.Clock
	length  time.Duration
	offset  time.Duration
	started time.Time
	playing bool
	volume  int
}

// NewTrack creates a paused track. A non-positive length means the track never
// loops.
func NewTrack(source clock.Clock, length time.Duration) *Track {
	if source == nil {
		source = clock.System{}
	}
	return &Track{clock: source, length: length, volume: DefaultVolume}
}

func (track *Track) Play() error {
	track.mu.Lock()
	defer track.mu.Unlock()
	if !track.playing {
		track.started = track.clock.Now()
		track.playing = true
	}
	return nil
}

func (track *Track) Pause() error {
	track.mu.Lock()
	defer track.mu.Unlock()
	track.offset = track.positionLocked()
	track.playing = false
	return nil
}

func (track *Track) SeekTo(seconds float64) error {
	position := time.Duration(seconds * float64(time.Second))
	if position < 0 || (track.length > 0 && position > track.length) {
		return ErrSeekOutOfRange
	}
	track.mu.Lock()
	defer track.mu.Unlock()
	track.offset = position
	track.started = track.clock.Now()
	return nil
}

func (track *Track) SetVolume(percent int) error {
	track.mu.Lock()
	defer track.mu.Unlock()
	track.volume = percent
	return nil
}

func (track *Track) CurrentPositionSeconds() (float64, error) {
	track.mu.Lock()
	defer track.mu.Unlock()
	return track.positionLocked().Seconds(), nil
}

// Playing reports whether the track is advancing.
func (track *Track) Playing() bool {
	track.mu.Lock()
	defer track.mu.Unlock()
	return track.playing
}

// Volume returns the last volume set.
func (track *Track) Volume() int {
	track.mu.Lock()
	defer track.mu.Unlock()
	return track.volume
}

func (track *Track) positionLocked() time.Duration {
	position := track.offset
	if track.playing {
		position += track.clock.Now().Sub(track.started)
	}
	if track.length > 0 {
		position %= track.length
	}
	return position
}
