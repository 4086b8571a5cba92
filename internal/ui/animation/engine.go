package animation

import (
	"context"
	"math/rand"
	"sync"
	"time"
)

// Range defines a duration range with random sampling.
type Range struct {
	Min time.Duration
	Max time.Duration
}

// Random returns a random duration within the range.
func (value Range) Random(rng *rand.Rand) time.Duration {
	if value.Max <= value.Min {
		return value.Min
	}
	delta := value.Max - value.Min
	return value.Min + time.Duration(rng.Int63n(int64(delta)))
}

// Config contains cue timing values.
type Config struct {
	IntroDuration time.Duration
	HoldDuration  Range
	BlinkHold     Range
	PauseDuration Range
}

// Engine plays exercise cues on the reminder window.
type Engine struct {
	mu        sync.Mutex
	config    Config
	updateCue func(string)
	cancel    context.CancelFunc
	rng       *rand.Rand
	next      int
}

// New creates a new cue engine. updateCue is called from the engine's goroutine.
func New(config Config, updateCue func(string)) *Engine {
	return &Engine{
		config:    config,
		updateCue: updateCue,
		rng:       rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// NextExercise returns the next exercise of the rotation.
func (engine *Engine) NextExercise() ExerciseType {
	engine.mu.Lock()
	defer engine.mu.Unlock()
	exercise := Exercises[engine.next%len(Exercises)]
	engine.next++
	return exercise
}

// StartExercise plays spec's cues until its duration elapses or ctx ends.
func (engine *Engine) StartExercise(ctx context.Context, spec ExerciseSpec) {
	engine.start(ctx, func(runCtx context.Context) {
		engine.updateCue(spec.Type.Title())
		if !sleepWithContext(runCtx, engine.config.IntroDuration) {
			return
		}
		deadline := time.Now().Add(spec.Duration - engine.config.IntroDuration)
		engine.runCues(runCtx, spec, deadline)
	})
}

// Stop terminates any active cue sequence.
func (engine *Engine) Stop() {
	engine.mu.Lock()
	defer engine.mu.Unlock()
	if engine.cancel != nil {
		engine.cancel()
		engine.cancel = nil
	}
}

func (engine *Engine) start(parent context.Context, run func(context.Context)) {
	engine.mu.Lock()
	if engine.cancel != nil {
		engine.cancel()
	}
	runCtx, cancel := context.WithCancel(parent)
	engine.cancel = cancel
	engine.mu.Unlock()

	go run(runCtx)
}

func (engine *Engine) runCues(ctx context.Context, spec ExerciseSpec, deadline time.Time) {
	cues := spec.Cues()
	for index := 0; time.Now().Before(deadline); index++ {
		engine.updateCue(cues[index%len(cues)])
		if !sleepWithContext(ctx, engine.holdFor(spec.Type)) {
			return
		}
		if index%len(cues) == len(cues)-1 {
			if !sleepWithContext(ctx, engine.config.PauseDuration.Random(engine.rng)) {
				return
			}
		}
	}
}

func (engine *Engine) holdFor(exercise ExerciseType) time.Duration {
	if exercise == ExerciseBlink {
		return engine.config.BlinkHold.Random(engine.rng)
	}
	return engine.config.HoldDuration.Random(engine.rng)
}

func sleepWithContext(ctx context.Context, duration time.Duration) bool {
	timer := time.NewTimer(duration)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
