package animation

import "time"

// ExerciseType defines the type of eye exercise shown during a reminder.
type ExerciseType int

const (
	ExerciseLookFar ExerciseType = iota
	ExerciseLeftRight
	ExerciseUpDown
	ExerciseBlink
)

// Exercises is the rotation used for successive eye reminders.
var Exercises = []ExerciseType{
	ExerciseLookFar,
	ExerciseLeftRight,
	ExerciseBlink,
	ExerciseUpDown,
}

// Title returns a short heading for the exercise.
func (exercise ExerciseType) Title() string {
	switch exercise {
	case ExerciseLookFar:
		return "Look into the distance"
	case ExerciseLeftRight:
		return "Move your eyes left and right"
	case ExerciseUpDown:
		return "Move your eyes up and down"
	case ExerciseBlink:
		return "Close your eyes, then open them"
	default:
		return ""
	}
}

// ExerciseSpec defines the cues of a single exercise run.
type ExerciseSpec struct {
	Type     ExerciseType
	Duration time.Duration
}

// Cues returns the repeating cue sequence for the exercise.
func (spec ExerciseSpec) Cues() []string {
	switch spec.Type {
	case ExerciseLeftRight:
		return []string{"center", "look left", "center", "look right"}
	case ExerciseUpDown:
		return []string{"center", "look up", "center", "look down"}
	case ExerciseBlink:
		return []string{"eyes open", "eyes closed"}
	default:
		return []string{"focus on something 20 feet away"}
	}
}
