package alert

import (
	"io"
	"log"
	"os"
	"sync"
)

// Alerter plays a short attention signal. Implementations must return quickly.
type Alerter interface {
	PlayAlert()
}

// Func adapts a function to Alerter.
type Func func()

// PlayAlert calls fn.
func (fn Func) PlayAlert() {
	fn()
}

// Play triggers alerter and swallows any panic it raises.
func Play(alerter Alerter) {
	if alerter == nil {
		return
	}
	defer func() {
		if recovered := recover(); recovered != nil {
			log.Printf("alert: %v", recovered)
		}
	}()
	alerter.PlayAlert()
}

// Bell writes the terminal bell character.
type Bell struct {
	mu     sync.Mutex
	writer io.Writer
}

// NewBell creates a bell writing to writer, or to stdout when writer is nil.
func NewBell(writer io.Writer) *Bell {
	if writer == nil {
		writer = os.Stdout
	}
	return &Bell{writer: writer}
}

// PlayAlert rings the bell. Write errors are logged.
func (bell *Bell) PlayAlert() {
	bell.mu.Lock()
	defer bell.mu.Unlock()
	if _, err := bell.writer.Write([]byte{'\a'}); err != nil {
		log.Printf("bell: %v", err)
	}
}

// Multi fans an alert out to several alerters. A panicking member does not
// stop the others.
type Multi []Alerter

// PlayAlert plays every member.
func (multi Multi) PlayAlert() {
	for _, alerter := range multi {
		Play(alerter)
	}
}
