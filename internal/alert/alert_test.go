package alert

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) {
	return 0, errors.New("closed")
}

func TestPlayRecoversPanics(t *testing.T) {
	require.NotPanics(t, func() {
		Play(Func(func() { panic("speaker missing") }))
	})
	require.NotPanics(t, func() { Play(nil) })
}

func TestBellWritesBEL(t *testing.T) {
	var buffer bytes.Buffer
	NewBell(&buffer).PlayAlert()
	require.Equal(t, "\a", buffer.String())

	require.NotPanics(t, func() { NewBell(failingWriter{}).PlayAlert() })
}

func TestMultiContinuesAfterPanic(t *testing.T) {
	calls := 0
	multi := Multi{
		Func(func() { calls++ }),
		Func(func() { panic("boom") }),
		Func(func() { calls++ }),
	}

	require.NotPanics(t, multi.PlayAlert)
	require.Equal(t, 2, calls)
}
