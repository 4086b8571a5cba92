package preferences

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"studyforest/internal/config"
)

func TestApplyParsesFields(t *testing.T) {
	settings, err := apply(config.DefaultSettings(), form{
		focusMinutes: "50",
		breakMinutes: " 10 ",
		breakEvery:   "45",
		eyeEvery:     "15",
		eyeSeconds:   "20",
		idleMinutes:  "5",
		opacity:      0.7,
	})
	require.NoError(t, err)

	assert.Equal(t, 50*time.Minute, settings.FocusDuration)
	assert.Equal(t, 10*time.Minute, settings.BreakDuration)
	assert.Equal(t, 45*time.Minute, settings.BreakReminderInterval)
	assert.Equal(t, 15*time.Minute, settings.EyeReminderInterval)
	assert.Equal(t, 20*time.Second, settings.EyeCountdown)
	assert.Equal(t, 5*time.Minute, settings.IdlePauseAfter)
	assert.Equal(t, 0.7, settings.OverlayOpacity)
}

func TestApplyKeepsPreviousValueOnBadInput(t *testing.T) {
	defaults := config.DefaultSettings()
	defaults.IdlePauseAfter = 3 * time.Minute

	settings, err := apply(defaults, form{
		focusMinutes: "abc",
		breakMinutes: "-4",
		idleMinutes:  "0",
		opacity:      defaults.OverlayOpacity,
	})
	require.NoError(t, err)

	assert.Equal(t, defaults.FocusDuration, settings.FocusDuration)
	assert.Equal(t, defaults.BreakDuration, settings.BreakDuration)
	assert.Zero(t, settings.IdlePauseAfter)
}

func TestApplyRejectsSyncWithoutPath(t *testing.T) {
	_, err := apply(config.DefaultSettings(), form{syncEnabled: true, syncPath: "  "})
	require.ErrorIs(t, err, config.ErrInvalid)
}
