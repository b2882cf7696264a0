package logger

import (
	"bytes"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLogger_LevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	log := New("warn", &buf)

	log.Debug().Msg("hidden")
	assert.Empty(t, buf.String())

	log.Warn().Msg("visible")
	assert.Contains(t, buf.String(), "visible")
}

func TestLogger_Fields(t *testing.T) {
	var buf bytes.Buffer
	log := New("debug", &buf)

	log.Debug().
		Str("word", "Get-Pro").
		Int("results", 3).
		Bool("cached", true).
		Dur("elapsed", 1500*time.Microsecond).
		Msg("completion request")

	out := buf.String()
	assert.Contains(t, out, "completion request")
	assert.Contains(t, out, "Get-Pro")
	assert.Contains(t, out, "results")
	assert.Contains(t, out, "1.5")
}

func TestLogger_Err(t *testing.T) {
	var buf bytes.Buffer
	log := New("debug", &buf)

	log.Error().Err(errors.New("boom")).Msg("helper failed")
	assert.Contains(t, buf.String(), "boom")

	buf.Reset()
	log.Error().Err(nil).Msg("no error attached")
	assert.NotContains(t, buf.String(), "error=")
}

func TestLogger_InvalidLevelDefaultsToWarn(t *testing.T) {
	var buf bytes.Buffer
	log := New("nonsense", &buf)

	log.Info().Msg("hidden")
	assert.Empty(t, buf.String())
	log.Warn().Msg("shown")
	assert.NotEmpty(t, buf.String())
}

func TestDiscard(t *testing.T) {
	log := Discard()
	// must not panic and must stay silent at every level
	log.Debug().Msg("x")
	log.Error().Str("k", "v").Msg("y")
}

func TestLogger_NilOutput(t *testing.T) {
	log := New("debug", nil)
	log.Info().Msg("goes nowhere")
}
