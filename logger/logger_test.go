package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewJSON(t *testing.T) {
	var buf bytes.Buffer
	log := New(&buf, false)

	assert.Equal(t, zerolog.InfoLevel, log.GetLevel())

	log.Debug().Msg("hidden")
	log.Info().Str("file", "tailwind.config.yaml").Msg("loaded")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "loaded", entry["message"])
	assert.Equal(t, "tailwind.config.yaml", entry["file"])
	assert.Contains(t, entry, "time")
	assert.Contains(t, entry, "caller")
}

func TestNewDebug(t *testing.T) {
	var buf bytes.Buffer
	log := New(&buf, true)

	assert.Equal(t, zerolog.DebugLevel, log.GetLevel())

	log.Debug().Msg("visible")
	assert.Contains(t, buf.String(), "visible")
}
