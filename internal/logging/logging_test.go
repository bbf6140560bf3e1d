package logging

import (
	"bytes"
	"testing"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComponentAndLevel(t *testing.T) {
	var buf bytes.Buffer
	l, err := New(&buf, "warn", false)
	require.NoError(t, err)
	c := Component(l, "binding")
	c.Info().Msg("hidden")
	c.Warn().Msg("limbo")

	var line map[string]any
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &line))
	assert.Equal(t, "binding", line["component"])
	assert.Equal(t, "limbo", line["message"])
}

func TestEmptyLevelDefaultsToInfo(t *testing.T) {
	var buf bytes.Buffer
	l, err := New(&buf, "", true)
	require.NoError(t, err)
	l.Debug().Msg("hidden")
	l.Info().Msg("shown")
	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "shown")
}

func TestBadLevel(t *testing.T) {
	_, err := New(nil, "loud", false)
	assert.Error(t, err)
}
