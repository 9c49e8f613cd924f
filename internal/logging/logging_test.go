package logging

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gcbaptista/go-facet-query/config"
)

func TestNewWritesJSONToFile(t *testing.T) {
	settings := config.Default()
	settings.LogFile = filepath.Join(t.TempDir(), "facetquery.log")
	settings.LogLevel = "debug"

	logger, closeFn, err := New(settings)
	require.NoError(t, err)

	logger.Debug("built query")
	logger.Info("mapped response")
	require.NoError(t, closeFn())

	data, err := os.ReadFile(settings.LogFile)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 2)

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(lines[1]), &entry))
	assert.Equal(t, "info", entry["level"])
	assert.Equal(t, "mapped response", entry["msg"])
}

func TestNewRespectsLevel(t *testing.T) {
	settings := config.Default()
	settings.LogFile = filepath.Join(t.TempDir(), "facetquery.log")
	settings.LogLevel = "warn"
	settings.LogFormat = "console"

	logger, closeFn, err := New(settings)
	require.NoError(t, err)

	logger.Info("hidden")
	logger.Warn("shown")
	require.NoError(t, closeFn())

	data, err := os.ReadFile(settings.LogFile)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "hidden")
	assert.Contains(t, string(data), "shown")
}

func TestNewInvalidLevel(t *testing.T) {
	settings := config.Default()
	settings.LogLevel = "loud"

	_, _, err := New(settings)
	assert.Error(t, err)
}
