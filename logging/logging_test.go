package logging

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCallsBeforeSetupAreNoops(t *testing.T) {
	assert.NotPanics(t, func() {
		LogInfo("info %d", 1)
		DebugLog("debug")
		LogWarning("warn")
		LogError("error")
		LogImageProcessed("a.png", true, "")
	})
}

func TestSetupLoggerWritesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "imagesearch.log")
	require.NoError(t, SetupLogger(path, "info"))

	// A second setup keeps the first sink.
	require.NoError(t, SetupLogger(filepath.Join(t.TempDir(), "other.log"), "debug"))

	LogInfo("indexed %d files", 3)
	DebugLog("hidden below info")
	LogImageProcessed("/images/a.png", false, "decode failed")
	CloseLogger()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	content := string(data)
	assert.Contains(t, content, "indexed 3 files")
	assert.Contains(t, content, "/images/a.png")
	assert.Contains(t, content, "decode failed")
	assert.NotContains(t, content, "hidden below info")

	// Closed loggers discard output again.
	LogInfo("after close")
	data, err = os.ReadFile(path)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "after close")
}

func TestSetupLoggerRejectsUnknownLevel(t *testing.T) {
	err := SetupLogger("", "verbose")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid log level")
	CloseLogger()
}
