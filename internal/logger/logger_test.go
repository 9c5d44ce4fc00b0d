package logger

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	var buf bytes.Buffer
	log := New(&buf, false)

	log.Info("stock changed", slog.String("product_id", "PROD001"), slog.Int("new_stock", 42))

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry), "output: %s", buf.String())

	assert.Equal(t, "stock changed", entry["msg"])
	assert.Equal(t, "PROD001", entry["product_id"])
	assert.Equal(t, float64(42), entry["new_stock"])
	assert.Equal(t, "INFO", entry["level"])
	assert.Contains(t, entry, "time")
}

func TestNew_DebugLevel(t *testing.T) {
	t.Run("debug records dropped by default", func(t *testing.T) {
		var buf bytes.Buffer
		New(&buf, false).Debug("query")
		assert.Zero(t, buf.Len())
	})

	t.Run("debug records kept in debug mode", func(t *testing.T) {
		var buf bytes.Buffer
		New(&buf, true).Debug("query")
		assert.Contains(t, buf.String(), `"level":"DEBUG"`)
	})
}

func TestSetup_LogFile(t *testing.T) {
	original := slog.Default()
	t.Cleanup(func() { slog.SetDefault(original) })

	path := filepath.Join(t.TempDir(), "inventory.log")

	closeFn, err := Setup(false, path)
	require.NoError(t, err)

	slog.Warn("low stock alert", slog.String("product_id", "PROD007"))
	require.NoError(t, closeFn())

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &entry))
	assert.Equal(t, "WARN", entry["level"])
	assert.Equal(t, "PROD007", entry["product_id"])
}

func TestSetup_InvalidPath(t *testing.T) {
	_, err := Setup(false, filepath.Join(t.TempDir(), "missing", "dir", "x.log"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to open log file")
}

// TestSetup_Stdout verifies that Setup without a log file installs a
// JSON logger on stdout.
func TestSetup_Stdout(t *testing.T) {
	original := slog.Default()
	t.Cleanup(func() { slog.SetDefault(original) })

	oldStdout := os.Stdout
	r, w, err := os.Pipe()
	require.NoError(t, err)
	os.Stdout = w

	closeFn, err := Setup(false, "")
	require.NoError(t, err)
	slog.Info("test initialization", slog.String("service", "inventory"), slog.Int("port", 8080))

	require.NoError(t, closeFn())
	w.Close()
	os.Stdout = oldStdout

	var buf bytes.Buffer
	_, err = buf.ReadFrom(r)
	require.NoError(t, err)

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry), "output: %s", buf.String())
	assert.Equal(t, "test initialization", entry["msg"])
	assert.Equal(t, "inventory", entry["service"])
	assert.Equal(t, float64(8080), entry["port"])
}
