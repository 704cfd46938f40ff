package logging

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/TechXTT/dbload/pkg/config"
)

func TestNew_TextLevelFilter(t *testing.T) {
	var buf bytes.Buffer
	logger, closer, err := New(config.Logging{Level: "warn", Format: "text"}, &buf)
	require.NoError(t, err)
	defer closer.Close()

	logger.Info("hidden")
	logger.Warn("shown", "table", "users")
	require.NotContains(t, buf.String(), "hidden")
	require.Contains(t, buf.String(), "msg=shown table=users")
}

func TestNew_JSONToFile(t *testing.T) {
	var buf bytes.Buffer
	path := filepath.Join(t.TempDir(), "logs", "dbload.log")
	logger, closer, err := New(config.Logging{Level: "debug", Format: "json", File: path, MaxSizeMB: 1}, &buf)
	require.NoError(t, err)

	logger.Debug("connected", "driver", "sqlite")
	require.NoError(t, closer.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var entry map[string]any
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(data), &entry))
	require.Equal(t, "connected", entry["msg"])
	require.Equal(t, "sqlite", entry["driver"])
	require.Equal(t, bytes.TrimSpace(data), bytes.TrimSpace(buf.Bytes()))
}

func TestNew_Invalid(t *testing.T) {
	_, _, err := New(config.Logging{Level: "loud"}, nil)
	require.Error(t, err)

	_, _, err = New(config.Logging{Level: "info", Format: "xml"}, nil)
	require.Error(t, err)
}
