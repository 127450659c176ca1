package cli

import (
	"os"
	"path/filepath"
	"testing"

	"Faran/internal/config"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLogger(t *testing.T) {
	log, err := NewLogger(config.LogConfig{Level: "debug", Format: "json"})
	require.NoError(t, err)
	assert.Equal(t, logrus.DebugLevel, log.GetLevel())
	assert.IsType(t, &logrus.JSONFormatter{}, log.Formatter)

	_, err = NewLogger(config.LogConfig{Level: "loud"})
	assert.Error(t, err)
	_, err = NewLogger(config.LogConfig{Level: "info", Format: "xml"})
	assert.Error(t, err)
}

func TestMigrateCommand(t *testing.T) {
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "faran.db")
	cfgPath := filepath.Join(dir, "config.yml")
	content := "database:\n  driver: sqlite\n  dsn: " + dbPath + "\nstorage:\n  local:\n    path: " + filepath.Join(dir, "uploads") + "\n"
	require.NoError(t, os.WriteFile(cfgPath, []byte(content), 0o600))

	rootCmd.SetArgs([]string{"migrate", "--config", cfgPath})
	require.NoError(t, Execute())
	assert.FileExists(t, dbPath)
}
