package logger_test

import (
	"os"
	"path/filepath"
	"testing"

	"smartfarm/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestNew_WritesRotatedFile(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "logs")

	log, err := logger.New(dir, "smartfarm", false)
	require.NoError(t, err)

	log.Info("seeded account")
	_ = log.Sync()

	data, err := os.ReadFile(filepath.Join(dir, "smartfarm.log"))
	require.NoError(t, err)
	assert.Contains(t, string(data), `"msg":"seeded account"`)
	assert.Contains(t, string(data), `"timestamp"`)
}

func TestNew_StdoutOnly(t *testing.T) {
	log, err := logger.New("", "smartfarm", true)
	require.NoError(t, err)
	assert.True(t, log.Core().Enabled(zapcore.DebugLevel))
}
