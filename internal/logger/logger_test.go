package logger_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fabricdb/corekv/internal/logger"
)

func TestSetLevelFiltersBelowThreshold(t *testing.T) {
	path := filepath.Join(t.TempDir(), "filter.log")
	require.NoError(t, logger.Init(logger.Config{Format: "json", Output: path}))
	logger.SetLevel("WARN")
	t.Cleanup(func() {
		require.NoError(t, logger.Init(logger.Config{Level: "INFO", Format: "text", Output: "stdout"}))
	})

	logger.Info("should be filtered")
	logger.Warn("should appear")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "should be filtered")
	assert.Contains(t, string(data), "should appear")
}

func TestInitWritesJSONToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.log")
	require.NoError(t, logger.Init(logger.Config{Level: "DEBUG", Format: "json", Output: path}))
	t.Cleanup(func() {
		require.NoError(t, logger.Init(logger.Config{Level: "INFO", Format: "text", Output: "stdout"}))
	})

	logger.Info("hello", "key", "value")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"key":"value"`)
}

func TestContextFieldsSurviveWithContext(t *testing.T) {
	lc := logger.NewLogContext("node-7").WithConversation(3, 42)
	ctx := logger.WithContext(context.Background(), lc)

	got := logger.FromContext(ctx)
	require.NotNil(t, got)
	assert.Equal(t, uint16(3), got.VNode)
	assert.Equal(t, uint64(42), got.Cookie)
	assert.Equal(t, "node-7", got.Peer)
}

func TestFromContextNilWhenAbsent(t *testing.T) {
	assert.Nil(t, logger.FromContext(context.Background()))
}
