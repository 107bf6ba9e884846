package logging

import (
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_WritesDebugToFile(t *testing.T) {
	dir := t.TempDir()
	logger, err := New(dir, false)
	require.NoError(t, err)

	logger.Debug("完成单元格计算")
	require.NoError(t, logger.Close())

	assert.True(t, strings.HasPrefix(logger.Path(), dir))
	data, err := os.ReadFile(logger.Path())
	require.NoError(t, err)
	assert.Contains(t, string(data), "完成单元格计算")
	assert.Contains(t, string(data), "DEBUG")
}

func TestNop(t *testing.T) {
	logger := Nop()
	logger.Info("ignored")
	assert.Empty(t, logger.Path())
	assert.NoError(t, logger.Close())
}
