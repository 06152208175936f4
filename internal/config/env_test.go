package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetEnvFallbacks(t *testing.T) {
	t.Setenv("ROADWAR_TEST_INT", "42")
	t.Setenv("ROADWAR_TEST_BAD_INT", "forty-two")
	t.Setenv("ROADWAR_TEST_DUR", "250ms")
	t.Setenv("ROADWAR_TEST_FLOAT", "1.5")

	assert.Equal(t, "fallback", GetEnv("ROADWAR_TEST_UNSET", "fallback"))
	assert.Equal(t, 42, GetEnvInt("ROADWAR_TEST_INT", 7))
	assert.Equal(t, 7, GetEnvInt("ROADWAR_TEST_BAD_INT", 7))
	assert.Equal(t, 250*time.Millisecond, GetEnvDuration("ROADWAR_TEST_DUR", time.Second))
	assert.Equal(t, 1.5, GetEnvFloat("ROADWAR_TEST_FLOAT", 0))
	assert.Equal(t, uint64(9), GetEnvUint64("ROADWAR_TEST_UNSET", 9))
}

func TestLoadDotEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "test.env")
	require.NoError(t, os.WriteFile(path, []byte("ROADWAR_DOTENV_KEY=from-file\n"), 0o600))
	t.Cleanup(func() { os.Unsetenv("ROADWAR_DOTENV_KEY") })

	require.NoError(t, LoadDotEnv(path))
	assert.Equal(t, "from-file", GetEnv("ROADWAR_DOTENV_KEY", ""))

	// missing files are skipped
	require.NoError(t, LoadDotEnv(filepath.Join(dir, "missing.env")))
}
