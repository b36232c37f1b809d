package config

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetGetPersists(t *testing.T) {
	dir := t.TempDir()
	cfg, err := NewAt(dir)
	require.NoError(t, err)

	require.NoError(t, cfg.Set(KeyAccountID, "1234"))
	require.NoError(t, cfg.Set(KeyUsername, "agent"))
	assert.Equal(t, "1234", cfg.Get(KeyAccountID))

	_, err = os.Stat(cfg.FilePath())
	require.NoError(t, err)

	reopened, err := NewAt(dir)
	require.NoError(t, err)
	assert.Equal(t, "agent", reopened.Get(KeyUsername))
}

func TestSet_RejectsUnknownAndInvalid(t *testing.T) {
	cfg, err := NewAt(t.TempDir())
	require.NoError(t, err)

	assert.ErrorContains(t, cfg.Set("project_id", "1"), "unknown config key")
	assert.ErrorContains(t, cfg.Set(KeyMaxConcurrency, "0"), "max_concurrency")
	assert.ErrorContains(t, cfg.Set(KeyMaxConcurrency, "many"), "max_concurrency")
	assert.ErrorContains(t, cfg.Set(KeyTimeout, "soon"), "timeout")
	assert.ErrorContains(t, cfg.Set(KeyAccountID, " "), "account_id")

	require.NoError(t, cfg.Set(KeyMaxConcurrency, "8"))
	require.NoError(t, cfg.Set(KeyTimeout, "90s"))
}

func TestList_MasksSecrets(t *testing.T) {
	cfg, err := NewAt(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, cfg.Set(KeyAccountID, "1234"))
	require.NoError(t, cfg.Set(KeyPassword, "hunter22"))
	require.NoError(t, cfg.Set(KeyAccessTokenSecret, "abc"))

	assert.Equal(t, []Entry{
		{Key: KeyAccountID, Value: "1234"},
		{Key: KeyPassword, Value: "hunt****"},
		{Key: KeyAccessTokenSecret, Value: "****"},
	}, cfg.List())
}

func TestKnownKeysDescribed(t *testing.T) {
	for _, k := range KnownKeyNames() {
		assert.NotEmpty(t, Describe(k), k)
	}
}
