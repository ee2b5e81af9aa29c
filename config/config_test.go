package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadWithoutPathReturnsDefaults(t *testing.T) {
	env, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), env)
}

func TestLoadOverlaysTomlOntoDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "centifuzz.toml")
	contents := "binary = \"/bin/target\"\ntotal_shards = 4\nmy_shard_index = 2\nbatch_size = 250\n"
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))

	env, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "/bin/target", env.Binary)
	assert.Equal(t, 4, env.TotalShards)
	assert.Equal(t, 2, env.MyShardIndex)
	assert.Equal(t, 250, env.BatchSize)
	// Untouched fields keep their defaults.
	assert.Equal(t, Default().MutateBatchSize, env.MutateBatchSize)
}

func TestValidateRejectsMissingBinary(t *testing.T) {
	env := Default()
	assert.Error(t, env.Validate())
	env.Binary = "/bin/target"
	assert.NoError(t, env.Validate())
}

func TestValidateRejectsOutOfRangeShardIndex(t *testing.T) {
	env := Default()
	env.Binary = "/bin/target"
	env.TotalShards = 2
	env.MyShardIndex = 5
	assert.Error(t, env.Validate())
}

func TestShardPathsAreKeyedByBinaryHashAndIndex(t *testing.T) {
	env := Default()
	env.Workdir = "/tmp/wd"
	p := env.Paths("deadbeef", 3)
	assert.Equal(t, "/tmp/wd/corpus.deadbeef.3", p.Corpus)
	assert.Equal(t, "/tmp/wd/features.deadbeef.3", p.Features)
	assert.Equal(t, "/tmp/wd/distilled-deadbeef.3", p.Distilled)
}

func TestCorpusDirMirrorPathDisabledByDefault(t *testing.T) {
	env := Default()
	_, ok := env.CorpusDirMirrorPath("hash")
	assert.False(t, ok)

	env.CorpusDir = "/tmp/mirror"
	path, ok := env.CorpusDirMirrorPath("hash")
	require.True(t, ok)
	assert.Equal(t, "/tmp/mirror/hash", path)
}
