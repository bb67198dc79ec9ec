package split

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/agentic-research/lexvault/internal/bucket"
	"github.com/agentic-research/lexvault/internal/scan"
	"github.com/agentic-research/lexvault/internal/shard"
)

const dataset = `{
  "cat": {"pos": "noun", "senses": ["feline"]},
  "Car": {"pos": "noun"},
  "dog": {"pos": "noun"},
  "42": {"pos": "numeral"},
  "über": {"pos": "adjective"},
  "  ": {"pos": "mystery"}
}`

func runSplit(t *testing.T) (srcPath, outDir string, res *Result) {
	t.Helper()
	srcPath = filepath.Join(t.TempDir(), "dict.json")
	require.NoError(t, os.WriteFile(srcPath, []byte(dataset), 0o644))
	outDir = filepath.Join(t.TempDir(), "shards")

	res, err := Split(context.Background(), srcPath, outDir, zap.NewNop())
	require.NoError(t, err)
	return srcPath, outDir, res
}

func TestSplitLayout(t *testing.T) {
	_, outDir, res := runSplit(t)

	assert.Equal(t, 6, res.Entries)
	assert.Equal(t, 5, res.Buckets) // c, d, 4, ü, _misc

	for _, name := range []string{"c", "d", "4", "ü", "_misc", shard.ManifestName} {
		_, err := os.Stat(filepath.Join(outDir, name))
		assert.NoError(t, err, "expected %s", name)
	}
}

func TestSplitManifestProbes(t *testing.T) {
	_, outDir, _ := runSplit(t)

	content, ok := shard.ProbeManifest(filepath.Join(outDir, shard.ManifestName))
	require.True(t, ok)
	m := content.(map[string]any)
	assert.Equal(t, int64(6), m["entries"])
	assert.Contains(t, m, "buckets")
	assert.Contains(t, m, "created")
}

// Every entry the splitter writes must come back byte-equivalent through
// the shard store it feeds.
func TestSplitRoundTrip(t *testing.T) {
	srcPath, outDir, _ := runSplit(t)

	store := shard.NewStore(outDir, zap.NewNop())
	ctx := context.Background()

	src, err := os.Open(srcPath)
	require.NoError(t, err)
	defer src.Close()

	checked := 0
	err = scan.Members(ctx, src, func(key string, decode func() (json.RawMessage, error)) (bool, error) {
		want, err := decode()
		if err != nil {
			return false, err
		}
		sh, err := store.Load(ctx, bucket.Of(key))
		if err != nil {
			return false, err
		}
		got, ok := sh.Get(key)
		require.True(t, ok, "key %q missing after split", key)
		assert.Equal(t, string(want), string(got), "key %q", key)
		checked++
		return false, nil
	})
	require.NoError(t, err)
	assert.Equal(t, 6, checked)
}

// Member order within a bucket survives the round trip.
func TestSplitPreservesEncounterOrder(t *testing.T) {
	_, outDir, _ := runSplit(t)

	store := shard.NewStore(outDir, zap.NewNop())
	sh, err := store.Load(context.Background(), "c")
	require.NoError(t, err)

	matches, truncated := sh.Prefix("", 10)
	require.False(t, truncated)
	assert.Equal(t, []string{"cat", "Car"}, matches)
}
