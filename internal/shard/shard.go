// Package shard loads and serves per-bucket partitions of the dataset.
// Each bucket maps to one file in the shard directory; a shard is read at
// most once per process lifetime and is immutable afterwards.
package shard

import (
	"encoding/json"
	"os"
	"strings"

	"github.com/ohler55/ojg/oj"
)

// ManifestName is the conventional manifest file name inside a shard
// directory. Its presence is what switches the engine into sharded mode.
const ManifestName = "manifest.json"

// Shard is an immutable key→entry mapping for one bucket.
type Shard struct {
	entries map[string]json.RawMessage
	keys    []string // encounter order from the shard file
}

// Get returns the entry stored under key.
func (s *Shard) Get(key string) (json.RawMessage, bool) {
	e, ok := s.entries[key]
	return e, ok
}

// Len reports the number of entries in the shard.
func (s *Shard) Len() int {
	return len(s.keys)
}

// Prefix collects keys starting with prefix, in the order the shard file
// listed them, up to limit. truncated=true means the limit cut the result
// short.
func (s *Shard) Prefix(prefix string, limit int) ([]string, bool) {
	var matches []string
	for _, k := range s.keys {
		if !strings.HasPrefix(k, prefix) {
			continue
		}
		matches = append(matches, k)
		if limit > 0 && len(matches) >= limit {
			return matches, true
		}
	}
	return matches, false
}

// ProbeManifest reads and parses the manifest at path. A readable,
// parseable manifest enables sharded mode; the parsed content is kept only
// so it can be exposed verbatim for diagnostics.
func ProbeManifest(path string) (any, bool) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, false
	}
	content, err := oj.Parse(data)
	if err != nil {
		return nil, false
	}
	return content, true
}
