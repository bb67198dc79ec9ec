// Package lookup orchestrates how a key's entry is found: recency cache
// first, then either the sharded path (bucket routing plus lazy shard
// loads) or a streaming scan of the monolithic source. The strategy is
// chosen once at construction and never re-evaluated.
package lookup

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/agentic-research/lexvault/api"
	"github.com/agentic-research/lexvault/internal/bucket"
	"github.com/agentic-research/lexvault/internal/cache"
	"github.com/agentic-research/lexvault/internal/scan"
	"github.com/agentic-research/lexvault/internal/shard"
)

// ErrNotFound marks a key or prefix that is absent from the dataset. It is
// a terminal outcome, never a fault.
var ErrNotFound = errors.New("entry not found")

// Prefix search limits. Requests above the maximum are clamped, not
// rejected.
const (
	DefaultPrefixLimit = 50
	MaxPrefixLimit     = 200
)

// Config carries the resolved values the engine needs. Parsing flags and
// environment is the caller's job.
type Config struct {
	// SourcePath locates the monolithic dataset, used when no shard
	// manifest is found (and by nothing else).
	SourcePath string
	// ShardDir holds one file per bucket plus the manifest.
	ShardDir string
	// ManifestPath overrides the default manifest location inside ShardDir.
	ManifestPath string
	// CacheSize bounds the resolved-entry cache; 0 means the default.
	CacheSize int
	Logger    *zap.Logger
}

// Engine answers exact and prefix lookups with bounded memory. Construct
// with New; the sharded-vs-streaming decision is fixed for the process
// lifetime.
type Engine struct {
	source   string
	cache    *cache.Recency
	shards   *shard.Store // nil in streaming mode
	manifest any
	log      *zap.Logger
}

// New probes for a readable manifest to pick the lookup strategy and wires
// up the cache. At least one of a manifest-bearing shard directory or a
// source path must be available.
func New(cfg Config) (*Engine, error) {
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}

	rc, err := cache.New(cfg.CacheSize)
	if err != nil {
		return nil, err
	}
	e := &Engine{source: cfg.SourcePath, cache: rc, log: log}

	if cfg.ShardDir != "" {
		manifestPath := cfg.ManifestPath
		if manifestPath == "" {
			manifestPath = filepath.Join(cfg.ShardDir, shard.ManifestName)
		}
		if content, ok := shard.ProbeManifest(manifestPath); ok {
			e.manifest = content
			e.shards = shard.NewStore(cfg.ShardDir, log)
		}
	}

	if e.shards == nil && e.source == "" {
		return nil, fmt.Errorf("no dataset: need a shard directory with a manifest, or a source file")
	}

	log.Info("lookup engine ready",
		zap.Bool("sharded", e.shards != nil),
		zap.String("source", e.source),
		zap.String("shard_dir", cfg.ShardDir))
	return e, nil
}

// Sharded reports whether the engine resolved a shard manifest at startup.
func (e *Engine) Sharded() bool {
	return e.shards != nil
}

// Manifest returns the raw parsed manifest content for diagnostics, or nil
// in streaming mode. The engine never interprets it.
func (e *Engine) Manifest() any {
	return e.manifest
}

// Lookup resolves key to its entry. Misses return ErrNotFound; read or
// parse failures are returned as-is and are never conflated with a miss.
// Hits populate the recency cache regardless of which strategy found them.
func (e *Engine) Lookup(ctx context.Context, key string) (api.Entry, error) {
	if entry, ok := e.cache.Get(key); ok {
		return entry.(api.Entry), nil
	}

	var (
		entry api.Entry
		found bool
		err   error
	)
	if e.shards != nil {
		var sh *shard.Shard
		sh, err = e.shards.Load(ctx, bucket.Of(key))
		if err == nil {
			entry, found = sh.Get(key)
		}
	} else {
		entry, found, err = scan.FindExact(ctx, e.source, key)
	}
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, ErrNotFound
	}

	e.cache.Put(key, entry)
	return entry, nil
}

// Prefix returns keys starting with query, bypassing the cache (distinct
// result shape). In sharded mode only the query's own bucket is consulted;
// in streaming mode the whole source is scanned. limit is clamped to
// [1, MaxPrefixLimit], defaulting to DefaultPrefixLimit when unset.
func (e *Engine) Prefix(ctx context.Context, query string, limit int) (api.PrefixResult, error) {
	switch {
	case limit <= 0:
		limit = DefaultPrefixLimit
	case limit > MaxPrefixLimit:
		limit = MaxPrefixLimit
	}

	var (
		matches   []string
		truncated bool
		err       error
	)
	if e.shards != nil {
		var sh *shard.Shard
		sh, err = e.shards.Load(ctx, bucket.Of(query))
		if err == nil {
			matches, truncated = sh.Prefix(query, limit)
		}
	} else {
		matches, truncated, err = scan.FindPrefix(ctx, e.source, query, limit)
	}
	if err != nil {
		return api.PrefixResult{}, err
	}
	if matches == nil {
		matches = []string{}
	}
	return api.PrefixResult{Matches: matches, Truncated: truncated}, nil
}
