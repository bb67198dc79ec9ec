// Package split is the offline partitioning step: it streams a monolithic
// dataset once, routes every key through the bucket router, and writes one
// shard file per bucket plus a manifest. The output layout is exactly what
// the shard store consumes, and entry payloads are copied verbatim.
package split

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/ohler55/ojg/oj"
	"go.uber.org/zap"

	"github.com/agentic-research/lexvault/internal/bucket"
	"github.com/agentic-research/lexvault/internal/scan"
	"github.com/agentic-research/lexvault/internal/shard"
)

// Result summarizes a completed split.
type Result struct {
	Buckets int
	Entries int
}

type member struct {
	key string
	raw json.RawMessage
}

// Split partitions the dataset at sourcePath into per-bucket files under
// outDir and writes the manifest last, so a crashed run never leaves a
// directory that probes as sharded.
func Split(ctx context.Context, sourcePath, outDir string, log *zap.Logger) (*Result, error) {
	if log == nil {
		log = zap.NewNop()
	}

	f, err := os.Open(sourcePath)
	if err != nil {
		return nil, fmt.Errorf("open source %s: %w", sourcePath, err)
	}
	defer f.Close()

	// Bucket contents, each in source encounter order.
	buckets := make(map[string][]member)
	var order []string
	entries := 0
	err = scan.Members(ctx, f, func(key string, decode func() (json.RawMessage, error)) (bool, error) {
		raw, err := decode()
		if err != nil {
			return false, err
		}
		id := bucket.Of(key)
		if _, seen := buckets[id]; !seen {
			order = append(order, id)
		}
		buckets[id] = append(buckets[id], member{key: key, raw: raw})
		entries++
		return false, nil
	})
	if err != nil {
		return nil, fmt.Errorf("split %s: %w", sourcePath, err)
	}

	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return nil, fmt.Errorf("create shard dir: %w", err)
	}

	counts := make(map[string]any, len(buckets))
	for _, id := range order {
		members := buckets[id]
		path := filepath.Join(outDir, bucket.FileName(id))
		if err := writeBucket(path, members); err != nil {
			return nil, err
		}
		counts[id] = len(members)
		log.Debug("bucket written", zap.String("bucket", id), zap.Int("entries", len(members)))
	}

	manifest := map[string]any{
		"version": 1,
		"source":  filepath.Base(sourcePath),
		"created": time.Now().UTC().Format(time.RFC3339),
		"entries": entries,
		"buckets": counts,
	}
	manifestPath := filepath.Join(outDir, shard.ManifestName)
	if err := os.WriteFile(manifestPath, []byte(oj.JSON(manifest, 2)), 0o644); err != nil {
		return nil, fmt.Errorf("write manifest: %w", err)
	}

	log.Info("split complete",
		zap.String("source", sourcePath),
		zap.Int("buckets", len(buckets)),
		zap.Int("entries", entries))
	return &Result{Buckets: len(buckets), Entries: entries}, nil
}

// writeBucket lays out one shard file, preserving member order and the raw
// bytes of every entry.
func writeBucket(path string, members []member) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create shard %s: %w", path, err)
	}

	w := bufio.NewWriter(f)
	_, _ = w.WriteString("{")
	for i, m := range members {
		if i > 0 {
			_, _ = w.WriteString(",")
		}
		_, _ = w.WriteString("\n  ")
		_, _ = w.WriteString(oj.JSON(m.key))
		_, _ = w.WriteString(": ")
		_, _ = w.Write(m.raw)
	}
	_, _ = w.WriteString("\n}\n")

	if err := w.Flush(); err != nil {
		_ = f.Close()
		return fmt.Errorf("write shard %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close shard %s: %w", path, err)
	}
	return nil
}
