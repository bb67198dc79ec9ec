package shard

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/agentic-research/lexvault/internal/bucket"
	"github.com/agentic-research/lexvault/internal/scan"
)

// Store lazily loads shards from a directory and memoizes them for the
// process lifetime. Concurrent requests for the same unresolved bucket
// share a single read through a singleflight group; the outcome (shard or
// error) is recorded so a bucket is never read twice.
type Store struct {
	dir  string
	log  *zap.Logger
	open func(path string) (io.ReadCloser, error) // replaced in tests

	group  singleflight.Group
	mu     sync.RWMutex
	loaded map[string]*loadResult
}

type loadResult struct {
	shard *Shard
	err   error
}

// NewStore builds a Store over the given shard directory.
func NewStore(dir string, log *zap.Logger) *Store {
	if log == nil {
		log = zap.NewNop()
	}
	return &Store{
		dir: dir,
		log: log,
		open: func(path string) (io.ReadCloser, error) {
			return os.Open(path)
		},
		loaded: make(map[string]*loadResult),
	}
}

// Load returns the shard for bucketID, reading its backing file on first
// use. A missing file is a valid state and yields an empty shard; any
// other read or parse failure is returned, and the failure itself is
// memoized so the bucket is not retried.
func (s *Store) Load(ctx context.Context, bucketID string) (*Shard, error) {
	s.mu.RLock()
	res, ok := s.loaded[bucketID]
	s.mu.RUnlock()
	if ok {
		return res.shard, res.err
	}

	// Honor the caller's cancellation here, before anything is shared:
	// a cancelled request must not leave a mark on the bucket.
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	v, err, _ := s.group.Do(bucketID, func() (any, error) {
		// A completed flight may have landed between the map check and
		// joining the group.
		s.mu.RLock()
		res, ok := s.loaded[bucketID]
		s.mu.RUnlock()
		if ok {
			return res.shard, res.err
		}

		// The flight's outcome is shared by every joined caller and
		// memoized for the process lifetime, so it must not inherit the
		// initiating caller's cancellation.
		sh, err := s.read(context.WithoutCancel(ctx), bucketID)
		s.mu.Lock()
		s.loaded[bucketID] = &loadResult{shard: sh, err: err}
		s.mu.Unlock()
		return sh, err
	})
	if err != nil {
		return nil, err
	}
	return v.(*Shard), nil
}

func (s *Store) read(ctx context.Context, bucketID string) (*Shard, error) {
	path := filepath.Join(s.dir, bucket.FileName(bucketID))
	rc, err := s.open(path)
	if errors.Is(err, fs.ErrNotExist) {
		s.log.Debug("missing shard treated as empty", zap.String("bucket", bucketID))
		return &Shard{entries: map[string]json.RawMessage{}}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("open shard %s: %w", path, err)
	}
	defer rc.Close()

	sh := &Shard{entries: make(map[string]json.RawMessage)}
	err = scan.Members(ctx, rc, func(key string, decode func() (json.RawMessage, error)) (bool, error) {
		raw, err := decode()
		if err != nil {
			return false, err
		}
		// First occurrence wins, matching the streaming scanner, which
		// stops at the first matching member.
		if _, dup := sh.entries[key]; !dup {
			sh.keys = append(sh.keys, key)
			sh.entries[key] = raw
		}
		return false, nil
	})
	if err != nil {
		return nil, fmt.Errorf("parse shard %s: %w", path, err)
	}

	s.log.Debug("shard loaded",
		zap.String("bucket", bucketID),
		zap.Int("entries", sh.Len()))
	return sh, nil
}
