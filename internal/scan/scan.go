// Package scan reads a monolithic JSON dataset incrementally, one top-level
// member at a time, so a lookup costs the distance to the key rather than a
// full parse of the file.
package scan

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
)

// Chunk size for buffered reads from the underlying source.
const readBufferSize = 64 * 1024

// MemberFunc receives each top-level member's key. Calling decode consumes
// the member's value; leaving it uncalled skips the value without
// materializing it. Returning stop=true ends the scan after this member.
type MemberFunc func(key string, decode func() (json.RawMessage, error)) (stop bool, err error)

// Members streams the top-level object members of the JSON document on r,
// in encounter order. The document is never held in memory as a whole:
// values are decoded or skipped token by token. Any parse error aborts the
// scan.
func Members(ctx context.Context, r io.Reader, fn MemberFunc) error {
	dec := json.NewDecoder(bufio.NewReaderSize(r, readBufferSize))

	tok, err := dec.Token()
	if err != nil {
		return fmt.Errorf("read object start: %w", err)
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return fmt.Errorf("expected top-level object, got %v", tok)
	}

	for dec.More() {
		if err := ctx.Err(); err != nil {
			return err
		}
		tok, err := dec.Token()
		if err != nil {
			return fmt.Errorf("read member key: %w", err)
		}
		key, ok := tok.(string)
		if !ok {
			return fmt.Errorf("expected member key, got %v", tok)
		}

		decoded := false
		decode := func() (json.RawMessage, error) {
			decoded = true
			var raw json.RawMessage
			if err := dec.Decode(&raw); err != nil {
				return nil, fmt.Errorf("decode value of %q: %w", key, err)
			}
			return raw, nil
		}

		stop, err := fn(key, decode)
		if err != nil {
			return err
		}
		if !decoded {
			if err := skipValue(dec); err != nil {
				return fmt.Errorf("skip value of %q: %w", key, err)
			}
		}
		if stop {
			return nil
		}
	}

	if _, err := dec.Token(); err != nil {
		return fmt.Errorf("read object end: %w", err)
	}
	return nil
}

// skipValue consumes exactly one JSON value from dec without keeping it.
func skipValue(dec *json.Decoder) error {
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	d, ok := tok.(json.Delim)
	if !ok || (d != '{' && d != '[') {
		return nil // scalar, already consumed
	}
	depth := 1
	for depth > 0 {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		if d, ok := tok.(json.Delim); ok {
			switch d {
			case '{', '[':
				depth++
			case '}', ']':
				depth--
			}
		}
	}
	return nil
}

// ExactMatch scans r for key and stops at the first match, leaving the rest
// of the stream unread. found=false with a nil error means the stream ended
// without the key.
func ExactMatch(ctx context.Context, r io.Reader, key string) (json.RawMessage, bool, error) {
	var (
		entry json.RawMessage
		found bool
	)
	err := Members(ctx, r, func(k string, decode func() (json.RawMessage, error)) (bool, error) {
		if k != key {
			return false, nil
		}
		raw, err := decode()
		if err != nil {
			return false, err
		}
		entry, found = raw, true
		return true, nil
	})
	if err != nil {
		return nil, false, err
	}
	return entry, found, nil
}

// PrefixMatch collects keys starting with prefix, in encounter order, up to
// limit. truncated=true means the scan stopped at the limit with the stream
// unfinished. Values are skipped, never decoded.
func PrefixMatch(ctx context.Context, r io.Reader, prefix string, limit int) ([]string, bool, error) {
	var (
		matches   []string
		truncated bool
	)
	err := Members(ctx, r, func(k string, _ func() (json.RawMessage, error)) (bool, error) {
		if !strings.HasPrefix(k, prefix) {
			return false, nil
		}
		matches = append(matches, k)
		if limit > 0 && len(matches) >= limit {
			truncated = true
			return true, nil
		}
		return false, nil
	})
	if err != nil {
		return nil, false, err
	}
	return matches, truncated, nil
}

// FindExact is ExactMatch over the file at path. The file is closed as soon
// as the scan terminates, including on an early match.
func FindExact(ctx context.Context, path, key string) (json.RawMessage, bool, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, false, fmt.Errorf("open source %s: %w", path, err)
	}
	defer f.Close()

	entry, found, err := ExactMatch(ctx, f, key)
	if err != nil {
		return nil, false, fmt.Errorf("scan %s: %w", path, err)
	}
	return entry, found, nil
}

// FindPrefix is PrefixMatch over the file at path.
func FindPrefix(ctx context.Context, path, prefix string, limit int) ([]string, bool, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, false, fmt.Errorf("open source %s: %w", path, err)
	}
	defer f.Close()

	matches, truncated, err := PrefixMatch(ctx, f, prefix, limit)
	if err != nil {
		return nil, false, fmt.Errorf("scan %s: %w", path, err)
	}
	return matches, truncated, nil
}
