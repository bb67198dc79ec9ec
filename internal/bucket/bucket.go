// Package bucket routes lookup keys to shard buckets.
//
// Routing is a pure function of the key's first codepoint and must stay
// stable across process restarts: the shard files on disk were produced
// with the same rule, and a drifting router would silently orphan them.
package bucket

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// Misc is the reserved bucket for empty or whitespace-only keys.
const Misc = "_misc"

// Of maps a lookup key to its bucket identifier.
// ASCII letters route case-insensitively; any other leading codepoint is
// its own bucket. Total function, no failure mode.
func Of(key string) string {
	key = strings.TrimSpace(key)
	if key == "" {
		return Misc
	}
	r, _ := utf8.DecodeRuneInString(key)
	if r >= 'A' && r <= 'Z' {
		r += 'a' - 'A'
	}
	return string(r)
}

// FileName returns the storage unit name for a bucket identifier.
// Bucket ids double as shard file names; the handful of codepoints that
// are unusable in a file name (path separators, dot, controls) are encoded
// as their hex codepoint instead. The splitter and the shard store both
// name files through here, so the two always agree.
func FileName(id string) string {
	if id == Misc {
		return id
	}
	r, _ := utf8.DecodeRuneInString(id)
	if r == '.' || r == '/' || r == '\\' || r < 0x20 {
		return fmt.Sprintf("u%04x", r)
	}
	return id
}
