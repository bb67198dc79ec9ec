package bucket

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOf(t *testing.T) {
	cases := []struct {
		name string
		key  string
		want string
	}{
		{"lowercase letter", "cat", "c"},
		{"uppercase letter folds", "Cat", "c"},
		{"surrounding whitespace trimmed", "  dog  ", "d"},
		{"empty key", "", Misc},
		{"whitespace only", "   \t\n", Misc},
		{"digit", "42nd", "4"},
		{"punctuation", "-dash", "-"},
		{"non-ascii letter kept verbatim", "über", "ü"},
		{"uppercase non-ascii not folded", "Über", "Ü"},
		{"cjk", "日本語", "日"},
		{"combining mark follows base", "étude", "e"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Of(tc.key))
		})
	}
}

// Routing must be idempotent and repeatable: the same key always lands in
// the same bucket, and routing a bucket id re-routes to itself for letters.
func TestOfDeterministic(t *testing.T) {
	keys := []string{"apple", "Apple", "", " ", "Ωmega", "42", "zebra"}
	for _, k := range keys {
		first := Of(k)
		for i := 0; i < 100; i++ {
			assert.Equal(t, first, Of(k), "key %q", k)
		}
	}
}

func TestFileName(t *testing.T) {
	assert.Equal(t, "a", FileName("a"))
	assert.Equal(t, Misc, FileName(Misc))
	assert.Equal(t, "ü", FileName("ü"))
	// Path-hostile codepoints are hex encoded.
	assert.Equal(t, "u002f", FileName("/"))
	assert.Equal(t, "u002e", FileName("."))
	assert.Equal(t, "u005c", FileName("\\"))
}
