// Package filename canonicalizes raw file names into the stable identifier
// fragments used as ledger ids and remote record keys.
package filename

import (
	"strings"
	"unicode"
)

// Normalize splits the trailing extension off name, strips every rune of the
// base that is not a word character, whitespace, '#' or '.', title-cases the
// remaining letter runs, removes all whitespace and reattaches the extension.
//
// The transform is prefix-stable across the chunk suffix: for any file f and
// index n, Normalize(f+"#chunk_"+n) == Normalize(f+"#chunk_") + n. Deletion
// matching relies on this.
func Normalize(name string) string {
	base, ext := name, ""
	if i := strings.LastIndexByte(name, '.'); i >= 0 {
		base, ext = name[:i], name[i+1:]
	}
	if ext != "" {
		ext = "." + ext
	}

	var b strings.Builder
	b.Grow(len(base))
	inWord := false
	for _, r := range base {
		switch {
		case unicode.IsLetter(r):
			if inWord {
				b.WriteRune(unicode.ToLower(r))
			} else {
				b.WriteRune(unicode.ToUpper(r))
			}
			inWord = true
		case unicode.IsDigit(r) || r == '_' || r == '#' || r == '.':
			b.WriteRune(r)
			inWord = false
		case unicode.IsSpace(r):
			inWord = false
		default:
			// Stripped before title-casing, so it neither survives nor
			// starts a new word.
		}
	}
	return b.String() + ext
}
