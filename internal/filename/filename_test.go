package filename

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"spaces and hash", "My File #1.txt", "MyFile#1.txt"},
		{"plain", "abc.txt", "Abc.txt"},
		{"chunk id keeps extension verbatim", "abc.txt#chunk_0", "Abc.txt#chunk_0"},
		{"uppercase folded to title case", "README NOTES.txt", "ReadmeNotes.txt"},
		{"punctuation stripped without word break", "a-b(c).pdf", "Abc.pdf"},
		{"no extension", "notes", "Notes"},
		{"no extension chunk id", "notes#chunk_3", "Notes#Chunk_3"},
		{"digits keep word boundaries", "report 2024 final.txt", "Report2024Final.txt"},
		{"trailing dot", "abc.", "Abc"},
		{"empty", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Normalize(tt.in))
		})
	}
}

func TestNormalizePrefixStable(t *testing.T) {
	for _, f := range []string{"abc.txt", "My File #1.txt", "notes", "a.b.c.doc"} {
		prefix := Normalize(f + "#chunk_")
		for _, n := range []string{"0", "1", "17"} {
			assert.Equal(t, prefix+n, Normalize(f+"#chunk_"+n))
		}
	}
}

func TestNormalizeDeterministic(t *testing.T) {
	in := "Annual Résumé (final) #2.pdf"
	assert.Equal(t, Normalize(in), Normalize(in))
}
