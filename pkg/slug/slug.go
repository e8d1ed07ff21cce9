// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package slug derives the readable handle stored next to each harvested record.

A handle keeps only ASCII letters and digits from the title, folded to lower
case, with every run of anything else collapsed into a single hyphen. Accented
Latin letters and full-width forms fold to their ASCII base before filtering.
Titles with no foldable characters produce an empty handle, which [FromOr]
replaces with a caller-supplied fallback such as the remote identity.
*/
package slug

import (
	"strings"
	"unicode"

	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// From returns the handle for title, or "" when nothing in it folds to ASCII.
func From(title string) string {
	// Compatibility decomposition splits accents off and maps full-width forms.
	fold := transform.Chain(norm.NFKD, transform.RemoveFunc(func(r rune) bool {
		return unicode.Is(unicode.Mn, r)
	}))
	folded, _, err := transform.String(fold, title)
	if err != nil {
		folded = title
	}

	var b strings.Builder
	b.Grow(len(folded))

	gap := false
	for _, r := range folded {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
		case r >= 'A' && r <= 'Z':
			r += 'a' - 'A'
		default:
			gap = true
			continue
		}

		if gap && b.Len() > 0 {
			b.WriteByte('-')
		}
		gap = false
		b.WriteRune(r)
	}

	return b.String()
}

// FromOr returns [From] of title, or fallback when that is empty.
func FromOr(title, fallback string) string {
	if handle := From(title); handle != "" {
		return handle
	}
	return fallback
}
