// Package canonical derives join keys from free-text labels.
//
// A key is accent-free, lower-case, restricted to ASCII letters, digits and
// single spaces. Keys are used to match spreadsheet labels against the
// reference catalogs and are never shown to users.
package canonical

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Key canonicalizes a label. The empty string maps to the empty key and
// Key(Key(s)) == Key(s) for every s.
func Key(text string) string {
	if text == "" {
		return ""
	}
	return collapse(fold(text))
}

// ProductKey is Key plus ordinal folding: a single ordinal letter attached
// to a digit ("1a", "2o", "1ª", "1º") is dropped so gendered season labels
// compare equal.
func ProductKey(text string) string {
	key := Key(text)
	if key == "" {
		return ""
	}
	words := strings.Fields(key)
	for i, w := range words {
		words[i] = foldOrdinal(w)
	}
	return strings.Join(words, " ")
}

// Column normalizes a spreadsheet header: Key with spaces replaced by
// underscores, so "Área (ha)" becomes "area_ha".
func Column(name string) string {
	return strings.ReplaceAll(Key(name), " ", "_")
}

// Singular strips one trailing "s" from a key.
func Singular(key string) string {
	return strings.TrimSuffix(key, "s")
}

var stripMarks = runes.Remove(runes.In(unicode.Mn))

// fold decomposes and drops combining marks. NFKD also maps "ª" and "º"
// to plain "a" and "o".
func fold(text string) string {
	t := transform.Chain(norm.NFKD, stripMarks)
	out, _, err := transform.String(t, text)
	if err != nil {
		return text
	}
	return out
}

// collapse lower-cases ASCII alphanumerics and turns every other run into
// a single separating space.
func collapse(text string) string {
	var b strings.Builder
	b.Grow(len(text))
	pendingSpace := false
	for _, r := range text {
		if isKeyRune(r) {
			if pendingSpace && b.Len() > 0 {
				b.WriteByte(' ')
			}
			pendingSpace = false
			b.WriteRune(unicode.ToLower(r))
			continue
		}
		pendingSpace = true
	}
	return b.String()
}

func isKeyRune(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9')
}

func foldOrdinal(word string) string {
	n := len(word)
	if n < 2 {
		return word
	}
	last := word[n-1]
	if (last == 'a' || last == 'o') && word[n-2] >= '0' && word[n-2] <= '9' {
		return word[:n-1]
	}
	return word
}
