// Package titles normalizes user-entered item names into wiki title form.
package titles

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// connectorWords stay lowercase when they appear mid-title, matching the
// wiki's own article naming ("Protect_from_Magic", "Claws_of_Guthix").
var connectorWords = map[string]struct{}{
	"from": {},
	"of":   {},
	"to":   {},
	"in":   {},
	"with": {},
	"on":   {},
	"at":   {},
	"by":   {},
	"for":  {},
}

// FormatArgs splits a comma-separated list of item names into wiki title
// tokens: whitespace runs collapse to a single space, each segment is trimmed,
// spaces become underscores, and the first character is uppercased with the
// remainder lowercased. An empty or whitespace-only input yields nil.
func FormatArgs(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	collapsed := strings.Join(strings.Fields(raw), " ")
	segments := strings.Split(collapsed, ",")
	tokens := make([]string, 0, len(segments))
	for _, seg := range segments {
		seg = strings.TrimSpace(seg)
		seg = strings.ReplaceAll(seg, " ", "_")
		tokens = append(tokens, capitalize(seg))
	}
	return tokens
}

// CapitalizeEachWord uppercases the first letter of every underscore-separated
// word except connector words, which the wiki keeps lowercase. The transform
// is idempotent, so it is safe to apply to already-normalized titles.
func CapitalizeEachWord(title string) string {
	words := strings.Split(title, "_")
	for i, word := range words {
		if _, ok := connectorWords[word]; ok {
			continue
		}
		words[i] = capitalize(word)
	}
	return strings.Join(words, "_")
}

// capitalize uppercases the first rune and lowercases the rest.
func capitalize(s string) string {
	if s == "" {
		return s
	}
	r, size := utf8.DecodeRuneInString(s)
	return string(unicode.ToUpper(r)) + strings.ToLower(s[size:])
}
