package moderation

import (
	"strings"
	"unicode"
)

// leetSubs maps each letter to the characters commonly substituted for it.
// Variants are generated at construction so matching is a set lookup.
var leetSubs = map[rune][]rune{
	'a': {'a', '4', '@'},
	'e': {'e', '3'},
	'i': {'i', '1', '!'},
	'o': {'o', '0'},
	's': {'s', '5', '$'},
	't': {'t', '7'},
}

// DefaultBlockedWords is the profanity list applied to generated job
// descriptions before they are shown to employers.
var DefaultBlockedWords = []string{
	"shit", "fuck", "bitch", "bastard", "asshole", "dick", "cunt", "piss",
}

// Filter checks text tokens against a blocked-word list, including the leet
// spellings of each word.
type Filter struct {
	variants map[string]bool
}

// NewFilter expands every word into its leet variants and indexes them.
func NewFilter(words []string) *Filter {
	f := &Filter{variants: make(map[string]bool)}
	for _, w := range words {
		w = strings.ToLower(strings.TrimSpace(w))
		if w == "" {
			continue
		}
		for _, v := range expandVariants(w) {
			f.variants[v] = true
		}
	}
	return f
}

// NewDefaultFilter builds a Filter over DefaultBlockedWords.
func NewDefaultFilter() *Filter {
	return NewFilter(DefaultBlockedWords)
}

// ContainsBlockedWord reports whether any token of the text matches a
// blocked word or one of its leet spellings.
func (f *Filter) ContainsBlockedWord(text string) bool {
	for _, token := range tokenize(text) {
		if f.variants[token] {
			return true
		}
	}
	return false
}

// FirstBlockedWord returns the first matching token, or "" when clean.
func (f *Filter) FirstBlockedWord(text string) string {
	for _, token := range tokenize(text) {
		if f.variants[token] {
			return token
		}
	}
	return ""
}

// tokenize lowercases the text and splits it into tokens, keeping the
// characters leet spellings are built from.
func tokenize(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return false
		}
		switch r {
		case '@', '!', '$':
			return false
		}
		return true
	})
}

// expandVariants generates every spelling of the word where each letter is
// replaced by any of its leet substitutes.
func expandVariants(word string) []string {
	variants := []string{""}
	for _, r := range word {
		subs, ok := leetSubs[r]
		if !ok {
			subs = []rune{r}
		}
		next := make([]string, 0, len(variants)*len(subs))
		for _, prefix := range variants {
			for _, sub := range subs {
				next = append(next, prefix+string(sub))
			}
		}
		variants = next
	}
	return variants
}
