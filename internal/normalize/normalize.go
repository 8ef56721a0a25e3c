// Package normalize provides the string helpers shared by job-offer matching:
// title normalization and a word-overlap ratio between two titles.
package normalize

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"
)

// MinWordLength is the number of runes a word must exceed to count as significant.
const MinWordLength = 2

// Title composes s to NFC, lowercases it, drops every rune that is not a letter, digit, underscore
// or whitespace, collapses whitespace runs to a single space and trims the result.
// Title is idempotent.
func Title(s string) string {
	var b strings.Builder
	b.Grow(len(s))

	for _, r := range strings.ToLower(norm.NFC.String(s)) {
		switch {
		case unicode.IsSpace(r):
			b.WriteRune(' ')
		case unicode.IsLetter(r), unicode.IsDigit(r), r == '_':
			b.WriteRune(r)
		}
	}

	return strings.Join(strings.Fields(b.String()), " ")
}

// SignificantWords returns the words of an already normalized title longer than MinWordLength runes.
func SignificantWords(normalized string) []string {
	fields := strings.Fields(normalized)
	words := make([]string, 0, len(fields))
	for _, f := range fields {
		if utf8.RuneCountInString(f) > MinWordLength {
			words = append(words, f)
		}
	}
	return words
}

// Overlap returns the number of distinct significant words shared by a and b,
// divided by the larger distinct word count of the two. Both inputs must be
// normalized. Titles without significant words never overlap.
func Overlap(a, b string) float64 {
	setA := wordSet(a)
	setB := wordSet(b)

	denominator := max(len(setA), len(setB))
	if denominator == 0 {
		return 0
	}

	shared := 0
	for w := range setA {
		if _, ok := setB[w]; ok {
			shared++
		}
	}

	return float64(shared) / float64(denominator)
}

func wordSet(normalized string) map[string]struct{} {
	words := SignificantWords(normalized)
	set := make(map[string]struct{}, len(words))
	for _, w := range words {
		set[w] = struct{}{}
	}
	return set
}
