// Package textutil provides the small text helpers shared by claim
// extraction, verification, and report rendering: rune-safe clipping and
// significant-word splitting for fuzzy matching.
package textutil

import "strings"

// Clip returns at most n bytes of s without splitting a multi-byte rune.
func Clip(s string, n int) string {
	if n < 0 {
		n = 0
	}
	if len(s) <= n {
		return s
	}
	for n > 0 && s[n]&0xC0 == 0x80 {
		n--
	}
	return s[:n]
}

// SignificantWords splits text on whitespace and keeps words longer than
// minLen bytes. Fuzzy matching ignores short filler words entirely.
func SignificantWords(text string, minLen int) []string {
	var words []string
	for _, w := range strings.Fields(text) {
		if len(w) > minLen {
			words = append(words, w)
		}
	}
	return words
}

// ContainsAnyWord reports whether haystack contains at least one word from
// words as a plain substring.
func ContainsAnyWord(haystack string, words []string) bool {
	for _, w := range words {
		if strings.Contains(haystack, w) {
			return true
		}
	}
	return false
}

// CountContainedWords returns how many of words appear in haystack as plain
// substrings.
func CountContainedWords(haystack string, words []string) int {
	hits := 0
	for _, w := range words {
		if strings.Contains(haystack, w) {
			hits++
		}
	}
	return hits
}
