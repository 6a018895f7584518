// Package claims extracts checkable factual claims from compaction summary
// text and defines the category and severity tables shared by the verifier
// and scorer.
//
// Extraction is pure: the same summary text and blacklist always produce the
// same claim set, in a stable order. Fenced code blocks are stripped before
// any category runs so code snippets are never mistaken for prose claims.
// Categories are independent; extraction of one never affects another.
package claims
