// Package verify matches extracted claims against a parsed archive session
// using category-specific strategies, with an optional deep full-text pass
// that rechecks MISSING claims against complete turn content.
//
// Verification never mutates the archive. The deep pass only upgrades
// MISSING results to FOUND_DEEP; it never downgrades a status.
package verify
