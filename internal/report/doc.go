// Package report renders audit and rerun results for humans and bundles
// machine-readable report files.
package report
