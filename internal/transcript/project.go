package transcript

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// EncodeProjectPath converts a workspace path into the encoded directory name
// transcripts are stored under: the drive letter becomes a lowercase prefix
// and separators and underscores become dashes.
func EncodeProjectPath(projectPath string) string {
	p := strings.TrimRight(strings.ReplaceAll(projectPath, "\\", "/"), "/")
	if len(p) >= 2 && p[1] == ':' {
		p = strings.ToLower(p[:1]) + "-" + p[2:]
	}
	p = strings.ReplaceAll(p, "/", "-")
	p = strings.ReplaceAll(p, "_", "-")
	return p
}

// ResolveProjectDir maps a workspace path to its transcript directory under
// base. When the exact encoded name is absent it scans for a partial match.
func ResolveProjectDir(base, projectPath string) (string, error) {
	encoded := EncodeProjectPath(projectPath)
	candidate := filepath.Join(base, encoded)
	if isDir(candidate) {
		return candidate, nil
	}

	entries, err := os.ReadDir(base)
	if err != nil {
		return "", fmt.Errorf("transcript base %s unreadable: %w", base, err)
	}
	var available []string
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		if strings.Contains(e.Name(), encoded) {
			return filepath.Join(base, e.Name()), nil
		}
		available = append(available, e.Name())
	}
	sort.Strings(available)
	return "", fmt.Errorf("no transcript directory for %q (looked for %s, available: %s)",
		projectPath, candidate, strings.Join(available, ", "))
}

// ListTranscripts returns the .jsonl files in a directory, sorted by name.
func ListTranscripts(dir string) ([]string, error) {
	matches, err := filepath.Glob(filepath.Join(dir, "*.jsonl"))
	if err != nil {
		return nil, err
	}
	sort.Strings(matches)
	return matches, nil
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}
