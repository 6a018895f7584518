package archive

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// DirName is the conventional archive directory name.
const DirName = "context_archive"

// FindDir locates the archive directory starting from a path, falling back
// through a short candidate list before giving up.
func FindDir(start string) (string, bool) {
	candidates := []string{
		filepath.Join(start, DirName),
		filepath.Join(filepath.Dir(start), DirName),
		start,
	}
	for _, c := range candidates {
		if !isDir(c) {
			continue
		}
		if filepath.Base(c) == DirName {
			return c, true
		}
		if files, err := ListSessionFiles(c); err == nil && len(files) > 0 {
			return c, true
		}
	}
	return "", false
}

// ListSessionFiles returns session artifacts in lexicographic order,
// preferring the enriched variant when both session_X.md and
// session_X.enriched.md exist.
func ListSessionFiles(dir string) ([]string, error) {
	matches, err := filepath.Glob(filepath.Join(dir, "session_*.md"))
	if err != nil {
		return nil, err
	}

	byBase := make(map[string]string)
	for _, path := range matches {
		name := filepath.Base(path)
		if name == "index.md" {
			continue
		}
		base := strings.Replace(name, ".enriched.md", ".md", 1)
		if _, ok := byBase[base]; !ok || strings.HasSuffix(name, ".enriched.md") {
			byBase[base] = path
		}
	}

	files := make([]string, 0, len(byBase))
	for _, path := range byBase {
		files = append(files, path)
	}
	sort.Slice(files, func(i, j int) bool {
		return filepath.Base(files[i]) < filepath.Base(files[j])
	})
	return files, nil
}

// SelectSession picks the artifact to audit against: an explicit request
// wins, then a session-id hint matched by its short prefix, then the
// lexicographically last file.
func SelectSession(files []string, explicit, sessionIDHint string) (string, bool) {
	if explicit != "" {
		for _, f := range files {
			if strings.Contains(filepath.Base(f), explicit) || strings.Contains(f, explicit) {
				return f, true
			}
		}
		return "", false
	}
	if sessionIDHint != "" {
		short := sessionIDHint
		if len(short) > 8 {
			short = short[:8]
		}
		for _, f := range files {
			if strings.Contains(filepath.Base(f), short) {
				return f, true
			}
		}
	}
	if len(files) > 0 {
		return files[len(files)-1], true
	}
	return "", false
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}
