package archive

import (
	"fmt"
	"io"
	"os"
	"regexp"
	"strconv"
	"strings"
)

// headerRegion bounds how much of a session file is scanned for metadata.
const headerRegion = 4000

// SessionMetadata is the condensed header of one archived session. It is
// parsed once per run and read-only for the rest of the pipeline.
type SessionMetadata struct {
	SessionID       string
	Filename        string
	Path            string
	Date            string
	Turns           int
	Topics          string
	ToolsUsed       string
	FilesReferenced string
	Summary         string
}

// Turn is one verbatim conversation turn.
type Turn struct {
	Number  int
	Role    string // "user" or "assistant"
	Time    string
	Content string
}

// Session bundles the parsed artifact.
type Session struct {
	Meta  SessionMetadata
	Turns []Turn
}

var (
	headerLinePattern = regexp.MustCompile(`\*\*(\w[\w\s]*)\*\*:\s*(.+)`)
	filenameDate      = regexp.MustCompile(`session_(\d{4}-\d{2}-\d{2})`)
	turnMarker        = regexp.MustCompile(`(?m)^## Turn (\d+) \x{2014} (\w+) \[(\S*)\]`)
)

// Load parses a session artifact into metadata and ordered turns.
func Load(path string) (*Session, error) {
	meta, err := ParseHeader(path)
	if err != nil {
		return nil, err
	}
	turns, err := ParseTurns(path)
	if err != nil {
		return nil, err
	}
	return &Session{Meta: meta, Turns: turns}, nil
}

// ParseHeader reads metadata from the bounded header region. Unrecognized
// keys are ignored; missing keys leave zero values.
func ParseHeader(path string) (SessionMetadata, error) {
	meta := SessionMetadata{
		Path:     path,
		Filename: baseName(path),
	}

	f, err := os.Open(path)
	if err != nil {
		return meta, fmt.Errorf("open session file: %w", err)
	}
	defer f.Close()

	buf := make([]byte, headerRegion)
	n, err := io.ReadFull(f, buf)
	if err != nil && err != io.EOF && err != io.ErrUnexpectedEOF {
		return meta, fmt.Errorf("read session header: %w", err)
	}
	header := string(buf[:n])

	if m := filenameDate.FindStringSubmatch(meta.Filename); m != nil {
		meta.Date = m[1]
	}

	for _, m := range headerLinePattern.FindAllStringSubmatch(header, -1) {
		key := strings.ToLower(strings.TrimSpace(m[1]))
		key = strings.ReplaceAll(key, " ", "_")
		val := strings.Trim(strings.TrimSpace(m[2]), "`")
		switch key {
		case "session_id":
			meta.SessionID = val
		case "turns":
			if n, err := strconv.Atoi(val); err == nil {
				meta.Turns = n
			}
		case "summary":
			meta.Summary = val
		case "topics":
			meta.Topics = val
		case "tools_used":
			meta.ToolsUsed = val
		case "files_referenced":
			meta.FilesReferenced = val
		}
	}

	return meta, nil
}

// ParseTurns slices the document into turns at the "## Turn" markers. The
// final turn runs to end of document.
func ParseTurns(path string) ([]Turn, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read session file: %w", err)
	}
	content := string(data)

	matches := turnMarker.FindAllStringSubmatchIndex(content, -1)
	turns := make([]Turn, 0, len(matches))
	for i, m := range matches {
		start := m[1]
		end := len(content)
		if i+1 < len(matches) {
			end = matches[i+1][0]
		}
		body := strings.TrimSpace(content[start:end])
		body = strings.TrimSpace(strings.TrimSuffix(body, "---"))

		number, _ := strconv.Atoi(content[m[2]:m[3]])
		turns = append(turns, Turn{
			Number:  number,
			Role:    normalizeRole(content[m[4]:m[5]]),
			Time:    content[m[6]:m[7]],
			Content: body,
		})
	}
	return turns, nil
}

// normalizeRole maps archive role labels onto the two pipeline roles. The
// archival collaborator writes "User" and "Claude".
func normalizeRole(label string) string {
	if strings.EqualFold(label, "user") {
		return "user"
	}
	return "assistant"
}

func baseName(path string) string {
	path = strings.ReplaceAll(path, "\\", "/")
	if i := strings.LastIndex(path, "/"); i >= 0 {
		return path[i+1:]
	}
	return path
}
