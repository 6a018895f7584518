package transcript

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"strings"
)

// CompactionMarker is the continuation preamble that identifies a compaction
// summary when the explicit record flag is absent.
const CompactionMarker = "This session is being continued from a previous conversation"

// maxLineSize bounds a single transcript record. Compaction summaries can be
// hundreds of kilobytes.
const maxLineSize = 16 * 1024 * 1024

// Summary is one compaction summary found in a transcript.
type Summary struct {
	Text      string
	Timestamp string
	SessionID string
	Line      int
}

type record struct {
	IsCompactSummary bool           `json:"isCompactSummary"`
	Timestamp        string         `json:"timestamp"`
	SessionID        string         `json:"sessionId"`
	Message          *recordMessage `json:"message"`
}

type recordMessage struct {
	Content json.RawMessage `json:"content"`
}

type contentBlock struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// FindCompactionSummaries scans a .jsonl transcript and returns every
// compaction summary in file order.
func FindCompactionSummaries(path string) ([]Summary, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open transcript: %w", err)
	}
	defer f.Close()

	var summaries []Summary
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 64*1024), maxLineSize)

	lineno := 0
	for scanner.Scan() {
		lineno++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		// Cheap substring check before decoding the record.
		if !strings.Contains(line, "isCompactSummary") && !strings.Contains(line, CompactionMarker) {
			continue
		}

		var rec record
		if err := json.Unmarshal([]byte(line), &rec); err != nil {
			continue
		}

		content := flattenContent(rec.Message)
		isCompact := rec.IsCompactSummary
		if !isCompact {
			// Fallback: marker text at the start of a user message.
			head := content
			if len(head) > 200 {
				head = head[:200]
			}
			isCompact = strings.Contains(head, CompactionMarker)
		}
		if !isCompact {
			continue
		}

		summaries = append(summaries, Summary{
			Text:      content,
			Timestamp: rec.Timestamp,
			SessionID: rec.SessionID,
			Line:      lineno,
		})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan transcript: %w", err)
	}
	return summaries, nil
}

// flattenContent joins text-typed blocks when content is a block list, or
// returns the content verbatim when it is a plain string.
func flattenContent(msg *recordMessage) string {
	if msg == nil || len(msg.Content) == 0 {
		return ""
	}

	var asString string
	if err := json.Unmarshal(msg.Content, &asString); err == nil {
		return asString
	}

	var blocks []json.RawMessage
	if err := json.Unmarshal(msg.Content, &blocks); err != nil {
		return ""
	}
	var parts []string
	for _, raw := range blocks {
		var block contentBlock
		if err := json.Unmarshal(raw, &block); err == nil && block.Type == "text" {
			parts = append(parts, block.Text)
			continue
		}
		var plain string
		if err := json.Unmarshal(raw, &plain); err == nil {
			parts = append(parts, plain)
		}
	}
	return strings.Join(parts, "\n")
}

// Pick resolves a --which style index: non-negative indexes count from the
// start, negative from the end.
func Pick(summaries []Summary, which int) (Summary, error) {
	idx := which
	if idx < 0 {
		idx = len(summaries) + idx
	}
	if idx < 0 || idx >= len(summaries) {
		return Summary{}, fmt.Errorf("summary index %d out of range (found %d)", which, len(summaries))
	}
	return summaries[idx], nil
}

// ReadSummaryFile reads a compaction summary pasted into a plain text file.
func ReadSummaryFile(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read summary file: %w", err)
	}
	return string(data), nil
}
