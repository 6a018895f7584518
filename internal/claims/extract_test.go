package claims_test

import (
	"reflect"
	"strings"
	"testing"

	"compaudit/internal/claims"
)

func TestExtractFilePaths(t *testing.T) {
	text := "Edited /home/user/project/tool.py and C:\\work\\app\\main.go, then /tmp."
	got := claims.ExtractFilePaths(text)
	want := []string{`/home/user/project/tool.py`, `C:\work\app\main.go`}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("unexpected paths: got %v want %v", got, want)
	}
}

func TestExtractFilePathsTrimsTrailingPunctuation(t *testing.T) {
	got := claims.ExtractFilePaths("see /etc/nginx/nginx.conf).")
	if len(got) != 1 || got[0] != "/etc/nginx/nginx.conf" {
		t.Fatalf("expected trimmed path, got %v", got)
	}
}

func TestExtractFilePathsDropsShortMatches(t *testing.T) {
	if got := claims.ExtractFilePaths("mounted at /a/b"); got != nil {
		t.Fatalf("expected no paths for short match, got %v", got)
	}
}

func TestExtractToolsWholeWordOnly(t *testing.T) {
	text := "Used the Read and Grep tools; Carefully reviewed the Readme."
	got := claims.ExtractTools(text)
	want := []string{"Grep", "Read"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("unexpected tools: got %v want %v", got, want)
	}
}

func TestExtractQuotesPrefersUserMessagesSection(t *testing.T) {
	text := "Intro with \"an early quoted remark here\".\n" +
		"All User Messages:\n" +
		"- \"please fix the cache invalidation bug\"\n" +
		"- \u201cuse a content-addressed cache\u201d\n" +
		"2. Next Section\n" +
		"\"a quote after the section boundary\"\n"
	got := claims.ExtractQuotes(text)
	want := []string{
		"use a content-addressed cache",
		"please fix the cache invalidation bug",
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("unexpected quotes: got %v want %v", got, want)
	}
}

func TestExtractQuotesFilters(t *testing.T) {
	text := `She said "{\"key\": \"val\"}" and "src/main/app.py" and "short" and "a real user request text".`
	got := claims.ExtractQuotes(text)
	if len(got) != 1 || got[0] != "a real user request text" {
		t.Fatalf("expected only the prose quote, got %v", got)
	}
}

func TestExtractQuotesDeduplicatesByPrefix(t *testing.T) {
	long := strings.Repeat("x", 45)
	text := "\"" + long + " one\" and \"" + long + " two\""
	got := claims.ExtractQuotes(text)
	if len(got) != 1 {
		t.Fatalf("expected prefix dedupe to keep one quote, got %d: %v", len(got), got)
	}
}

func TestExtractTopics(t *testing.T) {
	text := "We discussed the **Compaction Protocol** and the Verification Engine, " +
		"plus JSONL handling. **MODIFIED** label and the HTTP keyword should be skipped."
	got := claims.ExtractTopics(text, nil)
	want := []string{"Compaction Protocol", "JSONL", "Verification Engine"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("unexpected topics: got %v want %v", got, want)
	}
}

func TestExtractTopicsHonorsBlacklist(t *testing.T) {
	bl := claims.NewBlacklist([]string{"jsonl", "Verification Engine"})
	got := claims.ExtractTopics("JSONL and the Verification Engine and the Audit Ledger", bl)
	want := []string{"Audit Ledger"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("unexpected topics: got %v want %v", got, want)
	}
}

func TestExtractTopicsRejectsFormattingArtifacts(t *testing.T) {
	text := "**- broken** and **a==b==c!!** and **split\nterm** stay out"
	if got := claims.ExtractTopics(text, nil); got != nil {
		t.Fatalf("expected artifacts rejected, got %v", got)
	}
}

func TestExtractTurnCounts(t *testing.T) {
	got := claims.ExtractTurnCounts("a 68-turn session, later said 143 turns total")
	want := []int{68, 143}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("unexpected counts: got %v want %v", got, want)
	}
}

func TestExtractFunctions(t *testing.T) {
	text := "Added def parse_header(path) and class AuditEngine plus class Counter."
	got := claims.ExtractFunctions(text)
	want := []string{"AuditEngine", "parse_header"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("unexpected functions: got %v want %v", got, want)
	}
}

func TestExtractStripsCodeBlocksFirst(t *testing.T) {
	text := "prose mentions /home/user/project/real.py\n```\n/home/user/project/fake.py\nclass Hidden\n```\n"
	set := claims.Extract(text, nil)
	if len(set.FilePaths) != 1 || set.FilePaths[0] != "/home/user/project/real.py" {
		t.Fatalf("expected code-block path excluded, got %v", set.FilePaths)
	}
	if set.Functions != nil {
		t.Fatalf("expected no functions from stripped block, got %v", set.Functions)
	}
}

func TestExtractIsDeterministic(t *testing.T) {
	text := "**Topic One** and **Topic Two**, /home/u/a/b.py, Read tool, 10 turns, \"a stable quoted sentence\""
	first := claims.Extract(text, nil)
	second := claims.Extract(text, nil)
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("extraction not deterministic:\nfirst:  %+v\nsecond: %+v", first, second)
	}
}
