package verify_test

import (
	"strings"
	"testing"

	"compaudit/internal/archive"
	"compaudit/internal/claims"
	"compaudit/internal/verify"
)

func newVerifier(meta archive.SessionMetadata, turns ...archive.Turn) *verify.Verifier {
	return verify.New(&archive.Session{Meta: meta, Turns: turns})
}

func TestVerifyFilesFilenameFallback(t *testing.T) {
	v := newVerifier(archive.SessionMetadata{FilesReferenced: "tool.py, other.md"})

	results := v.VerifyFiles([]string{"/home/user/project/tool.py", `C:\work\gone.rs`})
	if results[0].Status != verify.StatusFound {
		t.Fatalf("expected filename fallback FOUND, got %s", results[0].Status)
	}
	if results[1].Status != verify.StatusMissing {
		t.Fatalf("expected MISSING for absent file, got %s", results[1].Status)
	}
}

func TestVerifyFilesCaseAndSlashNormalized(t *testing.T) {
	v := newVerifier(archive.SessionMetadata{FilesReferenced: `C:\Work\App\Main.GO`})
	results := v.VerifyFiles([]string{"c:/work/app/main.go"})
	if results[0].Status != verify.StatusFound {
		t.Fatalf("expected normalized match, got %s", results[0].Status)
	}
}

func TestVerifyTools(t *testing.T) {
	v := newVerifier(archive.SessionMetadata{ToolsUsed: "Read, Edit, Bash"})
	results := v.VerifyTools([]string{"Read", "Grep"})
	if results[0].Status != verify.StatusFound || results[1].Status != verify.StatusMissing {
		t.Fatalf("unexpected tool results: %+v", results)
	}
}

func TestVerifyQuotesStrategies(t *testing.T) {
	v := newVerifier(archive.SessionMetadata{},
		archive.Turn{Number: 1, Role: "user", Content: "we should use a content-addressed cache for this"},
		archive.Turn{Number: 2, Role: "assistant", Content: "done, the fabled missing sentence"},
	)

	tests := []struct {
		name  string
		quote string
		want  verify.Status
	}{
		{"exact substring", "use a content-addressed cache", verify.StatusFound},
		{"prefix match", "we should use a content-addressed cache for everything else too", verify.StatusFound},
		{"word overlap", "should use the content-addressed cache", verify.StatusFound},
		{"assistant text not searched", "the fabled missing sentence", verify.StatusMissing},
		{"no match", "completely unrelated claim about databases", verify.StatusMissing},
	}
	for _, tt := range tests {
		results := v.VerifyQuotes([]string{tt.quote})
		if results[0].Status != tt.want {
			t.Errorf("%s: got %s want %s", tt.name, results[0].Status, tt.want)
		}
	}
}

func TestVerifyQuotesTruncatesDisplay(t *testing.T) {
	v := newVerifier(archive.SessionMetadata{})
	long := strings.Repeat("a word ", 20)
	results := v.VerifyQuotes([]string{long})
	if len(results[0].Claim) != 83 || !strings.HasSuffix(results[0].Claim, "...") {
		t.Fatalf("expected 80-char display with ellipsis, got %q (%d)", results[0].Claim, len(results[0].Claim))
	}
}

func TestVerifyTopicsWordFallback(t *testing.T) {
	v := newVerifier(archive.SessionMetadata{Topics: "cache invalidation, audit engine"})

	results := v.VerifyTopics([]string{"Audit Engine", "Cache Warmup", "Database Sharding"})
	if results[0].Status != verify.StatusFound {
		t.Fatalf("expected full topic match, got %s", results[0].Status)
	}
	if results[1].Status != verify.StatusFound {
		t.Fatalf("expected word fallback match on cache, got %s", results[1].Status)
	}
	if results[2].Status != verify.StatusMissing {
		t.Fatalf("expected MISSING, got %s", results[2].Status)
	}
}

func TestVerifyTurnCountMismatchDetail(t *testing.T) {
	v := newVerifier(archive.SessionMetadata{Turns: 71})

	results := v.VerifyTurnCounts([]int{68, 71})
	if results[0].Status != verify.StatusMismatch {
		t.Fatalf("expected MISMATCH, got %s", results[0].Status)
	}
	if results[0].Detail != "archive: 71 turns" {
		t.Fatalf("unexpected mismatch detail: %q", results[0].Detail)
	}
	if results[0].Claim != "68 turns" {
		t.Fatalf("unexpected claim text: %q", results[0].Claim)
	}
	if results[1].Status != verify.StatusFound {
		t.Fatalf("expected exact count FOUND, got %s", results[1].Status)
	}
}

func TestVerifyFunctions(t *testing.T) {
	v := newVerifier(archive.SessionMetadata{},
		archive.Turn{Number: 1, Role: "assistant", Content: "added parse_header and the AuditEngine type"},
	)

	results := v.VerifyFunctions([]string{"parse_header", "AuditEngine", "vanished"})
	if results[0].Status != verify.StatusFound || results[0].Claim != "def parse_header()" {
		t.Fatalf("unexpected function result: %+v", results[0])
	}
	if results[1].Status != verify.StatusFound || results[1].Claim != "class AuditEngine" {
		t.Fatalf("unexpected class result: %+v", results[1])
	}
	if results[2].Status != verify.StatusMissing {
		t.Fatalf("expected MISSING, got %s", results[2].Status)
	}
}

func TestDeepSearchUpgradesOnlyMissing(t *testing.T) {
	v := newVerifier(archive.SessionMetadata{Turns: 71, FilesReferenced: "listed.py"},
		archive.Turn{Number: 1, Role: "user", Content: "please look at deep_only.py today"},
	)

	results := verify.Results{
		claims.FilePaths:  v.VerifyFiles([]string{"/home/user/deep_only.py", "/home/user/listed.py", "/home/user/gone.py"}),
		claims.TurnCounts: v.VerifyTurnCounts([]int{68}),
	}
	if results[claims.FilePaths][0].Status != verify.StatusMissing {
		t.Fatalf("precondition: deep_only.py should miss header check")
	}

	v.DeepSearch(results)

	if got := results[claims.FilePaths][0].Status; got != verify.StatusFoundDeep {
		t.Fatalf("expected FOUND_DEEP upgrade, got %s", got)
	}
	if got := results[claims.FilePaths][1].Status; got != verify.StatusFound {
		t.Fatalf("deep search must not touch FOUND, got %s", got)
	}
	if got := results[claims.FilePaths][2].Status; got != verify.StatusMissing {
		t.Fatalf("unfound claim should stay MISSING, got %s", got)
	}
	if got := results[claims.TurnCounts][0].Status; got != verify.StatusMismatch {
		t.Fatalf("MISMATCH must never be deep-upgraded, got %s", got)
	}
}

func TestDeepSearchPlainTermUsesFullText(t *testing.T) {
	v := newVerifier(archive.SessionMetadata{Topics: "unrelated"},
		archive.Turn{Number: 1, Role: "assistant", Content: "long discussion of Memoization strategy"},
	)

	results := verify.Results{claims.Topics: v.VerifyTopics([]string{"Memoization"})}
	v.DeepSearch(results)
	if got := results[claims.Topics][0].Status; got != verify.StatusFoundDeep {
		t.Fatalf("expected deep topic hit, got %s", got)
	}
}
