package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"compaudit/internal/archive"
	"compaudit/internal/history"
	"compaudit/internal/score"
)

const testSession = "# Session Archive\n" +
	"\n" +
	"**Session ID**: `abc12345-6789-4def-8123-456789abcdef`\n" +
	"**Turns**: 2\n" +
	"**Topics**: cache invalidation\n" +
	"**Tools Used**: Read, Edit\n" +
	"**Files Referenced**: loader.py\n" +
	"\n" +
	"## Turn 1 — User [10:01]\n" +
	"please fix the loader\n" +
	"\n" +
	"---\n" +
	"\n" +
	"## Turn 2 — Claude [10:02]\n" +
	"Edited /src/cache/loader.py.\n"

const testTranscriptLine = `{"isCompactSummary":true,"timestamp":"2026-08-01T10:00:00Z",` +
	`"sessionId":"abc12345-6789-4def-8123-456789abcdef",` +
	`"message":{"content":"Edited /src/cache/loader.py with the Edit tool across 2 turns."}}` + "\n"

type cliTestEnv struct {
	configPath     string
	archiveDir     string
	transcriptPath string
}

func setupCLITestEnv(t *testing.T) *cliTestEnv {
	t.Helper()

	base := t.TempDir()
	archiveDir := filepath.Join(base, archive.DirName)
	if err := os.MkdirAll(archiveDir, 0o755); err != nil {
		t.Fatalf("mkdir archive: %v", err)
	}
	session := filepath.Join(archiveDir, "session_2026-08-01_abc12345.md")
	if err := os.WriteFile(session, []byte(testSession), 0o644); err != nil {
		t.Fatalf("write session: %v", err)
	}

	projectDir := filepath.Join(base, "projects", "-work-demo")
	if err := os.MkdirAll(projectDir, 0o755); err != nil {
		t.Fatalf("mkdir project: %v", err)
	}
	transcriptPath := filepath.Join(projectDir, "session.jsonl")
	if err := os.WriteFile(transcriptPath, []byte(testTranscriptLine), 0o644); err != nil {
		t.Fatalf("write transcript: %v", err)
	}

	configPath := filepath.Join(base, "config.toml")
	content := fmt.Sprintf(`[paths]
archive_dir = %q
transcripts_base = %q

[logging]
level = "error"
`, archiveDir, filepath.Join(base, "projects"))
	if err := os.WriteFile(configPath, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	return &cliTestEnv{
		configPath:     configPath,
		archiveDir:     archiveDir,
		transcriptPath: transcriptPath,
	}
}

func runCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestAuditCommandJSONOutput(t *testing.T) {
	env := setupCLITestEnv(t)

	out, err := runCommand(t,
		"--config", env.configPath,
		"audit", "--jsonl", env.transcriptPath, "--format", "json")
	if err != nil {
		t.Fatalf("audit: %v\n%s", err, out)
	}

	var run score.AuditRun
	if err := json.Unmarshal([]byte(out), &run); err != nil {
		t.Fatalf("decode output: %v\n%s", err, out)
	}
	if run.Run != 1 {
		t.Fatalf("expected run 1, got %d", run.Run)
	}
	if run.Summary.Total == 0 {
		t.Fatal("expected extracted claims")
	}

	if _, err := os.Stat(filepath.Join(env.archiveDir, history.FileName)); err != nil {
		t.Fatalf("ledger not written: %v", err)
	}
}

func TestAuditCommandTextReport(t *testing.T) {
	env := setupCLITestEnv(t)

	out, err := runCommand(t,
		"--config", env.configPath,
		"audit", "--jsonl", env.transcriptPath, "--dry-run")
	if err != nil {
		t.Fatalf("audit: %v\n%s", err, out)
	}
	if !strings.Contains(out, "COMPACTION SUMMARY AUDIT REPORT") {
		t.Fatalf("missing report header:\n%s", out)
	}
	if !strings.Contains(out, "Trend:") {
		t.Fatalf("missing trend line:\n%s", out)
	}
}

func TestHistoryCommand(t *testing.T) {
	env := setupCLITestEnv(t)

	if out, err := runCommand(t,
		"--config", env.configPath,
		"audit", "--jsonl", env.transcriptPath); err != nil {
		t.Fatalf("seed audit: %v\n%s", err, out)
	}

	out, err := runCommand(t, "--config", env.configPath, "history")
	if err != nil {
		t.Fatalf("history: %v\n%s", err, out)
	}
	if !strings.Contains(out, "Trend:") {
		t.Fatalf("missing trend:\n%s", out)
	}
	if !strings.Contains(out, "abc12345") {
		t.Fatalf("missing session column:\n%s", out)
	}
}

func TestHistoryCommandEmpty(t *testing.T) {
	env := setupCLITestEnv(t)

	out, err := runCommand(t, "--config", env.configPath, "history")
	if err != nil {
		t.Fatalf("history: %v\n%s", err, out)
	}
	if !strings.Contains(out, "No audit history") {
		t.Fatalf("expected empty notice:\n%s", out)
	}
}

func TestRerunCommandDryRun(t *testing.T) {
	env := setupCLITestEnv(t)

	if out, err := runCommand(t,
		"--config", env.configPath,
		"audit", "--jsonl", env.transcriptPath); err != nil {
		t.Fatalf("seed audit: %v\n%s", err, out)
	}

	out, err := runCommand(t,
		"--config", env.configPath,
		"rerun", "--dry-run", "--project-path", "/work/demo")
	if err != nil {
		t.Fatalf("rerun: %v\n%s", err, out)
	}
	if !strings.Contains(out, "MATCHED") {
		t.Fatalf("expected matched plan entry:\n%s", out)
	}
}

func TestPreflightCommand(t *testing.T) {
	env := setupCLITestEnv(t)

	out, err := runCommand(t, "--config", env.configPath, "preflight")
	if err != nil {
		t.Fatalf("preflight: %v\n%s", err, out)
	}
	if !strings.Contains(out, "[OK]") {
		t.Fatalf("expected passing checks:\n%s", out)
	}
}

func TestConfigInitCommand(t *testing.T) {
	target := filepath.Join(t.TempDir(), "config.toml")

	out, err := runCommand(t, "config", "init", "--path", target)
	if err != nil {
		t.Fatalf("config init: %v\n%s", err, out)
	}
	data, err := os.ReadFile(target)
	if err != nil {
		t.Fatalf("read sample: %v", err)
	}
	if !strings.Contains(string(data), "[paths]") {
		t.Fatalf("sample config missing paths section:\n%s", data)
	}

	if _, err := runCommand(t, "config", "init", "--path", target); err == nil {
		t.Fatal("expected error when target exists without --overwrite")
	}
}
