package llm

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap/zaptest"
)

// fakeCLI writes an executable script standing in for the claude binary.
func fakeCLI(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "fake-claude")
	script := "#!/usr/bin/env bash\n" + body + "\n"
	if err := os.WriteFile(path, []byte(script), 0755); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestComplete_ResultEvent(t *testing.T) {
	cmd := fakeCLI(t, `echo '{"type":"result","subtype":"success","is_error":false,"result":"{\"intent\":\"help\"}","total_cost_usd":0.01}'`)
	c := &ClaudeCLI{Command: cmd, Model: "haiku", Log: zaptest.NewLogger(t)}
	got, err := c.Complete(context.Background(), "hi")
	if err != nil {
		t.Fatal(err)
	}
	if got != `{"intent":"help"}` {
		t.Fatalf("reply = %q", got)
	}
}

func TestComplete_PassesPromptAndModel(t *testing.T) {
	cmd := fakeCLI(t, `echo "$@"`)
	c := &ClaudeCLI{Command: cmd, Model: "opus"}
	got, err := c.Complete(context.Background(), "plan this")
	if err != nil {
		t.Fatal(err)
	}
	if got != "-p plan this --output-format json --model opus" {
		t.Fatalf("args = %q", got)
	}
}

func TestComplete_StripsClaudeCodeEnv(t *testing.T) {
	t.Setenv("CLAUDECODE", "1")
	cmd := fakeCLI(t, `echo "[${CLAUDECODE:-unset}]"`)
	c := &ClaudeCLI{Command: cmd}
	got, err := c.Complete(context.Background(), "x")
	if err != nil {
		t.Fatal(err)
	}
	if got != "[unset]" {
		t.Fatalf("CLAUDECODE leaked: %q", got)
	}
}

func TestComplete_NonZeroExit(t *testing.T) {
	cmd := fakeCLI(t, `echo "rate limited" >&2; exit 3`)
	c := &ClaudeCLI{Command: cmd}
	_, err := c.Complete(context.Background(), "x")
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "code 3") || !strings.Contains(err.Error(), "rate limited") {
		t.Fatalf("err = %v", err)
	}
}

func TestComplete_ErrorEvent(t *testing.T) {
	cmd := fakeCLI(t, `echo '{"type":"result","subtype":"error_max_turns","is_error":true,"result":""}'`)
	c := &ClaudeCLI{Command: cmd}
	_, err := c.Complete(context.Background(), "x")
	if err == nil || !strings.Contains(err.Error(), "error_max_turns") {
		t.Fatalf("err = %v", err)
	}
}

func TestComplete_Timeout(t *testing.T) {
	cmd := fakeCLI(t, `sleep 5`)
	c := &ClaudeCLI{Command: cmd, Timeout: 100 * time.Millisecond}
	start := time.Now()
	_, err := c.Complete(context.Background(), "x")
	if err == nil {
		t.Fatal("expected timeout error")
	}
	if time.Since(start) > 4*time.Second {
		t.Fatalf("timeout not enforced, took %v", time.Since(start))
	}
}

func TestParseOutput_PlainText(t *testing.T) {
	out, err := parseOutput([]byte("  just text\n"))
	if err != nil {
		t.Fatal(err)
	}
	if out.Text != "just text" {
		t.Fatalf("text = %q", out.Text)
	}
}
