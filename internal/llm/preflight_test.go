package llm

import (
	"strings"
	"testing"
)

func TestPreflight_Found(t *testing.T) {
	if err := Preflight("sh"); err != nil {
		t.Fatalf("expected sh to be found, got: %v", err)
	}
}

func TestPreflight_MissingBinary(t *testing.T) {
	err := Preflight("reqtrack-no-such-model-cli")
	if err == nil {
		t.Fatal("expected error for a missing binary")
	}
	if !strings.Contains(err.Error(), "reqtrack-no-such-model-cli") {
		t.Fatalf("expected error naming the binary, got: %v", err)
	}
}

func TestPreflight_DefaultsToClaude(t *testing.T) {
	err := Preflight("")
	if err == nil {
		t.Skip("claude binary found on PATH, cannot test missing binary path")
	}
	if !strings.Contains(err.Error(), "claude") {
		t.Fatalf("expected error mentioning claude, got: %v", err)
	}
}
