package logging

import "testing"

func TestNew_Levels(t *testing.T) {
	for _, lvl := range []string{"debug", "info", "WARN", " error "} {
		l, err := New(lvl)
		if err != nil {
			t.Fatalf("New(%q): %v", lvl, err)
		}
		if l == nil {
			t.Fatalf("New(%q) returned nil logger", lvl)
		}
	}
}

func TestNew_BadLevel(t *testing.T) {
	if _, err := New("loud"); err == nil {
		t.Fatal("expected error for unknown level")
	}
}

func TestNew_DebugEnabled(t *testing.T) {
	l, err := New("debug")
	if err != nil {
		t.Fatal(err)
	}
	if !l.Core().Enabled(-1) {
		t.Fatal("debug level not enabled")
	}
	l, _ = New("error")
	if l.Core().Enabled(0) {
		t.Fatal("info enabled at error level")
	}
}

func TestLevel(t *testing.T) {
	if got := Level("debug", "warn", "error"); got != "debug" {
		t.Fatalf("Level = %q", got)
	}
	if got := Level("", "warn", "error"); got != "warn" {
		t.Fatalf("Level = %q", got)
	}
	if got := Level("", "", "error"); got != "error" {
		t.Fatalf("Level = %q", got)
	}
	if got := Level("", "", ""); got != "info" {
		t.Fatalf("Level = %q", got)
	}
}
