package ui

import (
	"os"
	"testing"
)

func TestEnsureNewline(t *testing.T) {
	if got := EnsureNewline("hello"); got != "hello\n" {
		t.Errorf("Expected trailing newline, got %q", got)
	}
	if got := EnsureNewline("hello\n"); got != "hello\n" {
		t.Errorf("Expected unchanged string, got %q", got)
	}
	if got := EnsureNewline(""); got != "\n" {
		t.Errorf("Expected single newline for empty string, got %q", got)
	}
}

func TestFormatterFallback(t *testing.T) {
	old, had := os.LookupEnv("NO_COLOR")
	os.Setenv("NO_COLOR", "1")
	defer func() {
		if had {
			os.Setenv("NO_COLOR", old)
		} else {
			os.Unsetenv("NO_COLOR")
		}
	}()

	if got := Code.Sprint("capsule keys init"); got != "`capsule keys init`" {
		t.Errorf("Expected backtick fallback, got %q", got)
	}
	if got := Highlight.Sprint("alice"); got != "'alice'" {
		t.Errorf("Expected quoted fallback, got %q", got)
	}
	if got := Success.Sprintf("%d keys", 3); got != "3 keys" {
		t.Errorf("Expected undecorated fallback, got %q", got)
	}
}
