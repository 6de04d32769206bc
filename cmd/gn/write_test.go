package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/jdockerty/gn/internal/config"
)

func TestResolvePayload(t *testing.T) {
	dir := t.TempDir()
	payloadPath := filepath.Join(dir, "payload.txt")
	if err := os.WriteFile(payloadPath, []byte("file-bytes"), 0o644); err != nil {
		t.Fatalf("write payload file: %v", err)
	}

	tests := []struct {
		name  string
		cfg   config.Config
		input string
		stdin string
		want  string
	}{
		{
			name:  "payload file wins",
			cfg:   config.Config{PayloadFile: payloadPath},
			input: "literal",
			want:  "file-bytes",
		},
		{
			name:  "literal argument",
			cfg:   config.Config{},
			input: "literal",
			want:  "literal",
		},
		{
			name:  "config payload",
			cfg:   config.Config{Payload: "from-config"},
			input: "-",
			want:  "from-config",
		},
		{
			name:  "stdin fallback",
			cfg:   config.Config{},
			input: "-",
			stdin: "piped-in",
			want:  "piped-in",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := resolvePayload(&tt.cfg, tt.input, strings.NewReader(tt.stdin))
			if err != nil {
				t.Fatalf("resolvePayload() error: %v", err)
			}
			if string(got) != tt.want {
				t.Fatalf("resolvePayload() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestResolvePayloadMissingFile(t *testing.T) {
	cfg := config.Config{PayloadFile: "/nonexistent/payload.txt"}
	if _, err := resolvePayload(&cfg, "-", strings.NewReader("")); err == nil {
		t.Fatal("expected error for missing payload file")
	}
}

func TestRootCommandSubcommands(t *testing.T) {
	root := newRootCommand()
	var names []string
	for _, c := range root.Commands() {
		names = append(names, c.Name())
	}
	for _, want := range []string{"write", "serve"} {
		found := false
		for _, name := range names {
			if name == want {
				found = true
			}
		}
		if !found {
			t.Fatalf("root command missing %q subcommand (have %v)", want, names)
		}
	}
}
