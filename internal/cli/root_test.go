package cli

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestRootCommandSubcommands(t *testing.T) {
	root := New(io.Discard, LogInfo).RootCommand()

	want := []string{"layout", "watch", "serve", "cache", "completion"}
	for _, name := range want {
		cmd, _, err := root.Find([]string{name})
		if err != nil || cmd.Name() != name {
			t.Errorf("subcommand %q not registered", name)
		}
	}
}

func TestRootCommandLoadsConfig(t *testing.T) {
	dir := t.TempDir()
	cacheDir := filepath.Join(dir, "layouts")
	cfgPath := filepath.Join(dir, "config.toml")
	content := "direction = \"RIGHT\"\n\n[cache]\ndir = " + `"` + filepath.ToSlash(cacheDir) + `"` + "\n"
	if err := os.WriteFile(cfgPath, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	c := New(io.Discard, LogInfo)
	root := c.RootCommand()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetArgs([]string{"--config", cfgPath, "cache", "path"})
	if err := root.Execute(); err != nil {
		t.Fatalf("Execute() error: %v", err)
	}

	if got := strings.TrimSpace(out.String()); got != filepath.ToSlash(cacheDir) && got != cacheDir {
		t.Errorf("cache path = %q, want %q", got, cacheDir)
	}
	if c.Config.Direction != "RIGHT" {
		t.Errorf("config direction = %q, want RIGHT", c.Config.Direction)
	}
}

func TestRootCommandBadConfig(t *testing.T) {
	cfgPath := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(cfgPath, []byte(`direction = "SIDEWAYS"`), 0o644); err != nil {
		t.Fatal(err)
	}

	root := New(io.Discard, LogInfo).RootCommand()
	root.SetOut(io.Discard)
	root.SetErr(io.Discard)
	root.SetArgs([]string{"--config", cfgPath, "cache", "path"})
	if err := root.Execute(); err == nil {
		t.Error("Execute() should fail on an invalid config")
	}
}

func TestParseFormats(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{"", []string{"json"}},
		{"json", []string{"json"}},
		{"json, yaml,dot", []string{"json", "yaml", "dot"}},
	}
	for _, tt := range tests {
		got := parseFormats(tt.in)
		if strings.Join(got, "|") != strings.Join(tt.want, "|") {
			t.Errorf("parseFormats(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
