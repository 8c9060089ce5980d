package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		rootCmd.SetArgs(nil)
	})
	err := rootCmd.Execute()
	return out.String(), err
}

func TestToolsCommand(t *testing.T) {
	out, err := execute(t, "tools")
	if err != nil {
		t.Fatalf("tools: %v", err)
	}

	var tools []struct {
		Name        string         `json:"name"`
		InputSchema map[string]any `json:"inputSchema"`
	}
	if err := json.Unmarshal([]byte(out), &tools); err != nil {
		t.Fatalf("decoding output: %v\n%s", err, out)
	}

	want := []string{"search_posts", "get_user_posts", "get_trending"}
	if len(tools) != len(want) {
		t.Fatalf("got %d tools, want %d", len(tools), len(want))
	}
	for i, name := range want {
		if tools[i].Name != name {
			t.Errorf("tools[%d] = %q, want %q", i, tools[i].Name, name)
		}
		if tools[i].InputSchema["type"] != "object" {
			t.Errorf("%s schema type = %v, want object", name, tools[i].InputSchema["type"])
		}
	}
}

func TestConfigCommands(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("XSEARCH_CONFIG", "")
	t.Setenv("XSEARCH_XAI_MODEL", "")

	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("xai:\n  model: grok-test\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	out, err := execute(t, "config", "validate", "--config", path)
	if err != nil {
		t.Fatalf("config validate: %v", err)
	}
	if !strings.Contains(out, "configuration is valid") {
		t.Errorf("validate output = %q", out)
	}

	out, err = execute(t, "config", "show", "--config", path)
	if err != nil {
		t.Fatalf("config show: %v", err)
	}
	if !strings.Contains(out, "model: grok-test") {
		t.Errorf("show output missing model:\n%s", out)
	}
	if !strings.Contains(out, "timeout: 30s") {
		t.Errorf("show output missing default timeout:\n%s", out)
	}
}

func TestConfigValidateRejectsInvalid(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("XSEARCH_CONFIG", "")

	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("server:\n  transport: grpc\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, err := execute(t, "config", "validate", "--config", path); err == nil {
		t.Fatal("expected validation error")
	}
}
