package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeTestConfig(t *testing.T, projects map[string]string) string {
	t.Helper()

	base := t.TempDir()
	var b strings.Builder
	fmt.Fprintf(&b, "[paths]\ndata_dir = %q\nlog_dir = %q\n", filepath.Join(base, "data"), filepath.Join(base, "logs"))
	if len(projects) > 0 {
		b.WriteString("\n[projects]\n")
		for name, path := range projects {
			fmt.Fprintf(&b, "%s = %q\n", name, path)
		}
	}

	path := filepath.Join(base, "config.toml")
	if err := os.WriteFile(path, []byte(b.String()), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
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

func TestProjectsCommandListsRegistry(t *testing.T) {
	projectDir := t.TempDir()
	cfgPath := writeTestConfig(t, map[string]string{"brooklyn": projectDir})

	out, err := runCommand(t, "projects", "--config", cfgPath)
	if err != nil {
		t.Fatalf("projects: %v", err)
	}
	if !strings.Contains(out, "brooklyn") || !strings.Contains(out, projectDir) {
		t.Fatalf("registry missing from output:\n%s", out)
	}
}

func TestProjectsCommandEmptyRegistry(t *testing.T) {
	cfgPath := writeTestConfig(t, nil)

	out, err := runCommand(t, "projects", "--config", cfgPath)
	if err != nil {
		t.Fatalf("projects: %v", err)
	}
	if !strings.Contains(out, "No projects registered") {
		t.Fatalf("unexpected output:\n%s", out)
	}
}

func TestEventsCommandOnFreshProject(t *testing.T) {
	projectDir := t.TempDir()
	cfgPath := writeTestConfig(t, map[string]string{"brooklyn": projectDir})

	out, err := runCommand(t, "events", "brooklyn", "--config", cfgPath)
	if err != nil {
		t.Fatalf("events: %v", err)
	}
	if !strings.Contains(out, "No events yet") {
		t.Fatalf("unexpected output:\n%s", out)
	}
}

func TestEventsCommandUnknownProject(t *testing.T) {
	cfgPath := writeTestConfig(t, nil)

	if _, err := runCommand(t, "events", "nowhere", "--config", cfgPath); err == nil {
		t.Fatal("expected error for unregistered project")
	}
}

func TestSettingsCommandShowsDefaults(t *testing.T) {
	projectDir := t.TempDir()
	cfgPath := writeTestConfig(t, map[string]string{"brooklyn": projectDir})

	out, err := runCommand(t, "settings", "brooklyn", "--config", cfgPath)
	if err != nil {
		t.Fatalf("settings: %v", err)
	}
	for _, want := range []string{"quality", "80", "max_dimension", "1200"} {
		if !strings.Contains(out, want) {
			t.Fatalf("output missing %q:\n%s", want, out)
		}
	}
}

func TestSettingsCommandPersistsChanges(t *testing.T) {
	projectDir := t.TempDir()
	cfgPath := writeTestConfig(t, map[string]string{"brooklyn": projectDir})

	if _, err := runCommand(t, "settings", "brooklyn", "--quality", "90", "--auto-event", "--config", cfgPath); err != nil {
		t.Fatalf("set: %v", err)
	}

	out, err := runCommand(t, "settings", "brooklyn", "--config", cfgPath)
	if err != nil {
		t.Fatalf("show: %v", err)
	}
	if !strings.Contains(out, "90") {
		t.Fatalf("quality change lost:\n%s", out)
	}
}

func TestParseSelection(t *testing.T) {
	got, err := parseSelection("1, 3,1", 3)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(got) != 2 || got[0] != 1 || got[1] != 3 {
		t.Fatalf("unexpected selection %v", got)
	}

	if got, err := parseSelection("   ", 3); err != nil || got != nil {
		t.Fatalf("blank input should select nothing, got %v err %v", got, err)
	}

	for _, input := range []string{"0", "4", "x", "1,4"} {
		if _, err := parseSelection(input, 3); err == nil {
			t.Errorf("input %q should fail", input)
		}
	}
}

func TestInitRegistersProject(t *testing.T) {
	base := t.TempDir()
	cfgPath := filepath.Join(base, "config.toml")
	projectDir := filepath.Join(base, "beach")

	out, err := runCommand(t, "init", "Beach Trips", "--path", projectDir, "--config", cfgPath)
	if err != nil {
		t.Fatalf("init: %v", err)
	}
	if !strings.Contains(out, "beach_trips") {
		t.Fatalf("sanitized key missing:\n%s", out)
	}

	if _, err := os.Stat(filepath.Join(projectDir, "assets")); err != nil {
		t.Fatalf("assets directory not created: %v", err)
	}

	listed, err := runCommand(t, "projects", "--config", cfgPath)
	if err != nil {
		t.Fatalf("projects after init: %v", err)
	}
	if !strings.Contains(listed, "beach_trips") {
		t.Fatalf("project not persisted:\n%s", listed)
	}
}
