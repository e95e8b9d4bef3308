package svcinstall

import (
	"context"
	"os"
	"strings"
	"testing"

	"github.com/juju/errors"
)

func TestWindowsGenerate(t *testing.T) {
	patchExecutableFolder(t, "/opt/runtime")

	m := NewManagerWindows()
	cfg := testInstallConfig("/Users/testuser")
	cfg.Env = []string{"FOO=bar"}

	out, err := m.GenerateConfig(cfg)
	if err != nil {
		t.Fatalf("GenerateConfig failed: %v", err)
	}

	for _, want := range []string{
		"@echo off",
		`set "PATH=/usr/local/bin;/opt/runtime;`,
		`set "FOO=bar"`,
		`cd /d "/Users/testuser"`,
		"deno run --allow-net server.ts",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("batch wrapper missing %q:\n%s", want, out)
		}
	}
}

func TestWindowsInstall(t *testing.T) {
	patchExecutableFolder(t, "/opt/runtime")
	home := t.TempDir()

	runner := &fakeRunner{}
	m := NewManagerWindows()
	m.run = runner.run
	m.elevated = func() bool { return false }
	cfg := testInstallConfig(home)

	outcome, err := m.Install(context.Background(), cfg, false)
	if err != nil {
		t.Fatalf("Install failed: %v", err)
	}

	if _, err := os.Stat(outcome.Path); err != nil {
		t.Fatalf("batch wrapper not written: %v", err)
	}

	// Unelevated, registration goes through the UAC prompt wrapper.
	if len(runner.lines) != 1 {
		t.Fatalf("want one sc invocation, got %v", runner.lines)
	}
	line := runner.lines[0]
	for _, want := range []string{"powershell.exe -Command", "Start-Process sc.exe", "-Verb RunAs", "create test-service"} {
		if !strings.Contains(line, want) {
			t.Errorf("sc invocation missing %q: %s", want, line)
		}
	}
}

func TestWindowsInstallElevatedSkipsPrompt(t *testing.T) {
	patchExecutableFolder(t, "/opt/runtime")
	home := t.TempDir()

	runner := &fakeRunner{}
	m := NewManagerWindows()
	m.run = runner.run
	m.elevated = func() bool { return true }
	cfg := testInstallConfig(home)

	if _, err := m.Install(context.Background(), cfg, false); err != nil {
		t.Fatalf("Install failed: %v", err)
	}
	if len(runner.lines) != 1 || !strings.HasPrefix(runner.lines[0], "sc.exe create test-service") {
		t.Errorf("elevated install should call sc.exe directly, got %v", runner.lines)
	}
}

func TestWindowsInstallRollsBackOnSCFailure(t *testing.T) {
	patchExecutableFolder(t, "/opt/runtime")
	home := t.TempDir()

	runner := &fakeRunner{reply: failOn("create", "access denied")}
	m := NewManagerWindows()
	m.run = runner.run
	m.elevated = func() bool { return true }
	cfg := testInstallConfig(home)

	_, err := m.Install(context.Background(), cfg, false)
	if err == nil {
		t.Fatal("expected error when sc create fails")
	}
	if !strings.Contains(err.Error(), "access denied") {
		t.Errorf("native diagnostic not surfaced: %v", err)
	}

	target := m.batchPath(home, cfg.Name)
	if _, statErr := os.Stat(target); !os.IsNotExist(statErr) {
		t.Errorf("rollback must remove the batch wrapper, found %s", target)
	}
}

func TestWindowsInstallDryRun(t *testing.T) {
	patchExecutableFolder(t, "/opt/runtime")
	home := t.TempDir()

	runner := &fakeRunner{}
	m := NewManagerWindows()
	m.run = runner.run
	cfg := testInstallConfig(home)

	outcome, err := m.Install(context.Background(), cfg, true)
	if err != nil {
		t.Fatalf("Install failed: %v", err)
	}
	if len(runner.lines) != 0 {
		t.Errorf("dry run executed %v", runner.lines)
	}
	if _, err := os.Stat(outcome.Path); !os.IsNotExist(err) {
		t.Errorf("dry run created %s", outcome.Path)
	}
	if !strings.Contains(outcome.Artifact, "@echo off") {
		t.Error("dry run outcome lacks the rendered artifact")
	}
}

func TestWindowsUninstall(t *testing.T) {
	home := t.TempDir()

	runner := &fakeRunner{}
	m := NewManagerWindows()
	m.run = runner.run
	m.elevated = func() bool { return true }

	if _, err := m.Uninstall(context.Background(), &UninstallConfig{Name: "ghost", Home: home}); !errors.IsNotFound(err) {
		t.Errorf("want not-found error, got %v", err)
	}

	target := m.batchPath(home, "test-service")
	if err := os.MkdirAll(home+"/.service", 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(target, []byte("@echo off\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, err := m.Uninstall(context.Background(), &UninstallConfig{Name: "test-service", Home: home}); err != nil {
		t.Fatalf("Uninstall failed: %v", err)
	}
	if len(runner.lines) != 1 || !strings.HasPrefix(runner.lines[0], "sc.exe delete test-service") {
		t.Errorf("sc delete not invoked: %v", runner.lines)
	}
	if _, err := os.Stat(target); !os.IsNotExist(err) {
		t.Error("batch wrapper still present after uninstall")
	}
}
