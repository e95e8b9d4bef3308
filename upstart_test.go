package svcinstall

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/juju/errors"
)

func TestUpstartGenerate(t *testing.T) {
	patchExecutableFolder(t, "/opt/runtime")

	m := NewManagerUpstart()
	cfg := testInstallConfig("/home/testuser")
	cfg.Env = []string{"FOO=bar"}

	out, err := m.GenerateConfig(cfg)
	if err != nil {
		t.Fatalf("GenerateConfig failed: %v", err)
	}

	for _, want := range []string{
		`description "test-service (Deno Service)"`,
		"respawn",
		"env PATH=/usr/local/bin:/opt/runtime:/home/testuser/.deno/bin",
		"env FOO=bar",
		`env SERVICE_COMMAND="deno run --allow-net server.ts"`,
		"chdir /home/testuser",
		"exec $SERVICE_COMMAND",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("job file missing %q:\n%s", want, out)
		}
	}
}

func TestUpstartGenerateDeterministic(t *testing.T) {
	patchExecutableFolder(t, "/opt/runtime")

	m := NewManagerUpstart()
	cfg := testInstallConfig("/home/testuser")

	first, err := m.GenerateConfig(cfg)
	if err != nil {
		t.Fatal(err)
	}
	second, err := m.GenerateConfig(cfg)
	if err != nil {
		t.Fatal(err)
	}
	if first != second {
		t.Error("GenerateConfig must be deterministic")
	}
}

func TestUpstartInstallAlwaysManual(t *testing.T) {
	patchExecutableFolder(t, "/opt/runtime")

	m := NewManagerUpstart()
	m.ConfDir = filepath.Join(t.TempDir(), "init")
	cfg := testInstallConfig("/home/testuser")

	outcome, err := m.Install(context.Background(), cfg, false)
	if err != nil {
		t.Fatalf("Install failed: %v", err)
	}

	if outcome.Path != m.jobPath("test-service") {
		t.Errorf("target = %q, want %q", outcome.Path, m.jobPath("test-service"))
	}
	steps := strings.Join(outcome.ManualSteps, "\n")
	for _, want := range []string{"sudo cp ", "initctl reload-configuration", "initctl start test-service"} {
		if !strings.Contains(steps, want) {
			t.Errorf("runbook missing %q:\n%s", want, steps)
		}
	}
	if _, err := os.Stat(outcome.Path); !os.IsNotExist(err) {
		t.Errorf("install wrote %s directly", outcome.Path)
	}

	staged := strings.Fields(outcome.ManualSteps[0])[2]
	os.Remove(staged)
}

func TestUpstartInstallRefusesExisting(t *testing.T) {
	patchExecutableFolder(t, "/opt/runtime")

	m := NewManagerUpstart()
	m.ConfDir = t.TempDir()
	cfg := testInstallConfig("/home/testuser")

	if err := os.WriteFile(m.jobPath(cfg.Name), []byte("respawn\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	_, err := m.Install(context.Background(), cfg, false)
	if !errors.IsAlreadyExists(err) {
		t.Errorf("want already-exists error, got %v", err)
	}
}

func TestUpstartUninstall(t *testing.T) {
	m := NewManagerUpstart()
	m.ConfDir = t.TempDir()

	if _, err := m.Uninstall(context.Background(), &UninstallConfig{Name: "ghost"}); !errors.IsNotFound(err) {
		t.Errorf("want not-found error, got %v", err)
	}

	target := m.jobPath("test-service")
	if err := os.WriteFile(target, []byte("respawn\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	outcome, err := m.Uninstall(context.Background(), &UninstallConfig{Name: "test-service"})
	if err != nil {
		t.Fatalf("Uninstall failed: %v", err)
	}
	if _, err := os.Stat(target); err != nil {
		t.Error("uninstall must not remove the job itself; removal needs elevation")
	}
	steps := strings.Join(outcome.ManualSteps, "\n")
	for _, want := range []string{"initctl stop test-service", "sudo rm " + target, "reload-configuration"} {
		if !strings.Contains(steps, want) {
			t.Errorf("runbook missing %q:\n%s", want, steps)
		}
	}
}
