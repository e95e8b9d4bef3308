package svcinstall

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"text/template"

	"github.com/google/renameio/v2"
	"github.com/juju/errors"
)

// windowsBatchTemplate renders the batch wrapper the SCM entry points at.
const windowsBatchTemplate = `@echo off
rem {{.Name}} {{.Description}}
set "PATH={{.Path}};%PATH%"
{{range .Env}}set "{{.}}"
{{end}}{{if .Cwd}}cd /d "{{.Cwd}}"
{{end}}{{.Cmd}}
`

type windowsBatchFields struct {
	Name        string
	Description string
	Cmd         string
	Cwd         string
	Path        string
	Env         []string
}

// ManagerWindows registers services with the Windows Service Control
// Manager: a batch wrapper under {home}\.service plus an SCM entry
// created through sc.exe. Registration needs administrator rights; when
// the process is not already elevated, sc.exe runs through a powershell
// Start-Process -Verb RunAs wrapper so the OS's own UAC prompt mediates
// the elevation.
type ManagerWindows struct {
	// ScPath is the SCM control binary
	ScPath string
	// PowershellPath is the shell used for the UAC elevation wrapper
	PowershellPath string

	run      commandRunner
	elevated func() bool
	tmpl     *template.Template
}

// NewManagerWindows creates a Windows SCM manager with default paths.
func NewManagerWindows() *ManagerWindows {
	return &ManagerWindows{
		ScPath:         "sc.exe",
		PowershellPath: DefaultPowershellPath,
		run:            runCommand,
		elevated:       processElevated,
		tmpl:           template.Must(template.New("batch").Parse(windowsBatchTemplate)),
	}
}

func (m *ManagerWindows) batchPath(home, name string) string {
	return filepath.Join(home, ".service", name+".bat")
}

// GenerateConfig renders the batch wrapper.
func (m *ManagerWindows) GenerateConfig(cfg *InstallConfig) (string, error) {
	var out strings.Builder
	err := m.tmpl.Execute(&out, windowsBatchFields{
		Name:        cfg.Name,
		Description: descriptionSuffix,
		Cmd:         cfg.Cmd,
		Cwd:         cfg.Cwd,
		Path:        cfg.servicePathWindows(),
		Env:         cfg.Env,
	})
	if err != nil {
		return "", errors.Trace(err)
	}
	return out.String(), nil
}

// servicePathWindows composes the PATH for the batch wrapper with the
// Windows list separator; ordering matches servicePath.
func (c *InstallConfig) servicePathWindows() string {
	dirs := make([]string, 0, len(c.Path)+2)
	dirs = append(dirs, c.Path...)
	if dir, err := executableFolder(); err == nil && dir != "" {
		dirs = append(dirs, dir)
	}
	dirs = append(dirs, filepath.Join(c.Home, ".deno", "bin"))
	return strings.Join(dirs, ";")
}

// runSc executes an sc.exe command, directly when the process is already
// elevated, otherwise through the UAC prompt wrapper.
func (m *ManagerWindows) runSc(ctx context.Context, args ...string) error {
	if m.elevated() {
		_, err := m.run(ctx, m.ScPath, args...)
		return err
	}
	quoted := make([]string, len(args))
	for i, arg := range args {
		if strings.ContainsAny(arg, " \t") {
			quoted[i] = fmt.Sprintf("%q", arg)
		} else {
			quoted[i] = arg
		}
	}
	wrapped := fmt.Sprintf("Start-Process %s -ArgumentList '%s' -Verb RunAs -Wait",
		m.ScPath, strings.Join(quoted, " "))
	_, err := m.run(ctx, m.PowershellPath, "-Command", wrapped)
	return err
}

// Install implements Manager. SCM entries are machine-wide, so the scope
// flag does not change where the artifact lands.
func (m *ManagerWindows) Install(ctx context.Context, cfg *InstallConfig, onlyGenerate bool) (*Outcome, error) {
	target := m.batchPath(cfg.Home, cfg.Name)
	if err := checkNoArtifact(cfg.Name, target); err != nil {
		return nil, errors.Trace(err)
	}

	artifact, err := m.GenerateConfig(cfg)
	if err != nil {
		return nil, errors.Trace(err)
	}

	if onlyGenerate {
		return &Outcome{Path: target, Artifact: artifact}, nil
	}

	if err := os.MkdirAll(filepath.Dir(target), DirMode); err != nil {
		return nil, errors.Trace(err)
	}
	if err := renameio.WriteFile(target, []byte(artifact), FileMode); err != nil {
		return nil, errors.Trace(err)
	}

	var rb rollback
	rb.add("batch wrapper "+target, func() error {
		return os.Remove(target)
	})

	err = m.runSc(ctx, "create", cfg.Name, "binPath=", target, "start=", "auto")
	if err != nil {
		rb.run()
		return nil, errors.Annotatef(err, "registering %q with the service control manager", cfg.Name)
	}

	return &Outcome{Path: target}, nil
}

// Uninstall implements Manager.
func (m *ManagerWindows) Uninstall(ctx context.Context, cfg *UninstallConfig) (*Outcome, error) {
	target := m.batchPath(cfg.Home, cfg.Name)
	if _, err := os.Stat(target); err != nil {
		return nil, errors.NotFoundf("service %q (no artifact at %s)", cfg.Name, target)
	}

	if err := m.runSc(ctx, "delete", cfg.Name); err != nil {
		return nil, errors.Annotatef(err, "removing %q from the service control manager", cfg.Name)
	}
	if err := os.Remove(target); err != nil {
		return nil, errors.Trace(err)
	}

	return &Outcome{
		Path: target,
		ManualSteps: []string{
			fmt.Sprintf("%s stop %s (if the service is still running)", m.ScPath, cfg.Name),
		},
	}, nil
}
