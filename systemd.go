package svcinstall

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/renameio/v2"
	"github.com/juju/errors"
)

// ManagerSystemd registers services as systemd units. User-scope installs
// complete unprivileged (unit under ~/.config/systemd/user plus a linger
// grant so the service outlives the login session); system-scope installs
// stage the unit and report the elevated runbook instead of acting.
type ManagerSystemd struct {
	// UnitDir is the system-scope unit directory
	UnitDir string
	// SystemctlPath is the systemctl binary used for activation
	SystemctlPath string
	// LoginctlPath is the loginctl binary used to enable linger
	LoginctlPath string

	run commandRunner
}

// NewManagerSystemd creates a systemd manager with default paths.
func NewManagerSystemd() *ManagerSystemd {
	return &ManagerSystemd{
		UnitDir:       DefaultSystemdUnitDir,
		SystemctlPath: DefaultSystemctlPath,
		LoginctlPath:  DefaultLoginctlPath,
		run:           runCommand,
	}
}

func (m *ManagerSystemd) userUnitPath(home, name string) string {
	return filepath.Join(home, ".config", "systemd", "user", name+".service")
}

func (m *ManagerSystemd) systemUnitPath(name string) string {
	return filepath.Join(m.UnitDir, name+".service")
}

// GenerateConfig renders the unit file. System scope declares User= and
// hooks into multi-user.target; user scope omits User= and hooks into the
// per-user default.target.
func (m *ManagerSystemd) GenerateConfig(cfg *InstallConfig) (string, error) {
	if cfg.System && cfg.User == "" {
		return "", errors.NotValidf("system-scope systemd unit without a run-as user")
	}

	var unit strings.Builder

	unit.WriteString("[Unit]\n")
	fmt.Fprintf(&unit, "Description=%s %s\n", cfg.Name, descriptionSuffix)
	unit.WriteString("After=network.target\n")
	unit.WriteString("\n")

	unit.WriteString("[Service]\n")
	fmt.Fprintf(&unit, "ExecStart=/bin/sh -c %q\n", cfg.Cmd)
	fmt.Fprintf(&unit, "Environment=PATH=%s\n", cfg.servicePath())
	for _, entry := range cfg.Env {
		fmt.Fprintf(&unit, "Environment=%s\n", entry)
	}
	if cfg.Cwd != "" {
		fmt.Fprintf(&unit, "WorkingDirectory=%s\n", cfg.Cwd)
	}
	if cfg.System {
		fmt.Fprintf(&unit, "User=%s\n", cfg.User)
	}
	unit.WriteString("Restart=always\n")
	unit.WriteString("\n")

	unit.WriteString("[Install]\n")
	if cfg.System {
		unit.WriteString("WantedBy=multi-user.target\n")
	} else {
		unit.WriteString("WantedBy=default.target\n")
	}

	return unit.String(), nil
}

// Install implements Manager.
func (m *ManagerSystemd) Install(ctx context.Context, cfg *InstallConfig, onlyGenerate bool) (*Outcome, error) {
	userPath := m.userUnitPath(cfg.Home, cfg.Name)
	systemPath := m.systemUnitPath(cfg.Name)
	if err := checkNoArtifact(cfg.Name, userPath, systemPath); err != nil {
		return nil, errors.Trace(err)
	}

	target := userPath
	if cfg.System {
		target = systemPath
	}

	artifact, err := m.GenerateConfig(cfg)
	if err != nil {
		return nil, errors.Trace(err)
	}

	if onlyGenerate {
		return &Outcome{Path: target, Artifact: artifact}, nil
	}

	if cfg.System {
		staged, err := stageArtifact(cfg.Name+"-*.service", artifact)
		if err != nil {
			return nil, errors.Trace(err)
		}
		return &Outcome{
			Path:     target,
			Artifact: artifact,
			ManualSteps: []string{
				fmt.Sprintf("sudo cp %s %s", staged, target),
				fmt.Sprintf("sudo %s daemon-reload", m.SystemctlPath),
				fmt.Sprintf("sudo %s enable %s", m.SystemctlPath, cfg.Name),
				fmt.Sprintf("sudo %s start %s", m.SystemctlPath, cfg.Name),
			},
		}, nil
	}

	if cfg.User == "" {
		return nil, errors.NotValidf("user-scope systemd install without a user to enable linger for")
	}

	// Linger keeps the user manager (and the service) running without an
	// active login session. It must hold before the unit is written:
	// failing here is fatal and leaves no artifact behind.
	if _, err := m.run(ctx, m.LoginctlPath, "enable-linger", cfg.User); err != nil {
		return nil, errors.Annotatef(err, "enabling linger for user %q", cfg.User)
	}

	if err := os.MkdirAll(filepath.Dir(target), DirMode); err != nil {
		return nil, errors.Trace(err)
	}
	if err := renameio.WriteFile(target, []byte(artifact), FileMode); err != nil {
		return nil, errors.Trace(err)
	}

	var rb rollback
	rb.add("systemd unit cache", func() error {
		_, err := m.run(ctx, m.SystemctlPath, "--user", "daemon-reload")
		return err
	})
	rb.add("unit file "+target, func() error {
		return os.Remove(target)
	})

	activation := [][]string{
		{"--user", "daemon-reload"},
		{"--user", "enable", cfg.Name},
		{"--user", "start", cfg.Name},
	}
	for _, args := range activation {
		if _, err := m.run(ctx, m.SystemctlPath, args...); err != nil {
			rb.run()
			return nil, errors.Annotatef(err, "systemctl %s", strings.Join(args, " "))
		}
	}

	return &Outcome{Path: target}, nil
}

// Uninstall implements Manager.
func (m *ManagerSystemd) Uninstall(ctx context.Context, cfg *UninstallConfig) (*Outcome, error) {
	target := m.userUnitPath(cfg.Home, cfg.Name)
	if cfg.System {
		target = m.systemUnitPath(cfg.Name)
	}
	if _, err := os.Stat(target); err != nil {
		return nil, errors.NotFoundf("service %q (no artifact at %s)", cfg.Name, target)
	}

	if cfg.System {
		return &Outcome{
			Path: target,
			ManualSteps: []string{
				fmt.Sprintf("sudo %s stop %s", m.SystemctlPath, cfg.Name),
				fmt.Sprintf("sudo %s disable %s", m.SystemctlPath, cfg.Name),
				fmt.Sprintf("sudo rm %s", target),
				fmt.Sprintf("sudo %s daemon-reload", m.SystemctlPath),
			},
		}, nil
	}

	if err := os.Remove(target); err != nil {
		return nil, errors.Trace(err)
	}
	return &Outcome{
		Path: target,
		ManualSteps: []string{
			fmt.Sprintf("%s --user stop %s", m.SystemctlPath, cfg.Name),
			fmt.Sprintf("%s --user daemon-reload", m.SystemctlPath),
		},
	}, nil
}
