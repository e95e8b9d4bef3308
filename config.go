package svcinstall

import (
	"os"
	"os/user"
	"path"
	"regexp"
	"strings"

	"github.com/juju/errors"
	"github.com/kardianos/osext"
)

// Environment probes used to fill defaults during normalization. They are
// package variables so tests can substitute deterministic values.
var (
	currentUser      = user.Current
	getwd            = os.Getwd
	executableFolder = osext.ExecutableFolder
)

// serviceNameRE restricts service names to characters that are safe in
// file names and native service identifiers on every supported manager.
var serviceNameRE = regexp.MustCompile(`^[a-zA-Z0-9][a-zA-Z0-9_.-]*$`)

// InstallOptions is the raw, caller-supplied input for an install or a
// dry-run generate. Optional fields left empty are filled from the
// environment by NormalizeInstall.
type InstallOptions struct {
	// System selects machine-wide scope instead of per-user scope
	System bool
	// Name is the service identifier; defaults to DefaultServiceName
	Name string
	// Cmd is the full shell command line the service executes
	Cmd string
	// User is the run-as user; defaults to the current user
	User string
	// Home is the home directory used to compute per-user paths;
	// defaults to the current user's home
	Home string
	// Cwd is the working directory for the launched process; defaults
	// to the working directory at invocation time
	Cwd string
	// Path holds extra directories prepended to the service's PATH,
	// order preserved
	Path []string
	// Env holds extra NAME=VALUE environment entries, order preserved
	Env []string
}

// UninstallOptions is the raw input for an uninstall.
type UninstallOptions struct {
	// System selects machine-wide scope instead of per-user scope
	System bool
	// Name is the service identifier; defaults to DefaultServiceName
	Name string
	// Home is the home directory used to compute per-user paths;
	// defaults to the current user's home
	Home string
}

// InstallConfig is the normalized record consumed by every manager. It is
// constructed by NormalizeInstall, used by exactly one manager call, and
// never mutated afterwards.
type InstallConfig struct {
	// System is true for machine-wide scope, false for per-user scope
	System bool
	// Name is the validated service identifier
	Name string
	// Cmd is the full shell command line the service executes
	Cmd string
	// User is the run-as user
	User string
	// Home is the home directory used to compute per-user paths
	Home string
	// Cwd is the working directory for the launched process
	Cwd string
	// Path holds extra PATH directories, caller order preserved
	Path []string
	// Env holds extra NAME=VALUE entries, caller order preserved
	Env []string
}

// UninstallConfig is the normalized record for uninstall operations.
type UninstallConfig struct {
	// System is true for machine-wide scope, false for per-user scope
	System bool
	// Name is the validated service identifier
	Name string
	// Home is the home directory used to compute per-user paths
	Home string
}

// NormalizeInstall validates raw install options and fills the optional
// fields from the environment. Validation failures satisfy
// errors.IsNotValid; no manager is ever reached with an invalid record.
func NormalizeInstall(opts InstallOptions) (*InstallConfig, error) {
	cfg := &InstallConfig{
		System: opts.System,
		Name:   opts.Name,
		Cmd:    opts.Cmd,
		User:   opts.User,
		Home:   opts.Home,
		Cwd:    opts.Cwd,
		Path:   append([]string(nil), opts.Path...),
		Env:    append([]string(nil), opts.Env...),
	}

	if cfg.Name == "" {
		cfg.Name = DefaultServiceName
	}
	if !serviceNameRE.MatchString(cfg.Name) {
		return nil, errors.NotValidf("service name %q", cfg.Name)
	}
	if strings.TrimSpace(cfg.Cmd) == "" {
		return nil, errors.NotValidf("empty service command")
	}
	for _, entry := range cfg.Env {
		if !strings.Contains(entry, "=") {
			return nil, errors.NotValidf("environment entry %q (missing '=')", entry)
		}
	}

	if cfg.User == "" || cfg.Home == "" {
		if u, err := currentUser(); err == nil {
			if cfg.User == "" {
				cfg.User = u.Username
			}
			if cfg.Home == "" {
				cfg.Home = u.HomeDir
			}
		}
	}
	if cfg.Cwd == "" {
		if wd, err := getwd(); err == nil {
			cfg.Cwd = wd
		}
	}

	return cfg, nil
}

// NormalizeUninstall validates raw uninstall options and fills the home
// directory from the environment when absent.
func NormalizeUninstall(opts UninstallOptions) (*UninstallConfig, error) {
	cfg := &UninstallConfig{
		System: opts.System,
		Name:   opts.Name,
		Home:   opts.Home,
	}

	if cfg.Name == "" {
		cfg.Name = DefaultServiceName
	}
	if !serviceNameRE.MatchString(cfg.Name) {
		return nil, errors.NotValidf("service name %q", cfg.Name)
	}

	if cfg.Home == "" {
		if u, err := currentUser(); err == nil {
			cfg.Home = u.HomeDir
		}
	}

	return cfg, nil
}

// servicePath composes the PATH value rendered into unix artifacts:
// caller-supplied directories in order, then the running executable's own
// directory, then the per-user runtime bin directory. The executable
// directory is included so the service can find the runtime that
// installed it even when the caller's PATH cannot.
func (c *InstallConfig) servicePath() string {
	dirs := make([]string, 0, len(c.Path)+2)
	dirs = append(dirs, c.Path...)
	if dir, err := executableFolder(); err == nil && dir != "" {
		dirs = append(dirs, dir)
	}
	dirs = append(dirs, path.Join(c.Home, runtimeBinDir))
	return strings.Join(dirs, ":")
}
