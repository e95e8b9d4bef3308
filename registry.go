package svcinstall

import (
	"context"
	"io"
	"os"

	"github.com/juju/errors"
)

// Registry maps init-system identifiers to Manager implementations and is
// the entry point embedding callers use. It is an explicit object rather
// than process-wide state: construct one in the entry point and thread it
// to whatever needs it.
type Registry struct {
	managers map[InitSystem]Manager
	out      io.Writer
	detect   func(ctx context.Context) (InitSystem, error)
}

// RegistryOption configures a Registry
type RegistryOption func(*Registry)

// WithOutput redirects runbook and dry-run printing (default os.Stdout)
func WithOutput(w io.Writer) RegistryOption {
	return func(r *Registry) {
		r.out = w
	}
}

// WithDetect substitutes the host detection function
func WithDetect(fn func(context.Context) (InitSystem, error)) RegistryOption {
	return func(r *Registry) {
		r.detect = fn
	}
}

// NewRegistry creates a Registry with the five built-in managers
// registered. The sysvinit manager serves docker-init hosts too, which
// consume the same script format.
func NewRegistry(opts ...RegistryOption) *Registry {
	r := &Registry{
		managers: make(map[InitSystem]Manager),
		out:      os.Stdout,
		detect:   Detect,
	}

	sysv := NewManagerSysvinit()
	r.Register(InitSystemSystemd, NewManagerSystemd())
	r.Register(InitSystemSysvinit, sysv)
	r.Register(InitSystemDockerInit, sysv)
	r.Register(InitSystemUpstart, NewManagerUpstart())
	r.Register(InitSystemLaunchd, NewManagerLaunchd())
	r.Register(InitSystemWindows, NewManagerWindows())

	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Register adds or replaces the manager for an init system.
func (r *Registry) Register(id InitSystem, m Manager) {
	r.managers[id] = m
}

// lookup resolves the manager for a forced id, or detects the host's init
// system when none is forced. Detection is repeated on every call; the
// result is never cached.
func (r *Registry) lookup(ctx context.Context, forced InitSystem) (Manager, error) {
	id := forced
	if id == InitSystemUnknown {
		detected, err := r.detect(ctx)
		if err != nil {
			return nil, errors.Trace(err)
		}
		id = detected
	}
	m, ok := r.managers[id]
	if !ok {
		// Reachable for openrc, which detection reports but no manager
		// handles.
		return nil, errors.NotSupportedf("init system %q", id)
	}
	return m, nil
}

// InstallService normalizes the options and installs the service through
// the detected manager. Forcing a manager is only allowed together with
// onlyGenerate: installing an artifact through a manager the host is not
// running would register a config the native system cannot honor.
func (r *Registry) InstallService(ctx context.Context, opts InstallOptions, onlyGenerate bool, forced InitSystem) error {
	if forced != InitSystemUnknown && !onlyGenerate {
		return errors.NotValidf("forcing init system %q for a real install", forced)
	}

	cfg, err := NormalizeInstall(opts)
	if err != nil {
		return errors.Trace(err)
	}
	mgr, err := r.lookup(ctx, forced)
	if err != nil {
		return errors.Trace(err)
	}

	outcome, err := mgr.Install(ctx, cfg, onlyGenerate)
	if err != nil {
		return errors.Trace(err)
	}
	outcome.print(r.out, onlyGenerate)
	return nil
}

// UninstallService normalizes the options and uninstalls the service
// through the detected (or forced) manager.
func (r *Registry) UninstallService(ctx context.Context, opts UninstallOptions, forced InitSystem) error {
	cfg, err := NormalizeUninstall(opts)
	if err != nil {
		return errors.Trace(err)
	}
	mgr, err := r.lookup(ctx, forced)
	if err != nil {
		return errors.Trace(err)
	}

	outcome, err := mgr.Uninstall(ctx, cfg)
	if err != nil {
		return errors.Trace(err)
	}
	outcome.print(r.out, false)
	return nil
}

// GenerateConfig renders the native artifact for the detected (or forced)
// manager without touching the filesystem.
func (r *Registry) GenerateConfig(ctx context.Context, opts InstallOptions, forced InitSystem) (string, error) {
	cfg, err := NormalizeInstall(opts)
	if err != nil {
		return "", errors.Trace(err)
	}
	mgr, err := r.lookup(ctx, forced)
	if err != nil {
		return "", errors.Trace(err)
	}
	return mgr.GenerateConfig(cfg)
}
