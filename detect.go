package svcinstall

import (
	"context"
	"os"
	"runtime"
	"strings"

	"github.com/juju/errors"
)

// detector identifies the host's init system. macOS and Windows are
// decided from the OS alone; elsewhere it reads PID 1's command name,
// the portable way to identify the init system without special
// permissions. Probes are injectable for tests.
type detector struct {
	goos string
	run  commandRunner
	stat func(string) (os.FileInfo, error)
}

func newDetector() *detector {
	return &detector{
		goos: runtime.GOOS,
		run:  runCommand,
		stat: os.Stat,
	}
}

// Detect inspects the running host and reports which init system is
// active. The result is never cached: every install, uninstall, and
// generate re-detects unless the caller forces a specific manager.
func Detect(ctx context.Context) (InitSystem, error) {
	return newDetector().detect(ctx)
}

func (d *detector) detect(ctx context.Context) (InitSystem, error) {
	switch d.goos {
	case "darwin":
		return InitSystemLaunchd, nil
	case "windows":
		return InitSystemWindows, nil
	}

	out, err := d.run(ctx, "ps", "-p", "1", "-o", "comm=")
	if err != nil {
		return InitSystemUnknown, errors.Annotatef(err, "reading PID 1 command name")
	}
	return d.classify(strings.TrimSpace(out))
}

// classify maps PID 1's command name to an init system by substring.
func (d *detector) classify(comm string) (InitSystem, error) {
	switch {
	case strings.Contains(comm, "systemd"):
		return InitSystemSystemd, nil
	case strings.Contains(comm, "docker-init"):
		// Must precede the plain "init" match, which would shadow it.
		return InitSystemDockerInit, nil
	case strings.Contains(comm, "openrc"):
		return InitSystemOpenRC, nil
	case strings.Contains(comm, "init"):
		// PID 1 reporting plain "init" is either sysvinit or upstart;
		// upstart is identified by its control binary coexisting with
		// its job directory.
		if d.upstartPresent() {
			return InitSystemUpstart, nil
		}
		return InitSystemSysvinit, nil
	}
	return InitSystemUnknown, errors.NotSupportedf("init system %q", comm)
}

func (d *detector) upstartPresent() bool {
	if _, err := d.stat(initctlPath); err != nil {
		return false
	}
	fi, err := d.stat(DefaultUpstartConfDir)
	return err == nil && fi.IsDir()
}
