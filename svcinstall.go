package svcinstall

import (
	"io/fs"

	"github.com/juju/loggo"
)

var logger = loggo.GetLogger("svcinstall")

// Service naming and runtime constants
const (
	// DefaultServiceName is used when the caller supplies no name
	DefaultServiceName = "deno-service"

	// descriptionSuffix is appended to the service name in native
	// artifact descriptions
	descriptionSuffix = "(Deno Service)"

	// runtimeBinDir is the per-user runtime bin directory appended to
	// every rendered PATH, relative to the home directory
	runtimeBinDir = ".deno/bin"
)

// Default artifact locations, overridable per manager for testing
const (
	// DefaultSystemdUnitDir is the system-scope systemd unit directory
	DefaultSystemdUnitDir = "/etc/systemd/system"

	// DefaultInitdDir is the sysvinit script directory
	DefaultInitdDir = "/etc/init.d"

	// DefaultUpstartConfDir is the upstart job configuration directory
	DefaultUpstartConfDir = "/etc/init"

	// DefaultLaunchDaemonDir is the system-scope launchd daemon directory
	DefaultLaunchDaemonDir = "/Library/LaunchDaemons"
)

// Native control binaries
const (
	// DefaultSystemctlPath is the path to the systemctl binary
	DefaultSystemctlPath = "systemctl"

	// DefaultLoginctlPath is the path to the loginctl binary
	DefaultLoginctlPath = "loginctl"

	// DefaultPowershellPath is the Windows shell used to trigger the
	// UAC elevation prompt around sc.exe
	DefaultPowershellPath = "powershell.exe"

	// initctlPath is the upstart control binary probed during detection
	initctlPath = "/sbin/initctl"
)

// File modes
const (
	// DirMode is the default mode for created directories
	DirMode fs.FileMode = 0o755

	// FileMode is the default mode for created artifacts
	FileMode fs.FileMode = 0o644

	// ExecMode is the default mode for executable init scripts
	ExecMode fs.FileMode = 0o755
)
