package svcinstall

import (
	"github.com/juju/errors"
)

// InitSystem identifies the service manager running on a host
type InitSystem int

const (
	// InitSystemUnknown represents an undetected init system; passing it
	// to the registry triggers host detection
	InitSystemUnknown InitSystem = iota
	// InitSystemSystemd represents systemd
	InitSystemSystemd
	// InitSystemSysvinit represents classic sysvinit-style init scripts
	InitSystemSysvinit
	// InitSystemUpstart represents upstart
	InitSystemUpstart
	// InitSystemOpenRC represents OpenRC (detected but not managed)
	InitSystemOpenRC
	// InitSystemDockerInit represents docker-init (tini), managed via
	// sysvinit-style scripts
	InitSystemDockerInit
	// InitSystemLaunchd represents macOS launchd
	InitSystemLaunchd
	// InitSystemWindows represents the Windows Service Control Manager
	InitSystemWindows
)

// InitSystem string constants
const (
	initSystemUnknownStr    = "unknown"
	initSystemSystemdStr    = "systemd"
	initSystemSysvinitStr   = "sysvinit"
	initSystemUpstartStr    = "upstart"
	initSystemOpenRCStr     = "openrc"
	initSystemDockerInitStr = "docker-init"
	initSystemLaunchdStr    = "launchd"
	initSystemWindowsStr    = "windows"
)

// String returns the string representation of an InitSystem
func (is InitSystem) String() string {
	switch is {
	case InitSystemSystemd:
		return initSystemSystemdStr
	case InitSystemSysvinit:
		return initSystemSysvinitStr
	case InitSystemUpstart:
		return initSystemUpstartStr
	case InitSystemOpenRC:
		return initSystemOpenRCStr
	case InitSystemDockerInit:
		return initSystemDockerInitStr
	case InitSystemLaunchd:
		return initSystemLaunchdStr
	case InitSystemWindows:
		return initSystemWindowsStr
	default:
		return initSystemUnknownStr
	}
}

// ParseInitSystem maps an init system name (as accepted on a command
// line) to its typed identifier
func ParseInitSystem(name string) (InitSystem, error) {
	switch name {
	case initSystemSystemdStr:
		return InitSystemSystemd, nil
	case initSystemSysvinitStr:
		return InitSystemSysvinit, nil
	case initSystemUpstartStr:
		return InitSystemUpstart, nil
	case initSystemOpenRCStr:
		return InitSystemOpenRC, nil
	case initSystemDockerInitStr:
		return InitSystemDockerInit, nil
	case initSystemLaunchdStr:
		return InitSystemLaunchd, nil
	case initSystemWindowsStr:
		return InitSystemWindows, nil
	default:
		return InitSystemUnknown, errors.NotValidf("init system %q", name)
	}
}
