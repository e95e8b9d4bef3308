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

// plistEscape covers the XML special characters that can appear in
// commands and environment values.
var plistEscape = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
)

// ManagerLaunchd registers services as launchd property lists: launch
// agents under the user's home in user scope, launch daemons under
// /Library/LaunchDaemons in system scope. launchd requires an explicit
// launchctl load, which is reported rather than executed.
type ManagerLaunchd struct {
	// DaemonDir is the system-scope launch daemon directory
	DaemonDir string
}

// NewManagerLaunchd creates a launchd manager with default paths.
func NewManagerLaunchd() *ManagerLaunchd {
	return &ManagerLaunchd{
		DaemonDir: DefaultLaunchDaemonDir,
	}
}

func (m *ManagerLaunchd) agentPath(home, name string) string {
	return filepath.Join(home, "Library", "LaunchAgents", name+".plist")
}

func (m *ManagerLaunchd) daemonPath(name string) string {
	return filepath.Join(m.DaemonDir, name+".plist")
}

// GenerateConfig renders the property list. The command line is split on
// whitespace into ProgramArguments; KeepAlive makes launchd restart the
// service when it exits.
func (m *ManagerLaunchd) GenerateConfig(cfg *InstallConfig) (string, error) {
	args := strings.Fields(cfg.Cmd)
	if len(args) == 0 {
		return "", errors.NotValidf("empty service command")
	}

	var plist strings.Builder
	plist.WriteString("<?xml version=\"1.0\" encoding=\"UTF-8\"?>\n")
	plist.WriteString("<!DOCTYPE plist PUBLIC \"-//Apple//DTD PLIST 1.0//EN\" \"http://www.apple.com/DTDs/PropertyList-1.0.dtd\">\n")
	plist.WriteString("<plist version=\"1.0\">\n")
	plist.WriteString("<dict>\n")

	plist.WriteString("\t<key>Label</key>\n")
	fmt.Fprintf(&plist, "\t<string>%s</string>\n", plistEscape.Replace(cfg.Name))

	plist.WriteString("\t<key>ProgramArguments</key>\n")
	plist.WriteString("\t<array>\n")
	for _, arg := range args {
		fmt.Fprintf(&plist, "\t\t<string>%s</string>\n", plistEscape.Replace(arg))
	}
	plist.WriteString("\t</array>\n")

	plist.WriteString("\t<key>EnvironmentVariables</key>\n")
	plist.WriteString("\t<dict>\n")
	plist.WriteString("\t\t<key>PATH</key>\n")
	fmt.Fprintf(&plist, "\t\t<string>%s</string>\n", plistEscape.Replace(cfg.servicePath()))
	for _, entry := range cfg.Env {
		name, value, _ := strings.Cut(entry, "=")
		fmt.Fprintf(&plist, "\t\t<key>%s</key>\n", plistEscape.Replace(name))
		fmt.Fprintf(&plist, "\t\t<string>%s</string>\n", plistEscape.Replace(value))
	}
	plist.WriteString("\t</dict>\n")

	if cfg.Cwd != "" {
		plist.WriteString("\t<key>WorkingDirectory</key>\n")
		fmt.Fprintf(&plist, "\t<string>%s</string>\n", plistEscape.Replace(cfg.Cwd))
	}

	plist.WriteString("\t<key>KeepAlive</key>\n")
	plist.WriteString("\t<true/>\n")

	plist.WriteString("</dict>\n")
	plist.WriteString("</plist>\n")

	return plist.String(), nil
}

// Install implements Manager.
func (m *ManagerLaunchd) Install(ctx context.Context, cfg *InstallConfig, onlyGenerate bool) (*Outcome, error) {
	agentPath := m.agentPath(cfg.Home, cfg.Name)
	daemonPath := m.daemonPath(cfg.Name)
	if err := checkNoArtifact(cfg.Name, agentPath, daemonPath); err != nil {
		return nil, errors.Trace(err)
	}

	target := agentPath
	if cfg.System {
		target = daemonPath
	}

	artifact, err := m.GenerateConfig(cfg)
	if err != nil {
		return nil, errors.Trace(err)
	}

	if onlyGenerate {
		return &Outcome{Path: target, Artifact: artifact}, nil
	}

	if cfg.System {
		staged, err := stageArtifact(cfg.Name+"-*.plist", artifact)
		if err != nil {
			return nil, errors.Trace(err)
		}
		return &Outcome{
			Path:     target,
			Artifact: artifact,
			ManualSteps: []string{
				fmt.Sprintf("sudo cp %s %s", staged, target),
				fmt.Sprintf("sudo launchctl load %s", target),
			},
		}, nil
	}

	if err := os.MkdirAll(filepath.Dir(target), DirMode); err != nil {
		return nil, errors.Trace(err)
	}
	if err := renameio.WriteFile(target, []byte(artifact), FileMode); err != nil {
		return nil, errors.Trace(err)
	}

	return &Outcome{
		Path: target,
		ManualSteps: []string{
			fmt.Sprintf("launchctl load %s", target),
		},
	}, nil
}

// Uninstall implements Manager.
func (m *ManagerLaunchd) Uninstall(ctx context.Context, cfg *UninstallConfig) (*Outcome, error) {
	target := m.agentPath(cfg.Home, cfg.Name)
	if cfg.System {
		target = m.daemonPath(cfg.Name)
	}
	if _, err := os.Stat(target); err != nil {
		return nil, errors.NotFoundf("service %q (no artifact at %s)", cfg.Name, target)
	}

	if cfg.System {
		return &Outcome{
			Path: target,
			ManualSteps: []string{
				fmt.Sprintf("sudo launchctl unload %s", target),
				fmt.Sprintf("sudo rm %s", target),
			},
		}, nil
	}

	if err := os.Remove(target); err != nil {
		return nil, errors.Trace(err)
	}
	return &Outcome{
		Path: target,
		ManualSteps: []string{
			fmt.Sprintf("launchctl unload %s", target),
		},
	}, nil
}
