package svcinstall

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"text/template"

	"github.com/juju/errors"
)

// sysvinitTemplate renders an LSB init script with start/stop/restart/
// status verbs and PID-file tracking under /var/run.
const sysvinitTemplate = `#!/bin/sh
### BEGIN INIT INFO
# Provides:          {{.Name}}
# Required-Start:    $remote_fs $syslog
# Required-Stop:     $remote_fs $syslog
# Default-Start:     2 3 4 5
# Default-Stop:      0 1 6
# Short-Description: {{.Name}} {{.Description}}
### END INIT INFO

export PATH="{{.Path}}:$PATH"
{{range .Env}}export {{.}}
{{end}}
NAME="{{.Name}}"
CMD="{{.Cmd}}"
PIDFILE="/var/run/$NAME.pid"
{{if .Cwd}}WORKDIR="{{.Cwd}}"
{{end}}
is_running() {
	[ -f "$PIDFILE" ] && kill -0 "$(cat "$PIDFILE")" 2>/dev/null
}

case "$1" in
	start)
		if is_running; then
			echo "$NAME is already running"
			exit 0
		fi
		echo "Starting $NAME"
{{if .Cwd}}		cd "$WORKDIR" || exit 1
{{end}}		/bin/sh -c "$CMD" &
		echo $! > "$PIDFILE"
		;;
	stop)
		if ! is_running; then
			echo "$NAME is not running"
			exit 0
		fi
		echo "Stopping $NAME"
		kill "$(cat "$PIDFILE")"
		rm -f "$PIDFILE"
		;;
	restart)
		"$0" stop
		"$0" start
		;;
	status)
		if is_running; then
			echo "$NAME is running, PID $(cat "$PIDFILE")"
		else
			echo "$NAME is not running"
			exit 1
		fi
		;;
	*)
		echo "Usage: $0 {start|stop|restart|status}"
		exit 1
		;;
esac
`

// sysvinitFields is the typed field set substituted into the template;
// a structured renderer rather than sequential find-and-replace, so no
// placeholder can be consumed twice or not at all.
type sysvinitFields struct {
	Name        string
	Description string
	Cmd         string
	Cwd         string
	Path        string
	Env         []string
}

// ManagerSysvinit registers services as /etc/init.d scripts. Writing to
// /etc/init.d always needs elevation, so install and uninstall both
// report runbooks rather than acting; the rendered script is staged in a
// private temporary file. It also serves hosts whose PID 1 is docker-init,
// which consume the same script format.
type ManagerSysvinit struct {
	// InitdDir is the init script directory
	InitdDir string

	tmpl *template.Template
}

// NewManagerSysvinit creates a sysvinit manager with default paths.
func NewManagerSysvinit() *ManagerSysvinit {
	return &ManagerSysvinit{
		InitdDir: DefaultInitdDir,
		tmpl:     template.Must(template.New("sysvinit").Parse(sysvinitTemplate)),
	}
}

func (m *ManagerSysvinit) scriptPath(name string) string {
	return filepath.Join(m.InitdDir, name)
}

// GenerateConfig renders the init script.
func (m *ManagerSysvinit) GenerateConfig(cfg *InstallConfig) (string, error) {
	var out strings.Builder
	err := m.tmpl.Execute(&out, sysvinitFields{
		Name:        cfg.Name,
		Description: descriptionSuffix,
		Cmd:         cfg.Cmd,
		Cwd:         cfg.Cwd,
		Path:        cfg.servicePath(),
		Env:         cfg.Env,
	})
	if err != nil {
		return "", errors.Trace(err)
	}
	return out.String(), nil
}

// Install implements Manager. Sysvinit has a single system-wide script
// location, so scope only affects who the service runs as, not where the
// artifact lands.
func (m *ManagerSysvinit) Install(ctx context.Context, cfg *InstallConfig, onlyGenerate bool) (*Outcome, error) {
	target := m.scriptPath(cfg.Name)
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

	staged, err := stageArtifact(cfg.Name+"-*.initd", artifact)
	if err != nil {
		return nil, errors.Trace(err)
	}
	return &Outcome{
		Path:     target,
		Artifact: artifact,
		ManualSteps: []string{
			fmt.Sprintf("sudo cp %s %s", staged, target),
			fmt.Sprintf("sudo chmod %o %s", ExecMode, target),
			fmt.Sprintf("sudo update-rc.d %s defaults", cfg.Name),
			fmt.Sprintf("sudo service %s start", cfg.Name),
		},
	}, nil
}

// Uninstall implements Manager.
func (m *ManagerSysvinit) Uninstall(ctx context.Context, cfg *UninstallConfig) (*Outcome, error) {
	target := m.scriptPath(cfg.Name)
	if _, err := os.Stat(target); err != nil {
		return nil, errors.NotFoundf("service %q (no artifact at %s)", cfg.Name, target)
	}

	return &Outcome{
		Path: target,
		ManualSteps: []string{
			fmt.Sprintf("sudo service %s stop", cfg.Name),
			fmt.Sprintf("sudo update-rc.d -f %s remove", cfg.Name),
			fmt.Sprintf("sudo rm %s", target),
		},
	}, nil
}
