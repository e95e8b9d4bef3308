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

// upstartTemplate renders an upstart job configuration. The command is
// carried in SERVICE_COMMAND so operators can override it with
// "initctl start NAME SERVICE_COMMAND=..." without editing the job.
const upstartTemplate = `description "{{.Name}} {{.Description}}"

start on runlevel [2345]
stop on runlevel [!2345]
respawn

env PATH={{.Path}}
{{range .Env}}env {{.}}
{{end}}env SERVICE_COMMAND="{{.Cmd}}"
{{if .Cwd}}
chdir {{.Cwd}}
{{end}}
exec $SERVICE_COMMAND
`

type upstartFields struct {
	Name        string
	Description string
	Cmd         string
	Cwd         string
	Path        string
	Env         []string
}

// ManagerUpstart registers services as upstart jobs under /etc/init.
// Jobs are system-wide and writing them needs elevation, so install and
// uninstall always report runbooks.
type ManagerUpstart struct {
	// ConfDir is the upstart job directory
	ConfDir string

	tmpl *template.Template
}

// NewManagerUpstart creates an upstart manager with default paths.
func NewManagerUpstart() *ManagerUpstart {
	return &ManagerUpstart{
		ConfDir: DefaultUpstartConfDir,
		tmpl:    template.Must(template.New("upstart").Parse(upstartTemplate)),
	}
}

func (m *ManagerUpstart) jobPath(name string) string {
	return filepath.Join(m.ConfDir, name+".conf")
}

// GenerateConfig renders the job file.
func (m *ManagerUpstart) GenerateConfig(cfg *InstallConfig) (string, error) {
	var out strings.Builder
	err := m.tmpl.Execute(&out, upstartFields{
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

// Install implements Manager.
func (m *ManagerUpstart) Install(ctx context.Context, cfg *InstallConfig, onlyGenerate bool) (*Outcome, error) {
	target := m.jobPath(cfg.Name)
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

	staged, err := stageArtifact(cfg.Name+"-*.conf", artifact)
	if err != nil {
		return nil, errors.Trace(err)
	}
	return &Outcome{
		Path:     target,
		Artifact: artifact,
		ManualSteps: []string{
			fmt.Sprintf("sudo cp %s %s", staged, target),
			"sudo initctl reload-configuration",
			fmt.Sprintf("sudo initctl start %s", cfg.Name),
		},
	}, nil
}

// Uninstall implements Manager.
func (m *ManagerUpstart) Uninstall(ctx context.Context, cfg *UninstallConfig) (*Outcome, error) {
	target := m.jobPath(cfg.Name)
	if _, err := os.Stat(target); err != nil {
		return nil, errors.NotFoundf("service %q (no artifact at %s)", cfg.Name, target)
	}

	return &Outcome{
		Path: target,
		ManualSteps: []string{
			fmt.Sprintf("sudo initctl stop %s", cfg.Name),
			fmt.Sprintf("sudo rm %s", target),
			"sudo initctl reload-configuration",
		},
	}, nil
}
