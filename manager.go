package svcinstall

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/juju/errors"
)

// Manager is the uniform contract implemented once per init system. A
// Manager renders a native configuration artifact from a normalized
// config and installs or uninstalls it following that system's
// conventions. Implementations never mutate the configs they receive.
type Manager interface {
	// GenerateConfig renders the native artifact. It is pure and
	// deterministic: no filesystem or environment access beyond reading
	// the running executable's own path.
	GenerateConfig(cfg *InstallConfig) (string, error)

	// Install writes the artifact and performs the manager's activation
	// steps. With onlyGenerate set it renders only, mutating nothing.
	// Steps the process must not perform itself (anything needing
	// elevation) come back in the Outcome's ManualSteps runbook.
	Install(ctx context.Context, cfg *InstallConfig, onlyGenerate bool) (*Outcome, error)

	// Uninstall removes the artifact for the requested scope, or
	// reports the manual removal runbook where elevation is required.
	Uninstall(ctx context.Context, cfg *UninstallConfig) (*Outcome, error)
}

// Outcome reports what an operation did and what remains for the
// operator. It deliberately keeps "manual steps required" distinct from
// both success and failure: an Outcome with ManualSteps is a completed
// operation whose remaining commands need privileges this process never
// acquires.
type Outcome struct {
	// Path is the artifact's target location (for dry runs, where it
	// would be written)
	Path string

	// Artifact is the rendered native configuration; set for dry runs
	// and for operations that staged the artifact in a temporary file
	Artifact string

	// ManualSteps is the ordered runbook of commands the operator must
	// run to complete the operation, empty when nothing remains
	ManualSteps []string
}

// print writes the outcome in operator-readable form: the rendered
// artifact for dry runs, then the numbered runbook if steps remain.
func (o *Outcome) print(w io.Writer, dryRun bool) {
	if dryRun {
		fmt.Fprintf(w, "%s\n", o.Artifact)
		fmt.Fprintf(w, "# target path: %s\n", o.Path)
		return
	}
	if len(o.ManualSteps) == 0 {
		return
	}
	fmt.Fprintf(w, "Run the following commands to complete the operation:\n")
	for i, step := range o.ManualSteps {
		fmt.Fprintf(w, "  %d. %s\n", i+1, step)
	}
}

// checkNoArtifact fails with an already-exists error if any candidate
// path is occupied. Install never overwrites, in either scope, no matter
// which scope was requested.
func checkNoArtifact(name string, paths ...string) error {
	for _, p := range paths {
		if p == "" {
			continue
		}
		if _, err := os.Stat(p); err == nil {
			return errors.AlreadyExistsf("service %q (artifact at %s)", name, p)
		}
	}
	return nil
}

// stageArtifact writes a rendered artifact to a private temporary file
// for the operator to copy into place with elevated privileges.
func stageArtifact(pattern, artifact string) (string, error) {
	f, err := os.CreateTemp("", pattern)
	if err != nil {
		return "", errors.Trace(err)
	}
	defer f.Close()
	if _, err := f.WriteString(artifact); err != nil {
		os.Remove(f.Name())
		return "", errors.Trace(err)
	}
	return f.Name(), nil
}
