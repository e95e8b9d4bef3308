package svcinstall

import (
	"bytes"
	"context"
	"os/exec"
	"strings"

	"github.com/juju/errors"
)

// commandRunner executes a native control command and returns its stdout.
// Failures carry the command's captured stderr so activation errors
// surface the native tool's diagnostic text.
type commandRunner func(ctx context.Context, name string, args ...string) (string, error)

// runCommand is the real commandRunner. No timeout is imposed: native
// tools are trusted to terminate, and the caller's context is the only
// cancellation point.
func runCommand(ctx context.Context, name string, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, name, args...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	logger.Tracef("exec: %s %s", name, strings.Join(args, " "))

	if err := cmd.Run(); err != nil {
		diag := strings.TrimSpace(stderr.String())
		if diag == "" {
			diag = strings.TrimSpace(stdout.String())
		}
		return "", errors.Annotatef(err, "%s %s: %s", name, strings.Join(args, " "), diag)
	}

	return stdout.String(), nil
}
