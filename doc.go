// Package svcinstall registers an arbitrary command as an OS-level
// background service, translating one normalized configuration into the
// native format of whichever init system runs on the host.
//
// The core abstraction is the Manager interface, implemented once per
// init system (systemd, sysvinit-style init scripts, upstart, launchd,
// Windows SCM):
//
//	reg := svcinstall.NewRegistry()
//
//	err := reg.InstallService(context.Background(), svcinstall.InstallOptions{
//	    Name: "myapp",
//	    Cmd:  "deno run --allow-net server.ts",
//	}, false, svcinstall.InitSystemUnknown)
//
// The registry detects the running init system (unless the caller forces
// one), renders the native artifact (unit file, plist, init script, batch
// wrapper), installs it, and runs the manager-specific activation steps.
//
// # Privilege boundary
//
// This library never escalates privileges. Operations that need elevation
// (system-scope systemd, sysvinit, upstart) render the artifact to a
// private temporary file and report an ordered runbook of commands for the
// operator to execute; see Outcome.ManualSteps. Windows is the exception:
// registration goes through an sc.exe wrapper that triggers the OS's own
// UAC prompt.
//
// # Dry runs
//
// Every manager's rendering step is pure. Install with onlyGenerate=true
// (or GenerateConfig) prints the rendered artifact and its would-be target
// path without touching the filesystem, which makes the output safe to
// inspect or diff before committing to an install.
//
// # Design Philosophy
//
// This library prioritizes:
//
//   - One normalized config consumed by every manager
//   - Pure, deterministic artifact rendering (testable without a host)
//   - Refusing to overwrite: install fails fast if an artifact exists
//     in either scope
//   - Best-effort rollback when an activation step fails after a write
//   - No silent privilege acquisition, ever
package svcinstall
