//go:build !windows

package svcinstall

// processElevated always reports false off Windows; the Windows manager
// is only reachable there through forced dry runs, which never execute
// sc.exe.
func processElevated() bool {
	return false
}
