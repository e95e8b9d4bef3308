//go:build windows

package svcinstall

import "golang.org/x/sys/windows"

// processElevated reports whether the current process token carries
// administrator rights, in which case sc.exe runs directly instead of
// through the UAC prompt wrapper.
func processElevated() bool {
	return windows.GetCurrentProcessToken().IsElevated()
}
