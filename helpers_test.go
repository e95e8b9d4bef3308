package svcinstall

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"os/user"
	"strings"
	"testing"
	"time"
)

// fakeRunner records every command line and replies with canned output.
type fakeRunner struct {
	lines []string
	reply func(line string) (string, error)
}

func (f *fakeRunner) run(ctx context.Context, name string, args ...string) (string, error) {
	line := strings.Join(append([]string{name}, args...), " ")
	f.lines = append(f.lines, line)
	if f.reply != nil {
		return f.reply(line)
	}
	return "", nil
}

// failOn returns a reply function that fails any command line containing
// the given substring.
func failOn(substr, msg string) func(string) (string, error) {
	return func(line string) (string, error) {
		if strings.Contains(line, substr) {
			return "", errors.New(msg)
		}
		return "", nil
	}
}

func patchExecutableFolder(t *testing.T, dir string) {
	t.Helper()
	orig := executableFolder
	executableFolder = func() (string, error) { return dir, nil }
	t.Cleanup(func() { executableFolder = orig })
}

func patchCurrentUser(t *testing.T, username, home string) {
	t.Helper()
	orig := currentUser
	currentUser = func() (*user.User, error) {
		return &user.User{Username: username, HomeDir: home}, nil
	}
	t.Cleanup(func() { currentUser = orig })
}

func patchGetwd(t *testing.T, wd string) {
	t.Helper()
	orig := getwd
	getwd = func() (string, error) { return wd, nil }
	t.Cleanup(func() { getwd = orig })
}

// fakeFileInfo backs the detector's stat fake.
type fakeFileInfo struct {
	name string
	dir  bool
}

func (f fakeFileInfo) Name() string       { return f.name }
func (f fakeFileInfo) Size() int64        { return 0 }
func (f fakeFileInfo) Mode() fs.FileMode  { return 0 }
func (f fakeFileInfo) ModTime() time.Time { return time.Time{} }
func (f fakeFileInfo) IsDir() bool        { return f.dir }
func (f fakeFileInfo) Sys() any           { return nil }

// fakeStat serves the given paths; values mark directories.
func fakeStat(paths map[string]bool) func(string) (os.FileInfo, error) {
	return func(path string) (os.FileInfo, error) {
		dir, ok := paths[path]
		if !ok {
			return nil, os.ErrNotExist
		}
		return fakeFileInfo{name: path, dir: dir}, nil
	}
}

// testInstallConfig returns a fully-populated config rooted in home.
func testInstallConfig(home string) *InstallConfig {
	return &InstallConfig{
		Name: "test-service",
		Cmd:  "deno run --allow-net server.ts",
		User: "testuser",
		Home: home,
		Cwd:  home,
		Path: []string{"/usr/local/bin"},
	}
}
