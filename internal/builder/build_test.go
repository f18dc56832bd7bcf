package builder

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
)

// fakeTool writes an executable script named name into a fresh directory and
// makes that directory the whole PATH.
func fakeTool(t *testing.T, name, body string) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("uses POSIX shell scripts")
	}
	dir := t.TempDir()
	p := filepath.Join(dir, name)
	if err := os.WriteFile(p, []byte("#!/bin/sh\n"+body+"\n"), 0o755); err != nil {
		t.Fatal(err)
	}
	t.Setenv("PATH", dir)
	return p
}

func sourceWithClient(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	if err := os.MkdirAll(filepath.Join(root, "client"), 0o755); err != nil {
		t.Fatal(err)
	}
	return root
}

func TestRunSuccess(t *testing.T) {
	root := sourceWithClient(t)
	marker := filepath.Join(t.TempDir(), "ran")
	fakeTool(t, "flutter", `echo "Building $1 $2"; pwd > "`+marker+`"; exit 0`)

	var status []string
	b := Builder{
		Tool:      "flutter",
		Args:      []string{"build", "windows"},
		ClientDir: "client",
		Status: func(title string) (func(string), func()) {
			return func(l string) { status = append(status, l) }, func() {}
		},
	}
	if !b.Run(context.Background(), root) {
		t.Fatal("expected build success")
	}
	if len(status) != 1 || status[0] != "Building build windows" {
		t.Fatalf("unexpected status lines %v", status)
	}
	cwd, err := os.ReadFile(marker)
	if err != nil {
		t.Fatal(err)
	}
	want, _ := filepath.EvalSymlinks(filepath.Join(root, "client"))
	if got, _ := filepath.EvalSymlinks(strings.TrimSpace(string(cwd))); got != want {
		t.Fatalf("build ran in %q, want %q", got, want)
	}
}

func TestRunNonZeroExit(t *testing.T) {
	root := sourceWithClient(t)
	fakeTool(t, "flutter", "echo boom >&2; exit 1")
	b := Builder{Tool: "flutter", Args: []string{"build", "windows"}, ClientDir: "client"}
	if b.Run(context.Background(), root) {
		t.Fatal("expected failure on exit 1")
	}
}

func TestRunToolMissingFromPath(t *testing.T) {
	root := sourceWithClient(t)
	t.Setenv("PATH", t.TempDir())
	b := Builder{Tool: "flutter", Args: []string{"build", "windows"}, ClientDir: "client"}
	if b.Run(context.Background(), root) {
		t.Fatal("expected failure without flutter on PATH")
	}
}

func TestRunMissingClientDir(t *testing.T) {
	marker := filepath.Join(t.TempDir(), "ran")
	fakeTool(t, "flutter", `: > "`+marker+`"`)
	b := Builder{Tool: "flutter", ClientDir: "client"}
	if b.Run(context.Background(), t.TempDir()) {
		t.Fatal("expected failure without client dir")
	}
	if _, err := os.Stat(marker); !os.IsNotExist(err) {
		t.Fatal("tool must not run when the client dir is missing")
	}
}
