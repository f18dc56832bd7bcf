package runner

import (
	"bufio"
	"context"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"slices"
	"strings"
	"testing"
	"time"
)

func skipOnWindows(t *testing.T) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("uses POSIX shell scripts")
	}
}

// writeScript drops an executable /bin/sh script into dir and returns its path.
func writeScript(t *testing.T, dir, name, body string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	if err := os.WriteFile(p, []byte("#!/bin/sh\n"+body+"\n"), 0o755); err != nil {
		t.Fatal(err)
	}
	return p
}

func TestFindExecutableOnPath(t *testing.T) {
	skipOnWindows(t)
	first := t.TempDir()
	second := t.TempDir()
	writeScript(t, second, "flutter", "exit 0")
	want := writeScript(t, first, "flutter", "exit 0")
	t.Setenv("PATH", first+string(os.PathListSeparator)+second)

	got, err := FindExecutable("flutter")
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if got != want {
		t.Fatalf("want first PATH match %q, got %q", want, got)
	}
	if all := FindAll("flutter"); len(all) != 2 {
		t.Fatalf("want 2 matches, got %v", all)
	}
}

func TestFindExecutableIgnoresNonExecutable(t *testing.T) {
	skipOnWindows(t)
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "pip"), []byte("data"), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("PATH", dir)
	if _, err := FindExecutable("pip"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("want ErrNotFound, got %v", err)
	}
}

func TestFindExecutableEmptyPath(t *testing.T) {
	t.Setenv("PATH", "")
	if _, err := FindExecutable("flutter"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("want ErrNotFound, got %v", err)
	}
}

func TestFindExecutableExplicitPath(t *testing.T) {
	skipOnWindows(t)
	p := writeScript(t, t.TempDir(), "custom-flutter", "exit 0")
	t.Setenv("PATH", "")
	got, err := FindExecutable(p)
	if err != nil || got != p {
		t.Fatalf("want %q, got %q (%v)", p, got, err)
	}
}

func TestPreferWrapper(t *testing.T) {
	matches := []string{`C:\flutter\bin\flutter`, `C:\flutter\bin\flutter.bat`, `D:\other\flutter.exe`}
	if got := preferWrapper(matches); got != `C:\flutter\bin\flutter.bat` {
		t.Fatalf("want .bat wrapper, got %q", got)
	}
	if got := preferWrapper([]string{"/a/flutter", "/b/flutter"}); got != "/a/flutter" {
		t.Fatalf("want first match, got %q", got)
	}
}

func TestStreamCollectsMergedOutput(t *testing.T) {
	skipOnWindows(t)
	p := writeScript(t, t.TempDir(), "tool", `echo one
echo two >&2
printf 'three\rfour\n'
exit 3`)

	var lines []string
	res := Stream(context.Background(), Command{Path: p}, func(l string) { lines = append(lines, l) })
	if res.Code != 3 || res.OK() {
		t.Fatalf("want exit 3, got %+v", res)
	}
	want := []string{"one", "two", "three", "four"}
	if !slices.Equal(lines, want) {
		t.Fatalf("want %v, got %v", want, lines)
	}
}

func TestStreamRunsInDir(t *testing.T) {
	skipOnWindows(t)
	dir := t.TempDir()
	p := writeScript(t, t.TempDir(), "where", "pwd")

	var got string
	res := Stream(context.Background(), Command{Path: p, Dir: dir}, func(l string) { got = l })
	if !res.OK() {
		t.Fatalf("run: %+v", res)
	}
	want, _ := filepath.EvalSymlinks(dir)
	if resolved, _ := filepath.EvalSymlinks(got); resolved != want {
		t.Fatalf("want cwd %q, got %q", want, got)
	}
}

func TestStreamPassesArgsAndEnv(t *testing.T) {
	skipOnWindows(t)
	p := writeScript(t, t.TempDir(), "args", `echo "$FLET_TEST:$1:$2"`)
	var got string
	res := Stream(context.Background(), Command{Path: p, Args: []string{"build", "windows"}, Env: []string{"FLET_TEST=yes"}}, func(l string) { got = l })
	if !res.OK() || got != "yes:build:windows" {
		t.Fatalf("got %q (%+v)", got, res)
	}
}

func TestStreamSpawnFailure(t *testing.T) {
	res := Stream(context.Background(), Command{Path: filepath.Join(t.TempDir(), "missing")}, nil)
	if res.Code != -1 || res.Err == nil {
		t.Fatalf("want spawn failure, got %+v", res)
	}
}

func TestScanLines(t *testing.T) {
	sc := bufio.NewScanner(strings.NewReader("a\r\nb\rc\n\nd"))
	sc.Split(scanLines)
	var got []string
	for sc.Scan() {
		got = append(got, sc.Text())
	}
	want := []string{"a", "b", "c", "", "d"}
	if !slices.Equal(got, want) {
		t.Fatalf("want %q, got %q", want, got)
	}
}

func TestNilStatusFuncIsSilent(t *testing.T) {
	var status StatusFunc
	update, done := status.Start("Building")
	update("line")
	done()
}

func TestStreamCancelStopsGrandchildren(t *testing.T) {
	skipOnWindows(t)
	// sh forks sleep, which inherits the output pipe
	p := writeScript(t, t.TempDir(), "wrapper", `echo started
sleep 5
echo finished`)

	ctx, cancel := context.WithTimeout(context.Background(), 300*time.Millisecond)
	defer cancel()

	var lines []string
	start := time.Now()
	res := Stream(ctx, Command{Path: p}, func(l string) { lines = append(lines, l) })
	if elapsed := time.Since(start); elapsed > 3*time.Second {
		t.Fatalf("cancel took %v, the wrapper's child kept the pipe open", elapsed)
	}
	if res.Code != -1 || !errors.Is(res.Err, context.DeadlineExceeded) {
		t.Fatalf("want cancelled result, got %+v", res)
	}
	if slices.Contains(lines, "finished") {
		t.Fatalf("script ran to completion: %v", lines)
	}
}
