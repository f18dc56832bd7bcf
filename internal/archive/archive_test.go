package archive

import (
	"archive/tar"
	"archive/zip"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"slices"
	"testing"

	"github.com/klauspost/pgzip"
)

type entry struct {
	name string
	body string
	dir  bool
}

func writeZip(t *testing.T, path string, entries []entry) {
	t.Helper()
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	zw := zip.NewWriter(f)
	for _, e := range entries {
		name := e.name
		if e.dir {
			name += "/"
		}
		w, err := zw.Create(name)
		if err != nil {
			t.Fatal(err)
		}
		if !e.dir {
			if _, err := w.Write([]byte(e.body)); err != nil {
				t.Fatal(err)
			}
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatal(err)
	}
}

func writeTarGz(t *testing.T, path string, entries []entry) {
	t.Helper()
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	gw := pgzip.NewWriter(f)
	tw := tar.NewWriter(gw)
	for _, e := range entries {
		hdr := &tar.Header{Name: e.name, Mode: 0o644, Size: int64(len(e.body)), Typeflag: tar.TypeReg}
		if e.dir {
			hdr = &tar.Header{Name: e.name + "/", Mode: 0o755, Typeflag: tar.TypeDir}
		}
		if err := tw.WriteHeader(hdr); err != nil {
			t.Fatal(err)
		}
		if !e.dir {
			if _, err := tw.Write([]byte(e.body)); err != nil {
				t.Fatal(err)
			}
		}
	}
	if err := tw.Close(); err != nil {
		t.Fatal(err)
	}
	if err := gw.Close(); err != nil {
		t.Fatal(err)
	}
}

func TestExtractZipWithTopLevelDir(t *testing.T) {
	src := filepath.Join(t.TempDir(), "flet-windows.zip")
	writeZip(t, src, []entry{
		{name: "flet", dir: true},
		{name: "flet/flet.exe", body: "exe"},
		{name: "flet/data/app.so", body: "so"},
	})
	dest := t.TempDir()
	root, err := Extract(src, dest)
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	if root != filepath.Join(dest, "flet") {
		t.Fatalf("root: got %q", root)
	}
	data, err := os.ReadFile(filepath.Join(root, "data", "app.so"))
	if err != nil || string(data) != "so" {
		t.Fatalf("content: %q %v", data, err)
	}
}

func TestExtractFlatArchiveReturnsDest(t *testing.T) {
	src := filepath.Join(t.TempDir(), "bundle.zip")
	writeZip(t, src, []entry{
		{name: "flet.exe", body: "exe"},
		{name: "data/icudtl.dat", body: "icu"},
	})
	dest := t.TempDir()
	root, err := Extract(src, dest)
	if err != nil {
		t.Fatal(err)
	}
	if root != dest {
		t.Fatalf("want dest %q, got %q", dest, root)
	}
}

func TestExtractTarGz(t *testing.T) {
	src := filepath.Join(t.TempDir(), "flet-linux.tar.gz")
	writeTarGz(t, src, []entry{
		{name: "flet", dir: true},
		{name: "flet/flet", body: "elf"},
		{name: "flet/lib/libapp.so", body: "lib"},
	})
	dest := t.TempDir()
	root, err := Extract(src, dest)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(filepath.Join(root, "lib", "libapp.so")); err != nil {
		t.Fatalf("missing extracted file: %v", err)
	}
}

func TestExtractRejectsTraversal(t *testing.T) {
	src := filepath.Join(t.TempDir(), "evil.zip")
	writeZip(t, src, []entry{{name: "../escape.txt", body: "x"}})
	if _, err := Extract(src, t.TempDir()); !errors.Is(err, ErrUnsafePath) {
		t.Fatalf("want ErrUnsafePath, got %v", err)
	}
}

func TestExtractUnsupported(t *testing.T) {
	if _, err := Extract("bundle.rar", t.TempDir()); !errors.Is(err, ErrUnsupported) {
		t.Fatalf("want ErrUnsupported, got %v", err)
	}
}

func TestStageReplacesBinaryRoot(t *testing.T) {
	src := filepath.Join(t.TempDir(), "flet-windows.zip")
	writeZip(t, src, []entry{
		{name: "flet", dir: true},
		{name: "flet/flet.exe", body: "new"},
	})
	binaryRoot := filepath.Join(t.TempDir(), "client", "build", "windows", "x64", "runner", "Release")
	if err := os.MkdirAll(binaryRoot, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(binaryRoot, "stale.dll"), []byte("old"), 0o644); err != nil {
		t.Fatal(err)
	}

	if err := Stage(context.Background(), src, binaryRoot); err != nil {
		t.Fatalf("stage: %v", err)
	}
	entries, err := os.ReadDir(binaryRoot)
	if err != nil {
		t.Fatal(err)
	}
	var names []string
	for _, e := range entries {
		names = append(names, e.Name())
	}
	if !slices.Equal(names, []string{"flet.exe"}) {
		t.Fatalf("want only flet.exe, got %v", names)
	}
}

func TestStageMissingArchive(t *testing.T) {
	if err := Stage(context.Background(), filepath.Join(t.TempDir(), "nope.zip"), t.TempDir()); err == nil {
		t.Fatal("expected error")
	}
}

func TestTopLevel(t *testing.T) {
	var tl topLevel
	tl.observe("./bundle/", true)
	tl.observe("bundle/a", false)
	tl.observe(`bundle\b`, false)
	if got := tl.root("/d"); got != filepath.Join("/d", "bundle") {
		t.Fatalf("got %q", got)
	}
	tl.observe("other/c", false)
	if got := tl.root("/d"); got != "/d" {
		t.Fatalf("mixed roots must return dest, got %q", got)
	}
}

func TestIsURL(t *testing.T) {
	cases := map[string]bool{
		"https://github.com/flet-dev/flet/releases/download/v0.25.0/flet-windows.zip": true,
		"http://localhost:8080/flet.tar.gz":                                           true,
		`C:\Downloads\flet-windows.zip`:                                               false,
		"/tmp/flet-linux.tar.gz":                                                      false,
		"file:///tmp/flet.zip":                                                        false,
	}
	for ref, want := range cases {
		if got := IsURL(ref); got != want {
			t.Errorf("IsURL(%q) = %v, want %v", ref, got, want)
		}
	}
}

func TestStageDownloadsURL(t *testing.T) {
	src := filepath.Join(t.TempDir(), "flet-linux.tar.gz")
	writeTarGz(t, src, []entry{
		{name: "flet", dir: true},
		{name: "flet/flet", body: "bin"},
		{name: "flet/lib/libapp.so", body: "so"},
	})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.ServeFile(w, r, src)
	}))
	defer srv.Close()

	binaryRoot := filepath.Join(t.TempDir(), "bundle")
	if err := Stage(context.Background(), srv.URL+"/releases/flet-linux.tar.gz", binaryRoot); err != nil {
		t.Fatalf("stage: %v", err)
	}
	got, err := os.ReadFile(filepath.Join(binaryRoot, "lib", "libapp.so"))
	if err != nil || string(got) != "so" {
		t.Fatalf("staged file: %q, %v", got, err)
	}
}

func TestFetchHTTPError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()
	if _, err := Fetch(context.Background(), srv.URL+"/flet.zip", t.TempDir()); err == nil {
		t.Fatal("expected error for 404")
	}
}

func TestFetchRejectsUnknownFormat(t *testing.T) {
	if _, err := Fetch(context.Background(), "https://example.com/flet.rar", t.TempDir()); !errors.Is(err, ErrUnsupported) {
		t.Fatalf("want ErrUnsupported, got %v", err)
	}
}
