// Package archive unpacks prebuilt desktop client bundles and stages them where the
// Flutter build would have written its output.
package archive

import (
	"archive/tar"    // For reading .tar archives
	"archive/zip"    // For reading .zip archives
	"compress/bzip2" // For reading .bz2 compressed data
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/bodgit/sevenzip"          // For reading .7z archives
	"github.com/klauspost/compress/zstd" // For reading .zst compressed data
	"github.com/klauspost/pgzip"         // Parallel gzip reader for .tar.gz
	"github.com/xi2/xz"                  // For reading .xz compressed data

	"flet-build/internal/logger"
)

// ErrUnsupported is returned for archive names with no known extension.
var ErrUnsupported = errors.New("unsupported archive format")

// ErrUnsafePath is returned for entries that would land outside the destination.
var ErrUnsafePath = errors.New("archive entry escapes destination")

var tarSuffixes = []string{".tar", ".tar.gz", ".tgz", ".tar.bz2", ".tar.xz", ".tar.zst"}

// Supported reports whether name has an extension Extract understands.
func Supported(name string) bool {
	lower := strings.ToLower(name)
	if strings.HasSuffix(lower, ".zip") || strings.HasSuffix(lower, ".7z") {
		return true
	}
	for _, s := range tarSuffixes {
		if strings.HasSuffix(lower, s) {
			return true
		}
	}
	return false
}

// Extract unpacks src into dest and returns the bundle root: dest/<dir> when every
// entry sits under one top-level directory, dest itself otherwise.
func Extract(src, dest string) (string, error) {
	if err := os.MkdirAll(dest, 0o755); err != nil {
		return "", err
	}

	var (
		top *topLevel
		err error
	)
	lower := strings.ToLower(src)
	switch {
	case strings.HasSuffix(lower, ".zip"):
		logger.Debug("[DEBUG] compression type is zip\n")
		top, err = extractZip(src, dest)
	case strings.HasSuffix(lower, ".7z"):
		logger.Debug("[DEBUG] compression type is .7z\n")
		top, err = extract7z(src, dest)
	case Supported(lower):
		logger.Debug("[DEBUG] compression type is .tar.*\n")
		top, err = extractTar(src, dest)
	default:
		return "", fmt.Errorf("%w: %s", ErrUnsupported, src)
	}
	if err != nil {
		return "", err
	}
	return top.root(dest), nil
}

// extractTar handles tar and compressed tar variants
func extractTar(src, dest string) (*topLevel, error) {
	logger.Debug("[DEBUG] uncompressing %s to %s\n", src, dest)
	f, err := os.Open(src)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var reader io.Reader = f
	lower := strings.ToLower(src)
	switch {
	case strings.HasSuffix(lower, ".tar.gz"), strings.HasSuffix(lower, ".tgz"):
		gr, err := pgzip.NewReader(f)
		if err != nil {
			return nil, err
		}
		defer gr.Close()
		reader = gr
	case strings.HasSuffix(lower, ".tar.bz2"):
		reader = bzip2.NewReader(f)
	case strings.HasSuffix(lower, ".tar.xz"):
		xzr, err := xz.NewReader(f, 0)
		if err != nil {
			return nil, err
		}
		reader = xzr
	case strings.HasSuffix(lower, ".tar.zst"):
		zr, err := zstd.NewReader(f)
		if err != nil {
			return nil, err
		}
		defer zr.Close()
		reader = zr
	}

	tr := tar.NewReader(reader)
	top := &topLevel{}
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			break // End of archive
		}
		if errors.Is(err, tar.ErrInsecurePath) {
			return nil, fmt.Errorf("%w: %s", ErrUnsafePath, src)
		}
		if err != nil {
			return nil, err
		}
		top.observe(hdr.Name, hdr.Typeflag == tar.TypeDir)

		target, err := safeJoin(dest, hdr.Name)
		if err != nil {
			return nil, err
		}
		switch hdr.Typeflag {
		case tar.TypeDir:
			if err := os.MkdirAll(target, 0o755); err != nil {
				return nil, err
			}
		case tar.TypeReg:
			if err := writeFile(target, os.FileMode(hdr.Mode).Perm(), tr); err != nil {
				return nil, err
			}
		case tar.TypeSymlink:
			if err := writeSymlink(dest, target, hdr.Linkname); err != nil {
				return nil, err
			}
		default:
			logger.Debug("[DEBUG] skipping tar entry %s (type %c)\n", hdr.Name, hdr.Typeflag)
		}
	}
	return top, nil
}

// extractZip extracts a .zip archive
func extractZip(src, dest string) (*topLevel, error) {
	r, err := zip.OpenReader(src)
	if errors.Is(err, zip.ErrInsecurePath) {
		return nil, fmt.Errorf("%w: %s", ErrUnsafePath, src)
	}
	if err != nil {
		return nil, err
	}
	defer r.Close()

	top := &topLevel{}
	for _, f := range r.File {
		top.observe(f.Name, f.FileInfo().IsDir())
		path, err := safeJoin(dest, f.Name)
		if err != nil {
			return nil, err
		}
		if f.FileInfo().IsDir() {
			if err := os.MkdirAll(path, 0o755); err != nil {
				return nil, err
			}
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return nil, err
		}
		err = writeFile(path, f.Mode().Perm(), rc)
		rc.Close()
		if err != nil {
			return nil, err
		}
	}
	return top, nil
}

// extract7z handles .7z extraction using the sevenzip library
func extract7z(src, dest string) (*topLevel, error) {
	r, err := sevenzip.OpenReader(src)
	if err != nil {
		return nil, fmt.Errorf("failed to open 7z archive: %w", err)
	}
	defer r.Close()

	top := &topLevel{}
	for _, f := range r.File {
		top.observe(f.Name, f.FileInfo().IsDir())
		path, err := safeJoin(dest, f.Name)
		if err != nil {
			return nil, err
		}
		if f.FileInfo().IsDir() {
			if err := os.MkdirAll(path, 0o755); err != nil {
				return nil, err
			}
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return nil, err
		}
		err = writeFile(path, f.Mode().Perm(), rc)
		rc.Close()
		if err != nil {
			return nil, err
		}
	}
	return top, nil
}

// writeFile creates path (and its parents) from r. Archives without permission
// bits get 0644.
func writeFile(path string, perm os.FileMode, r io.Reader) error {
	if perm == 0 {
		perm = 0o644
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	out, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, perm)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, r); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}

// writeSymlink creates a link only when its target resolves inside dest.
func writeSymlink(dest, link, target string) error {
	resolved := target
	if !filepath.IsAbs(resolved) {
		resolved = filepath.Join(filepath.Dir(link), target)
	}
	if !within(dest, resolved) {
		logger.Warn("[WARN] Skipping symlink %s -> %s outside the bundle\n", link, target)
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(link), 0o755); err != nil {
		return err
	}
	_ = os.Remove(link)
	return os.Symlink(target, link)
}

// safeJoin joins an archive entry name onto dest and rejects names that climb out of it.
func safeJoin(dest, name string) (string, error) {
	clean := filepath.FromSlash(normalize(name))
	target := filepath.Join(dest, clean)
	if filepath.IsAbs(clean) || !within(dest, target) {
		return "", fmt.Errorf("%w: %s", ErrUnsafePath, name)
	}
	return target, nil
}

func within(root, path string) bool {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return false
	}
	return rel == "." || (rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)))
}

// normalize turns any archive entry name into a slash-separated one.
func normalize(name string) string {
	return strings.ReplaceAll(name, `\`, "/")
}

// topLevel tracks whether every entry shares a single top-level directory.
type topLevel struct {
	name  string
	mixed bool
	seen  bool
}

func (t *topLevel) observe(entry string, isDir bool) {
	entry = strings.Trim(strings.TrimPrefix(normalize(entry), "./"), "/")
	if entry == "" {
		return
	}
	first, _, nested := strings.Cut(entry, "/")
	if !nested && !isDir {
		// A file at the archive root means there is no wrapping directory
		t.mixed = true
		return
	}
	if !t.seen {
		t.name, t.seen = first, true
		return
	}
	if t.name != first {
		t.mixed = true
	}
}

func (t *topLevel) root(dest string) string {
	if t.mixed || !t.seen {
		return dest
	}
	return filepath.Join(dest, t.name)
}
