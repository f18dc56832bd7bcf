package archive

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"

	"github.com/schollz/progressbar/v3"
	"golang.org/x/term"

	"flet-build/internal/logger"
)

// IsURL reports whether ref names a remote bundle rather than a local file.
func IsURL(ref string) bool {
	u, err := url.Parse(ref)
	return err == nil && (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

// Fetch downloads rawURL into dir and returns the local path. The file keeps the last
// element of the URL path, so the archive format is still known from its name.
func Fetch(ctx context.Context, rawURL, dir string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("invalid URL %s: %w", rawURL, err)
	}
	name := path.Base(u.Path)
	if !Supported(name) {
		return "", fmt.Errorf("%w: %s", ErrUnsupported, rawURL)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return "", err
	}
	logger.Debug("[DEBUG] Fetching client bundle from URL: %s\n", rawURL)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to GET %s: %w", rawURL, err)
	}
	defer func() {
		if cerr := resp.Body.Close(); cerr != nil {
			logger.Warn("[WARN] Failed to close HTTP response body: %v\n", cerr)
		}
	}()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("download of %s failed: HTTP status %d", rawURL, resp.StatusCode)
	}

	dest := filepath.Join(dir, name)
	out, err := os.Create(dest)
	if err != nil {
		return "", fmt.Errorf("failed to create file %s: %w", dest, err)
	}

	// ContentLength is -1 when the server does not send it; the bar then spins
	bar := progressbar.NewOptions64(resp.ContentLength,
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionSetDescription("Downloading "+name),
		progressbar.OptionShowBytes(true),
		progressbar.OptionClearOnFinish(),
		progressbar.OptionSetVisibility(term.IsTerminal(int(os.Stderr.Fd()))),
	)
	n, err := io.Copy(io.MultiWriter(out, bar), resp.Body)
	_ = bar.Finish()
	if cerr := out.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return "", fmt.Errorf("failed to write %s: %w", dest, err)
	}

	logger.Info("[INFO] Downloaded %s (%d bytes)\n", name, n)
	return dest, nil
}
