package archive

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/otiai10/copy"

	"flet-build/internal/logger"
)

// Stage unpacks a prebuilt client bundle and places it at binaryRoot, replacing whatever
// a previous build left there. ref is a local archive path or an http(s) URL, which is
// downloaded first. After Stage the deploy runs exactly as after a real build.
func Stage(ctx context.Context, ref, binaryRoot string) error {
	tmp, err := os.MkdirTemp("", "flet-client-*")
	if err != nil {
		return err
	}
	defer func() {
		if err := os.RemoveAll(tmp); err != nil {
			logger.Warn("[WARN] Failed to remove temp dir %s: %v\n", tmp, err)
		}
	}()

	archivePath := ref
	if IsURL(ref) {
		if archivePath, err = Fetch(ctx, ref, tmp); err != nil {
			return err
		}
	}
	if !Supported(archivePath) {
		return fmt.Errorf("%w: %s", ErrUnsupported, archivePath)
	}
	if _, err := os.Stat(archivePath); err != nil {
		return fmt.Errorf("client archive: %w", err)
	}

	logger.Info("[INFO] Extracting %s\n", archivePath)
	root, err := Extract(archivePath, filepath.Join(tmp, "bundle"))
	if err != nil {
		return fmt.Errorf("failed to extract %s: %w", archivePath, err)
	}
	logger.Debug("[DEBUG] Bundle root is %s\n", root)

	if err := os.MkdirAll(filepath.Dir(binaryRoot), 0o755); err != nil {
		return err
	}
	opts := copy.Options{
		PreserveTimes: true,
		OnDirExists: func(src, dest string) copy.DirExistsAction {
			return copy.Replace
		},
	}
	if err := copy.Copy(root, binaryRoot, opts); err != nil {
		return fmt.Errorf("failed to stage bundle into %s: %w", binaryRoot, err)
	}

	logger.Success("✓ Staged client bundle into %s\n", binaryRoot)
	return nil
}
