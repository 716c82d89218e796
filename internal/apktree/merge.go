package apktree

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/fulmenhq/apkpatch/pkg/logger"
	"github.com/fulmenhq/apkpatch/pkg/safeio"
)

// Merge copies every file and directory under src into dst, creating
// intermediate directories as needed. Files already present at the same
// relative path in dst are overwritten (source wins). A missing src is a
// logged no-op: split packages are not required to carry every subtree.
//
// Each file copy is atomic (temp file plus rename), but the merge as a whole
// is not: a mid-merge failure leaves dst partially updated and is surfaced as
// an error without rollback.
func Merge(src, dst string) error {
	if _, err := os.Stat(src); os.IsNotExist(err) {
		logger.Warn("merge source does not exist, nothing to merge", logger.String("src", src))
		return nil
	}

	logger.Info("merging subtree", logger.String("src", src), logger.String("dst", dst))

	return filepath.WalkDir(src, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		rel, err := filepath.Rel(src, path)
		if err != nil {
			return fmt.Errorf("failed to compute relative path for %s: %w", path, err)
		}
		target := filepath.Join(dst, rel)

		if d.IsDir() {
			if err := safeio.EnsureDir(target); err != nil {
				return fmt.Errorf("failed to create directory %s: %w", target, err)
			}
			return nil
		}
		if !d.Type().IsRegular() {
			logger.Debug("skipping non-regular file", logger.String("path", path))
			return nil
		}

		if err := safeio.CopyFileAtomic(path, target); err != nil {
			return fmt.Errorf("failed to copy %s: %w", rel, err)
		}
		logger.Trace("merged file", logger.String("path", rel))
		return nil
	})
}
