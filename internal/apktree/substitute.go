package apktree

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/fulmenhq/apkpatch/pkg/logger"
	"github.com/fulmenhq/apkpatch/pkg/safeio"
)

// backupSuffix decorates the preserved original artifact, e.g.
// libmain.so -> libmain_orig.so.
const backupSuffix = "_orig"

// SubstitutionError reports a replacement artifact that could not be written
// into the tree.
type SubstitutionError struct {
	Path string
	Err  error
}

func (e *SubstitutionError) Error() string {
	return fmt.Sprintf("failed to substitute library at %s: %v", e.Path, e.Err)
}

func (e *SubstitutionError) Unwrap() error {
	return e.Err
}

// BackupName returns the decorated backup name for a library file name.
func BackupName(name string) string {
	ext := filepath.Ext(name)
	return strings.TrimSuffix(name, ext) + backupSuffix + ext
}

// Substitute replaces lib/<abi>/<name> in the tree with the given bytes.
//
// When the live artifact exists it is first renamed to its backup name so the
// unmodified original is never discarded; when it does not exist no backup is
// taken and the replacement is written directly. An already-present backup is
// kept as-is, so re-runs cannot lose the original. Rename-then-write ordering
// means the original is never truncated in place: on failure the primary path
// holds either the original content or nothing.
func Substitute(tree Tree, abi, name string, replacement []byte) error {
	dir := tree.LibDir(abi)
	primary := filepath.Join(dir, name)
	backup := filepath.Join(dir, BackupName(name))

	if _, err := os.Stat(primary); err == nil {
		if _, err := os.Stat(backup); err == nil {
			// A backup from an earlier run already holds the original;
			// renaming over it would destroy it.
			logger.Warn("backup already exists, keeping it", logger.String("backup", backup))
		} else {
			if err := os.Rename(primary, backup); err != nil {
				return &SubstitutionError{Path: primary, Err: err}
			}
			logger.Info("preserved original library", logger.String("backup", backup))
		}
	} else {
		logger.Debug("no live library to preserve", logger.String("path", primary))
	}

	if err := safeio.EnsureDir(dir); err != nil {
		return &SubstitutionError{Path: primary, Err: err}
	}
	if err := safeio.WriteFileAtomic(primary, replacement); err != nil {
		return &SubstitutionError{Path: primary, Err: err}
	}

	logger.Info("substituted library", logger.String("path", primary), logger.Int("bytes", len(replacement)))
	return nil
}
