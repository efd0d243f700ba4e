package vision

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// stagingPrefix names the temporary tree a partition is built in.
const stagingPrefix = ".imageset-staging-"

// PartitionList splits items into a small prefix of at most k items and the
// large remainder. Both keep the original order and never share memory with
// items. k <= 0 puts everything in large; k >= len(items) puts everything in
// small.
func PartitionList[T any](items []T, k int) (small, large []T) {
	if k < 0 {
		k = 0
	}
	if k > len(items) {
		k = len(items)
	}
	small = append(make([]T, 0, k), items[:k]...)
	large = append(make([]T, 0, len(items)-k), items[k:]...)
	return small, large
}

// PartitionImageCollection copies every class of the collection at root into
// Train/<class>/ and Validation/<class>/ under the output directory. Each
// class's files, in lexical order, are split with PartitionList(files, valCount):
// the small prefix goes to Validation and the remainder to Train.
//
// The source tree is never modified. If either output tree already exists the
// call fails with ErrOutputExists unless WithOverwrite() is given. The trees
// are assembled in a staging directory and moved into place only after every
// copy succeeded; on error or cancellation the staging directory is removed.
func PartitionImageCollection(ctx context.Context, root string, valCount int, opts ...PartitionOption) (PartitionResult, error) {
	cfg := newPartitionConfig(opts)
	logger := loggerOrNop(cfg.logger)

	info, err := Inspect(root, cfg.scanOpts...)
	if err != nil {
		return PartitionResult{}, fmt.Errorf("partitioning %s: %w", root, err)
	}

	srcAbs, err := filepath.Abs(root)
	if err != nil {
		return PartitionResult{}, fmt.Errorf("%w: resolving %s: %v", ErrStorageError, root, err)
	}
	outAbs, err := filepath.Abs(cfg.outputDir)
	if err != nil {
		return PartitionResult{}, fmt.Errorf("%w: resolving %s: %v", ErrStorageError, cfg.outputDir, err)
	}
	if isWithin(outAbs, srcAbs) {
		return PartitionResult{}, fmt.Errorf("%w: %s is inside the source collection %s", ErrInvalidOutput, outAbs, srcAbs)
	}

	trainDir := filepath.Join(outAbs, TrainDirName)
	valDir := filepath.Join(outAbs, ValidationDirName)

	// Refuse before creating anything so a rejected run leaves no trace
	if err := checkOutputs(srcAbs, cfg.overwrite, trainDir, valDir); err != nil {
		return PartitionResult{}, err
	}

	if err := os.MkdirAll(outAbs, 0755); err != nil {
		return PartitionResult{}, fmt.Errorf("%w: creating output directory: %v", ErrStorageError, err)
	}

	// Serialize partitions that target the same output directory
	lock, err := newFileLock(filepath.Join(outAbs, ".imageset.lock"), cfg.lockTimeout)
	if err != nil {
		return PartitionResult{}, fmt.Errorf("%w: failed to create partition lock: %v", ErrStorageError, err)
	}
	if err := lock.Lock(); err != nil {
		lock.Unlock()
		return PartitionResult{}, fmt.Errorf("%w: another process is partitioning into %s: %v", ErrStorageError, outAbs, err)
	}
	defer lock.Unlock()

	// A concurrent run may have finished while we waited for the lock
	if err := checkOutputs(srcAbs, cfg.overwrite, trainDir, valDir); err != nil {
		return PartitionResult{}, err
	}

	result := PartitionResult{
		RunID:         uuid.NewString(),
		Source:        srcAbs,
		OutputDir:     outAbs,
		TrainDir:      trainDir,
		ValidationDir: valDir,
		ValCount:      valCount,
		Classes:       make([]ClassSplit, 0, len(info.Classes)),
	}

	staging := filepath.Join(outAbs, stagingPrefix+result.RunID)
	stagingTrain := filepath.Join(staging, TrainDirName)
	stagingVal := filepath.Join(staging, ValidationDirName)
	defer func() {
		if err := os.RemoveAll(staging); err != nil {
			logger.Warn("failed to remove staging directory", "path", staging, "error", err)
		}
	}()

	logger.Info("partitioning collection",
		"source", srcAbs, "output", outAbs, "classes", info.ClassCount, "images", info.ImageCount, "val_count", valCount)

	copied := 0
	for _, class := range info.Classes {
		small, large := PartitionList(class.Files, valCount)

		srcDir := filepath.Join(srcAbs, class.Name)
		groups := []struct {
			dir   string
			files []string
		}{
			{filepath.Join(stagingTrain, class.Name), large},
			{filepath.Join(stagingVal, class.Name), small},
		}
		for _, g := range groups {
			// Class directories are created even when empty so both trees
			// mirror the source class names.
			if err := os.MkdirAll(g.dir, 0755); err != nil {
				return PartitionResult{}, fmt.Errorf("%w: creating %s: %v", ErrStorageError, g.dir, err)
			}
			for _, name := range g.files {
				if err := ctx.Err(); err != nil {
					return PartitionResult{}, err
				}
				if err := copyFile(filepath.Join(srcDir, name), filepath.Join(g.dir, name)); err != nil {
					return PartitionResult{}, err
				}
				copied++
				if cfg.progressFn != nil {
					cfg.progressFn(PartitionProgress{
						Class:       class.Name,
						FilesTotal:  info.ImageCount,
						FilesCopied: copied,
						CurrentFile: name,
					})
				}
			}
		}

		result.Classes = append(result.Classes, ClassSplit{
			Name:       class.Name,
			Train:      len(large),
			Validation: len(small),
		})
		logger.Debug("partitioned class", "class", class.Name, "train", len(large), "validation", len(small))
	}

	if cfg.overwrite {
		for _, dst := range []string{result.TrainDir, result.ValidationDir} {
			if err := os.RemoveAll(dst); err != nil {
				return PartitionResult{}, fmt.Errorf("%w: removing existing %s: %v", ErrStorageError, dst, err)
			}
		}
	}

	if err := os.Rename(stagingTrain, result.TrainDir); err != nil {
		return PartitionResult{}, fmt.Errorf("%w: moving %s into place: %v", ErrStorageError, TrainDirName, err)
	}
	if err := os.Rename(stagingVal, result.ValidationDir); err != nil {
		// Put Train back so the failed run leaves nothing behind
		if rbErr := os.Rename(result.TrainDir, stagingTrain); rbErr != nil {
			logger.Error("failed to roll back Train tree", "path", result.TrainDir, "error", rbErr)
		}
		return PartitionResult{}, fmt.Errorf("%w: moving %s into place: %v", ErrStorageError, ValidationDirName, err)
	}

	logger.Info("partition complete",
		"run_id", result.RunID, "train", result.TrainImages(), "validation", result.ValidationImages())

	return result, nil
}

// checkOutputs fails with ErrOutputExists when a destination tree exists and
// overwrite is off, and with ErrInvalidOutput when replacing a tree would
// delete the source.
func checkOutputs(srcAbs string, overwrite bool, dsts ...string) error {
	for _, dst := range dsts {
		if isWithin(srcAbs, dst) {
			return fmt.Errorf("%w: source %s lies inside output tree %s", ErrInvalidOutput, srcAbs, dst)
		}
		_, err := os.Lstat(dst)
		switch {
		case err == nil && !overwrite:
			return fmt.Errorf("%w: %s (use overwrite to replace it)", ErrOutputExists, dst)
		case err != nil && !errors.Is(err, fs.ErrNotExist):
			return fmt.Errorf("%w: stat %s: %v", ErrStorageError, dst, err)
		}
	}
	return nil
}

// copyFile copies src to a new file dst. Both handles are released on every path.
func copyFile(src, dst string) (err error) {
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("%w: opening %s: %v", ErrStorageError, src, err)
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
	if err != nil {
		return fmt.Errorf("%w: creating %s: %v", ErrStorageError, dst, err)
	}
	defer func() {
		if cerr := out.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("%w: closing %s: %v", ErrStorageError, dst, cerr)
		}
	}()

	if _, err := io.Copy(out, in); err != nil {
		return fmt.Errorf("%w: copying %s: %v", ErrStorageError, src, err)
	}
	if err := out.Sync(); err != nil {
		return fmt.Errorf("%w: syncing %s: %v", ErrStorageError, dst, err)
	}
	return nil
}

// isWithin reports whether path equals dir or lies below it.
func isWithin(path, dir string) bool {
	rel, err := filepath.Rel(dir, path)
	if err != nil {
		return false
	}
	if rel == "." {
		return true
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}
