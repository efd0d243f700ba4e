package vision

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// Validate reports whether root is a Standard Image Collection: an existing
// directory with at least MinClasses entries, all of them directories, each
// holding only files the decoder accepts.
//
// A nil return means valid. Shape problems wrap ErrInvalidCollection
// (undecodable files additionally wrap ErrNotImage); unreadable paths wrap
// ErrStorageError.
func Validate(root string, opts ...ScanOption) error {
	_, err := scanCollection(root, newScanConfig(opts))
	return err
}

// IsCollectionValid reports whether root is a Standard Image Collection.
// It never panics and returns false for missing or malformed paths.
func IsCollectionValid(root string, opts ...ScanOption) bool {
	return Validate(root, opts...) == nil
}

// GetCollectionInfo returns the summary of a valid collection.
// The boolean is false, and Info zero, when root is not a valid collection.
func GetCollectionInfo(root string, opts ...ScanOption) (Info, bool) {
	info, err := scanCollection(root, newScanConfig(opts))
	if err != nil {
		return Info{}, false
	}
	return info, true
}

// Inspect returns the summary of root, or the reason it is not a valid
// collection. Use errors.Is to distinguish ErrInvalidCollection from
// ErrStorageError.
func Inspect(root string, opts ...ScanOption) (Info, error) {
	return scanCollection(root, newScanConfig(opts))
}

// scanCollection walks root one level deep and decodes every class file.
// Read-only; the result is never cached.
func scanCollection(root string, cfg *scanConfig) (Info, error) {
	logger := loggerOrNop(cfg.logger)

	fi, err := os.Stat(root)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Info{}, fmt.Errorf("%w: %s does not exist", ErrInvalidCollection, root)
		}
		return Info{}, fmt.Errorf("%w: stat %s: %v", ErrStorageError, root, err)
	}
	if !fi.IsDir() {
		return Info{}, fmt.Errorf("%w: %s is not a directory", ErrInvalidCollection, root)
	}

	entries, err := os.ReadDir(root)
	if err != nil {
		return Info{}, fmt.Errorf("%w: reading %s: %v", ErrStorageError, root, err)
	}
	if len(entries) == 0 {
		return Info{}, fmt.Errorf("%w: %s is empty", ErrInvalidCollection, root)
	}

	// Shape checks first so a bad layout is rejected before any decoding.
	for _, entry := range entries {
		isDir, err := entryIsDir(root, entry)
		if err != nil {
			return Info{}, err
		}
		if !isDir {
			return Info{}, fmt.Errorf("%w: %s has a file %q at its root, expected only class directories",
				ErrInvalidCollection, root, entry.Name())
		}
	}
	if len(entries) < MinClasses {
		return Info{}, fmt.Errorf("%w: %s has %d class director%s, need at least %d",
			ErrInvalidCollection, root, len(entries), plural(len(entries), "y", "ies"), MinClasses)
	}

	info := Info{Root: root, Classes: make([]ClassInfo, 0, len(entries))}
	for _, entry := range entries {
		class, err := scanClass(filepath.Join(root, entry.Name()), cfg.decoder)
		if err != nil {
			return Info{}, err
		}
		logger.Debug("scanned class", "class", class.Name, "images", class.Images)

		info.Classes = append(info.Classes, class)
		info.ImageCount += class.Images
	}
	info.ClassCount = len(info.Classes)

	return info, nil
}

// scanClass lists and decodes the files of one class directory.
func scanClass(dir string, dec Decoder) (ClassInfo, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return ClassInfo{}, fmt.Errorf("%w: reading %s: %v", ErrStorageError, dir, err)
	}

	class := ClassInfo{Name: filepath.Base(dir), Files: make([]string, 0, len(entries))}
	for _, entry := range entries {
		isDir, err := entryIsDir(dir, entry)
		if err != nil {
			return ClassInfo{}, err
		}
		if isDir {
			return ClassInfo{}, fmt.Errorf("%w: class %q contains a directory %q, expected only images",
				ErrInvalidCollection, class.Name, entry.Name())
		}

		if err := checkImage(filepath.Join(dir, entry.Name()), dec); err != nil {
			return ClassInfo{}, err
		}
		class.Files = append(class.Files, entry.Name())
	}
	class.Images = len(class.Files)

	return class, nil
}

// entryIsDir reports whether entry is a directory, following symlinks.
func entryIsDir(parent string, entry fs.DirEntry) (bool, error) {
	if entry.Type()&fs.ModeSymlink == 0 {
		return entry.IsDir(), nil
	}
	path := filepath.Join(parent, entry.Name())
	fi, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return false, fmt.Errorf("%w: dangling symlink %s", ErrInvalidCollection, path)
		}
		return false, fmt.Errorf("%w: stat %s: %v", ErrStorageError, path, err)
	}
	return fi.IsDir(), nil
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}
