package vision

import (
	"fmt"
	"path/filepath"
)

// ImageSet is a validated Standard Image Collection together with the
// settings a training backend needs to stream it: augmentation, batch size
// and resize target.
//
// An ImageSet is a snapshot: the class and file lists are read once by Open.
type ImageSet struct {
	root         string
	info         Info
	augmentation Augmentation
	batchSize    int
	resize       ResizeDims
}

// Open validates root and returns an ImageSet over it.
// Returns an error wrapping ErrInvalidCollection if root is not a Standard
// Image Collection, ErrStorageError if it cannot be read, and
// ErrInvalidArgument for out-of-range settings. No ImageSet is returned on error.
func Open(root string, opts ...SetOption) (*ImageSet, error) {
	cfg := newSetConfig(opts)

	if cfg.batchSize < 1 {
		return nil, fmt.Errorf("%w: batch size must be positive, got %d", ErrInvalidArgument, cfg.batchSize)
	}
	if cfg.resize.Width < 1 || cfg.resize.Height < 1 {
		return nil, fmt.Errorf("%w: resize target must be positive, got %s", ErrInvalidArgument, cfg.resize)
	}
	if err := cfg.augmentation.Validate(); err != nil {
		return nil, err
	}

	info, err := Inspect(root, cfg.scanOpts...)
	if err != nil {
		return nil, fmt.Errorf("opening image set %s: %w", root, err)
	}

	return &ImageSet{
		root:         root,
		info:         info,
		augmentation: cfg.augmentation,
		batchSize:    cfg.batchSize,
		resize:       cfg.resize,
	}, nil
}

// Root returns the collection root the set was opened with.
func (s *ImageSet) Root() string { return s.root }

// Info returns the collection summary taken when the set was opened.
func (s *ImageSet) Info() Info { return s.info }

// NumClasses returns the number of classes.
func (s *ImageSet) NumClasses() int { return s.info.ClassCount }

// NumImages returns the total number of images.
func (s *ImageSet) NumImages() int { return s.info.ImageCount }

// Classes returns the per-class summaries in lexical order.
func (s *ImageSet) Classes() []ClassInfo {
	return append([]ClassInfo(nil), s.info.Classes...)
}

// ClassNames returns the class names in lexical order. The index of a name
// is its label.
func (s *ImageSet) ClassNames() []string { return s.info.ClassNames() }

// Augmentation returns the augmentation settings.
func (s *ImageSet) Augmentation() Augmentation { return s.augmentation }

// BatchSize returns the batch size.
func (s *ImageSet) BatchSize() int { return s.batchSize }

// ResizeDims returns the resize target.
func (s *ImageSet) ResizeDims() ResizeDims { return s.resize }

// Files returns the paths of the images in class, in lexical order.
// The second result is false if the class does not exist.
func (s *ImageSet) Files(class string) ([]string, bool) {
	for _, c := range s.info.Classes {
		if c.Name != class {
			continue
		}
		paths := make([]string, len(c.Files))
		for i, name := range c.Files {
			paths[i] = filepath.Join(s.root, c.Name, name)
		}
		return paths, true
	}
	return nil, false
}

// StepsPerEpoch returns the number of batches needed to cover every image once.
func (s *ImageSet) StepsPerEpoch() int {
	return (s.info.ImageCount + s.batchSize - 1) / s.batchSize
}
