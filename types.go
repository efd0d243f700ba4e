package vision

import (
	"fmt"
	"time"
)

// Config configures the Workspace and the command tree.
type Config struct {
	// AppName determines the data directory name.
	// Example: "imageset" → ~/.local/share/imageset/ on Linux
	AppName string

	// DataDir overrides the default data directory.
	// If empty, uses platform-appropriate default.
	// Can also be set via environment variable: <APPNAME>_DATA_DIR
	DataDir string
}

// ClassInfo summarizes one class directory of a collection.
type ClassInfo struct {
	// Name is the class directory name, used as the label.
	Name string `json:"name"`

	// Images is the number of image files in the class directory.
	Images int `json:"images"`

	// Files holds the image file names in lexical order.
	Files []string `json:"-"`
}

// Info is the derived summary of a valid Standard Image Collection.
type Info struct {
	// Root is the collection root as given by the caller.
	Root string `json:"root"`

	// ClassCount is the number of class directories.
	ClassCount int `json:"class_count"`

	// ImageCount is the total number of images across all classes.
	ImageCount int `json:"image_count"`

	// Classes lists every class in lexical order.
	Classes []ClassInfo `json:"classes"`
}

// Counts returns the (class_count, image_count) pair.
func (i Info) Counts() (classes, images int) {
	return i.ClassCount, i.ImageCount
}

// ClassNames returns the class names in lexical order.
func (i Info) ClassNames() []string {
	names := make([]string, len(i.Classes))
	for n, c := range i.Classes {
		names[n] = c.Name
	}
	return names
}

// ClassSplit records how one class was divided by a partition.
type ClassSplit struct {
	// Name is the class directory name.
	Name string `json:"name"`

	// Train is the number of files copied into Train/<class>/.
	Train int `json:"train"`

	// Validation is the number of files copied into Validation/<class>/.
	Validation int `json:"validation"`
}

// PartitionResult describes a completed directory partition.
type PartitionResult struct {
	// RunID uniquely identifies this partition run.
	RunID string `json:"run_id"`

	// Source is the absolute path of the partitioned collection.
	Source string `json:"source"`

	// OutputDir is the absolute directory holding Train/ and Validation/.
	OutputDir string `json:"output_dir"`

	// TrainDir is the absolute path of the Train tree.
	TrainDir string `json:"train_dir"`

	// ValidationDir is the absolute path of the Validation tree.
	ValidationDir string `json:"validation_dir"`

	// ValCount is the per-class validation target the run was given.
	ValCount int `json:"val_count"`

	// Classes lists the per-class split in lexical order.
	Classes []ClassSplit `json:"classes"`
}

// TrainImages returns the number of files placed under Train/.
func (r PartitionResult) TrainImages() int {
	n := 0
	for _, c := range r.Classes {
		n += c.Train
	}
	return n
}

// ValidationImages returns the number of files placed under Validation/.
func (r PartitionResult) ValidationImages() int {
	n := 0
	for _, c := range r.Classes {
		n += c.Validation
	}
	return n
}

// PartitionProgress reports copy progress during a partition.
type PartitionProgress struct {
	// Class is the class currently being copied.
	Class string

	// FilesTotal is the number of files the run will copy.
	FilesTotal int

	// FilesCopied is the number of files copied so far.
	FilesCopied int

	// CurrentFile is the source file name just copied.
	CurrentFile string
}

// PartitionRun is a partition recorded in the workspace ledger.
type PartitionRun struct {
	// ID is the RunID of the partition.
	ID string `json:"id"`

	// Source is the absolute path of the partitioned collection.
	Source string `json:"source"`

	// OutputDir is the absolute directory holding Train/ and Validation/.
	OutputDir string `json:"output_dir"`

	// ValCount is the per-class validation target.
	ValCount int `json:"val_count"`

	// Classes is the number of classes partitioned.
	Classes int `json:"classes"`

	// TrainImages is the number of files copied into Train/.
	TrainImages int `json:"train_images"`

	// ValidationImages is the number of files copied into Validation/.
	ValidationImages int `json:"validation_images"`

	// CreatedAt is when the partition completed.
	CreatedAt time.Time `json:"created_at"`
}

// Augmentation enumerates the augmentation settings handed to the training
// backend's data source. Zero values disable the corresponding transform,
// except Rescale where zero means 1.
type Augmentation struct {
	// Rescale multiplies every pixel value, e.g. 1/255.
	Rescale float64 `json:"rescale,omitempty"`

	// ShearRange is the shear intensity.
	ShearRange float64 `json:"shear_range,omitempty"`

	// ZoomRange is the random zoom range.
	ZoomRange float64 `json:"zoom_range,omitempty"`

	// HorizontalFlip randomly flips inputs horizontally.
	HorizontalFlip bool `json:"horizontal_flip,omitempty"`

	// RotationRange is the random rotation range.
	RotationRange float64 `json:"rotation_range,omitempty"`

	// ChannelShiftRange is the random channel shift range.
	ChannelShiftRange float64 `json:"channel_shift_range,omitempty"`
}

// Validate reports whether the settings are in range.
func (a Augmentation) Validate() error {
	if a.Rescale < 0 {
		return fmt.Errorf("%w: rescale must not be negative, got %v", ErrInvalidArgument, a.Rescale)
	}
	ranges := []struct {
		name string
		v    float64
	}{
		{"shear_range", a.ShearRange},
		{"zoom_range", a.ZoomRange},
		{"rotation_range", a.RotationRange},
		{"channel_shift_range", a.ChannelShiftRange},
	}
	for _, r := range ranges {
		if r.v < 0 {
			return fmt.Errorf("%w: %s must not be negative, got %v", ErrInvalidArgument, r.name, r.v)
		}
	}
	return nil
}

// Scale returns the effective rescale multiplier.
func (a Augmentation) Scale() float64 {
	if a.Rescale == 0 {
		return 1
	}
	return a.Rescale
}

// ResizeDims is the target size images are resized to before batching.
type ResizeDims struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// String returns "WxH".
func (d ResizeDims) String() string {
	return fmt.Sprintf("%dx%d", d.Width, d.Height)
}
