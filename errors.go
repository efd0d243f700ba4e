package vision

import "errors"

// Sentinel errors for collection and partition operations.
// Use errors.Is() to check for specific error conditions.
var (
	// ErrInvalidCollection indicates the path is not a Standard Image Collection.
	ErrInvalidCollection = errors.New("vision: invalid image collection")

	// ErrNotImage indicates a file inside a class directory could not be decoded.
	// Always returned wrapped together with ErrInvalidCollection context.
	ErrNotImage = errors.New("vision: file is not a decodable image")

	// ErrStorageError indicates a filesystem operation failed.
	// Distinct from ErrInvalidCollection: the layout may be fine but unreadable.
	ErrStorageError = errors.New("vision: storage error")

	// ErrOutputExists indicates a partition destination tree already exists.
	// Returned by PartitionImageCollection unless WithOverwrite() is specified.
	ErrOutputExists = errors.New("vision: partition output already exists")

	// ErrInvalidOutput indicates the partition output directory is unusable,
	// for example because it lies inside the source collection.
	ErrInvalidOutput = errors.New("vision: invalid partition output directory")

	// ErrInvalidArgument indicates a caller-supplied value is out of range.
	ErrInvalidArgument = errors.New("vision: invalid argument")

	// ErrRunNotFound indicates the partition run is not recorded in the ledger.
	ErrRunNotFound = errors.New("vision: partition run not found")
)
