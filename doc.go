// Package vision validates and partitions image classification datasets laid
// out as a Standard Image Collection: a root directory whose children are
// class directories, each holding only decodable image files.
//
// The package serves three use cases:
//
//  1. Pure functions - Validate, IsCollectionValid, GetCollectionInfo and
//     Inspect judge a directory on demand; PartitionList and
//     PartitionImageCollection split classes into Train/ and Validation/
//     trees; Open returns an ImageSet ready for a training backend (see the
//     transfer subpackage).
//
//  2. Programmatic API via the Workspace interface - NewWorkspace returns a
//     Workspace that partitions collections and records each run in a
//     ledger on disk.
//
//  3. Embeddable CLI via NewCommand - Parent CLI tools can attach the
//     validate, info, partition and runs commands to their Cobra root.
//
// # Collection Rules
//
// A collection needs at least MinClasses class directories. Class
// directories may be empty but must not contain directories. Whether a file
// is an image is decided by a Decoder; decode failures wrap ErrNotImage and
// ErrInvalidCollection, while read failures wrap ErrStorageError.
//
// # Partition Output
//
// Partitioning never modifies the source. Existing Train/ or Validation/
// trees cause ErrOutputExists unless WithOverwrite is given, in which case
// they are replaced. Output is built in a staging directory and moved into
// place only when every copy succeeded.
//
// # Storage
//
// The run ledger is stored in platform-appropriate directories:
//   - Linux: $XDG_DATA_HOME/<app>/vision/ or ~/.local/share/<app>/vision/
//   - macOS: ~/Library/Application Support/<app>/vision/
//   - Windows: %APPDATA%\<app>\vision\
//
// The storage location can be overridden via Config.DataDir or the
// <APPNAME>_DATA_DIR environment variable.
package vision
