package vision

import "time"

// Collection shape constants.
const (
	// MinClasses is the minimum number of class directories a collection
	// needs. A single class cannot be classified against anything.
	MinClasses = 2

	// DefaultBatchSize is the batch size an ImageSet hands to the backend.
	DefaultBatchSize = 32

	// DefaultLockTimeout is the default timeout for acquiring file locks.
	DefaultLockTimeout = 30 * time.Second
)

// Partition output layout.
const (
	// TrainDirName is the name of the large-subset tree.
	TrainDirName = "Train"

	// ValidationDirName is the name of the small-subset tree.
	ValidationDirName = "Validation"
)

// DefaultResizeDims is the resize target an ImageSet hands to the backend.
var DefaultResizeDims = ResizeDims{Width: 256, Height: 256}

// ScanOption configures a collection scan.
type ScanOption func(*scanConfig)

// scanConfig holds configuration for a collection scan.
type scanConfig struct {
	// decoder decides whether a file is an image.
	decoder Decoder

	// logger receives diagnostic log messages.
	logger Logger
}

// newScanConfig returns a scanConfig with default values.
func newScanConfig(opts []ScanOption) *scanConfig {
	c := &scanConfig{decoder: DefaultDecoder()}
	for _, opt := range opts {
		opt(c)
	}
	if c.decoder == nil {
		c.decoder = DefaultDecoder()
	}
	return c
}

// WithDecoder sets the decoder used to check image files.
// If not set, DefaultDecoder() is used.
func WithDecoder(d Decoder) ScanOption {
	return func(c *scanConfig) {
		c.decoder = d
	}
}

// WithScanLogger sets a logger for scan diagnostics.
func WithScanLogger(logger Logger) ScanOption {
	return func(c *scanConfig) {
		c.logger = logger
	}
}

// PartitionOption configures a partition operation.
type PartitionOption func(*partitionConfig)

// partitionConfig holds configuration for a partition operation.
type partitionConfig struct {
	// outputDir receives the Train and Validation trees.
	outputDir string

	// overwrite removes existing Train and Validation trees first.
	overwrite bool

	// lockTimeout bounds the wait for the output directory lock.
	lockTimeout time.Duration

	// progressFn is called after each copied file.
	progressFn func(PartitionProgress)

	// scanOpts are forwarded to the validation step.
	scanOpts []ScanOption

	// logger receives diagnostic log messages.
	logger Logger
}

// newPartitionConfig returns a partitionConfig with default values.
func newPartitionConfig(opts []PartitionOption) *partitionConfig {
	c := &partitionConfig{
		outputDir:   ".",
		lockTimeout: DefaultLockTimeout,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// WithOutputDir sets the directory that receives Train/ and Validation/.
// Default is the current working directory.
func WithOutputDir(dir string) PartitionOption {
	return func(c *partitionConfig) {
		if dir != "" {
			c.outputDir = dir
		}
	}
}

// WithOverwrite replaces existing Train/ and Validation/ trees instead of
// failing with ErrOutputExists. Existing trees are removed, never merged.
func WithOverwrite() PartitionOption {
	return func(c *partitionConfig) {
		c.overwrite = true
	}
}

// WithLockTimeout sets how long to wait for another partition of the same
// output directory to finish.
func WithLockTimeout(d time.Duration) PartitionOption {
	return func(c *partitionConfig) {
		if d > 0 {
			c.lockTimeout = d
		}
	}
}

// WithPartitionProgress sets a callback for progress updates during copying.
func WithPartitionProgress(fn func(PartitionProgress)) PartitionOption {
	return func(c *partitionConfig) {
		c.progressFn = fn
	}
}

// WithScanOptions forwards scan options to the validation step.
func WithScanOptions(opts ...ScanOption) PartitionOption {
	return func(c *partitionConfig) {
		c.scanOpts = append(c.scanOpts, opts...)
	}
}

// WithPartitionLogger sets a logger for partition diagnostics.
func WithPartitionLogger(logger Logger) PartitionOption {
	return func(c *partitionConfig) {
		c.logger = logger
	}
}

// SetOption configures an ImageSet.
type SetOption func(*setConfig)

// setConfig holds configuration for ImageSet construction.
type setConfig struct {
	augmentation Augmentation
	batchSize    int
	resize       ResizeDims
	scanOpts     []ScanOption
}

// newSetConfig returns a setConfig with default values.
func newSetConfig(opts []SetOption) *setConfig {
	c := &setConfig{
		batchSize: DefaultBatchSize,
		resize:    DefaultResizeDims,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// WithAugmentation sets the augmentation settings for the data source.
func WithAugmentation(a Augmentation) SetOption {
	return func(c *setConfig) {
		c.augmentation = a
	}
}

// WithBatchSize sets the batch size for the data source.
// Default is DefaultBatchSize (32).
func WithBatchSize(n int) SetOption {
	return func(c *setConfig) {
		c.batchSize = n
	}
}

// WithResize sets the resize target for the data source.
// Default is DefaultResizeDims (256x256).
func WithResize(width, height int) SetOption {
	return func(c *setConfig) {
		c.resize = ResizeDims{Width: width, Height: height}
	}
}

// WithSetScanOptions forwards scan options to the validation step.
func WithSetScanOptions(opts ...ScanOption) SetOption {
	return func(c *setConfig) {
		c.scanOpts = append(c.scanOpts, opts...)
	}
}

// WorkspaceOption configures a Workspace.
type WorkspaceOption func(*workspaceConfig)

// workspaceConfig holds configuration for Workspace construction.
type workspaceConfig struct {
	// decoder is used for every scan the workspace performs.
	decoder Decoder

	// logger receives diagnostic log messages.
	logger Logger
}

// WithWorkspaceDecoder sets the decoder used by every workspace scan.
func WithWorkspaceDecoder(d Decoder) WorkspaceOption {
	return func(c *workspaceConfig) {
		c.decoder = d
	}
}

// WithLogger sets a logger for diagnostic output.
// If not set, logging is disabled.
func WithLogger(logger Logger) WorkspaceOption {
	return func(c *workspaceConfig) {
		c.logger = logger
	}
}

// Logger is the interface for diagnostic logging.
// Compatible with slog, zap, logrus, and other structured loggers.
type Logger interface {
	// Debug logs a debug-level message with optional key-value pairs.
	Debug(msg string, keysAndValues ...any)

	// Info logs an info-level message with optional key-value pairs.
	Info(msg string, keysAndValues ...any)

	// Warn logs a warning-level message with optional key-value pairs.
	Warn(msg string, keysAndValues ...any)

	// Error logs an error-level message with optional key-value pairs.
	Error(msg string, keysAndValues ...any)
}

// nopLogger discards everything.
type nopLogger struct{}

func (nopLogger) Debug(string, ...any) {}
func (nopLogger) Info(string, ...any)  {}
func (nopLogger) Warn(string, ...any)  {}
func (nopLogger) Error(string, ...any) {}

// loggerOrNop returns l, or a logger that discards output when l is nil.
func loggerOrNop(l Logger) Logger {
	if l == nil {
		return nopLogger{}
	}
	return l
}
