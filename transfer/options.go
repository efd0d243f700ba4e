package transfer

import vision "github.com/cmaxcy/computer-vision"

// Option configures a TransferModel.
type Option func(*config)

type config struct {
	logger vision.Logger
}

// WithLogger sets a logger for training diagnostics.
// The vision.Logger interface is satisfied by *slog.Logger.
func WithLogger(logger vision.Logger) Option {
	return func(c *config) {
		c.logger = logger
	}
}

type nopLogger struct{}

func (nopLogger) Debug(msg string, args ...any) {}
func (nopLogger) Info(msg string, args ...any)  {}
func (nopLogger) Warn(msg string, args ...any)  {}
func (nopLogger) Error(msg string, args ...any) {}
