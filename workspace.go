package vision

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"
)

// Workspace runs collection operations and keeps a ledger of completed
// partitions in its data directory.
// All methods are safe for concurrent use.
// For CLI integration, use NewCommand instead.
type Workspace interface {
	// Inspect validates root and returns its summary.
	Inspect(ctx context.Context, root string) (Info, error)

	// Partition splits root into Train and Validation trees and records the run.
	// See PartitionImageCollection for the exact semantics.
	Partition(ctx context.Context, root string, valCount int, opts ...PartitionOption) (PartitionResult, error)

	// Runs returns every recorded partition, newest first.
	Runs(ctx context.Context) ([]PartitionRun, error)

	// Run returns a recorded partition by ID or unique ID prefix.
	// Returns ErrRunNotFound if no run matches.
	Run(ctx context.Context, id string) (PartitionRun, error)

	// ForgetRun removes a run from the ledger. The partition output on disk
	// is left alone. Returns ErrRunNotFound if no run matches.
	ForgetRun(ctx context.Context, id string) error

	// ClearRuns removes every run from the ledger.
	ClearRuns(ctx context.Context) error

	// DataDir returns the directory holding the ledger.
	DataDir() string
}

// Ensure workspace implements Workspace interface.
var _ Workspace = (*workspace)(nil)

// NewWorkspace creates a new Workspace with the given configuration.
// Returns an error if the configuration is invalid (empty AppName).
func NewWorkspace(cfg Config, opts ...WorkspaceOption) (Workspace, error) {
	if cfg.AppName == "" {
		return nil, errors.New("vision: AppName is required")
	}

	wcfg := &workspaceConfig{}
	for _, opt := range opts {
		opt(wcfg)
	}

	storage, err := newStorage(cfg)
	if err != nil {
		return nil, err
	}

	return &workspace{
		cfg:     cfg,
		decoder: wcfg.decoder,
		logger:  loggerOrNop(wcfg.logger),
		storage: storage,
		now:     time.Now,
	}, nil
}

// workspace is the concrete implementation of the Workspace interface.
type workspace struct {
	// cfg holds the module configuration.
	cfg Config

	// decoder is forwarded to every scan. Nil means DefaultDecoder.
	decoder Decoder

	// logger receives diagnostic messages.
	logger Logger

	// storage handles the ledger on disk.
	storage storageInterface

	// now stamps recorded runs.
	now func() time.Time

	// ledgerMu serializes read-modify-write cycles on the ledger.
	ledgerMu sync.Mutex
}

// scanOptions returns the scan options implied by the workspace configuration.
func (w *workspace) scanOptions() []ScanOption {
	opts := []ScanOption{WithScanLogger(w.logger)}
	if w.decoder != nil {
		opts = append(opts, WithDecoder(w.decoder))
	}
	return opts
}

// Inspect validates root and returns its summary.
func (w *workspace) Inspect(ctx context.Context, root string) (Info, error) {
	if err := ctx.Err(); err != nil {
		return Info{}, err
	}
	return Inspect(root, w.scanOptions()...)
}

// Partition splits root and appends the result to the ledger.
func (w *workspace) Partition(ctx context.Context, root string, valCount int, opts ...PartitionOption) (PartitionResult, error) {
	base := []PartitionOption{
		WithPartitionLogger(w.logger),
		WithScanOptions(w.scanOptions()...),
	}
	result, err := PartitionImageCollection(ctx, root, valCount, append(base, opts...)...)
	if err != nil {
		return PartitionResult{}, err
	}

	run := PartitionRun{
		ID:               result.RunID,
		Source:           result.Source,
		OutputDir:        result.OutputDir,
		ValCount:         result.ValCount,
		Classes:          len(result.Classes),
		TrainImages:      result.TrainImages(),
		ValidationImages: result.ValidationImages(),
		CreatedAt:        w.now().UTC(),
	}

	err = w.updateLedger(func(l *runLedger) error {
		l.Runs = append(l.Runs, run)
		return nil
	})
	if err != nil {
		// The partition itself succeeded; only the record is missing.
		w.logger.Warn("failed to record partition run", "run_id", run.ID, "error", err)
		return result, fmt.Errorf("recording run %s: %w", run.ID, err)
	}

	return result, nil
}

// Runs returns every recorded partition, newest first.
func (w *workspace) Runs(ctx context.Context) ([]PartitionRun, error) {
	l, err := w.storage.loadLedger()
	if err != nil {
		return nil, fmt.Errorf("loading ledger: %w", err)
	}

	runs := append([]PartitionRun{}, l.Runs...)
	sort.SliceStable(runs, func(i, j int) bool {
		return runs[i].CreatedAt.After(runs[j].CreatedAt)
	})
	return runs, nil
}

// Run returns a recorded partition by ID or unique ID prefix.
func (w *workspace) Run(ctx context.Context, id string) (PartitionRun, error) {
	l, err := w.storage.loadLedger()
	if err != nil {
		return PartitionRun{}, fmt.Errorf("loading ledger: %w", err)
	}

	idx, err := findRun(l.Runs, id)
	if err != nil {
		return PartitionRun{}, err
	}
	return l.Runs[idx], nil
}

// ForgetRun removes a run from the ledger.
func (w *workspace) ForgetRun(ctx context.Context, id string) error {
	return w.updateLedger(func(l *runLedger) error {
		idx, err := findRun(l.Runs, id)
		if err != nil {
			return err
		}
		l.Runs = append(l.Runs[:idx], l.Runs[idx+1:]...)
		return nil
	})
}

// ClearRuns removes every run from the ledger.
func (w *workspace) ClearRuns(ctx context.Context) error {
	return w.updateLedger(func(l *runLedger) error {
		l.Runs = nil
		return nil
	})
}

// DataDir returns the directory holding the ledger.
func (w *workspace) DataDir() string {
	return w.storage.dataDir()
}

// updateLedger applies fn to the ledger under the storage lock, which spans
// processes sharing the data directory. Nothing is saved when fn fails.
func (w *workspace) updateLedger(fn func(*runLedger) error) error {
	w.ledgerMu.Lock()
	defer w.ledgerMu.Unlock()

	var fnErr error
	err := w.storage.updateLedger(func(l *runLedger) error {
		fnErr = fn(l)
		return fnErr
	})
	if err != nil && fnErr == nil {
		return fmt.Errorf("updating ledger: %w", err)
	}
	return err
}

// findRun returns the index of the run whose ID equals id, or failing that
// the single run whose ID starts with id.
func findRun(runs []PartitionRun, id string) (int, error) {
	if id == "" {
		return -1, fmt.Errorf("%w: empty run id", ErrRunNotFound)
	}

	match := -1
	for i, r := range runs {
		if r.ID == id {
			return i, nil
		}
		if len(id) < len(r.ID) && r.ID[:len(id)] == id {
			if match >= 0 {
				return -1, fmt.Errorf("%w: %q is ambiguous", ErrRunNotFound, id)
			}
			match = i
		}
	}
	if match < 0 {
		return -1, fmt.Errorf("%w: %s", ErrRunNotFound, id)
	}
	return match, nil
}
