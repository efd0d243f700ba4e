package vision

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

// ledgerFile is the name of the partition run ledger inside the data directory.
const ledgerFile = "runs.json"

// runLedger represents the contents of the runs.json file.
type runLedger struct {
	// Runs holds recorded partition runs in insertion order.
	Runs []PartitionRun `json:"runs"`
}

// storageInterface defines operations for the workspace data directory.
// Implemented by *storage for production and mockStorage for tests.
type storageInterface interface {
	// loadLedger reads and parses the runs.json file.
	loadLedger() (runLedger, error)

	// saveLedger atomically writes the ledger to runs.json.
	saveLedger(l runLedger) error

	// updateLedger loads the ledger, applies fn and saves the result while
	// holding the ledger lock. Nothing is saved when fn fails.
	updateLedger(fn func(*runLedger) error) error

	// dataDir returns the absolute path of the data directory.
	dataDir() string
}

// storage handles the workspace data directory on the local filesystem.
// Implements storageInterface.
type storage struct {
	// baseDir is the base directory for all storage operations.
	baseDir string

	// lockTimeout is the maximum duration to wait for file lock acquisition.
	lockTimeout time.Duration

	// ledgerMu protects concurrent in-process access to runs.json.
	ledgerMu sync.RWMutex
}

// Ensure storage implements storageInterface.
var _ storageInterface = (*storage)(nil)

// envVarName constructs an environment variable name from the app name.
// Converts appName to uppercase and appends "_DATA_DIR".
// Example: envVarName("imageset") returns "IMAGESET_DATA_DIR".
func envVarName(appName string) string {
	return strings.ToUpper(appName) + "_DATA_DIR"
}

// newStorage creates a new storage instance for the given configuration.
func newStorage(cfg Config) (*storage, error) {
	var baseDir string

	// Priority: env var > Config.DataDir > platform default
	if envDir := os.Getenv(envVarName(cfg.AppName)); envDir != "" {
		baseDir = envDir
	} else if cfg.DataDir != "" {
		baseDir = cfg.DataDir
	} else {
		defaultDir, err := getDefaultDataDir(cfg.AppName)
		if err != nil {
			return nil, fmt.Errorf("failed to get default data dir: %w", err)
		}
		baseDir = defaultDir
	}

	s := &storage{baseDir: baseDir, lockTimeout: DefaultLockTimeout}

	if err := s.ensureDir(baseDir); err != nil {
		return nil, fmt.Errorf("failed to create storage directory: %w", err)
	}

	return s, nil
}

// dataDir returns the base directory.
func (s *storage) dataDir() string {
	return s.baseDir
}

// loadLedger reads and parses the runs.json file.
// Returns an empty ledger if the file doesn't exist.
func (s *storage) loadLedger() (runLedger, error) {
	s.ledgerMu.RLock()
	defer s.ledgerMu.RUnlock()

	return s.readLedger()
}

// saveLedger atomically writes the ledger to runs.json.
// Uses cross-process file locking to prevent concurrent writes from multiple processes.
func (s *storage) saveLedger(l runLedger) error {
	s.ledgerMu.Lock()
	defer s.ledgerMu.Unlock()

	lock, err := s.lockLedger()
	if err != nil {
		return err
	}
	defer lock.Unlock()

	return s.writeLedger(l)
}

// updateLedger runs a read-modify-write cycle on runs.json under both the
// in-process mutex and the cross-process file lock, so concurrent writers
// in other processes cannot drop each other's runs.
func (s *storage) updateLedger(fn func(*runLedger) error) error {
	s.ledgerMu.Lock()
	defer s.ledgerMu.Unlock()

	lock, err := s.lockLedger()
	if err != nil {
		return err
	}
	defer lock.Unlock()

	l, err := s.readLedger()
	if err != nil {
		return err
	}
	if err := fn(&l); err != nil {
		return err
	}
	return s.writeLedger(l)
}

// lockLedger acquires the cross-process lock guarding runs.json.
func (s *storage) lockLedger() (*fileLock, error) {
	lockPath := filepath.Join(s.baseDir, ledgerFile+".lock")
	lock, err := newFileLock(lockPath, s.lockTimeout)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create lock: %v", ErrStorageError, err)
	}
	if err := lock.Lock(); err != nil {
		lock.Unlock()
		return nil, fmt.Errorf("%w: failed to acquire lock: %v", ErrStorageError, err)
	}
	return lock, nil
}

// readLedger parses runs.json. Callers hold ledgerMu.
func (s *storage) readLedger() (runLedger, error) {
	path := filepath.Join(s.baseDir, ledgerFile)
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return runLedger{}, nil
	}
	if err != nil {
		return runLedger{}, fmt.Errorf("%w: %v", ErrStorageError, err)
	}

	var l runLedger
	if err := json.Unmarshal(data, &l); err != nil {
		return runLedger{}, fmt.Errorf("%w: invalid %s: %v", ErrStorageError, ledgerFile, err)
	}

	return l, nil
}

// writeLedger serializes l into runs.json. Callers hold both locks.
func (s *storage) writeLedger(l runLedger) error {
	if l.Runs == nil {
		l.Runs = []PartitionRun{}
	}
	data, err := json.MarshalIndent(l, "", "  ")
	if err != nil {
		return fmt.Errorf("%w: failed to marshal ledger: %v", ErrStorageError, err)
	}

	return s.atomicWrite(filepath.Join(s.baseDir, ledgerFile), data)
}

// atomicWrite writes data to a file using write-then-rename for atomicity.
func (s *storage) atomicWrite(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("%w: failed to create directory: %v", ErrStorageError, err)
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("%w: failed to write temp file: %v", ErrStorageError, err)
	}

	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("%w: failed to rename temp file: %v", ErrStorageError, err)
	}

	return nil
}

// ensureDir creates a directory and all parent directories if they don't exist.
func (s *storage) ensureDir(path string) error {
	if err := os.MkdirAll(path, 0755); err != nil {
		return fmt.Errorf("%w: failed to create directory %s: %v", ErrStorageError, path, err)
	}
	return nil
}
