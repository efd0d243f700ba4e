package vision

import (
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func TestEnvVarName(t *testing.T) {
	tests := []struct {
		appName string
		want    string
	}{
		{"imageset", "IMAGESET_DATA_DIR"},
		{"myapp", "MYAPP_DATA_DIR"},
		{"MyApp", "MYAPP_DATA_DIR"},
		{"my-app", "MY-APP_DATA_DIR"},
	}

	for _, tt := range tests {
		t.Run(tt.appName, func(t *testing.T) {
			got := envVarName(tt.appName)
			if got != tt.want {
				t.Errorf("envVarName(%q) = %q, want %q", tt.appName, got, tt.want)
			}
		})
	}
}

func TestNewStorageWithDataDir(t *testing.T) {
	tmpDir := t.TempDir()

	s, err := newStorage(Config{AppName: "testapp", DataDir: tmpDir})
	if err != nil {
		t.Fatalf("newStorage() error = %v", err)
	}

	if s.dataDir() != tmpDir {
		t.Errorf("dataDir() = %q, want %q", s.dataDir(), tmpDir)
	}
}

func TestNewStorageWithEnvVar(t *testing.T) {
	tmpDir := t.TempDir()
	t.Setenv(envVarName("testenvapp"), tmpDir)

	s, err := newStorage(Config{AppName: "testenvapp", DataDir: "/should/be/ignored"})
	if err != nil {
		t.Fatalf("newStorage() error = %v", err)
	}

	if s.baseDir != tmpDir {
		t.Errorf("baseDir = %q, want %q (env var should take priority)", s.baseDir, tmpDir)
	}
}

func TestNewStorageDefaultDir(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("XDG_DATA_HOME", filepath.Join(home, "xdg"))
	t.Setenv("APPDATA", filepath.Join(home, "appdata"))

	s, err := newStorage(Config{AppName: "testapp"})
	if err != nil {
		t.Fatalf("newStorage() error = %v", err)
	}

	if filepath.Base(s.baseDir) != "vision" {
		t.Errorf("baseDir = %q, want it to end in vision", s.baseDir)
	}
	if _, err := os.Stat(s.baseDir); err != nil {
		t.Errorf("default data dir not created: %v", err)
	}
}

func TestAtomicWrite(t *testing.T) {
	tmpDir := t.TempDir()
	s := &storage{baseDir: tmpDir}

	testFile := filepath.Join(tmpDir, "nested", "test.txt")
	if err := s.atomicWrite(testFile, []byte("hello world")); err != nil {
		t.Fatalf("atomicWrite() error = %v", err)
	}

	got, err := os.ReadFile(testFile)
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	if string(got) != "hello world" {
		t.Errorf("file content = %q, want %q", got, "hello world")
	}

	if _, err := os.Stat(testFile + ".tmp"); !os.IsNotExist(err) {
		t.Errorf("temp file should not exist after atomic write")
	}
}

func TestLedgerRoundTrip(t *testing.T) {
	tmpDir := t.TempDir()
	s := &storage{baseDir: tmpDir, lockTimeout: time.Second}

	t.Run("missing file yields empty ledger", func(t *testing.T) {
		l, err := s.loadLedger()
		if err != nil {
			t.Fatalf("loadLedger() error = %v", err)
		}
		if len(l.Runs) != 0 {
			t.Errorf("len(Runs) = %d, want 0", len(l.Runs))
		}
	})

	t.Run("saved runs load back", func(t *testing.T) {
		created := time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC)
		want := runLedger{Runs: []PartitionRun{{
			ID:               "run-1",
			Source:           "/data/Images",
			OutputDir:        "/data",
			ValCount:         10,
			Classes:          120,
			TrainImages:      19380,
			ValidationImages: 1200,
			CreatedAt:        created,
		}}}
		if err := s.saveLedger(want); err != nil {
			t.Fatalf("saveLedger() error = %v", err)
		}

		got, err := s.loadLedger()
		if err != nil {
			t.Fatalf("loadLedger() error = %v", err)
		}
		if diff := cmp.Diff(want, got); diff != "" {
			t.Errorf("loadLedger() mismatch (-want +got):\n%s", diff)
		}
	})
}

func TestLoadLedgerCorrupt(t *testing.T) {
	tmpDir := t.TempDir()
	s := &storage{baseDir: tmpDir}

	if err := os.WriteFile(filepath.Join(tmpDir, ledgerFile), []byte("{not json"), 0644); err != nil {
		t.Fatal(err)
	}

	_, err := s.loadLedger()
	if !errors.Is(err, ErrStorageError) {
		t.Errorf("loadLedger() error = %v, want ErrStorageError", err)
	}
}

func TestSaveLedgerConcurrent(t *testing.T) {
	tmpDir := t.TempDir()
	s := &storage{baseDir: tmpDir, lockTimeout: 5 * time.Second}

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			l := runLedger{Runs: []PartitionRun{{ID: imageName(i)}}}
			if err := s.saveLedger(l); err != nil {
				t.Errorf("saveLedger() error = %v", err)
			}
		}(i)
	}
	wg.Wait()

	l, err := s.loadLedger()
	if err != nil {
		t.Fatalf("loadLedger() error = %v", err)
	}
	if len(l.Runs) != 1 {
		t.Errorf("len(Runs) = %d, want 1 (last writer wins)", len(l.Runs))
	}
}

func TestFileLock(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.lock")

	first, err := newFileLock(path, time.Second)
	if err != nil {
		t.Fatalf("newFileLock() error = %v", err)
	}
	if err := first.Lock(); err != nil {
		t.Fatalf("Lock() error = %v", err)
	}

	second, err := newFileLock(path, 50*time.Millisecond)
	if err != nil {
		t.Fatalf("newFileLock() error = %v", err)
	}
	if err := second.Lock(); err == nil {
		t.Fatal("second Lock() should time out while the first is held")
	}

	if err := first.Unlock(); err != nil {
		t.Fatalf("Unlock() error = %v", err)
	}
	if err := first.Unlock(); err != nil {
		t.Errorf("second Unlock() error = %v, want nil", err)
	}

	if err := second.Unlock(); err != nil {
		t.Errorf("Unlock() of an unheld lock error = %v, want nil", err)
	}

	third, err := newFileLock(path, time.Second)
	if err != nil {
		t.Fatalf("newFileLock() error = %v", err)
	}
	defer third.Unlock()
	if err := third.Lock(); err != nil {
		t.Errorf("Lock() after release error = %v", err)
	}
}

func TestUpdateLedgerAcrossStorages(t *testing.T) {
	tmpDir := t.TempDir()
	a := &storage{baseDir: tmpDir, lockTimeout: 5 * time.Second}
	b := &storage{baseDir: tmpDir, lockTimeout: 5 * time.Second}

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		s := a
		if i%2 == 1 {
			s = b
		}
		wg.Add(1)
		go func(s *storage, id string) {
			defer wg.Done()
			err := s.updateLedger(func(l *runLedger) error {
				l.Runs = append(l.Runs, PartitionRun{ID: id})
				return nil
			})
			if err != nil {
				t.Errorf("updateLedger() error = %v", err)
			}
		}(s, imageName(i))
	}
	wg.Wait()

	l, err := a.loadLedger()
	if err != nil {
		t.Fatalf("loadLedger() error = %v", err)
	}
	if len(l.Runs) != 16 {
		t.Errorf("len(Runs) = %d, want 16", len(l.Runs))
	}
}

func TestUpdateLedgerFnErrorSavesNothing(t *testing.T) {
	tmpDir := t.TempDir()
	s := &storage{baseDir: tmpDir, lockTimeout: time.Second}
	boom := errors.New("boom")

	if err := s.updateLedger(func(*runLedger) error { return boom }); !errors.Is(err, boom) {
		t.Fatalf("updateLedger() error = %v, want boom", err)
	}
	if _, err := os.Stat(filepath.Join(tmpDir, ledgerFile)); !os.IsNotExist(err) {
		t.Error("runs.json should not be written when fn fails")
	}
}
