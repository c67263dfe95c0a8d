package cmd

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"

	"github.com/attache-dl/attache/internal/config"
)

var instanceLock *flock.Flock

// acquireLock takes the per-user instance lock. Concurrent instances
// would interleave writes to the shared log file.
func acquireLock() error {
	dir := config.GetAttacheDir()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create %s: %w", dir, err)
	}

	lock := flock.New(filepath.Join(dir, "attache.lock"))
	ok, err := lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire instance lock: %w", err)
	}
	if !ok {
		return errors.New("another attache instance is already running")
	}

	instanceLock = lock
	return nil
}

func releaseLock() {
	if instanceLock != nil {
		_ = instanceLock.Unlock()
		instanceLock = nil
	}
}
