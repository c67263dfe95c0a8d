package config

import (
	"os"
	"path/filepath"
)

// GetAttacheDir returns the per-user state directory, used for the log
// file and the instance lock.
func GetAttacheDir() string {
	homeDir, _ := os.UserHomeDir()
	return filepath.Join(homeDir, ".attache")
}
