package logging

import (
	"fmt"
	"os"
	"path/filepath"
)

// DefaultLogDir returns the log directory. FACTCHECK_LOG_DIR overrides the
// default ~/.factcheck/logs; the temp directory is used when there is no home.
func DefaultLogDir() string {
	if dir := os.Getenv("FACTCHECK_LOG_DIR"); dir != "" {
		return dir
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(os.TempDir(), ".factcheck", "logs")
	}
	return filepath.Join(home, ".factcheck", "logs")
}

// DefaultLogPath returns the client log path.
func DefaultLogPath() string {
	return filepath.Join(DefaultLogDir(), "client.log")
}

// FindLogFile returns explicit if it exists, otherwise the default log path.
func FindLogFile(explicit string) (string, error) {
	if explicit != "" {
		if _, err := os.Stat(explicit); err != nil {
			return "", fmt.Errorf("log file not found: %s", explicit)
		}
		return explicit, nil
	}

	path := DefaultLogPath()
	if _, err := os.Stat(path); err != nil {
		return "", fmt.Errorf("no log file found yet, expected at %s", path)
	}
	return path, nil
}
