package cmd

import (
	"fmt"
	"log"
	"os"
)

// setupLogging points the standard logger at path, keeping one rotated history
// file. An empty path keeps logging on stderr and returns a nil file.
func setupLogging(path string) (*os.File, error) {
	log.SetFlags(log.Ldate | log.Ltime | log.Lshortfile)
	if path == "" {
		return nil, nil
	}

	// Remove existing history to keep only one backup
	_ = os.Remove(path + ".1")

	if _, err := os.Stat(path); err == nil {
		if err := os.Rename(path, path+".1"); err != nil {
			return nil, fmt.Errorf("failed to rotate existing log: %w", err)
		}
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file %s: %w", path, err)
	}

	log.SetOutput(f)
	return f, nil
}
