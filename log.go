package main

import (
	"io"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
)

// setupLog configures logging. By default logs are discarded so they never
// corrupt the TUI; set LECTIFY_LOGFILE to capture them.
func setupLog() (func() error, error) {
	if os.Getenv("LECTIFY_DEBUG") != "" {
		log.SetLevel(log.DebugLevel)
	}
	if logFile := os.Getenv("LECTIFY_LOGFILE"); logFile != "" {
		f, err := tea.LogToFileWith(logFile, "lectify", log.Default())
		if err != nil {
			return nil, err
		}
		return f.Close, nil
	}
	log.SetOutput(io.Discard)
	return func() error { return nil }, nil
}
