package contract

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
	"github.com/repotally/repotally/schema"
)

// Color variables for console output.
var (
	FetchedColor = color.New(color.FgGreen)               // fetched outcomes
	SkippedColor = color.New(color.FgYellow, color.Bold)  // skipped outcomes
	ErrorColor   = color.New(color.FgRed, color.Bold)     // fatal conditions
)

// GetPlainStatus returns the plain text label for a fetch outcome. This is
// the core logic used for CSV, JSON, and table printing.
func GetPlainStatus(status schema.FetchStatus) string {
	switch status {
	case schema.FetchedStatus:
		return "Fetched"
	case schema.SkippedStatus:
		return "Skipped"
	default:
		return string(status)
	}
}

// GetColorStatus returns a colored status label for console output (table).
func GetColorStatus(status schema.FetchStatus) string {
	text := GetPlainStatus(status)
	switch status {
	case schema.FetchedStatus:
		return FetchedColor.Sprint(text)
	case schema.SkippedStatus:
		return SkippedColor.Sprint(text)
	default:
		return text
	}
}

// SelectOutputFile returns the appropriate file handle for output, based on
// the provided file path. It returns os.Stdout for an empty path.
func SelectOutputFile(filePath string) (*os.File, error) {
	if filePath == "" {
		return os.Stdout, nil
	}
	return os.Create(filePath)
}

// LogFatal logs an error and exits the program.
func LogFatal(msg string, err error) {
	_, _ = fmt.Fprintf(os.Stderr, "Fatal %s: %v\n", msg, err)
	os.Exit(1)
}

// LogWarn logs a warning message to stderr.
func LogWarn(msg string, err error) {
	_, _ = fmt.Fprintf(os.Stderr, "Warn %s: %v\n", msg, err)
}

// GetCacheDBFilePath returns the path to the SQLite DB file for the
// response cache.
func GetCacheDBFilePath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ".repotally_cache.db"
	}
	return filepath.Join(homeDir, ".repotally_cache.db")
}

// GetRunsDBFilePath returns the path to the SQLite DB file for run-history
// tracking.
func GetRunsDBFilePath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ".repotally_runs.db"
	}
	return filepath.Join(homeDir, ".repotally_runs.db")
}

// ParseBoolString parses a string value into a boolean.
// Accepts "yes", "no", "true", "false", "1", "0" (case-insensitive).
// An empty string defaults to true.
func ParseBoolString(s string) (bool, error) {
	switch strings.ToLower(s) {
	case "", "yes", "true", "1":
		return true, nil
	case "no", "false", "0":
		return false, nil
	default:
		return false, fmt.Errorf("invalid boolean string: %s (expected yes/no/true/false/1/0)", s)
	}
}

// TruncateName truncates a repo or metric name to a maximum width with an
// ellipsis suffix. Requires maxWidth > 3 so there is room for the ellipsis.
func TruncateName(name string, maxWidth int) string {
	runes := []rune(name)
	if len(runes) > maxWidth && maxWidth > 3 {
		return string(runes[:maxWidth-3]) + "..."
	}
	return name
}
