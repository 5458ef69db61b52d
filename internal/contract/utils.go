package contract

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
	"github.com/supplelab/tierank/schema"
)

// UnsetValue is shown in place of a grade that could not be computed.
const UnsetValue = "-"

// Color variables for console output.
var (
	SPlusColor = color.New(color.FgHiYellow, color.Bold) // SPlusColor marks the five-crown grade.
	SColor     = color.New(color.FgGreen, color.Bold)    // SColor marks the scarce top grade.
	AColor     = color.New(color.FgCyan)                 // AColor marks a strong grade.
	BColor     = color.New(color.FgBlue)                 // BColor marks an average grade.
	CColor     = color.New(color.FgYellow)               // CColor marks a weak grade.
	DColor     = color.New(color.FgRed)                  // DColor marks the bottom band.

	CriticalColor = color.New(color.FgRed, color.Bold)
	WarningColor  = color.New(color.FgYellow)
)

// GetPlainGrade returns the grade as plain text, or UnsetValue for an empty grade.
// This is the core logic used for CSV, JSON, and table printing.
func GetPlainGrade(grade schema.Grade) string {
	if grade == "" {
		return UnsetValue
	}
	return string(grade)
}

// GetColorGrade returns a colored grade label for console output (table).
// Grades outside the closed set are printed uncolored so corruption stays visible.
func GetColorGrade(grade schema.Grade) string {
	text := GetPlainGrade(grade)

	switch grade {
	case schema.GradeSPlus:
		return SPlusColor.Sprint(text)
	case schema.GradeS:
		return SColor.Sprint(text)
	case schema.GradeA:
		return AColor.Sprint(text)
	case schema.GradeB:
		return BColor.Sprint(text)
	case schema.GradeC:
		return CColor.Sprint(text)
	case schema.GradeD:
		return DColor.Sprint(text)
	default:
		return text
	}
}

// GetPlainSeverity returns the severity label as plain text.
func GetPlainSeverity(severity schema.Severity) string {
	return string(severity)
}

// GetColorSeverity returns a colored severity label for console output.
func GetColorSeverity(severity schema.Severity) string {
	if severity == schema.SeverityCritical {
		return CriticalColor.Sprint(string(severity))
	}
	return WarningColor.Sprint(string(severity))
}

// SelectOutputFile returns the appropriate file handle for output, based on the provided
// file path. It returns os.Stdout for an empty path.
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

// GetSnapshotDBFilePath returns the path to the SQLite DB file for snapshot storage.
func GetSnapshotDBFilePath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ".tierank_snapshots.db"
	}
	return filepath.Join(homeDir, ".tierank_snapshots.db")
}

// GetRankDBFilePath returns the path to the SQLite DB file for rank run storage.
func GetRankDBFilePath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ".tierank_ranks.db"
	}
	return filepath.Join(homeDir, ".tierank_ranks.db")
}

// TruncateText truncates a string to a maximum width with an ellipsis suffix.
// Requires maxWidth > 3 so there is room for the ellipsis and at least one character.
func TruncateText(text string, maxWidth int) string {
	runes := []rune(text)
	if len(runes) > maxWidth && maxWidth > 3 {
		return string(runes[:maxWidth-3]) + "..."
	}
	return text
}

// ParseBoolString parses a string value into a boolean.
// Accepts "yes", "no", "true", "false", "1", "0" (case-insensitive).
// Returns an error for invalid values.
func ParseBoolString(s string) (bool, error) {
	switch strings.ToLower(s) {
	case "yes", "true", "1":
		return true, nil
	case "no", "false", "0":
		return false, nil
	default:
		return false, fmt.Errorf("invalid boolean string: %s (expected yes/no/true/false/1/0)", s)
	}
}
