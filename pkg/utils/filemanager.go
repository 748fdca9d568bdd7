// =============================================================================
// XLSX to JSON Aggregator - File Manager Utility
// =============================================================================
//
// This utility owns the filesystem chores around a run: making sure the
// output and archive directories exist, generating output file names from
// a placeholder format, moving the processed spreadsheet into the input
// archive, and persisting a per-run summary log.
//
// OUTPUT NAME PLACEHOLDERS:
//   {uuid}      - A random UUID
//   {timestamp} - Current timestamp (YYYYMMDD_HHMMSS)
//   {dataset}   - The dataset/sheet identifier
//
// =============================================================================

package utils

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

// =============================================================================
// FILE MANAGER STRUCTURE
// =============================================================================

// FileManager handles the directories and file moves of one run.
type FileManager struct {
	// OutputDir is where the JSON document is written.
	OutputDir string

	// InputArchiveDir is where processed spreadsheets move on success.
	// Empty disables archival.
	InputArchiveDir string
}

// NewFileManager creates a file manager for the given directories.
func NewFileManager(outputDir, inputArchiveDir string) *FileManager {
	return &FileManager{
		OutputDir:       outputDir,
		InputArchiveDir: inputArchiveDir,
	}
}

// EnsureDirectories creates the managed directories if they do not exist.
func (fm *FileManager) EnsureDirectories() error {
	dirs := []string{fm.OutputDir}
	if fm.InputArchiveDir != "" {
		dirs = append(dirs, fm.InputArchiveDir)
	}

	for _, dir := range dirs {
		if dir == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}
	return nil
}

// =============================================================================
// ARCHIVAL
// =============================================================================

// ArchiveInputFile moves a processed spreadsheet into the input archive.
// If a file with the same name already exists there, a timestamp suffix
// is added. Returns the archived path.
func (fm *FileManager) ArchiveInputFile(filePath string) (string, error) {
	if fm.InputArchiveDir == "" {
		return "", fmt.Errorf("no input archive directory configured")
	}

	archivePath := fm.getArchivePath(fm.InputArchiveDir, filePath)

	if err := os.Rename(filePath, archivePath); err != nil {
		// Rename fails across filesystems; fall back to copy+remove.
		if copyErr := copyFile(filePath, archivePath); copyErr != nil {
			return "", fmt.Errorf("failed to archive %s: %w", filePath, err)
		}
		if rmErr := os.Remove(filePath); rmErr != nil {
			return "", fmt.Errorf("failed to remove original after copy: %w", rmErr)
		}
	}

	return archivePath, nil
}

// getArchivePath picks a collision-free destination inside archiveDir.
func (fm *FileManager) getArchivePath(archiveDir, filePath string) string {
	fileName := filepath.Base(filePath)
	archivePath := filepath.Join(archiveDir, fileName)

	if !FileExists(archivePath) {
		return archivePath
	}

	ext := filepath.Ext(fileName)
	stem := strings.TrimSuffix(fileName, ext)
	stamped := fmt.Sprintf("%s_%s%s", stem, time.Now().Format("20060102_150405"), ext)
	return filepath.Join(archiveDir, stamped)
}

// =============================================================================
// OUTPUT NAMING
// =============================================================================

// GenerateOutputFileName expands the placeholder format into a concrete
// file name. Unknown placeholders are left untouched.
func GenerateOutputFileName(format string, dataset string) string {
	name := format
	name = strings.ReplaceAll(name, "{uuid}", uuid.New().String())
	name = strings.ReplaceAll(name, "{timestamp}", time.Now().Format("20060102_150405"))
	name = strings.ReplaceAll(name, "{dataset}", dataset)
	return name
}

// =============================================================================
// SUMMARY LOG
// =============================================================================

// ProcessingSummary describes one completed run for the summary log.
type ProcessingSummary struct {
	InputFile     string
	OutputFile    string
	RowsProcessed int
	RowsSkipped   int
	Postcodes     int
	Elapsed       time.Duration
}

// WriteSummaryLog appends a one-block summary of the run to the given
// log file, creating it if needed.
func WriteSummaryLog(summary ProcessingSummary, logPath string) error {
	f, err := os.OpenFile(logPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("failed to open summary log: %w", err)
	}
	defer f.Close()

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("=== run %s ===\n", time.Now().Format(time.RFC3339)))
	sb.WriteString(fmt.Sprintf("input:          %s\n", summary.InputFile))
	sb.WriteString(fmt.Sprintf("output:         %s\n", summary.OutputFile))
	sb.WriteString(fmt.Sprintf("rows processed: %d\n", summary.RowsProcessed))
	sb.WriteString(fmt.Sprintf("rows skipped:   %d\n", summary.RowsSkipped))
	sb.WriteString(fmt.Sprintf("postcodes:      %d\n", summary.Postcodes))
	sb.WriteString(fmt.Sprintf("elapsed:        %s\n", summary.Elapsed))

	if _, err := f.WriteString(sb.String()); err != nil {
		return fmt.Errorf("failed to write summary log: %w", err)
	}
	return nil
}

// =============================================================================
// SMALL FILE HELPERS
// =============================================================================

// FileExists checks whether a path exists.
func FileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// copyFile copies src to dst, preserving nothing but the bytes.
func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer out.Close()

	if _, err := io.Copy(out, in); err != nil {
		return err
	}
	return out.Sync()
}
