package utils

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateOutputFileName(t *testing.T) {
	name := GenerateOutputFileName("{dataset}_output.json", "Sheet1")
	assert.Equal(t, "Sheet1_output.json", name)

	name = GenerateOutputFileName("prices_{uuid}.json", "Sheet1")
	assert.NotContains(t, name, "{uuid}")
	assert.NotEqual(t, "prices_.json", name)

	name = GenerateOutputFileName("prices_{timestamp}.json", "Sheet1")
	assert.NotContains(t, name, "{timestamp}")

	// Unknown placeholders are left untouched.
	assert.Equal(t, "{what}.json", GenerateOutputFileName("{what}.json", "Sheet1"))
}

func TestFileManager_EnsureDirectories(t *testing.T) {
	dir := t.TempDir()
	fm := NewFileManager(filepath.Join(dir, "out"), filepath.Join(dir, "archive"))

	require.NoError(t, fm.EnsureDirectories())
	assert.DirExists(t, filepath.Join(dir, "out"))
	assert.DirExists(t, filepath.Join(dir, "archive"))
}

func TestFileManager_ArchiveInputFile(t *testing.T) {
	dir := t.TempDir()
	archiveDir := filepath.Join(dir, "archive")
	fm := NewFileManager(dir, archiveDir)
	require.NoError(t, fm.EnsureDirectories())

	input := filepath.Join(dir, "data.xlsx")
	require.NoError(t, os.WriteFile(input, []byte("workbook"), 0644))

	archived, err := fm.ArchiveInputFile(input)
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(archiveDir, "data.xlsx"), archived)
	assert.False(t, FileExists(input))
	assert.True(t, FileExists(archived))

	// A second file with the same name gets a suffixed destination.
	require.NoError(t, os.WriteFile(input, []byte("workbook 2"), 0644))
	second, err := fm.ArchiveInputFile(input)
	require.NoError(t, err)
	assert.NotEqual(t, archived, second)
	assert.True(t, FileExists(second))
}

func TestFileManager_ArchiveWithoutArchiveDir(t *testing.T) {
	fm := NewFileManager(t.TempDir(), "")
	_, err := fm.ArchiveInputFile("anything.xlsx")
	require.Error(t, err)
}

func TestWriteSummaryLog(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "runs.log")

	summary := ProcessingSummary{
		InputFile:     "data.xlsx",
		OutputFile:    "out.json",
		RowsProcessed: 10,
		RowsSkipped:   2,
		Postcodes:     5,
	}
	require.NoError(t, WriteSummaryLog(summary, logPath))
	require.NoError(t, WriteSummaryLog(summary, logPath)) // appends

	content, err := os.ReadFile(logPath)
	require.NoError(t, err)
	assert.Contains(t, string(content), "rows processed: 10")
	assert.Equal(t, 2, strings.Count(string(content), "=== run "))
}
