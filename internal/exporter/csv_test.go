package exporter

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
}

func TestNewCSVWriter(t *testing.T) {
	writer := NewCSVWriter(discardLogger())
	assert.NotNil(t, writer)
	assert.NotNil(t, writer.logger)

	// nil falls back to the global logger
	assert.NotNil(t, NewCSVWriter(nil).logger)
}

func TestCSVWriter_WriteCSV(t *testing.T) {
	writer := NewCSVWriter(discardLogger())
	tempDir := t.TempDir()

	tests := []struct {
		name     string
		filePath string
		setup    func(t *testing.T, filePath string)
		options  WriteOptions
		validate func(t *testing.T, filePath string)
	}{
		{
			name:     "basic write with headers",
			filePath: "test_basic.csv",
			options: WriteOptions{
				Headers: []string{"Year", "MarketSize"},
				Records: [][]string{{"2020", "100"}, {"2021", "150.5"}},
			},
			validate: func(t *testing.T, filePath string) {
				content, err := os.ReadFile(filePath)
				require.NoError(t, err)

				lines := strings.Split(strings.TrimSpace(string(content)), "\n")
				assert.Equal(t, []string{"Year,MarketSize", "2020,100", "2021,150.5"}, lines)
				assert.False(t, bytes.HasPrefix(content, []byte{0xEF, 0xBB, 0xBF}))
			},
		},
		{
			name:     "truncates existing file",
			filePath: "test_truncate.csv",
			setup: func(t *testing.T, filePath string) {
				require.NoError(t, os.WriteFile(filePath, []byte("old,content,that,is,long\n1,2,3,4,5\n"), 0644))
			},
			options: WriteOptions{Headers: []string{"A"}, Records: [][]string{{"1"}}},
			validate: func(t *testing.T, filePath string) {
				content, err := os.ReadFile(filePath)
				require.NoError(t, err)
				assert.Equal(t, "A\n1\n", string(content))
			},
		},
		{
			name:     "creates nested directories",
			filePath: filepath.Join("nested", "deeper", "out.csv"),
			options:  WriteOptions{Headers: []string{"A"}},
			validate: func(t *testing.T, filePath string) {
				assert.FileExists(t, filePath)
			},
		},
		{
			name:     "quotes special characters",
			filePath: "test_quotes.csv",
			options:  WriteOptions{Records: [][]string{{"a,b", `say "hi"`}}},
			validate: func(t *testing.T, filePath string) {
				records, err := ReadCSV(filePath)
				require.NoError(t, err)
				assert.Equal(t, [][]string{{"a,b", `say "hi"`}}, records)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fullPath := filepath.Join(tempDir, tt.filePath)
			if tt.setup != nil {
				tt.setup(t, fullPath)
			}

			require.NoError(t, writer.WriteCSV(fullPath, tt.options))
			tt.validate(t, fullPath)
		})
	}
}

func TestCSVWriter_WriteCSV_Errors(t *testing.T) {
	writer := NewCSVWriter(discardLogger())

	blocker := filepath.Join(t.TempDir(), "blocker")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0644))

	err := writer.WriteSimpleCSV(filepath.Join(blocker, "out.csv"), []string{"A"}, nil)
	assert.Error(t, err)
}

func TestReadCSV_Missing(t *testing.T) {
	_, err := ReadCSV(filepath.Join(t.TempDir(), "missing.csv"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}
