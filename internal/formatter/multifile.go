package formatter

import (
	"bytes"
	"fmt"
	"path/filepath"

	"github.com/spf13/afero"
	"github.com/tordrt/migrationgen/internal/migration"
)

// ArtifactWriter writes one migration file per table into a directory
type ArtifactWriter struct {
	Fs        afero.Fs
	OutputDir string
	Formatter *TypeORMFormatter
}

// NewArtifactWriter creates a writer targeting outputDir on fs
func NewArtifactWriter(fs afero.Fs, outputDir string, f *TypeORMFormatter) *ArtifactWriter {
	return &ArtifactWriter{
		Fs:        fs,
		OutputDir: outputDir,
		Formatter: f,
	}
}

// Write renders d and stores it as <timestamp>-<PascalCaseTable>.ts.
// It returns the path of the created file. The output directory must already
// exist and an existing artifact is never overwritten.
func (w *ArtifactWriter) Write(d *migration.Descriptor) (string, error) {
	ok, err := afero.DirExists(w.Fs, w.OutputDir)
	if err != nil {
		return "", fmt.Errorf("failed to stat output directory: %w", err)
	}
	if !ok {
		return "", fmt.Errorf("output directory %s does not exist", w.OutputDir)
	}

	filename := filepath.Join(w.OutputDir, migration.FileName(d.TableName, d.Timestamp, w.Formatter.Extension()))

	exists, err := afero.Exists(w.Fs, filename)
	if err != nil {
		return "", fmt.Errorf("failed to stat %s: %w", filename, err)
	}
	if exists {
		return "", fmt.Errorf("refusing to overwrite %s", filename)
	}

	var buf bytes.Buffer
	if err := w.Formatter.Format(&buf, d); err != nil {
		return "", err
	}

	if err := afero.WriteFile(w.Fs, filename, buf.Bytes(), 0644); err != nil {
		return "", fmt.Errorf("failed to write %s: %w", filename, err)
	}

	return filename, nil
}
