// Package workspace manages the per-job work directory lifecycle:
// /tmp/code_manager/<uuid>/ holding the source file, input.txt,
// output.txt, time.txt, and any compiled artifact (spec.md 6).
package workspace

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/google/uuid"
)

// Layout carries the per-job directory path and its constituent file
// paths.
type Layout struct {
	Dir        string
	SourceFile string
	InputFile  string
	OutputFile string
	TimeFile   string
}

// New creates a fresh work directory under base, named with a UUID, and
// returns its Layout. sourceFilename is the processor's canonical source
// filename (e.g. "main.cpp").
func New(base, sourceFilename string) (Layout, error) {
	dir := filepath.Join(base, uuid.NewString())
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return Layout{}, err
	}
	return Layout{
		Dir:        dir,
		SourceFile: filepath.Join(dir, sourceFilename),
		InputFile:  filepath.Join(dir, "input.txt"),
		OutputFile: filepath.Join(dir, "output.txt"),
		TimeFile:   filepath.Join(dir, "time.txt"),
	}, nil
}

// Remove deletes the work directory and everything under it. Best-effort:
// callers should log but not fail the job on error.
func (l Layout) Remove() error {
	if l.Dir == "" {
		return nil
	}
	return os.RemoveAll(l.Dir)
}

// WriteSource writes the source code to SourceFile.
func (l Layout) WriteSource(code string) error {
	return os.WriteFile(l.SourceFile, []byte(code), 0o644)
}

// WriteInput writes stdin content to InputFile.
func (l Layout) WriteInput(input string) error {
	return os.WriteFile(l.InputFile, []byte(input), 0o644)
}

// ReadOutput reads the captured stdout from OutputFile.
func (l Layout) ReadOutput() (string, error) {
	b, err := os.ReadFile(l.OutputFile)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// ReadElapsedSeconds parses the floating-point wall-time TimeFile emits.
func (l Layout) ReadElapsedSeconds() (float64, error) {
	b, err := os.ReadFile(l.TimeFile)
	if err != nil {
		return 0, err
	}
	return strconv.ParseFloat(strings.TrimSpace(string(b)), 64)
}
