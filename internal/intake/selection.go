// Package intake turns picker and drop events into the single active file selection.
package intake

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/HaiFongPan/folio-cli/internal/utils"
)

// Source identifies where a file came from
type Source int

const (
	SourcePicker Source = iota
	SourceDrop
)

func (s Source) String() string {
	if s == SourceDrop {
		return "drop"
	}
	return "picker"
}

// FileSelection is the one file the session works on
type FileSelection struct {
	ID       uint64
	Path     string
	Name     string
	Size     int64
	MIMEType string
	Source   Source
}

// IsPDF reports whether the declared type is application/pdf
func (f *FileSelection) IsPDF() bool {
	return f != nil && utils.IsPDF(f.MIMEType)
}

// SizeMB returns the size in MiB, the unit every user-facing message uses
func (f *FileSelection) SizeMB() float64 {
	return float64(f.Size) / (1024 * 1024)
}

// Stat builds a selection from a path on disk
func Stat(path string, source Source) (*FileSelection, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolve %s: %w", path, err)
	}

	info, err := os.Stat(abs)
	if err != nil {
		return nil, fmt.Errorf("stat %s: %w", path, err)
	}
	if !info.Mode().IsRegular() {
		return nil, fmt.Errorf("%s is not a regular file", path)
	}

	contentType, err := detect(abs)
	if err != nil {
		return nil, fmt.Errorf("detect type of %s: %w", path, err)
	}

	return &FileSelection{
		Path:     abs,
		Name:     info.Name(),
		Size:     info.Size(),
		MIMEType: contentType,
		Source:   source,
	}, nil
}

func detect(path string) (string, error) {
	file, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer file.Close()
	return utils.DetectContentType(path, file)
}
