package utils

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"
)

// ResultSaver writes processed documents into a local directory
type ResultSaver struct {
	dir string
}

// NewResultSaver creates a saver rooted at dir
func NewResultSaver(dir string) *ResultSaver {
	return &ResultSaver{dir: dir}
}

// Dir returns the target directory
func (s *ResultSaver) Dir() string {
	return s.dir
}

// Save copies body into dir/name and returns the final path.
// An existing file is never overwritten: "name (1).pdf" is used instead.
func (s *ResultSaver) Save(ctx context.Context, name string, body io.Reader) (string, error) {
	if err := os.MkdirAll(s.dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}

	localPath := s.resolveFileNameConflict(filepath.Join(s.dir, filepath.Base(name)))

	file, err := os.OpenFile(localPath, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
	if err != nil {
		return "", fmt.Errorf("failed to create local file: %w", err)
	}

	_, err = io.Copy(file, &contextReader{ctx: ctx, r: body})
	if closeErr := file.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		os.Remove(localPath)
		return "", fmt.Errorf("failed to write file content: %w", err)
	}

	logrus.Infof("Result saved to: %s", localPath)
	return localPath, nil
}

func (s *ResultSaver) resolveFileNameConflict(originalPath string) string {
	if _, err := os.Stat(originalPath); os.IsNotExist(err) {
		return originalPath
	}

	ext := filepath.Ext(originalPath)
	baseName := originalPath[:len(originalPath)-len(ext)]

	for i := 1; i < 1000; i++ {
		newPath := fmt.Sprintf("%s (%d)%s", baseName, i, ext)
		if _, err := os.Stat(newPath); os.IsNotExist(err) {
			return newPath
		}
	}

	// If we can't find a unique name after 999 attempts, use the pid
	return fmt.Sprintf("%s_%d%s", baseName, os.Getpid(), ext)
}

// contextReader stops a copy once ctx is done
type contextReader struct {
	ctx context.Context
	r   io.Reader
}

func (c *contextReader) Read(p []byte) (int, error) {
	if err := c.ctx.Err(); err != nil {
		return 0, err
	}
	return c.r.Read(p)
}
