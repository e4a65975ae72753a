package preview

import (
	"fmt"
	"image"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/disintegration/imaging"
	"github.com/sirupsen/logrus"
)

// Image 是一张已生成、可显示的预览图
type Image struct {
	ID        uint64
	Path      string
	Width     int
	Height    int
	CreatedAt time.Time
}

// StoreError 预览图存储错误
type StoreError struct {
	Operation string
	Path      string
	Err       error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("preview store error during %s on %s: %v", e.Operation, e.Path, e.Err)
}

func (e *StoreError) Unwrap() error {
	return e.Err
}

// Store 管理本地生成的预览图文件。Create 可以在任意 goroutine 调用
type Store struct {
	dir     string
	ownsDir bool
	mu      sync.Mutex
	nextID  uint64
	live    map[uint64]*Image
	closed  bool
}

// NewStore 创建存储目录；dir 为空时使用临时目录，Close 时一并删除
func NewStore(dir string) (*Store, error) {
	owns := false
	if dir == "" {
		tmp, err := os.MkdirTemp("", "folio-preview-*")
		if err != nil {
			return nil, &StoreError{Operation: "create", Path: os.TempDir(), Err: err}
		}
		dir, owns = tmp, true
	} else if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, &StoreError{Operation: "create", Path: dir, Err: err}
	}

	return &Store{dir: dir, ownsDir: owns, live: make(map[uint64]*Image)}, nil
}

// Dir 返回存储目录
func (s *Store) Dir() string {
	return s.dir
}

// Create 把图片编码成 PNG 写入存储目录并返回句柄
func (s *Store) Create(img image.Image) (*Image, error) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil, &StoreError{Operation: "create", Path: s.dir, Err: os.ErrClosed}
	}
	s.nextID++
	id := s.nextID
	s.mu.Unlock()

	path := filepath.Join(s.dir, fmt.Sprintf("preview-%d.png", id))
	if err := imaging.Save(img, path); err != nil {
		return nil, &StoreError{Operation: "write", Path: path, Err: err}
	}

	bounds := img.Bounds()
	handle := &Image{
		ID:        id,
		Path:      path,
		Width:     bounds.Dx(),
		Height:    bounds.Dy(),
		CreatedAt: time.Now(),
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		os.Remove(path)
		return nil, &StoreError{Operation: "create", Path: path, Err: os.ErrClosed}
	}
	s.live[id] = handle
	return handle, nil
}

// Release 删除图片文件；重复释放或 nil 都是安全的
func (s *Store) Release(img *Image) {
	if img == nil {
		return
	}

	s.mu.Lock()
	_, ok := s.live[img.ID]
	delete(s.live, img.ID)
	s.mu.Unlock()

	if !ok {
		return
	}
	if err := os.Remove(img.Path); err != nil && !os.IsNotExist(err) {
		logrus.Warnf("Failed to remove preview image %s: %v", img.Path, err)
	}
}

// Live 返回尚未释放的图片数量
func (s *Store) Live() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.live)
}

// Close 释放所有图片
func (s *Store) Close() error {
	s.mu.Lock()
	s.closed = true
	remaining := make([]*Image, 0, len(s.live))
	for _, img := range s.live {
		remaining = append(remaining, img)
	}
	s.mu.Unlock()

	for _, img := range remaining {
		s.Release(img)
	}

	if s.ownsDir {
		if err := os.RemoveAll(s.dir); err != nil {
			return &StoreError{Operation: "close", Path: s.dir, Err: err}
		}
	}
	return nil
}
