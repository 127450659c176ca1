package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// LocalStorage 本地磁盘存储，同时由 /uploads 静态路由对外提供
type LocalStorage struct {
	absBasePath string
}

func NewLocalStorage(basePath string) (*LocalStorage, error) {
	absPath, err := filepath.Abs(basePath)
	if err != nil {
		return nil, fmt.Errorf("failed to get absolute path for '%s': %w", basePath, err)
	}
	for _, sub := range []string{AvatarDir, PostDir} {
		if err := os.MkdirAll(filepath.Join(absPath, sub), 0o755); err != nil {
			return nil, fmt.Errorf("failed to create local storage directory '%s': %w", absPath, err)
		}
	}
	return &LocalStorage{absBasePath: absPath + string(os.PathSeparator)}, nil
}

func (s *LocalStorage) resolve(storagePath string) (string, error) {
	if !IsValidStoragePath(storagePath) {
		return "", fmt.Errorf("invalid storage path: %s", storagePath)
	}
	full := filepath.Join(s.absBasePath, storagePath)
	if !strings.HasPrefix(full, s.absBasePath) {
		return "", fmt.Errorf("invalid file path, potential directory traversal: %s", storagePath)
	}
	return full, nil
}

func (s *LocalStorage) Save(ctx context.Context, storagePath string, file io.Reader) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	dstPath, err := s.resolve(storagePath)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(dstPath), 0o755); err != nil {
		return fmt.Errorf("failed to create directory for '%s': %w", storagePath, err)
	}

	dst, err := os.Create(dstPath)
	if err != nil {
		return fmt.Errorf("failed to create destination file '%s': %w", dstPath, err)
	}
	if _, err := io.Copy(dst, file); err != nil {
		_ = dst.Close()
		_ = os.Remove(dstPath)
		return fmt.Errorf("failed to copy file content to '%s': %w", dstPath, err)
	}
	if err := dst.Close(); err != nil {
		_ = os.Remove(dstPath)
		return fmt.Errorf("failed to close '%s': %w", dstPath, err)
	}
	return nil
}

// Delete 文件不存在时视为成功
func (s *LocalStorage) Delete(ctx context.Context, storagePath string) error {
	fullPath, err := s.resolve(storagePath)
	if err != nil {
		return err
	}
	if err := os.Remove(fullPath); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to delete local file '%s': %w", fullPath, err)
	}
	return nil
}

func (s *LocalStorage) Name() string { return "local" }

func (s *LocalStorage) BasePath() string { return s.absBasePath }
