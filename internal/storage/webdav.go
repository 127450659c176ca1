package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path"
	"strings"
	"time"

	"Faran/internal/config"

	"github.com/studio-b12/gowebdav"
)

type WebDAVStorage struct {
	client   *gowebdav.Client
	rootPath string
}

func NewWebDAVStorage(cfg config.WebDAVConfig, timeout time.Duration) (*WebDAVStorage, error) {
	if cfg.URL == "" {
		return nil, fmt.Errorf("webdav URL is required")
	}
	rootPath := strings.Trim(cfg.RootPath, "/")
	if rootPath != "" {
		rootPath = "/" + rootPath
	}

	client := gowebdav.NewClient(cfg.URL, cfg.Username, cfg.Password)
	if timeout > 0 {
		client.SetTimeout(timeout)
	}
	if err := client.Connect(); err != nil {
		return nil, fmt.Errorf("webdav connection test failed: %w", err)
	}

	s := &WebDAVStorage{client: client, rootPath: rootPath}
	for _, sub := range []string{AvatarDir, PostDir} {
		if err := client.MkdirAll(s.fullPath(sub), os.FileMode(0o755)); err != nil {
			return nil, fmt.Errorf("failed to create directory %s: %w", sub, err)
		}
	}
	return s, nil
}

func (s *WebDAVStorage) fullPath(storagePath string) string {
	storagePath = strings.TrimLeft(storagePath, "/")
	if s.rootPath != "" {
		return s.rootPath + "/" + storagePath
	}
	return "/" + storagePath
}

// gowebdav 不支持 context，调用放到 goroutine 中等待
func (s *WebDAVStorage) run(ctx context.Context, fn func() error) error {
	done := make(chan error, 1)
	go func() { done <- fn() }()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case err := <-done:
		return err
	}
}

func (s *WebDAVStorage) Save(ctx context.Context, storagePath string, file io.Reader) error {
	if !IsValidStoragePath(storagePath) {
		return fmt.Errorf("invalid storage path: %s", storagePath)
	}
	full := s.fullPath(storagePath)
	data, err := io.ReadAll(file)
	if err != nil {
		return fmt.Errorf("failed to read file content: %w", err)
	}
	err = s.run(ctx, func() error {
		if err := s.client.MkdirAll(path.Dir(full), os.FileMode(0o755)); err != nil {
			return err
		}
		return s.client.Write(full, data, os.FileMode(0o644))
	})
	if err != nil {
		return fmt.Errorf("failed to write %s to webdav: %w", storagePath, err)
	}
	return nil
}

func (s *WebDAVStorage) Delete(ctx context.Context, storagePath string) error {
	if !IsValidStoragePath(storagePath) {
		return fmt.Errorf("invalid storage path: %s", storagePath)
	}
	if err := s.run(ctx, func() error { return s.client.Remove(s.fullPath(storagePath)) }); err != nil {
		return fmt.Errorf("failed to delete %s from webdav: %w", storagePath, err)
	}
	return nil
}

func (s *WebDAVStorage) Name() string { return "webdav" }
