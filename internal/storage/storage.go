package storage

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"Faran/internal/config"
)

// 两个子目录：头像与帖子图片
const (
	AvatarDir = "avatars"
	PostDir   = "posts"
)

// Storage 按相对路径保存/删除文件，路径形如 posts/<name>.png
type Storage interface {
	Save(ctx context.Context, storagePath string, file io.Reader) error
	Delete(ctx context.Context, storagePath string) error
	Name() string
}

func New(cfg config.StorageConfig) (Storage, error) {
	switch cfg.Type {
	case "local":
		return NewLocalStorage(cfg.Local.Path)
	case "minio":
		return NewMinioStorage(cfg.Minio, cfg.Timeout)
	case "webdav":
		return NewWebDAVStorage(cfg.WebDAV, cfg.Timeout)
	default:
		return nil, fmt.Errorf("invalid storage type: %s", cfg.Type)
	}
}

func AvatarPath(name string) string { return AvatarDir + "/" + name }

func PostPath(name string) string { return PostDir + "/" + name }

// IsValidStoragePath 校验存储路径是否合法
func IsValidStoragePath(path string) bool {
	if path == "" || filepath.IsAbs(path) || strings.HasPrefix(path, "/") {
		return false
	}
	if strings.Contains(path, "..") {
		return false
	}
	// 只允许安全字符
	for _, r := range path {
		if (r < 'a' || r > 'z') &&
			(r < 'A' || r > 'Z') &&
			(r < '0' || r > '9') &&
			r != '-' && r != '_' && r != '.' && r != '/' {
			return false
		}
	}
	return true
}
