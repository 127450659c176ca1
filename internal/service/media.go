package service

import (
	"path/filepath"
	"strings"
)

var allowedExtensions = map[string]bool{
	".png":  true,
	".jpg":  true,
	".jpeg": true,
}

// imageExt 返回小写扩展名；不在白名单内时报 ErrUnsupportedMedia
func imageExt(fileName string) (string, error) {
	ext := strings.ToLower(filepath.Ext(fileName))
	if !allowedExtensions[ext] {
		return "", wrap(ErrUnsupportedMedia, "file %q", fileName)
	}
	return ext, nil
}
