package service

import (
	"context"
	"fmt"
	"io"
	"strings"

	"Faran/internal/model"
	"Faran/internal/repository/store"
	"Faran/internal/storage"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

type UploadService struct {
	repo  *store.UploadRepository
	files storage.Storage
	log   logrus.FieldLogger
}

func NewUploadService(db *gorm.DB, files storage.Storage, log logrus.FieldLogger) *UploadService {
	return &UploadService{
		repo:  &store.UploadRepository{DB: db},
		files: files,
		log:   log,
	}
}

// CreatePost 先落文件再写记录，写记录失败时删除文件
func (s *UploadService) CreatePost(ctx context.Context, userID uint64, caption, fileName string, picture io.Reader) (*model.Upload, error) {
	caption = strings.TrimSpace(caption)
	if caption == "" || picture == nil || fileName == "" {
		return nil, ErrMissingField
	}
	ext, err := imageExt(fileName)
	if err != nil {
		return nil, err
	}

	name := strings.ReplaceAll(uuid.NewString(), "-", "") + ext
	if err := s.files.Save(ctx, storage.PostPath(name), picture); err != nil {
		return nil, fmt.Errorf("save picture: %w", err)
	}

	upload := &model.Upload{
		Caption:    caption,
		Picture:    name,
		UploaderID: userID,
	}
	if err := s.repo.Create(ctx, upload); err != nil {
		if derr := s.files.Delete(context.WithoutCancel(ctx), storage.PostPath(name)); derr != nil {
			s.log.WithError(derr).WithField("picture", name).Warn("remove orphan picture failed")
		}
		return nil, err
	}
	return upload, nil
}
