package store

import (
	"context"
	"time"

	"Faran/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type UploadRepository struct {
	DB *gorm.DB
}

// FeedRow 帖子与作者信息的联表结果
type FeedRow struct {
	UploadID     uint64
	Avatar       string
	Username     string
	Caption      string
	Picture      string
	CreationDate time.Time
}

func (r *UploadRepository) Create(ctx context.Context, upload *model.Upload) error {
	return r.DB.WithContext(ctx).Omit(clause.Associations).Create(upload).Error
}

// ListByUploaders 指定作者集合内最新的 limit 条帖子，时间相同按 id 倒序
func (r *UploadRepository) ListByUploaders(ctx context.Context, uploaderIDs []uint64, limit int) ([]FeedRow, error) {
	var rows []FeedRow
	if len(uploaderIDs) == 0 {
		return rows, nil
	}
	err := r.DB.WithContext(ctx).
		Table("uploads").
		Select("uploads.upload_id, users.avatar, users.username, uploads.caption, uploads.picture, uploads.creation_date").
		Joins("JOIN users ON users.user_id = uploads.uploader_id").
		Where("uploads.uploader_id IN ?", uploaderIDs).
		Order("uploads.creation_date DESC").
		Order("uploads.upload_id DESC").
		Limit(limit).
		Scan(&rows).Error
	return rows, err
}

// ListByUploader 作者的全部帖子，不分页
func (r *UploadRepository) ListByUploader(ctx context.Context, uploaderID uint64) ([]model.Upload, error) {
	var list []model.Upload
	err := r.DB.WithContext(ctx).
		Where("uploader_id = ?", uploaderID).
		Order("creation_date DESC").
		Order("upload_id DESC").
		Find(&list).Error
	return list, err
}

func (r *UploadRepository) CountByUploader(ctx context.Context, uploaderID uint64) (int64, error) {
	var n int64
	err := r.DB.WithContext(ctx).Model(&model.Upload{}).
		Where("uploader_id = ?", uploaderID).
		Count(&n).Error
	return n, err
}
