package model

import "time"

// Upload 一条图片帖子，创建后不可修改
type Upload struct {
	ID         uint64    `gorm:"column:upload_id;primaryKey"`
	Caption    string    `gorm:"type:text;not null"`
	Picture    string    `gorm:"size:255;not null"`
	UploaderID uint64    `gorm:"not null;index:idx_uploader_time,priority:1"`
	Uploader   User      `gorm:"foreignKey:UploaderID;references:ID;constraint:OnDelete:CASCADE"`
	CreatedAt  time.Time `gorm:"column:creation_date;autoCreateTime;index:idx_uploader_time,priority:2"`
}
