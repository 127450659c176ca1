package store

import (
	"context"

	"Faran/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type UserRepository struct {
	DB *gorm.DB
}

func (r *UserRepository) Create(ctx context.Context, user *model.User) error {
	return r.DB.WithContext(ctx).Omit(clause.Associations).Create(user).Error
}

func (r *UserRepository) FindByUsername(ctx context.Context, username string) (*model.User, error) {
	var user model.User
	err := r.DB.WithContext(ctx).Where("username = ?", username).First(&user).Error
	return &user, err
}

func (r *UserRepository) FindByID(ctx context.Context, id uint64) (*model.User, error) {
	var user model.User
	err := r.DB.WithContext(ctx).First(&user, id).Error
	return &user, err
}

// FindConflicts 一次查询同时检查用户名和邮箱是否已被占用
func (r *UserRepository) FindConflicts(ctx context.Context, username, email string) ([]model.User, error) {
	var users []model.User
	err := r.DB.WithContext(ctx).
		Select("user_id", "username", "email").
		Where("username = ? OR email = ?", username, email).
		Find(&users).Error
	return users, err
}

func (r *UserRepository) UpdateAvatar(ctx context.Context, id uint64, avatar string) error {
	return r.DB.WithContext(ctx).Model(&model.User{}).
		Where("user_id = ?", id).
		Update("avatar", avatar).Error
}

// SearchByPrefix LIKE 只做粗筛：通配符和大小写不敏感的排序规则都只会多返回，精确前缀由调用方过滤
func (r *UserRepository) SearchByPrefix(ctx context.Context, prefix string) ([]model.User, error) {
	var users []model.User
	err := r.DB.WithContext(ctx).
		Select("user_id", "username", "avatar").
		Where("username LIKE ?", prefix+"%").
		Order("username DESC").
		Find(&users).Error
	return users, err
}
