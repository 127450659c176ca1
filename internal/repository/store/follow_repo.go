package store

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"Faran/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type FollowRepository struct {
	DB *gorm.DB
}

type OutboxRepository struct {
	DB *gorm.DB
}

// Follow 插入关注边并写 outbox；边已存在时返回 changed=false
func (r *FollowRepository) Follow(ctx context.Context, followerID, followingID uint64) (bool, error) {
	var changed bool
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var n int64
		if err := tx.Model(&model.Follow{}).
			Where("follower_id = ? AND following_id = ?", followerID, followingID).
			Count(&n).Error; err != nil {
			return err
		}
		if n > 0 {
			return nil
		}
		edge := &model.Follow{FollowerID: followerID, FollowingID: followingID}
		if err := tx.Omit(clause.Associations).Create(edge).Error; err != nil {
			return err
		}
		changed = true
		return r.insertOutbox(tx, "follow", followerID, followingID)
	})
	// 并发插入同一条边时由主键兜底
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return false, nil
	}
	return changed, err
}

// Unfollow 删除关注边并写 outbox；边不存在时返回 changed=false
func (r *FollowRepository) Unfollow(ctx context.Context, followerID, followingID uint64) (bool, error) {
	var changed bool
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Where("follower_id = ? AND following_id = ?", followerID, followingID).
			Delete(&model.Follow{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return nil
		}
		changed = true
		return r.insertOutbox(tx, "unfollow", followerID, followingID)
	})
	return changed, err
}

func (r *FollowRepository) IsFollowing(ctx context.Context, followerID, followingID uint64) (bool, error) {
	var n int64
	if err := r.DB.WithContext(ctx).
		Model(&model.Follow{}).
		Where("follower_id = ? AND following_id = ?", followerID, followingID).
		Count(&n).Error; err != nil {
		return false, err
	}
	return n > 0, nil
}

// FollowingIDs 用户关注的人的 id
func (r *FollowRepository) FollowingIDs(ctx context.Context, userID uint64) ([]uint64, error) {
	var ids []uint64
	err := r.DB.WithContext(ctx).Model(&model.Follow{}).
		Where("follower_id = ?", userID).
		Pluck("following_id", &ids).Error
	return ids, err
}

// ListFollowerNames 粉丝用户名，按用户名升序
func (r *FollowRepository) ListFollowerNames(ctx context.Context, userID uint64) ([]string, error) {
	var names []string
	err := r.DB.WithContext(ctx).Table("follows").
		Joins("JOIN users ON users.user_id = follows.follower_id").
		Where("follows.following_id = ?", userID).
		Order("users.username ASC").
		Pluck("users.username", &names).Error
	return names, err
}

// ListFollowingNames 关注的人的用户名，按用户名升序
func (r *FollowRepository) ListFollowingNames(ctx context.Context, userID uint64) ([]string, error) {
	var names []string
	err := r.DB.WithContext(ctx).Table("follows").
		Joins("JOIN users ON users.user_id = follows.following_id").
		Where("follows.follower_id = ?", userID).
		Order("users.username ASC").
		Pluck("users.username", &names).Error
	return names, err
}

func (r *FollowRepository) CountFollowers(ctx context.Context, userID uint64) (int64, error) {
	var n int64
	err := r.DB.WithContext(ctx).Model(&model.Follow{}).
		Where("following_id = ?", userID).
		Count(&n).Error
	return n, err
}

func (r *FollowRepository) CountFollowings(ctx context.Context, userID uint64) (int64, error) {
	var n int64
	err := r.DB.WithContext(ctx).Model(&model.Follow{}).
		Where("follower_id = ?", userID).
		Count(&n).Error
	return n, err
}

// 插入outbox事件表
func (r *FollowRepository) insertOutbox(tx *gorm.DB, event string, follower, following uint64) error {
	payload, err := json.Marshal(map[string]any{
		"event":      event,
		"event_time": time.Now().UTC().Format(time.RFC3339Nano),
		"follower":   follower,
		"following":  following,
	})
	if err != nil {
		return err
	}
	ob := &model.SocialOutbox{
		EventType: event,
		Follower:  follower,
		Following: following,
		Payload:   string(payload),
		Status:    model.OutboxPending,
	}
	return tx.Create(ob).Error
}

// ListPending 待投递或投递失败且未超过重试上限的事件
func (r *OutboxRepository) ListPending(ctx context.Context, batchSize, maxRetry int) ([]model.SocialOutbox, error) {
	var list []model.SocialOutbox
	if err := r.DB.WithContext(ctx).
		Where("status IN ? AND retry < ?", []int{int(model.OutboxPending), int(model.OutboxFailed)}, maxRetry).
		Order("id ASC").
		Limit(batchSize).
		Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

// RetryUpdate outbox记录消息失败重试
func (r *OutboxRepository) RetryUpdate(ctx context.Context, id uint64) error {
	return r.DB.WithContext(ctx).Model(&model.SocialOutbox{}).Where("id = ?", id).
		Updates(map[string]any{"status": model.OutboxFailed, "retry": gorm.Expr("retry + 1")}).Error
}

// SuccessUpdate outbox成功记录消息更新
func (r *OutboxRepository) SuccessUpdate(ctx context.Context, id uint64) error {
	return r.DB.WithContext(ctx).Model(&model.SocialOutbox{}).Where("id = ?", id).
		Update("status", model.OutboxSent).Error
}
