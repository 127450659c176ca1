package model

import "time"

const (
	DefaultAvatar     = "default_avatar.jpg"
	MaxUsernameLength = 30
)

type User struct {
	ID        uint64    `gorm:"column:user_id;primaryKey"`
	Username  string    `gorm:"uniqueIndex;size:30;not null"`
	Password  string    `gorm:"size:255;not null"`
	Email     string    `gorm:"uniqueIndex;size:254;not null"`
	Avatar    string    `gorm:"size:255;not null;default:default_avatar.jpg"`
	CreatedAt time.Time `gorm:"column:creation_date;autoCreateTime"`
}

// AvatarOrDefault 兼容 avatar 为空的历史数据
func (u *User) AvatarOrDefault() string {
	if u.Avatar == "" {
		return DefaultAvatar
	}
	return u.Avatar
}
