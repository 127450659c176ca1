package model

import "time"

// Follow 有向边：FollowerID 关注 FollowingID，(follower_id, following_id) 为联合主键
type Follow struct {
	FollowerID  uint64 `gorm:"primaryKey;autoIncrement:false"`
	FollowingID uint64 `gorm:"primaryKey;autoIncrement:false;index:idx_following_id"`
	Follower    User   `gorm:"foreignKey:FollowerID;references:ID;constraint:OnDelete:CASCADE"`
	Following   User   `gorm:"foreignKey:FollowingID;references:ID;constraint:OnDelete:CASCADE"`
}

func (Follow) TableName() string {
	return "follows"
}

const (
	OutboxPending int8 = 0
	OutboxSent    int8 = 1
	OutboxFailed  int8 = 2
)

// SocialOutbox 关注事件表，与关注关系在同一事务内写入
type SocialOutbox struct {
	ID        uint64 `gorm:"primaryKey"`
	EventType string `gorm:"size:16;not null"` // follow / unfollow
	Follower  uint64 `gorm:"not null"`
	Following uint64 `gorm:"not null"`
	Payload   string `gorm:"type:text;not null"`
	Status    int8   `gorm:"not null;default:0;index"`
	Retry     int    `gorm:"not null;default:0"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (SocialOutbox) TableName() string { return "social_outbox" }
