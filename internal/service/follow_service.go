package service

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"Faran/internal/model"
	"Faran/internal/pkg"
	"Faran/internal/repository/store"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

type Relationship int

const (
	NotFollowing Relationship = iota
	Following
	FollowsBack
)

func (r Relationship) String() string {
	switch r {
	case Following:
		return "following"
	case FollowsBack:
		return "follows_back"
	default:
		return "not_following"
	}
}

type FollowService struct {
	users   *store.UserRepository
	follows *store.FollowRepository
}

func NewFollowService(db *gorm.DB) *FollowService {
	return &FollowService{
		users:   &store.UserRepository{DB: db},
		follows: &store.FollowRepository{DB: db},
	}
}

// lookupUser 用户名不区分大小写，统一按小写存储
func lookupUser(ctx context.Context, repo *store.UserRepository, username string) (*model.User, error) {
	name := normalizeUsername(username)
	if name == "" {
		return nil, wrap(ErrNotFound, "empty username")
	}
	user, err := repo.FindByUsername(ctx, name)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, wrap(ErrNotFound, "username %q", name)
	}
	if err != nil {
		return nil, err
	}
	return user, nil
}

func (s *FollowService) Follow(ctx context.Context, actorID uint64, targetUsername string) error {
	target, err := lookupUser(ctx, s.users, targetUsername)
	if err != nil {
		return err
	}
	if target.ID == actorID {
		return ErrSelfFollow
	}
	changed, err := s.follows.Follow(ctx, actorID, target.ID)
	if err != nil {
		return err
	}
	if !changed {
		return ErrAlreadyFollowing
	}
	return nil
}

func (s *FollowService) Unfollow(ctx context.Context, actorID uint64, targetUsername string) error {
	target, err := lookupUser(ctx, s.users, targetUsername)
	if err != nil {
		return err
	}
	if target.ID == actorID {
		return ErrSelfFollow
	}
	changed, err := s.follows.Unfollow(ctx, actorID, target.ID)
	if err != nil {
		return err
	}
	if !changed {
		return ErrNotFollowing
	}
	return nil
}

// ListFollowers 粉丝用户名，按用户名升序
func (s *FollowService) ListFollowers(ctx context.Context, username string) ([]string, error) {
	user, err := lookupUser(ctx, s.users, username)
	if err != nil {
		return nil, err
	}
	names, err := s.follows.ListFollowerNames(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	return nonNil(names), nil
}

// ListFollowings 关注的用户名，按用户名升序
func (s *FollowService) ListFollowings(ctx context.Context, username string) ([]string, error) {
	user, err := lookupUser(ctx, s.users, username)
	if err != nil {
		return nil, err
	}
	names, err := s.follows.ListFollowingNames(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	return nonNil(names), nil
}

// RelationshipState viewer 已关注 subject 优先于 subject 关注 viewer
func (s *FollowService) RelationshipState(ctx context.Context, viewerID, subjectID uint64) (Relationship, error) {
	following, err := s.follows.IsFollowing(ctx, viewerID, subjectID)
	if err != nil {
		return NotFollowing, err
	}
	if following {
		return Following, nil
	}
	followedBy, err := s.follows.IsFollowing(ctx, subjectID, viewerID)
	if err != nil {
		return NotFollowing, err
	}
	if followedBy {
		return FollowsBack, nil
	}
	return NotFollowing, nil
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}

// Sender 投递一条 outbox 事件
type Sender func(ctx context.Context, ob *model.SocialOutbox) error

// OutboxRelayer 定时把 social_outbox 中待发送的事件交给 Sender
type OutboxRelayer struct {
	repo      *store.OutboxRepository
	batchSize int
	interval  time.Duration
	maxRetry  int
	sender    Sender
	log       logrus.FieldLogger
}

const defaultOutboxMaxRetry = 10

func NewOutboxRelayer(db *gorm.DB, sender Sender, interval time.Duration, batchSize int, log logrus.FieldLogger) *OutboxRelayer {
	return &OutboxRelayer{
		repo:      &store.OutboxRepository{DB: db},
		batchSize: batchSize,
		interval:  interval,
		maxRetry:  defaultOutboxMaxRetry,
		sender:    sender,
		log:       log,
	}
}

// Run 阻塞直到 ctx 取消
func (r *OutboxRelayer) Run(ctx context.Context) {
	t := time.NewTicker(r.interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			r.DrainOnce(ctx)
		}
	}
}

// DrainOnce 处理一批事件，返回成功投递的条数
func (r *OutboxRelayer) DrainOnce(ctx context.Context) int {
	rows, err := r.repo.ListPending(ctx, r.batchSize, r.maxRetry)
	if err != nil {
		r.log.WithError(err).Error("outbox query failed")
		return 0
	}
	sent := 0
	for i := range rows {
		ob := rows[i]
		if err := r.sender(ctx, &ob); err != nil {
			r.log.WithError(err).WithFields(logrus.Fields{
				"outbox_id": ob.ID,
				"retry":     ob.Retry,
			}).Warn("outbox send failed")
			if uerr := r.repo.RetryUpdate(ctx, ob.ID); uerr != nil {
				r.log.WithError(uerr).WithField("outbox_id", ob.ID).Error("outbox retry update failed")
			}
			continue
		}
		if uerr := r.repo.SuccessUpdate(ctx, ob.ID); uerr != nil {
			r.log.WithError(uerr).WithField("outbox_id", ob.ID).Error("outbox success update failed")
			continue
		}
		sent++
	}
	return sent
}

// LogSender 未配置 Kafka 时只记录日志
func LogSender(log logrus.FieldLogger) Sender {
	return func(_ context.Context, ob *model.SocialOutbox) error {
		log.WithFields(logrus.Fields{
			"event":     ob.EventType,
			"follower":  ob.Follower,
			"following": ob.Following,
		}).Info("outbox event")
		return nil
	}
}

type KafkaPublisher interface {
	Send(ctx context.Context, key string, value []byte) error
}

// KafkaSender 以 follower id 作 key，保证同一用户的事件有序
func KafkaSender(p KafkaPublisher) Sender {
	return func(ctx context.Context, ob *model.SocialOutbox) error {
		value := []byte(ob.Payload)
		if len(value) == 0 {
			var err error
			value, err = json.Marshal(ob)
			if err != nil {
				return err
			}
		}
		return p.Send(ctx, pkg.MakeKeyFromID(ob.Follower), value)
	}
}
