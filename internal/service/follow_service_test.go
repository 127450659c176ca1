package service

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"Faran/internal/model"
	"Faran/internal/repository/store"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFollowService_FollowUnfollow(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice := env.register(t, "alice")
	env.register(t, "bob")

	require.NoError(t, env.follows.Follow(ctx, alice, "bob"))
	assert.ErrorIs(t, env.follows.Follow(ctx, alice, "Bob"), ErrAlreadyFollowing)
	assert.ErrorIs(t, env.follows.Follow(ctx, alice, "alice"), ErrSelfFollow)
	assert.ErrorIs(t, env.follows.Follow(ctx, alice, "nobody"), ErrNotFound)

	require.NoError(t, env.follows.Unfollow(ctx, alice, "bob"))
	assert.ErrorIs(t, env.follows.Unfollow(ctx, alice, "bob"), ErrNotFollowing)
	assert.ErrorIs(t, env.follows.Unfollow(ctx, alice, "alice"), ErrSelfFollow)
	assert.ErrorIs(t, env.follows.Unfollow(ctx, alice, "nobody"), ErrNotFound)
}

func TestFollowService_Lists(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice := env.register(t, "alice")
	bob := env.register(t, "bob")
	carol := env.register(t, "carol")

	require.NoError(t, env.follows.Follow(ctx, carol, "alice"))
	require.NoError(t, env.follows.Follow(ctx, bob, "alice"))
	require.NoError(t, env.follows.Follow(ctx, alice, "carol"))

	followers, err := env.follows.ListFollowers(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, []string{"bob", "carol"}, followers)

	followings, err := env.follows.ListFollowings(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, []string{"carol"}, followings)

	followings, err = env.follows.ListFollowings(ctx, "carol")
	require.NoError(t, err)
	assert.Equal(t, []string{"alice"}, followings)

	// 空列表不是错误
	followers, err = env.follows.ListFollowers(ctx, "bob")
	require.NoError(t, err)
	assert.NotNil(t, followers)
	assert.Empty(t, followers)

	_, err = env.follows.ListFollowers(ctx, "nobody")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestFollowService_RelationshipState(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice := env.register(t, "alice")
	bob := env.register(t, "bob")

	rel, err := env.follows.RelationshipState(ctx, alice, bob)
	require.NoError(t, err)
	assert.Equal(t, NotFollowing, rel)

	require.NoError(t, env.follows.Follow(ctx, bob, "alice"))
	rel, err = env.follows.RelationshipState(ctx, alice, bob)
	require.NoError(t, err)
	assert.Equal(t, FollowsBack, rel)

	// 互相关注时 Following 优先
	require.NoError(t, env.follows.Follow(ctx, alice, "bob"))
	rel, err = env.follows.RelationshipState(ctx, alice, bob)
	require.NoError(t, err)
	assert.Equal(t, Following, rel)
	assert.Equal(t, "following", rel.String())
}

type recordingPublisher struct {
	keys   []string
	values [][]byte
	err    error
}

func (p *recordingPublisher) Send(_ context.Context, key string, value []byte) error {
	if p.err != nil {
		return p.err
	}
	p.keys = append(p.keys, key)
	p.values = append(p.values, value)
	return nil
}

func TestOutboxRelayer_DrainOnce(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice := env.register(t, "alice")
	env.register(t, "bob")
	require.NoError(t, env.follows.Follow(ctx, alice, "bob"))
	require.NoError(t, env.follows.Unfollow(ctx, alice, "bob"))

	pub := &recordingPublisher{err: errors.New("broker down")}
	log, hook := test.NewNullLogger()
	relayer := NewOutboxRelayer(env.db, KafkaSender(pub), 0, 10, log)

	assert.Equal(t, 0, relayer.DrainOnce(ctx))
	assert.NotEmpty(t, hook.AllEntries())

	rows, err := (&store.OutboxRepository{DB: env.db}).ListPending(ctx, 10, 10)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, model.OutboxFailed, rows[0].Status)
	assert.Equal(t, 1, rows[0].Retry)

	pub.err = nil
	assert.Equal(t, 2, relayer.DrainOnce(ctx))
	require.Len(t, pub.keys, 2)
	assert.Equal(t, "1", pub.keys[0])

	var event map[string]any
	require.NoError(t, json.Unmarshal(pub.values[0], &event))
	assert.Equal(t, "follow", event["event"])

	assert.Equal(t, 0, relayer.DrainOnce(ctx))
}

func TestLogSender(t *testing.T) {
	log, hook := test.NewNullLogger()
	err := LogSender(log)(context.Background(), &model.SocialOutbox{EventType: "follow", Follower: 1, Following: 2})
	require.NoError(t, err)
	require.Len(t, hook.AllEntries(), 1)
	assert.Equal(t, logrus.InfoLevel, hook.LastEntry().Level)
	assert.Equal(t, "follow", hook.LastEntry().Data["event"])
}
