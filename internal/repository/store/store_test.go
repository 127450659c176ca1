package store

import (
	"context"
	"testing"
	"time"

	"Faran/internal/config"
	"Faran/internal/model"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := "file:" + uuid.NewString() + "?mode=memory&cache=shared"
	db, err := Open(config.DatabaseConfig{Driver: "sqlite", DSN: dsn}, logger.Discard)
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, Migrate(db))
	return db
}

func mustUser(t *testing.T, db *gorm.DB, name string) *model.User {
	t.Helper()
	u := &model.User{Username: name, Email: name + "@example.com", Password: "x", Avatar: model.DefaultAvatar}
	require.NoError(t, (&UserRepository{DB: db}).Create(context.Background(), u))
	return u
}

func TestOpen_UnknownDriver(t *testing.T) {
	_, err := Open(config.DatabaseConfig{Driver: "oracle", DSN: "x"}, nil)
	assert.Error(t, err)
}

func TestUserRepository_UniqueUsername(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	mustUser(t, db, "alice")

	dup := &model.User{Username: "alice", Email: "other@example.com", Password: "x"}
	err := (&UserRepository{DB: db}).Create(ctx, dup)
	assert.ErrorIs(t, err, gorm.ErrDuplicatedKey)
}

func TestUserRepository_FindConflicts(t *testing.T) {
	db := newTestDB(t)
	repo := &UserRepository{DB: db}
	ctx := context.Background()
	mustUser(t, db, "alice")
	mustUser(t, db, "bob")

	users, err := repo.FindConflicts(ctx, "alice", "bob@example.com")
	require.NoError(t, err)
	assert.Len(t, users, 2)

	users, err = repo.FindConflicts(ctx, "carol", "carol@example.com")
	require.NoError(t, err)
	assert.Empty(t, users)
}

func TestFollowRepository_FollowUnfollow(t *testing.T) {
	db := newTestDB(t)
	repo := &FollowRepository{DB: db}
	ctx := context.Background()
	a := mustUser(t, db, "alice")
	b := mustUser(t, db, "bob")

	changed, err := repo.Follow(ctx, a.ID, b.ID)
	require.NoError(t, err)
	assert.True(t, changed)

	changed, err = repo.Follow(ctx, a.ID, b.ID)
	require.NoError(t, err)
	assert.False(t, changed)

	ok, err := repo.IsFollowing(ctx, a.ID, b.ID)
	require.NoError(t, err)
	assert.True(t, ok)
	ok, err = repo.IsFollowing(ctx, b.ID, a.ID)
	require.NoError(t, err)
	assert.False(t, ok)

	changed, err = repo.Unfollow(ctx, a.ID, b.ID)
	require.NoError(t, err)
	assert.True(t, changed)

	changed, err = repo.Unfollow(ctx, a.ID, b.ID)
	require.NoError(t, err)
	assert.False(t, changed)

	// follow + unfollow 各写一条事件
	pending, err := (&OutboxRepository{DB: db}).ListPending(ctx, 10, 3)
	require.NoError(t, err)
	require.Len(t, pending, 2)
	assert.Equal(t, "follow", pending[0].EventType)
	assert.Equal(t, "unfollow", pending[1].EventType)
}

func TestFollowRepository_Listing(t *testing.T) {
	db := newTestDB(t)
	repo := &FollowRepository{DB: db}
	ctx := context.Background()
	a := mustUser(t, db, "alice")
	b := mustUser(t, db, "bob")
	c := mustUser(t, db, "carol")

	for _, pair := range [][2]uint64{{c.ID, a.ID}, {b.ID, a.ID}, {a.ID, b.ID}} {
		_, err := repo.Follow(ctx, pair[0], pair[1])
		require.NoError(t, err)
	}

	followers, err := repo.ListFollowerNames(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"bob", "carol"}, followers)

	followings, err := repo.ListFollowingNames(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"bob"}, followings)

	ids, err := repo.FollowingIDs(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, []uint64{b.ID}, ids)

	n, err := repo.CountFollowers(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
	n, err = repo.CountFollowings(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}

func TestOutboxRepository_RetryAndSuccess(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	a := mustUser(t, db, "alice")
	b := mustUser(t, db, "bob")
	_, err := (&FollowRepository{DB: db}).Follow(ctx, a.ID, b.ID)
	require.NoError(t, err)

	outbox := &OutboxRepository{DB: db}
	rows, err := outbox.ListPending(ctx, 10, 1)
	require.NoError(t, err)
	require.Len(t, rows, 1)

	require.NoError(t, outbox.RetryUpdate(ctx, rows[0].ID))
	// 已达重试上限
	rows, err = outbox.ListPending(ctx, 10, 1)
	require.NoError(t, err)
	assert.Empty(t, rows)

	rows, err = outbox.ListPending(ctx, 10, 5)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	require.NoError(t, outbox.SuccessUpdate(ctx, rows[0].ID))

	rows, err = outbox.ListPending(ctx, 10, 5)
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestUploadRepository_FeedOrdering(t *testing.T) {
	db := newTestDB(t)
	repo := &UploadRepository{DB: db}
	ctx := context.Background()
	a := mustUser(t, db, "alice")
	b := mustUser(t, db, "bob")
	c := mustUser(t, db, "carol")

	base := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	// 两条同一时间的帖子按 id 倒序
	posts := []*model.Upload{
		{Caption: "a1", Picture: "a1.png", UploaderID: a.ID, CreatedAt: base},
		{Caption: "b1", Picture: "b1.png", UploaderID: b.ID, CreatedAt: base.Add(time.Hour)},
		{Caption: "b2", Picture: "b2.png", UploaderID: b.ID, CreatedAt: base.Add(time.Hour)},
		{Caption: "c1", Picture: "c1.png", UploaderID: c.ID, CreatedAt: base.Add(2 * time.Hour)},
	}
	for _, p := range posts {
		require.NoError(t, repo.Create(ctx, p))
	}

	rows, err := repo.ListByUploaders(ctx, []uint64{a.ID, b.ID}, 5)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"b2", "b1", "a1"}, []string{rows[0].Caption, rows[1].Caption, rows[2].Caption})
	assert.Equal(t, "bob", rows[0].Username)
	assert.Equal(t, model.DefaultAvatar, rows[0].Avatar)
	assert.True(t, rows[0].CreationDate.Equal(base.Add(time.Hour)))

	rows, err = repo.ListByUploaders(ctx, []uint64{a.ID, b.ID}, 1)
	require.NoError(t, err)
	assert.Len(t, rows, 1)

	rows, err = repo.ListByUploaders(ctx, nil, 5)
	require.NoError(t, err)
	assert.Empty(t, rows)

	list, err := repo.ListByUploader(ctx, b.ID)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "b2", list[0].Caption)

	n, err := repo.CountByUploader(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
}

func TestUserRepository_SearchByPrefix(t *testing.T) {
	db := newTestDB(t)
	repo := &UserRepository{DB: db}
	ctx := context.Background()
	for _, name := range []string{"alice", "albert", "bob"} {
		mustUser(t, db, name)
	}

	users, err := repo.SearchByPrefix(ctx, "al")
	require.NoError(t, err)
	require.Len(t, users, 2)
	assert.Equal(t, "alice", users[0].Username)
	assert.Equal(t, "albert", users[1].Username)
}
