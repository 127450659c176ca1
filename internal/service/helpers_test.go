package service

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"Faran/internal/config"
	"Faran/internal/model"
	"Faran/internal/pkg"
	rrepo "Faran/internal/repository/redis"
	"Faran/internal/repository/store"
	"Faran/internal/storage"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type testEnv struct {
	db      *gorm.DB
	mr      *miniredis.Miniredis
	dir     string
	files   *storage.LocalStorage
	logHook *test.Hook

	users   *UserService
	follows *FollowService
	feed    *FeedService
	profile *ProfileService
	search  *SearchService
	uploads *UploadService
}

// stubEmails 只做最基本的格式检查，不查 DNS
type stubEmails struct{}

func (stubEmails) Validate(_ context.Context, email string) (string, error) {
	email = strings.TrimSpace(email)
	at := strings.LastIndex(email, "@")
	if at <= 0 || at == len(email)-1 {
		return "", pkg.ErrInvalidEmail
	}
	return email[:at] + "@" + strings.ToLower(email[at+1:]), nil
}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := "file:" + uuid.NewString() + "?mode=memory&cache=shared"
	db, err := store.Open(config.DatabaseConfig{Driver: "sqlite", DSN: dsn}, logger.Discard)
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, store.Migrate(db))
	return db
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	db := newTestDB(t)

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	dir := t.TempDir()
	files, err := storage.NewLocalStorage(dir)
	require.NoError(t, err)

	hasher, err := pkg.NewPasswordHasher(pkg.AlgoBcrypt, bcrypt.MinCost)
	require.NoError(t, err)
	tokens := pkg.NewTokenIssuer("access-secret", "refresh-secret", 30*time.Minute, 24*time.Hour)

	log, hook := test.NewNullLogger()
	env := &testEnv{db: db, mr: mr, dir: dir, files: files, logHook: hook}
	env.users = NewUserService(db, rrepo.NewSessionRepository(rdb, 24*time.Hour), tokens, hasher, stubEmails{}, files, log)
	env.follows = NewFollowService(db)
	env.feed = NewFeedService(db)
	env.profile = NewProfileService(db, env.follows)
	env.search = NewSearchService(db)
	env.uploads = NewUploadService(db, files, log)
	return env
}

func (e *testEnv) register(t *testing.T, username string) uint64 {
	t.Helper()
	id, err := e.users.Register(context.Background(), RegisterInput{
		Username:        username,
		Email:           username + "@example.com",
		Password:        "pw-" + username,
		ConfirmPassword: "pw-" + username,
	})
	require.NoError(t, err)
	return id
}

func (e *testEnv) post(t *testing.T, uploaderID uint64, caption string, at time.Time) {
	t.Helper()
	require.NoError(t, (&store.UploadRepository{DB: e.db}).Create(context.Background(), &model.Upload{
		Caption:    caption,
		Picture:    caption + ".png",
		UploaderID: uploaderID,
		CreatedAt:  at,
	}))
}

// failingStorage Save 总是失败
type failingStorage struct{ storage.Storage }

func (failingStorage) Save(context.Context, string, io.Reader) error {
	return errors.New("disk full")
}
