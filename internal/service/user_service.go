package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"Faran/internal/model"
	"Faran/internal/pkg"
	"Faran/internal/repository/redis"
	"Faran/internal/repository/store"
	"Faran/internal/storage"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

type PasswordHasher interface {
	Hash(plain string) (string, error)
	Verify(plain, digest string) bool
}

type EmailValidator interface {
	Validate(ctx context.Context, email string) (string, error)
}

type SessionStore interface {
	Create(ctx context.Context, sessionID string, userID uint64) error
	Get(ctx context.Context, sessionID string) (uint64, error)
	Extend(ctx context.Context, sessionID string) error
	Delete(ctx context.Context, sessionID string) error
}

type UserService struct {
	db       *gorm.DB
	repo     *store.UserRepository
	sessions SessionStore
	tokens   *pkg.TokenIssuer
	hasher   PasswordHasher
	emails   EmailValidator
	files    storage.Storage
	log      logrus.FieldLogger
}

func NewUserService(db *gorm.DB, sessions SessionStore, tokens *pkg.TokenIssuer, hasher PasswordHasher,
	emails EmailValidator, files storage.Storage, log logrus.FieldLogger) *UserService {
	return &UserService{
		db:       db,
		repo:     &store.UserRepository{DB: db},
		sessions: sessions,
		tokens:   tokens,
		hasher:   hasher,
		emails:   emails,
		files:    files,
		log:      log,
	}
}

type RegisterInput struct {
	Username        string
	Email           string
	Password        string
	ConfirmPassword string
	// 可选头像
	AvatarName string
	Avatar     io.Reader
}

// Session 已登录请求的身份
type Session struct {
	UserID    uint64
	SessionID string
}

func normalizeUsername(username string) string {
	return strings.ToLower(strings.TrimSpace(username))
}

func (s *UserService) Register(ctx context.Context, in RegisterInput) (uint64, error) {
	username := normalizeUsername(in.Username)
	if username == "" || strings.TrimSpace(in.Email) == "" ||
		strings.TrimSpace(in.Password) == "" || strings.TrimSpace(in.ConfirmPassword) == "" {
		return 0, ErrMissingField
	}
	if in.Password != in.ConfirmPassword {
		return 0, ErrPasswordMismatch
	}
	if utf8.RuneCountInString(username) > model.MaxUsernameLength {
		return 0, ErrUsernameTooLong
	}

	email, err := s.emails.Validate(ctx, in.Email)
	if err != nil {
		if errors.Is(err, pkg.ErrInvalidEmail) {
			return 0, wrap(ErrInvalidEmail, "%v", err)
		}
		return 0, fmt.Errorf("validate email: %w", err)
	}

	// 先校验扩展名，再写任何数据
	var avatarExt string
	if in.Avatar != nil {
		if avatarExt, err = imageExt(in.AvatarName); err != nil {
			return 0, err
		}
	}

	if err := s.checkConflicts(ctx, username, email); err != nil {
		return 0, err
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return 0, fmt.Errorf("hash password: %w", err)
	}

	user := &model.User{
		Username: username,
		Email:    email,
		Password: hash,
		Avatar:   model.DefaultAvatar,
	}

	var savedAvatar string
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repo := &store.UserRepository{DB: tx}
		if err := repo.Create(ctx, user); err != nil {
			return err
		}
		if in.Avatar == nil {
			return nil
		}
		name := fmt.Sprintf("%d%s", user.ID, avatarExt)
		if err := s.files.Save(ctx, storage.AvatarPath(name), in.Avatar); err != nil {
			return fmt.Errorf("save avatar: %w", err)
		}
		savedAvatar = name
		if err := repo.UpdateAvatar(ctx, user.ID, name); err != nil {
			return err
		}
		user.Avatar = name
		return nil
	})
	if err != nil {
		// 提交失败时文件已写入，需清理
		if savedAvatar != "" {
			if derr := s.files.Delete(context.WithoutCancel(ctx), storage.AvatarPath(savedAvatar)); derr != nil {
				s.log.WithError(derr).WithField("avatar", savedAvatar).Warn("remove orphan avatar failed")
			}
		}
		// 并发注册由唯一索引兜底
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			if cerr := s.checkConflicts(ctx, username, email); cerr != nil {
				return 0, cerr
			}
			return 0, ErrUsernameTaken
		}
		return 0, err
	}
	return user.ID, nil
}

func (s *UserService) checkConflicts(ctx context.Context, username, email string) error {
	users, err := s.repo.FindConflicts(ctx, username, email)
	if err != nil {
		return err
	}
	for _, u := range users {
		if u.Username == username {
			return ErrUsernameTaken
		}
	}
	for _, u := range users {
		if strings.EqualFold(u.Email, email) {
			return ErrEmailTaken
		}
	}
	return nil
}

func (s *UserService) Login(ctx context.Context, username, password string) (*pkg.Pair, error) {
	username = normalizeUsername(username)
	if username == "" || password == "" {
		return nil, ErrMissingField
	}
	user, err := s.repo.FindByUsername(ctx, username)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, wrap(ErrNotFound, "username %q", username)
	}
	if err != nil {
		return nil, err
	}
	if !s.hasher.Verify(password, user.Password) {
		return nil, ErrInvalidCredentials
	}
	return s.issue(ctx, user.ID)
}

func (s *UserService) issue(ctx context.Context, userID uint64) (*pkg.Pair, error) {
	pair, sid, err := s.tokens.GeneratePair(userID)
	if err != nil {
		return nil, fmt.Errorf("generate token: %w", err)
	}
	if err := s.sessions.Create(ctx, sid, userID); err != nil {
		return nil, err
	}
	return pair, nil
}

func (s *UserService) Logout(ctx context.Context, sessionID string) error {
	return s.sessions.Delete(ctx, sessionID)
}

// RequireSession 校验 access token 且会话仍存在，通过后续期
func (s *UserService) RequireSession(ctx context.Context, accessToken string) (*Session, error) {
	if accessToken == "" {
		return nil, ErrUnauthorized
	}
	claims, err := s.tokens.ParseAccess(accessToken)
	if err != nil {
		return nil, wrap(ErrUnauthorized, "%v", err)
	}
	if err := s.checkSession(ctx, claims); err != nil {
		return nil, err
	}
	if err := s.sessions.Extend(ctx, claims.ID); err != nil {
		if errors.Is(err, redis.ErrSessionNotFound) {
			return nil, wrap(ErrUnauthorized, "session expired")
		}
		return nil, err
	}
	return &Session{UserID: claims.UserID, SessionID: claims.ID}, nil
}

func (s *UserService) checkSession(ctx context.Context, claims *pkg.Claims) error {
	uid, err := s.sessions.Get(ctx, claims.ID)
	if errors.Is(err, redis.ErrSessionNotFound) {
		return wrap(ErrUnauthorized, "session not found")
	}
	if err != nil {
		return err
	}
	if uid != claims.UserID {
		return wrap(ErrUnauthorized, "session user mismatch")
	}
	return nil
}

// Refresh 用 refresh token 换一对新 token，旧会话作废
func (s *UserService) Refresh(ctx context.Context, refreshToken string) (*pkg.Pair, error) {
	if refreshToken == "" {
		return nil, ErrMissingField
	}
	claims, err := s.tokens.ParseRefresh(refreshToken)
	if err != nil {
		return nil, wrap(ErrUnauthorized, "%v", err)
	}
	if err := s.checkSession(ctx, claims); err != nil {
		return nil, err
	}
	if err := s.sessions.Delete(ctx, claims.ID); err != nil {
		return nil, err
	}
	return s.issue(ctx, claims.UserID)
}

func (s *UserService) Me(ctx context.Context, userID uint64) (*model.User, error) {
	user, err := s.repo.FindByID(ctx, userID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, wrap(ErrNotFound, "user %d", userID)
	}
	return user, err
}
