package service

import (
	"context"

	"Faran/internal/repository/store"

	"gorm.io/gorm"
)

const (
	ButtonUnfollow   = "unfollow"
	ButtonFollowBack = "follow back"
	ButtonFollow     = "follow"
)

type ProfilePost struct {
	ID      uint64 `json:"id"`
	Picture string `json:"picture"`
	Caption string `json:"caption"`
}

type Profile struct {
	Username       string        `json:"username"`
	Avatar         string        `json:"avatar"`
	PostCount      int64         `json:"post_count"`
	FollowerCount  int64         `json:"follower_count"`
	FollowingCount int64         `json:"following_count"`
	Posts          []ProfilePost `json:"posts"`
	IsSelf         bool          `json:"is_self"`
	// 查看自己的主页时为空
	Button string `json:"button,omitempty"`
}

type ProfileService struct {
	users   *store.UserRepository
	uploads *store.UploadRepository
	follows *store.FollowRepository
	graph   *FollowService
}

func NewProfileService(db *gorm.DB, graph *FollowService) *ProfileService {
	return &ProfileService{
		users:   &store.UserRepository{DB: db},
		uploads: &store.UploadRepository{DB: db},
		follows: &store.FollowRepository{DB: db},
		graph:   graph,
	}
}

func (s *ProfileService) Profile(ctx context.Context, viewerID uint64, username string) (*Profile, error) {
	subject, err := lookupUser(ctx, s.users, username)
	if err != nil {
		return nil, err
	}

	p := &Profile{
		Username: subject.Username,
		Avatar:   subject.AvatarOrDefault(),
		IsSelf:   subject.ID == viewerID,
	}
	if p.PostCount, err = s.uploads.CountByUploader(ctx, subject.ID); err != nil {
		return nil, err
	}
	if p.FollowerCount, err = s.follows.CountFollowers(ctx, subject.ID); err != nil {
		return nil, err
	}
	if p.FollowingCount, err = s.follows.CountFollowings(ctx, subject.ID); err != nil {
		return nil, err
	}

	uploads, err := s.uploads.ListByUploader(ctx, subject.ID)
	if err != nil {
		return nil, err
	}
	p.Posts = make([]ProfilePost, 0, len(uploads))
	for _, u := range uploads {
		p.Posts = append(p.Posts, ProfilePost{ID: u.ID, Picture: u.Picture, Caption: u.Caption})
	}

	if p.IsSelf {
		return p, nil
	}
	rel, err := s.graph.RelationshipState(ctx, viewerID, subject.ID)
	if err != nil {
		return nil, err
	}
	p.Button = ButtonLabel(rel)
	return p, nil
}

func ButtonLabel(rel Relationship) string {
	switch rel {
	case Following:
		return ButtonUnfollow
	case FollowsBack:
		return ButtonFollowBack
	default:
		return ButtonFollow
	}
}
