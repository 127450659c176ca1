package service

import (
	"context"

	"Faran/internal/repository/store"

	"gorm.io/gorm"
)

const (
	DefaultFeedLimit = 5
	DateLayout       = "January 02, 2006"
)

type FeedState string

const (
	FeedOK           FeedState = "ok"
	FeedNoFollowings FeedState = "no_followings"
	FeedNoPosts      FeedState = "no_posts"
)

type PostView struct {
	ID       uint64 `json:"id"`
	Avatar   string `json:"avatar"`
	Username string `json:"username"`
	Caption  string `json:"caption"`
	Picture  string `json:"picture"`
	Date     string `json:"date"`
}

type Feed struct {
	State FeedState  `json:"state"`
	Posts []PostView `json:"posts"`
}

type FeedService struct {
	follows *store.FollowRepository
	uploads *store.UploadRepository
	limit   int
}

func NewFeedService(db *gorm.DB) *FeedService {
	return &FeedService{
		follows: &store.FollowRepository{DB: db},
		uploads: &store.UploadRepository{DB: db},
		limit:   DefaultFeedLimit,
	}
}

// HomeFeed 关注用户最新的帖子，新的在前
func (s *FeedService) HomeFeed(ctx context.Context, userID uint64) (*Feed, error) {
	ids, err := s.follows.FollowingIDs(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return &Feed{State: FeedNoFollowings, Posts: []PostView{}}, nil
	}

	rows, err := s.uploads.ListByUploaders(ctx, ids, s.limit)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return &Feed{State: FeedNoPosts, Posts: []PostView{}}, nil
	}

	posts := make([]PostView, 0, len(rows))
	for _, r := range rows {
		posts = append(posts, PostView{
			ID:       r.UploadID,
			Avatar:   r.Avatar,
			Username: r.Username,
			Caption:  r.Caption,
			Picture:  r.Picture,
			Date:     r.CreationDate.Format(DateLayout),
		})
	}
	return &Feed{State: FeedOK, Posts: posts}, nil
}
