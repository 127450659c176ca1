package service

import (
	"context"
	"strings"

	"Faran/internal/repository/store"

	"gorm.io/gorm"
)

type SearchResult struct {
	Username string `json:"username"`
	Avatar   string `json:"avatar"`
}

type SearchService struct {
	users *store.UserRepository
}

func NewSearchService(db *gorm.DB) *SearchService {
	return &SearchService{users: &store.UserRepository{DB: db}}
}

// SearchUsers 区分大小写的前缀匹配，按用户名降序
func (s *SearchService) SearchUsers(ctx context.Context, query string) ([]SearchResult, error) {
	prefix := strings.TrimSpace(query)
	if prefix == "" {
		return nil, ErrEmptyQuery
	}
	users, err := s.users.SearchByPrefix(ctx, escapeLike(prefix))
	if err != nil {
		return nil, err
	}
	out := make([]SearchResult, 0, len(users))
	for _, u := range users {
		if strings.HasPrefix(u.Username, prefix) {
			out = append(out, SearchResult{Username: u.Username, Avatar: u.AvatarOrDefault()})
		}
	}
	return out, nil
}

// escapeLike 把 % 和反斜杠换成单字符通配 _，LIKE 结果只会变多，HasPrefix 再精确过滤
func escapeLike(s string) string {
	return strings.NewReplacer("%", "_", `\`, "_").Replace(s)
}
