package services

import (
	"context"
	"sort"
	"strings"

	"campushub/internal/database"
	"campushub/internal/models"
)

const (
	searchResultCap = 8
	searchScanBound = 50
)

// SearchService finds chat partners by display name, username or email.
// The primary query is an indexed prefix match; only when it comes back
// empty does a bounded scan with substring matching run, because the prefix
// indexes cannot see mid-string matches.
type SearchService struct {
	db database.Database
}

func NewSearchService(db database.Database) *SearchService {
	return &SearchService{db: db}
}

func (s *SearchService) SearchUsers(ctx context.Context, query string, excludeID int) ([]*models.User, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, nil
	}

	users, err := s.db.SearchUsersPrefix(ctx, query, excludeID, searchResultCap)
	if err != nil {
		return nil, err
	}
	if len(users) > 0 {
		return rankUsers(dedupeUsers(users), query), nil
	}

	scanned, err := s.db.ScanUsers(ctx, excludeID, searchScanBound)
	if err != nil {
		return nil, err
	}

	var matched []*models.User
	for _, u := range scanned {
		if matchesSubstring(u, query) {
			matched = append(matched, u)
		}
	}
	matched = rankUsers(dedupeUsers(matched), query)
	if len(matched) > searchResultCap {
		matched = matched[:searchResultCap]
	}
	return matched, nil
}

func matchesSubstring(u *models.User, query string) bool {
	q := strings.ToLower(query)
	return strings.Contains(strings.ToLower(u.DisplayName), q) ||
		strings.Contains(strings.ToLower(u.Username), q) ||
		strings.Contains(strings.ToLower(u.Email), q)
}

// rankUsers sorts prefix matches (on display name or username) before
// substring-only matches, ties broken by display name.
func rankUsers(users []*models.User, query string) []*models.User {
	q := strings.ToLower(query)
	isPrefix := func(u *models.User) bool {
		return strings.HasPrefix(strings.ToLower(u.DisplayName), q) ||
			strings.HasPrefix(strings.ToLower(u.Username), q)
	}
	sort.SliceStable(users, func(i, j int) bool {
		pi, pj := isPrefix(users[i]), isPrefix(users[j])
		if pi != pj {
			return pi
		}
		return strings.ToLower(users[i].DisplayName) < strings.ToLower(users[j].DisplayName)
	})
	return users
}

func dedupeUsers(users []*models.User) []*models.User {
	seen := make(map[int]bool, len(users))
	out := users[:0]
	for _, u := range users {
		if !seen[u.ID] {
			seen[u.ID] = true
			out = append(out, u)
		}
	}
	return out
}
