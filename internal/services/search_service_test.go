package services

import (
	"context"
	"testing"

	"campushub/internal/models"
)

func TestSearchUsersEmptyQuery(t *testing.T) {
	alice, bob, _ := testUsers()
	svc := NewSearchService(newFakeDB(alice, bob))

	results, err := svc.SearchUsers(context.Background(), "   ", alice.ID)
	if err != nil {
		t.Fatalf("search failed: %v", err)
	}
	if len(results) != 0 {
		t.Errorf("blank query should return nothing, got %d results", len(results))
	}
}

func TestSearchUsersPrefixMatch(t *testing.T) {
	alice, bob, carol := testUsers()
	db := newFakeDB(alice, bob, carol)
	svc := NewSearchService(db)

	results, err := svc.SearchUsers(context.Background(), "bo", carol.ID)
	if err != nil {
		t.Fatalf("search failed: %v", err)
	}
	if len(results) != 1 || results[0].ID != bob.ID {
		t.Fatalf("expected only bob, got %+v", results)
	}
}

func TestSearchUsersExcludesSelf(t *testing.T) {
	alice, _, _ := testUsers()
	svc := NewSearchService(newFakeDB(alice))

	results, err := svc.SearchUsers(context.Background(), "ali", alice.ID)
	if err != nil {
		t.Fatalf("search failed: %v", err)
	}
	if len(results) != 0 {
		t.Errorf("the caller must not appear in their own results, got %d", len(results))
	}
}

func TestSearchUsersFallbackSubstring(t *testing.T) {
	viewer := &models.User{ID: 10, Email: "v@example.com", DisplayName: "Viewer"}
	smith := &models.User{ID: 11, Email: "smith@example.com", DisplayName: "Alice Smith", Username: "asmith"}
	marie := &models.User{ID: 12, Email: "marie@example.com", DisplayName: "Marie Blacksmith", Username: "marie"}
	other := &models.User{ID: 13, Email: "other@example.com", DisplayName: "Someone Else", Username: "other"}
	svc := NewSearchService(newFakeDB(viewer, smith, marie, other))

	// No display name or username starts with "smith"; the bounded scan has
	// to surface the mid-string matches.
	results, err := svc.SearchUsers(context.Background(), "smith", viewer.ID)
	if err != nil {
		t.Fatalf("search failed: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("expected 2 substring matches, got %d", len(results))
	}
	for _, u := range results {
		if u.ID == other.ID {
			t.Errorf("non-matching user surfaced: %+v", u)
		}
	}
}

func TestRankUsersPrefixFirst(t *testing.T) {
	aliceSmith := &models.User{ID: 1, DisplayName: "Alice Smith", Username: "asmith"}
	bobAlison := &models.User{ID: 2, DisplayName: "Bob Alison", Username: "balison"}
	aliBaba := &models.User{ID: 3, DisplayName: "Ali Baba", Username: "ali"}

	ranked := rankUsers([]*models.User{bobAlison, aliceSmith, aliBaba}, "ali")

	// Prefix matches come first, ordered by display name; Bob only matches
	// mid-string and sorts last.
	if ranked[0].ID != aliBaba.ID || ranked[1].ID != aliceSmith.ID || ranked[2].ID != bobAlison.ID {
		t.Errorf("unexpected ranking: %s, %s, %s",
			ranked[0].DisplayName, ranked[1].DisplayName, ranked[2].DisplayName)
	}
}

func TestSearchUsersCapsResults(t *testing.T) {
	users := []*models.User{{ID: 100, DisplayName: "Viewer", Email: "v@example.com"}}
	for i := 0; i < 20; i++ {
		users = append(users, &models.User{
			ID:          i + 1,
			Email:       "dev@example.com",
			DisplayName: "Someone",
			Username:    "someone",
			Bio:         "dev",
		})
	}
	svc := NewSearchService(newFakeDB(users...))

	results, err := svc.SearchUsers(context.Background(), "someone", 100)
	if err != nil {
		t.Fatalf("search failed: %v", err)
	}
	if len(results) > searchResultCap {
		t.Errorf("expected at most %d results, got %d", searchResultCap, len(results))
	}
}
