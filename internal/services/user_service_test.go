package services

import (
	"context"
	"errors"
	"testing"

	"campushub/internal/models"
)

func strPtr(s string) *string { return &s }

func TestUpdateProfileDisplayNameValidation(t *testing.T) {
	alice, _, _ := testUsers()
	svc := NewUserService(newFakeDB(alice))
	ctx := context.Background()

	for _, name := range []string{"", "x", "  y  "} {
		_, err := svc.UpdateProfile(ctx, alice.ID, &models.UpdateProfileRequest{DisplayName: strPtr(name)})
		if !errors.Is(err, ErrValidation) {
			t.Errorf("display name %q: expected validation error, got %v", name, err)
		}
	}

	updated, err := svc.UpdateProfile(ctx, alice.ID, &models.UpdateProfileRequest{DisplayName: strPtr("  Alice S.  ")})
	if err != nil {
		t.Fatalf("update failed: %v", err)
	}
	if updated.DisplayName != "Alice S." {
		t.Errorf("expected trimmed display name, got %q", updated.DisplayName)
	}
}

func TestUpdateProfileUsernameSetOnce(t *testing.T) {
	user := &models.User{ID: 5, Email: "dana@example.com", DisplayName: "Dana"}
	svc := NewUserService(newFakeDB(user))
	ctx := context.Background()

	if _, err := svc.UpdateProfile(ctx, user.ID, &models.UpdateProfileRequest{Username: strPtr("Bad Name!")}); !errors.Is(err, ErrValidation) {
		t.Errorf("expected validation error for invalid username, got %v", err)
	}

	updated, err := svc.UpdateProfile(ctx, user.ID, &models.UpdateProfileRequest{Username: strPtr("  Dana_99  ")})
	if err != nil {
		t.Fatalf("first set failed: %v", err)
	}
	if updated.Username != "dana_99" {
		t.Errorf("expected normalized username, got %q", updated.Username)
	}

	// Once set, the username is frozen.
	if _, err := svc.UpdateProfile(ctx, user.ID, &models.UpdateProfileRequest{Username: strPtr("other")}); !errors.Is(err, ErrValidation) {
		t.Errorf("expected validation error on second set, got %v", err)
	}
}

func TestUpdateProfilePartialFieldsUntouched(t *testing.T) {
	user := &models.User{ID: 5, Email: "dana@example.com", DisplayName: "Dana", Bio: "hello"}
	svc := NewUserService(newFakeDB(user))

	updated, err := svc.UpdateProfile(context.Background(), user.ID, &models.UpdateProfileRequest{
		Skills: []string{"go", "sql"},
	})
	if err != nil {
		t.Fatalf("update failed: %v", err)
	}
	if updated.Bio != "hello" || updated.DisplayName != "Dana" {
		t.Errorf("absent fields must stay untouched: %+v", updated)
	}
	if len(updated.Skills) != 2 {
		t.Errorf("expected skills updated, got %v", updated.Skills)
	}
}

func TestGetUserStripsPasswordHash(t *testing.T) {
	user := &models.User{ID: 5, Email: "dana@example.com", DisplayName: "Dana", PasswordHash: "secret"}
	svc := NewUserService(newFakeDB(user))

	got, err := svc.GetUser(context.Background(), user.ID)
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if got.PasswordHash != "" {
		t.Errorf("password hash must never leave the service layer")
	}

	if _, err := svc.GetUser(context.Background(), 99); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected not-found error, got %v", err)
	}
}
