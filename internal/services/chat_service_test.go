package services

import (
	"context"
	"errors"
	"testing"

	"campushub/internal/models"
)

func testUsers() (*models.User, *models.User, *models.User) {
	alice := &models.User{ID: 1, Email: "alice@example.com", DisplayName: "Alice Smith", Username: "alice"}
	bob := &models.User{ID: 2, Email: "bob@example.com", DisplayName: "Bob Jones", Username: "bob"}
	carol := &models.User{ID: 3, Email: "carol@example.com", DisplayName: "Carol White", Username: "carol"}
	return alice, bob, carol
}

func TestGetOrCreateIndividualChatIdempotent(t *testing.T) {
	alice, bob, _ := testUsers()
	db := newFakeDB(alice, bob)
	svc := NewChatService(db, nil)
	ctx := context.Background()

	first, err := svc.GetOrCreateIndividualChat(ctx, alice.ID, bob.ID)
	if err != nil {
		t.Fatalf("first create failed: %v", err)
	}
	if first.Type != models.ChatTypeIndividual {
		t.Errorf("expected individual chat, got %s", first.Type)
	}
	if len(first.Members) != 2 {
		t.Fatalf("expected 2 members, got %d", len(first.Members))
	}

	// The reverse argument order must land on the same chat.
	second, err := svc.GetOrCreateIndividualChat(ctx, bob.ID, alice.ID)
	if err != nil {
		t.Fatalf("second create failed: %v", err)
	}
	if second.ID != first.ID {
		t.Errorf("expected one chat for the pair, got %s and %s", first.ID, second.ID)
	}
	if len(db.chats) != 1 {
		t.Errorf("expected 1 stored chat, got %d", len(db.chats))
	}
}

func TestGetOrCreateIndividualChatRejectsSelf(t *testing.T) {
	alice, _, _ := testUsers()
	svc := NewChatService(newFakeDB(alice), nil)

	_, err := svc.GetOrCreateIndividualChat(context.Background(), alice.ID, alice.ID)
	if !errors.Is(err, ErrValidation) {
		t.Errorf("expected validation error, got %v", err)
	}
}

func TestGetOrCreateIndividualChatUnknownUser(t *testing.T) {
	alice, _, _ := testUsers()
	svc := NewChatService(newFakeDB(alice), nil)

	_, err := svc.GetOrCreateIndividualChat(context.Background(), alice.ID, 99)
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected not-found error, got %v", err)
	}
}

func TestCreateGroupChatRequiresOtherMembers(t *testing.T) {
	alice, bob, _ := testUsers()
	db := newFakeDB(alice, bob)
	svc := NewChatService(db, nil)
	ctx := context.Background()

	// Only the creator (including duplicates) is not enough.
	_, err := svc.CreateGroupChat(ctx, alice.ID, &models.CreateGroupChatRequest{
		Name:      "Solo",
		MemberIDs: []int{alice.ID, alice.ID},
	})
	if !errors.Is(err, ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}

	chat, err := svc.CreateGroupChat(ctx, alice.ID, &models.CreateGroupChatRequest{
		Name:      "Study",
		MemberIDs: []int{bob.ID, bob.ID, alice.ID},
	})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if len(chat.Members) != 2 {
		t.Fatalf("expected deduped membership of 2, got %d", len(chat.Members))
	}
	creator := chat.Members[0]
	if creator.UserID != alice.ID || !creator.IsAdmin {
		t.Errorf("expected creator %d as initial admin, got %+v", alice.ID, creator)
	}
}

func TestRenameGroupAdminOnly(t *testing.T) {
	alice, bob, carol := testUsers()
	db := newFakeDB(alice, bob, carol)
	svc := NewChatService(db, nil)
	ctx := context.Background()

	chat, err := svc.CreateGroupChat(ctx, alice.ID, &models.CreateGroupChatRequest{
		Name:      "Study",
		MemberIDs: []int{bob.ID, carol.ID},
	})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	// Bob is not an admin; the rename must be refused without a write.
	if _, err := svc.RenameGroup(ctx, chat.ID, bob.ID, "Bob's Group"); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected permission error for non-admin, got %v", err)
	}
	if db.chats[chat.ID].Name != "Study" {
		t.Errorf("rejected rename must not change the name, got %q", db.chats[chat.ID].Name)
	}

	renamed, err := svc.RenameGroup(ctx, chat.ID, alice.ID, "Study Group")
	if err != nil {
		t.Fatalf("admin rename failed: %v", err)
	}
	if renamed.Name != "Study Group" || db.chats[chat.ID].Name != "Study Group" {
		t.Errorf("expected name %q, got %q", "Study Group", db.chats[chat.ID].Name)
	}

	if _, err := svc.RenameGroup(ctx, chat.ID, alice.ID, ""); !errors.Is(err, ErrValidation) {
		t.Errorf("expected validation error for empty name, got %v", err)
	}
}

func TestRemoveMember(t *testing.T) {
	alice, bob, carol := testUsers()
	db := newFakeDB(alice, bob, carol)
	notifier := newRecordingNotifier()
	svc := NewChatService(db, notifier)
	ctx := context.Background()

	chat, err := svc.CreateGroupChat(ctx, alice.ID, &models.CreateGroupChatRequest{
		Name:      "Study",
		MemberIDs: []int{bob.ID, carol.ID},
	})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	if err := svc.RemoveMember(ctx, chat.ID, bob.ID, carol.ID); !errors.Is(err, ErrForbidden) {
		t.Errorf("expected permission error for non-admin, got %v", err)
	}
	if err := svc.RemoveMember(ctx, chat.ID, alice.ID, alice.ID); !errors.Is(err, ErrValidation) {
		t.Errorf("expected validation error for self-removal, got %v", err)
	}
	if err := svc.RemoveMember(ctx, chat.ID, alice.ID, 99); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected not-found error for non-member, got %v", err)
	}

	if err := svc.RemoveMember(ctx, chat.ID, alice.ID, carol.ID); err != nil {
		t.Fatalf("admin removal failed: %v", err)
	}
	if got := len(db.chats[chat.ID].Members); got != 2 {
		t.Errorf("expected 2 members after removal, got %d", got)
	}
	if ev := notifier.last(carol.ID); ev == nil || ev.Type != models.EventChatDeleted {
		t.Errorf("removed member should be told their chat is gone, got %+v", ev)
	}
}

func TestToggleAdminLastAdminGuard(t *testing.T) {
	alice, bob, _ := testUsers()
	db := newFakeDB(alice, bob)
	svc := NewChatService(db, nil)
	ctx := context.Background()

	chat, err := svc.CreateGroupChat(ctx, alice.ID, &models.CreateGroupChatRequest{
		Name:      "Study",
		MemberIDs: []int{bob.ID},
	})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	// Alice is the only admin and cannot demote herself.
	if err := svc.ToggleAdmin(ctx, chat.ID, alice.ID, alice.ID); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected last-admin guard, got %v", err)
	}

	if err := svc.ToggleAdmin(ctx, chat.ID, alice.ID, bob.ID); err != nil {
		t.Fatalf("promote failed: %v", err)
	}
	if m, _ := db.GetMember(ctx, chat.ID, bob.ID); !m.IsAdmin {
		t.Fatalf("expected bob promoted to admin")
	}

	// With two admins a demotion is allowed again.
	if err := svc.ToggleAdmin(ctx, chat.ID, bob.ID, alice.ID); err != nil {
		t.Fatalf("demote failed: %v", err)
	}
	if m, _ := db.GetMember(ctx, chat.ID, alice.ID); m.IsAdmin {
		t.Errorf("expected alice demoted")
	}
}

func TestLeaveGroupPromotesLongestStandingMember(t *testing.T) {
	alice, bob, carol := testUsers()
	db := newFakeDB(alice, bob, carol)
	svc := NewChatService(db, nil)
	ctx := context.Background()

	chat, err := svc.CreateGroupChat(ctx, alice.ID, &models.CreateGroupChatRequest{
		Name:      "Study",
		MemberIDs: []int{bob.ID, carol.ID},
	})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	// The sole admin leaves; bob joined before carol and inherits the flag.
	if err := svc.LeaveGroup(ctx, chat.ID, alice.ID); err != nil {
		t.Fatalf("leave failed: %v", err)
	}

	stored := db.chats[chat.ID]
	if len(stored.Members) != 2 {
		t.Fatalf("expected 2 remaining members, got %d", len(stored.Members))
	}
	if m, _ := db.GetMember(ctx, chat.ID, bob.ID); !m.IsAdmin {
		t.Errorf("expected the longest-standing member to be promoted")
	}
	if m, _ := db.GetMember(ctx, chat.ID, carol.ID); m.IsAdmin {
		t.Errorf("carol should not be promoted")
	}
}

// failingLeaveDB simulates a storage fault on the combined leave-and-promote
// write.
type failingLeaveDB struct {
	*fakeDB
}

func (f *failingLeaveDB) LeaveChat(context.Context, string, int, int) error {
	return errors.New("connection reset")
}

func TestLeaveGroupPromotionIsAtomic(t *testing.T) {
	alice, bob, carol := testUsers()
	db := newFakeDB(alice, bob, carol)
	svc := NewChatService(&failingLeaveDB{db}, nil)
	ctx := context.Background()

	chat, err := svc.CreateGroupChat(ctx, alice.ID, &models.CreateGroupChatRequest{
		Name:      "Study",
		MemberIDs: []int{bob.ID, carol.ID},
	})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	// The sole admin's departure fails at the store. Neither the removal nor
	// the promotion may stick: a committed removal without the promotion
	// would leave a non-empty group adminless.
	if err := svc.LeaveGroup(ctx, chat.ID, alice.ID); err == nil {
		t.Fatal("expected the storage error to surface")
	}

	stored := db.chats[chat.ID]
	if len(stored.Members) != 3 {
		t.Errorf("failed leave must not remove the member, got %d members", len(stored.Members))
	}
	admins := 0
	for _, m := range stored.Members {
		if m.IsAdmin {
			admins++
		}
	}
	if admins != 1 {
		t.Errorf("expected the original admin intact, got %d admins", admins)
	}
	if m, _ := db.GetMember(ctx, chat.ID, alice.ID); m == nil || !m.IsAdmin {
		t.Errorf("alice should still be the admin after the failed leave")
	}
}

func TestLastLeaverDeletesChatAndMessages(t *testing.T) {
	alice, bob, _ := testUsers()
	db := newFakeDB(alice, bob)
	chats := NewChatService(db, nil)
	messages := NewMessageService(db)
	ctx := context.Background()

	chat, err := chats.CreateGroupChat(ctx, alice.ID, &models.CreateGroupChatRequest{
		Name:      "Study",
		MemberIDs: []int{bob.ID},
	})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if _, err := messages.Send(ctx, chat.ID, bob.ID, "hi there", ""); err != nil {
		t.Fatalf("send failed: %v", err)
	}

	if err := chats.LeaveGroup(ctx, chat.ID, bob.ID); err != nil {
		t.Fatalf("bob leave failed: %v", err)
	}
	if err := chats.LeaveGroup(ctx, chat.ID, alice.ID); err != nil {
		t.Fatalf("alice leave failed: %v", err)
	}

	if _, ok := db.chats[chat.ID]; ok {
		t.Errorf("chat should be deleted with its last member")
	}
	if msgs := db.messages[chat.ID]; len(msgs) != 0 {
		t.Errorf("message log should be deleted with the chat, found %d messages", len(msgs))
	}
}

func TestGetChatMembershipGate(t *testing.T) {
	alice, bob, carol := testUsers()
	db := newFakeDB(alice, bob, carol)
	svc := NewChatService(db, nil)
	ctx := context.Background()

	chat, err := svc.GetOrCreateIndividualChat(ctx, alice.ID, bob.ID)
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	if _, err := svc.GetChat(ctx, chat.ID, carol.ID); !errors.Is(err, ErrForbidden) {
		t.Errorf("expected permission error for non-member, got %v", err)
	}
	if _, err := svc.GetChat(ctx, chat.ID, alice.ID); err != nil {
		t.Errorf("member read failed: %v", err)
	}
	if _, err := svc.GetChat(ctx, "missing", alice.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected not-found error, got %v", err)
	}
}

func TestDeleteIndividualChat(t *testing.T) {
	alice, bob, carol := testUsers()
	db := newFakeDB(alice, bob, carol)
	notifier := newRecordingNotifier()
	svc := NewChatService(db, notifier)
	ctx := context.Background()

	chat, err := svc.GetOrCreateIndividualChat(ctx, alice.ID, bob.ID)
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	if err := svc.DeleteIndividualChat(ctx, chat.ID, carol.ID); !errors.Is(err, ErrForbidden) {
		t.Errorf("expected permission error for non-member, got %v", err)
	}

	if err := svc.DeleteIndividualChat(ctx, chat.ID, bob.ID); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	if _, ok := db.chats[chat.ID]; ok {
		t.Errorf("chat should be gone for both sides")
	}
	if ev := notifier.last(alice.ID); ev == nil || ev.Type != models.EventChatDeleted {
		t.Errorf("the other participant should be notified of the deletion, got %+v", ev)
	}

	group, err := svc.CreateGroupChat(ctx, alice.ID, &models.CreateGroupChatRequest{
		Name:      "Study",
		MemberIDs: []int{bob.ID},
	})
	if err != nil {
		t.Fatalf("group create failed: %v", err)
	}
	if err := svc.DeleteIndividualChat(ctx, group.ID, alice.ID); !errors.Is(err, ErrValidation) {
		t.Errorf("group chats must not be deletable through the individual path, got %v", err)
	}
}
