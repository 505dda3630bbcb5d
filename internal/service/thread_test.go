package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/Vaishh-Aryaa/CodeInsight/internal/apperror"
	"github.com/Vaishh-Aryaa/CodeInsight/internal/model"
	"github.com/Vaishh-Aryaa/CodeInsight/internal/repository/sqlite"
)

func newTestThreadService(t *testing.T) (*ThreadService, *sqlite.DB) {
	t.Helper()
	db, err := sqlite.New(":memory:")
	if err != nil {
		t.Fatalf("sqlite.New: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return NewThreadService(db, discardLogger()), db
}

// seedUser inserts an account and returns its ID. Threads carry a foreign
// key to users, so every test needs at least one real account.
func seedUser(t *testing.T, db *sqlite.DB, email string) string {
	t.Helper()
	user := &model.User{Name: "Test User", Email: email, PasswordHash: "$2a$04$x"}
	if err := db.CreateUser(context.Background(), user); err != nil {
		t.Fatalf("seeding user %s: %v", email, err)
	}
	return user.ID
}

func TestThreadCreateAndGet(t *testing.T) {
	svc, db := newTestThreadService(t)
	ctx := context.Background()
	userID := seedUser(t, db, "u1@example.com")

	created, err := svc.Create(ctx, userID)
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if created.Title != model.DefaultThreadTitle {
		t.Errorf("Title = %q, want %q", created.Title, model.DefaultThreadTitle)
	}

	got, err := svc.Get(ctx, created.ID, userID)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got.ID != created.ID {
		t.Errorf("Get() ID = %q, want %q", got.ID, created.ID)
	}
	if len(got.Messages) != 0 {
		t.Errorf("new thread has %d messages, want 0", len(got.Messages))
	}
}

func TestThreadAppendMessageValidation(t *testing.T) {
	svc, db := newTestThreadService(t)
	ctx := context.Background()
	userID := seedUser(t, db, "u1@example.com")

	thread, err := svc.Create(ctx, userID)
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	tests := []struct {
		name string
		msg  *model.Message
	}{
		{"bad role", &model.Message{Role: "system", Content: "hi"}},
		{"empty role", &model.Message{Role: "", Content: "hi"}},
		{"empty content", &model.Message{Role: model.RoleUser, Content: ""}},
		{"whitespace content", &model.Message{Role: model.RoleUser, Content: "  \n "}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := svc.AppendMessage(ctx, thread.ID, userID, tt.msg)
			if !errors.Is(err, apperror.ErrValidation) {
				t.Errorf("AppendMessage() error = %v, want ErrValidation", err)
			}
		})
	}
}

func TestThreadAppendMessageOtherUsersThread(t *testing.T) {
	svc, db := newTestThreadService(t)
	ctx := context.Background()
	ownerID := seedUser(t, db, "owner@example.com")
	intruderID := seedUser(t, db, "intruder@example.com")

	thread, err := svc.Create(ctx, ownerID)
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	msg := &model.Message{Role: model.RoleUser, Content: "sneaky"}
	err = svc.AppendMessage(ctx, thread.ID, intruderID, msg)
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("AppendMessage() error = %v, want ErrNotFound", err)
	}
}

func TestThreadRename(t *testing.T) {
	svc, db := newTestThreadService(t)
	ctx := context.Background()
	userID := seedUser(t, db, "u1@example.com")

	thread, err := svc.Create(ctx, userID)
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	if err := svc.Rename(ctx, thread.ID, userID, "  Sorting homework  "); err != nil {
		t.Fatalf("Rename() error = %v", err)
	}
	got, err := svc.Get(ctx, thread.ID, userID)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got.Title != "Sorting homework" {
		t.Errorf("Title = %q, want trimmed %q", got.Title, "Sorting homework")
	}
}

func TestThreadRenameValidation(t *testing.T) {
	svc, db := newTestThreadService(t)
	ctx := context.Background()
	userID := seedUser(t, db, "u1@example.com")

	thread, err := svc.Create(ctx, userID)
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	for _, title := range []string{"", "   ", strings.Repeat("x", maxTitleLen+1)} {
		if err := svc.Rename(ctx, thread.ID, userID, title); !errors.Is(err, apperror.ErrValidation) {
			t.Errorf("Rename(%d chars) error = %v, want ErrValidation", len(title), err)
		}
	}
}

func TestThreadDelete(t *testing.T) {
	svc, db := newTestThreadService(t)
	ctx := context.Background()
	userID := seedUser(t, db, "u1@example.com")

	thread, err := svc.Create(ctx, userID)
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if err := svc.Delete(ctx, thread.ID, userID); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if _, err := svc.Get(ctx, thread.ID, userID); !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("Get() after delete error = %v, want ErrNotFound", err)
	}
}

func TestThreadListIsScopedToUser(t *testing.T) {
	svc, db := newTestThreadService(t)
	ctx := context.Background()
	aliceID := seedUser(t, db, "alice@example.com")
	bobID := seedUser(t, db, "bob@example.com")

	if _, err := svc.Create(ctx, aliceID); err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if _, err := svc.Create(ctx, aliceID); err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if _, err := svc.Create(ctx, bobID); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	aliceThreads, err := svc.List(ctx, aliceID)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(aliceThreads) != 2 {
		t.Errorf("alice has %d threads, want 2", len(aliceThreads))
	}
}
