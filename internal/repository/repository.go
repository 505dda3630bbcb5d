package repository

import (
	"context"

	"github.com/Vaishh-Aryaa/CodeInsight/internal/model"
)

// UserRepository persists user accounts. Emails are unique — Create
// returns apperror.ErrConflict when the address is already registered.
type UserRepository interface {
	CreateUser(ctx context.Context, user *model.User) error
	GetUserByID(ctx context.Context, id string) (*model.User, error)
	GetUserByEmail(ctx context.Context, email string) (*model.User, error)
	// UpdateUser persists name, password hash, and reset-token changes.
	UpdateUser(ctx context.Context, user *model.User) error
}

// ThreadRepository persists conversation threads.
//
// OWNERSHIP INVARIANT:
// Every operation is keyed by (threadID, ownerID). A thread that exists
// but belongs to someone else behaves exactly like a thread that doesn't
// exist: apperror.ErrNotFound, no mutation. This is the sole access-control
// rule of the data layer and it must hold for reads, writes, and deletes.
type ThreadRepository interface {
	Create(ctx context.Context, thread *model.Thread) error
	// ListByUser returns the owner's threads newest-first, without messages.
	ListByUser(ctx context.Context, ownerID string) ([]model.Thread, error)
	// GetByID returns the thread with its messages in insertion order.
	GetByID(ctx context.Context, id, ownerID string) (*model.Thread, error)
	// AppendMessage atomically appends a message. If the thread still has
	// the default title and this is its first message and the role is
	// "user", the thread is renamed to the first line of the content
	// truncated to 40 characters.
	AppendMessage(ctx context.Context, threadID, ownerID string, msg *model.Message) error
	Rename(ctx context.Context, id, ownerID, title string) error
	Delete(ctx context.Context, id, ownerID string) error
}
