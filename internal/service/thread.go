package service

import (
	"context"
	"log/slog"
	"strings"

	"github.com/Vaishh-Aryaa/CodeInsight/internal/apperror"
	"github.com/Vaishh-Aryaa/CodeInsight/internal/model"
	"github.com/Vaishh-Aryaa/CodeInsight/internal/repository"
)

// maxTitleLen caps user-supplied thread titles.
const maxTitleLen = 200

// ThreadService manages conversation threads for a user. Ownership is
// enforced in the repository: every call below passes the caller's
// userID, and a thread owned by someone else surfaces as ErrNotFound.
type ThreadService struct {
	threads repository.ThreadRepository
	logger  *slog.Logger
}

// NewThreadService wires a ThreadService.
func NewThreadService(threads repository.ThreadRepository, logger *slog.Logger) *ThreadService {
	return &ThreadService{
		threads: threads,
		logger:  logger,
	}
}

// Create starts an empty thread with the default title.
func (s *ThreadService) Create(ctx context.Context, userID string) (*model.Thread, error) {
	thread := &model.Thread{UserID: userID}
	if err := s.threads.Create(ctx, thread); err != nil {
		return nil, err
	}
	s.logger.Info("thread created",
		slog.String("threadID", thread.ID),
		slog.String("userID", userID),
	)
	return thread, nil
}

// List returns the user's threads, newest first, without messages.
func (s *ThreadService) List(ctx context.Context, userID string) ([]model.Thread, error) {
	return s.threads.ListByUser(ctx, userID)
}

// Get returns one thread with its full message history.
func (s *ThreadService) Get(ctx context.Context, id, userID string) (*model.Thread, error) {
	return s.threads.GetByID(ctx, id, userID)
}

// AppendMessage adds a message to a thread the user owns.
func (s *ThreadService) AppendMessage(ctx context.Context, threadID, userID string, msg *model.Message) error {
	if msg.Role != model.RoleUser && msg.Role != model.RoleAssistant {
		return apperror.ValidationFailed("role", "role must be user or assistant")
	}
	if strings.TrimSpace(msg.Content) == "" {
		return apperror.ValidationFailed("content", "content is required")
	}
	return s.threads.AppendMessage(ctx, threadID, userID, msg)
}

// Rename sets a user-chosen title on a thread.
func (s *ThreadService) Rename(ctx context.Context, id, userID, title string) error {
	title = strings.TrimSpace(title)
	if title == "" {
		return apperror.ValidationFailed("title", "title is required")
	}
	if len(title) > maxTitleLen {
		return apperror.ValidationFailed("title", "title is too long")
	}
	return s.threads.Rename(ctx, id, userID, title)
}

// Delete removes a thread and its messages.
func (s *ThreadService) Delete(ctx context.Context, id, userID string) error {
	if err := s.threads.Delete(ctx, id, userID); err != nil {
		return err
	}
	s.logger.Info("thread deleted",
		slog.String("threadID", id),
		slog.String("userID", userID),
	)
	return nil
}
