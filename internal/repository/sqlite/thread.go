package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/rs/xid"

	"github.com/Vaishh-Aryaa/CodeInsight/internal/apperror"
	"github.com/Vaishh-Aryaa/CodeInsight/internal/model"
	"github.com/Vaishh-Aryaa/CodeInsight/internal/repository"
)

var _ repository.ThreadRepository = (*DB)(nil)

// maxAutoTitleLen is how much of the first user message becomes the
// thread title on auto-rename.
const maxAutoTitleLen = 40

// Create inserts a new, empty thread owned by thread.UserID.
// ID, default title, and timestamps are filled in here.
func (db *DB) Create(ctx context.Context, thread *model.Thread) error {
	thread.ID = xid.New().String()
	if thread.Title == "" {
		thread.Title = model.DefaultThreadTitle
	}

	now := time.Now()
	thread.CreatedAt = now
	thread.UpdatedAt = now

	_, err := db.conn.ExecContext(ctx,
		`INSERT INTO threads (id, user_id, title, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?)`,
		thread.ID,
		thread.UserID,
		thread.Title,
		thread.CreatedAt,
		thread.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("sqlite: creating thread: %w", err)
	}

	return nil
}

// ListByUser returns the owner's threads newest-first. Messages are not
// loaded — the list view only needs titles and timestamps.
func (db *DB) ListByUser(ctx context.Context, ownerID string) ([]model.Thread, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT id, user_id, title, created_at, updated_at
		 FROM threads
		 WHERE user_id = ?
		 ORDER BY created_at DESC`,
		ownerID,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing threads: %w", err)
	}
	defer rows.Close()

	threads := []model.Thread{}
	for rows.Next() {
		var th model.Thread
		if err := rows.Scan(&th.ID, &th.UserID, &th.Title, &th.CreatedAt, &th.UpdatedAt); err != nil {
			return nil, fmt.Errorf("sqlite: scanning thread row: %w", err)
		}
		threads = append(threads, th)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating threads: %w", err)
	}

	return threads, nil
}

// GetByID returns one thread with its full message sequence.
//
// The WHERE clause filters by both id and user_id: a thread owned by
// another user is indistinguishable from a missing one.
func (db *DB) GetByID(ctx context.Context, id, ownerID string) (*model.Thread, error) {
	var thread model.Thread

	err := db.conn.QueryRowContext(ctx,
		`SELECT id, user_id, title, created_at, updated_at
		 FROM threads
		 WHERE id = ? AND user_id = ?`,
		id, ownerID,
	).Scan(&thread.ID, &thread.UserID, &thread.Title, &thread.CreatedAt, &thread.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("thread", id)
		}
		return nil, fmt.Errorf("sqlite: getting thread %s: %w", id, err)
	}

	// ORDER BY rowid = insertion order. Messages are never reordered.
	rows, err := db.conn.QueryContext(ctx,
		`SELECT id, thread_id, role, content, language, created_at
		 FROM messages
		 WHERE thread_id = ?
		 ORDER BY rowid`,
		id,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: loading messages for thread %s: %w", id, err)
	}
	defer rows.Close()

	thread.Messages = []model.Message{}
	for rows.Next() {
		var m model.Message
		if err := rows.Scan(&m.ID, &m.ThreadID, &m.Role, &m.Content, &m.Language, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("sqlite: scanning message row: %w", err)
		}
		thread.Messages = append(thread.Messages, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating messages: %w", err)
	}

	return &thread, nil
}

// AppendMessage appends a message to the thread in a single transaction.
//
// The transaction covers the ownership check, the insert, the conditional
// auto-rename, and the updated_at bump, so an append is atomic with
// respect to its thread: either everything lands or nothing does.
//
// AUTO-RENAME RULE:
// If the thread title is still the default, the thread had no messages
// before this one, and the new message's role is "user", the title becomes
// the first line of the content truncated to 40 characters. A second user
// message can never trigger this — the count check sees the first one.
func (db *DB) AppendMessage(ctx context.Context, threadID, ownerID string, msg *model.Message) error {
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("sqlite: beginning append transaction: %w", err)
	}
	defer tx.Rollback()

	// Ownership check and current title in one read.
	var title string
	err = tx.QueryRowContext(ctx,
		`SELECT title FROM threads WHERE id = ? AND user_id = ?`,
		threadID, ownerID,
	).Scan(&title)
	if err != nil {
		if err == sql.ErrNoRows {
			return apperror.NotFound("thread", threadID)
		}
		return fmt.Errorf("sqlite: checking thread %s: %w", threadID, err)
	}

	var existing int
	if err := tx.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM messages WHERE thread_id = ?`, threadID,
	).Scan(&existing); err != nil {
		return fmt.Errorf("sqlite: counting messages: %w", err)
	}

	msg.ID = xid.New().String()
	msg.ThreadID = threadID
	msg.CreatedAt = time.Now()

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO messages (id, thread_id, role, content, language, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		msg.ID, msg.ThreadID, msg.Role, msg.Content, string(msg.Language), msg.CreatedAt,
	); err != nil {
		return fmt.Errorf("sqlite: inserting message: %w", err)
	}

	newTitle := title
	if title == model.DefaultThreadTitle && existing == 0 && msg.Role == model.RoleUser {
		newTitle = autoTitle(msg.Content)
	}

	if _, err := tx.ExecContext(ctx,
		`UPDATE threads SET title = ?, updated_at = ? WHERE id = ?`,
		newTitle, time.Now(), threadID,
	); err != nil {
		return fmt.Errorf("sqlite: bumping thread %s: %w", threadID, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("sqlite: committing append: %w", err)
	}

	return nil
}

// Rename sets a thread's title, scoped to the owner.
func (db *DB) Rename(ctx context.Context, id, ownerID, title string) error {
	result, err := db.conn.ExecContext(ctx,
		`UPDATE threads SET title = ?, updated_at = ? WHERE id = ? AND user_id = ?`,
		title, time.Now(), id, ownerID,
	)
	if err != nil {
		return fmt.Errorf("sqlite: renaming thread %s: %w", id, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return apperror.NotFound("thread", id)
	}

	return nil
}

// Delete removes a thread and (via ON DELETE CASCADE) its messages,
// scoped to the owner.
func (db *DB) Delete(ctx context.Context, id, ownerID string) error {
	result, err := db.conn.ExecContext(ctx,
		`DELETE FROM threads WHERE id = ? AND user_id = ?`,
		id, ownerID,
	)
	if err != nil {
		return fmt.Errorf("sqlite: deleting thread %s: %w", id, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return apperror.NotFound("thread", id)
	}

	return nil
}

// autoTitle derives a thread title from the first user message: the first
// line of the content, truncated to maxAutoTitleLen characters. The cut
// is on a rune boundary — a byte slice could split a multi-byte rune and
// store an invalid-UTF-8 title.
func autoTitle(content string) string {
	line := content
	if i := strings.IndexByte(line, '\n'); i >= 0 {
		line = line[:i]
	}
	if utf8.RuneCountInString(line) > maxAutoTitleLen {
		line = string([]rune(line)[:maxAutoTitleLen])
	}
	return line
}
