package model

import "time"

// Language is a detected source-language label. It is a closed set — the
// classifier only ever produces one of the constants below, defaulting to
// LangUnknown. Labels are cosmetic (syntax highlighting, prompt wording);
// a wrong guess is acceptable and never an error.
type Language string

const (
	LangCPP        Language = "C++"
	LangCSharp     Language = "C#"
	LangJava       Language = "Java"
	LangPython     Language = "Python"
	LangJavaScript Language = "JavaScript"
	LangUnknown    Language = "Unknown"
)

// Message roles. A message is written either by the user or by the
// assistant — nothing else is valid.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// DefaultThreadTitle is the title a thread is born with. The first user
// message replaces it (see ThreadRepository.AppendMessage).
const DefaultThreadTitle = "New Chat"

// Thread is a named, ordered conversation owned by exactly one user.
//
// Messages are exclusively owned by their thread: insertion order is
// conversation order and is never reordered. Every repository operation on
// a thread is keyed by (ID, UserID) so cross-user access is impossible at
// the data layer, not just in handlers.
type Thread struct {
	ID        string    `json:"id"`
	UserID    string    `json:"-"`
	Title     string    `json:"title"`
	Messages  []Message `json:"messages,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Message is one entry in a thread's conversation.
// Language is set on user messages that carried a code snippet; it is
// empty for assistant replies and plain-text messages.
type Message struct {
	ID        string    `json:"id"`
	ThreadID  string    `json:"-"`
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	Language  Language  `json:"language,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}
