package app

import (
	"strings"
	"time"
)

// SavedItemType tags what a library entry holds.
type SavedItemType string

const (
	ItemLesson     SavedItemType = "lesson"
	ItemGames      SavedItemType = "games"
	ItemCurriculum SavedItemType = "curriculum"
	ItemContent    SavedItemType = "content"
)

// SavedItem is one library entry, owned by the profile that wrote it.
// Payload is the item body encoded as JSON; its shape depends on Type.
type SavedItem struct {
	ID        string
	UserID    string
	Type      SavedItemType
	Title     string
	Payload   []byte
	CreatedAt time.Time
}

// ChatSession is a persisted conversation bound to one surface
// (the patristic assistant, the lesson follow-up chat, ...).
type ChatSession struct {
	ID        string
	UserID    string
	Surface   string
	Title     string
	Messages  []ChatMessage
	CreatedAt time.Time
	UpdatedAt time.Time
}

// ChatSessionSummary is a listing row: the session without its transcript.
type ChatSessionSummary struct {
	ID           string
	Surface      string
	Title        string
	MessageCount int
	UpdatedAt    time.Time
}

// Library persists saved items, chat sessions and the reading bookmark.
type Library interface {
	SaveItem(item *SavedItem) error
	ListItems(itemType SavedItemType) ([]SavedItem, error)
	GetItem(id string) (*SavedItem, error)
	DeleteItem(id string) error

	SaveChatSession(sess *ChatSession) error
	ListChatSessions(surface string) ([]ChatSessionSummary, error)
	LoadChatSession(id string) (*ChatSession, error)
	DeleteChatSession(id string) error

	SaveReadingPosition(pos BibleReadingPosition) error
	LoadReadingPosition() (BibleReadingPosition, bool, error)

	Close() error
}

// SessionTitle derives a listing title from the first user message:
// the first 40 runes, with an ellipsis when the message was longer.
func SessionTitle(message string) string {
	message = strings.TrimSpace(message)
	runes := []rune(message)
	if len(runes) <= 40 {
		return message
	}
	return string(runes[:40]) + "..."
}
