package app

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/charmbracelet/log"
)

// Chat surfaces. Each surface keeps its own session history in the
// library.
const (
	SurfacePatristic = "patristic"
	SurfaceLesson    = "lesson"
)

// errorReply is appended to the transcript when a send fails. It is
// excluded from the history sent on later turns.
const errorReply = "عفواً، حدث خطأ في الاتصال."

// ChatThread drives one conversation surface: optimistic transcript
// updates, a single in-flight send at a time, and bind-or-create
// persistence into the library.
type ChatThread struct {
	mu      sync.Mutex
	svc     ContentService
	lib     Library
	log     *log.Logger
	surface string

	sessionID string
	title     string
	messages  []ChatMessage
	sending   bool
	persistOK bool
}

// ChatSnapshot is a copy of thread state for rendering.
type ChatSnapshot struct {
	SessionID  string
	Title      string
	Messages   []ChatMessage
	Sending    bool
	PersistErr bool
}

func NewChatThread(surface string, svc ContentService, lib Library, logger *log.Logger) *ChatThread {
	return &ChatThread{svc: svc, lib: lib, log: logger, surface: surface, persistOK: true}
}

// Send appends the user message, calls the model with the filtered
// history, and appends the reply. A failed call appends the apology
// reply instead and returns the error. Only one send runs at a time.
func (t *ChatThread) Send(ctx context.Context, message string) error {
	message = strings.TrimSpace(message)
	if message == "" {
		return errors.New("empty message")
	}
	t.mu.Lock()
	if t.sending {
		t.mu.Unlock()
		return errors.New("a message is already in flight")
	}
	t.sending = true
	history := t.outgoingHistory()
	t.messages = append(t.messages, ChatMessage{Role: RoleUser, Content: message})
	if t.title == "" {
		t.title = SessionTitle(message)
	}
	t.mu.Unlock()

	reply, err := t.svc.Chat(ctx, history, message)

	t.mu.Lock()
	defer t.mu.Unlock()
	t.sending = false
	if err != nil {
		t.log.Error("chat send failed", "surface", t.surface, "err", err)
		t.messages = append(t.messages, ChatMessage{Role: RoleModel, Content: errorReply})
		return err
	}
	t.messages = append(t.messages, ChatMessage{Role: RoleModel, Content: reply})
	t.persistLocked()
	return nil
}

// outgoingHistory filters apology placeholders out of the transcript.
// Only the exact placeholder is dropped; a real reply quoting it stays.
// Callers must hold t.mu.
func (t *ChatThread) outgoingHistory() []ChatMessage {
	out := make([]ChatMessage, 0, len(t.messages))
	for _, m := range t.messages {
		if m.Role == RoleModel && m.Content == errorReply {
			continue
		}
		out = append(out, m)
	}
	return out
}

// persistLocked writes the session, creating it on first use. A write
// failure keeps the in-memory transcript and flips the persist flag.
// Threads built without a library are ephemeral and skip persistence.
func (t *ChatThread) persistLocked() {
	if t.lib == nil {
		return
	}
	sess := &ChatSession{
		ID:       t.sessionID,
		Surface:  t.surface,
		Title:    t.title,
		Messages: append([]ChatMessage(nil), t.messages...),
	}
	if err := t.lib.SaveChatSession(sess); err != nil {
		t.log.Error("chat session save failed", "surface", t.surface, "err", err)
		t.persistOK = false
		return
	}
	t.sessionID = sess.ID
	t.persistOK = true
}

// Seed plants an opening exchange on an empty thread, used to give the
// lesson Q&A panel its context. A thread with messages keeps them.
func (t *ChatThread) Seed(userTurn, modelTurn string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if len(t.messages) > 0 || t.sending {
		return
	}
	t.messages = []ChatMessage{
		{Role: RoleUser, Content: userTurn},
		{Role: RoleModel, Content: modelTurn},
	}
}

// NewChat resets the thread to an empty unbound transcript.
func (t *ChatThread) NewChat() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.sessionID = ""
	t.title = ""
	t.messages = nil
	t.persistOK = true
}

// LoadChat replaces the transcript with a stored session of this surface.
func (t *ChatThread) LoadChat(id string) error {
	if t.lib == nil {
		return errors.New("no session store")
	}
	sess, err := t.lib.LoadChatSession(id)
	if err != nil {
		return err
	}
	if sess.Surface != t.surface {
		return errors.New("session belongs to another surface")
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.sending {
		return errors.New("a message is in flight")
	}
	t.sessionID = sess.ID
	t.title = sess.Title
	t.messages = append([]ChatMessage(nil), sess.Messages...)
	t.persistOK = true
	return nil
}

// DeleteChat removes a stored session. Deleting the bound session also
// resets the thread, same as NewChat.
func (t *ChatThread) DeleteChat(id string) error {
	if t.lib == nil {
		return errors.New("no session store")
	}
	if err := t.lib.DeleteChatSession(id); err != nil {
		return err
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	if id == t.sessionID {
		t.sessionID = ""
		t.title = ""
		t.messages = nil
		t.persistOK = true
	}
	return nil
}

// Sessions lists the stored sessions of this surface, newest first. An
// ephemeral thread has none.
func (t *ChatThread) Sessions() ([]ChatSessionSummary, error) {
	if t.lib == nil {
		return nil, nil
	}
	return t.lib.ListChatSessions(t.surface)
}

// Snapshot copies the thread state for rendering.
func (t *ChatThread) Snapshot() ChatSnapshot {
	t.mu.Lock()
	defer t.mu.Unlock()
	return ChatSnapshot{
		SessionID:  t.sessionID,
		Title:      t.title,
		Messages:   append([]ChatMessage(nil), t.messages...),
		Sending:    t.sending,
		PersistErr: !t.persistOK,
	}
}
