package app

import (
	"database/sql"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// ErrNotSignedIn is returned by writes that need an owning profile.
var ErrNotSignedIn = errors.New("no signed-in profile")

// SQLiteLibrary is the Library implementation backed by a single sqlite
// file under the data directory. Every record belongs to the owning
// profile id the library was opened with; writes are rejected when no
// profile is signed in.
type SQLiteLibrary struct {
	Root   string
	owner  string
	dbPath string

	mu   sync.Mutex
	db   *sql.DB
	once sync.Once
	err  error
}

func NewSQLiteLibrary(root, owner string) (*SQLiteLibrary, error) {
	if strings.TrimSpace(root) == "" {
		root = DefaultDataDir()
	}
	root = filepath.Clean(root)
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, err
	}
	st := &SQLiteLibrary{
		Root:   root,
		owner:  strings.TrimSpace(owner),
		dbPath: filepath.Join(root, "spark.db"),
	}
	// Initialize eagerly so callers fail fast.
	if err := st.init(); err != nil {
		return nil, err
	}
	return st, nil
}

func (s *SQLiteLibrary) init() error {
	s.once.Do(func() {
		db, err := sql.Open("sqlite", s.dbPath)
		if err != nil {
			s.err = err
			return
		}
		// Keep sqlite responsive under contention.
		_, _ = db.Exec("PRAGMA busy_timeout = 5000;")
		_, _ = db.Exec("PRAGMA journal_mode = WAL;")
		_, _ = db.Exec("PRAGMA synchronous = NORMAL;")

		schema := []string{
			`CREATE TABLE IF NOT EXISTS saved_items (
				id TEXT PRIMARY KEY,
				user_id TEXT NOT NULL,
				item_type TEXT NOT NULL,
				title TEXT NOT NULL,
				payload TEXT NOT NULL,
				created_at_ns INTEGER NOT NULL
			);`,
			`CREATE INDEX IF NOT EXISTS idx_saved_items_user_type_created ON saved_items(user_id, item_type, created_at_ns);`,
			`CREATE TABLE IF NOT EXISTS chat_sessions (
				id TEXT PRIMARY KEY,
				user_id TEXT NOT NULL,
				surface TEXT NOT NULL,
				title TEXT,
				messages TEXT NOT NULL,
				created_at_ns INTEGER NOT NULL,
				updated_at_ns INTEGER NOT NULL
			);`,
			`CREATE INDEX IF NOT EXISTS idx_chat_sessions_user_surface_updated ON chat_sessions(user_id, surface, updated_at_ns);`,
			`CREATE TABLE IF NOT EXISTS reading_position (
				id INTEGER PRIMARY KEY CHECK (id = 1),
				book_id TEXT NOT NULL,
				chapter INTEGER NOT NULL,
				updated_at_ns INTEGER NOT NULL
			);`,
		}
		for _, stmt := range schema {
			if _, err := db.Exec(stmt); err != nil {
				_ = db.Close()
				s.err = err
				return
			}
		}

		s.db = db
	})
	return s.err
}

func (s *SQLiteLibrary) dbConn() (*sql.DB, error) {
	if err := s.init(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	db := s.db
	s.mu.Unlock()
	if db == nil {
		return nil, errors.New("sqlite store unavailable")
	}
	return db, nil
}

func (s *SQLiteLibrary) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	return err
}

func (s *SQLiteLibrary) SaveItem(item *SavedItem) error {
	if item == nil {
		return errors.New("nil item")
	}
	if s.owner == "" {
		return ErrNotSignedIn
	}
	if strings.TrimSpace(item.Title) == "" {
		return errors.New("missing item title")
	}
	if strings.TrimSpace(item.ID) == "" {
		item.ID = uuid.NewString()
	}
	item.UserID = s.owner
	if item.CreatedAt.IsZero() {
		item.CreatedAt = time.Now()
	}
	db, err := s.dbConn()
	if err != nil {
		return err
	}
	_, err = db.Exec(
		`INSERT OR REPLACE INTO saved_items(id, user_id, item_type, title, payload, created_at_ns)
		 VALUES(?, ?, ?, ?, ?, ?)`,
		item.ID, item.UserID, string(item.Type), item.Title, string(item.Payload), item.CreatedAt.UnixNano(),
	)
	return err
}

// ListItems returns the owner's items of one type, or everything of
// theirs when itemType is empty, newest first.
func (s *SQLiteLibrary) ListItems(itemType SavedItemType) ([]SavedItem, error) {
	db, err := s.dbConn()
	if err != nil {
		return nil, err
	}
	q := `SELECT id, user_id, item_type, title, payload, created_at_ns FROM saved_items WHERE user_id = ?`
	args := []any{s.owner}
	if itemType != "" {
		q += ` AND item_type = ?`
		args = append(args, string(itemType))
	}
	q += ` ORDER BY created_at_ns DESC`
	rows, err := db.Query(q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]SavedItem, 0, 16)
	for rows.Next() {
		var it SavedItem
		var typ, payload string
		var createdNS int64
		if err := rows.Scan(&it.ID, &it.UserID, &typ, &it.Title, &payload, &createdNS); err != nil {
			continue
		}
		it.Type = SavedItemType(typ)
		it.Payload = []byte(payload)
		it.CreatedAt = time.Unix(0, createdNS)
		out = append(out, it)
	}
	return out, nil
}

func (s *SQLiteLibrary) GetItem(id string) (*SavedItem, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, errors.New("missing item id")
	}
	db, err := s.dbConn()
	if err != nil {
		return nil, err
	}
	var it SavedItem
	var typ, payload string
	var createdNS int64
	err = db.QueryRow(
		`SELECT id, user_id, item_type, title, payload, created_at_ns FROM saved_items WHERE id = ? AND user_id = ?`,
		id, s.owner,
	).Scan(&it.ID, &it.UserID, &typ, &it.Title, &payload, &createdNS)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, errors.New("item not found")
		}
		return nil, err
	}
	it.Type = SavedItemType(typ)
	it.Payload = []byte(payload)
	it.CreatedAt = time.Unix(0, createdNS)
	return &it, nil
}

func (s *SQLiteLibrary) DeleteItem(id string) error {
	id = strings.TrimSpace(id)
	if id == "" {
		return errors.New("missing item id")
	}
	db, err := s.dbConn()
	if err != nil {
		return err
	}
	_, err = db.Exec(`DELETE FROM saved_items WHERE id = ? AND user_id = ?`, id, s.owner)
	return err
}

func (s *SQLiteLibrary) SaveChatSession(sess *ChatSession) error {
	if sess == nil {
		return errors.New("nil session")
	}
	if s.owner == "" {
		return ErrNotSignedIn
	}
	if strings.TrimSpace(sess.ID) == "" {
		sess.ID = uuid.NewString()
	}
	sess.UserID = s.owner
	now := time.Now()
	if sess.CreatedAt.IsZero() {
		sess.CreatedAt = now
	}
	sess.UpdatedAt = now
	payload, err := json.Marshal(sess.Messages)
	if err != nil {
		return err
	}
	db, err := s.dbConn()
	if err != nil {
		return err
	}
	_, err = db.Exec(
		`INSERT OR REPLACE INTO chat_sessions(id, user_id, surface, title, messages, created_at_ns, updated_at_ns)
		 VALUES(?, ?, ?, ?, ?, ?, ?)`,
		sess.ID, sess.UserID, sess.Surface, nullIfEmpty(sess.Title), string(payload), sess.CreatedAt.UnixNano(), sess.UpdatedAt.UnixNano(),
	)
	return err
}

// ListChatSessions returns the owner's sessions of one surface, newest
// first.
func (s *SQLiteLibrary) ListChatSessions(surface string) ([]ChatSessionSummary, error) {
	db, err := s.dbConn()
	if err != nil {
		return nil, err
	}
	rows, err := db.Query(
		`SELECT id, surface, title, messages, updated_at_ns
		 FROM chat_sessions WHERE user_id = ? AND surface = ?
		 ORDER BY updated_at_ns DESC`,
		s.owner, surface,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]ChatSessionSummary, 0, 16)
	for rows.Next() {
		var sum ChatSessionSummary
		var title sql.NullString
		var payload string
		var updatedNS int64
		if err := rows.Scan(&sum.ID, &sum.Surface, &title, &payload, &updatedNS); err != nil {
			continue
		}
		if title.Valid {
			sum.Title = title.String
		}
		var msgs []ChatMessage
		if err := json.Unmarshal([]byte(payload), &msgs); err == nil {
			sum.MessageCount = len(msgs)
		}
		sum.UpdatedAt = time.Unix(0, updatedNS)
		out = append(out, sum)
	}
	return out, nil
}

func (s *SQLiteLibrary) LoadChatSession(id string) (*ChatSession, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, errors.New("missing session id")
	}
	db, err := s.dbConn()
	if err != nil {
		return nil, err
	}
	var sess ChatSession
	var title sql.NullString
	var payload string
	var createdNS, updatedNS int64
	err = db.QueryRow(
		`SELECT id, user_id, surface, title, messages, created_at_ns, updated_at_ns
		 FROM chat_sessions WHERE id = ? AND user_id = ?`, id, s.owner,
	).Scan(&sess.ID, &sess.UserID, &sess.Surface, &title, &payload, &createdNS, &updatedNS)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, errors.New("session not found")
		}
		return nil, err
	}
	if title.Valid {
		sess.Title = title.String
	}
	if err := json.Unmarshal([]byte(payload), &sess.Messages); err != nil {
		return nil, err
	}
	sess.CreatedAt = time.Unix(0, createdNS)
	sess.UpdatedAt = time.Unix(0, updatedNS)
	return &sess, nil
}

func (s *SQLiteLibrary) DeleteChatSession(id string) error {
	id = strings.TrimSpace(id)
	if id == "" {
		return errors.New("missing session id")
	}
	db, err := s.dbConn()
	if err != nil {
		return err
	}
	_, err = db.Exec(`DELETE FROM chat_sessions WHERE id = ? AND user_id = ?`, id, s.owner)
	return err
}

func (s *SQLiteLibrary) SaveReadingPosition(pos BibleReadingPosition) error {
	if strings.TrimSpace(pos.BookID) == "" || pos.Chapter < 1 {
		return errors.New("invalid reading position")
	}
	db, err := s.dbConn()
	if err != nil {
		return err
	}
	_, err = db.Exec(
		`INSERT INTO reading_position(id, book_id, chapter, updated_at_ns)
		 VALUES(1, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET book_id=excluded.book_id, chapter=excluded.chapter, updated_at_ns=excluded.updated_at_ns`,
		pos.BookID, pos.Chapter, time.Now().UnixNano(),
	)
	return err
}

func (s *SQLiteLibrary) LoadReadingPosition() (BibleReadingPosition, bool, error) {
	db, err := s.dbConn()
	if err != nil {
		return BibleReadingPosition{}, false, err
	}
	var pos BibleReadingPosition
	err = db.QueryRow(`SELECT book_id, chapter FROM reading_position WHERE id = 1`).Scan(&pos.BookID, &pos.Chapter)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return BibleReadingPosition{}, false, nil
		}
		return BibleReadingPosition{}, false, err
	}
	return pos, true, nil
}

// nullIfEmpty stores NULL instead of an empty string so listings can
// tell "never titled" apart from "titled blank".
func nullIfEmpty(s string) interface{} {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	return s
}

var _ Library = (*SQLiteLibrary)(nil)
