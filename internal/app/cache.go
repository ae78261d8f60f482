package app

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// chapterEntry is one cached chapter on disk.
type chapterEntry struct {
	Verses    []Verse   `json:"verses"`
	Key       string    `json:"key"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// ChapterCache keeps fetched chapter text on disk. The text of a chapter
// does not change between runs, so entries live long and the reader only
// pays the API call once per chapter.
type ChapterCache struct {
	Dir    string
	MaxAge time.Duration
	mu     sync.RWMutex
}

func NewChapterCache(dir string, maxAge time.Duration) *ChapterCache {
	if dir == "" {
		dir = filepath.Join(DefaultDataDir(), "chapters")
	}
	os.MkdirAll(dir, 0o755)
	return &ChapterCache{Dir: dir, MaxAge: maxAge}
}

func (c *ChapterCache) key(book string, chapter int) string {
	hash := sha256.Sum256([]byte(fmt.Sprintf("%s||%d", book, chapter)))
	return hex.EncodeToString(hash[:16])
}

// Get returns the cached verses for a chapter, if present and fresh.
func (c *ChapterCache) Get(book string, chapter int) ([]Verse, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	filePath := filepath.Join(c.Dir, c.key(book, chapter)+".json")
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, false
	}

	var entry chapterEntry
	if err := json.Unmarshal(data, &entry); err != nil {
		return nil, false
	}
	if time.Now().After(entry.ExpiresAt) {
		os.Remove(filePath)
		return nil, false
	}
	if len(entry.Verses) == 0 {
		return nil, false
	}
	return entry.Verses, true
}

// Set stores a fetched chapter.
func (c *ChapterCache) Set(book string, chapter int, verses []Verse) {
	if len(verses) == 0 {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	key := c.key(book, chapter)
	entry := chapterEntry{
		Verses:    verses,
		Key:       key,
		CreatedAt: time.Now(),
		ExpiresAt: time.Now().Add(c.MaxAge),
	}
	data, _ := json.MarshalIndent(entry, "", "  ")
	os.WriteFile(filepath.Join(c.Dir, key+".json"), data, 0o644)
}

// Cleanup removes expired entries.
func (c *ChapterCache) Cleanup() {
	c.mu.Lock()
	defer c.mu.Unlock()

	entries, _ := os.ReadDir(c.Dir)
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		filePath := filepath.Join(c.Dir, entry.Name())
		data, _ := os.ReadFile(filePath)
		var ce chapterEntry
		if json.Unmarshal(data, &ce) == nil && time.Now().After(ce.ExpiresAt) {
			os.Remove(filePath)
		}
	}
}

// CachedContentService wraps a ContentService and serves chapter text
// from the disk cache. Everything else passes straight through.
type CachedContentService struct {
	ContentService
	cache *ChapterCache
}

func NewCachedContentService(svc ContentService, cache *ChapterCache) *CachedContentService {
	return &CachedContentService{ContentService: svc, cache: cache}
}

func (s *CachedContentService) ChapterText(ctx context.Context, book string, chapter int) ([]Verse, error) {
	if verses, ok := s.cache.Get(book, chapter); ok {
		return verses, nil
	}
	verses, err := s.ContentService.ChapterText(ctx, book, chapter)
	if err != nil {
		return nil, err
	}
	s.cache.Set(book, chapter, verses)
	return verses, nil
}
