package app

import (
	"context"
	"sync/atomic"
	"testing"
	"time"
)

func TestChapterCache_RoundTrip(t *testing.T) {
	cache := NewChapterCache(t.TempDir(), time.Hour)

	if _, ok := cache.Get("john", 1); ok {
		t.Fatal("empty cache should miss")
	}

	verses := []Verse{{Number: 1, Text: "في البدء كان الكلمة"}, {Number: 2, Text: "هذا كان في البدء عند الله"}}
	cache.Set("john", 1, verses)

	got, ok := cache.Get("john", 1)
	if !ok {
		t.Fatal("expected a hit after Set")
	}
	if len(got) != 2 || got[1].Text != verses[1].Text {
		t.Fatalf("cached verses = %+v", got)
	}

	if _, ok := cache.Get("john", 2); ok {
		t.Fatal("different chapter must not hit")
	}
	if _, ok := cache.Get("mark", 1); ok {
		t.Fatal("different book must not hit")
	}
}

func TestChapterCache_Expiry(t *testing.T) {
	cache := NewChapterCache(t.TempDir(), -time.Second)
	cache.Set("john", 1, []Verse{{Number: 1, Text: "نص"}})

	if _, ok := cache.Get("john", 1); ok {
		t.Fatal("expired entry must miss")
	}
}

func TestChapterCache_IgnoresEmpty(t *testing.T) {
	cache := NewChapterCache(t.TempDir(), time.Hour)
	cache.Set("john", 1, nil)
	if _, ok := cache.Get("john", 1); ok {
		t.Fatal("empty verse list must not be cached")
	}
}

func TestCachedContentService_FetchesOnce(t *testing.T) {
	var calls int32
	svc := &MockContentService{
		ChapterTextFn: func(ctx context.Context, book string, chapter int) ([]Verse, error) {
			atomic.AddInt32(&calls, 1)
			return []Verse{{Number: 1, Text: "نص الإصحاح"}}, nil
		},
	}
	cached := NewCachedContentService(svc, NewChapterCache(t.TempDir(), time.Hour))

	for i := 0; i < 3; i++ {
		verses, err := cached.ChapterText(context.Background(), "luke", 15)
		if err != nil {
			t.Fatalf("fetch %d: %v", i, err)
		}
		if len(verses) != 1 {
			t.Fatalf("fetch %d returned %d verses", i, len(verses))
		}
	}
	if n := atomic.LoadInt32(&calls); n != 1 {
		t.Fatalf("upstream called %d times, want 1", n)
	}
}
