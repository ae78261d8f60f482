package app

import (
	"context"
	"errors"
	"io"
	"sync/atomic"
	"testing"
	"time"
)

func newTestReader(svc ContentService) *Reader {
	return NewReader(svc, NewLogger(io.Discard, "error"))
}

func TestBibleCatalog(t *testing.T) {
	if len(Books) != 66 {
		t.Fatalf("catalog has %d books, want 66", len(Books))
	}
	if len(BooksByTestament(TestamentOld)) != 39 {
		t.Fatalf("old testament books = %d, want 39", len(BooksByTestament(TestamentOld)))
	}
	if len(BooksByTestament(TestamentNew)) != 27 {
		t.Fatalf("new testament books = %d, want 27", len(BooksByTestament(TestamentNew)))
	}
	psalms, ok := BookByID("psalms")
	if !ok || psalms.Chapters != 150 || psalms.Name != "المزامير" {
		t.Fatalf("psalms lookup: %+v, %v", psalms, ok)
	}
	if _, ok := BookByID("enoch"); ok {
		t.Fatal("non-canonical lookup must fail")
	}
	seen := map[string]bool{}
	for _, b := range Books {
		if seen[b.ID] {
			t.Fatalf("duplicate book id %q", b.ID)
		}
		seen[b.ID] = true
		if b.Chapters < 1 {
			t.Fatalf("book %q has %d chapters", b.ID, b.Chapters)
		}
	}
}

func TestManuscriptLink(t *testing.T) {
	if _, ok := ManuscriptLink("john", 1); !ok {
		t.Fatal("john 1 should have a manuscript scan")
	}
	if _, ok := ManuscriptLink("john", 2); ok {
		t.Fatal("john 2 should not have a manuscript scan")
	}
}

func TestReaderNavigation(t *testing.T) {
	r := newTestReader(&MockContentService{})
	if r.Snapshot().Stage != StageTestament {
		t.Fatal("reader must start at testament selection")
	}
	r.SelectTestament(TestamentNew)
	if snap := r.Snapshot(); snap.Stage != StageBook || snap.Testament != TestamentNew {
		t.Fatalf("after testament: %+v", snap)
	}
	if err := r.SelectBook("john"); err != nil {
		t.Fatalf("SelectBook: %v", err)
	}
	if snap := r.Snapshot(); snap.Stage != StageChapter || snap.Book.ID != "john" {
		t.Fatalf("after book: %+v", snap)
	}
	if err := r.OpenChapter(context.Background(), 22); err == nil {
		t.Fatal("john has 21 chapters; 22 must be rejected")
	}
	if err := r.OpenChapter(context.Background(), 1); err != nil {
		t.Fatalf("OpenChapter: %v", err)
	}
	snap := r.Snapshot()
	if snap.Stage != StageReading || len(snap.Verses) == 0 || snap.Loading {
		t.Fatalf("after chapter: %+v", snap)
	}
	if snap.ManuscriptURL == "" {
		t.Fatal("john 1 snapshot missing manuscript link")
	}

	r.Back()
	if r.Snapshot().Stage != StageChapter {
		t.Fatal("Back from reading should land on chapter selection")
	}
	r.Back()
	r.Back()
	if r.Snapshot().Stage != StageTestament {
		t.Fatal("Back twice more should land on testament selection")
	}
	r.Back() // no-op at the root
	if r.Snapshot().Stage != StageTestament {
		t.Fatal("Back at the root must stay put")
	}
}

func TestReaderVerseSelectionSubset(t *testing.T) {
	r := newTestReader(&MockContentService{})
	r.SelectTestament(TestamentNew)
	if err := r.SelectBook("mark"); err != nil {
		t.Fatalf("SelectBook: %v", err)
	}
	if err := r.OpenChapter(context.Background(), 1); err != nil {
		t.Fatalf("OpenChapter: %v", err)
	}

	r.ToggleVerse(2)
	r.ToggleVerse(1)
	r.ToggleVerse(99) // not a verse of this chapter
	snap := r.Snapshot()
	if len(snap.SelectedVerses) != 2 || snap.SelectedVerses[0] != 1 || snap.SelectedVerses[1] != 2 {
		t.Fatalf("selection = %v, want sorted [1 2]", snap.SelectedVerses)
	}
	r.ToggleVerse(1)
	if snap := r.Snapshot(); len(snap.SelectedVerses) != 1 || snap.SelectedVerses[0] != 2 {
		t.Fatalf("after untoggle: %v", snap.SelectedVerses)
	}
	r.ClearSelection()
	if snap := r.Snapshot(); len(snap.SelectedVerses) != 0 {
		t.Fatalf("after clear: %v", snap.SelectedVerses)
	}
}

func TestReaderPanelCachesWholeChapter(t *testing.T) {
	var calls int32
	svc := &MockContentService{
		InterpretationFn: func(ctx context.Context, req PassageRequest) (string, error) {
			atomic.AddInt32(&calls, 1)
			if len(req.Verses) == 0 {
				return "تفسير الإصحاح كله", nil
			}
			return "تفسير الآيات المختارة", nil
		},
	}
	r := newTestReader(svc)
	r.SelectTestament(TestamentOld)
	if err := r.SelectBook("genesis"); err != nil {
		t.Fatalf("SelectBook: %v", err)
	}
	if err := r.OpenChapter(context.Background(), 1); err != nil {
		t.Fatalf("OpenChapter: %v", err)
	}

	if err := r.OpenPanel(context.Background(), PanelInterpretation); err != nil {
		t.Fatalf("OpenPanel: %v", err)
	}
	if err := r.OpenPanel(context.Background(), PanelInterpretation); err != nil {
		t.Fatalf("OpenPanel (cached): %v", err)
	}
	if n := atomic.LoadInt32(&calls); n != 1 {
		t.Fatalf("whole-chapter reopen hit the service %d times, want 1", n)
	}
	if got := r.Snapshot().Panels[PanelInterpretation].Text; got != "تفسير الإصحاح كله" {
		t.Fatalf("panel text = %q", got)
	}

	// a verse selection always refetches
	r.ToggleVerse(1)
	if err := r.OpenPanel(context.Background(), PanelInterpretation); err != nil {
		t.Fatalf("OpenPanel (selection): %v", err)
	}
	if n := atomic.LoadInt32(&calls); n != 2 {
		t.Fatalf("selection request did not refetch (calls = %d)", n)
	}
	if got := r.Snapshot().Panels[PanelInterpretation].Text; got != "تفسير الآيات المختارة" {
		t.Fatalf("panel text after selection = %q", got)
	}

	// clearing the selection serves the chapter cache again
	r.ClearSelection()
	if err := r.OpenPanel(context.Background(), PanelInterpretation); err != nil {
		t.Fatalf("OpenPanel (back to cache): %v", err)
	}
	if n := atomic.LoadInt32(&calls); n != 2 {
		t.Fatalf("cached chapter result not reused (calls = %d)", n)
	}
}

func TestReaderPanelsIndependent(t *testing.T) {
	svc := &MockContentService{}
	r := newTestReader(svc)
	r.SelectTestament(TestamentNew)
	if err := r.SelectBook("john"); err != nil {
		t.Fatalf("SelectBook: %v", err)
	}
	if err := r.OpenChapter(context.Background(), 1); err != nil {
		t.Fatalf("OpenChapter: %v", err)
	}
	if err := r.OpenPanel(context.Background(), PanelAnalysis); err != nil {
		t.Fatalf("analysis panel: %v", err)
	}
	snap := r.Snapshot()
	if len(snap.Panels[PanelAnalysis].Analysis) == 0 {
		t.Fatal("analysis panel empty")
	}
	if snap.Panels[PanelSimplified].Text != "" || snap.Panels[PanelSimplified].Loading {
		t.Fatal("untouched panel gained state")
	}
}

func TestReaderStaleChapterReplyDropped(t *testing.T) {
	release := make(chan struct{})
	svc := &MockContentService{
		ChapterTextFn: func(ctx context.Context, book string, chapter int) ([]Verse, error) {
			if chapter == 3 {
				<-release
			}
			return []Verse{{Number: 1, Text: book}}, nil
		},
	}
	r := newTestReader(svc)
	r.SelectTestament(TestamentNew)
	if err := r.SelectBook("john"); err != nil {
		t.Fatalf("SelectBook: %v", err)
	}

	done := make(chan error, 1)
	go func() { done <- r.OpenChapter(context.Background(), 3) }()
	for !r.Snapshot().Loading {
		time.Sleep(time.Millisecond)
	}
	// navigating away orphans the slow fetch
	r.Back()
	close(release)
	if err := <-done; err != nil {
		t.Fatalf("orphaned fetch returned error: %v", err)
	}
	snap := r.Snapshot()
	if snap.Stage != StageBook || len(snap.Verses) != 0 {
		t.Fatalf("stale chapter reply applied: %+v", snap)
	}
}

func TestReaderFailedFetchStaysPutThenRetries(t *testing.T) {
	var calls int32
	svc := &MockContentService{
		ChapterTextFn: func(ctx context.Context, book string, chapter int) ([]Verse, error) {
			if atomic.AddInt32(&calls, 1) == 1 {
				return nil, errors.New("network down")
			}
			return []Verse{{Number: 1, Text: "في البدء"}}, nil
		},
	}
	r := newTestReader(svc)
	r.SelectTestament(TestamentOld)
	if err := r.SelectBook("genesis"); err != nil {
		t.Fatalf("SelectBook: %v", err)
	}
	if err := r.OpenChapter(context.Background(), 1); err == nil {
		t.Fatal("expected the first fetch to fail")
	}
	snap := r.Snapshot()
	if snap.Stage != StageChapter {
		t.Fatalf("failed fetch moved the reader to stage %v", snap.Stage)
	}
	if snap.LoadErr == "" || snap.Loading {
		t.Fatalf("after failure: %+v", snap)
	}

	if err := r.Retry(context.Background()); err != nil {
		t.Fatalf("Retry: %v", err)
	}
	snap = r.Snapshot()
	if snap.Stage != StageReading || len(snap.Verses) != 1 || snap.LoadErr != "" {
		t.Fatalf("after retry: %+v", snap)
	}
}

func TestReaderRetryWithoutChapter(t *testing.T) {
	r := newTestReader(&MockContentService{})
	if err := r.Retry(context.Background()); err == nil {
		t.Fatal("retry before any chapter must fail")
	}
}

func TestReaderChapterPaging(t *testing.T) {
	r := newTestReader(&MockContentService{})
	r.SelectTestament(TestamentNew)
	if err := r.SelectBook("john"); err != nil {
		t.Fatalf("SelectBook: %v", err)
	}
	if err := r.OpenChapter(context.Background(), 1); err != nil {
		t.Fatalf("OpenChapter: %v", err)
	}

	if err := r.NextChapter(context.Background()); err != nil {
		t.Fatalf("NextChapter: %v", err)
	}
	if snap := r.Snapshot(); snap.Chapter != 2 || snap.Stage != StageReading {
		t.Fatalf("after next: %+v", snap)
	}
	if err := r.PreviousChapter(context.Background()); err != nil {
		t.Fatalf("PreviousChapter: %v", err)
	}
	if snap := r.Snapshot(); snap.Chapter != 1 {
		t.Fatalf("after previous: chapter = %d", snap.Chapter)
	}

	// a no-op at the first chapter
	if err := r.PreviousChapter(context.Background()); err != nil {
		t.Fatalf("PreviousChapter at 1: %v", err)
	}
	if snap := r.Snapshot(); snap.Chapter != 1 {
		t.Fatalf("stepped below chapter 1: %d", snap.Chapter)
	}

	// and at the last one
	if err := r.OpenChapter(context.Background(), 21); err != nil {
		t.Fatalf("OpenChapter(21): %v", err)
	}
	if err := r.NextChapter(context.Background()); err != nil {
		t.Fatalf("NextChapter at last: %v", err)
	}
	if snap := r.Snapshot(); snap.Chapter != 21 {
		t.Fatalf("stepped past the last chapter: %d", snap.Chapter)
	}
}

func TestReaderPagingClearsSelection(t *testing.T) {
	r := newTestReader(&MockContentService{})
	r.SelectTestament(TestamentNew)
	if err := r.SelectBook("mark"); err != nil {
		t.Fatalf("SelectBook: %v", err)
	}
	if err := r.OpenChapter(context.Background(), 1); err != nil {
		t.Fatalf("OpenChapter: %v", err)
	}
	r.ToggleVerse(1)
	if err := r.NextChapter(context.Background()); err != nil {
		t.Fatalf("NextChapter: %v", err)
	}
	if snap := r.Snapshot(); len(snap.SelectedVerses) != 0 {
		t.Fatalf("selection survived paging: %v", snap.SelectedVerses)
	}
}

func TestReaderOpenChapterClearsPanelsAndSelection(t *testing.T) {
	r := newTestReader(&MockContentService{})
	r.SelectTestament(TestamentNew)
	if err := r.SelectBook("john"); err != nil {
		t.Fatalf("SelectBook: %v", err)
	}
	if err := r.OpenChapter(context.Background(), 1); err != nil {
		t.Fatalf("OpenChapter: %v", err)
	}
	r.ToggleVerse(1)
	if err := r.OpenPanel(context.Background(), PanelSimplified); err != nil {
		t.Fatalf("OpenPanel: %v", err)
	}
	if err := r.OpenChapter(context.Background(), 2); err != nil {
		t.Fatalf("second OpenChapter: %v", err)
	}
	snap := r.Snapshot()
	if len(snap.SelectedVerses) != 0 {
		t.Fatal("selection survived a chapter change")
	}
	if snap.Panels[PanelSimplified].Text != "" {
		t.Fatal("panel content survived a chapter change")
	}
}

func TestReaderPositionRoundTrip(t *testing.T) {
	r := newTestReader(&MockContentService{})
	if _, ok := r.Position(); ok {
		t.Fatal("position must be absent before reading")
	}
	r.SelectTestament(TestamentOld)
	if err := r.SelectBook("genesis"); err != nil {
		t.Fatalf("SelectBook: %v", err)
	}
	if err := r.OpenChapter(context.Background(), 12); err != nil {
		t.Fatalf("OpenChapter: %v", err)
	}
	pos, ok := r.Position()
	if !ok || pos.BookID != "genesis" || pos.Chapter != 12 {
		t.Fatalf("Position() = %+v, %v", pos, ok)
	}

	r2 := newTestReader(&MockContentService{})
	if err := r2.Restore(context.Background(), pos); err != nil {
		t.Fatalf("Restore: %v", err)
	}
	snap := r2.Snapshot()
	if snap.Stage != StageReading || snap.Book.ID != "genesis" || snap.Chapter != 12 {
		t.Fatalf("restored state: %+v", snap)
	}
}
