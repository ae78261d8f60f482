package app

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/charmbracelet/log"
)

// ReaderStage is the navigation depth of the Bible reader.
type ReaderStage int

const (
	StageTestament ReaderStage = iota
	StageBook
	StageChapter
	StageReading
)

// PanelKind names the three enrichment panels attached to a passage.
type PanelKind string

const (
	PanelAnalysis       PanelKind = "analysis"
	PanelInterpretation PanelKind = "interpretation"
	PanelSimplified     PanelKind = "simplified"
)

// PanelState is a UI snapshot of one enrichment panel.
type PanelState struct {
	Loading  bool
	Err      string
	Text     string         // interpretation / simplified
	Analysis []AnalysisItem // analysis panel only
}

type panel struct {
	state PanelState
	gen   uint64
	// whole-chapter results are cached so reopening the panel without a
	// verse selection costs nothing
	cachedText     string
	cachedAnalysis []AnalysisItem
	hasCache       bool
}

// Reader drives the testament→book→chapter→reading navigation and the
// enrichment panels. All exported methods are safe to call from tea.Cmd
// goroutines; blocking ones take a context and discard stale replies via
// per-flow generation counters.
type Reader struct {
	mu  sync.Mutex
	svc ContentService
	log *log.Logger

	stage     ReaderStage
	testament Testament
	book      BibleBook
	chapter   int

	verses     []Verse
	loading    bool
	loadErr    string
	chapterGen uint64

	selected map[int]bool
	panels   map[PanelKind]*panel
}

// ReaderSnapshot is a copy of reader state for rendering.
type ReaderSnapshot struct {
	Stage          ReaderStage
	Testament      Testament
	Book           BibleBook
	Chapter        int
	Verses         []Verse
	Loading        bool
	LoadErr        string
	SelectedVerses []int
	Panels         map[PanelKind]PanelState
	ManuscriptURL  string
}

func NewReader(svc ContentService, logger *log.Logger) *Reader {
	return &Reader{
		svc:      svc,
		log:      logger,
		selected: make(map[int]bool),
		panels:   newPanels(),
	}
}

func newPanels() map[PanelKind]*panel {
	return map[PanelKind]*panel{
		PanelAnalysis:       {},
		PanelInterpretation: {},
		PanelSimplified:     {},
	}
}

// SelectTestament moves to book selection.
func (r *Reader) SelectTestament(t Testament) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.testament = t
	r.stage = StageBook
}

// SelectBook moves to chapter selection.
func (r *Reader) SelectBook(id string) error {
	book, ok := BookByID(id)
	if !ok {
		return fmt.Errorf("unknown book %q", id)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.book = book
	r.testament = book.Testament
	r.stage = StageChapter
	return nil
}

// OpenChapter fetches the chapter text and, once it lands, enters the
// reading stage; a failed fetch leaves the reader where it was, with an
// error to show next to a retry affordance. Any previous selection and
// panel content is cleared first; a reply that arrives after another
// navigation is dropped.
func (r *Reader) OpenChapter(ctx context.Context, chapter int) error {
	r.mu.Lock()
	if r.stage < StageChapter {
		r.mu.Unlock()
		return errors.New("no book selected")
	}
	if chapter < 1 || chapter > r.book.Chapters {
		r.mu.Unlock()
		return fmt.Errorf("%s has %d chapters", r.book.Name, r.book.Chapters)
	}
	r.chapter = chapter
	r.verses = nil
	r.loading = true
	r.loadErr = ""
	r.selected = make(map[int]bool)
	r.panels = newPanels()
	r.chapterGen++
	gen := r.chapterGen
	book := r.book
	r.mu.Unlock()

	verses, err := r.svc.ChapterText(ctx, book.Name, chapter)

	r.mu.Lock()
	defer r.mu.Unlock()
	if gen != r.chapterGen {
		return nil
	}
	r.loading = false
	if err != nil {
		r.log.Error("chapter fetch failed", "book", book.ID, "chapter", chapter, "err", err)
		r.loadErr = "حدث خطأ"
		return err
	}
	r.verses = verses
	r.stage = StageReading
	return nil
}

// NextChapter opens the following chapter; a no-op at the last one.
func (r *Reader) NextChapter(ctx context.Context) error {
	return r.stepChapter(ctx, 1)
}

// PreviousChapter opens the preceding chapter; a no-op at chapter 1.
func (r *Reader) PreviousChapter(ctx context.Context) error {
	return r.stepChapter(ctx, -1)
}

func (r *Reader) stepChapter(ctx context.Context, delta int) error {
	r.mu.Lock()
	if r.stage != StageReading {
		r.mu.Unlock()
		return errors.New("no chapter open")
	}
	chapter := r.chapter + delta
	last := r.book.Chapters
	r.mu.Unlock()
	if chapter < 1 || chapter > last {
		return nil
	}
	return r.OpenChapter(ctx, chapter)
}

// Retry repeats the last chapter fetch after a failure.
func (r *Reader) Retry(ctx context.Context) error {
	r.mu.Lock()
	stage, chapter := r.stage, r.chapter
	r.mu.Unlock()
	if stage < StageChapter || chapter < 1 {
		return errors.New("nothing to retry")
	}
	return r.OpenChapter(ctx, chapter)
}

// Back pops one navigation level.
func (r *Reader) Back() {
	r.mu.Lock()
	defer r.mu.Unlock()
	switch r.stage {
	case StageReading:
		r.stage = StageChapter
		r.chapterGen++ // orphan any in-flight fetch
		r.verses = nil
		r.loading = false
		r.loadErr = ""
		r.selected = make(map[int]bool)
		r.panels = newPanels()
	case StageChapter:
		r.stage = StageBook
		r.chapterGen++ // a fetch may be pending from this stage too
		r.loading = false
		r.loadErr = ""
	case StageBook:
		r.stage = StageTestament
	}
}

// ToggleVerse flips a verse in or out of the selection. Only verses of
// the loaded chapter are accepted.
func (r *Reader) ToggleVerse(n int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.stage != StageReading {
		return
	}
	found := false
	for _, v := range r.verses {
		if v.Number == n {
			found = true
			break
		}
	}
	if !found {
		return
	}
	if r.selected[n] {
		delete(r.selected, n)
	} else {
		r.selected[n] = true
	}
}

// ClearSelection drops the verse selection.
func (r *Reader) ClearSelection() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.selected = make(map[int]bool)
}

// OpenPanel fetches one enrichment panel for the current passage. A
// whole-chapter request reuses the cached result when one exists; a
// request with a verse selection always refetches.
func (r *Reader) OpenPanel(ctx context.Context, kind PanelKind) error {
	r.mu.Lock()
	p, ok := r.panels[kind]
	if !ok || r.stage != StageReading {
		r.mu.Unlock()
		return errors.New("no passage open")
	}
	sel := r.selectedSorted()
	if len(sel) == 0 && p.hasCache {
		p.state = PanelState{Text: p.cachedText, Analysis: p.cachedAnalysis}
		r.mu.Unlock()
		return nil
	}
	p.state = PanelState{Loading: true}
	p.gen++
	gen := p.gen
	req := PassageRequest{Book: r.book.Name, Chapter: r.chapter, Testament: r.book.Testament, Verses: sel}
	r.mu.Unlock()

	var (
		text     string
		analysis []AnalysisItem
		err      error
	)
	switch kind {
	case PanelAnalysis:
		analysis, err = r.svc.LinguisticAnalysis(ctx, req)
	case PanelInterpretation:
		text, err = r.svc.Interpretation(ctx, req)
	case PanelSimplified:
		text, err = r.svc.SimplifiedExplanation(ctx, req)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if p != r.panels[kind] || gen != p.gen {
		return nil
	}
	if err != nil {
		r.log.Error("panel fetch failed", "panel", kind, "err", err)
		p.state = PanelState{Err: "حدث خطأ"}
		return err
	}
	p.state = PanelState{Text: text, Analysis: analysis}
	if len(req.Verses) == 0 {
		p.cachedText = text
		p.cachedAnalysis = analysis
		p.hasCache = true
	}
	return nil
}

func (r *Reader) selectedSorted() []int {
	out := make([]int, 0, len(r.selected))
	for n := range r.selected {
		out = append(out, n)
	}
	sort.Ints(out)
	return out
}

// Snapshot copies the reader state for rendering.
func (r *Reader) Snapshot() ReaderSnapshot {
	r.mu.Lock()
	defer r.mu.Unlock()
	snap := ReaderSnapshot{
		Stage:          r.stage,
		Testament:      r.testament,
		Book:           r.book,
		Chapter:        r.chapter,
		Verses:         append([]Verse(nil), r.verses...),
		Loading:        r.loading,
		LoadErr:        r.loadErr,
		SelectedVerses: r.selectedSorted(),
		Panels:         make(map[PanelKind]PanelState, len(r.panels)),
	}
	for k, p := range r.panels {
		st := p.state
		st.Analysis = append([]AnalysisItem(nil), st.Analysis...)
		snap.Panels[k] = st
	}
	if r.stage == StageReading {
		if url, ok := ManuscriptLink(r.book.ID, r.chapter); ok {
			snap.ManuscriptURL = url
		}
	}
	return snap
}

// Position returns the current reading position for persistence, or
// false when no chapter is open.
func (r *Reader) Position() (BibleReadingPosition, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.stage != StageReading {
		return BibleReadingPosition{}, false
	}
	return BibleReadingPosition{BookID: r.book.ID, Chapter: r.chapter}, true
}

// Restore jumps straight to a saved reading position and fetches it.
func (r *Reader) Restore(ctx context.Context, pos BibleReadingPosition) error {
	if err := r.SelectBook(pos.BookID); err != nil {
		return err
	}
	return r.OpenChapter(ctx, pos.Chapter)
}

// BibleReadingPosition is a persisted bookmark.
type BibleReadingPosition struct {
	BookID  string `json:"bookId"`
	Chapter int    `json:"chapter"`
}
