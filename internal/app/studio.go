package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/charmbracelet/log"
)

// Tool identifies the workspace surfaces reachable from the dashboard.
type Tool string

const (
	ToolLesson     Tool = "lesson"
	ToolGames      Tool = "games"
	ToolChat       Tool = "chat"
	ToolBible      Tool = "bible"
	ToolCurriculum Tool = "curriculum"
)

// Tools lists the dashboard entries in display order.
var Tools = []Tool{ToolLesson, ToolGames, ToolChat, ToolBible, ToolCurriculum}

// ArabicName returns the dashboard label for the tool.
func (t Tool) ArabicName() string {
	switch t {
	case ToolLesson:
		return "مساعد إعداد الدرس"
	case ToolGames:
		return "بنك الألعاب"
	case ToolChat:
		return "اسأل الآباء"
	case ToolBible:
		return "قراءة الكتاب المقدس"
	case ToolCurriculum:
		return "بناء منهج"
	}
	return string(t)
}

// WizardStep is the lesson form step.
type WizardStep int

const (
	StepBasics WizardStep = iota
	StepDetails
)

// IdeaExplanation is the detail pane of one elaborated idea.
type IdeaExplanation struct {
	IdeaID  string
	Loading bool
	Err     string
	Parsed  LessonExplanation
	Raw     string
}

// Studio owns the generation state behind the dashboard tools. All
// exported methods are safe to call from tea.Cmd goroutines; each async
// flow carries a generation counter so a reply that arrives after a
// reset or resubmit is dropped instead of cancelled.
type Studio struct {
	mu  sync.Mutex
	svc ContentService
	lib Library
	log *log.Logger

	tool Tool
	step WizardStep

	// lesson flow
	lesson      LessonInput
	plan        *LessonPlan
	planLoading bool
	planErr     string
	planGen     uint64
	// per-idea regeneration flags, replaced copy-on-write so snapshots
	// can hand the map out without copying under the idea count
	ideaLoading map[string]bool
	explanation IdeaExplanation
	explainGen  uint64
	questions   []string
	questionsOn bool
	questionGen uint64

	// game bank flow
	games        []GameIdea
	gameReq      GameRequest
	gamesLoading bool
	gamesErr     string
	gamesGen     uint64

	// curriculum flow
	curriculum  []CurriculumWeek
	currIn      CurriculumInput
	currLoading bool
	currErr     string
	currGen     uint64
}

// StudioSnapshot is a deep copy of studio state for rendering.
type StudioSnapshot struct {
	Tool Tool
	Step WizardStep

	Lesson      LessonInput
	Plan        *LessonPlan
	PlanLoading bool
	PlanErr     string
	IdeaLoading map[string]bool
	Explanation IdeaExplanation
	Questions   []string
	QuestionsOn bool

	Games        []GameIdea
	GameReq      GameRequest
	GamesLoading bool
	GamesErr     string

	Curriculum  []CurriculumWeek
	CurrIn      CurriculumInput
	CurrLoading bool
	CurrErr     string
}

func NewStudio(svc ContentService, lib Library, logger *log.Logger) *Studio {
	return &Studio{
		svc:         svc,
		lib:         lib,
		log:         logger,
		ideaLoading: map[string]bool{},
	}
}

// SelectTool switches the active surface. Every per-tool result is
// cleared and the wizard rewinds to its first step; bumping the
// generation counters orphans whatever the previous tool still has in
// flight.
func (s *Studio) SelectTool(t Tool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.clearFlowsLocked()
	s.tool = t
}

// ResetAll returns to the dashboard and clears every flow.
func (s *Studio) ResetAll() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.clearFlowsLocked()
	s.tool = ""
}

// clearFlowsLocked drops all per-tool state and orphans in-flight
// replies. Callers hold s.mu.
func (s *Studio) clearFlowsLocked() {
	s.step = StepBasics
	s.lesson = LessonInput{}
	s.plan = nil
	s.planLoading = false
	s.planErr = ""
	s.planGen++
	s.ideaLoading = map[string]bool{}
	s.explanation = IdeaExplanation{}
	s.explainGen++
	s.questions = nil
	s.questionsOn = false
	s.questionGen++
	s.games = nil
	s.gameReq = GameRequest{}
	s.gamesLoading = false
	s.gamesErr = ""
	s.gamesGen++
	s.curriculum = nil
	s.currIn = CurriculumInput{}
	s.currLoading = false
	s.currErr = ""
	s.currGen++
}

// SetWizardStep moves the lesson form between its two steps.
func (s *Studio) SetWizardStep(step WizardStep) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.step = step
}

// SubmitLesson validates the form and generates a fresh plan. The
// previous plan stays visible until the reply lands.
func (s *Studio) SubmitLesson(ctx context.Context, in LessonInput) error {
	if err := ValidateLessonInput(in); err != nil {
		s.mu.Lock()
		s.planErr = err.Error()
		s.mu.Unlock()
		return err
	}
	s.mu.Lock()
	s.lesson = in
	s.planLoading = true
	s.planErr = ""
	s.planGen++
	gen := s.planGen
	s.mu.Unlock()

	plan, err := s.svc.GenerateLessonIdeas(ctx, in)

	s.mu.Lock()
	if gen != s.planGen {
		s.mu.Unlock()
		return nil
	}
	s.planLoading = false
	if err != nil {
		s.log.Error("lesson generation failed", "title", in.Title, "err", err)
		s.planErr = "حدث خطأ"
		s.step = StepBasics
		s.mu.Unlock()
		return err
	}
	s.plan = plan
	s.ideaLoading = map[string]bool{}
	s.explanation = IdeaExplanation{}
	s.questions = nil
	s.mu.Unlock()

	// best effort: a failed preload is logged inside and never fails
	// the submission itself
	_ = s.FetchQuestions(ctx)
	return nil
}

// ToggleIdeaSelection flips the selected mark of one idea.
func (s *Studio) ToggleIdeaSelection(ideaID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.plan == nil {
		return
	}
	if sec, i, ok := s.plan.Find(ideaID); ok {
		s.plan.Sections[sec][i].Selected = !s.plan.Sections[sec][i].Selected
	}
}

// RegenerateIdea replaces one idea with an alternative. Other ideas stay
// untouched, so several regenerations can run concurrently; a reply for
// a plan that was since replaced is dropped.
func (s *Studio) RegenerateIdea(ctx context.Context, ideaID string) error {
	s.mu.Lock()
	if s.plan == nil {
		s.mu.Unlock()
		return errors.New("no plan")
	}
	sec, i, ok := s.plan.Find(ideaID)
	if !ok {
		s.mu.Unlock()
		return fmt.Errorf("unknown idea %q", ideaID)
	}
	if s.ideaLoading[ideaID] {
		s.mu.Unlock()
		return nil
	}
	req := AlternativeIdeaRequest{
		Lesson:       s.lesson,
		SectionTitle: SectionTitles[sec],
		CurrentText:  s.plan.Sections[sec][i].Text,
	}
	for _, sib := range s.plan.Sections[sec] {
		if sib.ID != ideaID {
			req.Existing = append(req.Existing, sib.Text)
		}
	}
	s.setIdeaLoading(ideaID, true)
	gen := s.planGen
	s.mu.Unlock()

	text, err := s.svc.AlternativeIdea(ctx, req)

	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != s.planGen {
		return nil
	}
	s.setIdeaLoading(ideaID, false)
	if err != nil {
		// no user-facing error here: the old text stays visible
		s.log.Error("idea regeneration failed", "idea", ideaID, "err", err)
		return err
	}
	// only the text changes; the id and the selected mark survive
	if sec, i, ok := s.plan.Find(ideaID); ok {
		s.plan.Sections[sec][i].Text = strings.TrimSpace(text)
	}
	return nil
}

// setIdeaLoading replaces the side table copy-on-write. Callers hold s.mu.
func (s *Studio) setIdeaLoading(ideaID string, v bool) {
	next := make(map[string]bool, len(s.ideaLoading)+1)
	for k, b := range s.ideaLoading {
		next[k] = b
	}
	if v {
		next[ideaID] = true
	} else {
		delete(next, ideaID)
	}
	s.ideaLoading = next
}

// ExplainIdea elaborates one idea into practical steps.
func (s *Studio) ExplainIdea(ctx context.Context, ideaID string) error {
	s.mu.Lock()
	if s.plan == nil {
		s.mu.Unlock()
		return errors.New("no plan")
	}
	sec, i, ok := s.plan.Find(ideaID)
	if !ok {
		s.mu.Unlock()
		return fmt.Errorf("unknown idea %q", ideaID)
	}
	text := s.plan.Sections[sec][i].Text
	age := s.lesson.AgeGroup
	s.explanation = IdeaExplanation{IdeaID: ideaID, Loading: true}
	s.explainGen++
	gen := s.explainGen
	s.mu.Unlock()

	raw, err := s.svc.ExplainIdea(ctx, text, age)

	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != s.explainGen {
		return nil
	}
	if err != nil {
		s.log.Error("idea explanation failed", "idea", ideaID, "err", err)
		s.explanation = IdeaExplanation{IdeaID: ideaID, Err: "حدث خطأ"}
		return err
	}
	s.explanation = IdeaExplanation{IdeaID: ideaID, Raw: raw, Parsed: ParseLessonExplanation(raw)}
	return nil
}

// CloseExplanation drops the detail pane.
func (s *Studio) CloseExplanation() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.explanation = IdeaExplanation{}
	s.explainGen++
}

// FetchQuestions loads discussion questions for the current lesson.
func (s *Studio) FetchQuestions(ctx context.Context) error {
	s.mu.Lock()
	if s.plan == nil {
		s.mu.Unlock()
		return errors.New("no plan")
	}
	// the flattened lesson body is the richest context when present
	lessonCtx := s.plan.Body
	if lessonCtx == "" {
		lessonCtx = fmt.Sprintf("%s — %s", s.lesson.Title, s.lesson.Objective)
	}
	s.questionsOn = true
	s.questionGen++
	gen := s.questionGen
	s.mu.Unlock()

	qs, err := s.svc.SuggestedQuestions(ctx, lessonCtx)

	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != s.questionGen {
		return nil
	}
	s.questionsOn = false
	if err != nil {
		s.log.Error("question suggestion failed", "err", err)
		return err
	}
	s.questions = qs
	return nil
}

// SubmitGames runs the game-bank request.
func (s *Studio) SubmitGames(ctx context.Context, req GameRequest) error {
	s.mu.Lock()
	s.gameReq = req
	s.gamesLoading = true
	s.gamesErr = ""
	s.gamesGen++
	gen := s.gamesGen
	s.mu.Unlock()

	games, err := s.svc.GameIdeas(ctx, req)

	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != s.gamesGen {
		return nil
	}
	s.gamesLoading = false
	if err != nil {
		s.log.Error("game generation failed", "err", err)
		s.gamesErr = "حدث خطأ"
		return err
	}
	s.games = games
	return nil
}

// ValidateCurriculumInput enforces the curriculum form constraints:
// a 3 to 6 week span and an objective of at least five letters.
func ValidateCurriculumInput(in CurriculumInput) error {
	if in.DurationWeeks < 3 || in.DurationWeeks > 6 {
		return errors.New("مدة المنهج يجب أن تكون من ٣ إلى ٦ أسابيع.")
	}
	if utf8.RuneCountInString(strings.TrimSpace(in.Objective)) < 5 {
		return errors.New("من فضلك اكتب هدفاً روحياً أوضح.")
	}
	return nil
}

// SubmitCurriculum validates and runs the curriculum request.
func (s *Studio) SubmitCurriculum(ctx context.Context, in CurriculumInput) error {
	if err := ValidateCurriculumInput(in); err != nil {
		s.mu.Lock()
		s.currErr = err.Error()
		s.mu.Unlock()
		return err
	}
	s.mu.Lock()
	s.currIn = in
	s.currLoading = true
	s.currErr = ""
	s.currGen++
	gen := s.currGen
	s.mu.Unlock()

	weeks, err := s.svc.CurriculumPlan(ctx, in)

	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != s.currGen {
		return nil
	}
	s.currLoading = false
	if err != nil {
		s.log.Error("curriculum generation failed", "err", err)
		s.currErr = "حدث خطأ"
		return err
	}
	s.curriculum = weeks
	return nil
}

// savedLesson is the library payload for a saved lesson.
type savedLesson struct {
	Input    LessonInput       `json:"input"`
	Selected map[string][]Idea `json:"selected"`
}

// SaveLesson stores the lesson input plus its selected ideas.
func (s *Studio) SaveLesson() (*SavedItem, error) {
	s.mu.Lock()
	if s.plan == nil {
		s.mu.Unlock()
		return nil, errors.New("no plan to save")
	}
	payload := savedLesson{Input: s.lesson, Selected: s.plan.SelectedIdeas()}
	title := s.lesson.Title
	s.mu.Unlock()

	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	item := &SavedItem{Type: ItemLesson, Title: title, Payload: raw}
	if err := s.lib.SaveItem(item); err != nil {
		s.log.Error("lesson save failed", "title", title, "err", err)
		return nil, err
	}
	return item, nil
}

// SaveGames stores the current game-bank results.
func (s *Studio) SaveGames(title string) (*SavedItem, error) {
	s.mu.Lock()
	games := append([]GameIdea(nil), s.games...)
	s.mu.Unlock()
	if len(games) == 0 {
		return nil, errors.New("no games to save")
	}
	return s.saveJSON(ItemGames, title, games)
}

// SaveCurriculum stores the current curriculum plan.
func (s *Studio) SaveCurriculum(title string) (*SavedItem, error) {
	s.mu.Lock()
	weeks := append([]CurriculumWeek(nil), s.curriculum...)
	s.mu.Unlock()
	if len(weeks) == 0 {
		return nil, errors.New("no curriculum to save")
	}
	return s.saveJSON(ItemCurriculum, title, weeks)
}

// SaveContent stores arbitrary generated text (an explanation, an
// interpretation) under a title.
func (s *Studio) SaveContent(title, body string) (*SavedItem, error) {
	if strings.TrimSpace(body) == "" {
		return nil, errors.New("nothing to save")
	}
	return s.saveJSON(ItemContent, title, map[string]string{"body": body})
}

func (s *Studio) saveJSON(typ SavedItemType, title string, v any) (*SavedItem, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	item := &SavedItem{Type: typ, Title: title, Payload: raw}
	if err := s.lib.SaveItem(item); err != nil {
		s.log.Error("item save failed", "type", typ, "err", err)
		return nil, err
	}
	return item, nil
}

// Snapshot deep-copies the studio state for rendering.
func (s *Studio) Snapshot() StudioSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return StudioSnapshot{
		Tool:         s.tool,
		Step:         s.step,
		Lesson:       s.lesson,
		Plan:         s.plan.Clone(),
		PlanLoading:  s.planLoading,
		PlanErr:      s.planErr,
		IdeaLoading:  s.ideaLoading,
		Explanation:  s.explanation,
		Questions:    append([]string(nil), s.questions...),
		QuestionsOn:  s.questionsOn,
		Games:        append([]GameIdea(nil), s.games...),
		GameReq:      s.gameReq,
		GamesLoading: s.gamesLoading,
		GamesErr:     s.gamesErr,
		Curriculum:   append([]CurriculumWeek(nil), s.curriculum...),
		CurrIn:       s.currIn,
		CurrLoading:  s.currLoading,
		CurrErr:      s.currErr,
	}
}
