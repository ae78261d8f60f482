package app

import (
	"context"
	"fmt"
)

// MockContentService is a ContentService with per-method hooks. Unset hooks
// fall back to small canned replies so the TUI stays usable offline.
type MockContentService struct {
	GenerateLessonIdeasFn   func(ctx context.Context, in LessonInput) (*LessonPlan, error)
	AlternativeIdeaFn       func(ctx context.Context, req AlternativeIdeaRequest) (string, error)
	ExplainIdeaFn           func(ctx context.Context, ideaText string, age AgeGroup) (string, error)
	SuggestedQuestionsFn    func(ctx context.Context, lessonContext string) ([]string, error)
	GameIdeasFn             func(ctx context.Context, req GameRequest) ([]GameIdea, error)
	CurriculumPlanFn        func(ctx context.Context, in CurriculumInput) ([]CurriculumWeek, error)
	ChatFn                  func(ctx context.Context, history []ChatMessage, message string) (string, error)
	ChapterTextFn           func(ctx context.Context, book string, chapter int) ([]Verse, error)
	LinguisticAnalysisFn    func(ctx context.Context, req PassageRequest) ([]AnalysisItem, error)
	InterpretationFn        func(ctx context.Context, req PassageRequest) (string, error)
	SimplifiedExplanationFn func(ctx context.Context, req PassageRequest) (string, error)
}

func (m *MockContentService) GenerateLessonIdeas(ctx context.Context, in LessonInput) (*LessonPlan, error) {
	if m.GenerateLessonIdeasFn != nil {
		return m.GenerateLessonIdeasFn(ctx, in)
	}
	plan := &LessonPlan{Sections: make(map[string][]Idea, len(SectionOrder))}
	for _, key := range SectionOrder {
		n := 3
		if key == SectionVerseGame {
			n = 1
		}
		for i := 1; i <= n; i++ {
			plan.Sections[key] = append(plan.Sections[key], Idea{
				ID:   fmt.Sprintf("%s-%d", key, i),
				Text: fmt.Sprintf("فكرة تجريبية %d لقسم %s حول %s", i, SectionTitles[key], in.Title),
			})
		}
	}
	return plan, nil
}

func (m *MockContentService) AlternativeIdea(ctx context.Context, req AlternativeIdeaRequest) (string, error) {
	if m.AlternativeIdeaFn != nil {
		return m.AlternativeIdeaFn(ctx, req)
	}
	return "فكرة بديلة تجريبية لقسم " + req.SectionTitle, nil
}

func (m *MockContentService) ExplainIdea(ctx context.Context, ideaText string, age AgeGroup) (string, error) {
	if m.ExplainIdeaFn != nil {
		return m.ExplainIdeaFn(ctx, ideaText, age)
	}
	return "العنصر الأول: تمهيد\nشرح تجريبي للفكرة.\n\nالمراجع: لا توجد", nil
}

func (m *MockContentService) SuggestedQuestions(ctx context.Context, lessonContext string) ([]string, error) {
	if m.SuggestedQuestionsFn != nil {
		return m.SuggestedQuestionsFn(ctx, lessonContext)
	}
	return []string{"ما الذي تعلمناه اليوم؟", "كيف نطبق الدرس في حياتنا؟"}, nil
}

func (m *MockContentService) GameIdeas(ctx context.Context, req GameRequest) ([]GameIdea, error) {
	if m.GameIdeasFn != nil {
		return m.GameIdeasFn(ctx, req)
	}
	return []GameIdea{{Title: "لعبة تجريبية", Description: "وصف اللعبة", Rules: "قواعد اللعبة"}}, nil
}

func (m *MockContentService) CurriculumPlan(ctx context.Context, in CurriculumInput) ([]CurriculumWeek, error) {
	if m.CurriculumPlanFn != nil {
		return m.CurriculumPlanFn(ctx, in)
	}
	weeks := make([]CurriculumWeek, 0, in.DurationWeeks)
	for i := 1; i <= in.DurationWeeks; i++ {
		weeks = append(weeks, CurriculumWeek{
			Week:     i,
			Title:    fmt.Sprintf("الأسبوع %d: %s", i, in.Objective),
			Focus:    "محور تجريبي",
			Activity: "نشاط تجريبي",
			Verse:    "يوحنا ٣: ١٦",
		})
	}
	return weeks, nil
}

func (m *MockContentService) Chat(ctx context.Context, history []ChatMessage, message string) (string, error) {
	if m.ChatFn != nil {
		return m.ChatFn(ctx, history, message)
	}
	return "إجابة تجريبية من أقوال الآباء.", nil
}

func (m *MockContentService) ChapterText(ctx context.Context, book string, chapter int) ([]Verse, error) {
	if m.ChapterTextFn != nil {
		return m.ChapterTextFn(ctx, book, chapter)
	}
	return []Verse{
		{Number: 1, Text: fmt.Sprintf("الآية الأولى من %s %d.", book, chapter)},
		{Number: 2, Text: "الآية الثانية."},
	}, nil
}

func (m *MockContentService) LinguisticAnalysis(ctx context.Context, req PassageRequest) ([]AnalysisItem, error) {
	if m.LinguisticAnalysisFn != nil {
		return m.LinguisticAnalysisFn(ctx, req)
	}
	return []AnalysisItem{{VerseNumber: 1, ArabicWord: "البدء", OriginalWord: "ἀρχή", Explanation: "شرح تجريبي"}}, nil
}

func (m *MockContentService) Interpretation(ctx context.Context, req PassageRequest) (string, error) {
	if m.InterpretationFn != nil {
		return m.InterpretationFn(ctx, req)
	}
	return "تفسير آبائي تجريبي.", nil
}

func (m *MockContentService) SimplifiedExplanation(ctx context.Context, req PassageRequest) (string, error) {
	if m.SimplifiedExplanationFn != nil {
		return m.SimplifiedExplanationFn(ctx, req)
	}
	return "شرح مبسط تجريبي.", nil
}

var _ ContentService = (*MockContentService)(nil)
