package app

import "context"

// Age groups as fixed Arabic labels. The generator prompts are tuned per
// group, so the set is closed.
type AgeGroup string

const (
	AgePrimary     AgeGroup = "ابتدائي"
	AgePreparatory AgeGroup = "اعدادي"
	AgeSecondary   AgeGroup = "ثانوي"
	AgeYouth       AgeGroup = "شباب"
	AgeGraduates   AgeGroup = "خريجين"
)

// AgeGroups lists the selectable labels in display order.
var AgeGroups = []AgeGroup{AgePrimary, AgePreparatory, AgeSecondary, AgeYouth, AgeGraduates}

// ImageAttachment is a base64 payload plus its MIME type, attached to a
// lesson request so the model can draw on classroom photos or worksheets.
type ImageAttachment struct {
	Data     string `json:"data"`
	MIMEType string `json:"mimeType"`
}

// LessonInput collects the two-step lesson form. Title and Objective are
// required; everything else is optional.
type LessonInput struct {
	Title          string
	Objective      string
	ScriptureVerse string
	AgeGroup       AgeGroup
	Images         []ImageAttachment
}

// AlternativeIdeaRequest asks for a replacement for one idea. Existing
// sibling texts ride along so the model avoids duplicates.
type AlternativeIdeaRequest struct {
	Lesson       LessonInput
	SectionTitle string
	CurrentText  string
	Existing     []string
}

// GameRequest carries the game-bank form fields, all free text.
type GameRequest struct {
	Count string
	Place string
	Tools string
	Goal  string
}

type GameIdea struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Rules       string `json:"rules"`
}

// CurriculumInput plans a multi-week series around one spiritual objective.
type CurriculumInput struct {
	Objective     string
	DurationWeeks int
	AgeGroup      AgeGroup
	Notes         string
}

type CurriculumWeek struct {
	Week     int    `json:"week"`
	Title    string `json:"title"`
	Focus    string `json:"focus"`
	Activity string `json:"activity"`
	Verse    string `json:"verse"`
}

// Chat roles. Transcripts alternate user/model and are append-only.
const (
	RoleUser  = "user"
	RoleModel = "model"
)

type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type Verse struct {
	Number int    `json:"number"`
	Text   string `json:"text"`
}

// AnalysisItem maps one Arabic word back to its Hebrew or Greek original.
type AnalysisItem struct {
	VerseNumber  int    `json:"verseNumber"`
	ArabicWord   string `json:"arabicWord"`
	OriginalWord string `json:"originalWord"`
	Explanation  string `json:"explanation"`
}

// PassageRequest scopes an enrichment call to a chapter and, optionally, a
// verse subset. An empty Verses slice means the whole chapter.
type PassageRequest struct {
	Book      string
	Chapter   int
	Testament Testament
	Verses    []int
}

// ContentService is the remote generation boundary. One method per
// operation the studio performs; every implementation returns already
// normalized values (dual-shape lesson payloads never leak past here).
type ContentService interface {
	GenerateLessonIdeas(ctx context.Context, in LessonInput) (*LessonPlan, error)
	AlternativeIdea(ctx context.Context, req AlternativeIdeaRequest) (string, error)
	ExplainIdea(ctx context.Context, ideaText string, age AgeGroup) (string, error)
	SuggestedQuestions(ctx context.Context, lessonContext string) ([]string, error)
	GameIdeas(ctx context.Context, req GameRequest) ([]GameIdea, error)
	CurriculumPlan(ctx context.Context, in CurriculumInput) ([]CurriculumWeek, error)
	Chat(ctx context.Context, history []ChatMessage, message string) (string, error)
	ChapterText(ctx context.Context, book string, chapter int) ([]Verse, error)
	LinguisticAnalysis(ctx context.Context, req PassageRequest) ([]AnalysisItem, error)
	Interpretation(ctx context.Context, req PassageRequest) (string, error)
	SimplifiedExplanation(ctx context.Context, req PassageRequest) (string, error)
}
