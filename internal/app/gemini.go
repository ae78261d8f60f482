package app

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/log"
)

// GeminiClient implements ContentService against the Gemini REST API.
// Calls are single-shot: a failed request surfaces to the caller as-is,
// there is no retry layer.
type GeminiClient struct {
	apiKey    string
	baseURL   string
	model     string
	maxTokens int
	http      *http.Client
	log       *log.Logger
}

type geminiRequest struct {
	Contents          []geminiContent   `json:"contents"`
	SystemInstruction *geminiContent    `json:"systemInstruction,omitempty"`
	GenerationConfig  *geminiGenConfig  `json:"generationConfig,omitempty"`
}

type geminiContent struct {
	Role  string       `json:"role,omitempty"`
	Parts []geminiPart `json:"parts"`
}

type geminiPart struct {
	Text       string            `json:"text,omitempty"`
	InlineData *geminiInlineData `json:"inlineData,omitempty"`
}

type geminiInlineData struct {
	MIMEType string `json:"mimeType"`
	Data     string `json:"data"`
}

type geminiGenConfig struct {
	MaxOutputTokens  int            `json:"maxOutputTokens,omitempty"`
	Temperature      float64        `json:"temperature,omitempty"`
	ResponseMIMEType string         `json:"responseMimeType,omitempty"`
	ResponseSchema   map[string]any `json:"responseSchema,omitempty"`
}

type geminiResponse struct {
	Candidates []struct {
		Content struct {
			Parts []struct {
				Text string `json:"text"`
			} `json:"parts"`
		} `json:"content"`
		FinishReason string `json:"finishReason"`
	} `json:"candidates"`
	Error *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Status  string `json:"status"`
	} `json:"error,omitempty"`
}

// NewGeminiClient builds a client from the loaded config. SPARK_SKIP_TLS_VERIFY
// relaxes certificate checks for container environments.
func NewGeminiClient(cfg *Config, logger *log.Logger) *GeminiClient {
	httpClient := &http.Client{Timeout: 120 * time.Second}
	if v := os.Getenv("SPARK_SKIP_TLS_VERIFY"); v == "1" || v == "true" {
		httpClient.Transport = &http.Transport{
			TLSClientConfig: &tls.Config{InsecureSkipVerify: true},
		}
	}
	return &GeminiClient{
		apiKey:    cfg.GeminiAPIKey,
		baseURL:   cfg.BaseURL,
		model:     cfg.Model,
		maxTokens: cfg.MaxOutputTokens,
		http:      httpClient,
		log:       logger,
	}
}

func (c *GeminiClient) generate(ctx context.Context, req geminiRequest) (string, error) {
	if c.apiKey == "" {
		return "", errors.New("gemini api key is required")
	}
	payload, err := json.Marshal(req)
	if err != nil {
		return "", err
	}
	url := fmt.Sprintf("%s/models/%s:generateContent?key=%s", strings.TrimRight(c.baseURL, "/"), c.model, c.apiKey)
	request, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return "", err
	}
	request.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := c.http.Do(request)
	if err != nil {
		// the key rides in the URL, keep it out of the error chain
		return "", fmt.Errorf("api request failed: %s", RedactSecrets(err.Error(), c.apiKey))
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response: %w", err)
	}
	c.log.Debug("gemini call", "model", c.model, "status", resp.StatusCode, "dur", time.Since(start))

	var parsed geminiResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", fmt.Errorf("invalid api response: status %d: %s", resp.StatusCode, truncate(string(body), 300))
	}
	if parsed.Error != nil {
		return "", fmt.Errorf("gemini api error: status %s: %s", parsed.Error.Status, parsed.Error.Message)
	}
	if resp.StatusCode >= 300 {
		return "", fmt.Errorf("gemini api error: status %d: %s", resp.StatusCode, truncate(string(body), 300))
	}
	for _, cand := range parsed.Candidates {
		var sb strings.Builder
		for _, part := range cand.Content.Parts {
			sb.WriteString(part.Text)
		}
		if sb.Len() > 0 {
			return sb.String(), nil
		}
	}
	return "", errors.New("gemini api returned no content")
}

// generateJSON runs a structured-output call and decodes the reply into out.
func (c *GeminiClient) generateJSON(ctx context.Context, system string, contents []geminiContent, schema map[string]any, out any) error {
	text, err := c.generate(ctx, geminiRequest{
		Contents:          contents,
		SystemInstruction: systemContent(system),
		GenerationConfig: &geminiGenConfig{
			MaxOutputTokens:  c.maxTokens,
			ResponseMIMEType: "application/json",
			ResponseSchema:   schema,
		},
	})
	if err != nil {
		return err
	}
	if err := json.Unmarshal([]byte(stripCodeFence(text)), out); err != nil {
		return fmt.Errorf("decode structured reply: %w", err)
	}
	return nil
}

func systemContent(text string) *geminiContent {
	if text == "" {
		return nil
	}
	return &geminiContent{Parts: []geminiPart{{Text: text}}}
}

func userContent(parts ...geminiPart) []geminiContent {
	return []geminiContent{{Role: RoleUser, Parts: parts}}
}

// stripCodeFence removes a surrounding ```json fence if the model added one
// despite the response mime type.
func stripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}

// --- schemas ---

func str() map[string]any  { return map[string]any{"type": "STRING"} }
func num() map[string]any  { return map[string]any{"type": "INTEGER"} }
func arr(item map[string]any) map[string]any {
	return map[string]any{"type": "ARRAY", "items": item}
}
func obj(props map[string]any, required ...string) map[string]any {
	o := map[string]any{"type": "OBJECT", "properties": props}
	if len(required) > 0 {
		o["required"] = required
	}
	return o
}

var ideaSchema = obj(map[string]any{"id": str(), "text": str()}, "text")

var lessonSchema = obj(map[string]any{
	"sections": obj(map[string]any{
		"opening":    arr(ideaSchema),
		"story":      arr(ideaSchema),
		"activity":   arr(ideaSchema),
		"conclusion": arr(ideaSchema),
		"verseGame":  arr(ideaSchema),
	}, "opening", "story", "activity", "conclusion", "verseGame"),
}, "sections")

var gameSchema = arr(obj(map[string]any{
	"title":       str(),
	"description": str(),
	"rules":       str(),
}, "title", "description", "rules"))

var curriculumSchema = arr(obj(map[string]any{
	"week":     num(),
	"title":    str(),
	"focus":    str(),
	"activity": str(),
	"verse":    str(),
}, "week", "title", "focus", "activity", "verse"))

var verseSchema = arr(obj(map[string]any{
	"number": num(),
	"text":   str(),
}, "number", "text"))

var analysisSchema = arr(obj(map[string]any{
	"verseNumber":  num(),
	"arabicWord":   str(),
	"originalWord": str(),
	"explanation":  str(),
}, "verseNumber", "arabicWord", "originalWord", "explanation"))

var questionsSchema = arr(str())

// --- system prompts ---

const lessonSystem = `أنت مساعد متخصص في إعداد دروس مدارس الأحد للكنيسة القبطية الأرثوذكسية. اقترح أفكاراً عملية ومبتكرة لكل قسم من أقسام الدرس، مناسبة للمرحلة العمرية المحددة. اكتب بالعربية الفصحى المبسطة.`

const patristicSystem = `أنت مساعد روحي متخصص في أقوال وتعاليم آباء الكنيسة الأولى. أجب عن الأسئلة مستشهداً بأقوال الآباء مع ذكر اسم الأب والمرجع عند الإمكان. اكتب بالعربية.`

const bibleSystem = `أنت خبير في الكتاب المقدس بترجمة الفانديك العربية وفي النصوص الأصلية العبرية واليونانية وفي تفاسير الآباء.`

// --- ContentService ---

func (c *GeminiClient) GenerateLessonIdeas(ctx context.Context, in LessonInput) (*LessonPlan, error) {
	var prompt strings.Builder
	fmt.Fprintf(&prompt, "أعد أفكاراً لدرس مدارس أحد.\nعنوان الدرس: %s\nالهدف الروحي: %s\n", in.Title, in.Objective)
	if in.ScriptureVerse != "" {
		fmt.Fprintf(&prompt, "الآية المحورية: %s\n", in.ScriptureVerse)
	}
	if in.AgeGroup != "" {
		fmt.Fprintf(&prompt, "المرحلة العمرية: %s\n", in.AgeGroup)
	}
	prompt.WriteString("اقترح ثلاث أفكار لكل قسم: المقدمة، سرد القصة، النشاط، الختام، وفكرة واحدة على الأقل للعبة تحفيظ الآية.")

	parts := []geminiPart{{Text: prompt.String()}}
	for _, img := range in.Images {
		parts = append(parts, geminiPart{InlineData: &geminiInlineData{MIMEType: img.MIMEType, Data: img.Data}})
	}

	var raw json.RawMessage
	if err := c.generateJSON(ctx, lessonSystem, userContent(parts...), lessonSchema, &raw); err != nil {
		return nil, err
	}
	return DecodeLessonPlan(raw)
}

func (c *GeminiClient) AlternativeIdea(ctx context.Context, req AlternativeIdeaRequest) (string, error) {
	var prompt strings.Builder
	fmt.Fprintf(&prompt, "درس بعنوان \"%s\" هدفه \"%s\".\n", req.Lesson.Title, req.Lesson.Objective)
	fmt.Fprintf(&prompt, "اقترح فكرة بديلة واحدة لقسم \"%s\" بدلاً من:\n%s\n", req.SectionTitle, req.CurrentText)
	if len(req.Existing) > 0 {
		prompt.WriteString("تجنب تكرار الأفكار الموجودة:\n")
		for _, e := range req.Existing {
			prompt.WriteString("- " + e + "\n")
		}
	}
	prompt.WriteString("أجب بنص الفكرة فقط دون مقدمات.")
	return c.generate(ctx, geminiRequest{
		Contents:          userContent(geminiPart{Text: prompt.String()}),
		SystemInstruction: systemContent(lessonSystem),
		GenerationConfig:  &geminiGenConfig{MaxOutputTokens: c.maxTokens},
	})
}

func (c *GeminiClient) ExplainIdea(ctx context.Context, ideaText string, age AgeGroup) (string, error) {
	prompt := fmt.Sprintf(
		"اشرح الفكرة التالية بالتفصيل كخطوات عملية لخادم مدارس أحد يخدم مرحلة %s:\n%s\n"+
			"قسّم الشرح إلى عناصر تبدأ كل منها بسطر \"العنصر ...:\" واختم بقسم \"المراجع:\" إن وُجدت مراجع.",
		age, ideaText)
	return c.generate(ctx, geminiRequest{
		Contents:          userContent(geminiPart{Text: prompt}),
		SystemInstruction: systemContent(lessonSystem),
		GenerationConfig:  &geminiGenConfig{MaxOutputTokens: c.maxTokens},
	})
}

func (c *GeminiClient) SuggestedQuestions(ctx context.Context, lessonContext string) ([]string, error) {
	prompt := fmt.Sprintf("اقترح خمسة أسئلة نقاشية قصيرة مناسبة للدرس التالي:\n%s", lessonContext)
	var out []string
	if err := c.generateJSON(ctx, lessonSystem, userContent(geminiPart{Text: prompt}), questionsSchema, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *GeminiClient) GameIdeas(ctx context.Context, req GameRequest) ([]GameIdea, error) {
	var prompt strings.Builder
	prompt.WriteString("اقترح ثلاث ألعاب لمدارس الأحد بالمواصفات التالية:\n")
	if req.Count != "" {
		fmt.Fprintf(&prompt, "عدد المخدومين: %s\n", req.Count)
	}
	if req.Place != "" {
		fmt.Fprintf(&prompt, "المكان: %s\n", req.Place)
	}
	if req.Tools != "" {
		fmt.Fprintf(&prompt, "الأدوات المتاحة: %s\n", req.Tools)
	}
	if req.Goal != "" {
		fmt.Fprintf(&prompt, "الهدف من اللعبة: %s\n", req.Goal)
	}
	var out []GameIdea
	if err := c.generateJSON(ctx, lessonSystem, userContent(geminiPart{Text: prompt.String()}), gameSchema, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *GeminiClient) CurriculumPlan(ctx context.Context, in CurriculumInput) ([]CurriculumWeek, error) {
	var prompt strings.Builder
	fmt.Fprintf(&prompt, "ضع خطة منهج لمدة %d أسابيع حول الهدف الروحي: %s\n", in.DurationWeeks, in.Objective)
	if in.AgeGroup != "" {
		fmt.Fprintf(&prompt, "المرحلة العمرية: %s\n", in.AgeGroup)
	}
	if in.Notes != "" {
		fmt.Fprintf(&prompt, "ملاحظات إضافية: %s\n", in.Notes)
	}
	prompt.WriteString("لكل أسبوع: عنوان الدرس، محور التركيز، نشاط مقترح، وآية محورية.")
	var out []CurriculumWeek
	if err := c.generateJSON(ctx, lessonSystem, userContent(geminiPart{Text: prompt.String()}), curriculumSchema, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *GeminiClient) Chat(ctx context.Context, history []ChatMessage, message string) (string, error) {
	contents := make([]geminiContent, 0, len(history)+1)
	for _, m := range history {
		contents = append(contents, geminiContent{Role: m.Role, Parts: []geminiPart{{Text: m.Content}}})
	}
	contents = append(contents, geminiContent{Role: RoleUser, Parts: []geminiPart{{Text: message}}})
	return c.generate(ctx, geminiRequest{
		Contents:          contents,
		SystemInstruction: systemContent(patristicSystem),
		GenerationConfig:  &geminiGenConfig{MaxOutputTokens: c.maxTokens},
	})
}

func (c *GeminiClient) ChapterText(ctx context.Context, book string, chapter int) ([]Verse, error) {
	prompt := fmt.Sprintf("اكتب نص %s الإصحاح %d كاملاً بترجمة الفانديك العربية، آية آية بأرقامها.", book, chapter)
	var out []Verse
	if err := c.generateJSON(ctx, bibleSystem, userContent(geminiPart{Text: prompt}), verseSchema, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *GeminiClient) LinguisticAnalysis(ctx context.Context, req PassageRequest) ([]AnalysisItem, error) {
	origin := "العبرية"
	if req.Testament == TestamentNew {
		origin = "اليونانية"
	}
	prompt := fmt.Sprintf("حلل الكلمات المفتاحية في %s لغوياً، مع أصلها في اللغة %s ومعناها.", passageLabel(req), origin)
	var out []AnalysisItem
	if err := c.generateJSON(ctx, bibleSystem, userContent(geminiPart{Text: prompt}), analysisSchema, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *GeminiClient) Interpretation(ctx context.Context, req PassageRequest) (string, error) {
	prompt := fmt.Sprintf("اكتب تفسيراً آبائياً لـ%s، مستشهداً بأقوال آباء الكنيسة.", passageLabel(req))
	return c.generate(ctx, geminiRequest{
		Contents:          userContent(geminiPart{Text: prompt}),
		SystemInstruction: systemContent(bibleSystem),
		GenerationConfig:  &geminiGenConfig{MaxOutputTokens: c.maxTokens},
	})
}

func (c *GeminiClient) SimplifiedExplanation(ctx context.Context, req PassageRequest) (string, error) {
	prompt := fmt.Sprintf("اشرح %s بلغة مبسطة تناسب المخدومين الصغار.", passageLabel(req))
	return c.generate(ctx, geminiRequest{
		Contents:          userContent(geminiPart{Text: prompt}),
		SystemInstruction: systemContent(bibleSystem),
		GenerationConfig:  &geminiGenConfig{MaxOutputTokens: c.maxTokens},
	})
}

// passageLabel renders "سفر X الإصحاح N" plus the verse subset when present.
func passageLabel(req PassageRequest) string {
	label := fmt.Sprintf("%s الإصحاح %d", req.Book, req.Chapter)
	if len(req.Verses) > 0 {
		nums := make([]string, len(req.Verses))
		for i, v := range req.Verses {
			nums[i] = fmt.Sprintf("%d", v)
		}
		label += " (الآيات " + strings.Join(nums, "، ") + ")"
	}
	return label
}

var _ ContentService = (*GeminiClient)(nil)
