package app

import (
	"strings"
	"testing"
)

func TestDecodeLessonPlan_NestedShape(t *testing.T) {
	raw := []byte(`{"sections":{
		"opening":[{"id":"opening-1","text":"سؤال افتتاحي"}],
		"story":[{"id":"story-1","text":"قصة"}],
		"activity":[{"id":"activity-1","text":"نشاط"}],
		"conclusion":[{"id":"conclusion-1","text":"ختام"}],
		"verseGame":[{"id":"verseGame-1","text":"لعبة"}]
	}}`)
	plan, err := DecodeLessonPlan(raw)
	if err != nil {
		t.Fatalf("DecodeLessonPlan: %v", err)
	}
	for _, key := range SectionOrder {
		if len(plan.Sections[key]) != 1 {
			t.Fatalf("section %q has %d ideas, want 1", key, len(plan.Sections[key]))
		}
	}
	if plan.Sections[SectionVerseGame][0].Text != "لعبة" {
		t.Fatalf("verse game text = %q", plan.Sections[SectionVerseGame][0].Text)
	}
}

func TestDecodeLessonPlan_LegacyVerseGameField(t *testing.T) {
	raw := []byte(`{
		"sections":{"opening":[{"text":"فكرة"}]},
		"verseGameIdea":"  لعبة الكراسي الموسيقية بالآية  "
	}`)
	plan, err := DecodeLessonPlan(raw)
	if err != nil {
		t.Fatalf("DecodeLessonPlan: %v", err)
	}
	games := plan.Sections[SectionVerseGame]
	if len(games) != 1 {
		t.Fatalf("verse game ideas = %d, want 1", len(games))
	}
	if games[0].Text != "لعبة الكراسي الموسيقية بالآية" {
		t.Fatalf("legacy verse game not trimmed: %q", games[0].Text)
	}
	if games[0].ID != "verseGame-1" {
		t.Fatalf("legacy verse game id = %q, want verseGame-1", games[0].ID)
	}
	// synthesized id for the idea that arrived without one
	if plan.Sections[SectionOpening][0].ID != "opening-1" {
		t.Fatalf("missing id not synthesized: %q", plan.Sections[SectionOpening][0].ID)
	}
}

func TestDecodeLessonPlan_StructuredLessonText(t *testing.T) {
	raw := []byte(`{
		"sections":{"opening":[{"text":"فكرة"}]},
		"lessonBody":" نص الدرس الكامل ",
		"lessonElements":[
			{"title":"العنصر الأول","content":"المحبة عطاء"},
			{"title":"العنصر الثاني","content":"التطبيق"}
		],
		"references":["كتاب الخدمة"]
	}`)
	plan, err := DecodeLessonPlan(raw)
	if err != nil {
		t.Fatalf("DecodeLessonPlan: %v", err)
	}
	if plan.Body != "نص الدرس الكامل" {
		t.Fatalf("Body = %q", plan.Body)
	}
	if len(plan.Elements) != 2 || plan.Elements[0].Heading != "العنصر الأول" || plan.Elements[0].Body != "المحبة عطاء" {
		t.Fatalf("elements = %+v", plan.Elements)
	}
	if len(plan.References) != 1 || plan.References[0] != "كتاب الخدمة" {
		t.Fatalf("references = %q", plan.References)
	}
}

func TestDecodeLessonPlan_LegacyExplanationField(t *testing.T) {
	raw := []byte(`{
		"sections":{"opening":[{"text":"فكرة"}]},
		"lessonExplanation":"العنصر الأول: التمهيد\nابدأ بسؤال.\n\nالمراجع:\n- كتاب الخدمة"
	}`)
	plan, err := DecodeLessonPlan(raw)
	if err != nil {
		t.Fatalf("DecodeLessonPlan: %v", err)
	}
	if plan.Body == "" {
		t.Fatal("legacy explanation must fill Body")
	}
	if len(plan.Elements) != 1 || plan.Elements[0].Heading != "العنصر الأول" {
		t.Fatalf("elements = %+v", plan.Elements)
	}
	if len(plan.References) != 1 || plan.References[0] != "كتاب الخدمة" {
		t.Fatalf("references = %q", plan.References)
	}
}

func TestDecodeLessonPlan_LessonTextAloneSuffices(t *testing.T) {
	// a payload with lesson prose but no idea lists still decodes
	plan, err := DecodeLessonPlan([]byte(`{"lessonExplanation":"شرح حر."}`))
	if err != nil {
		t.Fatalf("DecodeLessonPlan: %v", err)
	}
	if plan.Body != "شرح حر." {
		t.Fatalf("Body = %q", plan.Body)
	}
}

func TestDecodeLessonPlan_EmptyPayloadFails(t *testing.T) {
	if _, err := DecodeLessonPlan([]byte(`{"sections":{}}`)); err == nil {
		t.Fatal("expected error for payload without ideas")
	}
	if _, err := DecodeLessonPlan([]byte(`not json`)); err == nil {
		t.Fatal("expected error for invalid json")
	}
}

func TestLessonPlanFindAndClone(t *testing.T) {
	plan := &LessonPlan{
		Sections: map[string][]Idea{
			SectionStory: {{ID: "story-1", Text: "أ"}, {ID: "story-2", Text: "ب"}},
		},
		References: []string{"مرجع"},
	}
	sec, i, ok := plan.Find("story-2")
	if !ok || sec != SectionStory || i != 1 {
		t.Fatalf("Find(story-2) = %q, %d, %v", sec, i, ok)
	}
	clone := plan.Clone()
	clone.Sections[SectionStory][0].Text = "mutated"
	if plan.Sections[SectionStory][0].Text != "أ" {
		t.Fatal("Clone aliases the original slice")
	}
	clone.References[0] = "mutated"
	if plan.References[0] != "مرجع" {
		t.Fatal("Clone aliases the references slice")
	}
}

func TestParseLessonExplanation_ElementsAndReferences(t *testing.T) {
	text := "العنصر الأول: التمهيد\nابدأ بسؤال بسيط.\nثم اعرض الصورة.\n\nالعنصر الثاني: التطبيق\nوزع الأدوار.\n\nالمراجع: كتاب حديقة الأطفال، عظة للبابا شنودة"
	exp := ParseLessonExplanation(text)
	if len(exp.Elements) != 2 {
		t.Fatalf("elements = %d, want 2", len(exp.Elements))
	}
	if exp.Elements[0].Heading != "العنصر الأول" {
		t.Fatalf("first heading = %q", exp.Elements[0].Heading)
	}
	if exp.Elements[0].Body != "التمهيد\nابدأ بسؤال بسيط.\nثم اعرض الصورة." {
		t.Fatalf("first body = %q", exp.Elements[0].Body)
	}
	if len(exp.References) != 1 || exp.References[0] != "كتاب حديقة الأطفال، عظة للبابا شنودة" {
		t.Fatalf("references = %q", exp.References)
	}
	// lossless: Body carries the whole pre-references text
	if exp.Body == "" || strings.Contains(exp.Body, referencesMarker) {
		t.Fatalf("Body = %q", exp.Body)
	}
}

func TestParseLessonExplanation_BulletedReferences(t *testing.T) {
	text := "شرح.\n\nالمراجع:\n- كتاب الخدمة\n• تأملات يومية\n"
	exp := ParseLessonExplanation(text)
	if len(exp.References) != 2 {
		t.Fatalf("references = %q, want 2 entries", exp.References)
	}
	if exp.References[0] != "كتاب الخدمة" || exp.References[1] != "تأملات يومية" {
		t.Fatalf("bullets not stripped: %q", exp.References)
	}
	if exp.Body != "شرح." {
		t.Fatalf("Body = %q", exp.Body)
	}
}

func TestParseLessonExplanation_DegradesToBody(t *testing.T) {
	text := "شرح حر بدون عناوين.\nسطر ثانٍ."
	exp := ParseLessonExplanation(text)
	if len(exp.Elements) != 0 {
		t.Fatalf("unexpected elements: %+v", exp.Elements)
	}
	if exp.Body != text {
		t.Fatalf("Body = %q, want the whole text", exp.Body)
	}
}

func TestParseLessonExplanation_Empty(t *testing.T) {
	exp := ParseLessonExplanation("   ")
	if exp.Body != "" || len(exp.Elements) != 0 || len(exp.References) != 0 {
		t.Fatalf("empty input should parse to zero value: %+v", exp)
	}
}

func TestValidateLessonInput(t *testing.T) {
	tests := []struct {
		name    string
		in      LessonInput
		wantErr bool
	}{
		{name: "valid", in: LessonInput{Title: "المحبة", Objective: "أن يتعلم المخدوم العطاء"}},
		{name: "missing title", in: LessonInput{Objective: "هدف"}, wantErr: true},
		{name: "missing objective", in: LessonInput{Title: "عنوان"}, wantErr: true},
		{name: "whitespace only", in: LessonInput{Title: "  ", Objective: " "}, wantErr: true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := ValidateLessonInput(tc.in)
			if (err != nil) != tc.wantErr {
				t.Fatalf("ValidateLessonInput(%+v) err = %v, wantErr %v", tc.in, err, tc.wantErr)
			}
		})
	}
}

func TestSessionTitle(t *testing.T) {
	long := "سؤال طويل جداً عن أقوال الآباء في موضوع الصلاة الدائمة والصوم المقبول عند الله"
	got := SessionTitle(long)
	runes := []rune(got)
	if len(runes) != 43 { // 40 + "..."
		t.Fatalf("title length = %d runes (%q)", len(runes), got)
	}
	if string(runes[40:]) != "..." {
		t.Fatalf("long title missing ellipsis: %q", got)
	}
	if SessionTitle("قصير") != "قصير" {
		t.Fatal("short titles must pass through unchanged")
	}
}
