package app

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Canonical lesson section keys, in display order.
const (
	SectionOpening    = "opening"
	SectionStory      = "story"
	SectionActivity   = "activity"
	SectionConclusion = "conclusion"
	SectionVerseGame  = "verseGame"
)

// SectionOrder fixes the rendering order of lesson sections.
var SectionOrder = []string{SectionOpening, SectionStory, SectionActivity, SectionConclusion, SectionVerseGame}

// SectionTitles maps section keys to their Arabic display headings.
var SectionTitles = map[string]string{
	SectionOpening:    "أفكار للمقدمة",
	SectionStory:      "أفكار لسرد القصة",
	SectionActivity:   "أفكار للنشاط",
	SectionConclusion: "أفكار للختام",
	SectionVerseGame:  "لعبة لتحفيظ الآية",
}

// Idea is one generated suggestion inside a section.
type Idea struct {
	ID       string `json:"id"`
	Text     string `json:"text"`
	Selected bool   `json:"selected"`
}

// LessonPlan holds generated ideas grouped by section, plus the flattened
// lesson text. Sections is uniform: the verse game lives under
// SectionVerseGame like any other group, even when the wire payload carries
// it as a separate top-level field. Body, Elements and References are
// normalized from either wire shape, so nothing downstream branches on how
// the model happened to answer.
type LessonPlan struct {
	Sections   map[string][]Idea    `json:"sections"`
	Body       string               `json:"body,omitempty"`
	Elements   []ExplanationElement `json:"elements,omitempty"`
	References []string             `json:"references,omitempty"`
}

// Clone deep-copies the plan so snapshots handed to the UI never alias
// studio-owned slices.
func (p *LessonPlan) Clone() *LessonPlan {
	if p == nil {
		return nil
	}
	out := &LessonPlan{
		Sections:   make(map[string][]Idea, len(p.Sections)),
		Body:       p.Body,
		Elements:   append([]ExplanationElement(nil), p.Elements...),
		References: append([]string(nil), p.References...),
	}
	for k, ideas := range p.Sections {
		cp := make([]Idea, len(ideas))
		copy(cp, ideas)
		out.Sections[k] = cp
	}
	return out
}

// Find returns the section key and index of the idea with the given id.
func (p *LessonPlan) Find(ideaID string) (section string, index int, ok bool) {
	if p == nil {
		return "", 0, false
	}
	for k, ideas := range p.Sections {
		for i, idea := range ideas {
			if idea.ID == ideaID {
				return k, i, true
			}
		}
	}
	return "", 0, false
}

// SelectedIdeas returns the selected ideas per section, preserving order.
func (p *LessonPlan) SelectedIdeas() map[string][]Idea {
	out := make(map[string][]Idea)
	if p == nil {
		return out
	}
	for k, ideas := range p.Sections {
		for _, idea := range ideas {
			if idea.Selected {
				out[k] = append(out[k], idea)
			}
		}
	}
	return out
}

// wirePlan mirrors the payload shapes the model emits. Newer responses
// nest ideas under "sections" and ship the lesson text pre-split into
// lessonBody/lessonElements/references; older ones put the verse game in
// a sibling "verseGameIdea" string and the whole lesson text in a single
// "lessonExplanation" string that has to be parsed here.
type wirePlan struct {
	Sections struct {
		Opening    []wireIdea `json:"opening"`
		Story      []wireIdea `json:"story"`
		Activity   []wireIdea `json:"activity"`
		Conclusion []wireIdea `json:"conclusion"`
		VerseGame  []wireIdea `json:"verseGame"`
	} `json:"sections"`
	VerseGameIdea string `json:"verseGameIdea"`

	LessonBody        string        `json:"lessonBody"`
	LessonElements    []wireElement `json:"lessonElements"`
	References        []string      `json:"references"`
	LessonExplanation string        `json:"lessonExplanation"`
}

type wireIdea struct {
	ID   string `json:"id"`
	Text string `json:"text"`
}

type wireElement struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

// DecodeLessonPlan parses a generation payload in either wire shape and
// normalizes it to the uniform Sections map. Missing ids are synthesized
// as "<section>-<n>" so every idea is addressable.
func DecodeLessonPlan(raw []byte) (*LessonPlan, error) {
	var w wirePlan
	if err := json.Unmarshal(raw, &w); err != nil {
		return nil, fmt.Errorf("decode lesson plan: %w", err)
	}
	plan := &LessonPlan{Sections: make(map[string][]Idea, len(SectionOrder))}
	put := func(key string, ideas []wireIdea) {
		out := make([]Idea, 0, len(ideas))
		for i, wi := range ideas {
			id := wi.ID
			if id == "" {
				id = fmt.Sprintf("%s-%d", key, i+1)
			}
			out = append(out, Idea{ID: id, Text: wi.Text})
		}
		plan.Sections[key] = out
	}
	put(SectionOpening, w.Sections.Opening)
	put(SectionStory, w.Sections.Story)
	put(SectionActivity, w.Sections.Activity)
	put(SectionConclusion, w.Sections.Conclusion)
	put(SectionVerseGame, w.Sections.VerseGame)
	if len(plan.Sections[SectionVerseGame]) == 0 && strings.TrimSpace(w.VerseGameIdea) != "" {
		plan.Sections[SectionVerseGame] = []Idea{{ID: "verseGame-1", Text: strings.TrimSpace(w.VerseGameIdea)}}
	}
	switch {
	case strings.TrimSpace(w.LessonBody) != "" && len(w.LessonElements) > 0:
		plan.Body = strings.TrimSpace(w.LessonBody)
		for _, el := range w.LessonElements {
			plan.Elements = append(plan.Elements, ExplanationElement{Heading: el.Title, Body: el.Content})
		}
		plan.References = w.References
	case strings.TrimSpace(w.LessonExplanation) != "":
		exp := ParseLessonExplanation(w.LessonExplanation)
		plan.Body = exp.Body
		plan.Elements = exp.Elements
		plan.References = exp.References
	}
	if plan.Empty() {
		return nil, fmt.Errorf("decode lesson plan: no ideas in payload")
	}
	return plan, nil
}

// Empty reports whether the plan carries neither ideas nor lesson text.
func (p *LessonPlan) Empty() bool {
	if p == nil {
		return true
	}
	for _, ideas := range p.Sections {
		if len(ideas) > 0 {
			return false
		}
	}
	return p.Body == "" && len(p.Elements) == 0
}

// LessonExplanation is parsed lesson prose: Body always carries the full
// text minus the references block, Elements the "العنصر ...:" blocks when
// the text follows that convention, References the trailing list.
type LessonExplanation struct {
	Elements   []ExplanationElement
	Body       string
	References []string
}

type ExplanationElement struct {
	Heading string
	Body    string
}

const referencesMarker = "المراجع:"
const elementMarker = "العنصر"

// ParseLessonExplanation splits free text into element blocks and a
// trailing references block. Parsing is lossless: Body keeps the whole
// pre-references text, so unparseable input degrades to Body alone.
func ParseLessonExplanation(text string) LessonExplanation {
	var exp LessonExplanation
	text = strings.TrimSpace(text)
	if text == "" {
		return exp
	}
	if i := strings.LastIndex(text, referencesMarker); i >= 0 {
		for _, line := range strings.Split(text[i+len(referencesMarker):], "\n") {
			line = strings.TrimSpace(strings.TrimLeft(strings.TrimSpace(line), "-•"))
			if line != "" {
				exp.References = append(exp.References, line)
			}
		}
		text = strings.TrimSpace(text[:i])
	}
	exp.Body = text
	lines := strings.Split(text, "\n")
	var current *ExplanationElement
	var body []string
	flush := func() {
		if current != nil {
			current.Body = strings.TrimSpace(strings.Join(body, "\n"))
			exp.Elements = append(exp.Elements, *current)
			current = nil
		}
		body = body[:0]
	}
	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, elementMarker) && strings.Contains(trimmed, ":") {
			flush()
			head, rest, _ := strings.Cut(trimmed, ":")
			current = &ExplanationElement{Heading: strings.TrimSpace(head)}
			if rest = strings.TrimSpace(rest); rest != "" {
				body = append(body, rest)
			}
			continue
		}
		if current != nil {
			body = append(body, line)
		}
	}
	flush()
	return exp
}

// ValidateLessonInput enforces the required form fields.
func ValidateLessonInput(in LessonInput) error {
	if strings.TrimSpace(in.Title) == "" || strings.TrimSpace(in.Objective) == "" {
		return fmt.Errorf("من فضلك املأ عنوان الدرس والهدف الروحي.")
	}
	return nil
}
