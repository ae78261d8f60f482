package app

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"
)

func geminiReply(text string) string {
	body, _ := json.Marshal(map[string]any{
		"candidates": []map[string]any{
			{"content": map[string]any{"parts": []map[string]any{{"text": text}}}},
		},
	})
	return string(body)
}

func newTestGemini(t *testing.T, handler http.HandlerFunc) *GeminiClient {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	cfg := DefaultConfig()
	cfg.GeminiAPIKey = "test-key"
	cfg.BaseURL = srv.URL
	return NewGeminiClient(&cfg, NewLogger(io.Discard, "error"))
}

func TestGeminiGenerateParsesCandidates(t *testing.T) {
	c := newTestGemini(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Contains(t, r.URL.Path, "gemini-2.5-flash:generateContent")
		require.Equal(t, "test-key", r.URL.Query().Get("key"))

		var req geminiRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.NotEmpty(t, req.Contents)
		require.NotNil(t, req.SystemInstruction)

		_, _ = w.Write([]byte(geminiReply("إجابة الآباء")))
	})
	got, err := c.Chat(context.Background(), nil, "سؤال")
	require.NoError(t, err)
	require.Equal(t, "إجابة الآباء", got)
}

func TestGeminiChatSendsHistoryInOrder(t *testing.T) {
	c := newTestGemini(t, func(w http.ResponseWriter, r *http.Request) {
		var req geminiRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.Len(t, req.Contents, 3)
		require.Equal(t, RoleUser, req.Contents[0].Role)
		require.Equal(t, RoleModel, req.Contents[1].Role)
		require.Equal(t, "الجديد", req.Contents[2].Parts[0].Text)
		_, _ = w.Write([]byte(geminiReply("رد")))
	})
	history := []ChatMessage{
		{Role: RoleUser, Content: "الأول"},
		{Role: RoleModel, Content: "رد أول"},
	}
	_, err := c.Chat(context.Background(), history, "الجديد")
	require.NoError(t, err)
}

func TestGeminiNoRetryOnServerError(t *testing.T) {
	var calls int32
	c := newTestGemini(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error":{"code":429,"message":"quota","status":"RESOURCE_EXHAUSTED"}}`))
	})
	_, err := c.Chat(context.Background(), nil, "سؤال")
	require.Error(t, err)
	require.Contains(t, err.Error(), "RESOURCE_EXHAUSTED")
	require.Equal(t, int32(1), atomic.LoadInt32(&calls), "failed calls are not retried")
}

func TestGeminiMissingKey(t *testing.T) {
	cfg := DefaultConfig()
	c := NewGeminiClient(&cfg, NewLogger(io.Discard, "error"))
	_, err := c.Chat(context.Background(), nil, "سؤال")
	require.Error(t, err)
}

func TestGeminiGenerateLessonIdeasStructured(t *testing.T) {
	c := newTestGemini(t, func(w http.ResponseWriter, r *http.Request) {
		var req geminiRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.NotNil(t, req.GenerationConfig)
		require.Equal(t, "application/json", req.GenerationConfig.ResponseMIMEType)
		require.NotNil(t, req.GenerationConfig.ResponseSchema)
		// the attached image rides along as inline data
		var hasImage bool
		for _, part := range req.Contents[0].Parts {
			if part.InlineData != nil && part.InlineData.MIMEType == "image/png" {
				hasImage = true
			}
		}
		require.True(t, hasImage, "image attachment missing from request")

		payload := `{"sections":{"opening":[{"id":"opening-1","text":"سؤال"}],"story":[{"text":"قصة"}],"activity":[],"conclusion":[]},"verseGameIdea":"لعبة"}`
		_, _ = w.Write([]byte(geminiReply(payload)))
	})
	plan, err := c.GenerateLessonIdeas(context.Background(), LessonInput{
		Title:     "المحبة",
		Objective: "هدف",
		Images:    []ImageAttachment{{Data: "aGVsbG8=", MIMEType: "image/png"}},
	})
	require.NoError(t, err)
	require.Len(t, plan.Sections[SectionOpening], 1)
	require.Len(t, plan.Sections[SectionVerseGame], 1, "legacy verse game field must fold into the sections map")
}

func TestGeminiStructuredReplyWithCodeFence(t *testing.T) {
	c := newTestGemini(t, func(w http.ResponseWriter, r *http.Request) {
		payload := "```json\n[\"سؤال أول؟\",\"سؤال ثانٍ؟\"]\n```"
		_, _ = w.Write([]byte(geminiReply(payload)))
	})
	qs, err := c.SuggestedQuestions(context.Background(), "سياق")
	require.NoError(t, err)
	require.Equal(t, []string{"سؤال أول؟", "سؤال ثانٍ؟"}, qs)
}

func TestGeminiEmptyCandidates(t *testing.T) {
	c := newTestGemini(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"candidates":[]}`))
	})
	_, err := c.Interpretation(context.Background(), PassageRequest{Book: "يوحنا", Chapter: 1})
	require.Error(t, err)
}

func TestStripCodeFence(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "bare", in: `{"a":1}`, want: `{"a":1}`},
		{name: "json fence", in: "```json\n{\"a\":1}\n```", want: `{"a":1}`},
		{name: "plain fence", in: "```\n[1]\n```", want: "[1]"},
		{name: "padded", in: "  {\"a\":1}  ", want: `{"a":1}`},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := stripCodeFence(tc.in); got != tc.want {
				t.Fatalf("stripCodeFence(%q) = %q, want %q", tc.in, got, tc.want)
			}
		})
	}
}

func TestPassageLabel(t *testing.T) {
	got := passageLabel(PassageRequest{Book: "يوحنا", Chapter: 3, Verses: []int{16, 17}})
	require.Contains(t, got, "يوحنا الإصحاح 3")
	require.Contains(t, got, "16، 17")
	plain := passageLabel(PassageRequest{Book: "مرقس", Chapter: 1})
	require.NotContains(t, plain, "الآيات")
}
