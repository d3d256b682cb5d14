package services

import (
	"context"
	"errors"
	"testing"

	"github.com/jhimil-1/Interview/internal/models"
	"github.com/jhimil-1/Interview/internal/utils"
)

func TestQuestionServiceParsesFencedJSON(t *testing.T) {
	reply := "```json\n{\"questions\":[" +
		"{\"id\":1,\"question\":\"Describe a system you designed.\",\"skill_area\":\"system design\",\"difficulty\":\"hard\"}," +
		"{\"id\":2,\"question\":\"What is a goroutine?\",\"skill_area\":\"concurrency\",\"difficulty\":\"easy\"}" +
		"]}\n```"
	svc := NewQuestionService(&stubLLM{generate: func(context.Context, string) (string, error) { return reply, nil }})

	qs, err := svc.Build(context.Background(), "backend engineer", 2)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if len(qs) != 2 {
		t.Fatalf("got %d questions, want 2", len(qs))
	}
	if qs[0].Index != 0 || qs[1].Index != 1 {
		t.Fatalf("indices not reassigned: %+v", qs)
	}
	if qs[0].Difficulty != models.DifficultyHard || qs[1].Difficulty != models.DifficultyEasy {
		t.Fatalf("difficulties = %q, %q", qs[0].Difficulty, qs[1].Difficulty)
	}
}

func TestQuestionServiceDropsMalformedEntries(t *testing.T) {
	reply := `{"questions":[
		{"question":"  "},
		{"question":"Tell me about error handling.","difficulty":"banana"},
		{"question":"Explain channels."}
	]}`
	svc := NewQuestionService(&stubLLM{generate: func(context.Context, string) (string, error) { return reply, nil }})

	qs, err := svc.Build(context.Background(), "jd", 5)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if len(qs) != 2 {
		t.Fatalf("got %d questions, want 2 (blank entry dropped)", len(qs))
	}
	if qs[0].Difficulty != models.DifficultyMedium {
		t.Fatalf("unknown difficulty should default to medium, got %q", qs[0].Difficulty)
	}
	if qs[0].Index != 0 || qs[1].Index != 1 {
		t.Fatalf("indices not contiguous after drop: %+v", qs)
	}
}

func TestQuestionServiceCapsAtRequestedCount(t *testing.T) {
	reply := `{"questions":[{"question":"a"},{"question":"b"},{"question":"c"},{"question":"d"}]}`
	svc := NewQuestionService(&stubLLM{generate: func(context.Context, string) (string, error) { return reply, nil }})

	qs, err := svc.Build(context.Background(), "jd", 2)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if len(qs) != 2 {
		t.Fatalf("got %d questions, want 2", len(qs))
	}
}

func TestQuestionServiceFailures(t *testing.T) {
	cases := []struct {
		name  string
		reply string
		err   error
	}{
		{name: "provider error", err: errors.New("quota exceeded")},
		{name: "unparseable output", reply: "I cannot answer that."},
		{name: "no usable questions", reply: `{"questions":[{"question":""}]}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			svc := NewQuestionService(&stubLLM{generate: func(context.Context, string) (string, error) { return tc.reply, tc.err }})
			_, err := svc.Build(context.Background(), "jd", 3)
			if utils.CodeOf(err) != utils.CodeGenerationFailed {
				t.Fatalf("code = %v, want GENERATION_FAILED", utils.CodeOf(err))
			}
		})
	}
}
