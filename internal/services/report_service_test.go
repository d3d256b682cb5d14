package services

import (
	"context"
	"errors"
	"testing"

	"github.com/jhimil-1/Interview/internal/interview"
	"github.com/jhimil-1/Interview/internal/models"
	"github.com/jhimil-1/Interview/internal/utils"
)

// analyzedSession runs a session through setup/submit/record so the report
// compiler has real state to aggregate.
func analyzedSession(t *testing.T, analyses []models.AnalysisRecord) (SessionService, string) {
	t.Helper()

	sessions := NewSessionService(
		interview.NewRegistry(),
		&stubBuilder{questions: questionList(len(analyses))},
		&stubAnalyzer{},
		nil, nil,
	)

	setup, err := sessions.Setup(context.Background(), "user-1", "backend engineer", len(analyses))
	if err != nil {
		t.Fatalf("Setup: %v", err)
	}
	for i, a := range analyses {
		if _, err := sessions.SubmitResponse(context.Background(), setup.SessionID, i, "an answer"); err != nil {
			t.Fatalf("SubmitResponse %d: %v", i, err)
		}
		if err := sessions.RecordAnalysis(context.Background(), setup.SessionID, i, a); err != nil {
			t.Fatalf("RecordAnalysis %d: %v", i, err)
		}
	}
	return sessions, setup.SessionID
}

func failingSummarizer() *stubLLM {
	return &stubLLM{generate: func(context.Context, string) (string, error) {
		return "", errors.New("summarizer down")
	}}
}

func TestReportAggregatesAndRecommends(t *testing.T) {
	sessions, id := analyzedSession(t, []models.AnalysisRecord{
		{OverallScore: 9, RelevanceScore: ptr(9), DepthScore: ptr(8), ClarityScore: ptr(9)},
		{OverallScore: 8, RelevanceScore: ptr(8), DepthScore: ptr(7), ClarityScore: ptr(8)},
		{OverallScore: 9.5, RelevanceScore: ptr(10), DepthScore: ptr(9), ClarityScore: ptr(9)},
	})
	svc := NewReportService(sessions, failingSummarizer(), nil, nil)

	rep, err := svc.Compile(context.Background(), id)
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}

	// (9 + 8 + 9.5) / 3 = 8.833..., rounded to one decimal
	if rep.OverallRating != 8.8 {
		t.Fatalf("overall rating = %v, want 8.8", rep.OverallRating)
	}
	if rep.Recommendation != models.RecommendationStrongHire {
		t.Fatalf("recommendation = %q, want strong_hire", rep.Recommendation)
	}
	// relevance and depth feed technical: (9+8+8+7+10+9)/6 = 8.5
	if rep.TechnicalCompetency != 8.5 {
		t.Fatalf("technical = %v, want 8.5", rep.TechnicalCompetency)
	}
	// clarity feeds communication: (9+8+9)/3 = 8.666... -> 8.7
	if rep.CommunicationSkills != 8.7 {
		t.Fatalf("communication = %v, want 8.7", rep.CommunicationSkills)
	}
	if len(rep.PerQuestionTable) != 3 {
		t.Fatalf("per-question table has %d rows, want 3", len(rep.PerQuestionTable))
	}
	for i, row := range rep.PerQuestionTable {
		if row.QuestionIndex != i {
			t.Fatalf("table not ordered by question index: %+v", rep.PerQuestionTable)
		}
	}
}

func TestReportRecommendationBoundaries(t *testing.T) {
	cases := []struct {
		score float64
		want  models.Recommendation
	}{
		{8.5, models.RecommendationStrongHire},
		{8.4, models.RecommendationHire},
		{7.0, models.RecommendationHire},
		{6.9, models.RecommendationMaybe},
		{5.0, models.RecommendationMaybe},
		{4.9, models.RecommendationNoHire},
		{0, models.RecommendationNoHire},
	}
	for _, tc := range cases {
		sessions, id := analyzedSession(t, []models.AnalysisRecord{{OverallScore: tc.score}})
		svc := NewReportService(sessions, failingSummarizer(), nil, nil)

		rep, err := svc.Compile(context.Background(), id)
		if err != nil {
			t.Fatalf("score %v: %v", tc.score, err)
		}
		if rep.Recommendation != tc.want {
			t.Fatalf("score %v: recommendation = %q, want %q", tc.score, rep.Recommendation, tc.want)
		}
	}
}

func TestReportNumbersAreIdempotent(t *testing.T) {
	sessions, id := analyzedSession(t, []models.AnalysisRecord{
		{OverallScore: 7.3, ClarityScore: ptr(6)},
		{OverallScore: 6.1, RelevanceScore: ptr(7)},
	})
	svc := NewReportService(sessions, failingSummarizer(), nil, nil)

	first, err := svc.Compile(context.Background(), id)
	if err != nil {
		t.Fatalf("first Compile: %v", err)
	}
	second, err := svc.Compile(context.Background(), id)
	if err != nil {
		t.Fatalf("second Compile: %v", err)
	}

	if first.OverallRating != second.OverallRating ||
		first.TechnicalCompetency != second.TechnicalCompetency ||
		first.CommunicationSkills != second.CommunicationSkills ||
		first.Recommendation != second.Recommendation {
		t.Fatalf("numbers changed between compiles: %+v vs %+v", first, second)
	}
}

func TestReportInsufficientData(t *testing.T) {
	sessions := NewSessionService(
		interview.NewRegistry(),
		&stubBuilder{questions: questionList(2)},
		&stubAnalyzer{},
		nil, nil,
	)
	setup, err := sessions.Setup(context.Background(), "user-1", "jd", 2)
	if err != nil {
		t.Fatalf("Setup: %v", err)
	}

	svc := NewReportService(sessions, failingSummarizer(), nil, nil)
	if _, err := svc.Compile(context.Background(), setup.SessionID); utils.CodeOf(err) != utils.CodeInsufficientData {
		t.Fatalf("code = %v, want INSUFFICIENT_DATA", utils.CodeOf(err))
	}
}

func TestReportFallsBackWhenSummarizerFails(t *testing.T) {
	sessions, id := analyzedSession(t, []models.AnalysisRecord{
		{OverallScore: 6, Feedback: "Needs more depth.", Strengths: []string{"communication"}, Weaknesses: []string{"examples"}},
	})
	svc := NewReportService(sessions, failingSummarizer(), nil, nil)

	rep, err := svc.Compile(context.Background(), id)
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	if rep.Summary == "" {
		t.Fatal("fallback summary missing")
	}
	if rep.DetailedFeedback == "" {
		t.Fatal("fallback detailed feedback missing")
	}
	if len(rep.Strengths) != 1 || rep.Strengths[0] != "communication" {
		t.Fatalf("strengths = %v", rep.Strengths)
	}
	if len(rep.AreasForImprovement) != 1 || rep.AreasForImprovement[0] != "examples" {
		t.Fatalf("areas = %v", rep.AreasForImprovement)
	}
}

func TestReportUsesSummarizerTextButOwnNumbers(t *testing.T) {
	sessions, id := analyzedSession(t, []models.AnalysisRecord{{OverallScore: 6}})
	summarizer := &stubLLM{generate: func(context.Context, string) (string, error) {
		return `{"summary":"A thoughtful candidate.","detailed_feedback":"Strong on basics.","strengths":["curiosity"],"areas_for_improvement":["system design"],"overall_rating":10}`, nil
	}}
	svc := NewReportService(sessions, summarizer, nil, nil)

	rep, err := svc.Compile(context.Background(), id)
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	if rep.Summary != "A thoughtful candidate." {
		t.Fatalf("summary = %q", rep.Summary)
	}
	if rep.OverallRating != 6 {
		t.Fatalf("overall rating = %v, summarizer numbers must be ignored", rep.OverallRating)
	}
	if rep.Recommendation != models.RecommendationMaybe {
		t.Fatalf("recommendation = %q, want maybe", rep.Recommendation)
	}
}
