package services

import (
	"context"
	"testing"

	"github.com/jhimil-1/Interview/internal/interview"
	"github.com/jhimil-1/Interview/internal/models"
	"github.com/jhimil-1/Interview/internal/utils"
)

func newTestSessionService(builder QuestionService, analyzer AnalysisService) SessionService {
	return NewSessionService(interview.NewRegistry(), builder, analyzer, nil, nil)
}

func TestSessionServiceFullRun(t *testing.T) {
	analyzer := &stubAnalyzer{analysis: &models.AnalysisRecord{OverallScore: 7.5, Feedback: "good"}}
	svc := newTestSessionService(&stubBuilder{questions: questionList(2)}, analyzer)
	ctx := context.Background()

	setup, err := svc.Setup(ctx, "user-1", "backend engineer", 2)
	if err != nil {
		t.Fatalf("Setup: %v", err)
	}
	if setup.Stage != models.StageInProgress || setup.TotalQuestions != 2 {
		t.Fatalf("setup result = %+v", setup)
	}
	id := setup.SessionID

	if owner, err := svc.Owner(ctx, id); err != nil || owner != "user-1" {
		t.Fatalf("Owner = %q, %v", owner, err)
	}

	for i := 0; i < 2; i++ {
		if _, err := svc.SubmitResponse(ctx, id, i, "my answer"); err != nil {
			t.Fatalf("SubmitResponse %d: %v", i, err)
		}
		a, err := svc.AnalyzeResponse(ctx, id, i)
		if err != nil {
			t.Fatalf("AnalyzeResponse %d: %v", i, err)
		}
		if a.QuestionIndex != i {
			t.Fatalf("analysis index = %d, want %d", a.QuestionIndex, i)
		}

		res, err := svc.Advance(ctx, id)
		if err != nil {
			t.Fatalf("Advance %d: %v", i, err)
		}
		if i == 0 && !res.HasNext {
			t.Fatal("HasNext = false mid-interview")
		}
		if i == 1 && res.HasNext {
			t.Fatal("HasNext = true at the end")
		}
	}

	st, err := svc.Status(ctx, id)
	if err != nil {
		t.Fatalf("Status: %v", err)
	}
	if st.Stage != models.StageCompleted || st.AnsweredCount != 2 || st.AnalyzedCount != 2 {
		t.Fatalf("final status = %+v", st)
	}
	if analyzer.calls != 2 {
		t.Fatalf("analyzer called %d times, want 2", analyzer.calls)
	}
}

func TestSessionServiceSetupValidation(t *testing.T) {
	svc := newTestSessionService(&stubBuilder{questions: questionList(1)}, &stubAnalyzer{})
	ctx := context.Background()

	if _, err := svc.Setup(ctx, "u", "  ", 5); utils.CodeOf(err) != utils.CodeInvalidArgument {
		t.Fatalf("blank jd: code = %v", utils.CodeOf(err))
	}
	if _, err := svc.Setup(ctx, "u", "jd", 0); utils.CodeOf(err) != utils.CodeInvalidArgument {
		t.Fatalf("zero questions: code = %v", utils.CodeOf(err))
	}
	if _, err := svc.Setup(ctx, "u", "jd", 21); utils.CodeOf(err) != utils.CodeInvalidArgument {
		t.Fatalf("too many questions: code = %v", utils.CodeOf(err))
	}
}

func TestSessionServiceSetupPropagatesBuilderFailure(t *testing.T) {
	svc := newTestSessionService(
		&stubBuilder{err: utils.E(utils.CodeGenerationFailed, "QuestionService.Build", "boom", nil)},
		&stubAnalyzer{},
	)

	_, err := svc.Setup(context.Background(), "u", "jd", 3)
	if utils.CodeOf(err) != utils.CodeGenerationFailed {
		t.Fatalf("code = %v, want GENERATION_FAILED", utils.CodeOf(err))
	}
}

func TestSessionServiceCancelledSetupDoesNotRegister(t *testing.T) {
	svc := newTestSessionService(&stubBuilder{questions: questionList(2)}, &stubAnalyzer{})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := svc.Setup(ctx, "u", "jd", 2)
	if utils.CodeOf(err) != utils.CodeTimeout {
		t.Fatalf("code = %v, want TIMEOUT", utils.CodeOf(err))
	}
}

func TestSessionServiceCancelledAnalysisDoesNotRecord(t *testing.T) {
	analyzer := &stubAnalyzer{analysis: &models.AnalysisRecord{OverallScore: 8}}
	svc := newTestSessionService(&stubBuilder{questions: questionList(1)}, analyzer)

	setup, err := svc.Setup(context.Background(), "u", "jd", 1)
	if err != nil {
		t.Fatalf("Setup: %v", err)
	}
	if _, err := svc.SubmitResponse(context.Background(), setup.SessionID, 0, "answer"); err != nil {
		t.Fatalf("SubmitResponse: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := svc.AnalyzeResponse(ctx, setup.SessionID, 0); utils.CodeOf(err) != utils.CodeTimeout {
		t.Fatalf("code = %v, want TIMEOUT", utils.CodeOf(err))
	}

	st, err := svc.Status(context.Background(), setup.SessionID)
	if err != nil {
		t.Fatalf("Status: %v", err)
	}
	if st.AnalyzedCount != 0 {
		t.Fatalf("abandoned analysis was recorded: %+v", st)
	}
}

func TestSessionServiceAnalyzeWithoutResponse(t *testing.T) {
	analyzer := &stubAnalyzer{analysis: &models.AnalysisRecord{OverallScore: 8}}
	svc := newTestSessionService(&stubBuilder{questions: questionList(1)}, analyzer)

	setup, err := svc.Setup(context.Background(), "u", "jd", 1)
	if err != nil {
		t.Fatalf("Setup: %v", err)
	}

	_, err = svc.AnalyzeResponse(context.Background(), setup.SessionID, 0)
	if utils.CodeOf(err) != utils.CodePrecursorMissing {
		t.Fatalf("code = %v, want PRECURSOR_MISSING", utils.CodeOf(err))
	}
	if analyzer.calls != 0 {
		t.Fatalf("scoring collaborator invoked %d times for a missing response", analyzer.calls)
	}
}

func TestSessionServiceResetAlwaysSucceeds(t *testing.T) {
	svc := newTestSessionService(&stubBuilder{questions: questionList(1)}, &stubAnalyzer{})
	ctx := context.Background()

	if err := svc.Reset(ctx, "no-such-session"); err != nil {
		t.Fatalf("Reset of unknown session: %v", err)
	}

	setup, err := svc.Setup(ctx, "u", "jd", 1)
	if err != nil {
		t.Fatalf("Setup: %v", err)
	}
	if err := svc.Reset(ctx, setup.SessionID); err != nil {
		t.Fatalf("Reset: %v", err)
	}

	st, err := svc.Status(ctx, setup.SessionID)
	if err != nil {
		t.Fatalf("Status: %v", err)
	}
	if st.Stage != models.StageSetup {
		t.Fatalf("stage = %q after reset, want %q", st.Stage, models.StageSetup)
	}
}

func TestSessionServiceUnknownSession(t *testing.T) {
	svc := newTestSessionService(&stubBuilder{questions: questionList(1)}, &stubAnalyzer{})

	if _, err := svc.Status(context.Background(), "missing"); utils.CodeOf(err) != utils.CodeNotFound {
		t.Fatalf("code = %v, want NOT_FOUND", utils.CodeOf(err))
	}
}
