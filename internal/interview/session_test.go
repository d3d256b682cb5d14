package interview

import (
	"testing"

	"github.com/jhimil-1/Interview/internal/models"
	"github.com/jhimil-1/Interview/internal/utils"
)

func fiveQuestions() []models.Question {
	qs := make([]models.Question, 5)
	for i := range qs {
		qs[i] = models.Question{
			Index:      i,
			Text:       "question " + string(rune('A'+i)),
			SkillArea:  "general",
			Difficulty: models.DifficultyMedium,
		}
	}
	return qs
}

func TestNewSessionStartsAtFirstQuestion(t *testing.T) {
	s := New("sess-1", "user-1", "backend engineer", fiveQuestions())

	st := s.Status()
	if st.Stage != models.StageInProgress {
		t.Fatalf("stage = %q, want %q", st.Stage, models.StageInProgress)
	}
	if st.CurrentIndex != 0 {
		t.Fatalf("current index = %d, want 0", st.CurrentIndex)
	}
	if st.TotalQuestions != 5 {
		t.Fatalf("total questions = %d, want 5", st.TotalQuestions)
	}

	q, err := s.CurrentQuestion()
	if err != nil {
		t.Fatalf("CurrentQuestion: %v", err)
	}
	if q.Index != 0 {
		t.Fatalf("current question index = %d, want 0", q.Index)
	}
}

func TestAdvanceCompletesExactlyOnce(t *testing.T) {
	s := New("sess-1", "user-1", "jd", fiveQuestions())

	for i := 1; i < 5; i++ {
		res, err := s.Advance()
		if err != nil {
			t.Fatalf("Advance %d: %v", i, err)
		}
		if !res.HasNext {
			t.Fatalf("Advance %d: HasNext = false, want true", i)
		}
		if res.NextQuestion == nil || res.NextQuestion.Index != i {
			t.Fatalf("Advance %d: next question = %+v", i, res.NextQuestion)
		}
		if s.Status().Stage != models.StageInProgress {
			t.Fatalf("Advance %d: stage left IN_PROGRESS early", i)
		}
	}

	res, err := s.Advance()
	if err != nil {
		t.Fatalf("final Advance: %v", err)
	}
	if res.HasNext {
		t.Fatal("final Advance: HasNext = true, want false")
	}
	if s.Status().Stage != models.StageCompleted {
		t.Fatalf("stage = %q, want %q", s.Status().Stage, models.StageCompleted)
	}

	// advancing past the end stays COMPLETED and keeps reporting no next
	res, err = s.Advance()
	if err != nil {
		t.Fatalf("Advance past end: %v", err)
	}
	if res.HasNext {
		t.Fatal("Advance past end: HasNext = true, want false")
	}

	if _, err := s.CurrentQuestion(); utils.CodeOf(err) != utils.CodeOutOfRange {
		t.Fatalf("CurrentQuestion after completion: code = %v, want OUT_OF_RANGE", utils.CodeOf(err))
	}
}

func TestSubmitResponseOverwrites(t *testing.T) {
	s := New("sess-1", "user-1", "jd", fiveQuestions())

	if _, err := s.SubmitResponse(2, "first attempt"); err != nil {
		t.Fatalf("SubmitResponse: %v", err)
	}
	if _, err := s.SubmitResponse(2, "corrected transcript"); err != nil {
		t.Fatalf("resubmit: %v", err)
	}

	rec, ok := s.Response(2)
	if !ok {
		t.Fatal("response not stored")
	}
	if rec.Transcript != "corrected transcript" {
		t.Fatalf("transcript = %q, want overwrite", rec.Transcript)
	}
	if got := s.Status().AnsweredCount; got != 1 {
		t.Fatalf("answered count = %d, want 1", got)
	}
	if got := s.Status().CurrentIndex; got != 0 {
		t.Fatalf("submit moved position to %d", got)
	}
}

func TestSubmitResponseOutOfRange(t *testing.T) {
	s := New("sess-1", "user-1", "jd", fiveQuestions())

	for _, idx := range []int{-1, 5, 100} {
		_, err := s.SubmitResponse(idx, "text")
		if utils.CodeOf(err) != utils.CodeOutOfRange {
			t.Fatalf("index %d: code = %v, want OUT_OF_RANGE", idx, utils.CodeOf(err))
		}
	}
}

func TestRecordAnalysisRequiresResponse(t *testing.T) {
	s := New("sess-1", "user-1", "jd", fiveQuestions())

	err := s.RecordAnalysis(0, models.AnalysisRecord{OverallScore: 7})
	if utils.CodeOf(err) != utils.CodePrecursorMissing {
		t.Fatalf("code = %v, want PRECURSOR_MISSING", utils.CodeOf(err))
	}

	if _, err := s.SubmitResponse(0, "an answer"); err != nil {
		t.Fatalf("SubmitResponse: %v", err)
	}
	if err := s.RecordAnalysis(0, models.AnalysisRecord{OverallScore: 7}); err != nil {
		t.Fatalf("RecordAnalysis after response: %v", err)
	}
	if got := s.Status().AnalyzedCount; got != 1 {
		t.Fatalf("analyzed count = %d, want 1", got)
	}
}

func TestRecordAnalysisStampsIndex(t *testing.T) {
	s := New("sess-1", "user-1", "jd", fiveQuestions())

	if _, err := s.SubmitResponse(3, "answer"); err != nil {
		t.Fatalf("SubmitResponse: %v", err)
	}
	if err := s.RecordAnalysis(3, models.AnalysisRecord{QuestionIndex: 99, OverallScore: 5}); err != nil {
		t.Fatalf("RecordAnalysis: %v", err)
	}

	snap := s.Snapshot()
	if snap.Analyses[3].QuestionIndex != 3 {
		t.Fatalf("analysis index = %d, want 3", snap.Analyses[3].QuestionIndex)
	}
}

func TestResetFromAnyStage(t *testing.T) {
	s := New("sess-1", "user-1", "jd", fiveQuestions())
	if _, err := s.SubmitResponse(0, "answer"); err != nil {
		t.Fatalf("SubmitResponse: %v", err)
	}

	s.Reset()
	st := s.Status()
	if st.Stage != models.StageSetup {
		t.Fatalf("stage = %q, want %q", st.Stage, models.StageSetup)
	}
	if st.TotalQuestions != 0 || st.AnsweredCount != 0 || st.CurrentIndex != 0 {
		t.Fatalf("reset left state: %+v", st)
	}

	// operations after reset report OUT_OF_RANGE until a new setup
	if _, err := s.CurrentQuestion(); utils.CodeOf(err) != utils.CodeOutOfRange {
		t.Fatalf("CurrentQuestion after reset: code = %v", utils.CodeOf(err))
	}
	if _, err := s.SubmitResponse(0, "x"); utils.CodeOf(err) != utils.CodeOutOfRange {
		t.Fatalf("SubmitResponse after reset: code = %v", utils.CodeOf(err))
	}

	// reset is idempotent
	s.Reset()
	if s.Status().Stage != models.StageSetup {
		t.Fatal("second reset changed stage")
	}
}

func TestSnapshotIsDeepCopy(t *testing.T) {
	s := New("sess-1", "user-1", "jd", fiveQuestions())
	if _, err := s.SubmitResponse(0, "answer"); err != nil {
		t.Fatalf("SubmitResponse: %v", err)
	}

	snap := s.Snapshot()
	snap.Questions[0].Text = "mutated"
	snap.Responses[1] = models.ResponseRecord{QuestionIndex: 1, Transcript: "injected"}

	q, err := s.Question(0)
	if err != nil {
		t.Fatalf("Question: %v", err)
	}
	if q.Text == "mutated" {
		t.Fatal("snapshot shares question slice with session")
	}
	if _, ok := s.Response(1); ok {
		t.Fatal("snapshot shares response map with session")
	}
}

func TestRegistry(t *testing.T) {
	r := NewRegistry()
	s := New("sess-1", "user-1", "jd", fiveQuestions())
	r.Put(s)

	got, err := r.Get("sess-1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.ID() != "sess-1" {
		t.Fatalf("got session %q", got.ID())
	}

	if _, err := r.Get("missing"); utils.CodeOf(err) != utils.CodeNotFound {
		t.Fatalf("missing session: code = %v, want NOT_FOUND", utils.CodeOf(err))
	}

	r.Remove("sess-1")
	if r.Len() != 0 {
		t.Fatalf("Len = %d after remove, want 0", r.Len())
	}
}
