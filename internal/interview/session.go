// Package interview owns the session state machine: stage transitions,
// question position, and the collected response/analysis pairs. Collaborator
// calls (generation, synthesis, transcription, scoring) never happen under
// the session lock; services call them first and mutate the session after.
package interview

import (
	"sync"
	"time"

	"github.com/jhimil-1/Interview/internal/models"
	"github.com/jhimil-1/Interview/internal/utils"
)

// Session is one interview run. All mutation goes through its methods, which
// serialize on a single mutex so concurrent submits and resets cannot tear
// the state.
type Session struct {
	mu sync.Mutex

	id             string
	userID         string
	jobDescription string
	questions      []models.Question
	currentIndex   int
	responses      map[int]models.ResponseRecord
	analyses       map[int]models.AnalysisRecord
	stage          models.Stage
	createdAt      time.Time
}

// AdvanceResult reports whether a further question exists after advancing.
type AdvanceResult struct {
	HasNext      bool             `json:"has_next"`
	NextQuestion *models.Question `json:"next_question"`
}

// New returns a session already in IN_PROGRESS holding the generated
// question list, positioned at question 0.
func New(id, userID, jobDescription string, questions []models.Question) *Session {
	return &Session{
		id:             id,
		userID:         userID,
		jobDescription: jobDescription,
		questions:      questions,
		currentIndex:   0,
		responses:      make(map[int]models.ResponseRecord),
		analyses:       make(map[int]models.AnalysisRecord),
		stage:          models.StageInProgress,
		createdAt:      time.Now().UTC(),
	}
}

func (s *Session) ID() string     { return s.id }
func (s *Session) UserID() string { return s.userID }

func (s *Session) JobDescription() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.jobDescription
}

// CurrentQuestion fails once the position has moved past the last question
// or the session has been reset back to SETUP.
func (s *Session) CurrentQuestion() (models.Question, error) {
	const op = "Session.CurrentQuestion"

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stage == models.StageSetup {
		return models.Question{}, utils.E(utils.CodeOutOfRange, op, "session is not set up", nil)
	}
	if s.currentIndex >= len(s.questions) {
		return models.Question{}, utils.E(utils.CodeOutOfRange, op, "no current question: session completed", nil)
	}
	return s.questions[s.currentIndex], nil
}

// Question returns the question at an explicit index (for delivery and
// analysis of answers that arrive out of band).
func (s *Session) Question(index int) (models.Question, error) {
	const op = "Session.Question"

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stage == models.StageSetup {
		return models.Question{}, utils.E(utils.CodeOutOfRange, op, "session is not set up", nil)
	}
	if index < 0 || index >= len(s.questions) {
		return models.Question{}, utils.E(utils.CodeOutOfRange, op, "question index out of range", nil)
	}
	return s.questions[index], nil
}

// SubmitResponse stores a transcript for a question. Re-submission
// overwrites (manual transcript correction relies on this). The current
// position does not move; callers advance explicitly.
func (s *Session) SubmitResponse(index int, transcript string) (models.ResponseRecord, error) {
	const op = "Session.SubmitResponse"

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stage != models.StageInProgress {
		return models.ResponseRecord{}, utils.E(utils.CodeOutOfRange, op, "session is not in progress", nil)
	}
	if index < 0 || index >= len(s.questions) {
		return models.ResponseRecord{}, utils.E(utils.CodeOutOfRange, op, "question index out of range", nil)
	}

	rec := models.ResponseRecord{
		QuestionIndex: index,
		Transcript:    transcript,
		SubmittedAt:   time.Now().UTC(),
	}
	s.responses[index] = rec
	return rec, nil
}

// RecordAnalysis attaches a score record to an already-answered question.
// An answered-but-unanalyzed question is tolerated indefinitely; analysis
// before submission is a sequencing bug and is rejected.
func (s *Session) RecordAnalysis(index int, analysis models.AnalysisRecord) error {
	const op = "Session.RecordAnalysis"

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stage == models.StageSetup {
		return utils.E(utils.CodeOutOfRange, op, "session is not set up", nil)
	}
	if index < 0 || index >= len(s.questions) {
		return utils.E(utils.CodeOutOfRange, op, "question index out of range", nil)
	}
	if _, ok := s.responses[index]; !ok {
		return utils.E(utils.CodePrecursorMissing, op, "no response submitted for this question", nil)
	}

	analysis.QuestionIndex = index
	s.analyses[index] = analysis
	return nil
}

// Advance moves the position forward one question, saturating at the end of
// the list. Reaching the end transitions the session to COMPLETED; further
// calls are harmless no-ops.
func (s *Session) Advance() (AdvanceResult, error) {
	const op = "Session.Advance"

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stage == models.StageSetup {
		return AdvanceResult{}, utils.E(utils.CodeOutOfRange, op, "session is not set up", nil)
	}

	if s.currentIndex < len(s.questions) {
		s.currentIndex++
	}
	if s.currentIndex >= len(s.questions) {
		s.stage = models.StageCompleted
		return AdvanceResult{HasNext: false}, nil
	}

	q := s.questions[s.currentIndex]
	return AdvanceResult{HasNext: true, NextQuestion: &q}, nil
}

// Reset discards everything and returns to SETUP. It has no preconditions;
// this is the recovery path from any error state.
func (s *Session) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.jobDescription = ""
	s.questions = nil
	s.currentIndex = 0
	s.responses = make(map[int]models.ResponseRecord)
	s.analyses = make(map[int]models.AnalysisRecord)
	s.stage = models.StageSetup
}

// Status is a pure read.
func (s *Session) Status() models.SessionStatus {
	s.mu.Lock()
	defer s.mu.Unlock()

	return models.SessionStatus{
		SessionID:      s.id,
		Stage:          s.stage,
		CurrentIndex:   s.currentIndex,
		TotalQuestions: len(s.questions),
		AnsweredCount:  len(s.responses),
		AnalyzedCount:  len(s.analyses),
	}
}

// Response returns the stored transcript for a question, if any.
func (s *Session) Response(index int) (models.ResponseRecord, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.responses[index]
	return rec, ok
}

// Snapshot deep-copies session state so the report compiler and archiver can
// work without holding the lock.
func (s *Session) Snapshot() models.SessionSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := models.SessionSnapshot{
		SessionID:      s.id,
		UserID:         s.userID,
		JobDescription: s.jobDescription,
		Stage:          s.stage,
		Questions:      make([]models.Question, len(s.questions)),
		CurrentIndex:   s.currentIndex,
		Responses:      make(map[int]models.ResponseRecord, len(s.responses)),
		Analyses:       make(map[int]models.AnalysisRecord, len(s.analyses)),
		CreatedAt:      s.createdAt,
	}
	copy(snap.Questions, s.questions)
	for k, v := range s.responses {
		snap.Responses[k] = v
	}
	for k, v := range s.analyses {
		snap.Analyses[k] = v
	}
	return snap
}
