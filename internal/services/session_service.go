package services

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/jhimil-1/Interview/internal/interview"
	"github.com/jhimil-1/Interview/internal/models"
	"github.com/jhimil-1/Interview/internal/utils"
	"github.com/sirupsen/logrus"
)

const (
	minQuestions = 1
	maxQuestions = 20
)

// SessionService exposes the state machine's public operations keyed by
// opaque session id. Collaborator calls are made outside the session lock;
// after each one the context is checked so an abandoned call never mutates
// the session (the caller already observed cancellation).
type SessionService interface {
	Setup(ctx context.Context, userID, jobDescription string, numQuestions int) (*SetupResult, error)
	Status(ctx context.Context, sessionID string) (models.SessionStatus, error)
	CurrentQuestion(ctx context.Context, sessionID string) (models.Question, error)
	Question(ctx context.Context, sessionID string, index int) (models.Question, error)
	SubmitResponse(ctx context.Context, sessionID string, index int, transcript string) (models.ResponseRecord, error)
	RecordAnalysis(ctx context.Context, sessionID string, index int, analysis models.AnalysisRecord) error
	AnalyzeResponse(ctx context.Context, sessionID string, index int) (*models.AnalysisRecord, error)
	Advance(ctx context.Context, sessionID string) (interview.AdvanceResult, error)
	Reset(ctx context.Context, sessionID string) error
	Snapshot(ctx context.Context, sessionID string) (models.SessionSnapshot, error)
	Owner(ctx context.Context, sessionID string) (string, error)
}

type SetupResult struct {
	SessionID      string            `json:"session_id"`
	Stage          models.Stage      `json:"stage"`
	Questions      []models.Question `json:"questions"`
	TotalQuestions int               `json:"total_questions"`
}

type sessionService struct {
	registry  *interview.Registry
	questions QuestionService
	analyzer  AnalysisService
	archive   ArchiveService // optional; nil disables archiving
	log       *logrus.Logger
}

func NewSessionService(reg *interview.Registry, q QuestionService, a AnalysisService, arch ArchiveService, log *logrus.Logger) SessionService {
	if log == nil {
		log = logrus.New()
	}
	return &sessionService{
		registry:  reg,
		questions: q,
		analyzer:  a,
		archive:   arch,
		log:       log,
	}
}

func (s *sessionService) Setup(ctx context.Context, userID, jobDescription string, numQuestions int) (*SetupResult, error) {
	const op = "SessionService.Setup"

	if strings.TrimSpace(jobDescription) == "" {
		return nil, utils.E(utils.CodeInvalidArgument, op, "job_description is required", nil)
	}
	if numQuestions < minQuestions || numQuestions > maxQuestions {
		return nil, utils.E(utils.CodeInvalidArgument, op, "num_questions must be between 1 and 20", nil)
	}

	questions, err := s.questions.Build(ctx, jobDescription, numQuestions)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, utils.E(utils.CodeTimeout, op, "setup abandoned by caller", err)
	}

	sess := interview.New(uuid.NewString(), userID, jobDescription, questions)
	s.registry.Put(sess)
	s.archiveSnapshot(sess)

	return &SetupResult{
		SessionID:      sess.ID(),
		Stage:          models.StageInProgress,
		Questions:      questions,
		TotalQuestions: len(questions),
	}, nil
}

func (s *sessionService) Status(_ context.Context, sessionID string) (models.SessionStatus, error) {
	sess, err := s.registry.Get(sessionID)
	if err != nil {
		return models.SessionStatus{}, err
	}
	return sess.Status(), nil
}

func (s *sessionService) CurrentQuestion(_ context.Context, sessionID string) (models.Question, error) {
	sess, err := s.registry.Get(sessionID)
	if err != nil {
		return models.Question{}, err
	}
	return sess.CurrentQuestion()
}

func (s *sessionService) Question(_ context.Context, sessionID string, index int) (models.Question, error) {
	sess, err := s.registry.Get(sessionID)
	if err != nil {
		return models.Question{}, err
	}
	return sess.Question(index)
}

func (s *sessionService) SubmitResponse(ctx context.Context, sessionID string, index int, transcript string) (models.ResponseRecord, error) {
	const op = "SessionService.SubmitResponse"

	sess, err := s.registry.Get(sessionID)
	if err != nil {
		return models.ResponseRecord{}, err
	}
	if err := ctx.Err(); err != nil {
		return models.ResponseRecord{}, utils.E(utils.CodeTimeout, op, "submission abandoned by caller", err)
	}

	rec, err := sess.SubmitResponse(index, transcript)
	if err != nil {
		return models.ResponseRecord{}, err
	}

	if q, qerr := sess.Question(index); qerr == nil {
		s.logResponse(sess.UserID(), sessionID, q, rec, nil)
	}
	return rec, nil
}

func (s *sessionService) RecordAnalysis(ctx context.Context, sessionID string, index int, analysis models.AnalysisRecord) error {
	const op = "SessionService.RecordAnalysis"

	sess, err := s.registry.Get(sessionID)
	if err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return utils.E(utils.CodeTimeout, op, "analysis abandoned by caller", err)
	}

	if err := sess.RecordAnalysis(index, analysis); err != nil {
		return err
	}

	if q, qerr := sess.Question(index); qerr == nil {
		if rec, ok := sess.Response(index); ok {
			a := analysis
			a.QuestionIndex = index
			s.logResponse(sess.UserID(), sessionID, q, rec, &a)
		}
	}
	return nil
}

// AnalyzeResponse runs the scoring collaborator for an already-submitted
// answer and records the result. The precursor check runs before the call so
// a sequencing bug never burns a collaborator invocation.
func (s *sessionService) AnalyzeResponse(ctx context.Context, sessionID string, index int) (*models.AnalysisRecord, error) {
	const op = "SessionService.AnalyzeResponse"

	sess, err := s.registry.Get(sessionID)
	if err != nil {
		return nil, err
	}

	q, err := sess.Question(index)
	if err != nil {
		return nil, err
	}
	rec, ok := sess.Response(index)
	if !ok {
		return nil, utils.E(utils.CodePrecursorMissing, op, "no response submitted for this question", nil)
	}

	analysis, err := s.analyzer.Analyze(ctx, sess.JobDescription(), q.Text, rec.Transcript)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, utils.E(utils.CodeTimeout, op, "analysis abandoned by caller", err)
	}

	if err := sess.RecordAnalysis(index, *analysis); err != nil {
		return nil, err
	}
	analysis.QuestionIndex = index
	s.logResponse(sess.UserID(), sessionID, q, rec, analysis)
	return analysis, nil
}

func (s *sessionService) Advance(_ context.Context, sessionID string) (interview.AdvanceResult, error) {
	sess, err := s.registry.Get(sessionID)
	if err != nil {
		return interview.AdvanceResult{}, err
	}

	res, err := sess.Advance()
	if err != nil {
		return interview.AdvanceResult{}, err
	}
	if !res.HasNext {
		s.archiveSnapshot(sess)
	}
	return res, nil
}

// Reset always succeeds: it is the recovery path from any error state, so an
// unknown session id is treated as already reset.
func (s *sessionService) Reset(_ context.Context, sessionID string) error {
	sess, err := s.registry.Get(sessionID)
	if err != nil {
		return nil
	}
	sess.Reset()
	s.archiveSnapshot(sess)
	return nil
}

func (s *sessionService) Owner(_ context.Context, sessionID string) (string, error) {
	sess, err := s.registry.Get(sessionID)
	if err != nil {
		return "", err
	}
	return sess.UserID(), nil
}

func (s *sessionService) Snapshot(_ context.Context, sessionID string) (models.SessionSnapshot, error) {
	sess, err := s.registry.Get(sessionID)
	if err != nil {
		return models.SessionSnapshot{}, err
	}
	return sess.Snapshot(), nil
}

// archive writes are best-effort: the state machine keeps working through an
// archive outage.
func (s *sessionService) archiveSnapshot(sess *interview.Session) {
	if s.archive == nil {
		return
	}
	snap := sess.Snapshot()
	go func() {
		ctx, cancel := archiveContext()
		defer cancel()
		if err := s.archive.SaveSnapshot(ctx, snap); err != nil {
			s.log.WithError(err).WithField("session_id", snap.SessionID).Warn("session archive write failed")
		}
	}()
}

func (s *sessionService) logResponse(userID, sessionID string, q models.Question, rec models.ResponseRecord, analysis *models.AnalysisRecord) {
	if s.archive == nil {
		return
	}
	go func() {
		ctx, cancel := archiveContext()
		defer cancel()
		if err := s.archive.LogResponse(ctx, userID, sessionID, q, rec, analysis); err != nil {
			s.log.WithError(err).WithField("session_id", sessionID).Warn("response log write failed")
		}
	}()
}
