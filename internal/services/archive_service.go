package services

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jhimil-1/Interview/internal/models"
	"github.com/jhimil-1/Interview/internal/providers/llm"
	mongorepo "github.com/jhimil-1/Interview/internal/repositories/mongo"
	pgrepo "github.com/jhimil-1/Interview/internal/repositories/postgres"
	"github.com/jhimil-1/Interview/internal/utils"
	"github.com/pgvector/pgvector-go"
	"github.com/sirupsen/logrus"
	"gorm.io/datatypes"
)

// ArchiveService persists session snapshots (Mongo) and per-answer rows
// (Postgres). Nothing in the state machine depends on it; every caller
// treats a failed write as a logged warning.
type ArchiveService interface {
	SaveSnapshot(ctx context.Context, snap models.SessionSnapshot) error
	SaveReport(ctx context.Context, sessionID string, report *models.Report) error
	LogResponse(ctx context.Context, userID, sessionID string, q models.Question, rec models.ResponseRecord, analysis *models.AnalysisRecord) error
	ListResponses(ctx context.Context, sessionID string, limit int) ([]models.ResponseLog, error)
	ListSessions(ctx context.Context, limit int64) ([]models.SessionArchive, error)
	GetSession(ctx context.Context, sessionID string) (*models.SessionArchive, error)
}

type archiveService struct {
	sessions  mongorepo.SessionArchiveRepository
	responses pgrepo.ResponseLogRepo
	embedder  llm.Embedder // optional
	retention time.Duration
	log       *logrus.Logger
}

func NewArchiveService(sessions mongorepo.SessionArchiveRepository, responses pgrepo.ResponseLogRepo, embedder llm.Embedder, log *logrus.Logger) ArchiveService {
	if log == nil {
		log = logrus.New()
	}
	return &archiveService{
		sessions:  sessions,
		responses: responses,
		embedder:  embedder,
		retention: 90 * 24 * time.Hour,
		log:       log,
	}
}

func archiveContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), 10*time.Second)
}

func (s *archiveService) SaveSnapshot(ctx context.Context, snap models.SessionSnapshot) error {
	const op = "ArchiveService.SaveSnapshot"

	now := time.Now().UTC()
	doc := &models.SessionArchive{
		SessionID:      snap.SessionID,
		UserID:         snap.UserID,
		JobDescription: snap.JobDescription,
		Stage:          snap.Stage,
		Questions:      snap.Questions,
		Responses:      snap.Responses,
		Analyses:       snap.Analyses,
		CreatedAt:      snap.CreatedAt,
		ExpiresAt:      now.Add(s.retention),
	}
	if snap.Stage == models.StageCompleted {
		doc.CompletedAt = &now
	}

	if err := s.sessions.Upsert(ctx, doc); err != nil {
		return utils.E(utils.CodeInternal, op, "failed to archive session", err)
	}
	return nil
}

func (s *archiveService) SaveReport(ctx context.Context, sessionID string, report *models.Report) error {
	const op = "ArchiveService.SaveReport"

	if err := s.sessions.AttachReport(ctx, sessionID, report); err != nil {
		return utils.E(utils.CodeInternal, op, "failed to archive report", err)
	}
	return nil
}

func (s *archiveService) LogResponse(ctx context.Context, userID, sessionID string, q models.Question, rec models.ResponseRecord, analysis *models.AnalysisRecord) error {
	const op = "ArchiveService.LogResponse"

	row := &models.ResponseLog{
		ID:            uuid.NewString(),
		UserID:        userID,
		SessionID:     sessionID,
		QuestionIndex: q.Index,
		QuestionText:  q.Text,
		SkillArea:     q.SkillArea,
		Transcript:    rec.Transcript,
		SubmittedAt:   rec.SubmittedAt,
	}

	if analysis != nil {
		row.Strengths = analysis.Strengths
		row.Weaknesses = analysis.Weaknesses
		if b, err := json.Marshal(analysis); err == nil {
			row.Scores = datatypes.JSON(b)
		}
	}

	if s.embedder != nil && rec.Transcript != "" {
		if vec, err := s.embedder.EmbedText(ctx, rec.Transcript); err != nil {
			s.log.WithError(err).Debug("transcript embedding failed")
		} else if len(vec) > 0 {
			row.Embedding = pgvector.NewVector(vec)
		}
	}

	if err := s.responses.Upsert(ctx, row); err != nil {
		return utils.E(utils.CodeInternal, op, "failed to log response", err)
	}
	return nil
}

func (s *archiveService) ListResponses(ctx context.Context, sessionID string, limit int) ([]models.ResponseLog, error) {
	const op = "ArchiveService.ListResponses"

	if sessionID == "" {
		return nil, utils.E(utils.CodeInvalidArgument, op, "session_id is required", nil)
	}
	rows, err := s.responses.ListBySession(ctx, sessionID, limit)
	if err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to list archived responses", err)
	}
	return rows, nil
}

func (s *archiveService) ListSessions(ctx context.Context, limit int64) ([]models.SessionArchive, error) {
	const op = "ArchiveService.ListSessions"

	out, err := s.sessions.ListRecent(ctx, limit)
	if err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to list archived sessions", err)
	}
	return out, nil
}

func (s *archiveService) GetSession(ctx context.Context, sessionID string) (*models.SessionArchive, error) {
	const op = "ArchiveService.GetSession"

	if sessionID == "" {
		return nil, utils.E(utils.CodeInvalidArgument, op, "session_id is required", nil)
	}
	out, err := s.sessions.GetBySessionID(ctx, sessionID)
	if err != nil {
		if errors.Is(err, utils.ErrNotFound) {
			return nil, utils.E(utils.CodeNotFound, op, "archived session not found", err)
		}
		return nil, utils.E(utils.CodeInternal, op, "failed to get archived session", err)
	}
	return out, nil
}
