package postgres

import (
	"context"
	"errors"

	"github.com/jhimil-1/Interview/internal/models"
	"github.com/jhimil-1/Interview/internal/utils"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ResponseLogRepo interface {
	Upsert(ctx context.Context, log *models.ResponseLog) error
	ListBySession(ctx context.Context, sessionID string, limit int) ([]models.ResponseLog, error)
	LatestN(ctx context.Context, userID string, n int) ([]models.ResponseLog, error)
	GetByID(ctx context.Context, id string) (*models.ResponseLog, error)
}

type responseLogRepo struct {
	db *gorm.DB
}

func NewResponseLogRepo(db *gorm.DB) ResponseLogRepo {
	return &responseLogRepo{db: db}
}

// Upsert keys on (session_id, question_index): re-submission of a transcript
// replaces the archived row the same way it overwrites the session record.
func (r *responseLogRepo) Upsert(ctx context.Context, log *models.ResponseLog) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "session_id"}, {Name: "question_index"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"transcript", "strengths", "weaknesses", "scores", "embedding", "submitted_at",
			}),
		}).
		Create(log).Error
}

func (r *responseLogRepo) ListBySession(ctx context.Context, sessionID string, limit int) ([]models.ResponseLog, error) {
	if limit <= 0 {
		limit = 50
	}

	var rows []models.ResponseLog
	err := r.db.WithContext(ctx).
		Where("session_id = ?", sessionID).
		Order("question_index ASC").
		Limit(limit).
		Find(&rows).Error
	return rows, err
}

func (r *responseLogRepo) LatestN(ctx context.Context, userID string, n int) ([]models.ResponseLog, error) {
	if n <= 0 {
		n = 10
	}
	var rows []models.ResponseLog
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("submitted_at DESC").
		Limit(n).
		Find(&rows).Error
	return rows, err
}

func (r *responseLogRepo) GetByID(ctx context.Context, id string) (*models.ResponseLog, error) {
	var row models.ResponseLog
	err := r.db.WithContext(ctx).Where("id = ?", id).Take(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, utils.ErrNotFound
	}
	return &row, err
}
