package mongo

import (
	"context"
	"errors"
	"time"

	"github.com/jhimil-1/Interview/internal/models"
	"github.com/jhimil-1/Interview/internal/utils"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type SessionArchiveRepository interface {
	Upsert(ctx context.Context, a *models.SessionArchive) error
	AttachReport(ctx context.Context, sessionID string, report *models.Report) error
	GetBySessionID(ctx context.Context, sessionID string) (*models.SessionArchive, error)
	ListRecent(ctx context.Context, limit int64) ([]models.SessionArchive, error)
}

type sessionArchiveRepo struct {
	col *mongo.Collection
}

func NewSessionArchiveRepo(db *mongo.Database) SessionArchiveRepository {
	return &sessionArchiveRepo{col: db.Collection("interview_sessions")}
}

func (r *sessionArchiveRepo) Upsert(ctx context.Context, a *models.SessionArchive) error {
	if a.CreatedAt.IsZero() {
		a.CreatedAt = time.Now().UTC()
	}
	_, err := r.col.UpdateOne(ctx,
		bson.M{"session_id": a.SessionID},
		bson.M{"$set": bson.M{
			"user_id":         a.UserID,
			"job_description": a.JobDescription,
			"stage":           a.Stage,
			"questions":       a.Questions,
			"responses":       a.Responses,
			"analyses":        a.Analyses,
			"created_at":      a.CreatedAt,
			"completed_at":    a.CompletedAt,
			"expires_at":      a.ExpiresAt,
		}},
		options.Update().SetUpsert(true),
	)
	return err
}

func (r *sessionArchiveRepo) AttachReport(ctx context.Context, sessionID string, report *models.Report) error {
	_, err := r.col.UpdateOne(ctx,
		bson.M{"session_id": sessionID},
		bson.M{"$set": bson.M{"report": report}},
	)
	return err
}

func (r *sessionArchiveRepo) GetBySessionID(ctx context.Context, sessionID string) (*models.SessionArchive, error) {
	var a models.SessionArchive
	err := r.col.FindOne(ctx, bson.M{"session_id": sessionID}).Decode(&a)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, utils.ErrNotFound
	}
	return &a, err
}

func (r *sessionArchiveRepo) ListRecent(ctx context.Context, limit int64) ([]models.SessionArchive, error) {
	if limit <= 0 {
		limit = 20
	}
	cur, err := r.col.Find(ctx, bson.M{},
		options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}).SetLimit(limit))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []models.SessionArchive
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}
