package models

import (
	"time"

	"github.com/lib/pq"
	"github.com/pgvector/pgvector-go"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"gorm.io/datatypes"
)

// SessionArchive is the Mongo snapshot of one interview run. Written
// best-effort: the state machine itself is purely in-memory.
type SessionArchive struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	SessionID string             `bson:"session_id" json:"session_id"` // uuid v4
	UserID    string             `bson:"user_id" json:"user_id"`

	JobDescription string                 `bson:"job_description" json:"job_description"`
	Stage          Stage                  `bson:"stage" json:"stage"`
	Questions      []Question             `bson:"questions" json:"questions"`
	Responses      map[int]ResponseRecord `bson:"responses,omitempty" json:"responses,omitempty"`
	Analyses       map[int]AnalysisRecord `bson:"analyses,omitempty" json:"analyses,omitempty"`
	Report         *Report                `bson:"report,omitempty" json:"report,omitempty"`

	CreatedAt   time.Time  `bson:"created_at" json:"created_at"`
	CompletedAt *time.Time `bson:"completed_at,omitempty" json:"completed_at,omitempty"`
	ExpiresAt   time.Time  `bson:"expires_at" json:"expires_at"` // for TTL index
}

// ResponseLog is the Postgres row archived for each submitted answer.
// Scores mirror the session's AnalysisRecord once analysis lands; the
// embedding enables later similarity search over answer transcripts.
type ResponseLog struct {
	ID            string `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	UserID        string `gorm:"column:user_id;type:uuid;index" json:"user_id"`
	SessionID     string `gorm:"column:session_id;type:uuid;uniqueIndex:uniq_session_question,priority:1" json:"session_id"`
	QuestionIndex int    `gorm:"column:question_index;uniqueIndex:uniq_session_question,priority:2" json:"question_index"`
	QuestionText  string `gorm:"column:question_text;type:text" json:"question_text"`
	SkillArea     string `gorm:"column:skill_area;type:text" json:"skill_area"`
	Transcript    string `gorm:"column:transcript;type:text" json:"transcript"`

	Strengths  pq.StringArray `gorm:"column:strengths;type:text[]" json:"strengths"`
	Weaknesses pq.StringArray `gorm:"column:weaknesses;type:text[]" json:"weaknesses"`

	// JSONB (raw AnalysisRecord; null until analysis is recorded)
	Scores datatypes.JSON `gorm:"column:scores;type:jsonb" json:"scores"`

	// pgvector
	Embedding pgvector.Vector `gorm:"column:embedding;type:vector(768)" json:"embedding"`

	SubmittedAt time.Time `gorm:"column:submitted_at;type:timestamptz;index" json:"submitted_at"`
}

func (ResponseLog) TableName() string { return "response_logs" }
