package models

import "time"

type Stage string

const (
	StageSetup      Stage = "SETUP"
	StageInProgress Stage = "IN_PROGRESS"
	StageCompleted  Stage = "COMPLETED"
)

type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

// Question is immutable once generated; owned exclusively by its session.
type Question struct {
	Index      int        `json:"index"`
	Text       string     `json:"text"`
	SkillArea  string     `json:"skill_area"`
	Difficulty Difficulty `json:"difficulty"`
}

// ResponseRecord holds one submitted answer transcript. At most one per
// question index; a later submission overwrites.
type ResponseRecord struct {
	QuestionIndex int       `json:"question_index"`
	Transcript    string    `json:"transcript"`
	SubmittedAt   time.Time `json:"submitted_at"`
}

// AnalysisRecord is the structured per-question score produced after a
// response is submitted. Sub-scores are pointers: nil means "not scored",
// which callers must distinguish from a scored zero.
type AnalysisRecord struct {
	QuestionIndex  int      `json:"question_index"`
	RelevanceScore *float64 `json:"relevance_score"`
	ClarityScore   *float64 `json:"clarity_score"`
	DepthScore     *float64 `json:"depth_score"`
	OverallScore   float64  `json:"overall_score"`
	Feedback       string   `json:"feedback"`

	Strengths        []string `json:"strengths,omitempty"`
	Weaknesses       []string `json:"weaknesses,omitempty"`
	FollowUpQuestion string   `json:"follow_up_question,omitempty"`
}

type SessionStatus struct {
	SessionID      string `json:"session_id"`
	Stage          Stage  `json:"stage"`
	CurrentIndex   int    `json:"current_index"`
	TotalQuestions int    `json:"total_questions"`
	AnsweredCount  int    `json:"answered_count"`
	AnalyzedCount  int    `json:"analyzed_count"`
}

// SessionSnapshot is a deep copy of session state handed to the report
// compiler and the archiver, so neither holds the session lock.
type SessionSnapshot struct {
	SessionID      string                 `json:"session_id"`
	UserID         string                 `json:"user_id"`
	JobDescription string                 `json:"job_description"`
	Stage          Stage                  `json:"stage"`
	Questions      []Question             `json:"questions"`
	CurrentIndex   int                    `json:"current_index"`
	Responses      map[int]ResponseRecord `json:"responses"`
	Analyses       map[int]AnalysisRecord `json:"analyses"`
	CreatedAt      time.Time              `json:"created_at"`
}

type Recommendation string

const (
	RecommendationStrongHire Recommendation = "strong_hire"
	RecommendationHire       Recommendation = "hire"
	RecommendationMaybe      Recommendation = "maybe"
	RecommendationNoHire     Recommendation = "no_hire"
)

// Report is derived from session analyses and never mutated after creation.
// Field names are the stable download contract.
type Report struct {
	OverallRating       float64          `json:"overall_rating"`
	TechnicalCompetency float64          `json:"technical_competency"`
	CommunicationSkills float64          `json:"communication_skills"`
	Recommendation      Recommendation   `json:"recommendation"`
	Summary             string           `json:"summary"`
	DetailedFeedback    string           `json:"detailed_feedback"`
	Strengths           []string         `json:"strengths"`
	AreasForImprovement []string         `json:"areas_for_improvement"`
	PerQuestionTable    []AnalysisRecord `json:"per_question_table"`
	GeneratedAt         time.Time        `json:"generated_at"`
}

// AudioAsset points at a stored synthesized-speech object.
type AudioAsset struct {
	URL         string `json:"url"`
	ContentType string `json:"content_type"`
	Cached      bool   `json:"cached"`
}

// TranscriptResult is the transcription adapter's sentinel result: a provider
// failure sets Success=false instead of surfacing an error, so the interview
// can continue with a manually typed transcript.
type TranscriptResult struct {
	Text       string   `json:"text"`
	Confidence *float64 `json:"confidence"`
	Success    bool     `json:"success"`
	Error      string   `json:"error,omitempty"`
	AudioURL   string   `json:"audio_url,omitempty"`
}
