package services

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/jhimil-1/Interview/internal/models"
	"github.com/jhimil-1/Interview/internal/prompts"
	"github.com/jhimil-1/Interview/internal/providers/llm"
	"github.com/jhimil-1/Interview/internal/utils"
)

type QuestionService interface {
	Build(ctx context.Context, jobDescription string, numQuestions int) ([]models.Question, error)
}

type questionService struct {
	llm llm.Provider
}

func NewQuestionService(p llm.Provider) QuestionService {
	return &questionService{llm: p}
}

// wire shape of the generation collaborator's reply
type generatedQuestion struct {
	ID         int    `json:"id"`
	Question   string `json:"question"`
	SkillArea  string `json:"skill_area"`
	Difficulty string `json:"difficulty"`
}

type generatedQuestionSet struct {
	Questions []generatedQuestion `json:"questions"`
}

// Build asks the generation collaborator for numQuestions questions and
// parses them defensively: malformed entries (missing text) are dropped, a
// short list is accepted, an empty one is a GENERATION_FAILED.
func (s *questionService) Build(ctx context.Context, jobDescription string, numQuestions int) ([]models.Question, error) {
	const op = "QuestionService.Build"

	raw, err := s.llm.GenerateText(ctx, prompts.QuestionSet(jobDescription, numQuestions))
	if err != nil {
		return nil, utils.E(utils.CodeGenerationFailed, op, "question generation call failed", err)
	}

	var parsed generatedQuestionSet
	if err := json.Unmarshal([]byte(stripCodeFence(raw)), &parsed); err != nil {
		return nil, utils.E(utils.CodeGenerationFailed, op, "question generation returned unparseable output", err)
	}

	questions := make([]models.Question, 0, len(parsed.Questions))
	for _, q := range parsed.Questions {
		text := strings.TrimSpace(q.Question)
		if text == "" {
			continue
		}
		if len(questions) == numQuestions {
			break
		}
		questions = append(questions, models.Question{
			Index:      len(questions),
			Text:       text,
			SkillArea:  strings.TrimSpace(q.SkillArea),
			Difficulty: normalizeDifficulty(q.Difficulty),
		})
	}

	if len(questions) == 0 {
		return nil, utils.E(utils.CodeGenerationFailed, op, "question generation returned no usable questions", nil)
	}
	return questions, nil
}

func normalizeDifficulty(v string) models.Difficulty {
	switch models.Difficulty(strings.ToLower(strings.TrimSpace(v))) {
	case models.DifficultyEasy:
		return models.DifficultyEasy
	case models.DifficultyHard:
		return models.DifficultyHard
	default:
		return models.DifficultyMedium
	}
}
