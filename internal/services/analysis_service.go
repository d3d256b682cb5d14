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

type AnalysisService interface {
	Analyze(ctx context.Context, jobDescription, questionText, responseText string) (*models.AnalysisRecord, error)
}

type analysisService struct {
	llm llm.Provider
}

func NewAnalysisService(p llm.Provider) AnalysisService {
	return &analysisService{llm: p}
}

// wire shape of the scoring collaborator's reply; pointers keep "missing"
// apart from "zero" at the boundary
type rawAnalysis struct {
	RelevanceScore   *float64 `json:"relevance_score"`
	ClarityScore     *float64 `json:"clarity_score"`
	DepthScore       *float64 `json:"depth_score"`
	OverallScore     *float64 `json:"overall_score"`
	Strengths        []string `json:"strengths"`
	Weaknesses       []string `json:"weaknesses"`
	Feedback         string   `json:"feedback"`
	FollowUpQuestion string   `json:"follow_up_question"`
}

// Analyze scores one question/response pair. Sub-scores missing from the
// reply stay nil; a missing overall score fails the whole analysis since
// every aggregate depends on it.
func (s *analysisService) Analyze(ctx context.Context, jobDescription, questionText, responseText string) (*models.AnalysisRecord, error) {
	const op = "AnalysisService.Analyze"

	if strings.TrimSpace(questionText) == "" || strings.TrimSpace(responseText) == "" {
		return nil, utils.E(utils.CodeInvalidArgument, op, "question and response are required", nil)
	}

	raw, err := s.llm.GenerateText(ctx, prompts.AnswerAnalysis(jobDescription, questionText, responseText))
	if err != nil {
		return nil, utils.E(utils.CodeAnalysisFailed, op, "analysis call failed", err)
	}

	var parsed rawAnalysis
	if err := json.Unmarshal([]byte(stripCodeFence(raw)), &parsed); err != nil {
		return nil, utils.E(utils.CodeAnalysisFailed, op, "analysis returned unparseable output", err)
	}
	if parsed.OverallScore == nil {
		return nil, utils.E(utils.CodeAnalysisFailed, op, "analysis is missing overall_score", nil)
	}

	overall := *clampScore(parsed.OverallScore)
	return &models.AnalysisRecord{
		RelevanceScore:   clampScore(parsed.RelevanceScore),
		ClarityScore:     clampScore(parsed.ClarityScore),
		DepthScore:       clampScore(parsed.DepthScore),
		OverallScore:     overall,
		Feedback:         strings.TrimSpace(parsed.Feedback),
		Strengths:        parsed.Strengths,
		Weaknesses:       parsed.Weaknesses,
		FollowUpQuestion: strings.TrimSpace(parsed.FollowUpQuestion),
	}, nil
}
