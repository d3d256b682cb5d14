package services

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/jhimil-1/Interview/internal/models"
	"github.com/jhimil-1/Interview/internal/prompts"
	"github.com/jhimil-1/Interview/internal/providers/llm"
	"github.com/jhimil-1/Interview/internal/utils"
	"github.com/sirupsen/logrus"
)

// ReportService compiles the final evaluation. Numeric fields are always the
// deterministic aggregates over recorded analyses, so compiling twice on an
// unchanged session yields identical numbers; the summarizing collaborator
// only contributes free text, and its unavailability degrades to
// deterministic text instead of failing the report.
type ReportService interface {
	Compile(ctx context.Context, sessionID string) (*models.Report, error)
}

type reportService struct {
	sessions SessionService
	llm      llm.Provider
	archive  ArchiveService // optional
	log      *logrus.Logger
}

func NewReportService(sessions SessionService, p llm.Provider, arch ArchiveService, log *logrus.Logger) ReportService {
	if log == nil {
		log = logrus.New()
	}
	return &reportService{sessions: sessions, llm: p, archive: arch, log: log}
}

// transcript triple handed to the summarizing collaborator
type reportTriple struct {
	Question   string                 `json:"question"`
	SkillArea  string                 `json:"skill_area"`
	Difficulty models.Difficulty      `json:"difficulty"`
	Response   string                 `json:"response"`
	Analysis   *models.AnalysisRecord `json:"analysis,omitempty"`
}

// free-text portion of the summarizing collaborator's reply; numeric fields
// in its output are ignored on purpose
type rawReport struct {
	Summary             string   `json:"summary"`
	DetailedFeedback    string   `json:"detailed_feedback"`
	Strengths           []string `json:"strengths"`
	AreasForImprovement []string `json:"areas_for_improvement"`
}

func (s *reportService) Compile(ctx context.Context, sessionID string) (*models.Report, error) {
	const op = "ReportService.Compile"

	snap, err := s.sessions.Snapshot(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if len(snap.Analyses) == 0 {
		return nil, utils.E(utils.CodeInsufficientData, op, "no analyses recorded yet", nil)
	}

	table := analysesByIndex(snap.Analyses)

	report := &models.Report{
		OverallRating:       round1(meanOverall(table)),
		TechnicalCompetency: round1(meanTechnical(table)),
		CommunicationSkills: round1(meanCommunication(table)),
		PerQuestionTable:    table,
		GeneratedAt:         time.Now().UTC(),
	}
	report.Recommendation = recommendationFor(report.OverallRating)

	if text, ok := s.summarize(ctx, snap, table); ok {
		report.Summary = text.Summary
		report.DetailedFeedback = text.DetailedFeedback
		report.Strengths = text.Strengths
		report.AreasForImprovement = text.AreasForImprovement
	}
	fillDeterministicText(report, table)

	if s.archive != nil {
		rep := *report
		go func() {
			actx, cancel := archiveContext()
			defer cancel()
			if err := s.archive.SaveReport(actx, sessionID, &rep); err != nil {
				s.log.WithError(err).WithField("session_id", sessionID).Warn("report archive write failed")
			}
		}()
	}
	return report, nil
}

func (s *reportService) summarize(ctx context.Context, snap models.SessionSnapshot, table []models.AnalysisRecord) (*rawReport, bool) {
	triples := make([]reportTriple, 0, len(table))
	for _, a := range table {
		q := snap.Questions[a.QuestionIndex]
		t := reportTriple{
			Question:   q.Text,
			SkillArea:  q.SkillArea,
			Difficulty: q.Difficulty,
		}
		if rec, ok := snap.Responses[a.QuestionIndex]; ok {
			t.Response = rec.Transcript
		}
		ac := a
		t.Analysis = &ac
		triples = append(triples, t)
	}

	payload, err := json.Marshal(map[string]any{
		"job_description": snap.JobDescription,
		"interview":       triples,
	})
	if err != nil {
		return nil, false
	}

	raw, err := s.llm.GenerateText(ctx, prompts.FinalReport(string(payload)))
	if err != nil {
		s.log.WithError(err).Warn("report summarizer unavailable, using deterministic fallback")
		return nil, false
	}

	var parsed rawReport
	if err := json.Unmarshal([]byte(stripCodeFence(raw)), &parsed); err != nil {
		s.log.WithError(err).Warn("report summarizer returned unparseable output, using deterministic fallback")
		return nil, false
	}
	return &parsed, true
}

// fillDeterministicText backfills any free-text field the summarizer did not
// supply from the per-question analyses.
func fillDeterministicText(r *models.Report, table []models.AnalysisRecord) {
	if r.Summary == "" {
		r.Summary = fmt.Sprintf(
			"Candidate answered %d question(s) with an average overall score of %.1f out of 10.",
			len(table), r.OverallRating)
	}
	if r.DetailedFeedback == "" {
		var parts []string
		for _, a := range table {
			if a.Feedback != "" {
				parts = append(parts, fmt.Sprintf("Q%d: %s", a.QuestionIndex+1, a.Feedback))
			}
		}
		r.DetailedFeedback = strings.Join(parts, " ")
	}
	if len(r.Strengths) == 0 {
		r.Strengths = collectDistinct(table, func(a models.AnalysisRecord) []string { return a.Strengths })
	}
	if len(r.AreasForImprovement) == 0 {
		r.AreasForImprovement = collectDistinct(table, func(a models.AnalysisRecord) []string { return a.Weaknesses })
	}
	if r.Strengths == nil {
		r.Strengths = []string{}
	}
	if r.AreasForImprovement == nil {
		r.AreasForImprovement = []string{}
	}
}

func collectDistinct(table []models.AnalysisRecord, pick func(models.AnalysisRecord) []string) []string {
	const maxItems = 5
	seen := make(map[string]struct{})
	var out []string
	for _, a := range table {
		for _, v := range pick(a) {
			v = strings.TrimSpace(v)
			if v == "" {
				continue
			}
			if _, ok := seen[strings.ToLower(v)]; ok {
				continue
			}
			seen[strings.ToLower(v)] = struct{}{}
			out = append(out, v)
			if len(out) == maxItems {
				return out
			}
		}
	}
	return out
}

func analysesByIndex(m map[int]models.AnalysisRecord) []models.AnalysisRecord {
	out := make([]models.AnalysisRecord, 0, len(m))
	for _, a := range m {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].QuestionIndex < out[j].QuestionIndex })
	return out
}

func meanOverall(table []models.AnalysisRecord) float64 {
	var sum float64
	for _, a := range table {
		sum += a.OverallScore
	}
	return sum / float64(len(table))
}

func meanTechnical(table []models.AnalysisRecord) float64 {
	var sum float64
	var n int
	for _, a := range table {
		if a.RelevanceScore != nil {
			sum += *a.RelevanceScore
			n++
		}
		if a.DepthScore != nil {
			sum += *a.DepthScore
			n++
		}
	}
	if n == 0 {
		return meanOverall(table)
	}
	return sum / float64(n)
}

func meanCommunication(table []models.AnalysisRecord) float64 {
	var sum float64
	var n int
	for _, a := range table {
		if a.ClarityScore != nil {
			sum += *a.ClarityScore
			n++
		}
	}
	if n == 0 {
		return meanOverall(table)
	}
	return sum / float64(n)
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

func recommendationFor(rating float64) models.Recommendation {
	switch {
	case rating >= 8.5:
		return models.RecommendationStrongHire
	case rating >= 7.0:
		return models.RecommendationHire
	case rating >= 5.0:
		return models.RecommendationMaybe
	default:
		return models.RecommendationNoHire
	}
}
