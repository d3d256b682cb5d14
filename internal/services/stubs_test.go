package services

import (
	"context"
	"errors"
	"io"
	"time"

	"github.com/jhimil-1/Interview/internal/models"
)

// stubLLM answers GenerateText from a canned function. Streaming is unused by
// these services' tests.
type stubLLM struct {
	generate func(ctx context.Context, prompt string) (string, error)
	calls    int
}

func (s *stubLLM) GenerateText(ctx context.Context, prompt string) (string, error) {
	s.calls++
	return s.generate(ctx, prompt)
}

func (s *stubLLM) StreamAnswer(context.Context, string) (<-chan string, <-chan error) {
	ch := make(chan string)
	close(ch)
	errs := make(chan error, 1)
	return ch, errs
}

func (s *stubLLM) Close() error { return nil }

type stubSTT struct {
	text       string
	confidence float64
	err        error
}

func (s *stubSTT) Transcribe(context.Context, []byte, string, string) (string, float64, error) {
	return s.text, s.confidence, s.err
}

func (s *stubSTT) Close() error { return nil }

type stubTTS struct {
	audio       []byte
	contentType string
	err         error
	calls       int
}

func (s *stubTTS) Synthesize(context.Context, string) ([]byte, string, error) {
	s.calls++
	return s.audio, s.contentType, s.err
}

func (s *stubTTS) Close() error { return nil }

type stubUploader struct {
	url   string
	err   error
	calls int
	last  string
}

func (s *stubUploader) Upload(_ context.Context, objectName, _ string, _ io.Reader) (string, error) {
	s.calls++
	s.last = objectName
	return s.url, s.err
}

// memCache is an in-process Cache for exercising the synthesis cache path.
type memCache struct {
	entries map[string]models.AudioAsset
}

func newMemCache() *memCache {
	return &memCache{entries: make(map[string]models.AudioAsset)}
}

func (m *memCache) GetJSON(_ context.Context, key string, dst any) (bool, error) {
	v, ok := m.entries[key]
	if !ok {
		return false, nil
	}
	asset, isAsset := dst.(*models.AudioAsset)
	if !isAsset {
		return false, errors.New("unexpected destination type")
	}
	*asset = v
	return true, nil
}

func (m *memCache) SetJSON(_ context.Context, key string, val any, _ time.Duration) error {
	asset, ok := val.(*models.AudioAsset)
	if !ok {
		return errors.New("unexpected value type")
	}
	m.entries[key] = *asset
	return nil
}

func (m *memCache) Del(_ context.Context, keys ...string) error {
	for _, k := range keys {
		delete(m.entries, k)
	}
	return nil
}

// stubBuilder and stubAnalyzer stand in for the generation and scoring
// collaborators when exercising the session service.
type stubBuilder struct {
	questions []models.Question
	err       error
}

func (s *stubBuilder) Build(context.Context, string, int) ([]models.Question, error) {
	return s.questions, s.err
}

type stubAnalyzer struct {
	analysis *models.AnalysisRecord
	err      error
	calls    int
}

func (s *stubAnalyzer) Analyze(context.Context, string, string, string) (*models.AnalysisRecord, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	cp := *s.analysis
	return &cp, nil
}

func questionList(n int) []models.Question {
	qs := make([]models.Question, n)
	for i := range qs {
		qs[i] = models.Question{Index: i, Text: "question", SkillArea: "general", Difficulty: models.DifficultyMedium}
	}
	return qs
}

func ptr(v float64) *float64 { return &v }
