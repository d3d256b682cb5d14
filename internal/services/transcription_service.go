package services

import (
	"bytes"
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/jhimil-1/Interview/internal/models"
	"github.com/jhimil-1/Interview/internal/providers/stt"
	"github.com/jhimil-1/Interview/internal/storage"
	"github.com/sirupsen/logrus"
)

// TranscriptionService converts captured answer audio to text. It returns a
// sentinel result instead of an error: a recognition failure must never
// block the interview, because the caller can fall back to a manually typed
// transcript.
type TranscriptionService interface {
	Transcribe(ctx context.Context, audio []byte, mimeType string) models.TranscriptResult
}

type transcriptionService struct {
	stt      stt.Provider
	uploader storage.Uploader
	language string
	log      *logrus.Logger
}

func NewTranscriptionService(p stt.Provider, up storage.Uploader, language string, log *logrus.Logger) TranscriptionService {
	if language == "" {
		language = "en-US"
	}
	if log == nil {
		log = logrus.New()
	}
	return &transcriptionService{stt: p, uploader: up, language: language, log: log}
}

func (s *transcriptionService) Transcribe(ctx context.Context, audio []byte, mimeType string) models.TranscriptResult {
	if len(audio) == 0 {
		return models.TranscriptResult{Success: false, Error: "empty audio"}
	}

	// keep the raw answer audio for the record; losing it is not fatal
	var audioURL string
	if s.uploader != nil {
		name := "answers/" + uuid.NewString() + extForMime(mimeType)
		url, err := s.uploader.Upload(ctx, name, mimeType, bytes.NewReader(audio))
		if err != nil {
			s.log.WithError(err).Warn("failed to store answer audio")
		} else {
			audioURL = url
		}
	}

	text, conf, err := s.stt.Transcribe(ctx, audio, mimeType, s.language)
	if err != nil {
		s.log.WithError(err).Warn("transcription provider failed")
		return models.TranscriptResult{Success: false, Error: err.Error(), AudioURL: audioURL}
	}
	if strings.TrimSpace(text) == "" {
		return models.TranscriptResult{Success: false, Error: "no speech recognized", AudioURL: audioURL}
	}

	c := conf
	return models.TranscriptResult{
		Text:       text,
		Confidence: &c,
		Success:    true,
		AudioURL:   audioURL,
	}
}

func extForMime(mimeType string) string {
	mt := strings.ToLower(mimeType)
	switch {
	case strings.Contains(mt, "webm"):
		return ".webm"
	case strings.Contains(mt, "ogg"):
		return ".ogg"
	case strings.Contains(mt, "mpeg"), strings.Contains(mt, "mp3"):
		return ".mp3"
	case strings.Contains(mt, "flac"):
		return ".flac"
	default:
		return ".wav"
	}
}
