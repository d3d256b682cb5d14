package services

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"time"

	"github.com/jhimil-1/Interview/internal/cache"
	"github.com/jhimil-1/Interview/internal/models"
	"github.com/jhimil-1/Interview/internal/providers/tts"
	"github.com/jhimil-1/Interview/internal/storage"
	"github.com/jhimil-1/Interview/internal/utils"
)

// SpeechService turns question text into a stored, playable audio asset.
// Synthesis is billed per call and is never retried silently; the same text
// is served from cache instead of being re-synthesized.
type SpeechService interface {
	Synthesize(ctx context.Context, text string) (*models.AudioAsset, error)
}

type speechService struct {
	tts      tts.Provider
	uploader storage.Uploader
	cache    cache.Cache
	cacheTTL time.Duration
}

func NewSpeechService(p tts.Provider, up storage.Uploader, c cache.Cache) SpeechService {
	return &speechService{
		tts:      p,
		uploader: up,
		cache:    c,
		cacheTTL: 24 * time.Hour,
	}
}

func (s *speechService) Synthesize(ctx context.Context, text string) (*models.AudioAsset, error) {
	const op = "SpeechService.Synthesize"

	if text == "" {
		return nil, utils.E(utils.CodeInvalidArgument, op, "text is required", nil)
	}

	key := "tts:" + hashText(text)
	if s.cache != nil {
		var asset models.AudioAsset
		if hit, err := s.cache.GetJSON(ctx, key, &asset); err == nil && hit {
			asset.Cached = true
			return &asset, nil
		}
	}

	audio, contentType, err := s.tts.Synthesize(ctx, text)
	if err != nil {
		return nil, utils.E(utils.CodeSynthesisFailed, op, "speech synthesis failed", err)
	}

	objectName := "tts/" + hashText(text) + extForContentType(contentType)
	url, err := s.uploader.Upload(ctx, objectName, contentType, bytes.NewReader(audio))
	if err != nil {
		return nil, utils.E(utils.CodeSynthesisFailed, op, "failed to store synthesized audio", err)
	}

	asset := &models.AudioAsset{URL: url, ContentType: contentType}
	if s.cache != nil {
		_ = s.cache.SetJSON(ctx, key, asset, s.cacheTTL)
	}
	return asset, nil
}

func hashText(text string) string {
	sum := sha256.Sum256([]byte(text))
	return hex.EncodeToString(sum[:16])
}

func extForContentType(ct string) string {
	switch ct {
	case "audio/mpeg":
		return ".mp3"
	case "audio/wav":
		return ".wav"
	case "audio/ogg":
		return ".ogg"
	default:
		return ".bin"
	}
}
