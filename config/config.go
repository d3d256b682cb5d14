package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Config carries provider credentials and tuning knobs read from the
// environment. Postgres/Mongo/Redis each keep their own Init* in this package.
type Config struct {
	Port string

	// Vertex AI (question generation, scoring, report summary, embeddings)
	GCPProject    string
	GCPLocation   string
	GeminiModel   string
	EmbeddingModel string

	// Speech-to-text
	STTProvider    string // "google" | "deepgram"
	DeepgramAPIKey string
	STTLanguage    string

	// Text-to-speech
	ElevenLabsAPIKey  string
	ElevenLabsVoiceID string

	// Audio asset storage
	GCSBucket     string // when empty, LocalAudioDir is used
	LocalAudioDir string

	JWTSecret string

	AnswerWorkers int
}

func Load() (*Config, error) {
	cfg := &Config{
		Port:              getenv("PORT", "8080"),
		GCPProject:        os.Getenv("GCP_PROJECT"),
		GCPLocation:       getenv("GCP_LOCATION", "us-central1"),
		GeminiModel:       getenv("GEMINI_MODEL", "gemini-1.5-flash"),
		EmbeddingModel:    getenv("EMBEDDING_MODEL", "text-embedding-004"),
		STTProvider:       strings.ToLower(getenv("STT_PROVIDER", "google")),
		DeepgramAPIKey:    os.Getenv("DEEPGRAM_API_KEY"),
		STTLanguage:       getenv("STT_LANGUAGE", "en-US"),
		ElevenLabsAPIKey:  os.Getenv("ELEVENLABS_API_KEY"),
		ElevenLabsVoiceID: getenv("ELEVENLABS_VOICE_ID", "pNInz6obpgDQGcFmaJgB"),
		GCSBucket:         os.Getenv("GCS_BUCKET"),
		LocalAudioDir:     getenv("LOCAL_AUDIO_DIR", "static/audio"),
		JWTSecret:         os.Getenv("JWT_SECRET"),
		AnswerWorkers:     getenvInt("ANSWER_WORKERS", 4),
	}
	return cfg, cfg.Validate()
}

func (c *Config) Validate() error {
	var missing []string
	if c.GCPProject == "" {
		missing = append(missing, "GCP_PROJECT")
	}
	if c.ElevenLabsAPIKey == "" {
		missing = append(missing, "ELEVENLABS_API_KEY")
	}
	if c.JWTSecret == "" {
		missing = append(missing, "JWT_SECRET")
	}
	if c.STTProvider == "deepgram" && c.DeepgramAPIKey == "" {
		missing = append(missing, "DEEPGRAM_API_KEY")
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required environment variables: %s", strings.Join(missing, ", "))
	}
	if c.STTProvider != "google" && c.STTProvider != "deepgram" {
		return errors.New("STT_PROVIDER must be google or deepgram")
	}
	return nil
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return def
	}
	return n
}
