package tts

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

const elevenLabsBaseURL = "https://api.elevenlabs.io/v1/text-to-speech"

// ElevenLabs synthesizes speech over the REST API and returns mp3 bytes.
type ElevenLabs struct {
	apiKey  string
	voiceID string
	client  *http.Client
}

func NewElevenLabs(apiKey, voiceID string) *ElevenLabs {
	if voiceID == "" {
		voiceID = "pNInz6obpgDQGcFmaJgB"
	}
	return &ElevenLabs{
		apiKey:  apiKey,
		voiceID: voiceID,
		client:  &http.Client{Timeout: 60 * time.Second},
	}
}

func (e *ElevenLabs) Close() error { return nil }

type elevenLabsRequest struct {
	Text    string `json:"text"`
	ModelID string `json:"model_id"`
}

func (e *ElevenLabs) Synthesize(ctx context.Context, text string) ([]byte, string, error) {
	payload, err := json.Marshal(elevenLabsRequest{
		Text:    text,
		ModelID: "eleven_monolingual_v1",
	})
	if err != nil {
		return nil, "", err
	}

	url := fmt.Sprintf("%s/%s?output_format=mp3_44100_128", elevenLabsBaseURL, e.voiceID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return nil, "", err
	}
	req.Header.Set("xi-api-key", e.apiKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "audio/mpeg")

	resp, err := e.client.Do(req)
	if err != nil {
		return nil, "", err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 25<<20))
	if err != nil {
		return nil, "", err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, "", fmt.Errorf("elevenlabs: status %d: %s", resp.StatusCode, truncate(string(body), 200))
	}
	if len(body) == 0 {
		return nil, "", fmt.Errorf("elevenlabs: empty audio response")
	}

	return body, "audio/mpeg", nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
