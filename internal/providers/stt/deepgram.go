package stt

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const deepgramListenURL = "https://api.deepgram.com/v1/listen"

// Deepgram transcribes prerecorded audio over the REST API.
type Deepgram struct {
	apiKey string
	model  string
	client *http.Client
}

func NewDeepgram(apiKey string) *Deepgram {
	return &Deepgram{
		apiKey: apiKey,
		model:  "nova-2",
		client: &http.Client{Timeout: 60 * time.Second},
	}
}

func (d *Deepgram) Close() error { return nil }

type deepgramResponse struct {
	Results struct {
		Channels []struct {
			Alternatives []struct {
				Transcript string  `json:"transcript"`
				Confidence float64 `json:"confidence"`
			} `json:"alternatives"`
		} `json:"channels"`
	} `json:"results"`
}

func (d *Deepgram) Transcribe(ctx context.Context, audio []byte, mimeType, language string) (string, float64, error) {
	q := url.Values{}
	q.Set("model", d.model)
	q.Set("punctuate", "true")
	q.Set("smart_format", "true")
	q.Set("filler_words", "false")
	if language != "" {
		// Deepgram wants the bare code, not a BCP-47 locale
		if i := strings.Index(language, "-"); i > 0 {
			language = language[:i]
		}
		q.Set("language", language)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, deepgramListenURL+"?"+q.Encode(), bytes.NewReader(audio))
	if err != nil {
		return "", 0, err
	}
	req.Header.Set("Authorization", "Token "+d.apiKey)
	if mimeType == "" {
		mimeType = "audio/wav"
	}
	req.Header.Set("Content-Type", mimeType)

	resp, err := d.client.Do(req)
	if err != nil {
		return "", 0, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 10<<20))
	if err != nil {
		return "", 0, err
	}
	if resp.StatusCode != http.StatusOK {
		return "", 0, fmt.Errorf("deepgram: status %d: %s", resp.StatusCode, truncate(string(body), 200))
	}

	var out deepgramResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return "", 0, fmt.Errorf("deepgram: decode response: %w", err)
	}

	var bestText string
	var bestConf float64
	for _, ch := range out.Results.Channels {
		for _, alt := range ch.Alternatives {
			if alt.Transcript != "" && alt.Confidence >= bestConf {
				bestText = alt.Transcript
				bestConf = alt.Confidence
			}
		}
	}
	return bestText, bestConf, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
