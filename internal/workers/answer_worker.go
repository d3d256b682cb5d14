package workers

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/jhimil-1/Interview/internal/services"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// AnswerStream is the Redis stream answer audio chunks are enqueued on.
const AnswerStream = "interview:answers"

// EventsChannel is the pub/sub channel transcription and analysis results
// for one session are published to.
func EventsChannel(sessionID string) string {
	return "interview:" + sessionID + ":events"
}

// AnswerWorkerPool consumes answer audio off the Redis stream, transcribes
// it, records the transcript on the session, and runs analysis for final
// chunks. Results are published to the session's event channel.
type AnswerWorkerPool struct {
	Redis      *redis.Client
	Sessions   services.SessionService
	Transcribe services.TranscriptionService
	NumWorkers int

	Logger *logrus.Logger

	Stream         string
	Group          string
	ConsumerPrefix string
}

func (p *AnswerWorkerPool) Start(ctx context.Context) error {
	if p.Redis == nil || p.Sessions == nil || p.Transcribe == nil {
		return errors.New("AnswerWorkerPool missing dependency: Redis/Sessions/Transcribe must be set")
	}
	if p.Stream == "" {
		p.Stream = AnswerStream
	}
	if p.Group == "" {
		p.Group = "answer-workers"
	}
	if p.ConsumerPrefix == "" {
		p.ConsumerPrefix = "c"
	}
	if p.NumWorkers <= 0 {
		p.NumWorkers = 4
	}
	if p.Logger == nil {
		p.Logger = logrus.New()
	}

	_ = p.Redis.XGroupCreateMkStream(ctx, p.Stream, p.Group, "0").Err() // ignore BUSYGROUP

	for i := 0; i < p.NumWorkers; i++ {
		consumer := p.ConsumerPrefix + "-" + strconv.Itoa(i+1)
		go p.runConsumer(ctx, consumer)
	}
	return nil
}

func (p *AnswerWorkerPool) runConsumer(ctx context.Context, consumer string) {
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		res, err := p.Redis.XReadGroup(ctx, &redis.XReadGroupArgs{
			Group:    p.Group,
			Consumer: consumer,
			Streams:  []string{p.Stream, ">"},
			Count:    10,
			Block:    5 * time.Second,
		}).Result()

		if err != nil {
			if err == redis.Nil {
				continue
			}
			time.Sleep(500 * time.Millisecond)
			continue
		}

		for _, stream := range res {
			for _, msg := range stream.Messages {
				p.handleMsg(ctx, msg)
				_ = p.Redis.XAck(ctx, p.Stream, p.Group, msg.ID).Err()
			}
		}
	}
}

func (p *AnswerWorkerPool) handleMsg(ctx context.Context, msg redis.XMessage) {
	getStr := func(k string) string {
		v, ok := msg.Values[k]
		if !ok || v == nil {
			return ""
		}
		s, _ := v.(string)
		return s
	}

	sessionID := getStr("session_id")
	indexStr := getStr("question_index")
	if sessionID == "" || indexStr == "" {
		return
	}
	questionIndex, err := strconv.Atoi(indexStr)
	if err != nil || questionIndex < 0 {
		return
	}

	log := p.Logger.WithFields(logrus.Fields{
		"redis_id":       msg.ID,
		"session_id":     sessionID,
		"question_index": questionIndex,
	})

	eventsCh := EventsChannel(sessionID)
	isFinal := getStr("is_final") == "true"
	mimeType := getStr("mime_type")
	if mimeType == "" {
		mimeType = "audio/webm"
	}

	publish := func(v map[string]any) {
		payload, _ := json.Marshal(v)
		_ = p.Redis.Publish(ctx, eventsCh, string(payload)).Err()
	}
	fail := func(message string) {
		publish(map[string]any{
			"type":           "status",
			"status":         "failed",
			"message":        message,
			"question_index": questionIndex,
		})
	}

	// Fetch audio
	var audioBytes []byte
	if b64 := getStr("audio_base64"); b64 != "" {
		raw := b64
		if i := strings.Index(raw, ","); i >= 0 {
			raw = raw[i+1:] // strip data:...;base64,
		}
		decoded, derr := base64.StdEncoding.DecodeString(raw)
		if derr != nil {
			log.WithError(derr).Warn("base64 decode failed")
			fail("invalid audio_base64")
			return
		}
		audioBytes = decoded
	} else if url := getStr("audio_url"); url != "" {
		req, _ := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		resp, ferr := http.DefaultClient.Do(req)
		if ferr != nil {
			log.WithError(ferr).Warn("audio_url fetch failed")
			fail("failed to fetch audio_url")
			return
		}
		defer resp.Body.Close()

		const maxBytes = 10 << 20
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxBytes))
		if len(body) == 0 {
			fail("empty audio")
			return
		}
		audioBytes = body
	} else {
		return
	}

	publish(map[string]any{
		"type":           "status",
		"status":         "processing",
		"message":        "transcribing",
		"question_index": questionIndex,
	})

	result := p.Transcribe.Transcribe(ctx, audioBytes, mimeType)
	publish(map[string]any{
		"type":           "transcript_result",
		"question_index": questionIndex,
		"success":        result.Success,
		"transcript":     result.Text,
		"confidence":     result.Confidence,
		"error":          result.Error,
		"audio_url":      result.AudioURL,
	})
	if !result.Success {
		return
	}

	if _, err := p.Sessions.SubmitResponse(ctx, sessionID, questionIndex, result.Text); err != nil {
		log.WithError(err).Error("submit response failed")
		fail("failed to record response")
		return
	}

	if !isFinal {
		return
	}

	publish(map[string]any{
		"type":           "status",
		"status":         "processing",
		"message":        "analyzing",
		"question_index": questionIndex,
	})

	analysis, err := p.Sessions.AnalyzeResponse(ctx, sessionID, questionIndex)
	if err != nil {
		log.WithError(err).Error("analysis failed")
		fail("analysis failed")
		return
	}

	publish(map[string]any{
		"type":           "analysis_result",
		"question_index": questionIndex,
		"analysis":       analysis,
	})
	publish(map[string]any{
		"type":           "status",
		"status":         "done",
		"message":        "answer processed",
		"question_index": questionIndex,
	})
}
