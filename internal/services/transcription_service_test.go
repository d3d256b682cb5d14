package services

import (
	"context"
	"errors"
	"strings"
	"testing"
)

func TestTranscribeReturnsTextAndStoredAudio(t *testing.T) {
	up := &stubUploader{url: "/static/audio/answers/x.webm"}
	svc := NewTranscriptionService(&stubSTT{text: "I would use a queue.", confidence: 0.92}, up, "en-US", nil)

	res := svc.Transcribe(context.Background(), []byte("audio-bytes"), "audio/webm")
	if !res.Success {
		t.Fatalf("Success = false: %+v", res)
	}
	if res.Text != "I would use a queue." {
		t.Fatalf("text = %q", res.Text)
	}
	if res.Confidence == nil || *res.Confidence != 0.92 {
		t.Fatalf("confidence = %v", res.Confidence)
	}
	if res.AudioURL != up.url {
		t.Fatalf("audio url = %q", res.AudioURL)
	}
	if !strings.HasPrefix(up.last, "answers/") || !strings.HasSuffix(up.last, ".webm") {
		t.Fatalf("object name = %q", up.last)
	}
}

func TestTranscribeProviderFailureIsSentinel(t *testing.T) {
	svc := NewTranscriptionService(&stubSTT{err: errors.New("recognizer unavailable")}, nil, "en-US", nil)

	res := svc.Transcribe(context.Background(), []byte("audio"), "audio/webm")
	if res.Success {
		t.Fatal("Success = true on provider failure")
	}
	if res.Error == "" {
		t.Fatal("sentinel result missing error description")
	}
	if res.Confidence != nil {
		t.Fatalf("confidence = %v on failure, want nil", res.Confidence)
	}
}

func TestTranscribeEmptyAudioAndSilence(t *testing.T) {
	svc := NewTranscriptionService(&stubSTT{text: "   "}, nil, "en-US", nil)

	if res := svc.Transcribe(context.Background(), nil, "audio/webm"); res.Success {
		t.Fatal("Success = true for empty audio")
	}
	if res := svc.Transcribe(context.Background(), []byte("audio"), "audio/webm"); res.Success || res.Error != "no speech recognized" {
		t.Fatalf("silence result = %+v", res)
	}
}

func TestTranscribeUploadFailureIsNotFatal(t *testing.T) {
	up := &stubUploader{err: errors.New("bucket gone")}
	svc := NewTranscriptionService(&stubSTT{text: "hello", confidence: 0.8}, up, "en-US", nil)

	res := svc.Transcribe(context.Background(), []byte("audio"), "audio/webm")
	if !res.Success {
		t.Fatalf("upload failure blocked transcription: %+v", res)
	}
	if res.AudioURL != "" {
		t.Fatalf("audio url = %q, want empty after failed upload", res.AudioURL)
	}
}
