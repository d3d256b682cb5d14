package services

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/jhimil-1/Interview/internal/utils"
)

func TestSynthesizeStoresAndCaches(t *testing.T) {
	provider := &stubTTS{audio: []byte("mp3-bytes"), contentType: "audio/mpeg"}
	up := &stubUploader{url: "https://bucket/tts/abc.mp3"}
	c := newMemCache()
	svc := NewSpeechService(provider, up, c)

	asset, err := svc.Synthesize(context.Background(), "Question 1: tell me about yourself")
	if err != nil {
		t.Fatalf("Synthesize: %v", err)
	}
	if asset.URL != up.url || asset.ContentType != "audio/mpeg" || asset.Cached {
		t.Fatalf("asset = %+v", asset)
	}
	if !strings.HasPrefix(up.last, "tts/") || !strings.HasSuffix(up.last, ".mp3") {
		t.Fatalf("object name = %q", up.last)
	}

	// same text again is served from cache
	again, err := svc.Synthesize(context.Background(), "Question 1: tell me about yourself")
	if err != nil {
		t.Fatalf("second Synthesize: %v", err)
	}
	if !again.Cached {
		t.Fatal("second synthesis not marked cached")
	}
	if provider.calls != 1 {
		t.Fatalf("provider called %d times, want 1", provider.calls)
	}
	if up.calls != 1 {
		t.Fatalf("uploader called %d times, want 1", up.calls)
	}
}

func TestSynthesizeDifferentTextMisses(t *testing.T) {
	provider := &stubTTS{audio: []byte("a"), contentType: "audio/mpeg"}
	svc := NewSpeechService(provider, &stubUploader{url: "u"}, newMemCache())

	if _, err := svc.Synthesize(context.Background(), "first"); err != nil {
		t.Fatalf("Synthesize: %v", err)
	}
	if _, err := svc.Synthesize(context.Background(), "second"); err != nil {
		t.Fatalf("Synthesize: %v", err)
	}
	if provider.calls != 2 {
		t.Fatalf("provider called %d times, want 2", provider.calls)
	}
}

func TestSynthesizeFailures(t *testing.T) {
	t.Run("empty text", func(t *testing.T) {
		svc := NewSpeechService(&stubTTS{}, &stubUploader{}, nil)
		if _, err := svc.Synthesize(context.Background(), ""); utils.CodeOf(err) != utils.CodeInvalidArgument {
			t.Fatalf("code = %v, want INVALID_ARGUMENT", utils.CodeOf(err))
		}
	})

	t.Run("provider failure", func(t *testing.T) {
		svc := NewSpeechService(&stubTTS{err: errors.New("voice quota")}, &stubUploader{}, nil)
		if _, err := svc.Synthesize(context.Background(), "text"); utils.CodeOf(err) != utils.CodeSynthesisFailed {
			t.Fatalf("code = %v, want SYNTHESIS_FAILED", utils.CodeOf(err))
		}
	})

	t.Run("upload failure", func(t *testing.T) {
		svc := NewSpeechService(&stubTTS{audio: []byte("a"), contentType: "audio/mpeg"}, &stubUploader{err: errors.New("denied")}, nil)
		if _, err := svc.Synthesize(context.Background(), "text"); utils.CodeOf(err) != utils.CodeSynthesisFailed {
			t.Fatalf("code = %v, want SYNTHESIS_FAILED", utils.CodeOf(err))
		}
	})
}
