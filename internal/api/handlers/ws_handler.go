package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/jhimil-1/Interview/internal/services"
	"github.com/jhimil-1/Interview/internal/utils"
	"github.com/jhimil-1/Interview/internal/workers"
	"github.com/redis/go-redis/v9"
)

type WSHandler struct {
	sessions services.SessionService
	redis    *redis.Client
	upgrader websocket.Upgrader
}

func NewWSHandler(sessions services.SessionService, rdb *redis.Client) *WSHandler {
	return &WSHandler{
		sessions: sessions,
		redis:    rdb,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true }, // TODO: restrict origin in prod
		},
	}
}

type wsClientMsg struct {
	Type          string `json:"type"`
	QuestionIndex int    `json:"question_index"`
	AudioBase64   string `json:"audio_base64"`
	AudioURL      string `json:"audio_url"`
	MimeType      string `json:"mime_type"`
	IsFinal       bool   `json:"is_final"`
}

type wsConn struct {
	c  *websocket.Conn
	mu sync.Mutex
}

func (w *wsConn) writeText(b []byte) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.c.SetWriteDeadline(time.Now().Add(10 * time.Second))
	return w.c.WriteMessage(websocket.TextMessage, b)
}

// InterviewWS streams one live interview: the client sends answer audio
// chunks, workers publish transcription and analysis results back on the
// session's event channel, and this handler forwards them as-is.
func (h *WSHandler) InterviewWS(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	sessionID := c.Param("session_id")
	if sessionID == "" {
		writeError(c, utils.E(utils.CodeInvalidArgument, "WSHandler.InterviewWS", "missing session_id", nil))
		return
	}

	owner, err := h.sessions.Owner(c.Request.Context(), sessionID)
	if err != nil {
		writeError(c, err)
		return
	}
	if owner != userID {
		writeError(c, utils.E(utils.CodeForbidden, "WSHandler.InterviewWS", "forbidden", nil))
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		// upgrade already wrote response in most cases
		return
	}
	defer conn.Close()

	wc := &wsConn{c: conn}
	ctx, cancel := context.WithCancel(c.Request.Context())
	defer cancel()

	eventsCh := workers.EventsChannel(sessionID)

	pubsub := h.redis.Subscribe(ctx, eventsCh)
	defer pubsub.Close()

	// reader: WS -> Redis Stream
	readDone := make(chan struct{})
	go func() {
		defer close(readDone)
		_ = conn.SetReadDeadline(time.Now().Add(60 * time.Second))
		conn.SetPongHandler(func(string) error {
			_ = conn.SetReadDeadline(time.Now().Add(60 * time.Second))
			return nil
		})

		for {
			_, data, rerr := conn.ReadMessage()
			if rerr != nil {
				return
			}

			var msg wsClientMsg
			if err := json.Unmarshal(data, &msg); err != nil {
				_ = wc.writeText([]byte(`{"type":"error","code":"INVALID_ARGUMENT","message":"invalid json"}`))
				continue
			}

			switch msg.Type {
			case "audio_chunk":
				if msg.QuestionIndex < 0 {
					_ = wc.writeText([]byte(`{"type":"error","code":"INVALID_ARGUMENT","message":"question_index must be >= 0"}`))
					continue
				}
				if msg.AudioBase64 == "" && msg.AudioURL == "" {
					_ = wc.writeText([]byte(`{"type":"error","code":"INVALID_ARGUMENT","message":"audio_base64 or audio_url required"}`))
					continue
				}

				fields := map[string]any{
					"session_id":     sessionID,
					"question_index": strconv.Itoa(msg.QuestionIndex),
					"is_final":       strconv.FormatBool(msg.IsFinal),
					"ts_unix":        strconv.FormatInt(time.Now().UTC().Unix(), 10),
				}
				if msg.AudioBase64 != "" {
					fields["audio_base64"] = msg.AudioBase64
				}
				if msg.AudioURL != "" {
					fields["audio_url"] = msg.AudioURL
				}
				if msg.MimeType != "" {
					fields["mime_type"] = msg.MimeType
				}

				if err := h.redis.XAdd(ctx, &redis.XAddArgs{
					Stream: workers.AnswerStream,
					Values: fields,
				}).Err(); err != nil {
					_ = wc.writeText([]byte(`{"type":"error","code":"UNAVAILABLE","message":"failed to enqueue audio"}`))
					continue
				}

				_ = h.redis.Publish(ctx, eventsCh, `{"type":"status","status":"processing","message":"answer chunk queued","question_index":`+strconv.Itoa(msg.QuestionIndex)+`}`).Err()

			case "advance":
				res, aerr := h.sessions.Advance(ctx, sessionID)
				if aerr != nil {
					_ = wc.writeText([]byte(`{"type":"error","code":"` + string(utils.CodeOf(aerr)) + `","message":"advance failed"}`))
					continue
				}
				payload, _ := json.Marshal(gin.H{
					"type":          "advanced",
					"has_next":      res.HasNext,
					"next_question": res.NextQuestion,
				})
				_ = wc.writeText(payload)

			case "end_session":
				_ = h.sessions.Reset(ctx, sessionID)
				_ = h.redis.Publish(ctx, eventsCh, `{"type":"status","status":"ended","message":"session ended"}`).Err()
				return

			default:
				_ = wc.writeText([]byte(`{"type":"error","code":"INVALID_ARGUMENT","message":"unknown message type"}`))
			}
		}
	}()

	// writer: Redis Pub/Sub -> WS
	for {
		select {
		case <-readDone:
			return
		case <-ctx.Done():
			return
		default:
			m, err := pubsub.ReceiveMessage(ctx)
			if err != nil {
				return
			}
			// forward as-is (payload expected JSON string)
			if werr := wc.writeText([]byte(m.Payload)); werr != nil {
				return
			}
		}
	}
}
