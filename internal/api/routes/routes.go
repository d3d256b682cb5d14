package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/jhimil-1/Interview/internal/api/handlers"
	"github.com/jhimil-1/Interview/internal/api/middleware"
)

type Deps struct {
	JWTSecret string

	Auth      *handlers.AuthHandler
	Interview *handlers.InterviewHandler
	Archive   *handlers.ArchiveHandler
	WS        *handlers.WSHandler

	// Local audio directory served under /static/audio when object storage
	// is not configured. Empty means no static route.
	StaticAudioDir string
}

func RegisterRoutes(r *gin.Engine, d Deps) {
	// Health-ish
	r.GET("/ping", func(c *gin.Context) {
		c.JSON(200, gin.H{"message": "pong"})
	})

	if d.StaticAudioDir != "" {
		r.Static("/static/audio", d.StaticAudioDir)
	}

	// Public auth routes
	r.POST("/api/auth/register", d.Auth.Register)
	r.POST("/api/auth/login", d.Auth.Login)

	// Protected routes (JWT)
	auth := r.Group("/")
	auth.Use(middleware.JWTAuth(d.JWTSecret))

	iv := auth.Group("/api/interview")
	iv.POST("/setup", d.Interview.Setup)
	iv.GET("/:session_id/status", d.Interview.Status)
	iv.GET("/:session_id/question", d.Interview.CurrentQuestion)
	iv.POST("/:session_id/question/audio", d.Interview.QuestionAudio)
	iv.POST("/:session_id/transcribe", d.Interview.Transcribe)
	iv.POST("/:session_id/response", d.Interview.SubmitResponse)
	iv.POST("/:session_id/analyze", d.Interview.Analyze)
	iv.POST("/:session_id/analysis", d.Interview.RecordAnalysis)
	iv.POST("/:session_id/advance", d.Interview.Advance)
	iv.POST("/:session_id/reset", d.Interview.Reset)
	iv.GET("/:session_id/report", d.Interview.Report)
	iv.GET("/:session_id/report/download", d.Interview.ReportDownload)

	if d.Archive != nil {
		ar := auth.Group("/api/archive")
		ar.GET("/sessions", middleware.RequireRole("admin"), d.Archive.ListSessions)
		ar.GET("/sessions/:session_id", d.Archive.GetSession)
		ar.GET("/sessions/:session_id/responses", d.Archive.ListResponses)
	}

	// WebSocket
	if d.WS != nil {
		auth.GET("/ws/interview/:session_id", d.WS.InterviewWS)
	}
}
