package handlers

import (
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jhimil-1/Interview/internal/models"
	"github.com/jhimil-1/Interview/internal/prompts"
	"github.com/jhimil-1/Interview/internal/services"
	"github.com/jhimil-1/Interview/internal/utils"
)

// InterviewHandler exposes the session state machine 1:1 over HTTP, plus the
// speech and transcription adapters that feed it.
type InterviewHandler struct {
	sessions   services.SessionService
	speech     services.SpeechService
	transcribe services.TranscriptionService
	reports    services.ReportService
}

func NewInterviewHandler(sessions services.SessionService, speech services.SpeechService, transcribe services.TranscriptionService, reports services.ReportService) *InterviewHandler {
	return &InterviewHandler{
		sessions:   sessions,
		speech:     speech,
		transcribe: transcribe,
		reports:    reports,
	}
}

// authorizeSession rejects callers operating on someone else's session.
func (h *InterviewHandler) authorizeSession(c *gin.Context, op string) (string, bool) {
	userID, ok := requireUserID(c)
	if !ok {
		return "", false
	}

	sessionID := c.Param("session_id")
	if sessionID == "" {
		writeError(c, utils.E(utils.CodeInvalidArgument, op, "missing session_id", nil))
		return "", false
	}

	owner, err := h.sessions.Owner(c.Request.Context(), sessionID)
	if err != nil {
		writeError(c, err)
		return "", false
	}
	if owner != userID {
		writeError(c, utils.E(utils.CodeForbidden, op, "forbidden", nil))
		return "", false
	}
	return sessionID, true
}

type SetupRequest struct {
	JobDescription string `json:"job_description" binding:"required"`
	NumQuestions   int    `json:"num_questions"`
}

func (h *InterviewHandler) Setup(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	var req SetupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, utils.E(utils.CodeInvalidArgument, "InterviewHandler.Setup", "invalid request body", err))
		return
	}
	if req.NumQuestions == 0 {
		req.NumQuestions = 5
	}

	res, err := h.sessions.Setup(c.Request.Context(), userID, req.JobDescription, req.NumQuestions)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":         true,
		"session_id":      res.SessionID,
		"stage":           res.Stage,
		"questions":       res.Questions,
		"total_questions": res.TotalQuestions,
	})
}

func (h *InterviewHandler) Status(c *gin.Context) {
	sessionID, ok := h.authorizeSession(c, "InterviewHandler.Status")
	if !ok {
		return
	}

	st, err := h.sessions.Status(c.Request.Context(), sessionID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "status": st})
}

func (h *InterviewHandler) CurrentQuestion(c *gin.Context) {
	sessionID, ok := h.authorizeSession(c, "InterviewHandler.CurrentQuestion")
	if !ok {
		return
	}

	q, err := h.sessions.CurrentQuestion(c.Request.Context(), sessionID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "question": q})
}

type QuestionAudioRequest struct {
	QuestionIndex *int `json:"question_index"`
}

// QuestionAudio synthesizes the spoken form of a question. Defaults to the
// current question when no index is given.
func (h *InterviewHandler) QuestionAudio(c *gin.Context) {
	const op = "InterviewHandler.QuestionAudio"

	sessionID, ok := h.authorizeSession(c, op)
	if !ok {
		return
	}

	var req QuestionAudioRequest
	_ = c.ShouldBindJSON(&req) // empty body allowed

	var q models.Question
	var err error
	if req.QuestionIndex != nil {
		q, err = h.sessions.Question(c.Request.Context(), sessionID, *req.QuestionIndex)
	} else {
		q, err = h.sessions.CurrentQuestion(c.Request.Context(), sessionID)
	}
	if err != nil {
		writeError(c, err)
		return
	}

	spoken := fmt.Sprintf("Question %d: %s", q.Index+1, q.Text)
	asset, err := h.speech.Synthesize(c.Request.Context(), spoken)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":      true,
		"question":     q,
		"audio_url":    asset.URL,
		"content_type": asset.ContentType,
		"cached":       asset.Cached,
	})
}

// Transcribe accepts a multipart answer recording and returns the sentinel
// transcript result. A provider failure is still HTTP 200 with
// success=false: the caller falls back to a manually typed transcript.
func (h *InterviewHandler) Transcribe(c *gin.Context) {
	const op = "InterviewHandler.Transcribe"

	_, ok := h.authorizeSession(c, op)
	if !ok {
		return
	}

	fh, err := c.FormFile("audio_file")
	if err != nil {
		writeError(c, utils.E(utils.CodeInvalidArgument, op, "audio_file is required", err))
		return
	}

	f, err := fh.Open()
	if err != nil {
		writeError(c, utils.E(utils.CodeInvalidArgument, op, "failed to read audio_file", err))
		return
	}
	defer f.Close()

	const maxAudioBytes = 25 << 20
	audio, err := io.ReadAll(io.LimitReader(f, maxAudioBytes))
	if err != nil {
		writeError(c, utils.E(utils.CodeInvalidArgument, op, "failed to read audio_file", err))
		return
	}

	result := h.transcribe.Transcribe(c.Request.Context(), audio, fh.Header.Get("Content-Type"))
	c.JSON(http.StatusOK, result)
}

type SubmitResponseRequest struct {
	QuestionIndex *int   `json:"question_index" binding:"required"`
	Transcript    string `json:"transcript" binding:"required"`
}

func (h *InterviewHandler) SubmitResponse(c *gin.Context) {
	const op = "InterviewHandler.SubmitResponse"

	sessionID, ok := h.authorizeSession(c, op)
	if !ok {
		return
	}

	var req SubmitResponseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, utils.E(utils.CodeInvalidArgument, op, "invalid request body", err))
		return
	}

	rec, err := h.sessions.SubmitResponse(c.Request.Context(), sessionID, *req.QuestionIndex, req.Transcript)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "response": rec})
}

type AnalyzeRequest struct {
	QuestionIndex *int `json:"question_index" binding:"required"`
}

func (h *InterviewHandler) Analyze(c *gin.Context) {
	const op = "InterviewHandler.Analyze"

	sessionID, ok := h.authorizeSession(c, op)
	if !ok {
		return
	}

	var req AnalyzeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, utils.E(utils.CodeInvalidArgument, op, "invalid request body", err))
		return
	}

	analysis, err := h.sessions.AnalyzeResponse(c.Request.Context(), sessionID, *req.QuestionIndex)
	if err != nil {
		writeError(c, err)
		return
	}

	// spoken acknowledgement between questions; losing it is not fatal
	var ackURL string
	if ack, aerr := h.speech.Synthesize(c.Request.Context(), prompts.ThankYou(analysis.Feedback)); aerr == nil {
		ackURL = ack.URL
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "analysis": analysis, "ack_audio_url": ackURL})
}

type RecordAnalysisRequest struct {
	QuestionIndex *int                  `json:"question_index" binding:"required"`
	Analysis      models.AnalysisRecord `json:"analysis" binding:"required"`
}

// RecordAnalysis stores an externally produced score record (e.g. a manual
// override) without invoking the scoring collaborator.
func (h *InterviewHandler) RecordAnalysis(c *gin.Context) {
	const op = "InterviewHandler.RecordAnalysis"

	sessionID, ok := h.authorizeSession(c, op)
	if !ok {
		return
	}

	var req RecordAnalysisRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, utils.E(utils.CodeInvalidArgument, op, "invalid request body", err))
		return
	}

	if err := h.sessions.RecordAnalysis(c.Request.Context(), sessionID, *req.QuestionIndex, req.Analysis); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (h *InterviewHandler) Advance(c *gin.Context) {
	sessionID, ok := h.authorizeSession(c, "InterviewHandler.Advance")
	if !ok {
		return
	}

	res, err := h.sessions.Advance(c.Request.Context(), sessionID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success":       true,
		"has_next":      res.HasNext,
		"next_question": res.NextQuestion,
	})
}

func (h *InterviewHandler) Reset(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	_ = userID // reset has no preconditions; ownership of a gone session is moot

	if err := h.sessions.Reset(c.Request.Context(), c.Param("session_id")); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "interview reset"})
}

func (h *InterviewHandler) Report(c *gin.Context) {
	sessionID, ok := h.authorizeSession(c, "InterviewHandler.Report")
	if !ok {
		return
	}

	report, err := h.reports.Compile(c.Request.Context(), sessionID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "report": report})
}

// ReportDownload serializes the report as an attachment with the stable
// field names consumers depend on.
func (h *InterviewHandler) ReportDownload(c *gin.Context) {
	sessionID, ok := h.authorizeSession(c, "InterviewHandler.ReportDownload")
	if !ok {
		return
	}

	report, err := h.reports.Compile(c.Request.Context(), sessionID)
	if err != nil {
		writeError(c, err)
		return
	}

	filename := fmt.Sprintf("interview_report_%s.json", time.Now().UTC().Format("20060102_150405"))
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.JSON(http.StatusOK, report)
}
