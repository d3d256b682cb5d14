package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/jhimil-1/Interview/internal/services"
	"github.com/jhimil-1/Interview/internal/utils"
)

type ArchiveHandler struct {
	svc services.ArchiveService
}

func NewArchiveHandler(svc services.ArchiveService) *ArchiveHandler {
	return &ArchiveHandler{svc: svc}
}

func (h *ArchiveHandler) ListSessions(c *gin.Context) {
	limit, _ := strconv.ParseInt(c.Query("limit"), 10, 64)

	out, err := h.svc.ListSessions(c.Request.Context(), limit)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "sessions": out})
}

func (h *ArchiveHandler) GetSession(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	sess, err := h.svc.GetSession(c.Request.Context(), c.Param("session_id"))
	if err != nil {
		writeError(c, err)
		return
	}
	if sess.UserID != userID {
		writeError(c, utils.E(utils.CodeForbidden, "ArchiveHandler.GetSession", "forbidden", nil))
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "session": sess})
}

func (h *ArchiveHandler) ListResponses(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	sessionID := c.Param("session_id")
	sess, err := h.svc.GetSession(c.Request.Context(), sessionID)
	if err != nil {
		writeError(c, err)
		return
	}
	if sess.UserID != userID {
		writeError(c, utils.E(utils.CodeForbidden, "ArchiveHandler.ListResponses", "forbidden", nil))
		return
	}

	limit, _ := strconv.Atoi(c.Query("limit"))
	rows, err := h.svc.ListResponses(c.Request.Context(), sessionID, limit)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "responses": rows})
}
