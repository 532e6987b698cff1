package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/yungbote/mastery-engine/internal/http/response"
	pkgerr "github.com/yungbote/mastery-engine/internal/pkg/errors"
	"github.com/yungbote/mastery-engine/internal/pkg/logger"
	"github.com/yungbote/mastery-engine/internal/services"
)

type SessionHandler struct {
	log      *logger.Logger
	sessions services.SessionService
}

func NewSessionHandler(log *logger.Logger, sessions services.SessionService) *SessionHandler {
	return &SessionHandler{
		log:      log.With("handler", "SessionHandler"),
		sessions: sessions,
	}
}

type startSessionRequest struct {
	UserID     string `json:"user_id" binding:"required"`
	MaterialID string `json:"material_id" binding:"required"`
}

func (h *SessionHandler) Start(c *gin.Context) {
	var req startSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}
	userID, err := uuid.Parse(req.UserID)
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_user_id", err)
		return
	}
	materialID, err := uuid.Parse(req.MaterialID)
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_material_id", err)
		return
	}

	q, err := h.sessions.Start(c.Request.Context(), userID, materialID)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, q)
}

func (h *SessionHandler) Next(c *gin.Context) {
	sessionID, ok := h.sessionID(c)
	if !ok {
		return
	}
	q, err := h.sessions.Next(c.Request.Context(), sessionID)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, q)
}

func (h *SessionHandler) Answer(c *gin.Context) {
	sessionID, ok := h.sessionID(c)
	if !ok {
		return
	}
	var in services.AnswerInput
	if err := c.ShouldBindJSON(&in); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}
	fb, err := h.sessions.Answer(c.Request.Context(), sessionID, in)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, fb)
}

func (h *SessionHandler) Skip(c *gin.Context) {
	sessionID, ok := h.sessionID(c)
	if !ok {
		return
	}
	fb, err := h.sessions.Skip(c.Request.Context(), sessionID)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, fb)
}

func (h *SessionHandler) Hint(c *gin.Context) {
	sessionID, ok := h.sessionID(c)
	if !ok {
		return
	}
	aid, err := h.sessions.Hint(c.Request.Context(), sessionID)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, aid)
}

func (h *SessionHandler) Peek(c *gin.Context) {
	sessionID, ok := h.sessionID(c)
	if !ok {
		return
	}
	aid, err := h.sessions.Peek(c.Request.Context(), sessionID)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, aid)
}

func (h *SessionHandler) End(c *gin.Context) {
	sessionID, ok := h.sessionID(c)
	if !ok {
		return
	}
	summary, err := h.sessions.End(c.Request.Context(), sessionID)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, summary)
}

func (h *SessionHandler) Abandon(c *gin.Context) {
	sessionID, ok := h.sessionID(c)
	if !ok {
		return
	}
	if err := h.sessions.Abandon(c.Request.Context(), sessionID); err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"status": "abandoned"})
}

func (h *SessionHandler) Get(c *gin.Context) {
	sessionID, ok := h.sessionID(c)
	if !ok {
		return
	}
	snap, err := h.sessions.Snapshot(c.Request.Context(), sessionID)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, snap)
}

func (h *SessionHandler) sessionID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_session_id", pkgerr.ErrInvalidArgument)
		return uuid.Nil, false
	}
	return id, true
}
