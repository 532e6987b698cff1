package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/yungbote/mastery-engine/internal/data/repos/practice"
	"github.com/yungbote/mastery-engine/internal/http/response"
	pkgerr "github.com/yungbote/mastery-engine/internal/pkg/errors"
	"github.com/yungbote/mastery-engine/internal/pkg/logger"
)

type MaterialHandler struct {
	log       *logger.Logger
	materials practice.MaterialRepo
	concepts  practice.ConceptRepo
}

func NewMaterialHandler(log *logger.Logger, materials practice.MaterialRepo, concepts practice.ConceptRepo) *MaterialHandler {
	return &MaterialHandler{
		log:       log.With("handler", "MaterialHandler"),
		materials: materials,
		concepts:  concepts,
	}
}

func (h *MaterialHandler) List(c *gin.Context) {
	userID, err := uuid.Parse(c.Query("user_id"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_user_id", pkgerr.ErrInvalidArgument)
		return
	}
	rows, err := h.materials.ListByUserID(c.Request.Context(), nil, userID)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"materials": rows})
}

func (h *MaterialHandler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_material_id", pkgerr.ErrInvalidArgument)
		return
	}
	m, err := h.materials.GetByID(c.Request.Context(), nil, id)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	if m == nil {
		response.RespondError(c, http.StatusNotFound, "not_found", pkgerr.ErrNotFound)
		return
	}
	response.RespondOK(c, m)
}

func (h *MaterialHandler) ListConcepts(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_material_id", pkgerr.ErrInvalidArgument)
		return
	}
	rows, err := h.concepts.ListByMaterialID(c.Request.Context(), nil, id)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"concepts": rows})
}
