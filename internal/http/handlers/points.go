package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/sprintflow/sprintflow-backend/internal/http/response"
	"github.com/sprintflow/sprintflow-backend/internal/services"
)

type PointsHandler struct {
	pointsService services.PointsService
}

func NewPointsHandler(pointsService services.PointsService) *PointsHandler {
	return &PointsHandler{pointsService: pointsService}
}

func (ph *PointsHandler) Record(c *gin.Context) {
	var req services.RecordPointsInput
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	entry, err := ph.pointsService.RecordPoints(c.Request.Context(), req)
	if err != nil {
		response.RespondAppError(c, err)
		return
	}
	response.RespondCreated(c, gin.H{"entry": entry})
}

func (ph *PointsHandler) Remove(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_id", err)
		return
	}
	if err := ph.pointsService.RemovePoints(c.Request.Context(), id); err != nil {
		response.RespondAppError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"ok": true})
}

func (ph *PointsHandler) ListForSprint(c *gin.Context) {
	sprintID, err := uuid.Parse(c.Param("sprintId"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_id", err)
		return
	}
	entries, err := ph.pointsService.ListSprintEntries(c.Request.Context(), sprintID)
	if err != nil {
		response.RespondAppError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"entries": entries})
}

func (ph *PointsHandler) ListForUser(c *gin.Context) {
	userID, err := uuid.Parse(c.Param("userId"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_id", err)
		return
	}
	entries, err := ph.pointsService.ListUserEntries(c.Request.Context(), userID)
	if err != nil {
		response.RespondAppError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"entries": entries})
}

// ListForUserSprint narrows the registry to one user's entries in one sprint.
func (ph *PointsHandler) ListForUserSprint(c *gin.Context) {
	userID, err := uuid.Parse(c.Param("userId"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_id", err)
		return
	}
	sprintID, err := uuid.Parse(c.Param("sprintId"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_id", err)
		return
	}
	entries, err := ph.pointsService.ListUserSprintEntries(c.Request.Context(), userID, sprintID)
	if err != nil {
		response.RespondAppError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"entries": entries})
}
