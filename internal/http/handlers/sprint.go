package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/sprintflow/sprintflow-backend/internal/http/response"
	"github.com/sprintflow/sprintflow-backend/internal/services"
)

type SprintHandler struct {
	sprintService services.SprintService
}

func NewSprintHandler(sprintService services.SprintService) *SprintHandler {
	return &SprintHandler{sprintService: sprintService}
}

func (sh *SprintHandler) Create(c *gin.Context) {
	var req services.CreateSprintInput
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	sprint, err := sh.sprintService.Create(c.Request.Context(), req)
	if err != nil {
		response.RespondAppError(c, err)
		return
	}
	response.RespondCreated(c, gin.H{"sprint": sprint})
}

func (sh *SprintHandler) List(c *gin.Context) {
	sprints, err := sh.sprintService.List(c.Request.Context())
	if err != nil {
		response.RespondAppError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"sprints": sprints})
}

func (sh *SprintHandler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_id", err)
		return
	}
	sprint, err := sh.sprintService.Get(c.Request.Context(), id)
	if err != nil {
		response.RespondAppError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"sprint": sprint})
}

func (sh *SprintHandler) Update(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_id", err)
		return
	}
	var req services.UpdateSprintInput
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	sprint, err := sh.sprintService.Update(c.Request.Context(), id, req)
	if err != nil {
		response.RespondAppError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"sprint": sprint})
}

func (sh *SprintHandler) Delete(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_id", err)
		return
	}
	if err := sh.sprintService.Delete(c.Request.Context(), id); err != nil {
		response.RespondAppError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"ok": true})
}

// Synchronize re-derives every non-terminal sprint's status on demand.
func (sh *SprintHandler) Synchronize(c *gin.Context) {
	changed, err := sh.sprintService.SynchronizeStatuses(c.Request.Context(), nil)
	if err != nil {
		response.RespondAppError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"changed": changed})
}
