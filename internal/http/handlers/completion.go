package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/sprintflow/sprintflow-backend/internal/http/response"
	"github.com/sprintflow/sprintflow-backend/internal/services"
)

type CompletionHandler struct {
	completionService services.CompletionService
}

func NewCompletionHandler(completionService services.CompletionService) *CompletionHandler {
	return &CompletionHandler{completionService: completionService}
}

func (ch *CompletionHandler) Submit(c *gin.Context) {
	var req services.SubmitCompletionInput
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	rec, err := ch.completionService.Submit(c.Request.Context(), req)
	if err != nil {
		response.RespondAppError(c, err)
		return
	}
	response.RespondCreated(c, gin.H{"completion": rec})
}

// Contributions returns the merged per-user totals for a sprint, combining
// legacy completion records with points registry entries, plus the sprint-wide
// sum and distinct-user count.
func (ch *CompletionHandler) Contributions(c *gin.Context) {
	sprintID, err := uuid.Parse(c.Param("sprintId"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_id", err)
		return
	}
	contributions, err := ch.completionService.SprintContributions(c.Request.Context(), sprintID)
	if err != nil {
		response.RespondAppError(c, err)
		return
	}
	var total float64
	for _, contribution := range contributions {
		total += contribution.TotalPoints
	}
	response.RespondOK(c, gin.H{
		"contributions": contributions,
		"total_points":  total,
		"user_count":    len(contributions),
	})
}

// ListRecords returns the raw legacy completion rows for a sprint, without
// registry reconciliation.
func (ch *CompletionHandler) ListRecords(c *gin.Context) {
	sprintID, err := uuid.Parse(c.Param("sprintId"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_id", err)
		return
	}
	records, err := ch.completionService.ListSprintCompletions(c.Request.Context(), sprintID)
	if err != nil {
		response.RespondAppError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"completions": records})
}

func (ch *CompletionHandler) GetForUser(c *gin.Context) {
	sprintID, err := uuid.Parse(c.Param("sprintId"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_id", err)
		return
	}
	userID, err := uuid.Parse(c.Param("userId"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_id", err)
		return
	}
	rec, err := ch.completionService.GetUserCompletion(c.Request.Context(), sprintID, userID)
	if err != nil {
		response.RespondAppError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"completion": rec})
}

func (ch *CompletionHandler) Delete(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_id", err)
		return
	}
	if err := ch.completionService.Delete(c.Request.Context(), id); err != nil {
		response.RespondAppError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"ok": true})
}
