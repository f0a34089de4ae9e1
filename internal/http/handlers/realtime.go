package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/sprintflow/sprintflow-backend/internal/http/response"
	"github.com/sprintflow/sprintflow-backend/internal/pkg/logger"
	"github.com/sprintflow/sprintflow-backend/internal/platform/apierr"
	"github.com/sprintflow/sprintflow-backend/internal/realtime"
	"github.com/sprintflow/sprintflow-backend/internal/requestdata"
)

type RealtimeHandler struct {
	log *logger.Logger
	hub *realtime.Hub
}

func NewRealtimeHandler(log *logger.Logger, hub *realtime.Hub) *RealtimeHandler {
	return &RealtimeHandler{log: log.With("handler", "RealtimeHandler"), hub: hub}
}

// Stream opens an SSE connection subscribed to the shared sprint channel
// and the caller's own channel. Blocks until the client disconnects.
func (rh *RealtimeHandler) Stream(c *gin.Context) {
	rd := requestdata.GetRequestData(c.Request.Context())
	if rd == nil || rd.UserID == uuid.Nil {
		response.RespondError(c, http.StatusUnauthorized, "unauthorized", apierr.Unauthorized("not authenticated"))
		return
	}

	client := rh.hub.NewClient(rd.UserID)
	rh.hub.AddChannel(client, realtime.ChannelSprints)
	rh.hub.AddChannel(client, realtime.UserChannel(rd.UserID))
	rh.log.Info("SSE stream open", "user_id", rd.UserID.String(), "client_id", client.ID.String())

	rh.hub.ServeHTTP(c.Writer, c.Request, client)
	rh.hub.CloseClient(client)
}
