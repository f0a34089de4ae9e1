package services

import (
	"context"

	"github.com/sprintflow/sprintflow-backend/internal/domain"
	"github.com/sprintflow/sprintflow-backend/internal/pkg/logger"
	"github.com/sprintflow/sprintflow-backend/internal/realtime"
	"github.com/sprintflow/sprintflow-backend/internal/realtime/bus"
)

// Notifier publishes sprint lifecycle events to the realtime bus. Every
// method is best-effort and nil-safe: a missing bus or a publish failure is
// logged and never fails the calling operation.
type Notifier interface {
	SprintCreated(s *domain.Sprint)
	SprintUpdated(s *domain.Sprint)
	SprintStatusChanged(s *domain.Sprint, from, to domain.Status)
	PointsRecorded(entry *domain.PointsRegistryEntry)
	PointsRemoved(entry *domain.PointsRegistryEntry)
	CompletionSubmitted(rec *domain.CompletionRecord)
}

type notifier struct {
	log *logger.Logger
	bus bus.Bus
}

func NewNotifier(log *logger.Logger, b bus.Bus) Notifier {
	return &notifier{log: log.With("service", "Notifier"), bus: b}
}

func (n *notifier) publish(event realtime.Event, data any) {
	if n == nil || n.bus == nil {
		return
	}
	msg := realtime.Message{Channel: realtime.ChannelSprints, Event: event, Data: data}
	if err := n.bus.Publish(context.Background(), msg); err != nil {
		n.log.Warn("publish realtime event failed", "event", event, "error", err)
	}
}

func (n *notifier) SprintCreated(s *domain.Sprint) {
	n.publish(realtime.EventSprintCreated, map[string]any{"sprint": s})
}

func (n *notifier) SprintUpdated(s *domain.Sprint) {
	n.publish(realtime.EventSprintUpdated, map[string]any{"sprint": s})
}

func (n *notifier) SprintStatusChanged(s *domain.Sprint, from, to domain.Status) {
	n.publish(realtime.EventSprintStatusChanged, map[string]any{
		"sprint_id": s.ID,
		"from":      from,
		"to":        to,
	})
}

func (n *notifier) PointsRecorded(entry *domain.PointsRegistryEntry) {
	n.publish(realtime.EventPointsRecorded, map[string]any{
		"sprint_id":    entry.SprintID,
		"user_id":      entry.UserID,
		"total_points": entry.TotalPoints,
	})
}

func (n *notifier) PointsRemoved(entry *domain.PointsRegistryEntry) {
	n.publish(realtime.EventPointsRemoved, map[string]any{
		"sprint_id":    entry.SprintID,
		"user_id":      entry.UserID,
		"total_points": entry.TotalPoints,
	})
}

func (n *notifier) CompletionSubmitted(rec *domain.CompletionRecord) {
	n.publish(realtime.EventCompletionSubmitted, map[string]any{
		"sprint_id":             rec.SprintID,
		"user_id":               rec.UserID,
		"total_achieved_points": rec.TotalAchievedPoints,
	})
}
