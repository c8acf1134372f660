package events

import (
	"time"

	"github.com/princekumarofficial/marketplace-service/internal/types"
	"github.com/princekumarofficial/marketplace-service/internal/types/badges"
)

// Publisher interface for publishing events
type Publisher interface {
	PublishBadgesUnlocked(userID string, keys []badges.BadgeKey) error
}

// EventPublisher implements the Publisher interface
type EventPublisher struct {
	hub WebSocketHub
}

// WebSocketHub interface for the WebSocket hub
type WebSocketHub interface {
	BroadcastToUser(userID string, event *types.Event)
	IsUserConnected(userID string) bool
}

// NewEventPublisher creates a new event publisher
func NewEventPublisher(hub WebSocketHub) *EventPublisher {
	return &EventPublisher{
		hub: hub,
	}
}

// PublishBadgesUnlocked pushes one event listing every new badge, so the
// client can celebrate the first and list the rest.
func (p *EventPublisher) PublishBadgesUnlocked(userID string, keys []badges.BadgeKey) error {
	if len(keys) == 0 {
		return nil
	}

	// Only send if the user is connected
	if !p.hub.IsUserConnected(userID) {
		return nil
	}

	eventData := &badges.UnlockedEvent{
		UserID:     userID,
		Badges:     keys,
		UnlockedAt: time.Now().UTC().Format(time.RFC3339),
	}

	p.hub.BroadcastToUser(userID, types.NewEvent(types.EventBadgeUnlocked, eventData))

	return nil
}
