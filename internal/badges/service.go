package badges

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/princekumarofficial/marketplace-service/internal/storage"
	"github.com/princekumarofficial/marketplace-service/internal/types/badges"
	"github.com/princekumarofficial/marketplace-service/internal/types/users"
)

// Store is the user-record collaborator the service reads and writes.
type Store interface {
	GetUser(ctx context.Context, userID string) (users.User, error)
	AddBadges(ctx context.Context, userID string, keys []badges.BadgeKey) error
}

// Notifier tells a connected client about new badges.
type Notifier interface {
	PublishBadgesUnlocked(userID string, keys []badges.BadgeKey) error
}

// Recorder counts unlocks.
type Recorder interface {
	BadgesUnlocked(keys []badges.BadgeKey)
}

type Service struct {
	store    Store
	notifier Notifier
	recorder Recorder
}

// NewService wires the badge service. notifier and recorder may be nil.
func NewService(store Store, notifier Notifier, recorder Recorder) *Service {
	return &Service{
		store:    store,
		notifier: notifier,
		recorder: recorder,
	}
}

// Refresh evaluates the user's current counters and persists any new badges.
// A missing user is skipped without error.
func (s *Service) Refresh(ctx context.Context, userID string) ([]badges.BadgeKey, error) {
	user, err := s.store.GetUser(ctx, userID)
	if errors.Is(err, storage.ErrUserNotFound) {
		slog.Warn("Skipping badge evaluation for unknown user", slog.String("user_id", userID))
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load user: %w", err)
	}

	res := Evaluate(user.Counters)
	if len(res.Unlocked) == 0 {
		return nil, nil
	}

	// AddBadges merges into the stored set, so a concurrent writer cannot drop keys.
	if err := s.store.AddBadges(ctx, userID, res.Unlocked); err != nil {
		return nil, fmt.Errorf("failed to persist badges: %w", err)
	}

	slog.Info("Badges unlocked",
		slog.String("user_id", userID),
		slog.Any("badges", res.Unlocked))

	if s.recorder != nil {
		s.recorder.BadgesUnlocked(res.Unlocked)
	}

	if s.notifier != nil {
		if err := s.notifier.PublishBadgesUnlocked(userID, res.Unlocked); err != nil {
			slog.Error("Failed to publish badge event",
				slog.String("user_id", userID),
				slog.String("error", err.Error()))
		}
	}

	return res.Unlocked, nil
}

// Refresher is what the HTTP layer needs from Service.
type Refresher interface {
	Refresh(ctx context.Context, userID string) ([]badges.BadgeKey, error)
}

// NewlyUnlocked refreshes userID after a counter write that already
// committed. Failures are logged and reported as no new badges; the
// reconcile worker picks them up later.
func NewlyUnlocked(ctx context.Context, r Refresher, userID string) []badges.BadgeKey {
	keys, err := r.Refresh(ctx, userID)
	if err != nil {
		slog.Error("Badge refresh failed",
			slog.String("user_id", userID),
			slog.String("error", err.Error()))
		return []badges.BadgeKey{}
	}
	if keys == nil {
		return []badges.BadgeKey{}
	}
	return keys
}
