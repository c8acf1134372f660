package worker

import (
	"context"
	"log/slog"
	"time"

	badgeService "github.com/princekumarofficial/marketplace-service/internal/badges"
)

// UserLister pages through user ids in ascending order.
type UserLister interface {
	ListUserIDs(ctx context.Context, afterID string, limit int) ([]string, error)
}

// Stats summarizes one reconcile pass.
type Stats struct {
	Users    int
	Unlocked int
	Failed   int
}

// BadgeReconciler re-evaluates every user so that rule table changes reach
// users whose counters did not move.
type BadgeReconciler struct {
	users     UserLister
	refresher badgeService.Refresher
	interval  time.Duration
	pageSize  int
	logger    *slog.Logger
}

func NewBadgeReconciler(users UserLister, refresher badgeService.Refresher, interval time.Duration, pageSize int, logger *slog.Logger) *BadgeReconciler {
	if pageSize <= 0 {
		pageSize = 200
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &BadgeReconciler{
		users:     users,
		refresher: refresher,
		interval:  interval,
		pageSize:  pageSize,
		logger:    logger,
	}
}

func (br *BadgeReconciler) Start(ctx context.Context) {
	ticker := time.NewTicker(br.interval)
	defer ticker.Stop()

	br.logger.Info("Badge reconciler started",
		"interval", br.interval.String(),
		"page_size", br.pageSize)

	// Run once immediately on startup
	br.RunOnce(ctx)

	for {
		select {
		case <-ctx.Done():
			br.logger.Info("Badge reconciler shutting down")
			return
		case <-ticker.C:
			br.RunOnce(ctx)
		}
	}
}

// RunOnce walks all users once. A failing user is logged and skipped.
func (br *BadgeReconciler) RunOnce(ctx context.Context) Stats {
	startTime := time.Now()
	var stats Stats

	br.logger.Info("Starting badge reconcile")

	afterID := ""
	for {
		if ctx.Err() != nil {
			break
		}

		ids, err := br.users.ListUserIDs(ctx, afterID, br.pageSize)
		if err != nil {
			br.logger.Error("Failed to list users",
				"error", err.Error(),
				"after_id", afterID,
				"duration_ms", time.Since(startTime).Milliseconds())
			return stats
		}

		for _, id := range ids {
			stats.Users++
			keys, err := br.refresher.Refresh(ctx, id)
			if err != nil {
				stats.Failed++
				br.logger.Error("Failed to refresh badges",
					"user_id", id,
					"error", err.Error())
				continue
			}
			stats.Unlocked += len(keys)
		}

		if len(ids) < br.pageSize {
			break
		}
		afterID = ids[len(ids)-1]
	}

	duration := time.Since(startTime)

	br.logger.Info("Completed badge reconcile",
		"users", stats.Users,
		"badges_unlocked", stats.Unlocked,
		"failed", stats.Failed,
		"duration_ms", duration.Milliseconds(),
		"duration", duration.String())

	return stats
}
