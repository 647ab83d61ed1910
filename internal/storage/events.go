package storage

import (
	"time"

	"github.com/go-co-op/gocron/v2"

	"github.com/evermore-app/evermore/internal/gormw"
	"github.com/evermore-app/evermore/internal/models"
)

func AddAnalyticsEvent(db *gormw.DB, event *models.AnalyticsEvent) error {
	return db.Create(event).Error
}

// Analytics rows accumulate forever if not register a pruner.
func RegisterAnalyticsEventsPruner(scheduler gocron.Scheduler, db *gormw.DB, retention time.Duration) {
	_, _ = scheduler.NewJob(
		gocron.CronJob(
			// 4am Daily
			"0 4 * * *",
			false,
		),
		gocron.NewTask(
			func() {
				logger.Info().Msg("Pruning aged analytics events")
				if err := PruneAnalyticsEvents(db, time.Now().Add(-retention)); err != nil {
					logger.Error().Err(err).Msg("Failed to prune analytics events")
				}
			},
		),
	)
}

// PruneAnalyticsEvents deletes events recorded before cutoff.
func PruneAnalyticsEvents(db *gormw.DB, cutoff time.Time) error {
	return db.Where("created_at < ?", cutoff).Delete(&models.AnalyticsEvent{}).Error
}
