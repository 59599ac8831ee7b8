package cron

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"villacal/services/calendar"
	"villacal/utils"
)

// InitRefreshWorker schedules background warm refreshes of every configured
// feed so interactive requests rarely have to wait on an upstream. A missing
// schedule disables the worker. Returns the scheduler so main can stop it on
// shutdown.
func InitRefreshWorker(spec string, agg *calendar.Aggregator) *cron.Cron {
	logger := utils.GetLogger()
	if spec == "" {
		logger.Info("refresh worker disabled, no schedule configured")
		return nil
	}

	c := cron.New()
	_, err := c.AddFunc(spec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
		defer cancel()

		start := time.Now()
		merged := agg.MergedBusyIntervals(ctx, true)
		logger.Info("background feed refresh completed",
			zap.Int("merged_intervals", len(merged)),
			zap.Duration("took", time.Since(start)))
	})
	if err != nil {
		logger.Error("invalid refresh schedule, worker disabled",
			zap.String("spec", spec), zap.Error(err))
		return nil
	}

	c.Start()
	logger.Info("refresh worker started", zap.String("spec", spec))
	return c
}
