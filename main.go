package main

import (
	"context"
	"time"

	"booking-server/config"
	"booking-server/di"
	"booking-server/util"

	"go.uber.org/zap"
)

func main() {
	config.LoadConfig()
	logger := util.GetLogger()
	defer logger.Sync()

	container, err := di.NewContainer(config.AppConfig, logger)
	if err != nil {
		logger.Fatal("[Main] failed to build container", zap.Error(err))
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	logger.Info("[Main] warming calendar cache")
	refreshed := container.CalendarRefresherService.RefreshCalendars(ctx)
	logger.Info("[Main] calendar cache warmed", zap.Int("refreshed", refreshed))
	if extra, err := container.CalendarRefresherService.RefreshCachedCalendars(ctx); err == nil {
		logger.Info("[Main] cached calendars refreshed", zap.Int("refreshed", extra))
	}

	if interval := config.AppConfig.CalendarRefreshIntervalMinutes; interval > 0 {
		logger.Info("[Main] starting periodic calendar refresher", zap.Int("interval_minutes", interval))
		container.CalendarRefresherService.StartPeriodicJob(ctx, time.Duration(interval)*time.Minute)
	}

	container.BookingHttpServer.Start()
}
