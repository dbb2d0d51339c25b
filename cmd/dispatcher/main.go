// cmd/dispatcher/main.go
//
// Standalone dispatcher: polls for due pending schedules and executes them.
// Runs the same engine as the API's execute endpoint, so tallies and status
// transitions behave identically.
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/unclebandit/campaignhub-backend/internal/config"
	"github.com/unclebandit/campaignhub-backend/internal/db"
	"github.com/unclebandit/campaignhub-backend/internal/delivery"
	"github.com/unclebandit/campaignhub-backend/internal/logger"
	"github.com/unclebandit/campaignhub-backend/internal/metrics"
	"github.com/unclebandit/campaignhub-backend/internal/repository"
	"github.com/unclebandit/campaignhub-backend/internal/scheduler"
	"github.com/unclebandit/campaignhub-backend/internal/service"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	zlog := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	defer zlog.Sync()

	conn, err := db.Open(cfg.Database, zlog)
	if err != nil {
		zlog.Fatal("database unavailable", zap.Error(err))
	}
	defer conn.Close()

	ctx := context.Background()

	mailer, err := delivery.NewSESMailer(ctx, cfg.Email.Region, cfg.Email.From)
	if err != nil {
		zlog.Fatal("failed to build mailer", zap.Error(err))
	}

	var sms delivery.SMSSender
	if cfg.SMS.Provider == "sns" {
		sms, err = delivery.NewSNSSender(ctx, cfg.SMS.Region)
		if err != nil {
			zlog.Fatal("failed to build sms sender", zap.Error(err))
		}
	}

	gateway := delivery.NewGateway(mailer, sms, cfg.Dispatch.SendTimeout, zlog)

	scheduleRepo := &repository.ScheduleRepository{DB: conn}
	subscriberRepo := &repository.SubscriberRepository{DB: conn}

	dispatchService := &service.DispatchService{
		ScheduleRepo:   scheduleRepo,
		SubscriberRepo: subscriberRepo,
		Gateway:        gateway,
		Metrics:        metrics.New(prometheus.DefaultRegisterer),
		Log:            zlog,
	}

	poller := &scheduler.Poller{
		ScheduleRepo: scheduleRepo,
		Dispatch:     dispatchService,
		Interval:     cfg.Dispatch.PollInterval,
		Log:          zlog,
	}
	if err := poller.Start(); err != nil {
		zlog.Fatal("failed to start poller", zap.Error(err))
	}

	zlog.Info("dispatcher running", zap.Duration("interval", cfg.Dispatch.PollInterval))

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	poller.Stop()
	zlog.Info("dispatcher stopped")
}
