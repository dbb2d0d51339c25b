// cmd/server/main.go
package main

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/unclebandit/campaignhub-backend/internal/config"
	"github.com/unclebandit/campaignhub-backend/internal/controller"
	"github.com/unclebandit/campaignhub-backend/internal/db"
	"github.com/unclebandit/campaignhub-backend/internal/delivery"
	"github.com/unclebandit/campaignhub-backend/internal/logger"
	"github.com/unclebandit/campaignhub-backend/internal/metrics"
	"github.com/unclebandit/campaignhub-backend/internal/middleware"
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
	m := metrics.New(prometheus.DefaultRegisterer)

	userRepo := &repository.UserRepository{DB: conn}
	campaignRepo := &repository.CampaignRepository{DB: conn}
	templateRepo := &repository.TemplateRepository{DB: conn}
	subscriberRepo := &repository.SubscriberRepository{DB: conn}
	scheduleRepo := &repository.ScheduleRepository{DB: conn}

	authService := &service.AuthService{
		UserRepo:   userRepo,
		Gateway:    gateway,
		JWTSecret:  []byte(cfg.Auth.JWTSecret),
		SessionTTL: cfg.Auth.SessionTTL,
		BcryptCost: cfg.Auth.BcryptCost,
		Log:        zlog,
	}
	campaignService := &service.CampaignService{
		CampaignRepo:  campaignRepo,
		UserRepo:      userRepo,
		Gateway:       gateway,
		PublicBaseURL: cfg.App.PublicBaseURL,
		Log:           zlog,
	}
	templateService := &service.TemplateService{TemplateRepo: templateRepo}
	subscriberService := &service.SubscriberService{
		SubscriberRepo: subscriberRepo,
		CampaignRepo:   campaignRepo,
	}
	scheduleService := &service.ScheduleService{ScheduleRepo: scheduleRepo, Log: zlog}
	dispatchService := &service.DispatchService{
		ScheduleRepo:   scheduleRepo,
		SubscriberRepo: subscriberRepo,
		Gateway:        gateway,
		Metrics:        m,
		Log:            zlog,
	}
	dashboardService := &service.DashboardService{
		CampaignRepo:   campaignRepo,
		SubscriberRepo: subscriberRepo,
	}

	if cfg.Dispatch.PollerEnabled {
		poller := &scheduler.Poller{
			ScheduleRepo: scheduleRepo,
			Dispatch:     dispatchService,
			Interval:     cfg.Dispatch.PollInterval,
			Log:          zlog,
		}
		if err := poller.Start(); err != nil {
			zlog.Fatal("failed to start poller", zap.Error(err))
		}
		defer poller.Stop()
	}

	authController := &controller.AuthController{AuthService: authService, Log: zlog}
	campaignController := &controller.CampaignController{
		CampaignService:   campaignService,
		SubscriberService: subscriberService,
		Log:               zlog,
	}
	templateController := &controller.TemplateController{TemplateService: templateService, Log: zlog}
	scheduleController := &controller.ScheduleController{
		ScheduleService: scheduleService,
		DispatchService: dispatchService,
		Log:             zlog,
	}
	dashboardController := &controller.DashboardController{DashboardService: dashboardService, Log: zlog}

	r := chi.NewRouter()
	r.Use(chimw.Recoverer)

	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api", func(r chi.Router) {
		r.With(httprate.LimitByIP(3, time.Hour)).
			Post("/auth/register", authController.Register)
		r.With(httprate.LimitByIP(5, 15*time.Minute)).
			Post("/auth/login", authController.Login)
		r.Post("/auth/verify-email", authController.VerifyEmail)
		r.Post("/auth/resend-verification", authController.ResendVerification)
		r.Post("/auth/logout", authController.Logout)

		r.Group(func(r chi.Router) {
			r.Use(httprate.LimitByIP(100, 5*time.Minute))
			r.Get("/public/campaigns/{id}", campaignController.PublicGet)
			r.Post("/public/campaigns/{id}/subscribe", campaignController.PublicSubscribe)
		})

		r.Group(func(r chi.Router) {
			r.Use(middleware.Authenticator(authService))

			r.Post("/campaigns", campaignController.Create)
			r.Get("/campaigns", campaignController.List)
			r.Get("/campaigns/{id}", campaignController.Get)
			r.Put("/campaigns/{id}", campaignController.Update)
			r.Delete("/campaigns/{id}", campaignController.Delete)
			r.Get("/campaigns/{id}/qr", campaignController.QRCode)
			r.Post("/campaigns/{id}/send-qr", campaignController.SendQR)
			r.Get("/campaigns/{id}/subscribers", campaignController.Subscribers)
			r.Get("/campaigns/{id}/subscribers/export", campaignController.ExportSubscribers)

			r.Post("/templates", templateController.Create)
			r.Get("/templates", templateController.List)
			r.Get("/templates/{id}", templateController.Get)
			r.Put("/templates/{id}", templateController.Update)
			r.Delete("/templates/{id}", templateController.Delete)

			r.Post("/schedules", scheduleController.Create)
			r.Get("/schedules", scheduleController.List)
			r.Post("/schedules/{id}/cancel", scheduleController.Cancel)
			r.Post("/schedules/{id}/execute", scheduleController.Execute)

			r.Get("/dashboard/stats", dashboardController.Stats)
		})
	})

	addr := ":" + cfg.HTTP.Port
	zlog.Info("server running", zap.String("addr", addr))
	if err := http.ListenAndServe(addr, r); err != nil {
		zlog.Fatal("server stopped", zap.Error(err))
	}
}
