package main

import (
	"log/slog"
	"net/http"

	gsessions "github.com/gorilla/sessions"

	dashboardhandler "github.com/FACorreiaa/billing-dashboard/internal/domain/dashboard/handler"

	"github.com/FACorreiaa/billing-dashboard/internal/domain/analytics"
	"github.com/FACorreiaa/billing-dashboard/internal/domain/session"
	"github.com/FACorreiaa/billing-dashboard/pkg/config"
	"github.com/FACorreiaa/billing-dashboard/pkg/cron"
)

// Dependencies holds all application dependencies
type Dependencies struct {
	Config *config.Config
	Logger *slog.Logger

	// Services
	SessionStore     *session.Store
	SessionService   *session.Service
	AnalyticsService *analytics.Service
	Scheduler        *cron.Scheduler

	// Handlers
	DashboardHandler *dashboardhandler.DashboardHandler
}

// InitDependencies initializes all application dependencies
func InitDependencies(cfg *config.Config, logger *slog.Logger) (*Dependencies, error) {
	deps := &Dependencies{
		Config: cfg,
		Logger: logger,
	}

	deps.initServices()
	deps.initHandlers()

	logger.Info("all dependencies initialized successfully")

	return deps, nil
}

// initServices initializes all service layer dependencies
func (d *Dependencies) initServices() {
	d.SessionStore = session.NewStore(d.Config.Session.TTL)
	d.SessionService = session.NewService(d.SessionStore, d.Logger)
	d.AnalyticsService = analytics.NewService(d.Logger)
	d.Scheduler = cron.NewScheduler(d.SessionService, d.Config.Session.SweepSchedule, d.Logger)

	d.Logger.Info("services initialized")
}

// initHandlers initializes all handler dependencies
func (d *Dependencies) initHandlers() {
	cookies := gsessions.NewCookieStore([]byte(d.Config.Session.CookieSecret))
	cookies.Options.HttpOnly = true
	cookies.Options.SameSite = http.SameSiteLaxMode
	cookies.MaxAge(int(d.Config.Session.TTL.Seconds()))

	d.DashboardHandler = dashboardhandler.NewDashboardHandler(
		d.SessionService,
		d.AnalyticsService,
		cookies,
		d.Config.Session.CookieName,
		d.Config.Upload.MaxBytes,
		d.Logger,
	)

	d.Logger.Info("handlers initialized")
}

// Cleanup stops background jobs
func (d *Dependencies) Cleanup() {
	if d.Scheduler != nil {
		<-d.Scheduler.Stop().Done()
	}
	d.Logger.Info("cleanup completed")
}
