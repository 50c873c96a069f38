package api

import (
	"context"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/pharmez/medimate/internal/adherence"
	"github.com/pharmez/medimate/internal/calendar"
	"github.com/pharmez/medimate/internal/config"
	"github.com/pharmez/medimate/internal/notify"
	"github.com/pharmez/medimate/internal/reminder"
)

// Server is the HTTP surface consumed by the reporting/UI collaborator.
// It writes reminders and adherence entries and reads schedules and
// stats; notification side effects stay with the scheduler loop.
type Server struct {
	app          *fiber.App
	config       *config.Config
	logger       *zap.Logger
	reminders    *reminder.Store
	adherenceLog *adherence.Store
	aggregator   *adherence.Aggregator
	dispatcher   *notify.Dispatcher
	calendarSync *calendar.Sync
}

// NewServer creates the API server and registers all routes
func NewServer(
	cfg *config.Config,
	logger *zap.Logger,
	reminders *reminder.Store,
	adherenceLog *adherence.Store,
	aggregator *adherence.Aggregator,
	dispatcher *notify.Dispatcher,
	calendarSync *calendar.Sync,
) *Server {
	app := fiber.New(fiber.Config{
		AppName:      "medimate",
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	})

	s := &Server{
		app:          app,
		config:       cfg,
		logger:       logger,
		reminders:    reminders,
		adherenceLog: adherenceLog,
		aggregator:   aggregator,
		dispatcher:   dispatcher,
		calendarSync: calendarSync,
	}
	s.setupRoutes()
	return s
}

// Start begins listening
func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.config.Server.Address, s.config.Server.Port)
	return s.app.Listen(addr)
}

// Shutdown stops the server gracefully
func (s *Server) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return s.app.ShutdownWithContext(ctx)
}
