package api

import (
	"strings"

	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func (s *Server) setupRoutes() {
	s.app.Use(recover.New())
	s.app.Use(logger.New(logger.Config{
		Format: "[${time}] ${status} - ${latency} ${method} ${path}\n",
	}))
	s.app.Use(cors.New(cors.Config{
		AllowOrigins: strings.Join(s.config.Security.AllowOrigins, ","),
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
		AllowMethods: "GET, POST, PATCH, DELETE, OPTIONS",
	}))

	s.app.Get("/api/health", s.handleHealth)
	s.app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	api := s.app.Group("/api")

	api.Post("/auth/token", s.handleToken)

	protected := api.Use(s.authMiddleware())

	protected.Post("/reminders", s.handleCreateReminder)
	protected.Get("/reminders", s.handleListReminders)
	protected.Get("/reminders/:id", s.handleGetReminder)
	protected.Patch("/reminders/:id/active", s.handleSetActive)
	protected.Delete("/reminders/:id", s.handleDeleteReminder)

	protected.Get("/schedule/today", s.handleTodaySchedule)

	protected.Post("/adherence/taken", s.handleMarkTaken)
	protected.Post("/adherence/skipped", s.handleMarkSkipped)
	protected.Get("/adherence/stats", s.handleStats)
	protected.Post("/adherence/report", s.handleSendReport)
}
