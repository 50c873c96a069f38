package api

import (
	"errors"
	"sort"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"

	"github.com/pharmez/medimate/internal/adherence"
	"github.com/pharmez/medimate/internal/reminder"
)

func (s *Server) handleHealth(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":    "healthy",
		"version":   "0.1.0",
		"timestamp": time.Now().Unix(),
	})
}

func (s *Server) handleToken(c *fiber.Ctx) error {
	var req tokenRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "invalid request"})
	}
	if req.UserID == "" {
		return c.Status(400).JSON(fiber.Map{"error": "user_id is required"})
	}
	if s.config.Security.APIPassword != "" && req.Password != s.config.Security.APIPassword {
		return c.Status(401).JSON(fiber.Map{"error": "invalid credentials"})
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": req.UserID,
		"iat": time.Now().Unix(),
		"exp": time.Now().Add(7 * 24 * time.Hour).Unix(),
	})

	tokenString, err := token.SignedString([]byte(s.config.Security.JWTSecret))
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "failed to generate token"})
	}

	return c.JSON(fiber.Map{"token": tokenString})
}

func (s *Server) handleCreateReminder(c *fiber.Ctx) error {
	var req createReminderRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "invalid request"})
	}

	r := &reminder.Reminder{
		UserID:            userID(c),
		MedicineName:      req.MedicineName,
		Dosage:            req.Dosage,
		Frequency:         req.Frequency,
		Instructions:      req.Instructions,
		WithFood:          req.WithFood,
		Times:             req.Times,
		DurationDays:      req.DurationDays,
		StartDate:         req.StartDate,
		EmailNotification: req.EmailNotification,
		NotificationEmail: req.NotificationEmail,
	}

	if err := s.reminders.Create(r); err != nil {
		var verr *reminder.ValidationError
		if errors.As(err, &verr) {
			return c.Status(400).JSON(fiber.Map{"errors": verr.Errors})
		}
		s.logger.Error("Failed to create reminder", zap.Error(err))
		return c.Status(500).JSON(fiber.Map{"error": "failed to create reminder"})
	}

	resp := fiber.Map{"reminder": r}
	if s.calendarSync != nil && s.calendarSync.Available() {
		resp["calendar_sync"] = s.calendarSync.SyncReminder(c.Context(), r)
	}

	return c.Status(201).JSON(resp)
}

func (s *Server) handleListReminders(c *fiber.Ctx) error {
	var (
		reminders []reminder.Reminder
		err       error
	)
	if c.QueryBool("all") {
		reminders, err = s.reminders.ListAll(userID(c))
	} else {
		reminders, err = s.reminders.ListActive(userID(c))
	}
	if err != nil {
		s.logger.Error("Failed to list reminders", zap.Error(err))
		return c.Status(500).JSON(fiber.Map{"error": "failed to list reminders"})
	}
	return c.JSON(reminders)
}

func (s *Server) handleGetReminder(c *fiber.Ctx) error {
	r, err := s.reminders.Get(c.Params("id"))
	if errors.Is(err, reminder.ErrNotFound) {
		return c.Status(404).JSON(fiber.Map{"error": "reminder not found"})
	}
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "failed to get reminder"})
	}
	if r.UserID != userID(c) {
		return c.Status(404).JSON(fiber.Map{"error": "reminder not found"})
	}
	return c.JSON(r)
}

func (s *Server) handleSetActive(c *fiber.Ctx) error {
	var req setActiveRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "invalid request"})
	}

	err := s.reminders.SetActive(c.Params("id"), req.IsActive)
	if errors.Is(err, reminder.ErrNotFound) {
		return c.Status(404).JSON(fiber.Map{"error": "reminder not found"})
	}
	if err != nil {
		s.logger.Error("Failed to toggle reminder", zap.Error(err))
		return c.Status(500).JSON(fiber.Map{"error": "failed to toggle reminder"})
	}
	return c.JSON(fiber.Map{"is_active": req.IsActive})
}

func (s *Server) handleDeleteReminder(c *fiber.Ctx) error {
	err := s.reminders.Delete(c.Params("id"))
	if errors.Is(err, reminder.ErrNotFound) {
		return c.Status(404).JSON(fiber.Map{"error": "reminder not found"})
	}
	if err != nil {
		s.logger.Error("Failed to delete reminder", zap.Error(err))
		return c.Status(500).JSON(fiber.Map{"error": "failed to delete reminder"})
	}
	return c.SendStatus(204)
}

// handleTodaySchedule flattens today's active reminders into per-slot
// doses with taken flags, sorted by time
func (s *Server) handleTodaySchedule(c *fiber.Ctx) error {
	uid := userID(c)
	today := time.Now().Format(reminder.DateLayout)

	reminders, err := s.reminders.ListForDate(uid, today)
	if err != nil {
		s.logger.Error("Failed to load today's reminders", zap.Error(err))
		return c.Status(500).JSON(fiber.Map{"error": "failed to load schedule"})
	}

	schedule := make([]reminder.DoseSlot, 0)
	for _, r := range reminders {
		for _, slot := range r.Times {
			taken, err := s.adherenceLog.HasTaken(uid, r.MedicineName, today, slot)
			if err != nil {
				s.logger.Error("Failed to check dose status", zap.Error(err))
				return c.Status(500).JSON(fiber.Map{"error": "failed to load schedule"})
			}
			schedule = append(schedule, reminder.DoseSlot{
				ReminderID:   r.ID,
				MedicineName: r.MedicineName,
				Dosage:       r.Dosage,
				Time:         slot,
				Frequency:    r.Frequency,
				WithFood:     r.WithFood,
				Instructions: r.Instructions,
				Taken:        taken,
			})
		}
	}
	sort.Slice(schedule, func(i, j int) bool {
		return schedule[i].Time < schedule[j].Time
	})

	return c.JSON(fiber.Map{"date": today, "schedule": schedule})
}

func (s *Server) handleMarkTaken(c *fiber.Ctx) error {
	var req markDoseRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "invalid request"})
	}
	if req.MedicineName == "" || req.ScheduledTime == "" {
		return c.Status(400).JSON(fiber.Map{"error": "medicine_name and scheduled_time are required"})
	}

	actual := req.ActualTime
	if actual == "" {
		actual = time.Now().Format(reminder.SlotLayout)
	}

	entry := &adherence.LogEntry{
		UserID:        userID(c),
		MedicineName:  req.MedicineName,
		ScheduledTime: req.ScheduledTime,
		Date:          time.Now().Format(reminder.DateLayout),
		Status:        adherence.StatusTaken,
		ActualTime:    actual,
	}
	if err := s.adherenceLog.Append(entry); err != nil {
		s.logger.Error("Failed to mark dose taken", zap.Error(err))
		return c.Status(500).JSON(fiber.Map{"error": "failed to record dose"})
	}
	return c.Status(201).JSON(entry)
}

func (s *Server) handleMarkSkipped(c *fiber.Ctx) error {
	var req markDoseRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "invalid request"})
	}
	if req.MedicineName == "" || req.ScheduledTime == "" {
		return c.Status(400).JSON(fiber.Map{"error": "medicine_name and scheduled_time are required"})
	}

	entry := &adherence.LogEntry{
		UserID:        userID(c),
		MedicineName:  req.MedicineName,
		ScheduledTime: req.ScheduledTime,
		Date:          time.Now().Format(reminder.DateLayout),
		Status:        adherence.StatusSkipped,
		Reason:        req.Reason,
	}
	if err := s.adherenceLog.Append(entry); err != nil {
		s.logger.Error("Failed to mark dose skipped", zap.Error(err))
		return c.Status(500).JSON(fiber.Map{"error": "failed to record dose"})
	}
	return c.Status(201).JSON(entry)
}

func (s *Server) handleStats(c *fiber.Ctx) error {
	days := c.QueryInt("days", 7)
	if days <= 0 {
		return c.Status(400).JSON(fiber.Map{"error": "days must be positive"})
	}

	stats, err := s.aggregator.ComputeStats(userID(c), days)
	if err != nil {
		s.logger.Error("Failed to compute adherence stats", zap.Error(err))
		return c.Status(500).JSON(fiber.Map{"error": "failed to compute stats"})
	}
	return c.JSON(stats)
}

func (s *Server) handleSendReport(c *fiber.Ctx) error {
	var req reportRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "invalid request"})
	}
	if req.Email == "" {
		return c.Status(400).JSON(fiber.Map{"error": "email is required"})
	}
	if req.Days <= 0 {
		req.Days = 7
	}
	if req.UserName == "" {
		req.UserName = "User"
	}

	stats, err := s.aggregator.ComputeStats(userID(c), req.Days)
	if err != nil {
		s.logger.Error("Failed to compute adherence stats", zap.Error(err))
		return c.Status(500).JSON(fiber.Map{"error": "failed to compute stats"})
	}

	if err := s.dispatcher.SendAdherenceReport(c.Context(), req.Email, req.UserName, stats); err != nil {
		s.logger.Error("Failed to send adherence report", zap.Error(err))
		return c.Status(502).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(fiber.Map{"sent": true})
}
