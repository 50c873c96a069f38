package api

type tokenRequest struct {
	UserID   string `json:"user_id"`
	Password string `json:"password"`
}

type createReminderRequest struct {
	MedicineName      string   `json:"medicine_name"`
	Dosage            string   `json:"dosage"`
	Frequency         string   `json:"frequency"`
	Instructions      string   `json:"instructions"`
	WithFood          bool     `json:"with_food"`
	Times             []string `json:"times"`
	DurationDays      int      `json:"duration_days"`
	StartDate         string   `json:"start_date"`
	EmailNotification bool     `json:"email_notification"`
	NotificationEmail string   `json:"notification_email"`
}

type setActiveRequest struct {
	IsActive bool `json:"is_active"`
}

type markDoseRequest struct {
	MedicineName  string `json:"medicine_name"`
	ScheduledTime string `json:"scheduled_time"`
	ActualTime    string `json:"actual_time"` // taken only, defaults to now
	Reason        string `json:"reason"`      // skipped only
}

type reportRequest struct {
	Email    string `json:"email"`
	UserName string `json:"user_name"`
	Days     int    `json:"days"`
}
