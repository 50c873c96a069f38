package calendar

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"

	"github.com/pharmez/medimate/internal/config"
)

const defaultBaseURL = "https://www.googleapis.com/calendar/v3"

// googleEvent represents the Google Calendar event wire format
type googleEvent struct {
	ID          string `json:"id,omitempty"`
	Summary     string `json:"summary"`
	Description string `json:"description,omitempty"`
	Start       struct {
		DateTime string `json:"dateTime,omitempty"`
		TimeZone string `json:"timeZone,omitempty"`
	} `json:"start"`
	End struct {
		DateTime string `json:"dateTime,omitempty"`
		TimeZone string `json:"timeZone,omitempty"`
	} `json:"end"`
	Recurrence []string        `json:"recurrence,omitempty"`
	Reminders  *eventReminders `json:"reminders,omitempty"`
	HTMLLink   string          `json:"htmlLink,omitempty"`
}

type eventReminders struct {
	UseDefault bool            `json:"useDefault"`
	Overrides  []eventOverride `json:"overrides,omitempty"`
}

type eventOverride struct {
	Method  string `json:"method"`
	Minutes int    `json:"minutes"`
}

// CreatedEvent is the result of a successful event insert
type CreatedEvent struct {
	EventID   string `json:"event_id"`
	EventLink string `json:"event_link"`
}

// Client talks to the Google Calendar API. An unconfigured client
// reports Available() == false and refuses calls.
type Client struct {
	httpClient *http.Client
	baseURL    string
	timezone   string
	available  bool
	logger     *zap.Logger
}

// NewClient creates a calendar client from OAuth credentials. Missing
// credentials yield an unavailable client, not an error.
func NewClient(cfg config.CalendarConfig, logger *zap.Logger) *Client {
	c := &Client{
		baseURL:  defaultBaseURL,
		timezone: cfg.Timezone,
		logger:   logger,
	}

	if !cfg.Available() {
		logger.Info("Calendar sync disabled: credentials missing")
		return c
	}

	oauthConfig := &oauth2.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		Scopes:       []string{"https://www.googleapis.com/auth/calendar.events"},
		Endpoint:     google.Endpoint,
	}
	tokenSource := oauthConfig.TokenSource(context.Background(), &oauth2.Token{
		RefreshToken: cfg.RefreshToken,
	})

	c.httpClient = oauth2.NewClient(context.Background(), tokenSource)
	c.available = true
	return c
}

// Available reports whether the calendar collaborator is configured
func (c *Client) Available() bool {
	return c.available
}

// CreateDailyEvent inserts a recurring daily event from start to end,
// repeating until untilDate (inclusive, "YYYY-MM-DD")
func (c *Client) CreateDailyEvent(ctx context.Context, title, description string, start, end time.Time, untilDate string) (*CreatedEvent, error) {
	if !c.available {
		return nil, fmt.Errorf("calendar client not configured")
	}

	until, err := time.Parse("2006-01-02", untilDate)
	if err != nil {
		return nil, fmt.Errorf("invalid until date: %w", err)
	}

	event := googleEvent{
		Summary:     title,
		Description: description,
		Recurrence: []string{
			fmt.Sprintf("RRULE:FREQ=DAILY;UNTIL=%sT235959Z", until.Format("20060102")),
		},
	}
	event.Start.DateTime = start.Format(time.RFC3339)
	event.Start.TimeZone = c.timezone
	event.End.DateTime = end.Format(time.RFC3339)
	event.End.TimeZone = c.timezone
	event.Reminders = &eventReminders{
		UseDefault: false,
		Overrides: []eventOverride{
			{Method: "popup", Minutes: 10},
			{Method: "popup", Minutes: 0},
			{Method: "email", Minutes: 15},
		},
	}

	body, err := json.Marshal(event)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal event: %w", err)
	}

	url := c.baseURL + "/calendars/primary/events"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("calendar request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("calendar API returned %d: %s", resp.StatusCode, string(respBody))
	}

	var created googleEvent
	if err := json.NewDecoder(resp.Body).Decode(&created); err != nil {
		return nil, fmt.Errorf("failed to decode event response: %w", err)
	}

	c.logger.Info("Calendar event created",
		zap.String("event_id", created.ID),
		zap.String("summary", title),
	)

	return &CreatedEvent{
		EventID:   created.ID,
		EventLink: created.HTMLLink,
	}, nil
}
