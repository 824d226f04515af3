package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/furclan/eventbot/internal/domain"
	"github.com/furclan/eventbot/internal/domain/entity"
)

type Config struct {
	SlackBotToken      string
	SlackSigningSecret string
	DatabasePath       string
	Port               string

	GoogleCalendarID   string
	GoogleClientID     string
	GoogleClientSecret string
	GoogleTokenFile    string

	TickSeconds         int
	SyncIntervalSeconds int
	LeadWindows         []entity.LeadWindow
	HorizonDays         int

	DailyHourLocal     int
	WeeklyWeekdayLocal time.Weekday
	WeeklyHourLocal    int

	InterMessageDelay time.Duration
	DispatchTimeout   time.Duration
	ShutdownGrace     time.Duration

	DefaultLanguage string
	RoleMentionID   string
	SignupEmoji     string
}

func Load() *Config {
	return &Config{
		SlackBotToken:      getEnv("SLACK_BOT_TOKEN", ""),
		SlackSigningSecret: getEnv("SLACK_SIGNING_SECRET", ""),
		DatabasePath:       getEnv("DATABASE_PATH", "./eventbot.db"),
		Port:               getEnv("PORT", "3000"),

		GoogleCalendarID:   getEnv("GOOGLE_CALENDAR_ID", "primary"),
		GoogleClientID:     getEnv("GOOGLE_CLIENT_ID", ""),
		GoogleClientSecret: getEnv("GOOGLE_CLIENT_SECRET", ""),
		GoogleTokenFile:    getEnv("GOOGLE_TOKEN_FILE", "token.json"),

		TickSeconds:         getEnvInt("TICK_SECONDS", 60),
		SyncIntervalSeconds: getEnvInt("SYNC_INTERVAL_SECONDS", 300),
		LeadWindows:         parseLeadWindows(getEnv("LEAD_WINDOWS", "60m:60:1,15m:15:1,5m:5:1")),
		HorizonDays:         getEnvInt("HORIZON_DAYS", 30),

		DailyHourLocal:     getEnvInt("DAILY_HOUR_LOCAL", 8),
		WeeklyWeekdayLocal: parseWeekday(getEnv("WEEKLY_WEEKDAY_LOCAL", "sunday")),
		WeeklyHourLocal:    getEnvInt("WEEKLY_HOUR_LOCAL", 12),

		InterMessageDelay: time.Duration(getEnvInt("INTER_MESSAGE_DELAY_MS", 1500)) * time.Millisecond,
		DispatchTimeout:   time.Duration(getEnvInt("DISPATCH_TIMEOUT_SECONDS", 10)) * time.Second,
		ShutdownGrace:     time.Duration(getEnvInt("SHUTDOWN_GRACE_SECONDS", 30)) * time.Second,

		DefaultLanguage: getEnv("DEFAULT_LANGUAGE", domain.DefaultLanguage),
		RoleMentionID:   getEnv("ROLE_MENTION_ID", ""),
		SignupEmoji:     getEnv("SIGNUP_EMOJI", domain.DefaultSignupEmoji),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		log.Printf("Invalid value %q for %s, using default %d", value, key, defaultValue)
		return defaultValue
	}
	return n
}

// parseLeadWindows parses "tag:lead_minutes:width_minutes" triples
// separated by commas, e.g. "60m:60:1,15m:15:1,5m:5:1".
func parseLeadWindows(value string) []entity.LeadWindow {
	var windows []entity.LeadWindow
	for _, part := range strings.Split(value, ",") {
		fields := strings.Split(strings.TrimSpace(part), ":")
		if len(fields) != 3 {
			log.Printf("Skipping malformed lead window %q", part)
			continue
		}
		lead, err1 := strconv.Atoi(fields[1])
		width, err2 := strconv.Atoi(fields[2])
		if err1 != nil || err2 != nil || lead <= 0 || width <= 0 {
			log.Printf("Skipping malformed lead window %q", part)
			continue
		}
		windows = append(windows, entity.LeadWindow{
			Tag:   fields[0],
			Lead:  time.Duration(lead) * time.Minute,
			Width: time.Duration(width) * time.Minute,
		})
	}
	if len(windows) == 0 {
		windows = DefaultLeadWindows()
	}
	return windows
}

// DefaultLeadWindows returns the canonical 60/15/5 minute reminder set
func DefaultLeadWindows() []entity.LeadWindow {
	return []entity.LeadWindow{
		{Tag: "60m", Lead: 60 * time.Minute, Width: time.Minute},
		{Tag: "15m", Lead: 15 * time.Minute, Width: time.Minute},
		{Tag: "5m", Lead: 5 * time.Minute, Width: time.Minute},
	}
}

func parseWeekday(value string) time.Weekday {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "sunday", "0":
		return time.Sunday
	case "monday", "1":
		return time.Monday
	case "tuesday", "2":
		return time.Tuesday
	case "wednesday", "3":
		return time.Wednesday
	case "thursday", "4":
		return time.Thursday
	case "friday", "5":
		return time.Friday
	case "saturday", "6":
		return time.Saturday
	default:
		log.Printf("Unknown weekday %q, using sunday", value)
		return time.Sunday
	}
}
