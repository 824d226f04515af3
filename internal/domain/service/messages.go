package service

import (
	"fmt"
	"strings"
	"time"

	"github.com/furclan/eventbot/internal/domain"
	"github.com/furclan/eventbot/internal/domain/entity"
)

// localTimeLayout is how event times are shown to users, in their own zone
const localTimeLayout = "02.01.2006 15:04"

// catalog holds the message templates per language. The web dashboard owns
// the full translation files; the core only needs these few strings.
var catalog = map[string]map[string]string{
	"en": {
		"reminder":      "⏰ *%s* starts in %d minutes: %s",
		"daily_header":  "📰 Your events for today",
		"weekly_header": "📰 Upcoming events this week",
		"no_events_24h": "No events in the next 24 hours.",
		"no_events_7d":  "No events in the next 7 days.",
		"event_line":    "• %s – %s",
		"intro":         "👋 Welcome! I will DM you event reminders and overviews. Use /events optout to silence any of them.",
	},
	"de": {
		"reminder":      "⏰ *%s* beginnt in %d Minuten: %s",
		"daily_header":  "📰 Deine Events für heute",
		"weekly_header": "📰 Anstehende Events diese Woche",
		"no_events_24h": "Keine Events in den nächsten 24 Stunden.",
		"no_events_7d":  "Keine Events in den nächsten 7 Tagen.",
		"event_line":    "• %s – %s",
		"intro":         "👋 Willkommen! Ich schicke dir Event-Erinnerungen und Übersichten per DM. Mit /events optout kannst du sie abbestellen.",
	},
}

func tr(lang, key string) string {
	if msgs, ok := catalog[lang]; ok {
		if msg, ok := msgs[key]; ok {
			return msg
		}
	}
	return catalog[domain.DefaultLanguage][key]
}

// renderReminder builds the per-event reminder text with the event time in
// the user's zone. When a role mention is configured it is prepended.
func renderReminder(lang string, loc *time.Location, event *entity.Event, lead time.Duration, roleMentionID string) string {
	localTime := event.StartTime.In(loc).Format(localTimeLayout)
	text := fmt.Sprintf(tr(lang, "reminder"), event.Title, int(lead.Minutes()), localTime)
	if roleMentionID != "" {
		text = fmt.Sprintf("<!subteam^%s> %s", roleMentionID, text)
	}
	return text
}

// renderOverview builds a daily or weekly event list
func renderOverview(lang string, loc *time.Location, events []*entity.Event, headerKey, emptyKey string) string {
	lines := []string{tr(lang, headerKey)}
	for _, event := range events {
		localTime := event.StartTime.In(loc).Format(localTimeLayout)
		lines = append(lines, fmt.Sprintf(tr(lang, "event_line"), event.Title, localTime))
	}
	if len(lines) == 1 {
		lines = append(lines, tr(lang, emptyKey))
	}
	return strings.Join(lines, "\n")
}

func renderIntro(lang string) string {
	return tr(lang, "intro")
}
