package config

import (
	"testing"
	"time"

	"github.com/furclan/eventbot/internal/domain/entity"
	"github.com/stretchr/testify/assert"
)

func TestParseLeadWindows(t *testing.T) {
	tests := []struct {
		name  string
		value string
		want  []entity.LeadWindow
	}{
		{
			name:  "Should parse the default triple",
			value: "60m:60:1,15m:15:1,5m:5:1",
			want: []entity.LeadWindow{
				{Tag: "60m", Lead: 60 * time.Minute, Width: time.Minute},
				{Tag: "15m", Lead: 15 * time.Minute, Width: time.Minute},
				{Tag: "5m", Lead: 5 * time.Minute, Width: time.Minute},
			},
		},
		{
			name:  "Should parse a single window with custom width",
			value: "2h:120:5",
			want: []entity.LeadWindow{
				{Tag: "2h", Lead: 120 * time.Minute, Width: 5 * time.Minute},
			},
		},
		{
			name:  "Should skip malformed entries",
			value: "60m:60:1,broken,15m:x:1",
			want: []entity.LeadWindow{
				{Tag: "60m", Lead: 60 * time.Minute, Width: time.Minute},
			},
		},
		{
			name:  "Should fall back to defaults when nothing parses",
			value: "garbage",
			want:  DefaultLeadWindows(),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, parseLeadWindows(tt.value))
		})
	}
}

func TestParseWeekday(t *testing.T) {
	assert.Equal(t, time.Sunday, parseWeekday("sunday"))
	assert.Equal(t, time.Sunday, parseWeekday("Sunday"))
	assert.Equal(t, time.Monday, parseWeekday("1"))
	assert.Equal(t, time.Friday, parseWeekday("friday"))
	assert.Equal(t, time.Sunday, parseWeekday("someday"), "Unknown weekday falls back to sunday")
}

func TestLoadDefaults(t *testing.T) {
	cfg := Load()

	assert.Equal(t, 60, cfg.TickSeconds)
	assert.Equal(t, 30, cfg.HorizonDays)
	assert.Equal(t, 8, cfg.DailyHourLocal)
	assert.Equal(t, time.Sunday, cfg.WeeklyWeekdayLocal)
	assert.Equal(t, 12, cfg.WeeklyHourLocal)
	assert.Equal(t, 1500*time.Millisecond, cfg.InterMessageDelay)
	assert.Equal(t, DefaultLeadWindows(), cfg.LeadWindows)
	assert.Equal(t, "en", cfg.DefaultLanguage)
}
