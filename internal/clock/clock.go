package clock

import "time"

// Clock provides the current instant. All core arithmetic runs on UTC;
// user-local time is produced only when rendering messages.
type Clock interface {
	Now() time.Time
}

type realClock struct{}

// New returns a Clock backed by the wall clock
func New() Clock {
	return realClock{}
}

func (realClock) Now() time.Time {
	return time.Now().UTC()
}

type fixedClock struct {
	t time.Time
}

// NewFixed returns a Clock frozen at t, for tests
func NewFixed(t time.Time) Clock {
	return fixedClock{t: t.UTC()}
}

func (c fixedClock) Now() time.Time {
	return c.t
}

// UserLocation resolves an IANA zone name. Unknown or empty names resolve
// to UTC without failing.
func UserLocation(name string) *time.Location {
	if name == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return time.UTC
	}
	return loc
}

// DayWindow returns the half-open UTC interval [start, end) covering the
// local calendar day of t in loc.
func DayWindow(t time.Time, loc *time.Location) (time.Time, time.Time) {
	local := t.In(loc)
	start := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc)
	return start.UTC(), start.AddDate(0, 0, 1).UTC()
}

// WeekWindow returns the half-open UTC interval covering the local week of
// t in loc, starting at the anchor weekday.
func WeekWindow(t time.Time, loc *time.Location, anchor time.Weekday) (time.Time, time.Time) {
	start := WeekStart(t, loc, anchor)
	return start.UTC(), start.AddDate(0, 0, 7).UTC()
}

// WeekStart returns midnight of the most recent anchor weekday at or
// before t, in loc.
func WeekStart(t time.Time, loc *time.Location, anchor time.Weekday) time.Time {
	local := t.In(loc)
	day := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc)
	diff := (int(day.Weekday()) - int(anchor) + 7) % 7
	return day.AddDate(0, 0, -diff)
}

// LocalDate formats the local calendar date of t in loc as YYYY-MM-DD
func LocalDate(t time.Time, loc *time.Location) string {
	return t.In(loc).Format("2006-01-02")
}
