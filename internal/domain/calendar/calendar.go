// Package calendar derives the Bounceland season weeks and formats week labels.
package calendar

import (
	"fmt"
	"time"
)

// WeekIDLayout is the layout of week identifiers (the ISO date of the Monday).
const WeekIDLayout = "2006-01-02"

const (
	daysPerWeek   = 7
	seasonStartMo = time.November
	seasonEndMo   = time.April
	seasonEndDay  = 30
)

// Clock returns the current time.
type Clock func() time.Time

// Option applies a configuration option to the Calendar.
type Option func(*Calendar)

// WithClock sets the clock used to determine "today".
func WithClock(clock Clock) Option {
	return func(c *Calendar) {
		if clock != nil {
			c.now = clock
		}
	}
}

// WithLocation sets the time zone "today" is evaluated in.
func WithLocation(loc *time.Location) Option {
	return func(c *Calendar) {
		if loc != nil {
			c.loc = loc
		}
	}
}

// Calendar computes season weeks relative to its clock.
type Calendar struct {
	now Clock
	loc *time.Location
}

// New creates a Calendar using the wall clock in the local time zone by default.
func New(opts ...Option) *Calendar {
	c := &Calendar{now: time.Now, loc: time.Local}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Today returns the current date as a UTC midnight value.
func (c *Calendar) Today() time.Time {
	return dateOf(c.now().In(c.loc))
}

// SeasonWeeks returns the Mondays of the season for the current year.
func (c *Calendar) SeasonWeeks() []time.Time {
	return SeasonWeeksFor(c.Today())
}

// SeasonWeekIDs returns the week ids of the season for the current year.
func (c *Calendar) SeasonWeekIDs() []string {
	weeks := c.SeasonWeeks()
	ids := make([]string, len(weeks))
	for i, w := range weeks {
		ids[i] = WeekID(w)
	}
	return ids
}

// SeasonWeeksFor returns every Monday from the first Monday on or after
// Nov 1 of today's year through Apr 30 of the following year.
func SeasonWeeksFor(today time.Time) []time.Time {
	year := today.Year()
	start := time.Date(year, seasonStartMo, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(year+1, seasonEndMo, seasonEndDay, 0, 0, 0, 0, time.UTC)

	cur := firstMondayOnOrAfter(start)
	var weeks []time.Time
	for !cur.After(end) {
		weeks = append(weeks, cur)
		cur = cur.AddDate(0, 0, daysPerWeek)
	}
	return weeks
}

// WeekID formats the identifier of the week starting at monday.
func WeekID(monday time.Time) string {
	return monday.Format(WeekIDLayout)
}

// ParseWeekID parses a week identifier.
func ParseWeekID(id string) (time.Time, error) {
	t, err := time.Parse(WeekIDLayout, id)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse week id %q: %w", id, err)
	}
	return t, nil
}

// WeekLabel renders a week as "DD.MM.-DD.MM." with the end six days after start.
func WeekLabel(start time.Time) string {
	end := start.AddDate(0, 0, daysPerWeek-1)
	return fmt.Sprintf("%02d.%02d.-%02d.%02d.", start.Day(), int(start.Month()), end.Day(), int(end.Month()))
}

// WeekLabelForID renders the label of a week id, or the id itself if it does not parse.
func WeekLabelForID(id string) string {
	t, err := ParseWeekID(id)
	if err != nil {
		return id
	}
	return WeekLabel(t)
}

// MonthIndexLabel renders a week as its month abbreviation followed by the
// 1-based position of the Monday within that month, e.g. "Nov1".
func MonthIndexLabel(monday time.Time) string {
	first := time.Date(monday.Year(), monday.Month(), 1, 0, 0, 0, 0, time.UTC)
	last := first.AddDate(0, 1, -1)
	day := dateOf(monday)

	idx := 0
	count := 0
	for cur := firstMondayOnOrAfter(first); !cur.After(last); cur = cur.AddDate(0, 0, daysPerWeek) {
		if cur.Equal(day) {
			idx = count + 1
		}
		if !cur.After(day) {
			count++
		}
	}
	if idx == 0 {
		idx = max(count, 1)
	}
	return fmt.Sprintf("%s%d", monday.Month().String()[:3], idx)
}

// NextWeekDays returns Monday through Sunday of the week after today.
func NextWeekDays(today time.Time) []time.Time {
	day := dateOf(today)
	offset := (int(day.Weekday()) + 6) % daysPerWeek // days since Monday
	monday := day.AddDate(0, 0, daysPerWeek-offset)
	days := make([]time.Time, daysPerWeek)
	for i := range days {
		days[i] = monday.AddDate(0, 0, i)
	}
	return days
}

func firstMondayOnOrAfter(t time.Time) time.Time {
	for t.Weekday() != time.Monday {
		t = t.AddDate(0, 0, 1)
	}
	return t
}

func dateOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
