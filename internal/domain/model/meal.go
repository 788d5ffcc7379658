package model

import (
	"encoding/json"
	"slices"
	"time"
)

// MealDay is one selectable day of the meal poll.
type MealDay struct {
	Name  string   `json:"name"`  // weekday, e.g. "Monday"
	Date  string   `json:"date"`  // DD.MM.YYYY
	Users []string `json:"users"` // display names in click order
}

// MealPoll is the weekly meal participation poll document.
type MealPoll struct {
	SchemaVersion int       `json:"schema_version"`
	Days          []MealDay `json:"days"`
}

// Day returns the day called name.
func (p *MealPoll) Day(name string) (*MealDay, bool) {
	for i := range p.Days {
		if p.Days[i].Name == name {
			return &p.Days[i], true
		}
	}
	return nil, false
}

// Normalize fills fields missing from an older or partial document.
func (p *MealPoll) Normalize() {
	if p.SchemaVersion == 0 {
		p.SchemaVersion = SchemaVersion
	}
	if p.Days == nil {
		p.Days = []MealDay{}
	}
	for i := range p.Days {
		if p.Days[i].Users == nil {
			p.Days[i].Users = []string{}
		}
	}
}

// Clone returns a deep copy of p.
func (p *MealPoll) Clone() *MealPoll {
	c := &MealPoll{SchemaVersion: p.SchemaVersion, Days: make([]MealDay, len(p.Days))}
	for i, d := range p.Days {
		c.Days[i] = MealDay{Name: d.Name, Date: d.Date, Users: slices.Clone(d.Users)}
		if c.Days[i].Users == nil {
			c.Days[i].Users = []string{}
		}
	}
	return c
}

// UnmarshalJSON also accepts the legacy {"polls": {day: [names]}} layout.
func (p *MealPoll) UnmarshalJSON(b []byte) error {
	var raw struct {
		SchemaVersion int                 `json:"schema_version"`
		Days          []MealDay           `json:"days"`
		Polls         map[string][]string `json:"polls"`
	}
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	p.SchemaVersion = raw.SchemaVersion
	p.Days = raw.Days
	if len(p.Days) == 0 && len(raw.Polls) > 0 {
		p.Days = legacyDays(raw.Polls)
	}
	return nil
}

func legacyDays(polls map[string][]string) []MealDay {
	days := make([]MealDay, 0, len(polls))
	for wd := time.Monday; wd <= time.Saturday; wd++ {
		days = appendLegacyDay(days, polls, wd.String())
	}
	days = appendLegacyDay(days, polls, time.Sunday.String())

	var rest []string
	for name := range polls {
		if _, ok := weekdayNames[name]; !ok {
			rest = append(rest, name)
		}
	}
	slices.Sort(rest)
	for _, name := range rest {
		days = appendLegacyDay(days, polls, name)
	}
	return days
}

func appendLegacyDay(days []MealDay, polls map[string][]string, name string) []MealDay {
	users, ok := polls[name]
	if !ok {
		return days
	}
	return append(days, MealDay{Name: name, Users: slices.Clone(users)})
}

var weekdayNames = map[string]struct{}{
	"Monday": {}, "Tuesday": {}, "Wednesday": {}, "Thursday": {},
	"Friday": {}, "Saturday": {}, "Sunday": {},
}
