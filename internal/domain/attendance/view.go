package attendance

import (
	"github.com/okian/bounceland/internal/domain/calendar"
	"github.com/okian/bounceland/internal/domain/model"
	"github.com/okian/bounceland/internal/domain/scoring"
)

const selectedPrefix = "✅ "

// ModeButton is one mode affordance.
type ModeButton struct {
	Mode     string `json:"mode"`
	Label    string `json:"label"`
	Selected bool   `json:"selected"`
}

// ChoiceButton is one week choice affordance.
type ChoiceButton struct {
	Choice   model.Choice `json:"choice"`
	Label    string       `json:"label"`
	Selected bool         `json:"selected"`
}

// WeekRow is the interactive row of one week.
type WeekRow struct {
	WeekID     string         `json:"week_id"`
	Indicator  string         `json:"indicator"`
	MonthLabel string         `json:"month_label"`
	Label      string         `json:"label"`
	Score      float64        `json:"score"`
	Choices    []ChoiceButton `json:"choices"`
}

// View is the rendered poll: summary text plus the affordances for one user.
type View struct {
	Text  string       `json:"text"`
	Modes []ModeButton `json:"modes"`
	Weeks []WeekRow    `json:"weeks"`
}

// View renders the poll. Selections are marked for currentUser; an empty id
// renders the neutral view posted to the group.
func (s *Store) View(currentUser string) View {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var user *model.User
	if currentUser != "" {
		user = s.data.Users[currentUser]
	}

	v := View{
		Text:  summaryLocked(s.data),
		Modes: make([]ModeButton, 0, len(model.Modes)),
	}
	for _, mode := range model.Modes {
		b := ModeButton{Mode: mode, Label: mode}
		if user != nil && user.HasMode(mode) {
			b.Selected = true
			b.Label = selectedPrefix + mode
		}
		v.Modes = append(v.Modes, b)
	}

	ids := s.data.WeekIDs()
	v.Weeks = make([]WeekRow, 0, len(ids))
	for _, id := range ids {
		score := scoring.WeekScore(s.data.Counts(id))
		row := WeekRow{
			WeekID:    id,
			Indicator: scoring.Indicator(score),
			Score:     score,
		}
		row.MonthLabel = id
		if t, err := calendar.ParseWeekID(id); err == nil {
			row.MonthLabel = calendar.MonthIndexLabel(t)
		}
		row.Label = row.Indicator + " " + row.MonthLabel

		for _, c := range model.Choices {
			b := ChoiceButton{Choice: c, Label: c.Short()}
			if user != nil && user.Weeks[id] == c {
				b.Selected = true
				b.Label = selectedPrefix + c.Short()
			}
			row.Choices = append(row.Choices, b)
		}
		v.Weeks = append(v.Weeks, row)
	}
	return v
}
