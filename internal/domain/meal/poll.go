// Package meal implements the weekly meal participation poll.
package meal

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/okian/bounceland/internal/domain/model"
	"github.com/okian/bounceland/internal/domain/scoring"
)

// ErrUnknownDay is returned for a day that is not part of the current poll.
var ErrUnknownDay = errors.New("unknown meal day")

// Header starts the rendered poll text.
const Header = "🍽 *Weekly Meal Participation*\n\n"

const dateLayout = "02.01.2006"

// DayButton is the toggle affordance of one day.
type DayButton struct {
	Day      string `json:"day"`
	Date     string `json:"date"`
	Label    string `json:"label"`
	Selected bool   `json:"selected"`
}

// View is the rendered poll for one participant.
type View struct {
	Text    string      `json:"text"`
	Buttons []DayButton `json:"buttons"`
}

// Poll holds the current week's meal poll.
type Poll struct {
	mu   sync.RWMutex
	data *model.MealPoll
}

// NewPoll returns a poll without days.
func NewPoll() *Poll {
	p := &model.MealPoll{}
	p.Normalize()
	return &Poll{data: p}
}

// Fresh builds an empty poll document for days.
func Fresh(days []time.Time) *model.MealPoll {
	p := &model.MealPoll{SchemaVersion: model.SchemaVersion, Days: make([]model.MealDay, 0, len(days))}
	for _, d := range days {
		p.Days = append(p.Days, model.MealDay{
			Name:  d.Weekday().String(),
			Date:  d.Format(dateLayout),
			Users: []string{},
		})
	}
	return p
}

// Restore replaces the poll with a copy of mp.
func (p *Poll) Restore(mp *model.MealPoll) {
	c := mp.Clone()
	c.Normalize()
	p.mu.Lock()
	p.data = c
	p.mu.Unlock()
}

// Toggle adds user to day, or removes them if already listed. It reports
// whether the user is now listed.
func (p *Poll) Toggle(day, user string) (bool, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	d, ok := p.data.Day(day)
	if !ok {
		return false, fmt.Errorf("%w: %q", ErrUnknownDay, day)
	}
	if i := slices.Index(d.Users, user); i >= 0 {
		d.Users = slices.Delete(d.Users, i, i+1)
		return false, nil
	}
	d.Users = append(d.Users, user)
	return true, nil
}

// Snapshot returns a deep copy of the poll.
func (p *Poll) Snapshot() *model.MealPoll {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.data.Clone()
}

// Counts returns the number of participants per day.
func (p *Poll) Counts() map[string]int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	out := make(map[string]int, len(p.data.Days))
	for _, d := range p.data.Days {
		out[d.Name] = len(d.Users)
	}
	return out
}

// Text renders the participation summary.
func (p *Poll) Text() string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return textLocked(p.data)
}

// View renders the poll with currentUser's days checked.
func (p *Poll) View(currentUser string) View {
	p.mu.RLock()
	defer p.mu.RUnlock()

	v := View{Text: textLocked(p.data), Buttons: make([]DayButton, 0, len(p.data.Days))}
	for _, d := range p.data.Days {
		b := DayButton{Day: d.Name, Date: d.Date}
		b.Selected = currentUser != "" && slices.Contains(d.Users, currentUser)
		mark := "⬜"
		if b.Selected {
			mark = "✅"
		}
		b.Label = fmt.Sprintf("%s %s (%s)", mark, d.Name, d.Date)
		v.Buttons = append(v.Buttons, b)
	}
	return v
}

func textLocked(mp *model.MealPoll) string {
	var b strings.Builder
	b.WriteString(Header)
	for _, d := range mp.Days {
		icon := scoring.Meal.Bucket(float64(len(d.Users))).Block()
		list := "–"
		if len(d.Users) > 0 {
			lines := make([]string, len(d.Users))
			for i, u := range d.Users {
				lines[i] = "- " + u
			}
			list = strings.Join(lines, "\n")
		}
		fmt.Fprintf(&b, "%s *%s* — %d\n%s\n\n", icon, d.Name, len(d.Users), list)
	}
	return b.String()
}
