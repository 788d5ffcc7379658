package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/okian/bounceland/internal/adapters/presenter"
	"github.com/okian/bounceland/internal/domain/attendance"
	"github.com/okian/bounceland/internal/domain/meal"
	"github.com/okian/bounceland/internal/domain/model"
)

// Render implements worker.Renderer with the neutral view of poll.
func (s *Service) Render(_ context.Context, poll model.Poll) (model.Update, error) {
	u := model.Update{Poll: poll, RenderedAt: time.Now().UTC()}
	switch poll {
	case model.PollBounceland:
		v := s.attendance.View("")
		u.Text = v.Text
		u.Buttons = bouncelandButtons(v)
	case model.PollMeal:
		v := s.meal.View("")
		u.Text = v.Text
		u.Buttons = mealButtons(v)
	default:
		return model.Update{}, fmt.Errorf("%w: %q", presenter.ErrUnknownPoll, poll)
	}
	return u, nil
}

// Modes on their own rows; per week an info button followed by the choices.
func bouncelandButtons(v attendance.View) [][]model.Button {
	rows := make([][]model.Button, 0, len(v.Modes)+len(v.Weeks))
	for _, m := range v.Modes {
		rows = append(rows, []model.Button{{Label: m.Label, Action: action(ActionMode, m.Mode)}})
	}
	for _, w := range v.Weeks {
		row := []model.Button{{Label: w.Label, Action: action(ActionInfo, w.WeekID)}}
		for _, c := range w.Choices {
			row = append(row, model.Button{Label: c.Label, Action: action(ActionWeek, w.WeekID, string(c.Choice))})
		}
		rows = append(rows, row)
	}
	return rows
}

func mealButtons(v meal.View) [][]model.Button {
	rows := make([][]model.Button, 0, len(v.Buttons))
	for _, b := range v.Buttons {
		rows = append(rows, []model.Button{{Label: b.Label, Action: action(ActionMeal, b.Day)}})
	}
	return rows
}

func action(kind string, args ...string) string {
	return strings.Join(append([]string{kind}, args...), actionSep)
}

// Summary returns the Bounceland summary text.
func (s *Service) Summary() string {
	return s.attendance.SummaryText()
}

// View renders the Bounceland poll with userID's selections marked.
func (s *Service) View(userID string) attendance.View {
	return s.attendance.View(userID)
}

// Dataset returns a copy of the attendance dataset.
func (s *Service) Dataset() *model.Dataset {
	return s.attendance.Snapshot()
}

// MealSummary returns the meal poll text.
func (s *Service) MealSummary() string {
	return s.meal.Text()
}

// MealView renders the meal poll with name's days checked.
func (s *Service) MealView(name string) meal.View {
	return s.meal.View(name)
}

// Live returns the update currently shown in the live message of poll.
func (s *Service) Live(poll model.Poll) (model.Update, bool) {
	return s.live.Latest(poll)
}
