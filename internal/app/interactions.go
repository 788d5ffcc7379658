package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/okian/bounceland/internal/domain/attendance"
	"github.com/okian/bounceland/internal/domain/meal"
	"github.com/okian/bounceland/internal/domain/model"
	"github.com/okian/bounceland/internal/domain/types"
	"github.com/okian/bounceland/pkg/logger"
	"github.com/okian/bounceland/pkg/metrics"
)

// Interaction kinds, also used as metric labels.
const (
	KindMode = "mode"
	KindWeek = "week"
	KindMeal = "meal"
	KindInfo = "info"
)

// Answers shown to the user who pressed a button.
const (
	AnswerSelectionRemoved = "✅ Selection removed"
	AnswerMealUpdated      = "✅ Updated!"
	AnswerInfo             = "Choose Full / Half for this week."
)

const actionSep = "|"

// Action prefixes of rendered buttons.
const (
	ActionMode = "MODE"
	ActionWeek = "WEEK"
	ActionMeal = "MEAL"
	ActionInfo = "INFO"
)

// ToggleMode flips req.Mode for userID.
func (s *Service) ToggleMode(ctx context.Context, userID string, req types.ModeRequest) (types.InteractionResponse, error) {
	return s.interact(ctx, KindMode, req.RequestID, func() (string, error) {
		return s.toggleMode(ctx, userID, req.Mode, req.Name, req.Username)
	})
}

// SetWeekChoice sets, moves or clears userID's choice for req.WeekID.
func (s *Service) SetWeekChoice(ctx context.Context, userID string, req types.WeekRequest) (types.InteractionResponse, error) {
	return s.interact(ctx, KindWeek, req.RequestID, func() (string, error) {
		return s.setWeekChoice(ctx, userID, req.WeekID, model.Choice(req.Choice), req.Name, req.Username)
	})
}

// ToggleMeal adds or removes req.Name on req.Day.
func (s *Service) ToggleMeal(ctx context.Context, userID string, req types.MealRequest) (types.InteractionResponse, error) {
	return s.interact(ctx, KindMeal, req.RequestID, func() (string, error) {
		return s.toggleMeal(ctx, userID, req.Day, req.Name)
	})
}

// HandleAction dispatches the action string of a rendered button.
func (s *Service) HandleAction(ctx context.Context, userID string, req types.ActionRequest) (types.InteractionResponse, error) {
	kind, args, ok := strings.Cut(req.Action, actionSep)
	if !ok || args == "" {
		return types.InteractionResponse{}, fmt.Errorf("%w: %q", ErrInvalidAction, req.Action)
	}

	switch kind {
	case ActionMode:
		return s.ToggleMode(ctx, userID, types.ModeRequest{
			RequestID: req.RequestID, Mode: args, Name: req.Name, Username: req.Username,
		})
	case ActionWeek:
		weekID, choice, ok := strings.Cut(args, actionSep)
		if !ok {
			return types.InteractionResponse{}, fmt.Errorf("%w: %q", ErrInvalidAction, req.Action)
		}
		return s.SetWeekChoice(ctx, userID, types.WeekRequest{
			RequestID: req.RequestID, WeekID: weekID, Choice: choice, Name: req.Name, Username: req.Username,
		})
	case ActionMeal:
		name := req.Name
		if name == "" {
			name = userID
		}
		return s.ToggleMeal(ctx, userID, types.MealRequest{RequestID: req.RequestID, Day: args, Name: name})
	case ActionInfo:
		metrics.RecordInteraction(KindInfo, "ok")
		return types.InteractionResponse{Message: AnswerInfo}, nil
	default:
		return types.InteractionResponse{}, fmt.Errorf("%w: %q", ErrInvalidAction, req.Action)
	}
}

// interact suppresses redelivered request ids and records the outcome. A
// failed interaction forgets its id so the client may retry it.
func (s *Service) interact(ctx context.Context, kind, requestID string, fn func() (string, error)) (types.InteractionResponse, error) {
	if requestID != "" && s.deduper.SeenAndRecord(ctx, requestID) {
		metrics.RecordDuplicateInteraction()
		s.logger.Debug(ctx, "duplicate interaction", logger.String("kind", kind), logger.String("requestId", requestID))
		return types.InteractionResponse{Duplicate: true}, nil
	}

	msg, err := fn()
	if err != nil {
		if requestID != "" {
			s.deduper.Forget(ctx, requestID)
		}
		metrics.RecordInteraction(kind, "error")
		return types.InteractionResponse{}, err
	}
	metrics.RecordInteraction(kind, "ok")
	return types.InteractionResponse{Message: msg}, nil
}

func (s *Service) toggleMode(ctx context.Context, userID, mode, name, handle string) (string, error) {
	s.bouncelandWrites.Lock()
	defer s.bouncelandWrites.Unlock()

	var res attendance.ModeResult
	err := s.stageBounceland(ctx, func(st *attendance.Store) error {
		var err error
		res, err = st.ToggleMode(userID, mode, name, handle)
		return err
	})
	if err != nil {
		return "", err
	}
	s.afterBounceland(ctx, userID, KindMode)

	if res == attendance.ModeRemoved {
		return fmt.Sprintf("❌ %s removed", mode), nil
	}
	return fmt.Sprintf("✅ %s added", mode), nil
}

func (s *Service) setWeekChoice(ctx context.Context, userID, weekID string, choice model.Choice, name, handle string) (string, error) {
	s.bouncelandWrites.Lock()
	defer s.bouncelandWrites.Unlock()

	var res attendance.WeekResult
	err := s.stageBounceland(ctx, func(st *attendance.Store) error {
		var err error
		res, err = st.SetWeekChoice(userID, weekID, choice, name, handle)
		return err
	})
	if err != nil {
		return "", err
	}
	s.afterBounceland(ctx, userID, KindWeek)

	if res == attendance.Cleared {
		return AnswerSelectionRemoved, nil
	}
	return "✅ " + string(choice), nil
}

func (s *Service) toggleMeal(ctx context.Context, userID, day, name string) (string, error) {
	s.mealWrites.Lock()
	defer s.mealWrites.Unlock()

	err := s.stageMeal(ctx, func(p *meal.Poll) error {
		_, err := p.Toggle(day, name)
		return err
	})
	if err != nil {
		return "", err
	}
	s.updateMealMetrics()
	s.refresh(ctx, model.PollMeal, userID, KindMeal)
	return AnswerMealUpdated, nil
}

func (s *Service) afterBounceland(ctx context.Context, userID, reason string) {
	s.updateBouncelandMetrics()
	s.refresh(ctx, model.PollBounceland, userID, reason)
}
