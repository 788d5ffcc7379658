// Package attendance holds the Bounceland dataset and keeps user choices and
// week rosters consistent with each other.
package attendance

import (
	"fmt"
	"strings"
	"sync"

	"github.com/okian/bounceland/internal/domain/calendar"
	"github.com/okian/bounceland/internal/domain/model"
	"github.com/okian/bounceland/internal/domain/scoring"
)

// SummaryHeader starts every rendered summary.
const SummaryHeader = "*Bounceland Weekly Summary*\n\n"

// ModeResult reports what a mode toggle did.
type ModeResult int

// Mode toggle outcomes.
const (
	ModeAdded ModeResult = iota + 1
	ModeRemoved
)

func (r ModeResult) String() string {
	if r == ModeAdded {
		return "added"
	}
	return "removed"
}

// WeekResult reports what a week choice did.
type WeekResult int

// Week choice outcomes.
const (
	Applied WeekResult = iota + 1
	Cleared
)

func (r WeekResult) String() string {
	if r == Applied {
		return "applied"
	}
	return "cleared"
}

// Member is a user record to be inserted by Merge.
type Member struct {
	ID   string
	User *model.User
}

// Store owns the Bounceland dataset. Mutations are serialized; reads share the lock.
type Store struct {
	mu   sync.RWMutex
	data *model.Dataset
}

// NewStore creates a store with an empty roster per week id.
func NewStore(weekIDs []string) *Store {
	return &Store{data: model.NewDataset(weekIDs)}
}

// Reset replaces the state with empty users and one empty roster per week id.
func (s *Store) Reset(weekIDs []string) {
	fresh := model.NewDataset(weekIDs)
	s.mu.Lock()
	s.data = fresh
	s.mu.Unlock()
}

// Restore installs ds after filling defaults and rosters for weekIDs.
// The store keeps its own copy.
func (s *Store) Restore(ds *model.Dataset, weekIDs []string) {
	c := ds.Clone()
	c.Normalize(weekIDs)
	s.mu.Lock()
	s.data = c
	s.mu.Unlock()
}

// ToggleMode flips mode for userID, creating the user on first reference.
func (s *Store) ToggleMode(userID, mode, name, handle string) (ModeResult, error) {
	if !model.IsMode(mode) {
		return 0, fmt.Errorf("%w: %q", ErrUnknownMode, mode)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	u := s.userLocked(userID, name, handle)
	if u.HasMode(mode) {
		u.Modes = removeString(u.Modes, mode)
		return ModeRemoved, nil
	}
	u.Modes = append(u.Modes, mode)
	return ModeAdded, nil
}

// SetWeekChoice records choice for weekID. Selecting the current choice again clears it.
func (s *Store) SetWeekChoice(userID, weekID string, choice model.Choice, name, handle string) (WeekResult, error) {
	if !choice.Valid() {
		return 0, fmt.Errorf("%w: %q", ErrInvalidChoice, choice)
	}
	if _, err := calendar.ParseWeekID(weekID); err != nil {
		return 0, fmt.Errorf("%w: %v", ErrInvalidWeek, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	u := s.userLocked(userID, name, handle)
	roster := s.rosterLocked(weekID)

	prev, had := u.Weeks[weekID]
	if had {
		roster.Remove(prev, userID)
	}
	if had && prev == choice {
		delete(u.Weeks, weekID)
		return Cleared, nil
	}
	roster.Add(choice, userID)
	u.Weeks[weekID] = choice
	return Applied, nil
}

// Merge inserts members whose id is not yet known. Known ids, including ids
// repeated within members, are skipped and left unchanged.
func (s *Store) Merge(members []Member) (added, skipped int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, m := range members {
		if m.ID == "" || m.User == nil {
			skipped++
			continue
		}
		if _, ok := s.data.Users[m.ID]; ok {
			skipped++
			continue
		}
		u := m.User.Clone()
		for weekID, choice := range u.Weeks {
			if !choice.Valid() {
				delete(u.Weeks, weekID)
				continue
			}
			s.rosterLocked(weekID).Add(choice, m.ID)
		}
		s.data.Users[m.ID] = u
		added++
	}
	return added, skipped
}

// Snapshot returns a deep copy of the dataset.
func (s *Store) Snapshot() *model.Dataset {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.data.Clone()
}

// UserCount returns the number of known users.
func (s *Store) UserCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.data.Users)
}

// WeekScores returns the score of every week.
func (s *Store) WeekScores() map[string]float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string]float64, len(s.data.Weeks))
	for id := range s.data.Weeks {
		out[id] = scoring.WeekScore(s.data.Counts(id))
	}
	return out
}

// SummaryText renders one line per week in ascending order:
// label, bar of the rounded score and the truncated score.
func (s *Store) SummaryText() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return summaryLocked(s.data)
}

func summaryLocked(ds *model.Dataset) string {
	var b strings.Builder
	b.WriteString(SummaryHeader)
	for _, id := range ds.WeekIDs() {
		score := scoring.WeekScore(ds.Counts(id))
		fmt.Fprintf(&b, "%s %s %d\n",
			calendar.WeekLabelForID(id),
			scoring.VisualBar(scoring.BarLength(score)),
			int(score))
	}
	return b.String()
}

// userLocked returns the user, creating it with name and handle if absent.
func (s *Store) userLocked(userID, name, handle string) *model.User {
	u, ok := s.data.Users[userID]
	if !ok || u == nil {
		u = model.NewUser(name, handle)
		s.data.Users[userID] = u
	}
	return u
}

// rosterLocked returns the roster for weekID, creating an empty one for unknown weeks.
func (s *Store) rosterLocked(weekID string) *model.Roster {
	r, ok := s.data.Weeks[weekID]
	if !ok || r == nil {
		r = model.NewRoster()
		s.data.Weeks[weekID] = r
	}
	return r
}

func removeString(list []string, v string) []string {
	out := list[:0]
	for _, s := range list {
		if s != v {
			out = append(out, s)
		}
	}
	return out
}
