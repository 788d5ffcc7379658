package simulate

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/okian/bounceland/internal/domain/model"
	"github.com/okian/bounceland/pkg/logger"
)

// verifyDataset checks that rosters and user records agree and that every
// simulated user ended up with the modes its presses imply. It returns the
// number of simulated users checked.
func verifyDataset(ctx context.Context, ds *model.Dataset, users []string, presses []Press) (int, error) {
	var problems []error
	problems = append(problems, checkRosters(ds)...)
	problems = append(problems, checkUsers(ds)...)

	want := expectedModes(presses)
	checked := 0
	for _, id := range users {
		u, ok := ds.Users[id]
		if !ok {
			if len(want[id]) > 0 && anyTrue(want[id]) {
				problems = append(problems, fmt.Errorf("user %s missing", id))
			}
			continue
		}
		checked++
		for _, mode := range model.Modes {
			if u.HasMode(mode) != want[id][mode] {
				problems = append(problems, fmt.Errorf("user %s mode %q: have %t, want %t", id, mode, u.HasMode(mode), want[id][mode]))
			}
		}
	}

	if len(problems) > 0 {
		for _, p := range problems {
			logger.Get().Warn(ctx, "verification problem", logger.Error(p))
		}
		return checked, errors.Join(append([]error{ErrInconsistent}, problems...)...)
	}
	logger.Get().Info(ctx, "dataset verified", logger.Int("users", checked), logger.Int("weeks", len(ds.Weeks)))
	return checked, nil
}

// checkRosters verifies each roster entry is backed by the user's choice and
// no user appears in two lists of the same week.
func checkRosters(ds *model.Dataset) []error {
	var problems []error
	for _, weekID := range ds.WeekIDs() {
		r := ds.Weeks[weekID]
		seen := map[string]model.Choice{}
		for _, c := range []model.Choice{model.FullWeek, model.HalfWeek, model.NotReally} {
			for _, id := range *r.List(c) {
				if prev, dup := seen[id]; dup {
					problems = append(problems, fmt.Errorf("week %s: user %s listed as %q and %q", weekID, id, prev, c))
					continue
				}
				seen[id] = c
				u, ok := ds.Users[id]
				if !ok {
					problems = append(problems, fmt.Errorf("week %s: unknown user %s", weekID, id))
					continue
				}
				if u.Weeks[weekID] != c {
					problems = append(problems, fmt.Errorf("week %s: user %s listed as %q but chose %q", weekID, id, c, u.Weeks[weekID]))
				}
			}
		}
	}
	return problems
}

// checkUsers verifies each recorded choice appears in its roster and modes
// are known and unique.
func checkUsers(ds *model.Dataset) []error {
	var problems []error
	for _, id := range ds.UserIDs() {
		u := ds.Users[id]
		for weekID, c := range u.Weeks {
			r, ok := ds.Weeks[weekID]
			if !ok {
				problems = append(problems, fmt.Errorf("user %s: unknown week %s", id, weekID))
				continue
			}
			if l := r.List(c); l == nil || !slices.Contains(*l, id) {
				problems = append(problems, fmt.Errorf("user %s: %q for %s missing from roster", id, c, weekID))
			}
		}
		seen := map[string]bool{}
		for _, m := range u.Modes {
			if !model.IsMode(m) {
				problems = append(problems, fmt.Errorf("user %s: unknown mode %q", id, m))
			}
			if seen[m] {
				problems = append(problems, fmt.Errorf("user %s: mode %q listed twice", id, m))
			}
			seen[m] = true
		}
	}
	return problems
}

func anyTrue(m map[string]bool) bool {
	for _, v := range m {
		if v {
			return true
		}
	}
	return false
}
