package simulate

import (
	"context"
	"crypto/rand"
	"math/big"
	"strconv"

	"github.com/google/uuid"

	"github.com/okian/bounceland/internal/domain/model"
	"github.com/okian/bounceland/pkg/logger"
)

const rateResolution = 1_000_000

// randomInt returns a uniform integer in [0, n).
func randomInt(n int) int {
	if n <= 1 {
		return 0
	}
	v, err := rand.Int(rand.Reader, big.NewInt(int64(n)))
	if err != nil {
		return 0
	}
	return int(v.Int64())
}

// chance reports true with probability p.
func chance(p float64) bool {
	return float64(randomInt(rateResolution)) < p*rateResolution
}

// userIDs returns the ids of the simulated users. The run prefix keeps the
// users of separate runs apart so each run starts from empty records.
func userIDs(run string, n int) []string {
	ids := make([]string, n)
	for i := range ids {
		ids[i] = "sim-" + run + "-" + strconv.Itoa(i)
	}
	return ids
}

// generatePresses builds cfg.Interactions presses spread over users and
// weekIDs, followed by resubmissions of a DuplicateRate share of them.
func generatePresses(ctx context.Context, cfg *Config, users, weekIDs []string, stats *Stats) []Press {
	presses := make([]Press, 0, cfg.Interactions)
	for i := 0; i < cfg.Interactions; i++ {
		u := users[randomInt(len(users))]
		p := Press{
			RequestID: uuid.NewString(),
			UserID:    u,
			Name:      "Sim " + u,
			ViaAction: chance(cfg.ActionRate),
		}
		if len(weekIDs) == 0 || randomInt(2) == 0 {
			p.Kind = KindMode
			p.Mode = model.Modes[randomInt(len(model.Modes))]
		} else {
			p.Kind = KindWeek
			p.WeekID = weekIDs[randomInt(len(weekIDs))]
			p.Choice = string(model.Choices[randomInt(len(model.Choices))])
		}
		presses = append(presses, p)
	}

	n := len(presses)
	for i := 0; i < n; i++ {
		if chance(cfg.DuplicateRate) {
			presses = append(presses, presses[i])
		}
	}

	stats.PressesGenerated = len(presses)
	logger.Get().Info(ctx, "generated presses",
		logger.Int("distinct", n),
		logger.Int("duplicates", len(presses)-n),
		logger.Int("users", len(users)))
	return presses
}

// expectedModes returns, per user, the modes an odd number of distinct
// presses toggled. Toggles commute, so this is the final state whatever
// order the service applied them in.
func expectedModes(presses []Press) map[string]map[string]bool {
	seen := make(map[string]bool, len(presses))
	out := map[string]map[string]bool{}
	for _, p := range presses {
		if p.Kind != KindMode || seen[p.RequestID] {
			continue
		}
		seen[p.RequestID] = true
		if out[p.UserID] == nil {
			out[p.UserID] = map[string]bool{}
		}
		out[p.UserID][p.Mode] = !out[p.UserID][p.Mode]
	}
	return out
}
