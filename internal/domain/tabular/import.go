package tabular

import (
	"fmt"
	"strings"

	"github.com/okian/bounceland/internal/domain/attendance"
	"github.com/okian/bounceland/internal/domain/calendar"
	"github.com/okian/bounceland/internal/domain/model"
)

// idColumns are tried in order for the user id.
var idColumns = []string{ColUserID, "user", "id"}

const modeColumn = "mode"

// Target is the store an import merges into.
type Target interface {
	Snapshot() *model.Dataset
	Merge(members []attendance.Member) (added, skipped int)
}

// Result counts the outcome of an import.
type Result struct {
	Added   int `json:"added"`
	Skipped int `json:"skipped"`
}

// ImportPlan is the parsed content of a table, ready to merge.
type ImportPlan struct {
	Members []attendance.Member
	// MissingID counts rows without a usable user id.
	MissingID int
}

// Plan maps table rows onto users. Week columns are matched by label or by
// week id against weekIDs; unmatched columns are ignored.
func Plan(t Table, weekIDs []string) ImportPlan {
	columns := make(map[string]string, 2*len(weekIDs))
	for _, id := range weekIDs {
		columns[calendar.WeekLabelForID(id)] = id
		columns[id] = id
	}

	var plan ImportPlan
	for _, row := range t.Rows {
		uid := rowID(row)
		if uid == "" {
			plan.MissingID++
			continue
		}

		u := model.NewUser(row[ColName], row[ColUsername])
		for _, m := range model.Modes {
			if truthy(row[m]) {
				u.Modes = append(u.Modes, m)
			}
		}
		if len(u.Modes) == 0 && model.IsMode(row[modeColumn]) {
			u.Modes = append(u.Modes, row[modeColumn])
		}

		for _, col := range t.Header {
			if reserved(col) {
				continue
			}
			weekID, ok := columns[strings.TrimSpace(col)]
			if !ok {
				continue
			}
			cell, ok := row[col]
			if !ok {
				continue
			}
			if c := choiceFromCell(cell); c != "" {
				u.Weeks[weekID] = c
			}
		}
		plan.Members = append(plan.Members, attendance.Member{ID: uid, User: u})
	}
	return plan
}

// Import plans t against the target's weeks and merges it in one step. Only
// users with unknown ids are added.
func Import(target Target, t Table) (Result, error) {
	if len(t.Header) == 0 {
		return Result{}, fmt.Errorf("%w: missing header", ErrUnreadableTable)
	}
	plan := Plan(t, target.Snapshot().WeekIDs())
	added, skipped := target.Merge(plan.Members)
	return Result{Added: added, Skipped: skipped + plan.MissingID}, nil
}

func rowID(row Row) string {
	for _, col := range idColumns {
		if v := row[col]; v != "" {
			return v
		}
	}
	return ""
}

func reserved(col string) bool {
	switch col {
	case ColUserID, ColUsername, ColName, modeColumn:
		return true
	}
	return model.IsMode(col)
}

func truthy(v string) bool {
	switch strings.TrimSpace(v) {
	case "1", "1.0", "true", "True":
		return true
	}
	return false
}

func choiceFromCell(v string) model.Choice {
	switch strings.TrimSpace(v) {
	case "1", "1.0":
		return model.FullWeek
	case "0.5":
		return model.HalfWeek
	}
	return ""
}
