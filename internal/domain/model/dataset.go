// Package model contains domain models passed between layers and persisted as documents.
package model

import (
	"encoding/json"
	"fmt"
	"slices"
	"strconv"
)

// SchemaVersion is the current version written into every persisted document.
const SchemaVersion = 1

// Choice is a user's answer for one week. The zero value means unset.
type Choice string

// Week choices. NotReally is kept for schema compatibility and never written.
const (
	FullWeek  Choice = "Full week"
	HalfWeek  Choice = "Half week"
	NotReally Choice = "Not really"
)

// Choices lists the selectable choices in display order.
var Choices = []Choice{FullWeek, HalfWeek}

// Valid reports whether c can be selected by a user.
func (c Choice) Valid() bool {
	return c == FullWeek || c == HalfWeek
}

// Weight returns the numeric weight of c, 0 when unset.
func (c Choice) Weight() float64 {
	switch c {
	case FullWeek:
		return 1.0
	case HalfWeek:
		return 0.5
	default:
		return 0
	}
}

// Short returns the button label for c ("Full", "Half").
func (c Choice) Short() string {
	switch c {
	case FullWeek:
		return "Full"
	case HalfWeek:
		return "Half"
	case NotReally:
		return "Not"
	default:
		return ""
	}
}

// Modes is the closed set of activity modes, in export column order.
var Modes = []string{"Van", "Car", "Tent", "Hammock", "In someone elses", "Other"}

// IsMode reports whether label is one of Modes.
func IsMode(label string) bool {
	return slices.Contains(Modes, label)
}

// User is a poll participant.
type User struct {
	Name     string            `json:"name"`
	Username string            `json:"username"`
	Modes    []string          `json:"modes"`
	Weeks    map[string]Choice `json:"weeks"`
}

// NewUser returns an empty user record.
func NewUser(name, username string) *User {
	return &User{
		Name:     name,
		Username: username,
		Modes:    []string{},
		Weeks:    map[string]Choice{},
	}
}

// HasMode reports whether the user selected mode.
func (u *User) HasMode(mode string) bool {
	return slices.Contains(u.Modes, mode)
}

// Clone returns a deep copy of u.
func (u *User) Clone() *User {
	c := &User{
		Name:     u.Name,
		Username: u.Username,
		Modes:    slices.Clone(u.Modes),
		Weeks:    make(map[string]Choice, len(u.Weeks)),
	}
	if c.Modes == nil {
		c.Modes = []string{}
	}
	for k, v := range u.Weeks {
		c.Weeks[k] = v
	}
	return c
}

// Roster holds the user ids per choice for one week.
type Roster struct {
	Full      []string `json:"Full week"`
	Half      []string `json:"Half week"`
	NotReally []string `json:"Not really"`
}

// NewRoster returns a roster with empty lists.
func NewRoster() *Roster {
	return &Roster{Full: []string{}, Half: []string{}, NotReally: []string{}}
}

// List returns a pointer to the list for c, nil for unknown choices.
func (r *Roster) List(c Choice) *[]string {
	switch c {
	case FullWeek:
		return &r.Full
	case HalfWeek:
		return &r.Half
	case NotReally:
		return &r.NotReally
	default:
		return nil
	}
}

// Add appends id to the list for c unless already present.
func (r *Roster) Add(c Choice, id string) {
	l := r.List(c)
	if l == nil || slices.Contains(*l, id) {
		return
	}
	*l = append(*l, id)
}

// Remove drops id from the list for c.
func (r *Roster) Remove(c Choice, id string) {
	l := r.List(c)
	if l == nil {
		return
	}
	*l = slices.DeleteFunc(*l, func(s string) bool { return s == id })
}

// Clone returns a deep copy of r.
func (r *Roster) Clone() *Roster {
	return &Roster{
		Full:      append([]string{}, r.Full...),
		Half:      append([]string{}, r.Half...),
		NotReally: append([]string{}, r.NotReally...),
	}
}

// Dataset is the whole Bounceland state. It is persisted as one document.
type Dataset struct {
	SchemaVersion int                `json:"schema_version"`
	Users         map[string]*User   `json:"users"`
	Weeks         map[string]*Roster `json:"weeks"`
}

// NewDataset returns an empty dataset with one roster per week id.
func NewDataset(weekIDs []string) *Dataset {
	ds := &Dataset{
		SchemaVersion: SchemaVersion,
		Users:         map[string]*User{},
		Weeks:         make(map[string]*Roster, len(weekIDs)),
	}
	for _, id := range weekIDs {
		ds.Weeks[id] = NewRoster()
	}
	return ds
}

// WeekIDs returns the dataset week ids in ascending order.
func (d *Dataset) WeekIDs() []string {
	ids := make([]string, 0, len(d.Weeks))
	for id := range d.Weeks {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

// UserIDs returns the user ids in ascending order.
func (d *Dataset) UserIDs() []string {
	ids := make([]string, 0, len(d.Users))
	for id := range d.Users {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

// Normalize fills fields missing from an older or partial document.
func (d *Dataset) Normalize(weekIDs []string) {
	if d.SchemaVersion == 0 {
		d.SchemaVersion = SchemaVersion
	}
	if d.Users == nil {
		d.Users = map[string]*User{}
	}
	if d.Weeks == nil {
		d.Weeks = map[string]*Roster{}
	}
	for _, id := range weekIDs {
		if d.Weeks[id] == nil {
			d.Weeks[id] = NewRoster()
		}
	}
	for id, r := range d.Weeks {
		if r == nil {
			r = NewRoster()
			d.Weeks[id] = r
		}
		if r.Full == nil {
			r.Full = []string{}
		}
		if r.Half == nil {
			r.Half = []string{}
		}
		if r.NotReally == nil {
			r.NotReally = []string{}
		}
	}
	for id, u := range d.Users {
		if u == nil {
			u = NewUser("", "")
			d.Users[id] = u
		}
		if u.Modes == nil {
			u.Modes = []string{}
		}
		if u.Weeks == nil {
			u.Weeks = map[string]Choice{}
		}
	}
}

// Clone returns a deep copy of d.
func (d *Dataset) Clone() *Dataset {
	c := &Dataset{
		SchemaVersion: d.SchemaVersion,
		Users:         make(map[string]*User, len(d.Users)),
		Weeks:         make(map[string]*Roster, len(d.Weeks)),
	}
	for id, u := range d.Users {
		c.Users[id] = u.Clone()
	}
	for id, r := range d.Weeks {
		c.Weeks[id] = r.Clone()
	}
	return c
}

// Counts returns the number of full and half week entries for weekID.
func (d *Dataset) Counts(weekID string) (full, half int) {
	r := d.Weeks[weekID]
	if r == nil {
		return 0, 0
	}
	return len(r.Full), len(r.Half)
}

// MessageRef records the id of a poll's live message.
type MessageRef struct {
	SchemaVersion int    `json:"schema_version"`
	MessageID     string `json:"message_id"`
}

// UnmarshalJSON accepts numeric message ids written by older versions.
func (m *MessageRef) UnmarshalJSON(b []byte) error {
	var raw struct {
		SchemaVersion int             `json:"schema_version"`
		MessageID     json.RawMessage `json:"message_id"`
	}
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	m.SchemaVersion = raw.SchemaVersion
	if m.SchemaVersion == 0 {
		m.SchemaVersion = SchemaVersion
	}
	m.MessageID = ""
	if len(raw.MessageID) == 0 || string(raw.MessageID) == "null" {
		return nil
	}
	var s string
	if err := json.Unmarshal(raw.MessageID, &s); err == nil {
		m.MessageID = s
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(raw.MessageID, &n); err != nil {
		return fmt.Errorf("message_id: %w", err)
	}
	if _, err := strconv.ParseInt(n.String(), 10, 64); err != nil {
		return fmt.Errorf("message_id: %w", err)
	}
	m.MessageID = n.String()
	return nil
}
