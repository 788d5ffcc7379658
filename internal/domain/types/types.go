// Package types contains request and response bodies shared by the HTTP API and its clients.
package types

import (
	"errors"
	"strings"
)

// ErrMissingField is returned by Validate when a required field is empty.
var ErrMissingField = errors.New("missing required field")

// ModeRequest toggles a mode for the calling user.
type ModeRequest struct {
	RequestID string `json:"request_id,omitempty"`
	Mode      string `json:"mode"`
	Name      string `json:"name,omitempty"`
	Username  string `json:"username,omitempty"`
}

// Validate checks required fields.
func (r ModeRequest) Validate() error {
	return require("mode", r.Mode)
}

// WeekRequest sets or clears a week choice for the calling user.
type WeekRequest struct {
	RequestID string `json:"request_id,omitempty"`
	WeekID    string `json:"week_id"`
	Choice    string `json:"choice"`
	Name      string `json:"name,omitempty"`
	Username  string `json:"username,omitempty"`
}

// Validate checks required fields.
func (r WeekRequest) Validate() error {
	if err := require("week_id", r.WeekID); err != nil {
		return err
	}
	return require("choice", r.Choice)
}

// MealRequest toggles a meal day. Participants are listed by Name.
type MealRequest struct {
	RequestID string `json:"request_id,omitempty"`
	Day       string `json:"day"`
	Name      string `json:"name"`
}

// Validate checks required fields.
func (r MealRequest) Validate() error {
	if err := require("day", r.Day); err != nil {
		return err
	}
	return require("name", r.Name)
}

// ActionRequest presses a rendered button. Action is the button's action
// string, e.g. "WEEK|2026-11-02|Full week".
type ActionRequest struct {
	RequestID string `json:"request_id,omitempty"`
	Action    string `json:"action"`
	Name      string `json:"name,omitempty"`
	Username  string `json:"username,omitempty"`
}

// Validate checks required fields.
func (r ActionRequest) Validate() error {
	return require("action", r.Action)
}

// InteractionResponse acknowledges an interaction.
type InteractionResponse struct {
	Message   string `json:"message"`
	Duplicate bool   `json:"duplicate,omitempty"`
}

// ImportResponse reports how many users an import added and skipped.
type ImportResponse struct {
	Added   int `json:"added"`
	Skipped int `json:"skipped"`
}

// PostResponse reports the live message created by a post.
type PostResponse struct {
	Poll      string `json:"poll"`
	MessageID string `json:"message_id"`
}

// SummaryResponse carries a rendered summary text.
type SummaryResponse struct {
	Text string `json:"text"`
}

func require(field, v string) error {
	if strings.TrimSpace(v) == "" {
		return errors.Join(ErrMissingField, errors.New(field))
	}
	return nil
}
