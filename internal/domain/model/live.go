package model

import "time"

// Poll names a live poll message.
type Poll string

// Live polls.
const (
	PollBounceland Poll = "bounceland"
	PollMeal       Poll = "meal"
)

// Polls lists every live poll.
var Polls = []Poll{PollBounceland, PollMeal}

// Valid reports whether p is a known poll.
func (p Poll) Valid() bool {
	return p == PollBounceland || p == PollMeal
}

// Button is one interactive element of a rendered poll. Action identifies
// what pressing it does, e.g. "MODE|Van" or "WEEK|2026-11-02|Full week".
type Button struct {
	Label  string `json:"label"`
	Action string `json:"action"`
}

// Destination addresses the chat thread a poll is shown in.
type Destination struct {
	ChatID   int64 `json:"chat_id,omitempty"`
	ThreadID int64 `json:"thread_id,omitempty"`
}

// Update is a rendered poll handed to the presentation layer.
type Update struct {
	Poll        Poll        `json:"poll"`
	MessageID   string      `json:"message_id,omitempty"`
	Destination Destination `json:"destination"`
	Text        string      `json:"text"`
	Buttons     [][]Button  `json:"buttons"`
	RenderedAt  time.Time   `json:"rendered_at"`
}
