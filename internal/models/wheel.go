package models

import (
	"errors"
	"regexp"
	"strings"
	"time"
)

// NoWinLabel is the non-prize wheel outcome. It has unlimited capacity.
const NoWinLabel = "Better Luck Next Time"

// Participant represents a person who registered for the draw.
// SpinResult is empty until the participant has spun the wheel, after
// which it holds either a prize slot name or NoWinLabel.
type Participant struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	Phone      string    `json:"phone"`
	SpinResult string    `json:"spinResult,omitempty"`
	CreatedAt  time.Time `json:"createdAt"`
}

// HasSpun reports whether the participant already used their spin.
func (p Participant) HasSpun() bool {
	return p.SpinResult != ""
}

// PrizeSlot is one segment of the wheel: a named prize with a capped
// number of winners and a display color for the renderer.
type PrizeSlot struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	MaxWinners     int    `json:"maxWinners"`
	CurrentWinners int    `json:"currentWinners"`
	Color          string `json:"color"`
}

// Full reports whether the slot has no remaining winner capacity.
func (s PrizeSlot) Full() bool {
	return s.CurrentWinners >= s.MaxWinners
}

// SpinOutcome is the result of a single spin, returned to the caller and
// recorded on the participant.
type SpinOutcome struct {
	ParticipantID string    `json:"participantId"`
	Result        string    `json:"result"`
	IsWinner      bool      `json:"isWinner"`
	Timestamp     time.Time `json:"timestamp"`
}

// RegisterRequest is the payload for creating a participant.
type RegisterRequest struct {
	Name  string `json:"name"`
	Phone string `json:"phone"`
}

// phoneRe accepts international numbers with an optional leading plus,
// 10 to 15 digits, no leading zero.
var phoneRe = regexp.MustCompile(`^\+?[1-9]\d{9,14}$`)

var (
	ErrNameTooShort = errors.New("name must be at least 2 characters")
	ErrInvalidPhone = errors.New("please enter a valid phone number")
)

// Validate checks the registration payload and normalizes whitespace.
func (r *RegisterRequest) Validate() error {
	r.Name = strings.TrimSpace(r.Name)
	r.Phone = strings.TrimSpace(r.Phone)
	if len(r.Name) < 2 {
		return ErrNameTooShort
	}
	if !phoneRe.MatchString(r.Phone) {
		return ErrInvalidPhone
	}
	return nil
}
