// Package store holds the capacity store: participant records plus the
// per-slot winner counters, behind one interface with interchangeable
// backends. The backend is chosen once at startup and never switched
// mid-run, so both counters and participants always live in the same
// place.
package store

import (
	"context"
	"errors"

	"spinwheel/internal/models"
)

var (
	// ErrNotFound is returned when a participant id is unknown.
	ErrNotFound = errors.New("participant not found")

	// ErrCapacityExceeded is returned by IncrementWinners when the slot
	// is already at its winner cap.
	ErrCapacityExceeded = errors.New("prize slot has reached maximum winners")
)

// Store is the persistence capability consumed by the spin service.
//
// IncrementWinners and ClaimSpinResult are the two conditional writes
// the whole draw depends on: each must be atomic with respect to
// concurrent callers. A plain read-check-write sequence is not an
// acceptable implementation of either.
type Store interface {
	// CreateParticipant registers a new participant with a fresh id and
	// no spin result.
	CreateParticipant(ctx context.Context, name, phone string) (models.Participant, error)

	// Participant returns the participant with the given id, or
	// ErrNotFound.
	Participant(ctx context.Context, id string) (models.Participant, error)

	// PrizeSlots returns all slots in seed order.
	PrizeSlots(ctx context.Context) ([]models.PrizeSlot, error)

	// IncrementWinners adds one winner to the slot iff it is still under
	// its cap, as a single atomic operation. Two callers racing for the
	// last place must not both succeed: one gets ErrCapacityExceeded.
	IncrementWinners(ctx context.Context, slotID string) error

	// ClaimSpinResult sets the participant's spin result iff it is not
	// already set. It returns the result stored after the call and
	// whether this call was the one that stored it. ErrNotFound if the
	// participant does not exist.
	ClaimSpinResult(ctx context.Context, id, label string) (stored string, claimed bool, err error)

	// Initialize seeds the prize slots. If any slots already exist it is
	// a no-op, so it is safe to call on every startup.
	Initialize(ctx context.Context, slots []models.PrizeSlot) error

	// ResetWinners zeroes every slot's winner count. Administrative
	// back door only; nothing in the spin path ever decrements.
	ResetWinners(ctx context.Context) error

	Close() error
}
