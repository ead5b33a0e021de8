package services

import (
	"context"
	"errors"
	"math/rand"
	"time"

	"github.com/google/logger"

	"spinwheel/internal/models"
	"spinwheel/internal/store"
)

// ErrAlreadySpun is returned by Spin when the participant already has a
// result. The outcome returned alongside it carries the stored result,
// so callers can show it instead of treating this as a hard failure.
var ErrAlreadySpun = errors.New("participant has already spun the wheel")

// ErrParticipantNotFound is returned when the spin or lookup target does
// not exist.
var ErrParticipantNotFound = store.ErrNotFound

// SpinService decides spin outcomes. Each participant gets exactly one
// spin; a spin wins with the configured probability, provided any slot
// still has capacity, and the chosen slot is drawn uniformly from the
// ones under their cap.
type SpinService struct {
	store          store.Store
	winProbability float64

	// Swapped out in tests to force a draw.
	randFloat func() float64
	randIntn  func(n int) int
}

// NewSpinService creates a SpinService with the given win probability in
// (0,1].
func NewSpinService(st store.Store, winProbability float64) *SpinService {
	return &SpinService{
		store:          st,
		winProbability: winProbability,
		randFloat:      rand.Float64,
		randIntn:       rand.Intn,
	}
}

// Register creates a participant. Input validation happens at the HTTP
// boundary before this is called.
func (s *SpinService) Register(ctx context.Context, name, phone string) (models.Participant, error) {
	return s.store.CreateParticipant(ctx, name, phone)
}

// Participant looks up a participant by id.
func (s *SpinService) Participant(ctx context.Context, id string) (models.Participant, error) {
	return s.store.Participant(ctx, id)
}

// Slots returns all prize slots in wheel order.
func (s *SpinService) Slots(ctx context.Context) ([]models.PrizeSlot, error) {
	return s.store.PrizeSlots(ctx)
}

// Spin runs one allocation for the participant.
//
// If the participant already has a result, the stored outcome is
// returned with ErrAlreadySpun and nothing is mutated. A capacity race
// (the chosen slot filling up between the snapshot read and the
// increment) is not an error: the spin is demoted to "no win".
func (s *SpinService) Spin(ctx context.Context, participantID string) (models.SpinOutcome, error) {
	p, err := s.store.Participant(ctx, participantID)
	if err != nil {
		return models.SpinOutcome{}, err
	}
	if p.HasSpun() {
		return s.storedOutcome(participantID, p.SpinResult), ErrAlreadySpun
	}

	slots, err := s.store.PrizeSlots(ctx)
	if err != nil {
		return models.SpinOutcome{}, err
	}

	var eligible []models.PrizeSlot
	for _, slot := range slots {
		if !slot.Full() {
			eligible = append(eligible, slot)
		}
	}

	result := models.NoWinLabel
	isWinner := false

	// With every slot full the outcome needs no randomness at all.
	if len(eligible) > 0 && s.randFloat() < s.winProbability {
		chosen := eligible[s.randIntn(len(eligible))]
		switch err := s.store.IncrementWinners(ctx, chosen.ID); {
		case err == nil:
			result = chosen.Name
			isWinner = true
		case errors.Is(err, store.ErrCapacityExceeded):
			// Lost the race for the last place. The participant just
			// sees "no win".
			logger.Infof("slot %s filled during spin for %s, demoting to no win", chosen.ID, participantID)
		default:
			return models.SpinOutcome{}, err
		}
	}

	stored, claimed, err := s.store.ClaimSpinResult(ctx, participantID, result)
	if err != nil {
		if isWinner {
			// The slot count is already taken but no result was stored.
			// A retried spin will re-allocate; see DESIGN.md.
			logger.Warningf("participant %s won %q but the result write failed: %v", participantID, result, err)
		}
		return models.SpinOutcome{}, err
	}
	if !claimed {
		// A concurrent spin for the same participant finished first.
		// Return its result; if this spin had already taken a slot
		// place, that count is leaked (see DESIGN.md).
		if isWinner {
			logger.Warningf("participant %s double-spin lost claim after winning %q; slot count leaked", participantID, result)
		}
		return s.storedOutcome(participantID, stored), ErrAlreadySpun
	}

	return models.SpinOutcome{
		ParticipantID: participantID,
		Result:        result,
		IsWinner:      isWinner,
		Timestamp:     time.Now(),
	}, nil
}

// ResetWinners zeroes all slot counters. Admin back door, not part of
// the spin path.
func (s *SpinService) ResetWinners(ctx context.Context) error {
	return s.store.ResetWinners(ctx)
}

func (s *SpinService) storedOutcome(participantID, result string) models.SpinOutcome {
	return models.SpinOutcome{
		ParticipantID: participantID,
		Result:        result,
		IsWinner:      result != models.NoWinLabel,
		Timestamp:     time.Now(),
	}
}
