package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"spinwheel/internal/models"
)

// Wheel defines the draw policy and the prize slots seeded at startup.
type Wheel struct {
	// WinProbability is the chance that a spin lands on a prize at all,
	// provided at least one slot still has capacity. Values between
	// 0.25 and 0.5 give a sensible winner density for a 20-100 person
	// event.
	WinProbability float64     `yaml:"win_probability"`
	Slots          []WheelSlot `yaml:"slots"`
}

// WheelSlot is one seeded prize slot.
type WheelSlot struct {
	ID         string `yaml:"id"`
	Name       string `yaml:"name"`
	MaxWinners int    `yaml:"max_winners"`
	Color      string `yaml:"color"`
}

// DefaultWheel is used when no wheel file exists.
func DefaultWheel() Wheel {
	return Wheel{
		WinProbability: 0.25,
		Slots: []WheelSlot{
			{ID: "slot-1", Name: "Coding Challenge", MaxWinners: 5, Color: "#8B5CF6"},
			{ID: "slot-2", Name: "Hackathon", MaxWinners: 5, Color: "#06B6D4"},
			{ID: "slot-3", Name: "Tech Talk", MaxWinners: 5, Color: "#10B981"},
			{ID: "slot-4", Name: "Workshop", MaxWinners: 5, Color: "#F59E0B"},
			{ID: "slot-5", Name: "Gaming Arena", MaxWinners: 5, Color: "#EC4899"},
		},
	}
}

// LoadWheel reads the wheel definition from a YAML file. A missing file
// is not an error: the compiled-in defaults are returned instead.
func LoadWheel(path string) (Wheel, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return DefaultWheel(), nil
	}
	if err != nil {
		return Wheel{}, fmt.Errorf("read wheel config: %w", err)
	}

	var w Wheel
	if err := yaml.Unmarshal(data, &w); err != nil {
		return Wheel{}, fmt.Errorf("parse wheel config: %w", err)
	}
	if err := w.validate(); err != nil {
		return Wheel{}, err
	}
	return w, nil
}

func (w Wheel) validate() error {
	if w.WinProbability <= 0 || w.WinProbability > 1 {
		return fmt.Errorf("win_probability must be in (0,1], got %v", w.WinProbability)
	}
	if len(w.Slots) == 0 {
		return fmt.Errorf("wheel config defines no slots")
	}
	seen := make(map[string]bool, len(w.Slots))
	for _, s := range w.Slots {
		if s.ID == "" || s.Name == "" {
			return fmt.Errorf("slot %q/%q missing id or name", s.ID, s.Name)
		}
		if s.MaxWinners < 0 {
			return fmt.Errorf("slot %s: max_winners must be >= 0", s.ID)
		}
		if seen[s.ID] {
			return fmt.Errorf("duplicate slot id %s", s.ID)
		}
		seen[s.ID] = true
	}
	return nil
}

// SeedSlots converts the wheel definition into fresh prize slots with
// zero winners, in file order.
func (w Wheel) SeedSlots() []models.PrizeSlot {
	slots := make([]models.PrizeSlot, 0, len(w.Slots))
	for _, s := range w.Slots {
		slots = append(slots, models.PrizeSlot{
			ID:         s.ID,
			Name:       s.Name,
			MaxWinners: s.MaxWinners,
			Color:      s.Color,
		})
	}
	return slots
}
