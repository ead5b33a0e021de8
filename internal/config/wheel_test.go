package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeWheel(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "wheel.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write wheel file: %v", err)
	}
	return path
}

func TestLoadWheel_MissingFileUsesDefaults(t *testing.T) {
	w, err := LoadWheel(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if w.WinProbability != 0.25 {
		t.Errorf("default win probability = %v, want 0.25", w.WinProbability)
	}
	if len(w.Slots) != 5 {
		t.Errorf("default slot count = %d, want 5", len(w.Slots))
	}

	slots := w.SeedSlots()
	for _, s := range slots {
		if s.CurrentWinners != 0 {
			t.Errorf("seed slot %s starts at %d winners", s.ID, s.CurrentWinners)
		}
	}
}

func TestLoadWheel_ParsesFile(t *testing.T) {
	path := writeWheel(t, `
win_probability: 0.5
slots:
  - id: grand
    name: Grand Prize
    max_winners: 1
    color: "#FF0000"
  - id: small
    name: Small Prize
    max_winners: 10
    color: "#00FF00"
`)
	w, err := LoadWheel(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if w.WinProbability != 0.5 {
		t.Errorf("win probability = %v, want 0.5", w.WinProbability)
	}
	if len(w.Slots) != 2 || w.Slots[0].ID != "grand" || w.Slots[1].MaxWinners != 10 {
		t.Errorf("unexpected slots: %+v", w.Slots)
	}
}

func TestLoadWheel_Rejects(t *testing.T) {
	cases := map[string]string{
		"probability out of range": "win_probability: 1.5\nslots:\n  - {id: a, name: A, max_winners: 1}\n",
		"zero probability":         "win_probability: 0\nslots:\n  - {id: a, name: A, max_winners: 1}\n",
		"no slots":                 "win_probability: 0.25\nslots: []\n",
		"duplicate slot id":        "win_probability: 0.25\nslots:\n  - {id: a, name: A, max_winners: 1}\n  - {id: a, name: B, max_winners: 1}\n",
		"negative cap":             "win_probability: 0.25\nslots:\n  - {id: a, name: A, max_winners: -1}\n",
	}
	for name, content := range cases {
		t.Run(name, func(t *testing.T) {
			if _, err := LoadWheel(writeWheel(t, content)); err == nil {
				t.Error("expected an error")
			}
		})
	}
}
