// Package geometry loads the static field and rod layout used by agents
// and reward shaping. The geometry file is read once at construction and
// treated as immutable for the process lifetime.
package geometry

import (
	"encoding/json"
	"fmt"
	"os"
)

// Team identifies which side a rod belongs to.
type Team string

const (
	TeamRed  Team = "red"
	TeamBlue Team = "blue"
)

// Field holds the playing field dimensions in millimeters. The origin is
// the top-left corner as seen in the simulator: x to the right, y down.
type Field struct {
	DimensionX float64 `json:"dimension_x"`
	DimensionY float64 `json:"dimension_y"`
}

// Rod describes one player rod. Rod ids run 1..8; id 1 is the red goalie.
type Rod struct {
	ID          int     `json:"id"`
	Team        Team    `json:"team"`
	Position    float64 `json:"position"`     // x-axis position of the rod (mm)
	Travel      float64 `json:"travel"`       // travel range of the rod (mm)
	Players     int     `json:"players"`      // number of figures on the rod
	FirstOffset float64 `json:"first_offset"` // y-position of the first figure center (mm)
	Spacing     float64 `json:"spacing"`      // spacing between figures (mm)
}

// Table is the full table geometry.
type Table struct {
	Field Field `json:"field"`
	Rods  []Rod `json:"rods"`
}

// Load reads and validates a geometry file.
func Load(path string) (*Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read geometry file: %w", err)
	}
	var t Table
	if err := json.Unmarshal(data, &t); err != nil {
		return nil, fmt.Errorf("parse geometry file: %w", err)
	}
	if err := t.Validate(); err != nil {
		return nil, fmt.Errorf("invalid geometry in %s: %w", path, err)
	}
	return &t, nil
}

// Validate checks structural invariants the rest of the code relies on.
func (t *Table) Validate() error {
	if t.Field.DimensionX <= 0 || t.Field.DimensionY <= 0 {
		return fmt.Errorf("field dimensions must be positive, got %.1fx%.1f",
			t.Field.DimensionX, t.Field.DimensionY)
	}
	if len(t.Rods) == 0 {
		return fmt.Errorf("at least one rod is required")
	}
	seen := make(map[int]bool, len(t.Rods))
	for _, r := range t.Rods {
		if r.ID < 1 || r.ID > 8 {
			return fmt.Errorf("rod id %d out of range [1,8]", r.ID)
		}
		if seen[r.ID] {
			return fmt.Errorf("duplicate rod id %d", r.ID)
		}
		seen[r.ID] = true
		if r.Team != TeamRed && r.Team != TeamBlue {
			return fmt.Errorf("rod %d: unknown team %q", r.ID, r.Team)
		}
		if r.Players < 1 {
			return fmt.Errorf("rod %d: players must be >= 1, got %d", r.ID, r.Players)
		}
		if r.Travel <= 0 {
			return fmt.Errorf("rod %d: travel must be positive, got %.1f", r.ID, r.Travel)
		}
		if r.Spacing < 0 {
			return fmt.Errorf("rod %d: spacing must be non-negative, got %.1f", r.ID, r.Spacing)
		}
	}
	return nil
}

// Rod returns the rod with the given id, or nil if not configured.
func (t *Table) Rod(id int) *Rod {
	for i := range t.Rods {
		if t.Rods[i].ID == id {
			return &t.Rods[i]
		}
	}
	return nil
}

// InsideField reports whether the ball y coordinate lies within the field.
func (t *Table) InsideField(by float64) bool {
	return by > 0 && by < t.Field.DimensionY
}

// PlayerPositions returns the y coordinate of each figure center on the
// rod for a calibrated rod offset in [0,1].
func (r *Rod) PlayerPositions(calib float64) []float64 {
	offset := r.Travel * calib
	positions := make([]float64, r.Players)
	for i := range positions {
		positions[i] = r.FirstOffset + offset + float64(i)*r.Spacing
	}
	return positions
}

// TeamRods returns the ids of all rods on the given team, in table order.
func (t *Table) TeamRods(team Team) []int {
	var ids []int
	for _, r := range t.Rods {
		if r.Team == team {
			ids = append(ids, r.ID)
		}
	}
	return ids
}
