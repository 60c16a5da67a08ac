package geometry

// Default returns the standard table layout shipped with the simulator.
// Rod order runs left to right from the red goal; red attacks toward
// increasing x.
func Default() *Table {
	return &Table{
		Field: Field{DimensionX: 1210, DimensionY: 700},
		Rods: []Rod{
			{ID: 1, Team: TeamRed, Position: 75, Travel: 120, Players: 3, FirstOffset: 80, Spacing: 210},
			{ID: 2, Team: TeamRed, Position: 225, Travel: 180, Players: 2, FirstOffset: 140, Spacing: 240},
			{ID: 3, Team: TeamBlue, Position: 375, Travel: 185, Players: 3, FirstOffset: 70, Spacing: 185},
			{ID: 4, Team: TeamRed, Position: 525, Travel: 100, Players: 5, FirstOffset: 60, Spacing: 120},
			{ID: 5, Team: TeamBlue, Position: 675, Travel: 100, Players: 5, FirstOffset: 60, Spacing: 120},
			{ID: 6, Team: TeamRed, Position: 825, Travel: 185, Players: 3, FirstOffset: 70, Spacing: 185},
			{ID: 7, Team: TeamBlue, Position: 975, Travel: 180, Players: 2, FirstOffset: 140, Spacing: 240},
			{ID: 8, Team: TeamBlue, Position: 1125, Travel: 120, Players: 3, FirstOffset: 80, Spacing: 210},
		},
	}
}
