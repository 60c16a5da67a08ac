package simclient

// NumRods is the number of rods the simulator reports per camera view.
const NumRods = 8

// CamData is one camera view of the table. Ball coordinates are in
// millimeters, velocities in m/s, ball size in pixels of visible area.
type CamData struct {
	BallX    float64 `json:"ball_x"`
	BallY    float64 `json:"ball_y"`
	BallVX   float64 `json:"ball_vx"`
	BallVY   float64 `json:"ball_vy"`
	BallSize float64 `json:"ball_size"`

	// RodPositionCalib holds the calibrated rod offsets in [0,1].
	RodPositionCalib []float64 `json:"rod_position_calib"`
	// RodAngle holds the calibrated rod angles in [-32,+32] degrees.
	RodAngle []float64 `json:"rod_angle"`
}

// TelemetryRecord is the per-tick sensor snapshot returned by
// GET /Camera/State. Up to two camera views are reported; when the ball
// is obstructed in one view its BallSize drops, which callers can use to
// weight the views.
type TelemetryRecord struct {
	CamData []CamData `json:"camData"`
	// Score is the (red, blue) goal count since the last reset.
	Score [2]int `json:"score"`
}

// Primary returns the first camera view. When telemetry is empty the
// fallback view reports every rod at mid travel, angle zero.
func (t *TelemetryRecord) Primary() CamData {
	if len(t.CamData) == 0 {
		positions := make([]float64, NumRods)
		for i := range positions {
			positions[i] = 0.5
		}
		return CamData{
			RodPositionCalib: positions,
			RodAngle:         make([]float64, NumRods),
		}
	}
	return t.CamData[0]
}

// RodPosition returns the calibrated position of rod index i (0-based)
// from the primary view, defaulting to mid travel when unreported.
func (t *TelemetryRecord) RodPosition(i int) float64 {
	cd := t.Primary()
	if i < 0 || i >= len(cd.RodPositionCalib) {
		return 0.5
	}
	return cd.RodPositionCalib[i]
}

// RodAngle returns the calibrated angle of rod index i (0-based) from
// the primary view.
func (t *TelemetryRecord) RodAngle(i int) float64 {
	cd := t.Primary()
	if i < 0 || i >= len(cd.RodAngle) {
		return 0
	}
	return cd.RodAngle[i]
}

// Motor command field bounds enforced before transmission.
const (
	RotationMin    = -1.0
	RotationMax    = 1.0
	TranslationMin = 0.0
	TranslationMax = 1.0
	VelocityMin    = 0.1
	VelocityMax    = 2.0
)

// MotorCommand is one per-rod actuation request. Targets are normalized:
// rotation in [-1,1], translation in [0,1], velocities in [0.1,2.0].
type MotorCommand struct {
	DriveID                   int     `json:"driveID"`
	RotationTargetPosition    float64 `json:"rotationTargetPosition"`
	RotationVelocity          float64 `json:"rotationVelocity"`
	TranslationTargetPosition float64 `json:"translationTargetPosition"`
	TranslationVelocity       float64 `json:"translationVelocity"`
}

// Clamp bounds every field to its declared range and returns the result.
func (c MotorCommand) Clamp() MotorCommand {
	c.RotationTargetPosition = clamp(c.RotationTargetPosition, RotationMin, RotationMax)
	c.TranslationTargetPosition = clamp(c.TranslationTargetPosition, TranslationMin, TranslationMax)
	c.RotationVelocity = clamp(c.RotationVelocity, VelocityMin, VelocityMax)
	c.TranslationVelocity = clamp(c.TranslationVelocity, VelocityMin, VelocityMax)
	return c
}

// InBounds reports whether every field already lies in its range.
func (c MotorCommand) InBounds() bool {
	return c == c.Clamp()
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// commandBatch is the wire envelope for POST /Motors/SendCommand.
type commandBatch struct {
	Commands []MotorCommand `json:"commands"`
}
