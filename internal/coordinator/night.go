package coordinator

// Night falls back to the local clock: 20:00 until 06:00.
const (
	nightStartHour = 20
	nightEndHour   = 6
)

// isNightTime asks the sun position provider and falls back to the local
// clock when there is no provider or it has no answer yet.
func (c *Coordinator) isNightTime() bool {
	if c.sun != nil {
		if below, known := c.sun.IsBelowHorizon(); known {
			return below
		}
	}
	return IsNightHour(c.now().In(c.location).Hour())
}

// IsNightHour reports whether hour falls in the fallback night window.
func IsNightHour(hour int) bool {
	return hour >= nightStartHour || hour < nightEndHour
}
