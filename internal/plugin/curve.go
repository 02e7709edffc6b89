// v0
// internal/plugin/curve.go
package plugin

// Relative humidity thresholds of the venting response curve, in percent.
const (
	ClosedBelowRH = 25.0
	OpenAboveRH   = 60.0
)

// OpeningFactor maps zone relative humidity (percent) to a venting opening
// factor in [0,1]: closed below 25%, fully open above 60%, linear in between.
// Both thresholds belong to the linear segment, which is continuous with the
// constant ones. A NaN reading matches no segment and yields NaN.
func OpeningFactor(rh float64) float64 {
	if rh < ClosedBelowRH {
		return 0.0
	}
	if rh > OpenAboveRH {
		return 1.0
	}
	return (rh - ClosedBelowRH) / (OpenAboveRH - ClosedBelowRH)
}
