package textmatch

// Default thresholds for classifying the difference between two scores.
const (
	MinorGap       = 0.1
	SignificantGap = 0.3
	MajorGap       = 0.5
)

// GapClass labels how far apart two match scores are.
type GapClass string

const (
	GapNone        GapClass = "none"
	GapMinor       GapClass = "minor"
	GapSignificant GapClass = "significant"
	GapMajor       GapClass = "major"
)

// Thresholds holds tunable gap boundaries.
type Thresholds struct {
	Minor       float64
	Significant float64
	Major       float64
}

// DefaultThresholds returns the package gap thresholds.
func DefaultThresholds() Thresholds {
	return Thresholds{Minor: MinorGap, Significant: SignificantGap, Major: MajorGap}
}

// Classify labels the absolute difference between a and b.
func (t Thresholds) Classify(a, b float64) GapClass {
	diff := a - b
	if diff < 0 {
		diff = -diff
	}
	switch {
	case diff >= t.Major:
		return GapMajor
	case diff >= t.Significant:
		return GapSignificant
	case diff >= t.Minor:
		return GapMinor
	default:
		return GapNone
	}
}
