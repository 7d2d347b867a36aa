package story

import "fmt"

// Level is the ordinal engagement bucket of a story.
type Level int

const (
	LevelQuiet Level = iota
	LevelBalanced
	LevelBuzzing
)

// AllLevels returns the levels in ascending engagement order.
func AllLevels() []Level {
	return []Level{LevelQuiet, LevelBalanced, LevelBuzzing}
}

func (l Level) String() string {
	switch l {
	case LevelQuiet:
		return "Quiet"
	case LevelBalanced:
		return "Balanced"
	case LevelBuzzing:
		return "Buzzing"
	}
	return fmt.Sprintf("Level(%d)", int(l))
}

// MarshalJSON renders the level as its label so API and JSON CLI output
// carry "Quiet"/"Balanced"/"Buzzing" rather than integers.
func (l Level) MarshalJSON() ([]byte, error) {
	return []byte(`"` + l.String() + `"`), nil
}

func (l *Level) UnmarshalJSON(data []byte) error {
	s := string(data)
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		s = s[1 : len(s)-1]
	}
	parsed, err := ParseLevel(s)
	if err != nil {
		return err
	}
	*l = parsed
	return nil
}

// ParseLevel converts a stored label back to a Level.
func ParseLevel(s string) (Level, error) {
	switch s {
	case "Quiet":
		return LevelQuiet, nil
	case "Balanced":
		return LevelBalanced, nil
	case "Buzzing":
		return LevelBuzzing, nil
	}
	return 0, fmt.Errorf("unknown engagement level %q", s)
}

// Thresholds are the two cut points separating the engagement buckets.
// Intervals are right-closed: ratio < QuietMax is Quiet, QuietMax <= ratio
// <= BalancedMax is Balanced, everything above is Buzzing.
type Thresholds struct {
	QuietMax    float64
	BalancedMax float64
}

// DefaultThresholds returns the standard 0.5 / 1.0 cut points.
func DefaultThresholds() Thresholds {
	return Thresholds{QuietMax: 0.5, BalancedMax: 1.0}
}

// Validate checks the cut points are positive and increasing.
func (t Thresholds) Validate() error {
	if t.QuietMax <= 0 {
		return fmt.Errorf("quiet_max must be positive, got %g", t.QuietMax)
	}
	if t.BalancedMax <= t.QuietMax {
		return fmt.Errorf("balanced_max (%g) must exceed quiet_max (%g)", t.BalancedMax, t.QuietMax)
	}
	return nil
}

// Level classifies a comments-per-vote ratio.
func (t Thresholds) Level(ratio float64) Level {
	switch {
	case ratio < t.QuietMax:
		return LevelQuiet
	case ratio <= t.BalancedMax:
		return LevelBalanced
	default:
		return LevelBuzzing
	}
}
